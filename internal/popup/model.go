// Package popup renders the todo popup: an input line, the live list in its
// three states (loading, empty, populated) and the remaining counter.
package popup

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todopop/internal/client"
)

// Platform is the slice of the client binding the popup needs. Mutations are
// fire-and-forget: the popup never waits on a call before rendering, and a
// rejected call is simply dropped.
type Platform interface {
	Call(ctx context.Context, fn string, args any) error
}

type listState int

const (
	stateLoading listState = iota
	stateEmpty
	statePopulated
)

type (
	snapshotMsg  client.Snapshot
	streamEndMsg struct{}
	callDoneMsg  struct{}
)

type Model struct {
	platform  Platform
	snapshots <-chan client.Snapshot

	state    listState
	snapshot client.Snapshot
	cursor   int

	input textinput.Model
}

func NewModel(platform Platform, snapshots <-chan client.Snapshot) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "What needs doing?"
	input.CharLimit = 500
	input.Width = popupWidth - 6
	input.Focus()

	return Model{
		platform:  platform,
		snapshots: snapshots,
		state:     stateLoading,
		input:     input,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForSnapshot(m.snapshots))
}

func waitForSnapshot(ch <-chan client.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-ch

		if !ok {
			return streamEndMsg{}
		}

		return snapshotMsg(snapshot)
	}
}

func (m Model) call(fn string, args any) tea.Cmd {
	return func() tea.Msg {
		// Rejections are not surfaced; the subscription remains the only
		// source of truth for what the list looks like.
		m.platform.Call(context.Background(), fn, args)
		return callDoneMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snapshot = client.Snapshot(msg)

		if len(m.snapshot.Todos) == 0 {
			m.state = stateEmpty
			m.cursor = 0
		} else {
			m.state = statePopulated

			if m.cursor >= len(m.snapshot.Todos) {
				m.cursor = len(m.snapshot.Todos) - 1
			}
		}

		return m, waitForSnapshot(m.snapshots)

	case streamEndMsg:
		// Connectivity loss: keep the last known state on screen.
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())

		// Empty submissions are ignored outright: no call leaves the popup.
		if text == "" {
			return m, nil
		}

		m.input.SetValue("")

		return m, m.call("todos.add", map[string]string{"text": text})

	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}

		return m, nil

	case tea.KeyDown:
		if m.cursor < len(m.snapshot.Todos)-1 {
			m.cursor++
		}

		return m, nil

	case tea.KeySpace:
		// Space toggles only while the buffer is empty; otherwise it is
		// part of the text being typed.
		if m.input.Value() != "" {
			break
		}

		if todo, ok := m.selected(); ok {
			return m, m.call("todos.toggle", map[string]string{"id": todo.ID})
		}

		return m, nil

	case tea.KeyDelete, tea.KeyCtrlD:
		if todo, ok := m.selected(); ok {
			return m, m.call("todos.remove", map[string]string{"id": todo.ID})
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m Model) selected() (client.Todo, bool) {
	if m.state != statePopulated || m.cursor < 0 || m.cursor >= len(m.snapshot.Todos) {
		return client.Todo{}, false
	}

	return m.snapshot.Todos[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Todos"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch m.state {
	case stateLoading:
		b.WriteString(mutedStyle.Render("Loading..."))
	case stateEmpty:
		b.WriteString(mutedStyle.Render("No todos yet. Add one above!"))
	case statePopulated:
		b.WriteString(m.viewList())
	}

	if m.state == statePopulated {
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render(remainingLabel(m.snapshot.Remaining)))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter add · space toggle · del remove · esc quit"))

	return panelStyle.Render(b.String())
}

func (m Model) viewList() string {
	lines := make([]string, 0, len(m.snapshot.Todos))

	for i, todo := range m.snapshot.Todos {
		box := boxUnchecked
		text := todo.Text

		if todo.Completed {
			box = successStyle.Render(boxChecked)
			text = doneStyle.Render(text)
		}

		line := fmt.Sprintf("%s %s", box, text)

		if i == m.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func remainingLabel(remaining int) string {
	if remaining == 1 {
		return "1 item remaining"
	}

	return fmt.Sprintf("%d items remaining", remaining)
}
