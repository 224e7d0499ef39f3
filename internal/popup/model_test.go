package popup

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todopop/internal/client"
)

type recordedCall struct {
	fn   string
	args map[string]string
}

type fakePlatform struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakePlatform) Call(_ context.Context, fn string, args any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, recordedCall{fn: fn, args: args.(map[string]string)})

	return nil
}

func (f *fakePlatform) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]recordedCall(nil), f.calls...)
}

func newTestModel() (Model, *fakePlatform) {
	platform := &fakePlatform{}
	snapshots := make(chan client.Snapshot)

	return NewModel(platform, snapshots), platform
}

// runCmd executes the command returned by Update so the recorded platform
// call becomes observable.
func runCmd(cmd tea.Cmd) {
	if cmd != nil {
		cmd()
	}
}

func applySnapshot(m Model, snapshot client.Snapshot) Model {
	updated, _ := m.Update(snapshotMsg(snapshot))
	return updated.(Model)
}

func twoTodos() client.Snapshot {
	return client.Snapshot{
		Todos: []client.Todo{
			{ID: "id-newer", Text: "second", Completed: false},
			{ID: "id-older", Text: "first", Completed: true},
		},
		Remaining: 1,
	}
}

func TestModelStartsLoading(t *testing.T) {
	m, _ := newTestModel()

	view := m.View()

	assert.Contains(t, view, "Loading...")
	assert.NotContains(t, view, "remaining")
}

func TestModelEmptySnapshotShowsPrompt(t *testing.T) {
	m, _ := newTestModel()

	m = applySnapshot(m, client.Snapshot{})

	view := m.View()

	assert.Contains(t, view, "No todos yet. Add one above!")
	assert.NotContains(t, view, "remaining")
}

func TestModelPopulatedViewListsItemsWithCounter(t *testing.T) {
	m, _ := newTestModel()

	m = applySnapshot(m, twoTodos())

	view := m.View()

	assert.Contains(t, view, "second")
	assert.Contains(t, view, "first")
	assert.Contains(t, view, "1 item remaining")
}

func TestCompletedItemRendersStruckThrough(t *testing.T) {
	// Styling is stripped when no terminal is attached; force a profile so
	// the strikethrough sequence is observable.
	lipgloss.SetColorProfile(termenv.ANSI)
	defer lipgloss.SetColorProfile(termenv.Ascii)

	m, _ := newTestModel()
	m = applySnapshot(m, twoTodos())

	view := m.View()

	assert.Contains(t, view, doneStyle.Render("first"))
	assert.NotContains(t, view, doneStyle.Render("second"))

	// \x1b[9m is the strikethrough attribute.
	assert.Contains(t, doneStyle.Render("first"), ";9m")
}

func TestRemainingLabelPluralizes(t *testing.T) {
	assert.Equal(t, "0 items remaining", remainingLabel(0))
	assert.Equal(t, "1 item remaining", remainingLabel(1))
	assert.Equal(t, "3 items remaining", remainingLabel(3))
}

func TestEnterSubmitsTrimmedTextAndClearsInput(t *testing.T) {
	m, platform := newTestModel()
	m = applySnapshot(m, client.Snapshot{})

	m.input.SetValue("  Buy milk  ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	require.NotNil(t, cmd)
	runCmd(cmd)

	calls := platform.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "todos.add", calls[0].fn)
	assert.Equal(t, "Buy milk", calls[0].args["text"])

	// The buffer clears before the call settles.
	assert.Equal(t, "", m.input.Value())
}

func TestEnterIgnoresWhitespaceOnlyInput(t *testing.T) {
	m, platform := newTestModel()
	m = applySnapshot(m, client.Snapshot{})

	m.input.SetValue("   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(cmd)

	assert.Empty(t, platform.recorded())
}

func TestSpaceTogglesSelectedTodo(t *testing.T) {
	m, platform := newTestModel()
	m = applySnapshot(m, twoTodos())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	runCmd(cmd)

	calls := platform.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "todos.toggle", calls[0].fn)
	assert.Equal(t, "id-newer", calls[0].args["id"])
}

func TestSpaceWhileTypingDoesNotToggle(t *testing.T) {
	m, platform := newTestModel()
	m = applySnapshot(m, twoTodos())

	m.input.SetValue("milk")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	runCmd(cmd)

	assert.Empty(t, platform.recorded())
}

func TestDeleteRemovesSelectedTodo(t *testing.T) {
	m, platform := newTestModel()
	m = applySnapshot(m, twoTodos())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDelete})
	runCmd(cmd)

	calls := platform.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "todos.remove", calls[0].fn)
	assert.Equal(t, "id-older", calls[0].args["id"])
}

func TestCursorStaysInBounds(t *testing.T) {
	m, _ := newTestModel()
	m = applySnapshot(m, twoTodos())

	for i := 0; i < 5; i++ {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = updated.(Model)
	}

	assert.Equal(t, 1, m.cursor)

	for i := 0; i < 5; i++ {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
		m = updated.(Model)
	}

	assert.Equal(t, 0, m.cursor)
}

func TestCursorClampsWhenListShrinks(t *testing.T) {
	m, _ := newTestModel()
	m = applySnapshot(m, twoTodos())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)

	m = applySnapshot(m, client.Snapshot{
		Todos:     []client.Todo{{ID: "id-newer", Text: "second"}},
		Remaining: 1,
	})

	assert.Equal(t, 0, m.cursor)
}

func TestStreamEndKeepsLastView(t *testing.T) {
	m, _ := newTestModel()
	m = applySnapshot(m, twoTodos())

	updated, _ := m.Update(streamEndMsg{})
	m = updated.(Model)

	view := m.View()

	assert.Contains(t, view, "second")
	assert.Contains(t, view, "1 item remaining")
}

func TestEscQuits(t *testing.T) {
	m, _ := newTestModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewFitsPopupWidth(t *testing.T) {
	m, _ := newTestModel()
	m = applySnapshot(m, twoTodos())

	for _, line := range strings.Split(m.View(), "\n") {
		assert.LessOrEqual(t, len([]rune(stripANSI(line))), popupWidth+2)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false

	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
