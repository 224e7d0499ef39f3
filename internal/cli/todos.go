package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"todopop/internal/client"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the current todo list",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(client.LoadConfig())

			snapshot, err := c.List(cmd.Context())

			if err != nil {
				return err
			}

			if len(snapshot.Todos) == 0 {
				fmt.Println(mutedStyle.Render("No todos yet."))
				return nil
			}

			for _, todo := range snapshot.Todos {
				box := "☐"
				text := todo.Text

				if todo.Completed {
					box = successStyle.Render("☑")
					text = doneStyle.Render(text)
				}

				fmt.Printf("%s %s  %s\n", box, text, mutedStyle.Render(todo.ID))
			}

			label := fmt.Sprintf("%d items remaining", snapshot.Remaining)

			if snapshot.Remaining == 1 {
				label = "1 item remaining"
			}

			fmt.Println(mutedStyle.Render(label))

			return nil
		},
	}
}

func AddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))

			if text == "" {
				return errors.New("text must not be empty")
			}

			c := client.New(client.LoadConfig())

			return c.Call(cmd.Context(), "todos.add", map[string]string{"text": text})
		},
	}
}

func ToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a todo's completion flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(client.LoadConfig())

			err := c.Call(cmd.Context(), "todos.toggle", map[string]string{"id": args[0]})

			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("no todo with id %s", args[0])
			}

			return err
		},
	}
}

func RemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(client.LoadConfig())

			return c.Call(cmd.Context(), "todos.remove", map[string]string{"id": args[0]})
		},
	}
}
