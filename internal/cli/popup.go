package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"todopop/internal/client"
	"todopop/internal/popup"
)

func PopupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "popup",
		Short: "Open the todo popup",
		Long:  "Opens the live todo popup: a subscribed list view with inline add, toggle and remove.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(client.LoadConfig())

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			snapshots, err := c.Subscribe(ctx)

			if err != nil {
				return fmt.Errorf("connect to deployment: %w", err)
			}

			program := tea.NewProgram(popup.NewModel(c, snapshots), tea.WithAltScreen())

			if _, err := program.Run(); err != nil {
				return err
			}

			return nil
		},
	}
}
