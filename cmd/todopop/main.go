package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"todopop/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "todopop",
		Short: "todopop - a live-updating todo popup",
		Long: `todopop talks to a todopop deployment (TODOPOP_URL) and keeps a
todo list in sync across every connected client.`,
	}

	rootCmd.AddCommand(cli.PopupCmd())
	rootCmd.AddCommand(cli.ListCmd())
	rootCmd.AddCommand(cli.AddCmd())
	rootCmd.AddCommand(cli.ToggleCmd())
	rootCmd.AddCommand(cli.RemoveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
