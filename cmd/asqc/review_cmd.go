package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [listing-id]",
		Short: "Interactive QC review session",
		Long: `Interactive QC review session.

Without arguments, opens the ranked backlog to pick a listing. With a
listing id, jumps straight into its review session.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("review requires an interactive terminal")
			}

			cfg, db, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			listingID := ""
			if len(args) == 1 {
				listingID = args[0]
			}

			m, err := newTuiModel(cfg, db, listingID)
			if err != nil {
				return err
			}

			p := tea.NewProgram(m, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	return cmd
}
