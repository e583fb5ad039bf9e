package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/RamonASM/aerialshots-portal-sub005/internal/backlog"
)

func queueCmd() *cobra.Command {
	var (
		filterFlag string
		sortFlag   string
	)

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the ranked QC backlog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := backlog.Filter(filterFlag)
			if !filter.Valid() {
				return fmt.Errorf("unknown filter %q (all, pending, approved, rejected, processing)", filterFlag)
			}
			order := backlog.SortOrder(sortFlag)
			if !order.Valid() {
				return fmt.Errorf("unknown sort %q (priority, oldest, newest, rush)", sortFlag)
			}

			cfg, db, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			items, err := db.ListBacklog(cfg.BacklogWindow())
			if err != nil {
				return err
			}

			groups := backlog.Rank(items, filter, order, time.Now())
			if len(groups) == 0 {
				fmt.Println("Queue is empty.")
				return nil
			}

			fmt.Print(renderQueueTable(groups, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&filterFlag, "filter", "pending", "status filter (pending matches ready_for_qc too)")
	cmd.Flags().StringVar(&sortFlag, "sort", "priority", "sort order")
	return cmd
}

var queueHeaderStyle = lipgloss.NewStyle().Bold(true).
	Foreground(lipgloss.AdaptiveColor{Light: "125", Dark: "205"})

func renderQueueTable(groups []backlog.Group, now time.Time) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("LISTING", "ADDRESS", "PENDING", "TOTAL", "RUSH", "AGE", "SCORE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return queueHeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, g := range groups {
		rush := ""
		if g.IsRush {
			rush = "RUSH"
		}
		t.Row(
			truncate(g.ListingID, 16),
			truncate(g.Address, 32),
			fmt.Sprintf("%d", g.PendingCount),
			fmt.Sprintf("%d", g.TotalCount),
			rush,
			formatAge(now.Sub(g.OldestCreatedAt)),
			fmt.Sprintf("%.0f", g.PriorityScore),
		)
	}

	return t.Render() + "\n"
}

// formatAge renders a duration the way reviewers think about backlog age
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
