package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func approveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <asset-id>",
		Short: "Approve an asset without opening the TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.ApproveAsset(args[0]); err != nil {
				return err
			}
			fmt.Printf("Approved %s\n", args[0])
			return nil
		},
	}
}

func rejectCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "reject <asset-id>",
		Short: "Reject an asset without opening the TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.RejectAsset(args[0], notes); err != nil {
				return err
			}
			fmt.Printf("Rejected %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&notes, "message", "m", "", "rejection notes (optional)")
	return cmd
}
