package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RamonASM/aerialshots-portal-sub005/internal/storage"
)

func ingestCmd() *cobra.Command {
	var (
		listingID string
		address   string
		sourceRef string
		category  string
		assignee  string
		rush      bool
		ready     bool
		width     int
		height    int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Register a delivered image for QC review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			status := storage.StatusPending
			if ready {
				status = storage.StatusReadyForQC
			}

			asset := &storage.MediaAsset{
				ListingID:  listingID,
				Address:    address,
				SourceRef:  sourceRef,
				Width:      width,
				Height:     height,
				Status:     status,
				Category:   category,
				Rush:       rush,
				AssignedTo: assignee,
			}
			if err := db.CreateAsset(asset); err != nil {
				return err
			}

			fmt.Printf("Ingested asset %s for listing %s\n", asset.ID, listingID)
			return nil
		},
	}

	cmd.Flags().StringVar(&listingID, "listing", "", "parent listing identifier")
	cmd.Flags().StringVar(&address, "address", "", "listing address (display label)")
	cmd.Flags().StringVar(&sourceRef, "src", "", "source image reference")
	cmd.Flags().StringVar(&category, "category", "", "optional category tag (exterior, kitchen, aerial, ...)")
	cmd.Flags().StringVar(&assignee, "assign", "", "assigned reviewer name")
	cmd.Flags().BoolVar(&rush, "rush", false, "expedited priority")
	cmd.Flags().BoolVar(&ready, "ready", false, "ingest as ready_for_qc instead of pending")
	cmd.Flags().IntVar(&width, "width", 4000, "source image width in pixels")
	cmd.Flags().IntVar(&height, "height", 3000, "source image height in pixels")
	cmd.MarkFlagRequired("listing")
	cmd.MarkFlagRequired("address")
	cmd.MarkFlagRequired("src")

	return cmd
}
