package main

import (
	"os"

	"github.com/spf13/cobra"
)

var dbPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "asqc",
		Short: "QC review tool for AerialShots media deliveries",
		Long: "asqc works the photo QC backlog: rank listings awaiting review,\n" +
			"step through their assets with keyboard shortcuts, paint removal\n" +
			"masks for the object-removal service, and approve or reject results.",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "asset database path (default: data dir)")

	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(queueCmd())
	rootCmd.AddCommand(approveCmd())
	rootCmd.AddCommand(rejectCmd())
	rootCmd.AddCommand(reviewCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
