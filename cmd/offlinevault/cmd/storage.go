package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-offline-vault/internal/registry"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Show vault storage usage and free disk space",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *registry.Service) error {
			summary, err := svc.GetStorageSummary()
			if err != nil {
				return err
			}
			fmt.Printf("Downloads:  %d (%d completed)\n", summary.TotalRecords, summary.CompletedRecords)
			fmt.Printf("Used:       %s\n", formatBytes(summary.TotalBytes))
			fmt.Printf("Free space: %s\n", formatBytes(int64(summary.FreeBytes)))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)
}
