package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-offline-vault/internal/registry"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove failed and cancelled downloads and their leftover files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *registry.Service) error {
			n := svc.CleanupFailedDownloads()
			fmt.Printf("Removed %d downloads\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
