package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-offline-vault/internal/models"
	"go-offline-vault/internal/registry"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [id]",
	Short: "Verify completed downloads against their recorded checksums",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *registry.Service) error {
			if len(args) == 1 {
				if err := svc.VerifyDownload(args[0]); err != nil {
					return err
				}
				fmt.Printf("%s OK\n", args[0])
				return nil
			}

			bad := 0
			for _, rec := range svc.GetDownloadsByStatus(models.StatusCompleted) {
				if err := svc.VerifyDownload(rec.ID); err != nil {
					fmt.Printf("%s FAILED: %v\n", rec.ID, err)
					bad++
					continue
				}
				fmt.Printf("%s OK\n", rec.ID)
			}
			if bad > 0 {
				return fmt.Errorf("%d downloads failed verification", bad)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
