package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-offline-vault/internal/models"
	"go-offline-vault/internal/registry"
)

// withService runs fn against a freshly wired service and closes it after.
func withService(fn func(svc *registry.Service) error) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc)
}

var pauseCmd = &cobra.Command{
	Use:   "pause <id>",
	Short: "Pause an in-flight download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *registry.Service) error {
			if err := svc.PauseDownload(args[0]); err != nil {
				return err
			}
			fmt.Printf("Paused %s\n", args[0])
			return nil
		})
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Resume a paused download",
	Long: `Resume restarts a paused download. Without a live transfer in this
process the download starts over from the beginning; the command then
blocks until it finishes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *registry.Service) error {
			id := args[0]
			terminalCh := make(chan models.Notification, 8)
			token := svc.Hub().AddNotificationListener(func(n models.Notification) {
				if n.ID == id && (n.Kind == models.NoteSuccess || n.Kind == models.NoteError) {
					select {
					case terminalCh <- n:
					default:
					}
				}
			})
			defer svc.Hub().RemoveNotificationListener(token)

			if err := svc.ResumeDownload(id); err != nil {
				return err
			}
			fmt.Printf("Resumed %s, waiting for completion...\n", id)
			n := <-terminalCh
			if n.Kind == models.NoteError {
				return fmt.Errorf("%s", n.Message)
			}
			fmt.Printf("Completed %s\n", id)
			return nil
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a download and discard its partial data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *registry.Service) error {
			if err := svc.CancelDownload(args[0]); err != nil {
				return err
			}
			fmt.Printf("Cancelled %s\n", args[0])
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a download record and all of its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *registry.Service) error {
			if err := svc.DeleteDownload(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd, resumeCmd, cancelCmd, deleteCmd)
}
