package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go-offline-vault/internal/models"
)

var listStatusFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List downloads in the vault",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		var recs []*models.Record
		if listStatusFlag != "" {
			recs = svc.GetDownloadsByStatus(models.Status(listStatusFlag))
		} else {
			recs = svc.GetAllDownloads()
		}
		if len(recs) == 0 {
			fmt.Println("No downloads.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPROGRESS\tSIZE\tQUALITY")
		for _, rec := range recs {
			title := rec.Title
			if rec.EpisodeTitle != "" {
				title = fmt.Sprintf("%s: %s", rec.Title, rec.EpisodeTitle)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%\t%s\t%s\n",
				rec.ID, title, rec.Status, rec.Progress, formatBytes(rec.DownloadedBytes), rec.Quality)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatusFlag, "status", "", "Only show downloads in this state (pending, downloading, paused, completed, failed, cancelled)")
	rootCmd.AddCommand(listCmd)
}
