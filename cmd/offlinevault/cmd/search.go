package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go-offline-vault/internal/registry"
)

var searchLimitFlag int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search downloaded titles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *registry.Service) error {
			recs, err := svc.SearchDownloads(args[0], searchLimitFlag)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tQUALITY\tFILE")
			for _, rec := range recs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.ID, rec.Title, rec.Quality, rec.FilePath)
			}
			return w.Flush()
		})
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimitFlag, "limit", 25, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
