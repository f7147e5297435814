package cmd

import (
	"fmt"

	"github.com/gosuri/uilive"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go-offline-vault/internal/models"
)

var (
	dlContentID    int
	dlKind         string
	dlTitle        string
	dlQuality      string
	dlSeason       int
	dlEpisode      int
	dlEpisodeTitle string
	dlPosterURL    string
)

var downloadCmd = &cobra.Command{
	Use:   "download <media-url>",
	Short: "Download a movie or episode for offline playback",
	Long: `Download fetches the media at the given URL into the vault. HLS playlist
URLs are resolved to their segments and combined into a single file; any
other URL is fetched directly. The command blocks until the download
finishes or fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().IntVar(&dlContentID, "id", 0, "Content id from the metadata provider (required)")
	downloadCmd.Flags().StringVar(&dlKind, "kind", "movie", "Content kind: movie or tv")
	downloadCmd.Flags().StringVar(&dlTitle, "title", "", "Content title (required)")
	downloadCmd.Flags().StringVar(&dlQuality, "quality", "1080p", "Requested quality label")
	downloadCmd.Flags().IntVar(&dlSeason, "season", 0, "Season number (tv only)")
	downloadCmd.Flags().IntVar(&dlEpisode, "episode", 0, "Episode number (tv only)")
	downloadCmd.Flags().StringVar(&dlEpisodeTitle, "episode-title", "", "Episode title (tv only)")
	downloadCmd.Flags().StringVar(&dlPosterURL, "poster", "", "Poster image URL to save alongside the media")
	_ = downloadCmd.MarkFlagRequired("id")
	_ = downloadCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	kind, err := models.ParseKind(dlKind)
	if err != nil {
		return err
	}
	if kind == models.KindEpisode && (dlSeason <= 0 || dlEpisode <= 0) {
		return fmt.Errorf("tv downloads need --season and --episode")
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	meta := models.ContentMeta{
		ID:         dlContentID,
		Kind:       kind,
		Title:      dlTitle,
		PosterPath: dlPosterURL,
	}
	opts := models.Options{
		Quality:      dlQuality,
		Season:       dlSeason,
		Episode:      dlEpisode,
		EpisodeTitle: dlEpisodeTitle,
	}

	// Listeners use buffered channels with non-blocking sends so a slow
	// terminal can never stall the transfer pipeline.
	progressCh := make(chan models.ProgressEvent, 64)
	terminalCh := make(chan models.Notification, 8)
	token := svc.Hub().AddNotificationListener(func(n models.Notification) {
		if n.Kind == models.NoteSuccess || n.Kind == models.NoteError {
			select {
			case terminalCh <- n:
			default:
			}
		}
	})
	defer svc.Hub().RemoveNotificationListener(token)

	id, err := svc.StartDownload(meta, args[0], opts)
	if err != nil {
		return err
	}
	svc.Hub().AddProgressListener(id, func(ev models.ProgressEvent) {
		select {
		case progressCh <- ev:
		default:
		}
	})
	defer svc.Hub().RemoveProgressListener(id)

	log.Infof("Downloading %s as %s", dlTitle, id)

	writer := uilive.New()
	writer.Start()
	defer writer.Stop()

	for {
		select {
		case ev := <-progressCh:
			if ev.TotalBytes > 0 {
				fmt.Fprintf(writer, "%s  %.1f%%  %s / %s  %s/s  ETA %.0fs\n",
					id, ev.Progress, formatBytes(ev.DownloadedBytes), formatBytes(ev.TotalBytes),
					formatBytes(int64(ev.Rate)), ev.ETASeconds)
			} else {
				fmt.Fprintf(writer, "%s  %.1f%%  %s  %s/s\n",
					id, ev.Progress, formatBytes(ev.DownloadedBytes), formatBytes(int64(ev.Rate)))
			}
		case n := <-terminalCh:
			if n.Kind == models.NoteError {
				return fmt.Errorf("%s", n.Message)
			}
			rec, err := svc.GetDownload(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(writer, "%s  done  %s  %s\n", id, formatBytes(rec.DownloadedBytes), rec.FilePath)
			return nil
		}
	}
}
