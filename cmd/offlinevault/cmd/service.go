package cmd

import (
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"go-offline-vault/internal/engine"
	"go-offline-vault/internal/index"
	"go-offline-vault/internal/playlist"
	"go-offline-vault/internal/registry"
	"go-offline-vault/internal/store"
	"go-offline-vault/internal/transfer"
)

// newService wires the full download stack from the loaded configuration.
// Callers own the returned service and must Close it.
func newService() (*registry.Service, error) {
	cfg := &globalConfig

	if err := os.MkdirAll(cfg.SavePath, 0o755); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DatabaseBackend, cfg.ResolvedDatabasePath())
	if err != nil {
		return nil, err
	}

	search, err := index.Open(cfg.ResolvedIndexPath())
	if err != nil {
		st.Close()
		return nil, err
	}

	fs := afero.NewOsFs()
	client := &http.Client{Timeout: time.Duration(cfg.TransferTimeoutSec) * time.Second}
	transfers := transfer.NewManager(client, fs, int64(cfg.TransferChunkKB)*1024)
	resolver := playlist.NewResolver(
		client,
		cfg.PlaylistMaxRetries,
		time.Duration(cfg.PlaylistRetryDelayMs)*time.Millisecond,
	)

	svc, err := registry.New(registry.Options{
		Store:    st,
		Fs:       fs,
		Segments: engine.NewSegments(fs, transfers, resolver),
		Single:   engine.NewSingleFile(transfers),
		Search:   search,
		Client:   client,
		SavePath: cfg.SavePath,
	})
	if err != nil {
		search.Close()
		st.Close()
		return nil, err
	}

	log.Debugf("Service ready: save path %s, %s registry at %s",
		cfg.SavePath, cfg.DatabaseBackend, cfg.ResolvedDatabasePath())
	return svc, nil
}
