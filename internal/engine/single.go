package engine

import (
	"time"

	"go-offline-vault/internal/transfer"
)

// SingleFile downloads direct media URLs in one transfer.
type SingleFile struct {
	transfers *transfer.Manager
}

// NewSingleFile creates a single-file engine on top of a transfer manager.
func NewSingleFile(transfers *transfer.Manager) *SingleFile {
	return &SingleFile{transfers: transfers}
}

// Start begins downloading url into dest and returns a handle controlling
// the transfer.
func (e *SingleFile) Start(id, url, dest string, hooks Hooks) Handle {
	started := time.Now()
	return e.transfers.Download(id, url, dest, transfer.Callbacks{
		OnBegin: func(total int64) {
			if hooks.OnBegin != nil {
				hooks.OnBegin(total)
			}
		},
		OnProgress: func(downloaded, total int64) {
			if hooks.OnProgress == nil {
				return
			}
			progress := 0.0
			if total > 0 {
				progress = float64(downloaded) / float64(total) * 100
			}
			rate, eta := rateAndETA(started, downloaded, total)
			hooks.OnProgress(progress, downloaded, total, rate, eta)
		},
		OnDone: func(downloaded int64) {
			if hooks.OnComplete != nil {
				hooks.OnComplete(downloaded)
			}
		},
		OnError: func(err error) {
			if hooks.OnError != nil {
				hooks.OnError(err)
			}
		},
	})
}
