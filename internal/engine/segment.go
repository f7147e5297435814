package engine

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"go-offline-vault/internal/models"
	"go-offline-vault/internal/playlist"
	"go-offline-vault/internal/transfer"
)

// Segments downloads HLS playlists: resolve the playlist to its media
// segments, fetch each segment into a scratch directory, then combine them
// into the destination file.
type Segments struct {
	fs        afero.Fs
	transfers *transfer.Manager
	resolver  *playlist.Resolver
}

// NewSegments creates a segmented engine.
func NewSegments(fs afero.Fs, transfers *transfer.Manager, resolver *playlist.Resolver) *Segments {
	return &Segments{fs: fs, transfers: transfers, resolver: resolver}
}

type segResult struct {
	bytes int64
	err   error
}

type segmentJob struct {
	mu       sync.Mutex
	task     *transfer.Task
	paused   bool
	stopped  bool
	resumeCh chan struct{}

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Start begins downloading the playlist at mediaURL into dest, staging
// segments under scratchDir, and returns a handle controlling the job.
func (e *Segments) Start(id, mediaURL, dest, scratchDir string, hooks Hooks) Handle {
	j := &segmentJob{stopCh: make(chan struct{})}
	go e.run(j, id, mediaURL, dest, scratchDir, hooks)
	return j
}

func (e *Segments) run(j *segmentJob, id, mediaURL, dest, scratchDir string, hooks Hooks) {
	fail := func(err error) {
		e.removeScratch(scratchDir)
		if rmErr := e.fs.Remove(dest); rmErr != nil {
			log.Debugf("No partial file to remove for %s: %v", id, rmErr)
		}
		if hooks.OnError != nil {
			hooks.OnError(err)
		}
	}

	manifest, err := e.resolver.Resolve(context.Background(), mediaURL)
	if err != nil {
		fail(err)
		return
	}
	if len(manifest.Segments) == 0 {
		fail(models.NewError(models.ErrPlaylistParse, "playlist %s contains no segments", mediaURL))
		return
	}

	if err := e.fs.MkdirAll(scratchDir, 0o755); err != nil {
		fail(models.NewError(models.ErrSegmentTransfer, "creating scratch directory %s: %v", scratchDir, err))
		return
	}

	if hooks.OnBegin != nil {
		hooks.OnBegin(-1)
	}

	baseURL := manifest.URL
	if baseURL == "" {
		baseURL = mediaURL
	}

	started := time.Now()
	total := len(manifest.Segments)
	var doneBytes int64

	log.Debugf("Job %s: fetching %d segments from %s", id, total, mediaURL)

	for i, seg := range manifest.Segments {
		if j.isStopped() {
			e.removeScratch(scratchDir)
			return
		}
		if !j.waitIfPaused() {
			e.removeScratch(scratchDir)
			return
		}

		segURL, err := playlist.ResolveURI(baseURL, seg.URI)
		if err != nil {
			fail(models.NewError(models.ErrSegmentTransfer, "segment %d of %d: %v", i+1, total, err))
			return
		}
		segPath := filepath.Join(scratchDir, SegmentFileName(i))

		idx := i
		base := doneBytes
		done := make(chan segResult, 1)
		task := e.transfers.Download(id, segURL, segPath, transfer.Callbacks{
			OnProgress: func(downloaded, segTotal int64) {
				if hooks.OnProgress == nil {
					return
				}
				frac := 0.0
				if segTotal > 0 {
					frac = float64(downloaded) / float64(segTotal)
				}
				progress := (float64(idx) + frac) / float64(total) * 100
				rate, _ := rateAndETA(started, base+downloaded, -1)
				eta := 0.0
				if progress > 0 {
					elapsed := time.Since(started).Seconds()
					eta = elapsed / progress * (100 - progress)
				}
				hooks.OnProgress(progress, base+downloaded, -1, rate, eta)
			},
			OnDone:  func(downloaded int64) { done <- segResult{bytes: downloaded} },
			OnError: func(err error) { done <- segResult{err: err} },
		})

		j.mu.Lock()
		j.task = task
		if j.paused {
			task.Pause()
		}
		if j.stopped {
			task.Stop()
		}
		j.mu.Unlock()

		select {
		case res := <-done:
			if res.err != nil {
				fail(models.NewError(models.ErrSegmentTransfer, "segment %d of %d: %v", i+1, total, res.err))
				return
			}
			doneBytes += res.bytes
		case <-j.stopCh:
			e.removeScratch(scratchDir)
			return
		}
	}

	if err := Combine(e.fs, scratchDir, dest, total); err != nil {
		if rmErr := e.fs.Remove(dest); rmErr != nil {
			log.Debugf("No combined file to remove for %s: %v", id, rmErr)
		}
		if hooks.OnError != nil {
			hooks.OnError(err)
		}
		return
	}

	log.Debugf("Job %s: combined %d segments into %s (%d bytes)", id, total, dest, doneBytes)
	if hooks.OnProgress != nil {
		hooks.OnProgress(100, doneBytes, doneBytes, 0, 0)
	}
	if hooks.OnComplete != nil {
		hooks.OnComplete(doneBytes)
	}
}

func (e *Segments) removeScratch(scratchDir string) {
	if err := e.fs.RemoveAll(scratchDir); err != nil {
		log.WithError(err).Warnf("Failed to remove scratch directory %s", scratchDir)
	}
}

func (j *segmentJob) isStopped() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stopped
}

// waitIfPaused blocks between segments while the job is paused. It returns
// false when the job was stopped while waiting.
func (j *segmentJob) waitIfPaused() bool {
	j.mu.Lock()
	paused := j.paused
	ch := j.resumeCh
	j.mu.Unlock()
	if !paused {
		return true
	}
	select {
	case <-ch:
		return true
	case <-j.stopCh:
		return false
	}
}

// Pause halts the job. An in-flight segment transfer pauses in place; the
// loop parks before starting the next segment.
func (j *segmentJob) Pause() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.stopped || j.paused {
		return false
	}
	j.paused = true
	j.resumeCh = make(chan struct{})
	if j.task != nil {
		j.task.Pause()
	}
	return true
}

// Resume continues a paused job.
func (j *segmentJob) Resume() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.stopped || !j.paused {
		return false
	}
	j.paused = false
	if j.task != nil {
		j.task.Resume()
	}
	close(j.resumeCh)
	return true
}

// Stop aborts the job. The scratch directory is removed by the job
// goroutine on its way out.
func (j *segmentJob) Stop() {
	j.mu.Lock()
	j.stopped = true
	if j.paused {
		j.paused = false
		close(j.resumeCh)
	}
	if j.task != nil {
		j.task.Stop()
	}
	j.mu.Unlock()
	j.stopOnce.Do(func() { close(j.stopCh) })
}
