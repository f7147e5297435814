// Package transfer implements the background transfer primitive: one HTTP
// download per task, driven off the caller's goroutine, reporting through
// begin/progress/done/error callbacks and controllable via Pause, Resume
// and Stop. Pause retains the byte offset; Resume continues with an HTTP
// Range request.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Transfer errors, wrapped with %w so callers can classify failures.
var (
	ErrHttpStatus  = errors.New("unexpected HTTP status code")
	ErrHttpRequest = errors.New("HTTP request creation/execution error")
	ErrFileSystem  = errors.New("filesystem error")
)

// DefaultChunkSize bounds both copy granularity and progress callback
// frequency.
const DefaultChunkSize = 256 * 1024

// Callbacks receive task lifecycle events. All callbacks are optional and
// are invoked from the task's goroutine.
type Callbacks struct {
	OnBegin    func(totalBytes int64)
	OnProgress func(downloadedBytes, totalBytes int64)
	OnDone     func(downloadedBytes int64)
	OnError    func(err error)
}

// Manager creates transfer tasks sharing one HTTP client and filesystem.
type Manager struct {
	client    *http.Client
	fs        afero.Fs
	chunkSize int64
}

// NewManager creates a Manager. A nil client gets a default with a long
// timeout suitable for large media files.
func NewManager(client *http.Client, fs afero.Fs, chunkSize int64) *Manager {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Minute}
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Manager{client: client, fs: fs, chunkSize: chunkSize}
}

type taskState int

const (
	stateRunning taskState = iota
	statePausing
	statePaused
	stateStopping
	stateStopped
	stateDone
	stateFailed
)

// Task is one background transfer.
type Task struct {
	id   string
	url  string
	dest string

	m  *Manager
	cb Callbacks

	mu            sync.Mutex
	state         taskState
	cancel        context.CancelFunc
	downloaded    int64
	total         int64
	begun         bool
	resumePending bool
}

// Download starts a background transfer of url into dest and returns its
// control handle.
func (m *Manager) Download(id, url, dest string, cb Callbacks) *Task {
	t := &Task{
		id:    id,
		url:   url,
		dest:  dest,
		m:     m,
		cb:    cb,
		total: -1,
	}
	t.start(0)
	return t
}

func (t *Task) start(offset int64) {
	ctx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.state = stateRunning
	t.cancel = cancel
	t.mu.Unlock()
	go t.run(ctx, offset)
}

func (t *Task) run(ctx context.Context, offset int64) {
	err := t.fetch(ctx, offset)
	if err == nil {
		t.setState(stateDone)
		log.Debugf("Transfer %s finished (%d bytes)", t.id, t.Downloaded())
		if t.cb.OnDone != nil {
			t.cb.OnDone(t.Downloaded())
		}
		return
	}

	t.mu.Lock()
	interrupted := t.state
	t.mu.Unlock()

	switch interrupted {
	case statePausing:
		// A resume may have been requested before this goroutine observed
		// the cancellation; honor it instead of parking.
		t.mu.Lock()
		if t.resumePending {
			t.resumePending = false
			t.state = stateRunning
			ctx, cancel := context.WithCancel(context.Background())
			t.cancel = cancel
			offset := t.downloaded
			t.mu.Unlock()
			log.Debugf("Transfer %s resuming immediately from %d bytes", t.id, offset)
			go t.run(ctx, offset)
			return
		}
		t.state = statePaused
		t.mu.Unlock()
		log.Debugf("Transfer %s paused at %d bytes", t.id, t.Downloaded())
	case stateStopping:
		t.setState(stateStopped)
		log.Debugf("Transfer %s stopped", t.id)
	default:
		t.setState(stateFailed)
		log.WithError(err).Debugf("Transfer %s failed", t.id)
		if t.cb.OnError != nil {
			t.cb.OnError(err)
		}
	}
}

func (t *Task) fetch(ctx context.Context, offset int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return fmt.Errorf("%w: creating request for %s: %v", ErrHttpRequest, t.url, err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := t.m.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: performing request for %s: %v", ErrHttpRequest, t.url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if offset > 0 {
			// Server ignored the Range request; start over.
			log.Debugf("Transfer %s: server ignored range request, restarting from zero", t.id)
			offset = 0
		}
	case http.StatusPartialContent:
	default:
		return fmt.Errorf("%w: received status %d from %s", ErrHttpStatus, resp.StatusCode, t.url)
	}

	total := int64(-1)
	if resp.ContentLength >= 0 {
		total = offset + resp.ContentLength
	}

	t.mu.Lock()
	t.downloaded = offset
	t.total = total
	firstRun := !t.begun
	t.begun = true
	t.mu.Unlock()

	if firstRun && t.cb.OnBegin != nil {
		t.cb.OnBegin(total)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	out, err := t.m.fs.OpenFile(t.dest, flags, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrFileSystem, t.dest, err)
	}
	defer out.Close()

	buf := make([]byte, t.m.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("%w: writing to %s: %v", ErrFileSystem, t.dest, werr)
			}
			t.mu.Lock()
			t.downloaded += int64(n)
			downloaded, totalNow := t.downloaded, t.total
			t.mu.Unlock()
			if t.cb.OnProgress != nil {
				t.cb.OnProgress(downloaded, totalNow)
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading response body from %s: %w", t.url, rerr)
		}
	}
}

func (t *Task) setState(s taskState) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// Pause signals the running transfer to stop after the current chunk,
// retaining its offset. Returns false if the task is not running.
func (t *Task) Pause() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateRunning {
		return false
	}
	t.state = statePausing
	t.cancel()
	return true
}

// Resume continues a paused transfer from its retained offset via an HTTP
// Range request. A resume that arrives while the pause is still settling is
// remembered and applied by the transfer goroutine. Returns false if the
// task is neither paused nor pausing.
func (t *Task) Resume() bool {
	t.mu.Lock()
	switch t.state {
	case statePaused:
		offset := t.downloaded
		t.mu.Unlock()
		t.start(offset)
		return true
	case statePausing:
		t.resumePending = true
		t.mu.Unlock()
		return true
	}
	t.mu.Unlock()
	return false
}

// Stop aborts the transfer. Any partial file is left for the caller to
// clean up.
func (t *Task) Stop() {
	t.mu.Lock()
	t.resumePending = false
	switch t.state {
	case stateRunning, statePausing:
		t.state = stateStopping
		t.cancel()
	case statePaused:
		t.state = stateStopped
	}
	t.mu.Unlock()
}

// Downloaded returns the bytes written so far.
func (t *Task) Downloaded() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.downloaded
}

// Total returns the expected total size, or -1 when unknown.
func (t *Task) Total() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}
