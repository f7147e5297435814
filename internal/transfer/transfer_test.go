package transfer

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestDownloadComplete(t *testing.T) {
	body := bytes.Repeat([]byte("abc123"), 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	m := NewManager(srv.Client(), fs, 64)

	done := make(chan struct{})
	var begun, gotTotal int64
	var progressCalls int32

	task := m.Download("t1", srv.URL, "/out.bin", Callbacks{
		OnBegin: func(total int64) { begun = 1; gotTotal = total },
		OnProgress: func(downloaded, total int64) {
			atomic.AddInt32(&progressCalls, 1)
		},
		OnDone:  func(downloaded int64) { close(done) },
		OnError: func(err error) { t.Errorf("unexpected error: %v", err) },
	})
	waitFor(t, done, "download completion")

	if begun != 1 {
		t.Error("OnBegin was not called")
	}
	if gotTotal != int64(len(body)) {
		t.Errorf("expected total %d, got %d", len(body), gotTotal)
	}
	if atomic.LoadInt32(&progressCalls) == 0 {
		t.Error("expected at least one progress callback")
	}
	if task.Downloaded() != int64(len(body)) {
		t.Errorf("expected %d bytes downloaded, got %d", len(body), task.Downloaded())
	}

	got, err := afero.ReadFile(fs, "/out.bin")
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Error("downloaded content does not match source")
	}
}

func TestDownloadHttpError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	m := NewManager(srv.Client(), fs, 64)

	failed := make(chan struct{})
	var gotErr error
	m.Download("t1", srv.URL, "/out.bin", Callbacks{
		OnDone:  func(int64) { t.Error("unexpected completion") },
		OnError: func(err error) { gotErr = err; close(failed) },
	})
	waitFor(t, failed, "download failure")

	if !errors.Is(gotErr, ErrHttpStatus) {
		t.Errorf("expected ErrHttpStatus, got %v", gotErr)
	}
}

func TestPauseAndResumeWithRange(t *testing.T) {
	body := bytes.Repeat([]byte("x"), 4096)
	var rangeRequests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := 0
		if rh := r.Header.Get("Range"); rh != "" {
			atomic.AddInt32(&rangeRequests, 1)
			fmt.Sscanf(rh, "bytes=%d-", &offset)
			w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, len(body)-1, len(body)))
			w.WriteHeader(http.StatusPartialContent)
		}
		w.Write(body[offset:])
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	m := NewManager(srv.Client(), fs, 256)

	done := make(chan struct{})
	pauseAt := make(chan struct{})
	var pauseOnce int32
	task := m.Download("t1", srv.URL, "/out.bin", Callbacks{
		OnProgress: func(downloaded, total int64) {
			if downloaded >= 512 && atomic.CompareAndSwapInt32(&pauseOnce, 0, 1) {
				close(pauseAt)
			}
		},
		OnDone:  func(int64) { close(done) },
		OnError: func(err error) { t.Errorf("unexpected error: %v", err) },
	})

	waitFor(t, pauseAt, "pause threshold")
	if !task.Pause() {
		// The transfer may already have finished on a fast runner.
		waitFor(t, done, "download completion")
		return
	}

	// Wait for the goroutine to reach the paused state.
	deadline := time.Now().Add(5 * time.Second)
	for {
		task.mu.Lock()
		s := task.state
		task.mu.Unlock()
		if s == statePaused {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("task never reached paused state")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if task.Pause() {
		t.Error("Pause on a paused task should return false")
	}
	if !task.Resume() {
		t.Fatal("Resume on a paused task should return true")
	}
	waitFor(t, done, "download completion after resume")

	if atomic.LoadInt32(&rangeRequests) == 0 {
		t.Error("expected the resumed request to carry a Range header")
	}
	got, err := afero.ReadFile(fs, "/out.bin")
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(got) != len(body) {
		t.Errorf("expected %d bytes, got %d", len(body), len(got))
	}
}

func TestImmediateResumeAfterPause(t *testing.T) {
	body := bytes.Repeat([]byte("z"), 2048)
	gate := make(chan struct{})
	var gateOnce int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The first request stalls after a partial write so the pause
		// lands mid-transfer; the retry gets the file immediately.
		if atomic.CompareAndSwapInt32(&gateOnce, 0, 1) {
			w.Write(body[:512])
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			<-gate
			return
		}
		offset := 0
		if rh := r.Header.Get("Range"); rh != "" {
			fmt.Sscanf(rh, "bytes=%d-", &offset)
			w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, len(body)-1, len(body)))
			w.WriteHeader(http.StatusPartialContent)
		}
		w.Write(body[offset:])
	}))
	defer srv.Close()
	defer close(gate)

	fs := afero.NewMemMapFs()
	m := NewManager(srv.Client(), fs, 128)

	done := make(chan struct{})
	started := make(chan struct{})
	var startedOnce int32
	task := m.Download("t1", srv.URL, "/out.bin", Callbacks{
		OnProgress: func(int64, int64) {
			if atomic.CompareAndSwapInt32(&startedOnce, 0, 1) {
				close(started)
			}
		},
		OnDone:  func(int64) { close(done) },
		OnError: func(err error) { t.Errorf("unexpected error: %v", err) },
	})
	waitFor(t, started, "first progress")

	// Resume immediately after Pause, before the goroutine can observe the
	// cancellation and park. The transfer must still finish.
	if !task.Pause() {
		t.Fatal("Pause should succeed on a running task")
	}
	if !task.Resume() {
		t.Fatal("Resume right after Pause should be accepted")
	}
	waitFor(t, done, "completion after back-to-back pause and resume")

	got, err := afero.ReadFile(fs, "/out.bin")
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(got) != len(body) {
		t.Errorf("expected %d bytes, got %d", len(body), len(got))
	}
}

func TestResumeRestartsWhenRangeIgnored(t *testing.T) {
	body := []byte(strings.Repeat("segment-data", 64))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always a full 200 response regardless of Range.
		w.Write(body)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	m := NewManager(srv.Client(), fs, int64(len(body)))

	done := make(chan struct{})
	task := m.Download("t1", srv.URL, "/out.bin", Callbacks{
		OnDone:  func(int64) { close(done) },
		OnError: func(err error) { t.Errorf("unexpected error: %v", err) },
	})
	waitFor(t, done, "download completion")

	// Fake a paused state mid-file and resume; the server ignores Range so
	// the file must be rewritten from zero, not appended.
	task.mu.Lock()
	task.state = statePaused
	task.downloaded = int64(len(body) / 2)
	task.mu.Unlock()

	done2 := make(chan struct{})
	task.cb.OnDone = func(int64) { close(done2) }
	if !task.Resume() {
		t.Fatal("Resume should succeed from paused state")
	}
	waitFor(t, done2, "second download completion")

	got, err := afero.ReadFile(fs, "/out.bin")
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("expected clean restart to produce %d bytes, got %d", len(body), len(got))
	}
}

func TestStopSuppressesCallbacks(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("y"), 1024))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer srv.Close()
	defer close(release)

	fs := afero.NewMemMapFs()
	m := NewManager(srv.Client(), fs, 256)

	started := make(chan struct{})
	var startedOnce int32
	task := m.Download("t1", srv.URL, "/out.bin", Callbacks{
		OnProgress: func(int64, int64) {
			if atomic.CompareAndSwapInt32(&startedOnce, 0, 1) {
				close(started)
			}
		},
		OnDone:  func(int64) { t.Error("OnDone after Stop") },
		OnError: func(err error) { t.Errorf("OnError after Stop: %v", err) },
	})
	waitFor(t, started, "first progress")
	task.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for {
		task.mu.Lock()
		s := task.state
		task.mu.Unlock()
		if s == stateStopped {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("task never reached stopped state")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
