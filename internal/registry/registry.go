// Package registry is the authoritative download registry. It owns every
// download record, serializes all state transitions behind one mutex,
// persists the full record set to the key-value store, and fans events out
// through the observer hub.
package registry

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"

	"go-offline-vault/internal/engine"
	"go-offline-vault/internal/fsys"
	"go-offline-vault/internal/index"
	"go-offline-vault/internal/models"
	"go-offline-vault/internal/observer"
	"go-offline-vault/internal/playlist"
	"go-offline-vault/internal/store"
)

// storeKey holds the serialized record set. The whole set is written as one
// JSON document per update.
const storeKey = "downloads"

// persistInterval throttles snapshot writes during progress streaming.
const persistInterval = 500 * time.Millisecond

// Options wires a Service together. Store, Segments, Single and SavePath
// are required; everything else gets a sensible default.
type Options struct {
	Store    store.Store
	Fs       afero.Fs
	Space    fsys.SpaceReporter
	Hub      *observer.Hub
	Segments *engine.Segments
	Single   *engine.SingleFile
	Search   *index.Index
	Client   *http.Client
	SavePath string
}

// Service is the download registry.
type Service struct {
	mu      sync.Mutex
	records map[string]*models.Record
	jobs    map[string]engine.Handle

	store    store.Store
	fs       afero.Fs
	space    fsys.SpaceReporter
	hub      *observer.Hub
	segments *engine.Segments
	single   *engine.SingleFile
	search   *index.Index
	client   *http.Client
	savePath string

	lastPersist time.Time
}

// New builds a Service and loads the persisted record set. Records that
// were in flight when the previous process exited come back as paused.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("registry: a store is required")
	}
	if opts.SavePath == "" {
		return nil, fmt.Errorf("registry: a save path is required")
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Hub == nil {
		opts.Hub = observer.NewHub()
	}
	if opts.Space == nil {
		opts.Space = fsys.NewSpaceReporter()
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}

	s := &Service{
		records:  make(map[string]*models.Record),
		jobs:     make(map[string]engine.Handle),
		store:    opts.Store,
		fs:       opts.Fs,
		space:    opts.Space,
		hub:      opts.Hub,
		segments: opts.Segments,
		single:   opts.Single,
		search:   opts.Search,
		client:   opts.Client,
		savePath: opts.SavePath,
	}

	if err := s.fs.MkdirAll(s.savePath, 0o755); err != nil {
		return nil, models.NewError(models.ErrStorage, "creating save path %s: %v", s.savePath, err)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) load() error {
	raw, err := s.store.Get(storeKey)
	if err == store.ErrNotFound {
		return nil
	}
	if err != nil {
		return models.NewError(models.ErrStorage, "loading download registry: %v", err)
	}

	var recs []*models.Record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return models.NewError(models.ErrStorage, "decoding download registry: %v", err)
	}

	restored := 0
	for _, rec := range recs {
		// No transfer survives a process restart.
		if rec.Status.IsActive() {
			rec.Status = models.StatusPaused
			rec.Rate = 0
			rec.ETASeconds = 0
			restored++
		}
		s.records[rec.ID] = rec
	}
	if restored > 0 {
		log.Infof("Restored %d interrupted downloads as paused", restored)
	}
	return nil
}

// persistLocked writes the full record set. Callers hold s.mu.
func (s *Service) persistLocked() error {
	recs := make([]*models.Record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	data, err := json.Marshal(recs)
	if err != nil {
		return models.NewError(models.ErrStorage, "encoding download registry: %v", err)
	}
	if err := s.store.Set(storeKey, string(data)); err != nil {
		return models.NewError(models.ErrStorage, "persisting download registry: %v", err)
	}
	s.lastPersist = time.Now()
	return nil
}

// persistQuietLocked is persistLocked for callback paths where a storage
// hiccup must not abort a running transfer.
func (s *Service) persistQuietLocked() {
	if err := s.persistLocked(); err != nil {
		log.WithError(err).Warn("Failed to persist download registry")
	}
}

func (s *Service) destPath(id, quality string) string {
	return filepath.Join(s.savePath, fmt.Sprintf("%s_%s.mp4", id, quality))
}

func (s *Service) scratchPath(id string) string {
	return filepath.Join(s.savePath, "scratch", id)
}

// StartDownload registers and launches a download for the given content.
// The returned id is deterministic, so repeated requests for the same
// content are rejected rather than duplicated.
func (s *Service) StartDownload(meta models.ContentMeta, mediaURL string, opts models.Options) (string, error) {
	if mediaURL == "" {
		return "", fmt.Errorf("no media URL supplied for %q", meta.Title)
	}
	id := models.DerivedID(meta.ID, meta.Kind, opts.Season, opts.Episode)

	s.mu.Lock()
	previous := s.records[id]
	if previous != nil {
		switch {
		case previous.Status.IsActive():
			s.mu.Unlock()
			return id, models.NewError(models.ErrAlreadyDownloading, "%q is already downloading", previous.Title)
		case previous.Status == models.StatusCompleted:
			s.mu.Unlock()
			return id, models.NewError(models.ErrAlreadyCompleted, "%q is already downloaded", previous.Title)
		}
		// Failed, cancelled or paused records are replaced by a fresh
		// attempt.
		log.Debugf("Replacing %s record %s with a new download", previous.Status, id)
	}

	now := time.Now().UTC()
	rec := &models.Record{
		ID:           id,
		ContentID:    meta.ID,
		Kind:         meta.Kind,
		Title:        meta.Title,
		EpisodeTitle: opts.EpisodeTitle,
		PosterPath:   meta.PosterPath,
		BackdropPath: meta.BackdropPath,
		Season:       opts.Season,
		Episode:      opts.Episode,
		MediaURL:     mediaURL,
		Quality:      opts.Quality,
		Status:       models.StatusPending,
		FilePath:     s.destPath(id, opts.Quality),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.records[id] = rec
	if err := s.persistLocked(); err != nil {
		if previous != nil {
			s.records[id] = previous
		} else {
			delete(s.records, id)
		}
		s.mu.Unlock()
		return "", err
	}

	// Leftovers from an earlier attempt must not pollute this one: a
	// paused job still holds a goroutine and scratch state until stopped.
	if old := s.jobs[id]; old != nil {
		old.Stop()
		delete(s.jobs, id)
	}
	s.removeQuiet(rec.FilePath)
	s.removeAllQuiet(s.scratchPath(id))

	s.launchLocked(rec)
	title := rec.Title
	s.mu.Unlock()

	s.notify(id, title, "Download started", models.NoteInfo)
	log.Infof("Started download %s (%s)", id, title)
	return id, nil
}

// launchLocked starts the right engine for the record's media URL and
// stores the handle. Callers hold s.mu.
func (s *Service) launchLocked(rec *models.Record) {
	id := rec.ID
	hooks := engine.Hooks{
		OnBegin: func(total int64) { s.handleBegin(id, total) },
		OnProgress: func(progress float64, downloaded, total int64, rate, eta float64) {
			s.handleProgress(id, progress, downloaded, total, rate, eta)
		},
		OnComplete: func(total int64) { s.handleComplete(id, total) },
		OnError:    func(err error) { s.handleFailure(id, err) },
	}

	if playlist.IsPlaylistURL(rec.MediaURL) {
		s.jobs[id] = s.segments.Start(id, rec.MediaURL, rec.FilePath, s.scratchPath(id), hooks)
	} else {
		s.jobs[id] = s.single.Start(id, rec.MediaURL, rec.FilePath, hooks)
	}
}

func (s *Service) handleBegin(id string, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok || rec.Status != models.StatusPending {
		return
	}
	now := time.Now().UTC()
	rec.Status = models.StatusDownloading
	rec.StartedAt = &now
	rec.UpdatedAt = now
	if total > 0 {
		rec.TotalBytes = total
	}
	s.persistQuietLocked()
}

func (s *Service) handleProgress(id string, progress float64, downloaded, total int64, rate, eta float64) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok || rec.Status != models.StatusDownloading {
		s.mu.Unlock()
		return
	}
	// Progress never goes backwards, even when a resumed range request
	// restarts a segment.
	if progress > rec.Progress {
		rec.Progress = progress
	}
	if downloaded > rec.DownloadedBytes {
		rec.DownloadedBytes = downloaded
	}
	if total > 0 {
		rec.TotalBytes = total
	}
	rec.Rate = rate
	rec.ETASeconds = eta
	rec.UpdatedAt = time.Now().UTC()
	if time.Since(s.lastPersist) >= persistInterval {
		s.persistQuietLocked()
	}
	ev := models.ProgressEvent{
		ID:              id,
		Progress:        rec.Progress,
		Rate:            rec.Rate,
		TotalBytes:      rec.TotalBytes,
		DownloadedBytes: rec.DownloadedBytes,
		ETASeconds:      rec.ETASeconds,
	}
	s.mu.Unlock()

	s.hub.PublishProgress(ev)
}

func (s *Service) handleComplete(id string, totalBytes int64) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok || rec.Status.IsTerminal() {
		s.mu.Unlock()
		return
	}
	title := rec.Title
	poster := rec.PosterPath
	dest := rec.FilePath
	s.mu.Unlock()

	// Post-processing happens outside the lock; none of it can fail the
	// download.
	thumbPath := s.fetchThumbnail(id, poster)
	subPath := s.writeSubtitlePlaceholder(dest)
	checksum, err := s.checksumFile(dest)
	if err != nil {
		log.WithError(err).Warnf("Failed to checksum %s", dest)
	}

	s.mu.Lock()
	rec, ok = s.records[id]
	if !ok || rec.Status.IsTerminal() {
		s.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	rec.Status = models.StatusCompleted
	rec.Progress = 100
	if totalBytes > 0 {
		rec.DownloadedBytes = totalBytes
		rec.TotalBytes = totalBytes
	}
	rec.Rate = 0
	rec.ETASeconds = 0
	rec.Error = ""
	rec.CompletedAt = &now
	rec.UpdatedAt = now
	if thumbPath != "" {
		rec.ThumbnailPath = thumbPath
	}
	if subPath != "" {
		rec.SubtitlePaths = []string{subPath}
	}
	rec.Checksum = checksum
	s.persistQuietLocked()
	delete(s.jobs, id)
	snapshot := rec.Clone()
	s.mu.Unlock()

	if s.search != nil {
		if err := s.search.Add(snapshot); err != nil {
			log.WithError(err).Warnf("Failed to index %s", id)
		}
	}
	s.notify(id, title, "Download completed", models.NoteSuccess)
	s.hub.PublishProgress(models.ProgressEvent{
		ID:              id,
		Progress:        100,
		TotalBytes:      snapshot.TotalBytes,
		DownloadedBytes: snapshot.DownloadedBytes,
	})
	log.Infof("Completed download %s (%s)", id, title)
}

func (s *Service) handleFailure(id string, err error) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok || rec.Status.IsTerminal() {
		s.mu.Unlock()
		return
	}
	rec.Status = models.StatusFailed
	rec.Error = err.Error()
	rec.Rate = 0
	rec.ETASeconds = 0
	rec.UpdatedAt = time.Now().UTC()
	s.persistQuietLocked()
	delete(s.jobs, id)
	title := rec.Title
	dest := rec.FilePath
	s.mu.Unlock()

	s.removeQuiet(dest)
	s.notify(id, title, fmt.Sprintf("Download failed: %v", err), models.NoteError)
	log.WithError(err).Warnf("Download %s (%s) failed", id, title)
}

// PauseDownload pauses an in-flight download, retaining its progress.
func (s *Service) PauseDownload(id string) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return models.NewError(models.ErrDownloadNotFound, "no download with id %s", id)
	}
	if rec.Status == models.StatusPaused {
		s.mu.Unlock()
		return nil
	}
	if rec.Status != models.StatusDownloading {
		s.mu.Unlock()
		return models.NewError(models.ErrInvalidState, "cannot pause a %s download", rec.Status)
	}
	if handle := s.jobs[id]; handle != nil {
		handle.Pause()
	}
	rec.Status = models.StatusPaused
	rec.Rate = 0
	rec.ETASeconds = 0
	rec.UpdatedAt = time.Now().UTC()
	err := s.persistLocked()
	title := rec.Title
	s.mu.Unlock()

	s.notify(id, title, "Download paused", models.NoteInfo)
	return err
}

// ResumeDownload continues a paused download. With a live transfer handle
// it resumes in place; after a restart the download is started over.
func (s *Service) ResumeDownload(id string) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return models.NewError(models.ErrDownloadNotFound, "no download with id %s", id)
	}
	if rec.Status != models.StatusPaused {
		s.mu.Unlock()
		return models.NewError(models.ErrNotPaused, "download %s is %s, not paused", id, rec.Status)
	}

	if handle := s.jobs[id]; handle != nil && handle.Resume() {
		rec.Status = models.StatusDownloading
		rec.UpdatedAt = time.Now().UTC()
		err := s.persistLocked()
		title := rec.Title
		s.mu.Unlock()
		s.notify(id, title, "Download resumed", models.NoteInfo)
		return err
	}

	// No live handle survives a restart: start the download over. A dead
	// handle that refused to resume is stopped so it cannot linger.
	if old := s.jobs[id]; old != nil {
		old.Stop()
		delete(s.jobs, id)
	}
	rec.Status = models.StatusPending
	rec.Progress = 0
	rec.DownloadedBytes = 0
	rec.Rate = 0
	rec.ETASeconds = 0
	rec.Error = ""
	rec.StartedAt = nil
	rec.UpdatedAt = time.Now().UTC()
	s.removeQuiet(rec.FilePath)
	s.removeAllQuiet(s.scratchPath(id))
	err := s.persistLocked()
	if err == nil {
		s.launchLocked(rec)
	}
	title := rec.Title
	s.mu.Unlock()

	if err == nil {
		s.notify(id, title, "Download restarted", models.NoteInfo)
	}
	return err
}

// CancelDownload aborts an in-flight or paused download and discards its
// partial data. The record stays for auditing until deleted.
func (s *Service) CancelDownload(id string) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return models.NewError(models.ErrDownloadNotFound, "no download with id %s", id)
	}
	if rec.Status.IsTerminal() {
		s.mu.Unlock()
		return models.NewError(models.ErrInvalidState, "cannot cancel a %s download", rec.Status)
	}
	if handle := s.jobs[id]; handle != nil {
		handle.Stop()
		delete(s.jobs, id)
	}
	rec.Status = models.StatusCancelled
	rec.Rate = 0
	rec.ETASeconds = 0
	rec.UpdatedAt = time.Now().UTC()
	err := s.persistLocked()
	title := rec.Title
	dest := rec.FilePath
	s.mu.Unlock()

	s.removeQuiet(dest)
	s.removeAllQuiet(s.scratchPath(id))
	s.notify(id, title, "Download cancelled", models.NoteInfo)
	return err
}

// DeleteDownload removes a download record and all of its files.
func (s *Service) DeleteDownload(id string) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return models.NewError(models.ErrDownloadNotFound, "no download with id %s", id)
	}
	if handle := s.jobs[id]; handle != nil {
		handle.Stop()
		delete(s.jobs, id)
	}
	delete(s.records, id)
	err := s.persistLocked()
	title := rec.Title
	files := append([]string{rec.FilePath, rec.ThumbnailPath}, rec.SubtitlePaths...)
	s.mu.Unlock()

	for _, f := range files {
		if f != "" {
			s.removeQuiet(f)
		}
	}
	s.removeAllQuiet(s.scratchPath(id))
	if s.search != nil {
		if serr := s.search.Remove(id); serr != nil {
			log.WithError(serr).Warnf("Failed to deindex %s", id)
		}
	}
	s.notify(id, title, "Download deleted", models.NoteInfo)
	return err
}

// CleanupFailedDownloads removes every failed and cancelled record along
// with any leftover files, returning how many were removed.
func (s *Service) CleanupFailedDownloads() int {
	s.mu.Lock()
	var removed []*models.Record
	for id, rec := range s.records {
		if rec.Status == models.StatusFailed || rec.Status == models.StatusCancelled {
			removed = append(removed, rec)
			delete(s.records, id)
		}
	}
	if len(removed) > 0 {
		s.persistQuietLocked()
	}
	s.mu.Unlock()

	for _, rec := range removed {
		s.removeQuiet(rec.FilePath)
		s.removeAllQuiet(s.scratchPath(rec.ID))
	}
	if len(removed) > 0 {
		log.Infof("Cleaned up %d failed downloads", len(removed))
	}
	return len(removed)
}

// GetDownload returns a copy of one record.
func (s *Service) GetDownload(id string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, models.NewError(models.ErrDownloadNotFound, "no download with id %s", id)
	}
	return rec.Clone(), nil
}

// GetAllDownloads returns copies of every record, newest first.
func (s *Service) GetAllDownloads() []*models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]*models.Record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec.Clone())
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	return recs
}

// GetDownloadsByStatus returns copies of every record in the given state,
// newest first.
func (s *Service) GetDownloadsByStatus(status models.Status) []*models.Record {
	var out []*models.Record
	for _, rec := range s.GetAllDownloads() {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}

// IsContentDownloaded reports whether the given content has a completed
// download.
func (s *Service) IsContentDownloaded(contentID int, kind models.ContentKind, season, episode int) bool {
	_, ok := s.GetDownloadedContentPath(contentID, kind, season, episode)
	return ok
}

// GetDownloadedContentPath returns the local file path for completed
// content, if any.
func (s *Service) GetDownloadedContentPath(contentID int, kind models.ContentKind, season, episode int) (string, bool) {
	id := models.DerivedID(contentID, kind, season, episode)
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok || rec.Status != models.StatusCompleted {
		return "", false
	}
	return rec.FilePath, true
}

// GetStorageSummary aggregates registry totals and free disk space.
func (s *Service) GetStorageSummary() (models.StorageSummary, error) {
	s.mu.Lock()
	summary := models.StorageSummary{TotalRecords: len(s.records)}
	for _, rec := range s.records {
		if rec.Status == models.StatusCompleted {
			summary.CompletedRecords++
			summary.TotalBytes += rec.TotalBytes
		}
	}
	s.mu.Unlock()

	free, err := s.space.FreeBytes(s.savePath)
	if err != nil {
		return summary, models.NewError(models.ErrStorage, "checking free space under %s: %v", s.savePath, err)
	}
	summary.FreeBytes = free
	return summary, nil
}

// VerifyDownload checks a completed download's file on disk, including its
// recorded checksum when one exists.
func (s *Service) VerifyDownload(id string) error {
	rec, err := s.GetDownload(id)
	if err != nil {
		return err
	}
	if rec.Status != models.StatusCompleted {
		return models.NewError(models.ErrInvalidState, "download %s is %s, not completed", id, rec.Status)
	}

	info, err := s.fs.Stat(rec.FilePath)
	if err != nil {
		return models.NewError(models.ErrStorage, "missing file for %s: %v", id, err)
	}
	if info.Size() == 0 {
		return models.NewError(models.ErrStorage, "file for %s is empty", id)
	}
	if rec.Checksum == "" {
		return nil
	}

	sum, err := s.checksumFile(rec.FilePath)
	if err != nil {
		return models.NewError(models.ErrStorage, "checksumming %s: %v", rec.FilePath, err)
	}
	if sum != rec.Checksum {
		return models.NewError(models.ErrStorage, "checksum mismatch for %s", id)
	}
	return nil
}

// SearchDownloads queries the title index and returns the matching
// records, best match first.
func (s *Service) SearchDownloads(query string, limit int) ([]*models.Record, error) {
	if s.search == nil {
		return nil, models.NewError(models.ErrStorage, "search index is not configured")
	}
	ids, err := s.search.Search(query, limit)
	if err != nil {
		return nil, models.NewError(models.ErrStorage, "searching downloads: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

// Hub exposes the observer hub for listener registration.
func (s *Service) Hub() *observer.Hub {
	return s.hub
}

// Close persists the final registry state and releases the store and
// search index.
func (s *Service) Close() error {
	s.mu.Lock()
	err := s.persistLocked()
	s.mu.Unlock()

	if s.search != nil {
		if cerr := s.search.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if cerr := s.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (s *Service) notify(id, title, message string, kind models.NotificationKind) {
	s.hub.PublishNotification(models.Notification{
		ID:        id,
		Title:     title,
		Message:   message,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Service) removeQuiet(p string) {
	if err := s.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		log.Debugf("Could not remove %s: %v", p, err)
	}
}

func (s *Service) removeAllQuiet(p string) {
	if err := s.fs.RemoveAll(p); err != nil {
		log.Debugf("Could not remove %s: %v", p, err)
	}
}

// fetchThumbnail saves the poster image next to the media files so the UI
// works fully offline. Best effort; failures only log.
func (s *Service) fetchThumbnail(id, posterURL string) string {
	if !strings.HasPrefix(posterURL, "http") {
		return ""
	}
	resp, err := s.client.Get(posterURL)
	if err != nil {
		log.WithError(err).Warnf("Failed to fetch thumbnail for %s", id)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Warnf("Thumbnail fetch for %s returned status %d", id, resp.StatusCode)
		return ""
	}

	ext := path.Ext(posterURL)
	if ext == "" {
		ext = ".jpg"
	}
	dir := filepath.Join(s.savePath, "thumbnails")
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		log.WithError(err).Warnf("Failed to create thumbnail directory for %s", id)
		return ""
	}
	dest := filepath.Join(dir, id+ext)
	out, err := s.fs.Create(dest)
	if err != nil {
		log.WithError(err).Warnf("Failed to create thumbnail file for %s", id)
		return ""
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		log.WithError(err).Warnf("Failed to write thumbnail for %s", id)
		return ""
	}
	return dest
}

// writeSubtitlePlaceholder creates an empty WebVTT track alongside the
// media file. Real subtitle extraction needs a demuxer this tool does not
// ship.
func (s *Service) writeSubtitlePlaceholder(dest string) string {
	sub := dest + ".vtt"
	if err := afero.WriteFile(s.fs, sub, []byte("WEBVTT\n"), 0o644); err != nil {
		log.WithError(err).Warnf("Failed to write subtitle placeholder %s", sub)
		return ""
	}
	return sub
}

func (s *Service) checksumFile(p string) (string, error) {
	f, err := s.fs.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
