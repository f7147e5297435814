package models

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a download record.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusPaused      Status = "paused"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusCancelled   Status = "cancelled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsActive reports whether a transfer is (or is about to be) in flight.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusDownloading
}

// IsTerminal reports whether the record reached a final state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ContentKind distinguishes standalone titles from episodic content.
type ContentKind string

const (
	KindMovie   ContentKind = "movie"
	KindEpisode ContentKind = "episode"
)

// ParseKind normalizes an externally supplied kind string. Metadata
// providers describe episodic content as "tv"; internally it is an episode.
func ParseKind(s string) (ContentKind, error) {
	switch s {
	case "movie":
		return KindMovie, nil
	case "episode", "tv":
		return KindEpisode, nil
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// DerivedID computes the deterministic registry key for a piece of content.
// Movies key on the content id alone; episodes additionally key on season
// and episode so every episode of a show gets its own record.
func DerivedID(contentID int, kind ContentKind, season, episode int) string {
	if kind == KindMovie {
		return fmt.Sprintf("movie_%d", contentID)
	}
	return fmt.Sprintf("tv_%d_s%d_e%d", contentID, season, episode)
}

// ContentMeta is the read-only descriptive input to StartDownload, supplied
// by the metadata client.
type ContentMeta struct {
	ID           int         `json:"id"`
	Kind         ContentKind `json:"kind"`
	Title        string      `json:"title"`
	PosterPath   string      `json:"posterPath,omitempty"`
	BackdropPath string      `json:"backdropPath,omitempty"`
	ReleaseDate  string      `json:"releaseDate,omitempty"`
}

// Options carries the per-request download parameters.
type Options struct {
	Quality      string `json:"quality"`
	Season       int    `json:"season,omitempty"`
	Episode      int    `json:"episode,omitempty"`
	EpisodeTitle string `json:"episodeTitle,omitempty"`
}

// Record is the persisted unit of download state, one per requested asset.
type Record struct {
	ID           string      `json:"id"`
	ContentID    int         `json:"contentId"`
	Kind         ContentKind `json:"kind"`
	Title        string      `json:"title"`
	EpisodeTitle string      `json:"episodeTitle,omitempty"`
	PosterPath   string      `json:"posterPath,omitempty"`
	BackdropPath string      `json:"backdropPath,omitempty"`
	Season       int         `json:"season,omitempty"`
	Episode      int         `json:"episode,omitempty"`
	MediaURL     string      `json:"mediaUrl"`
	Quality      string      `json:"quality"`

	Status          Status  `json:"status"`
	Progress        float64 `json:"progress"`
	DownloadedBytes int64   `json:"downloadedBytes"`
	TotalBytes      int64   `json:"totalBytes"`
	Rate            float64 `json:"transferRateBytesPerSecond"`
	ETASeconds      float64 `json:"estimatedSecondsRemaining"`
	Error           string  `json:"error,omitempty"`

	FilePath      string   `json:"filePath"`
	ThumbnailPath string   `json:"thumbnailPath,omitempty"`
	SubtitlePaths []string `json:"subtitlePaths,omitempty"`
	Checksum      string   `json:"checksum,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Clone returns a deep copy so callers can read a record without holding
// the registry lock.
func (r *Record) Clone() *Record {
	c := *r
	if r.SubtitlePaths != nil {
		c.SubtitlePaths = append([]string(nil), r.SubtitlePaths...)
	}
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// ProgressEvent is delivered to the per-download progress listener.
type ProgressEvent struct {
	ID              string  `json:"id"`
	Progress        float64 `json:"progress"`
	Rate            float64 `json:"rate"`
	TotalBytes      int64   `json:"totalBytes"`
	DownloadedBytes int64   `json:"downloadedBytes"`
	ETASeconds      float64 `json:"etaSeconds"`
}

// NotificationKind classifies a lifecycle notification.
type NotificationKind string

const (
	NoteInfo     NotificationKind = "info"
	NoteSuccess  NotificationKind = "success"
	NoteError    NotificationKind = "error"
	NoteProgress NotificationKind = "progress"
)

// Notification is broadcast to all notification listeners on every
// lifecycle transition.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	Timestamp time.Time        `json:"timestamp"`
}

// StorageSummary is a derived aggregate over the registry, computed on
// demand and never cached.
type StorageSummary struct {
	TotalRecords     int    `json:"totalRecords"`
	CompletedRecords int    `json:"completedRecords"`
	TotalBytes       int64  `json:"totalBytes"`
	FreeBytes        uint64 `json:"freeBytes"`
}
