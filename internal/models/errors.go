package models

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a class of download-manager failure.
type ErrorKind string

const (
	ErrAlreadyDownloading ErrorKind = "already_downloading"
	ErrAlreadyCompleted   ErrorKind = "already_completed"
	ErrDownloadNotFound   ErrorKind = "download_not_found"
	ErrNotPaused          ErrorKind = "not_paused"
	ErrInvalidState       ErrorKind = "invalid_state"
	ErrPlaylistParse      ErrorKind = "playlist_parse_error"
	ErrSegmentTransfer    ErrorKind = "segment_transfer_error"
	ErrCombine            ErrorKind = "combine_error"
	ErrStorage            ErrorKind = "storage_error"
)

// Error is the structured error surfaced to callers: a machine-checkable
// kind plus a human-readable message suitable for direct rendering.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds an Error with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, or "" if err is not an Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
