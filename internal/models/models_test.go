package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDerivedID(t *testing.T) {
	tests := []struct {
		name      string
		contentID int
		kind      ContentKind
		season    int
		episode   int
		expected  string
	}{
		{
			name:      "movie",
			contentID: 550,
			kind:      KindMovie,
			expected:  "movie_550",
		},
		{
			name:      "episode",
			contentID: 1399,
			kind:      KindEpisode,
			season:    1,
			episode:   1,
			expected:  "tv_1399_s1_e1",
		},
		{
			name:      "late season episode",
			contentID: 1399,
			kind:      KindEpisode,
			season:    8,
			episode:   6,
			expected:  "tv_1399_s8_e6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivedID(tt.contentID, tt.kind, tt.season, tt.episode)
			if got != tt.expected {
				t.Errorf("DerivedID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected ContentKind
		wantErr  bool
	}{
		{input: "movie", expected: KindMovie},
		{input: "episode", expected: KindEpisode},
		{input: "tv", expected: KindEpisode},
		{input: "series", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseKind(%q) expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKind(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestStatusHelpers(t *testing.T) {
	active := []Status{StatusPending, StatusDownloading}
	for _, s := range active {
		if !s.IsActive() {
			t.Errorf("expected %s to be active", s)
		}
		if s.IsTerminal() {
			t.Errorf("expected %s to not be terminal", s)
		}
	}

	terminal := []Status{StatusCompleted, StatusFailed, StatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
		if s.IsActive() {
			t.Errorf("expected %s to not be active", s)
		}
	}

	if StatusPaused.IsActive() || StatusPaused.IsTerminal() {
		t.Error("expected paused to be neither active nor terminal")
	}
}

func TestRecordDateSerialization(t *testing.T) {
	started := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	rec := Record{
		ID:        "movie_550",
		Status:    StatusDownloading,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		StartedAt: &started,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// Date fields must serialize as ISO-8601 strings.
	if want := `"createdAt":"2024-03-01T12:00:00Z"`; !strings.Contains(string(data), want) {
		t.Errorf("expected serialized record to contain %s, got %s", want, data)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("CreatedAt round trip mismatch: %v != %v", back.CreatedAt, rec.CreatedAt)
	}
	if back.StartedAt == nil || !back.StartedAt.Equal(started) {
		t.Errorf("StartedAt round trip mismatch: %v", back.StartedAt)
	}
	if back.CompletedAt != nil {
		t.Errorf("expected nil CompletedAt, got %v", back.CompletedAt)
	}
}

func TestRecordClone(t *testing.T) {
	started := time.Now()
	rec := &Record{
		ID:            "tv_1399_s1_e1",
		SubtitlePaths: []string{"a.vtt"},
		StartedAt:     &started,
	}

	c := rec.Clone()
	c.SubtitlePaths[0] = "b.vtt"
	*c.StartedAt = started.Add(time.Hour)

	if rec.SubtitlePaths[0] != "a.vtt" {
		t.Error("Clone shares subtitle slice with original")
	}
	if !rec.StartedAt.Equal(started) {
		t.Error("Clone shares StartedAt pointer with original")
	}
}

func TestErrorKinds(t *testing.T) {
	err := NewError(ErrDownloadNotFound, "no download with id %s", "movie_1")
	if !IsKind(err, ErrDownloadNotFound) {
		t.Error("expected IsKind to match")
	}
	if IsKind(err, ErrAlreadyCompleted) {
		t.Error("expected IsKind to reject mismatched kind")
	}
	if KindOf(err) != ErrDownloadNotFound {
		t.Errorf("KindOf = %q", KindOf(err))
	}
	if err.Error() != "download_not_found: no download with id movie_1" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
