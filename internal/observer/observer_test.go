package observer

import (
	"testing"

	"go-offline-vault/internal/models"
)

func TestProgressListenerReplaces(t *testing.T) {
	hub := NewHub()

	var first, second int
	hub.AddProgressListener("movie_550", func(models.ProgressEvent) { first++ })
	hub.AddProgressListener("movie_550", func(models.ProgressEvent) { second++ })

	hub.PublishProgress(models.ProgressEvent{ID: "movie_550", Progress: 10})

	if first != 0 {
		t.Errorf("replaced listener was invoked %d times", first)
	}
	if second != 1 {
		t.Errorf("active listener invoked %d times, want 1", second)
	}
}

func TestProgressListenerScopedToID(t *testing.T) {
	hub := NewHub()

	var calls int
	hub.AddProgressListener("movie_550", func(models.ProgressEvent) { calls++ })

	hub.PublishProgress(models.ProgressEvent{ID: "tv_1399_s1_e1", Progress: 50})
	if calls != 0 {
		t.Error("listener received event for a different id")
	}

	hub.RemoveProgressListener("movie_550")
	hub.PublishProgress(models.ProgressEvent{ID: "movie_550", Progress: 50})
	if calls != 0 {
		t.Error("removed listener was invoked")
	}
}

func TestNotificationBroadcast(t *testing.T) {
	hub := NewHub()

	var a, b int
	tokenA := hub.AddNotificationListener(func(models.Notification) { a++ })
	hub.AddNotificationListener(func(models.Notification) { b++ })

	hub.PublishNotification(models.Notification{ID: "movie_550", Kind: models.NoteInfo})
	if a != 1 || b != 1 {
		t.Errorf("broadcast reached a=%d b=%d, want 1 each", a, b)
	}

	hub.RemoveNotificationListener(tokenA)
	hub.PublishNotification(models.Notification{ID: "movie_550", Kind: models.NoteSuccess})
	if a != 1 {
		t.Error("removed listener was invoked")
	}
	if b != 2 {
		t.Errorf("remaining listener invoked %d times, want 2", b)
	}
}

func TestPanickingListenerDoesNotAbort(t *testing.T) {
	hub := NewHub()

	var survived int
	hub.AddNotificationListener(func(models.Notification) { panic("listener bug") })
	hub.AddNotificationListener(func(models.Notification) { survived++ })

	hub.PublishNotification(models.Notification{ID: "movie_550", Kind: models.NoteError})
	if survived != 1 {
		t.Error("panic in one listener prevented delivery to another")
	}

	hub.AddProgressListener("movie_550", func(models.ProgressEvent) { panic("listener bug") })
	// Must not propagate.
	hub.PublishProgress(models.ProgressEvent{ID: "movie_550"})
}
