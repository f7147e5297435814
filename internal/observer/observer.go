// Package observer implements the progress and notification fan-out for the
// download manager. Listener callbacks are isolated: a panicking listener is
// logged and never aborts the transfer pipeline.
package observer

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"go-offline-vault/internal/models"
)

// ProgressFunc receives byte-level progress for one download id.
type ProgressFunc func(models.ProgressEvent)

// NotificationFunc receives every lifecycle notification.
type NotificationFunc func(models.Notification)

// Hub holds two independent listener registries: one progress callback per
// download id (re-registration replaces, not stacks) and a broadcast set of
// notification callbacks.
type Hub struct {
	mu            sync.RWMutex
	progress      map[string]ProgressFunc
	notifications map[int]NotificationFunc
	nextToken     int
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		progress:      make(map[string]ProgressFunc),
		notifications: make(map[int]NotificationFunc),
	}
}

// AddProgressListener registers cb for the given download id, replacing any
// previous listener for that id.
func (h *Hub) AddProgressListener(id string, cb ProgressFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progress[id] = cb
}

// RemoveProgressListener unregisters the listener for id, if any.
func (h *Hub) RemoveProgressListener(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.progress, id)
}

// AddNotificationListener registers a broadcast listener and returns a token
// for later removal.
func (h *Hub) AddNotificationListener(cb NotificationFunc) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextToken++
	h.notifications[h.nextToken] = cb
	return h.nextToken
}

// RemoveNotificationListener unregisters the listener for token.
func (h *Hub) RemoveNotificationListener(token int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.notifications, token)
}

// PublishProgress delivers ev to the progress listener for ev.ID, if any.
func (h *Hub) PublishProgress(ev models.ProgressEvent) {
	h.mu.RLock()
	cb := h.progress[ev.ID]
	h.mu.RUnlock()
	if cb == nil {
		return
	}
	safeInvoke(func() { cb(ev) })
}

// PublishNotification delivers n to every notification listener.
func (h *Hub) PublishNotification(n models.Notification) {
	h.mu.RLock()
	cbs := make([]NotificationFunc, 0, len(h.notifications))
	for _, cb := range h.notifications {
		cbs = append(cbs, cb)
	}
	h.mu.RUnlock()

	for _, cb := range cbs {
		cb := cb
		safeInvoke(func() { cb(n) })
	}
}

func safeInvoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Observer callback panicked: %v", r)
		}
	}()
	fn()
}
