// Package store provides the string-keyed persistence primitive backing the
// download registry. The registry treats it as a dumb blob store; all
// consistency is owned by the caller.
package store

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a key is not found in the store.
var ErrNotFound = errors.New("key not found")

// Store is a durable string-keyed get/set/remove primitive.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// Open returns a store for the configured backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", "sqlite":
		return OpenSQLite(path)
	case "bitcask":
		return OpenBitcask(path)
	}
	return nil, fmt.Errorf("unknown database backend %q", backend)
}

// NewMemory returns a volatile in-process store.
func NewMemory() Store {
	return &memoryStore{values: make(map[string]string)}
}

type memoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func (m *memoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *memoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; !ok {
		return ErrNotFound
	}
	delete(m.values, key)
	return nil
}

func (m *memoryStore) Close() error {
	return nil
}
