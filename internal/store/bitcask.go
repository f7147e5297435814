package store

import (
	"errors"
	"fmt"

	"git.mills.io/prologic/bitcask"
)

// Registry snapshots are a single JSON blob; allow them to grow well past
// bitcask's default value limit.
const maxSnapshotSize = 16 << 20

type bitcaskStore struct {
	db *bitcask.Bitcask
}

// OpenBitcask initializes and returns a bitcask-backed store. It is the
// cgo-free alternative to the SQLite backend.
func OpenBitcask(path string) (Store, error) {
	db, err := bitcask.Open(path, bitcask.WithMaxValueSize(maxSnapshotSize))
	if err != nil {
		return nil, fmt.Errorf("failed to open bitcask database at %s: %w", path, err)
	}
	return &bitcaskStore{db: db}, nil
}

func (s *bitcaskStore) Get(key string) (string, error) {
	value, err := s.db.Get([]byte(key))
	if errors.Is(err, bitcask.ErrKeyNotFound) {
		return "", ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("error querying key %s: %w", key, err)
	}
	return string(value), nil
}

func (s *bitcaskStore) Set(key, value string) error {
	if err := s.db.Put([]byte(key), []byte(value)); err != nil {
		return fmt.Errorf("error storing key %s: %w", key, err)
	}
	return nil
}

func (s *bitcaskStore) Remove(key string) error {
	if !s.db.Has([]byte(key)) {
		return ErrNotFound
	}
	if err := s.db.Delete([]byte(key)); err != nil {
		return fmt.Errorf("error deleting key %s: %w", key, err)
	}
	return nil
}

func (s *bitcaskStore) Close() error {
	return s.db.Close()
}
