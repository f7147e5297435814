package store

import (
	"errors"
	"path/filepath"
	"testing"
)

// openBackends opens every backend so each gets the same contract checks.
func openBackends(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}

	bc, err := OpenBitcask(filepath.Join(t.TempDir(), "bitcask"))
	if err != nil {
		t.Fatalf("OpenBitcask failed: %v", err)
	}

	return map[string]Store{
		"memory":  NewMemory(),
		"sqlite":  sqlite,
		"bitcask": bc,
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get of missing key: got %v, want ErrNotFound", err)
			}

			if err := s.Set("downloads", `[{"id":"movie_550"}]`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			got, err := s.Get("downloads")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got != `[{"id":"movie_550"}]` {
				t.Errorf("Get returned %q", got)
			}

			// Overwrite replaces the previous value.
			if err := s.Set("downloads", "[]"); err != nil {
				t.Fatalf("Set overwrite failed: %v", err)
			}
			got, err = s.Get("downloads")
			if err != nil || got != "[]" {
				t.Errorf("Get after overwrite = %q, %v", got, err)
			}

			if err := s.Remove("downloads"); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			if _, err := s.Get("downloads"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after Remove: got %v, want ErrNotFound", err)
			}
			if err := s.Remove("downloads"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Remove of missing key: got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestOpenDispatch(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("bitcask", filepath.Join(dir, "bc"))
	if err != nil {
		t.Fatalf("Open(bitcask) failed: %v", err)
	}
	s.Close()

	if _, err := Open("leveldb", filepath.Join(dir, "nope")); err == nil {
		t.Error("expected error for unknown backend")
	}
}
