package index

import (
	"path/filepath"
	"testing"

	"go-offline-vault/internal/models"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "search.bleve"))
	if err != nil {
		t.Fatalf("opening index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func record(id, title, episodeTitle string, kind models.ContentKind) *models.Record {
	return &models.Record{
		ID:           id,
		Kind:         kind,
		Title:        title,
		EpisodeTitle: episodeTitle,
		Quality:      "1080p",
	}
}

func TestSearchByTitle(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Add(record("movie_550", "Fight Club", "", models.KindMovie)); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(record("tv_1399_s1_e1", "Game of Thrones", "Winter Is Coming", models.KindEpisode)); err != nil {
		t.Fatal(err)
	}

	ids, err := idx.Search("fight", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "movie_550" {
		t.Errorf("expected [movie_550], got %v", ids)
	}

	ids, err = idx.Search("winter", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "tv_1399_s1_e1" {
		t.Errorf("expected episode title match, got %v", ids)
	}
}

func TestRemoveDropsDocument(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Add(record("movie_603", "The Matrix", "", models.KindMovie)); err != nil {
		t.Fatal(err)
	}
	if err := idx.Remove("movie_603"); err != nil {
		t.Fatal(err)
	}
	if err := idx.Remove("movie_603"); err != nil {
		t.Errorf("removing an absent id should not error: %v", err)
	}

	ids, err := idx.Search("matrix", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no hits after removal, got %v", ids)
	}
}

func TestSearchLimit(t *testing.T) {
	idx := openTestIndex(t)

	titles := []string{"Alien", "Aliens", "Alien 3", "Alien Resurrection"}
	for i, title := range titles {
		if err := idx.Add(record(models.DerivedID(100+i, models.KindMovie, 0, 0), title, "", models.KindMovie)); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := idx.Search("alien", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 hits with limit 2, got %d", len(ids))
	}
}
