// Package index maintains a full-text search index over completed
// downloads so the library can be searched by title.
package index

import (
	"github.com/blevesearch/bleve/v2"
	log "github.com/sirupsen/logrus"

	"go-offline-vault/internal/models"
)

// Document is the indexed shape of a download record.
type Document struct {
	Title        string `json:"title"`
	EpisodeTitle string `json:"episodeTitle,omitempty"`
	Kind         string `json:"kind"`
	Quality      string `json:"quality"`
}

// Index wraps a bleve index keyed by download id.
type Index struct {
	idx bleve.Index
}

// Open opens the index at path, creating it on first use.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		log.Debugf("Creating new search index at %s", path)
		idx, err = bleve.New(path, bleve.NewIndexMapping())
	}
	if err != nil {
		return nil, err
	}
	return &Index{idx: idx}, nil
}

// Add indexes a record, replacing any previous document with the same id.
func (i *Index) Add(rec *models.Record) error {
	return i.idx.Index(rec.ID, Document{
		Title:        rec.Title,
		EpisodeTitle: rec.EpisodeTitle,
		Kind:         string(rec.Kind),
		Quality:      rec.Quality,
	})
}

// Remove drops a record from the index. Removing an unindexed id is not an
// error.
func (i *Index) Remove(id string) error {
	return i.idx.Delete(id)
}

// Search returns up to limit download ids matching the query, best match
// first.
func (i *Index) Search(query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 25
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Close releases the underlying index.
func (i *Index) Close() error {
	return i.idx.Close()
}
