package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"go-offline-vault/internal/models"
)

// SegmentFileName returns the scratch filename for segment i. Zero-padding
// keeps lexical and index order identical.
func SegmentFileName(i int) string {
	return fmt.Sprintf("segment_%04d.ts", i)
}

// Combine concatenates count segment files from scratchDir into dest in
// index order, then removes the scratch directory. The destination is
// verified to be non-empty.
func Combine(fs afero.Fs, scratchDir, dest string, count int) error {
	defer func() {
		if err := fs.RemoveAll(scratchDir); err != nil {
			log.WithError(err).Warnf("Failed to remove scratch directory %s", scratchDir)
		}
	}()

	out, err := fs.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return models.NewError(models.ErrCombine, "opening combined file %s: %v", dest, err)
	}
	defer out.Close()

	for i := 0; i < count; i++ {
		segPath := filepath.Join(scratchDir, SegmentFileName(i))
		seg, err := fs.Open(segPath)
		if err != nil {
			return models.NewError(models.ErrCombine, "opening segment %d of %d: %v", i+1, count, err)
		}
		if _, err := io.Copy(out, seg); err != nil {
			seg.Close()
			return models.NewError(models.ErrCombine, "appending segment %d of %d: %v", i+1, count, err)
		}
		seg.Close()
	}

	info, err := fs.Stat(dest)
	if err != nil {
		return models.NewError(models.ErrCombine, "verifying combined file %s: %v", dest, err)
	}
	if info.Size() == 0 {
		return models.NewError(models.ErrCombine, "combined file %s is empty", dest)
	}
	return nil
}
