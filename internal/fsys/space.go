// Package fsys holds the small filesystem capabilities that afero does not
// cover, chiefly the free-space query used by the storage summary.
package fsys

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SpaceReporter reports free space on the volume holding a path.
type SpaceReporter interface {
	FreeBytes(path string) (uint64, error)
}

// NewSpaceReporter returns the OS-backed reporter.
func NewSpaceReporter() SpaceReporter {
	return statfsReporter{}
}

type statfsReporter struct{}

func (statfsReporter) FreeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return st.Bavail * uint64(st.Bsize), nil
}

// FixedSpace is a SpaceReporter returning a constant value, for tests.
type FixedSpace uint64

func (f FixedSpace) FreeBytes(string) (uint64, error) {
	return uint64(f), nil
}
