//go:build linux

package assetfs

import (
	"os"

	"golang.org/x/sys/unix"
)

// openShared opens full for reading and takes a non-blocking shared advisory
// lock, matching spec.md §5's "blocking I/O inside asset/zip reads is
// bounded by file size" — a shared lock never blocks another reader and is
// released automatically when the file descriptor closes, so this never
// introduces a fourth suspension point.
func openShared(full string) (*os.File, error) {
	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	// Best-effort: asset packs are read-only in normal operation, so a lock
	// failure (e.g. a filesystem that doesn't support flock) isn't fatal.
	_ = unix.Flock(int(f.Fd()), unix.LOCK_SH|unix.LOCK_NB)
	return f, nil
}
