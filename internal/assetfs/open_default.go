//go:build !linux

package assetfs

import "os"

// openShared opens full for reading. On platforms without the Linux flock
// variant in open_linux.go, a plain open is all hosts offer.
func openShared(full string) (*os.File, error) {
	return os.Open(full)
}
