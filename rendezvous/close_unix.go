//go:build unix

package rendezvous

import (
	"os"

	"golang.org/x/sys/unix"
)

// Close stops listening and unlinks the filesystem path, per spec §6's
// note that cleanup is otherwise the caller's responsibility — Listener
// does it so callers don't have to remember the path separately.
func (l *Listener) Close() error {
	err := unix.Close(int(l.fd))
	if l.path != "" {
		if rmErr := os.Remove(l.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}
	}
	return err
}
