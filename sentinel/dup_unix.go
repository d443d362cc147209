//go:build unix

package sentinel

import (
	"os"

	"golang.org/x/sys/unix"
)

func dupAnchor(anchor uintptr) (*os.File, error) {
	fd, err := unix.Dup(int(anchor))
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), "fdpass-sentinel"), nil
}

func isTableFull(err error) bool {
	return err == unix.EMFILE || err == unix.ENFILE
}
