//go:build !unix

package sentinel

import (
	"os"

	"github.com/fhs-fdpass/fdpass/api"
)

func dupAnchor(anchor uintptr) (*os.File, error) {
	return nil, api.ErrNotSupported
}

func isTableFull(err error) bool {
	return false
}
