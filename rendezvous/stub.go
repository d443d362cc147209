//go:build !unix

package rendezvous

import (
	"os"

	"github.com/fhs-fdpass/fdpass/api"
)

func Socketpair() (a, b *os.File, err error) {
	return nil, nil, api.ErrNotSupported
}

func Server(path string, backlog int) (*Listener, error) {
	return nil, api.ErrNotSupported
}

func Accept(l *Listener) (*os.File, error) {
	return nil, api.ErrNotSupported
}

func Connect(path string) (*os.File, error) {
	return nil, api.ErrNotSupported
}
