//go:build !unix

package rendezvous

import "github.com/fhs-fdpass/fdpass/api"

func (l *Listener) Close() error {
	return api.ErrNotSupported
}
