//go:build !unix

// Descriptor passing is a UNIX-domain-socket/STREAMS concept; per spec
// §1 Non-goals, Windows handle duplication is explicitly out of scope.
package transport

import "github.com/fhs-fdpass/fdpass/api"

type unsupportedBackend struct{}

func newBackend(endpoint uintptr) (Backend, error) {
	return nil, api.ErrNotSupported
}

func (unsupportedBackend) Fd() uintptr                     { return 0 }
func (unsupportedBackend) SetNonblocking(bool) error        { return api.ErrNotSupported }
func (unsupportedBackend) SendOne(uintptr) error             { return api.ErrNotSupported }
func (unsupportedBackend) RecvOne() (uintptr, error)         { return 0, api.ErrNotSupported }
func (unsupportedBackend) Close() error                     { return api.ErrNotSupported }

func isTableFullErrno(err error) bool { return false }
