//go:build unix && !fdpass_sysv

// BSD rendezvous back-end: a UNIX-domain stream socketpair for
// Socketpair, and a UNIX-domain listening socket bound to a filesystem
// path for Server/Accept/Connect, per spec §4.7.
package rendezvous

import (
	"os"

	"github.com/fhs-fdpass/fdpass/api"
	"golang.org/x/sys/unix"
)

// Socketpair returns two endpoints suitable for passer.Config.FDs,
// connected by a UNIX-domain stream socketpair.
func Socketpair() (a, b *os.File, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, err
	}
	return os.NewFile(uintptr(fds[0]), "fdpass-pair-a"), os.NewFile(uintptr(fds[1]), "fdpass-pair-b"), nil
}

// Server opens a UNIX-domain listening socket bound to path. backlog <=
// 0 is treated as a small default, matching net.Listen's convention.
func Server(path string, backlog int) (*Listener, error) {
	if backlog <= 0 {
		backlog = 16
	}
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Listener{fd: uintptr(fd), path: path}, nil
}

// Accept accepts one connection on l, returning a new passer-capable
// endpoint.
func Accept(l *Listener) (*os.File, error) {
	nfd, _, err := unix.Accept(int(l.fd))
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, api.ErrWouldBlock
		}
		return nil, err
	}
	return os.NewFile(uintptr(nfd), "fdpass-accepted"), nil
}

// Connect dials the UNIX-domain socket bound at path, returning a new
// passer-capable endpoint.
func Connect(path string) (*os.File, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Connect(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return os.NewFile(uintptr(fd), "fdpass-connected"), nil
}
