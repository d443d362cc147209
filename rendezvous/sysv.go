//go:build fdpass_sysv

// SysV rendezvous back-end: a STREAMS pipe pair for Socketpair, and a
// pipe with the "connld" STREAMS module pushed and then fattach(3C)'d
// onto path for Server/Accept/Connect, per spec §4.7. fattach has no
// syscall-table entry (it is a libc convenience wrapping mount(2) with
// a STREAMS-specific fstype); cgo is used here the same way
// affinity_linux.go already does for pthread_setaffinity_np, rather
// than reimplementing the undocumented mount(2) argument structure.
package rendezvous

/*
#include <stropts.h>
#include <unistd.h>
#include <errno.h>
#include <stdlib.h>

static int push_connld(int fd) {
	return ioctl(fd, I_PUSH, "connld");
}

static int do_fattach(int fd, const char *path) {
	return fattach(fd, path);
}
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/fhs-fdpass/fdpass/api"
	"golang.org/x/sys/unix"
)

// fattach wraps the libc call of the same name: there is no syscall
// number for it on illumos/Solaris, only a libc convenience function.
func fattach(fd int, path string) error {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	if ret, errno := C.do_fattach(C.int(fd), cpath); ret != 0 {
		return fmt.Errorf("rendezvous: fattach %s: errno %d", path, errno)
	}
	return nil
}

// Socketpair returns two endpoints connected by a STREAMS pipe pair —
// the SysV analogue of a UNIX-domain stream socketpair.
func Socketpair() (a, b *os.File, err error) {
	fds := make([]int, 2)
	if err := unix.Pipe2(fds, 0); err != nil {
		return nil, nil, err
	}
	return os.NewFile(uintptr(fds[0]), "fdpass-pair-a"), os.NewFile(uintptr(fds[1]), "fdpass-pair-b"), nil
}

// Server opens a STREAMS pipe, pushes the connld module onto one end,
// and attaches it to path so Connect can open(2) it. backlog is
// accepted for interface symmetry with the BSD back-end; connld queues
// pending connections internally and does not take an explicit depth.
func Server(path string, backlog int) (*Listener, error) {
	fds := make([]int, 2)
	if err := unix.Pipe2(fds, 0); err != nil {
		return nil, err
	}
	listenEnd, clientEnd := fds[0], fds[1]
	if ret, errno := C.push_connld(C.int(clientEnd)); ret != 0 {
		unix.Close(listenEnd)
		unix.Close(clientEnd)
		return nil, errno
	}
	if err := fattach(clientEnd, path); err != nil {
		unix.Close(listenEnd)
		unix.Close(clientEnd)
		return nil, err
	}
	// The client end is now referenced by the mount table entry at
	// path; this process no longer needs its own copy.
	unix.Close(clientEnd)
	return &Listener{fd: uintptr(listenEnd), path: path}, nil
}

// Accept issues I_RECVFD on the listener, per spec §4.7 — STREAMS
// delivers a pending connld connection as a receive-fd event.
func Accept(l *Listener) (*os.File, error) {
	const iRecvFD = 0x530E // I_RECVFD: ('S'<<8)|016
	type strrecvfd struct {
		fd   int32
		uid  int32
		gid  int32
		fill [8]byte
	}
	var buf strrecvfd
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, l.fd, iRecvFD, uintptr(unsafe.Pointer(&buf)))
	if errno != 0 {
		if errno == unix.EAGAIN || errno == unix.EWOULDBLOCK {
			return nil, api.ErrWouldBlock
		}
		return nil, errno
	}
	return os.NewFile(uintptr(buf.fd), "fdpass-accepted"), nil
}

// Connect opens the mounted STREAMS rendezvous file, yielding a new
// passer-capable endpoint.
func Connect(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), "fdpass-connected"), nil
}
