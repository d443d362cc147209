//go:build fdpass_sysv

// SysV back-end: STREAMS I_SENDFD/I_RECVFD ioctls on a pipe endpoint,
// per spec §4.1. Selected with the fdpass_sysv build tag (spec §6);
// never the default, since every platform Go still targets accepts
// SCM_RIGHTS-style ancillary data on sockets. Kept for systems where a
// caller has already wired a STREAMS pipe via a connld-mounted
// rendezvous (see rendezvous package) and wants the native transfer
// primitive instead of ancillary data.
package transport

import (
	"unsafe"

	"github.com/fhs-fdpass/fdpass/api"
	"golang.org/x/sys/unix"
)

// STREAMS ioctl command numbers, from <sys/stropts.h> on SysV-derived
// systems (Solaris/illumos). Not defined by golang.org/x/sys/unix, which
// targets only socket-ancillary-data kernels.
const (
	iSendFD = 0x5311 // ('S'<<8)|021
	iRecvFD = 0x530E // ('S'<<8)|016
)

// strrecvfd mirrors struct strrecvfd from <sys/stropts.h>: the payload
// of a successful I_RECVFD ioctl.
type strrecvfd struct {
	fd    int32
	uid   int32
	gid   int32
	fill  [8]byte
}

type sysvBackend struct {
	fd int
}

func newBackend(endpoint uintptr) (Backend, error) {
	return &sysvBackend{fd: int(endpoint)}, nil
}

func (b *sysvBackend) Fd() uintptr { return uintptr(b.fd) }

func (b *sysvBackend) SetNonblocking(nonblocking bool) error {
	return unix.SetNonblock(b.fd, nonblocking)
}

// SendOne invokes I_SENDFD, which the STREAMS pipe driver delivers to
// the peer's next I_RECVFD as a single atomic unit — the SysV analogue
// of one SCM_RIGHTS message.
func (b *sysvBackend) SendOne(fd uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), iSendFD, fd)
	if errno != 0 {
		if errno == unix.EAGAIN || errno == unix.EWOULDBLOCK {
			return api.ErrWouldBlock
		}
		return errno
	}
	return nil
}

// RecvOne invokes I_RECVFD. The "too many open files" errno (EMFILE,
// system-wide ENFILE) is how the SysV STREAMS driver distinguishes
// table-full from any other failure, per spec §4.1.
func (b *sysvBackend) RecvOne() (uintptr, error) {
	var buf strrecvfd
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), iRecvFD, uintptr(unsafe.Pointer(&buf)))
	if errno != 0 {
		switch errno {
		case unix.EAGAIN, unix.EWOULDBLOCK:
			return 0, api.ErrWouldBlock
		case unix.EMFILE, unix.ENFILE:
			return 0, api.ErrTableFull
		default:
			return 0, errno
		}
	}
	if buf.fd < 0 {
		return 0, errMalformed("recvfd: negative fd in strrecvfd")
	}
	return uintptr(buf.fd), nil
}

func (b *sysvBackend) Close() error {
	return unix.Close(b.fd)
}

func isTableFullErrno(err error) bool {
	return err == unix.EMFILE || err == unix.ENFILE
}
