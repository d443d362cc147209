//go:build unix && !solaris && !fdpass_sysv

// 4.4BSD back-end: SCM_RIGHTS ancillary data over a UNIX-domain stream
// socket. This is the default Backend everywhere except Solaris, per
// spec §4.1/§6.
package transport

import (
	"github.com/fhs-fdpass/fdpass/api"
	"golang.org/x/sys/unix"
)

type bsd44Backend struct {
	fd int
}

func newBackend(endpoint uintptr) (Backend, error) {
	return &bsd44Backend{fd: int(endpoint)}, nil
}

func (b *bsd44Backend) Fd() uintptr { return uintptr(b.fd) }

func (b *bsd44Backend) SetNonblocking(nonblocking bool) error {
	return unix.SetNonblock(b.fd, nonblocking)
}

// SendOne constructs a message carrying exactly one descriptor's worth
// of SCM_RIGHTS ancillary data and a single opaque payload byte, and
// sends it with one atomic Sendmsg call.
func (b *bsd44Backend) SendOne(fd uintptr) error {
	rights := unix.UnixRights(int(fd))
	err := unix.Sendmsg(b.fd, payloadByte, rights, nil, unix.MSG_DONTWAIT)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return api.ErrWouldBlock
		}
		return err
	}
	return nil
}

// RecvOne issues a matched Recvmsg sized for exactly one descriptor's
// ancillary data. Truncated ancillary data (MSG_CTRUNC) or a kernel
// indication that no descriptor could be allocated surfaces as
// api.ErrTableFull, per spec §4.1.
func (b *bsd44Backend) RecvOne() (uintptr, error) {
	buf := make([]byte, 1)
	oob := make([]byte, unix.CmsgSpace(4))

	n, oobn, flags, _, err := unix.Recvmsg(b.fd, buf, oob, unix.MSG_DONTWAIT)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, api.ErrWouldBlock
		}
		return 0, err
	}
	if flags&unix.MSG_CTRUNC != 0 {
		return 0, api.ErrTableFull
	}
	if n == 0 && oobn == 0 {
		return 0, api.ErrOrderlyShutdown
	}
	if oobn == 0 {
		return 0, errMalformed("recv: no ancillary data accompanying payload")
	}

	msgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return 0, errMalformed("recv: malformed control message: " + err.Error())
	}
	for _, m := range msgs {
		fds, err := unix.ParseUnixRights(&m)
		if err != nil {
			return 0, errMalformed("recv: malformed SCM_RIGHTS: " + err.Error())
		}
		if len(fds) == 0 {
			continue
		}
		if len(fds) > 1 {
			// Should never happen: spec §9 forbids batching on the
			// send side, so more than one fd in one message means the
			// peer violated the single-descriptor-per-message contract.
			for _, extra := range fds[1:] {
				unix.Close(extra)
			}
		}
		return uintptr(fds[0]), nil
	}
	return 0, api.ErrTableFull
}

func (b *bsd44Backend) Close() error {
	return unix.Close(b.fd)
}

func isTableFullErrno(err error) bool {
	return err == unix.EMFILE || err == unix.ENFILE
}
