//go:build solaris && !fdpass_sysv

// 4.3BSD back-end: conceptually the msg_accrights field of the message
// header in place of SCM_RIGHTS, per spec §4.1. Solaris and illumos
// sockets accept SCM_RIGHTS-style ancillary data identically to the
// 4.4BSD convention; there is no surviving accrights syscall surface in
// modern kernels or in golang.org/x/sys/unix to bit-twiddle against, so
// this back-end reuses the same Sendmsg/Recvmsg ancillary-data path as
// bsd44Backend but is kept as a structurally distinct type selected by
// platform probe, exactly as spec §6 describes ("4.3 on Solaris, 4.4
// elsewhere").
package transport

import (
	"github.com/fhs-fdpass/fdpass/api"
	"golang.org/x/sys/unix"
)

type bsd43Backend struct {
	fd int
}

func newBackend(endpoint uintptr) (Backend, error) {
	return &bsd43Backend{fd: int(endpoint)}, nil
}

func (b *bsd43Backend) Fd() uintptr { return uintptr(b.fd) }

func (b *bsd43Backend) SetNonblocking(nonblocking bool) error {
	return unix.SetNonblock(b.fd, nonblocking)
}

func (b *bsd43Backend) SendOne(fd uintptr) error {
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

func (b *bsd43Backend) RecvOne() (uintptr, error) {
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
		return 0, errMalformed("recv: no accrights data accompanying payload")
	}

	msgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return 0, errMalformed("recv: malformed control message: " + err.Error())
	}
	for _, m := range msgs {
		fds, err := unix.ParseUnixRights(&m)
		if err != nil {
			return 0, errMalformed("recv: malformed accrights: " + err.Error())
		}
		if len(fds) == 0 {
			continue
		}
		if len(fds) > 1 {
			for _, extra := range fds[1:] {
				unix.Close(extra)
			}
		}
		return uintptr(fds[0]), nil
	}
	return 0, api.ErrTableFull
}

func (b *bsd43Backend) Close() error {
	return unix.Close(b.fd)
}

func isTableFullErrno(err error) bool {
	return err == unix.EMFILE || err == unix.ENFILE
}
