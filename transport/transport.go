// Package transport abstracts the kernel mechanism used to move exactly
// one open file descriptor, atomically, across a pre-established
// UNIX-domain endpoint. See spec §4.1.
//
// Three back-ends share the Backend interface and are chosen at build
// time (spec §6): SCM_RIGHTS ancillary data (the default everywhere but
// Solaris), msg_accrights ancillary data (the default on Solaris), and
// STREAMS send-fd/recv-fd ioctls, selected with the fdpass_sysv build
// tag. Transport performs no buffering and is otherwise stateless; the
// SendQueue/RecvQueue in the queue package own ordering and retry.
package transport

import "fmt"

// errMalformed wraps a Fatal condition raised by malformed or truncated
// ancillary data that is not itself a table-full indication.
func errMalformed(msg string) error {
	return fmt.Errorf("transport: %s", msg)
}

// Backend performs exactly one descriptor transfer per call. Batching
// multiple descriptors into a single kernel message is deliberately not
// supported anywhere in this package — see spec §9.
type Backend interface {
	// SendOne atomically sends fd to the peer. Returns nil on success,
	// api.ErrWouldBlock if the endpoint is not currently writable, or
	// any other error (api.ErrTableFull never originates from SendOne —
	// only RecvOne can run into the receiver's table pressure) which
	// the caller must treat as Fatal.
	SendOne(fd uintptr) error

	// RecvOne attempts to atomically receive one descriptor. Returns
	// (fd, nil) on success, (0, api.ErrWouldBlock) if the endpoint has
	// nothing to read, (0, api.ErrTableFull) if the ancillary data was
	// truncated or the kernel reports no descriptor could be allocated,
	// or (0, err) for any other Fatal condition.
	RecvOne() (fd uintptr, err error)

	// SetNonblocking puts the endpoint into non-blocking mode. Callers
	// must invoke this before any I/O unless they opted out per spec §6
	// (Config.DontSetNonblocking).
	SetNonblocking(nonblocking bool) error

	// Fd returns the underlying endpoint descriptor (the same number
	// passer.Passer anchors its Sentinel on and arms readiness for,
	// though Passer takes it from the endpoint *os.File, not from here).
	Fd() uintptr

	// Close closes the endpoint.
	Close() error
}

// New constructs the build-selected Backend wrapping an already
// established endpoint descriptor (from rendezvous.Connect/Accept or a
// socketpair/pipe pair). It does not dup or take new ownership beyond
// what newBackend does per-platform.
func New(endpoint uintptr) (Backend, error) {
	return newBackend(endpoint)
}

// payloadByte is the single opaque byte accompanying every BSD
// ancillary-data message, per spec §6: "the accompanying payload byte
// is opaque... the peer discards it." Kept non-empty so the message is
// never mistaken for EOF.
var payloadByte = []byte{0}
