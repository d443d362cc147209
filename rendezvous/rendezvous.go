// Package rendezvous implements the filesystem/pair rendezvous helpers
// named in spec §4.7/§6: Socketpair, Server, Accept, Connect. Each is
// platform-conditional: BSD back-ends use UNIX-domain stream sockets;
// the SysV back-end (fdpass_sysv build tag) uses a STREAMS pipe with the
// connld module pushed and mounted at path.
//
// This package only establishes the transport endpoint; it never reads
// or writes descriptor-passing traffic itself — that is transport's job,
// driven by passer.Passer.
package rendezvous

// Listener is a filesystem-rendezvous listening endpoint returned by
// Server. Accept produces new passer-capable endpoints from it; on unix
// builds Close stops listening and also unlinks path, so the caller
// does not have to remove it separately.
type Listener struct {
	fd   uintptr
	path string
}

// Fd returns the underlying listening descriptor.
func (l *Listener) Fd() uintptr { return l.fd }

// Path returns the filesystem path the Listener is bound to.
func (l *Listener) Path() string { return l.path }
