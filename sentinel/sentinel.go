// Package sentinel implements the reserved-slot trick that makes
// receive-side descriptor-table exhaustion recoverable: see spec §4.2.
//
// A Sentinel never carries data. Its sole purpose is to occupy one entry
// in the process descriptor table so that, when released immediately
// before a receive attempt, the kernel is guaranteed at least one free
// slot to admit the incoming descriptor into.
package sentinel

import (
	"os"

	"github.com/fhs-fdpass/fdpass/api"
)

// Sentinel holds one reserved descriptor-table slot.
//
// It is not safe for concurrent use; callers (the passer package) must
// serialize access the same way the rest of this module assumes a single
// cooperative event-loop thread, per spec §5.
type Sentinel struct {
	anchor uintptr  // descriptor to duplicate from on reacquire; never closed here.
	held   *os.File // currently occupies the reserved slot; nil when vacated.
}

// New constructs a Sentinel anchored on the given descriptor, which must
// remain open for the Sentinel's entire lifetime (the Passer's endpoint
// descriptor is the natural anchor: it is guaranteed open as long as the
// Passer itself is not shut down). Construction reserves the first slot by
// allocating a dedicated pipe and closing one end, per spec §4.2.
func New(anchor uintptr) (*Sentinel, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	if err := r.Close(); err != nil {
		w.Close()
		return nil, err
	}
	return &Sentinel{anchor: anchor, held: w}, nil
}

// Held reports whether the Sentinel currently occupies a slot.
func (s *Sentinel) Held() bool {
	return s.held != nil
}

// Release frees the reserved slot, if one is held. Idempotent.
func (s *Sentinel) Release() {
	if s.held == nil {
		return
	}
	s.held.Close()
	s.held = nil
}

// Reacquire attempts to re-occupy a slot by duplicating the anchor
// descriptor. Returns api.ErrTableFull (not wrapped further) if the
// process or system descriptor table has no room; the caller is expected
// to enter retry mode on that specific error and resubmit Reacquire later.
//
// Reacquire is a no-op returning nil if a slot is already held.
func (s *Sentinel) Reacquire() error {
	if s.held != nil {
		return nil
	}
	f, err := dupAnchor(s.anchor)
	if err != nil {
		if isTableFull(err) {
			return api.ErrTableFull
		}
		return err
	}
	s.held = f
	return nil
}

// Close permanently releases the sentinel's slot. Safe to call multiple
// times and safe to call regardless of Held().
func (s *Sentinel) Close() error {
	if s.held == nil {
		return nil
	}
	err := s.held.Close()
	s.held = nil
	return err
}
