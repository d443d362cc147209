// Package queue implements the order-preserving SendQueue and RecvQueue
// described in spec §4.3/§4.4, built on github.com/eapache/queue's
// ring-buffer FIFO (see DESIGN.md).
package queue

import (
	"os"

	"github.com/fhs-fdpass/fdpass/api"

	eapachequeue "github.com/eapache/queue"
)

// SendEntry is one descriptor awaiting flush, owned exclusively by the
// SendQueue until Drain hands it to the transport, per spec §3.
type SendEntry struct {
	File *os.File
	Cb   func(error)
}

var sendEntryPool = newSyncPool(
	func() *SendEntry { return &SendEntry{} },
	func(e *SendEntry) { *e = SendEntry{} },
)

// SendQueue is the order-preserving queue of SendEntry awaiting flush,
// per spec §4.3. The head is always the next descriptor to transmit;
// an empty queue carries no write watcher.
type SendQueue struct {
	items *eapachequeue.Queue
	arm   func()
}

// NewSendQueue constructs an empty SendQueue. arm is invoked by Push to
// register write-readiness interest; the caller (passer.Passer) is
// responsible for disarming once Len() reaches zero after a Drain.
func NewSendQueue(arm func()) *SendQueue {
	return &SendQueue{items: eapachequeue.New(), arm: arm}
}

// Push appends fd with an optional completion callback and arms the
// write-readiness watcher. Never blocks, never reports an error
// synchronously, per spec §4.3. Ownership of fd transfers to the queue:
// the caller must not close it or reference it again.
func (q *SendQueue) Push(fd *os.File, cb func(error)) {
	e := sendEntryPool.Get()
	e.File = fd
	e.Cb = cb
	q.items.Add(e)
	q.arm()
}

// Len reports the number of entries still awaiting flush.
func (q *SendQueue) Len() int {
	return q.items.Length()
}

// Drain flushes entries from the head while send succeeds. send wraps
// transport.Backend.SendOne for the endpoint. Returns nil once the
// queue is empty or the head reports WouldBlock (left in place for the
// next readiness callback); returns a non-nil error only for a Fatal
// condition. Drain has then already closed the offending entry and
// failed its callback with that error; the caller must treat the error
// as one-way and call Shutdown to drain and fail the rest, per spec §9's
// shutdown-atomicity policy.
func (q *SendQueue) Drain(send func(fd uintptr) error) error {
	for q.items.Length() > 0 {
		e := q.items.Peek().(*SendEntry)
		err := send(e.File.Fd())
		if err == api.ErrWouldBlock {
			return nil
		}
		q.items.Remove()
		if err != nil {
			e.File.Close()
			if e.Cb != nil {
				e.Cb(err)
			}
			sendEntryPool.Put(e)
			return err
		}
		e.File.Close()
		if e.Cb != nil {
			e.Cb(nil)
		}
		sendEntryPool.Put(e)
	}
	return nil
}

// Shutdown unconditionally closes and fails every remaining entry with
// reason, without attempting to send. Called once the Passer has
// transitioned to Shutdown, per spec §3/§5.
func (q *SendQueue) Shutdown(reason error) {
	for q.items.Length() > 0 {
		e := q.items.Remove().(*SendEntry)
		e.File.Close()
		if e.Cb != nil {
			e.Cb(reason)
		}
		sendEntryPool.Put(e)
	}
}
