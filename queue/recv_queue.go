package queue

import (
	"fmt"
	"os"

	"github.com/fhs-fdpass/fdpass/api"

	eapachequeue "github.com/eapache/queue"
)

// RecvWaiter is a delivery callback awaiting an incoming descriptor.
// Invoked exactly once, either with a received descriptor or with a
// failure indication during shutdown, per spec §3.
type RecvWaiter struct {
	Cb func(*os.File, error)
}

var recvWaiterPool = newSyncPool(
	func() *RecvWaiter { return &RecvWaiter{} },
	func(w *RecvWaiter) { *w = RecvWaiter{} },
)

// Outcome classifies what a RecvQueue.Drain call did, so the caller
// (passer.Passer) knows whether to keep watching for readability, enter
// retry mode, or tear the Passer down.
type Outcome int

const (
	// Idle: the queue is empty, or the head would block and the
	// sentinel is still held — nothing further to do until the next
	// readiness callback.
	Idle Outcome = iota
	// Retry: the sentinel could not be reacquired; the Passer must stop
	// draining until the retry timer reports success.
	Retry
	// Fatal: an unrecoverable transport error occurred; err carries the
	// cause.
	Fatal
)

// RecvQueue is the order-preserving queue of RecvWaiter awaiting an
// incoming descriptor, per spec §4.4. An empty queue carries no read
// watcher.
type RecvQueue struct {
	items *eapachequeue.Queue
	arm   func()
}

// NewRecvQueue constructs an empty RecvQueue. arm is invoked by Push to
// register read-readiness interest.
func NewRecvQueue(arm func()) *RecvQueue {
	return &RecvQueue{items: eapachequeue.New(), arm: arm}
}

// Push appends cb and arms the read-readiness watcher. If the Passer is
// in retry mode, pushing here does not change that — the waiter is
// satisfied whenever retry succeeds, per spec §4.4.
func (q *RecvQueue) Push(cb func(*os.File, error)) {
	w := recvWaiterPool.Get()
	w.Cb = cb
	q.items.Add(w)
	q.arm()
}

// Len reports the number of waiters still awaiting a descriptor.
func (q *RecvQueue) Len() int {
	return q.items.Length()
}

// Drain implements the outcome table in spec §4.4 exactly: release the
// sentinel before every recv attempt (so there is always a free slot
// for the incoming descriptor), attempt recv, and regardless of outcome
// attempt to reacquire the sentinel before deciding what to do next.
//
// recv wraps transport.Backend.RecvOne for the endpoint; release and
// reacquire wrap the Sentinel's Release/Reacquire.
func (q *RecvQueue) Drain(release func(), recv func() (uintptr, error), reacquire func() error) (Outcome, error) {
	for q.items.Length() > 0 {
		release()
		fd, recvErr := recv()

		switch recvErr {
		case nil:
			reacErr := reacquire()
			w := q.items.Remove().(*RecvWaiter)
			w.Cb(os.NewFile(fd, "fdpass-received"), nil)
			recvWaiterPool.Put(w)
			switch reacErr {
			case nil:
				continue
			case api.ErrTableFull:
				return Retry, nil
			default:
				return Fatal, reacErr
			}

		case api.ErrWouldBlock:
			reacErr := reacquire()
			switch reacErr {
			case nil:
				return Idle, nil
			case api.ErrTableFull:
				return Retry, nil
			default:
				return Fatal, reacErr
			}

		case api.ErrTableFull:
			// The sentinel was released before recv was attempted, so
			// the kernel should never report table-full for the
			// receive itself. If it does, the invariant that protects
			// in-flight descriptors from being silently dropped no
			// longer holds — spec §4.4 calls this out explicitly.
			reacquire()
			return Fatal, fmt.Errorf("recvqueue: kernel reported table-full immediately after sentinel release")

		default:
			reacquire()
			return Fatal, recvErr
		}
	}
	return Idle, nil
}

// Shutdown unconditionally fails every remaining waiter with reason.
func (q *RecvQueue) Shutdown(reason error) {
	for q.items.Length() > 0 {
		w := q.items.Remove().(*RecvWaiter)
		w.Cb(nil, reason)
		recvWaiterPool.Put(w)
	}
}
