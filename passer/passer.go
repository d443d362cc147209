// Package passer implements the composite object spec §4.5 names
// Passer: one Transport endpoint plus a SendQueue, a RecvQueue, a
// Sentinel, and on-demand readiness watchers, exposing the library's
// only user-visible operations.
//
// None of PushSendFH, PushRecvFH, IAmParent, IAmChild, or Shutdown
// blocks or suspends (spec §5); actual descriptor movement happens
// inside Watcher callbacks. Passer is not safe for concurrent use — like
// sentinel.Sentinel, it assumes a single cooperative event-loop thread
// serializes every call.
package passer

import (
	"errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/fhs-fdpass/fdpass/api"
	"github.com/fhs-fdpass/fdpass/queue"
	"github.com/fhs-fdpass/fdpass/rendezvous"
	"github.com/fhs-fdpass/fdpass/sentinel"
	"github.com/fhs-fdpass/fdpass/transport"
)

// Passer is the user-facing channel described in spec §4.5.
type Passer struct {
	cfg     Config
	watcher Watcher
	onError func(error)

	state api.PasserState

	// Paired-but-role-undecided endpoints, per the Unconfigured rows of
	// spec §4.5's state table. Non-nil only while state ==
	// api.PasserUnconfigured and paired == true.
	pendingA, pendingB *os.File
	paired             bool

	endpointFile *os.File
	fd           uintptr
	backend      transport.Backend
	sentinel     *sentinel.Sentinel
	sendQ        *queue.SendQueue
	recvQ        *queue.RecvQueue

	sendArmed bool
	recvArmed bool
	retrying  bool

	retryTimer      Timer
	retryIntervalNs atomic.Int64

	metrics api.Metrics
}

// New constructs a Passer per spec §3/§6. Config.FDs selects the
// lifecycle: zero fds makes the core create a paired transport via
// rendezvous.Socketpair; one fd goes straight to the Single state; two
// fds await a role-selection call (IAmParent/IAmChild) from a caller
// that is about to fork.
func New(cfg Config, opts ...Option) (*Passer, error) {
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Watcher == nil {
		api.Panic("passer: Config.Watcher must not be nil")
	}

	p := &Passer{
		cfg:     cfg,
		watcher: cfg.Watcher,
		onError: cfg.OnError,
		state:   api.PasserUnconfigured,
	}
	p.retryIntervalNs.Store(int64(cfg.retryInterval()))

	switch len(cfg.FDs) {
	case 0:
		a, b, err := rendezvous.Socketpair()
		if err != nil {
			return nil, err
		}
		p.pendingA, p.pendingB = a, b
		p.paired = true
	case 1:
		f := os.NewFile(cfg.FDs[0], "fdpass-endpoint")
		if err := p.completeSetup(f); err != nil {
			f.Close()
			return nil, err
		}
		p.state = api.PasserSingle
	case 2:
		p.pendingA = os.NewFile(cfg.FDs[0], "fdpass-endpoint-a")
		p.pendingB = os.NewFile(cfg.FDs[1], "fdpass-endpoint-b")
		p.paired = true
	default:
		api.Panic("passer: Config.FDs must have length 0, 1, or 2, got %d", len(cfg.FDs))
	}
	return p, nil
}

// State reports the current lifecycle state, per spec §4.5.
func (p *Passer) State() api.PasserState {
	return p.state
}

// IAmParent retains endpoint A and closes endpoint B, per spec §4.5's
// Unconfigured→Parent transition. Valid only on a Passer constructed
// with zero or two fds that has not yet selected a role; calling it
// otherwise is a ProgrammerError.
func (p *Passer) IAmParent() error {
	if p.state != api.PasserUnconfigured || !p.paired {
		api.Panic("passer: IAmParent called outside a paired Unconfigured state (state=%s)", p.state)
	}
	p.pendingB.Close()
	kept := p.pendingA
	p.pendingA, p.pendingB = nil, nil
	p.paired = false
	if err := p.completeSetup(kept); err != nil {
		return err
	}
	p.state = api.PasserParent
	return nil
}

// IAmChild retains endpoint B and closes endpoint A, per spec §4.5's
// Unconfigured→Child transition.
func (p *Passer) IAmChild() error {
	if p.state != api.PasserUnconfigured || !p.paired {
		api.Panic("passer: IAmChild called outside a paired Unconfigured state (state=%s)", p.state)
	}
	p.pendingA.Close()
	kept := p.pendingB
	p.pendingA, p.pendingB = nil, nil
	p.paired = false
	if err := p.completeSetup(kept); err != nil {
		return err
	}
	p.state = api.PasserChild
	return nil
}

// completeSetup wires the settled endpoint into a Backend, Sentinel,
// and the two queues. It installs no watchers — per spec §5, a Passer
// arms readiness interest only on demand, so constructing one before
// forking is always safe.
func (p *Passer) completeSetup(f *os.File) error {
	backend, err := transport.New(f.Fd())
	if err != nil {
		return err
	}
	if !p.cfg.DontSetNonblocking {
		if err := backend.SetNonblocking(true); err != nil {
			backend.Close()
			return err
		}
	}
	sen, err := sentinel.New(f.Fd())
	if err != nil {
		backend.Close()
		return err
	}
	p.endpointFile = f
	p.fd = f.Fd()
	p.backend = backend
	p.sentinel = sen
	p.sendQ = queue.NewSendQueue(p.armWrite)
	p.recvQ = queue.NewRecvQueue(p.armRead)
	p.metrics.StartedAt = time.Now()
	return nil
}

// PushSendFH enqueues fd for transmission, per spec §4.3/§4.5.
// Ownership of fd transfers to the Passer: the caller must drop all
// references and must not close it. cb, if non-nil, is invoked exactly
// once after the kernel send completes (with a non-nil error only for a
// Fatal or Shutdown condition).
func (p *Passer) PushSendFH(fd *os.File, cb func(error)) {
	switch p.state {
	case api.PasserSingle, api.PasserParent, api.PasserChild:
		p.sendQ.Push(fd, func(err error) {
			if err == nil {
				p.metrics.SendCompleted++
			}
			if cb != nil {
				cb(err)
			}
		})
	case api.PasserShutdown:
		fd.Close()
		if cb != nil {
			cb(api.ErrPasserClosed)
		}
	default:
		api.Panic("passer: PushSendFH called before role selection (state=%s)", p.state)
	}
}

// PushRecvFH enqueues cb to be invoked with the next incoming
// descriptor, per spec §4.4/§4.5. cb is invoked exactly once, either
// with a received descriptor or with a failure indication during
// shutdown.
func (p *Passer) PushRecvFH(cb func(*os.File, error)) {
	switch p.state {
	case api.PasserSingle, api.PasserParent, api.PasserChild:
		p.recvQ.Push(func(f *os.File, err error) {
			if err == nil {
				p.metrics.RecvCompleted++
			}
			if cb != nil {
				cb(f, err)
			}
		})
	case api.PasserShutdown:
		if cb != nil {
			cb(nil, api.ErrPasserClosed)
		}
	default:
		api.Panic("passer: PushRecvFH called before role selection (state=%s)", p.state)
	}
}

// Metrics returns a point-in-time snapshot, backing control.DebugProbes
// registration (see RegisterProbes).
func (p *Passer) Metrics() api.Metrics {
	m := p.metrics
	if p.sendQ != nil {
		m.SendQueueDepth = p.sendQ.Len()
	}
	if p.recvQ != nil {
		m.RecvQueueDepth = p.recvQ.Len()
	}
	m.InRetryMode = p.retrying
	return m
}

func (p *Passer) armWrite() {
	if p.sendArmed {
		return
	}
	if err := p.watcher.ArmWrite(p.fd, p.onWritable); err != nil {
		p.shutdown(err)
		return
	}
	p.sendArmed = true
}

func (p *Passer) armRead() {
	if p.retrying || p.recvArmed {
		return
	}
	if err := p.watcher.ArmRead(p.fd, p.onReadable); err != nil {
		p.shutdown(err)
		return
	}
	p.recvArmed = true
}

// onWritable drains the SendQueue head while the endpoint is writable,
// per spec §4.3.
func (p *Passer) onWritable() {
	if p.state == api.PasserShutdown {
		return
	}
	err := p.sendQ.Drain(p.backend.SendOne)
	if p.sendQ.Len() == 0 && p.sendArmed {
		p.watcher.DisarmWrite(p.fd)
		p.sendArmed = false
	}
	if err != nil {
		p.shutdown(err)
	}
}

// onReadable implements the §4.4 RecvQueue.drain outcome table: release
// the Sentinel before every receive attempt so the kernel always has a
// free slot for the incoming descriptor, then decide whether to keep
// draining, enter retry mode, or shut down.
func (p *Passer) onReadable() {
	if p.state == api.PasserShutdown || p.retrying {
		return
	}
	outcome, err := p.recvQ.Drain(p.sentinel.Release, p.backend.RecvOne, p.sentinel.Reacquire)
	switch outcome {
	case queue.Idle:
		if p.recvQ.Len() == 0 && p.recvArmed {
			p.watcher.DisarmRead(p.fd)
			p.recvArmed = false
		}
	case queue.Retry:
		p.enterRetry()
	case queue.Fatal:
		if errors.Is(err, api.ErrOrderlyShutdown) {
			p.shutdown(nil)
		} else {
			p.shutdown(err)
		}
	}
}

// enterRetry implements spec §4.6: stop honoring read-readiness and
// arm a periodic callback that retries Sentinel.Reacquire until it
// succeeds.
func (p *Passer) enterRetry() {
	if p.retrying {
		return
	}
	p.retrying = true
	if p.recvArmed {
		p.watcher.DisarmRead(p.fd)
		p.recvArmed = false
	}
	interval := time.Duration(p.retryIntervalNs.Load())
	p.retryTimer = p.watcher.ScheduleTimer(interval, p.onRetryTick)
}

// onRetryTick is the §4.6 retry timer callback. On success it resumes
// draining the RecvQueue immediately, since data may already be sitting
// unread in the kernel buffer from before the Sentinel was exhausted.
// On repeated failure it does nothing further — the Scheduler/Timer
// implementation is responsible for firing again; this is not a fatal
// condition per spec §4.6, since descriptor-table pressure is external.
func (p *Passer) onRetryTick() {
	if p.state == api.PasserShutdown {
		return
	}
	p.metrics.RetryCount++
	err := p.sentinel.Reacquire()
	switch {
	case err == nil:
		p.retrying = false
		if p.retryTimer != nil {
			p.retryTimer.Stop()
			p.retryTimer = nil
		}
		if p.recvQ.Len() > 0 {
			p.armRead()
			p.onReadable()
		}
	case errors.Is(err, api.ErrTableFull):
		// Keep retrying; the Scheduler reschedules itself.
	default:
		p.shutdown(err)
	}
}

// Shutdown is the sole cancellation primitive, per spec §5: it closes
// all queued send descriptors, fails every pending recv waiter, frees
// the Sentinel, deregisters watchers, closes the endpoint, and invokes
// OnError with a nil reason. Idempotent; safe to call from any state.
func (p *Passer) Shutdown() {
	p.shutdown(nil)
}

// gracefulShutdownAdapter adapts Passer.Shutdown's no-error signature to
// api.GracefulShutdown, for callers that drive a uniform registry of
// shutdownable components rather than calling Shutdown directly.
type gracefulShutdownAdapter struct{ p *Passer }

func (g gracefulShutdownAdapter) Shutdown() error {
	g.p.Shutdown()
	return nil
}

// AsGracefulShutdown exposes p through the api.GracefulShutdown
// interface.
func (p *Passer) AsGracefulShutdown() api.GracefulShutdown {
	return gracefulShutdownAdapter{p: p}
}

// reportError invokes p.onError with reason, classified through
// api.ClassifyError first. A nil reason (orderly shutdown) is passed
// through unclassified: ClassifyError(nil) returns a nil *api.Error,
// and assigning that nil pointer to the error-typed onError parameter
// directly would produce a non-nil interface value, breaking the
// nil-means-orderly contract for anyone matching on err == nil.
func (p *Passer) reportError(reason error) {
	if p.onError == nil {
		return
	}
	if reason == nil {
		p.onError(nil)
		return
	}
	p.onError(api.ClassifyError(reason))
}

func (p *Passer) shutdown(reason error) {
	if p.state == api.PasserShutdown {
		return
	}
	if p.paired {
		if p.pendingA != nil {
			p.pendingA.Close()
		}
		if p.pendingB != nil {
			p.pendingB.Close()
		}
		p.pendingA, p.pendingB = nil, nil
		p.paired = false
		p.state = api.PasserShutdown
		p.reportError(reason)
		return
	}

	p.state = api.PasserShutdown
	if p.retryTimer != nil {
		p.retryTimer.Stop()
		p.retryTimer = nil
	}
	if p.sendArmed {
		p.watcher.DisarmWrite(p.fd)
		p.sendArmed = false
	}
	if p.recvArmed {
		p.watcher.DisarmRead(p.fd)
		p.recvArmed = false
	}

	queueReason := reason
	if queueReason == nil {
		queueReason = api.ErrPasserClosed
	}
	if p.sendQ != nil {
		p.sendQ.Shutdown(queueReason)
	}
	if p.recvQ != nil {
		p.recvQ.Shutdown(queueReason)
	}
	if p.sentinel != nil {
		p.sentinel.Close()
	}
	if p.backend != nil {
		p.backend.Close()
	}
	p.reportError(reason)
}
