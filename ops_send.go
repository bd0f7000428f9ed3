package qnxcomm

import (
	"context"
	"runtime"
	"time"

	"github.com/abilashjram/qnxcomm/internal/queue"
	"github.com/abilashjram/qnxcomm/internal/registry"
	"github.com/abilashjram/qnxcomm/internal/wait"
	"github.com/abilashjram/qnxcomm/internal/wire"
)

// MsgSend sends in and blocks for a reply into out, per spec.md §4.4. The
// returned status is whatever the replier passed to MsgReply/MsgError
// (S1: a reply with status 0 and "OK\0" yields status=0, n=3; S5: an
// error reply yields a negative status with n=0) — not itself a Go
// error. err is non-nil only for a core-level failure that meant no
// reply was ever possible: bad descriptor, timeout, interruption, or a
// receiver-side fault.
func (p *Process) MsgSend(ctx context.Context, coid int32, in, out []byte, timeoutMS int) (status int32, n int, err error) {
	return p.MsgSendv(ctx, coid, [][]byte{in}, [][]byte{out}, timeoutMS)
}

// MsgSendv is MsgSend's scatter/gather variant: in/out are vectors of
// buffer descriptors instead of single buffers (spec.md §4.4's
// "Scatter/gather variant").
func (p *Process) MsgSendv(ctx context.Context, coid int32, in, out [][]byte, timeoutMS int) (status int32, n int, err error) {
	const op = "MsgSendv"

	target, ch, chid, err := p.resolveTarget(op, coid)
	if err != nil {
		return 0, 0, err
	}
	defer target.Release()

	timeoutMS = p.reg.opts.resolveTimeout(timeoutMS)
	outCap := 0
	for _, b := range out {
		outCap += len(b)
	}

	rcvid := p.reg.driver.NextRcvid()
	rec := wire.NewMessage(rcvid, p.pid, target.Pid, coid, chid, wire.NewIOVecs(in), outCap, timeoutMS)

	if enqErr := ch.Enqueue(rec); enqErr != nil {
		return 0, 0, NewRcvidError(op, rcvid, ErrCodeBadDescriptor, "target channel closed")
	}

	status, err = waitForSend(ctx, op, rec, ch, target, timeoutMS)
	if err != nil {
		return 0, 0, err
	}
	if len(rec.Reply) > 0 {
		outVecs := wire.NewIOVecs(out)
		n = outVecs.CopyIn(rec.Reply)
	}
	return status, n, nil
}

// MsgSendPulse enqueues a fire-and-forget pulse and returns immediately;
// the receiver frees it (spec.md §4.4's SendPulse). Pulse code/value are
// typed int8/int32, so the width validation the original driver performs
// at runtime is enforced by the Go compiler instead.
func (p *Process) MsgSendPulse(coid int32, code int8, value int32) error {
	const op = "MsgSendPulse"

	target, ch, chid, err := p.resolveTarget(op, coid)
	if err != nil {
		return err
	}
	defer target.Release()

	rec := wire.NewPulse(p.pid, target.Pid, coid, chid, wire.Pulse{Code: code, Coid: coid, Value: value})
	if enqErr := ch.Enqueue(rec); enqErr != nil {
		return NewDescriptorError(op, p.pid, ErrCodeBadDescriptor, "target channel closed")
	}
	return nil
}

// MsgSendNoReply sends in without ever waiting for a reply — semantically
// a pulse-like message (spec.md §4.4's SendNoReply, §8 scenario S2). The
// record carries a real rcvid and is received like any other message, but
// is marked so that MsgReply/MsgError against it fail with NOT-FOUND;
// MsgRead still works, since the record is still filed on the receiver's
// pending list.
func (p *Process) MsgSendNoReply(coid int32, in []byte) error {
	const op = "MsgSendNoReply"

	target, ch, chid, err := p.resolveTarget(op, coid)
	if err != nil {
		return err
	}
	defer target.Release()

	rcvid := p.reg.driver.NextRcvid()
	rec := wire.NewMessage(rcvid, p.pid, target.Pid, coid, chid, wire.NewIOVecs([][]byte{in}), 0, 0)
	rec.NoReply = true

	if enqErr := ch.Enqueue(rec); enqErr != nil {
		return NewRcvidError(op, rcvid, ErrCodeBadDescriptor, "target channel closed")
	}
	return nil
}

// waitForSend blocks until rec reaches StateFinished, timeoutMS elapses,
// or ctx is cancelled, per spec.md §4.5. A timeout or cancellation enters
// the sender-abort interlock of §4.1 instead of returning directly, since
// the record may already be mid-transition on the receiver/replier side.
func waitForSend(ctx context.Context, op string, rec *wire.Record, ch *queue.Channel, target *registry.ProcessEntry, timeoutMS int) (int32, error) {
	hasDeadline := timeoutMS > 0
	var deadline time.Time
	if hasDeadline {
		deadline = time.Now().Add(time.Duration(timeoutMS) * time.Millisecond)
	}

	for {
		state := rec.State()
		if state == wire.StateFinished {
			return sendOutcome(op, rec)
		}

		var remaining time.Duration
		if hasDeadline {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return abortSend(rec, ch, target, op, NewRcvidError(op, rec.Rcvid, ErrCodeTimeout, "timed out waiting for reply"))
			}
		}

		switch wait.Wait(ctx, rec.StateWord(), int32(state), remaining) {
		case wait.TimedOut:
			return abortSend(rec, ch, target, op, NewRcvidError(op, rec.Rcvid, ErrCodeTimeout, "timed out waiting for reply"))
		case wait.Cancelled:
			return abortSend(rec, ch, target, op, NewRcvidError(op, rec.Rcvid, ErrCodeInterrupted, "interrupted waiting for reply"))
		case wait.Woken:
			// Spurious or a real state advance; loop re-checks.
		}
	}
}

// sendOutcome turns a StateFinished record into the sender's result: a
// genuine Finish (MsgReply/MsgError) surfaces Status as-is with no Go
// error; a core Abort surfaces a structured error built from Status.
func sendOutcome(op string, rec *wire.Record) (int32, error) {
	if rec.Aborted {
		return 0, errorFromAbortStatus(op, rec.Rcvid, rec.Status)
	}
	return rec.Status, nil
}

// abortSend implements spec.md §4.1's sender-abort interlock: the sender
// races the receiver/replier to own and free rec. cause is reported if
// the sender wins outright; if the replier already won, rec's own
// Status/Aborted decide the outcome instead.
func abortSend(rec *wire.Record, ch *queue.Channel, target *registry.ProcessEntry, op string, cause *Error) (int32, error) {
	if _, ok := ch.RemoveByRcvid(rec.Rcvid); ok {
		return 0, cause
	}

	// A receiver is mid-dequeue, holding rec on its stack; this window is
	// bounded and short (spec.md §4.1), so a plain scheduling yield is
	// enough rather than a real wait/wake round trip.
	for rec.State() == wire.StateReceiving {
		runtime.Gosched()
	}

	if released, ok := target.ReleasePending(rec.Rcvid); ok {
		if released.State() == wire.StateFinished {
			return sendOutcome(op, released)
		}
		return 0, cause
	}

	// The replier already removed it from pending and is en route to
	// FINISHED; wait for that transition and adopt its outcome.
	for rec.State() != wire.StateFinished {
		wait.Wait(context.Background(), rec.StateWord(), int32(rec.State()), 0)
	}
	return sendOutcome(op, rec)
}
