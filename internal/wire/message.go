// Package wire defines the Message Record (spec.md §3) and its wire-level
// payload shapes (pulse, scatter/gather vectors). A Record is the single
// heap object shared between a blocked sender, the channel queue, and a
// process entry's pending list for the lifetime of one rendezvous; see
// spec.md §4.1 for its state machine and §9 for the ownership discipline
// ("express this as indices into a slab-or-arena... rather than raw
// back-pointers") that this package's Rcvid-keyed design follows.
package wire

import (
	"sync/atomic"

	"github.com/abilashjram/qnxcomm/internal/wait"
)

// Record is the Message Record. Every field after construction that can
// be touched by more than one goroutine (Status, Reply, state) is either
// atomic or written exactly once under the state transition that makes
// it visible, matching spec.md §5's release/acquire requirement: the
// state word is both the state machine and the visibility fence.
type Record struct {
	Rcvid        int64
	SenderPid    int32
	ReceiverPid  int32
	SenderCoid   int32
	ReceiverChid int32
	Kind         Kind

	// Message-only fields.
	In        IOVecs
	OutCap    int // capacity of the sender's reply buffer(s)
	TimeoutMS int

	// NoReply marks a MsgSendNoReply send: the sender does not wait on
	// this record's state and will not be woken by Finish. The receiver
	// still gets a real, non-zero Rcvid and the record is filed on the
	// pending list like any other (so MsgRead works), but the reply-side
	// release skips it, so a later MsgReply/MsgError against this Rcvid
	// sees NOT-FOUND (spec.md §4.4, test S2).
	NoReply bool

	// Pulse-only field.
	Pulse Pulse

	state int32 // wire.State, accessed only via State/CompareAndSetState/SetState/Finish/Abort and StateWord

	// Status and Reply are written once, by whichever side drives the
	// record into StateFinished, before that transition is published.
	Status int32
	Reply  []byte

	// Aborted distinguishes a genuine application reply/error (Finish)
	// from a core-driven forced completion (Abort): channel destroy or
	// process teardown. The sender's
	// operation handler surfaces the former as its raw Status with no Go
	// error, and the latter as a structured *Error built from Status.
	Aborted bool
}

// NewMessage builds a Record for a full request/reply send.
func NewMessage(rcvid int64, senderPid, receiverPid, senderCoid, receiverChid int32, in IOVecs, outCap, timeoutMS int) *Record {
	return &Record{
		Rcvid:        rcvid,
		SenderPid:    senderPid,
		ReceiverPid:  receiverPid,
		SenderCoid:   senderCoid,
		ReceiverChid: receiverChid,
		Kind:         KindMessage,
		In:           in,
		OutCap:       outCap,
		TimeoutMS:    timeoutMS,
		state:        int32(StateWaiting),
	}
}

// NewPulse builds a Record for a fire-and-forget pulse. Its Rcvid is
// always 0.
func NewPulse(senderPid, receiverPid, senderCoid, receiverChid int32, p Pulse) *Record {
	return &Record{
		SenderPid:    senderPid,
		ReceiverPid:  receiverPid,
		SenderCoid:   senderCoid,
		ReceiverChid: receiverChid,
		Kind:         KindPulse,
		Pulse:        p,
		state:        int32(StateWaiting),
	}
}

// State returns the current lifecycle state.
func (r *Record) State() State {
	return State(atomic.LoadInt32(&r.state))
}

// StateWord exposes the raw state word for internal/wait's Wait/WakeAll.
func (r *Record) StateWord() *int32 { return &r.state }

// CompareAndSetState performs the single allowed monotone transition
// atomically, returning whether it took effect. Callers use this instead
// of a plain store whenever a concurrent transition is possible (the
// sender-abort race of spec.md §4.1).
func (r *Record) CompareAndSetState(from, to State) bool {
	ok := atomic.CompareAndSwapInt32(&r.state, int32(from), int32(to))
	if ok {
		wait.WakeAll(&r.state)
	}
	return ok
}

// SetState unconditionally advances the state and wakes any waiter. Used
// where the caller already holds exclusive access to the record (e.g.
// just after dequeuing it under the channel lock).
func (r *Record) SetState(s State) {
	atomic.StoreInt32(&r.state, int32(s))
	wait.WakeAll(&r.state)
}

// Finish installs the terminal result of a genuine MsgReply/MsgError and
// transitions to StateFinished in one step, publishing Status/Reply
// before any waiter can observe the new state (the write happens-before
// the atomic store that wakes them).
func (r *Record) Finish(status int32, reply []byte) {
	r.Status = status
	r.Reply = reply
	r.SetState(StateFinished)
}

// Abort installs a core-forced completion status — channel destroy or
// process teardown, never an application reply —
// and transitions to StateFinished. The sender's handler turns Aborted
// records into a structured error instead of handing back Status raw.
func (r *Record) Abort(status int32) {
	r.Status = status
	r.Aborted = true
	r.SetState(StateFinished)
}
