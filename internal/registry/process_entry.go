// Package registry implements the Process Entry and Driver Registry of
// spec.md §3-§4.3: the per-process owned-channel/connection/pending state
// and the process-wide pid lookup table that sits above it. Grounded on
// go-ublk's internal/ctrl control-plane layering (one owning struct per
// opened resource, ref-counted lookups through a parent table) and on
// vitess's message_manager.go pending-message bookkeeping pattern for the
// per-entry pending registry.
package registry

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/abilashjram/qnxcomm/internal/ids"
	"github.com/abilashjram/qnxcomm/internal/queue"
	"github.com/abilashjram/qnxcomm/internal/wire"
)

// Sentinel errors; the qnxcomm package translates these into structured
// *qnxcomm.Error values with the matching ErrCode.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidOffset = errors.New("invalid offset")
)

// Connection maps a local coid to a (pid, chid) target. It may outlive
// the channel it names (spec.md §3: "sends through a dangling connection
// fail with bad descriptor").
type Connection struct {
	Coid int32
	Pid  int32
	Chid int32
}

// ProcessEntry is the per-opening-process state: owned channels and
// connections, and the pending registry of in-flight receives.
type ProcessEntry struct {
	Pid int32

	mu          sync.RWMutex
	channels    map[int32]*queue.Channel
	connections map[int32]*Connection
	chidAlloc   ids.Allocator
	coidAlloc   ids.Allocator

	pendingMu sync.Mutex
	pending   map[int64]*wire.Record

	refCount int32
}

// New creates an empty ProcessEntry for pid.
func New(pid int32) *ProcessEntry {
	return &ProcessEntry{
		Pid:         pid,
		channels:    make(map[int32]*queue.Channel),
		connections: make(map[int32]*Connection),
		pending:     make(map[int64]*wire.Record),
		refCount:    1,
	}
}

// Ref increments the entry's reference count. Driver.Find takes this
// reference on the caller's behalf; the caller calls Release when done.
func (p *ProcessEntry) Ref() { atomic.AddInt32(&p.refCount, 1) }

// Release decrements the reference count.
func (p *ProcessEntry) Release() { atomic.AddInt32(&p.refCount, -1) }

// RefCount reports the current reference count, used by teardown to wait
// for outstanding cross-process lookups to finish.
func (p *ProcessEntry) RefCount() int32 { return atomic.LoadInt32(&p.refCount) }

// AddChannel allocates a new chid and installs a channel, returning both.
func (p *ProcessEntry) AddChannel(flags uint32) (*queue.Channel, int32) {
	chid := p.chidAlloc.Next()
	ch := queue.New(p.Pid, chid, flags)

	p.mu.Lock()
	p.channels[chid] = ch
	p.mu.Unlock()
	return ch, chid
}

// FindChannel looks up an owned channel by chid.
func (p *ProcessEntry) FindChannel(chid int32) (*queue.Channel, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ch, ok := p.channels[chid]
	return ch, ok
}

// RemoveChannel unlinks and closes the channel, draining any queued
// records with the given teardown status. Returns false if chid is
// unknown.
func (p *ProcessEntry) RemoveChannel(chid int32, teardownStatus int32) ([]*wire.Record, bool) {
	p.mu.Lock()
	ch, ok := p.channels[chid]
	if ok {
		delete(p.channels, chid)
	}
	p.mu.Unlock()
	if !ok {
		return nil, false
	}
	return ch.Close(teardownStatus), true
}

// AddConnection allocates a new coid bound to (targetPid, targetChid). No
// requirement that the target channel exists yet (spec.md §4.3).
func (p *ProcessEntry) AddConnection(targetPid, targetChid int32) int32 {
	coid := p.coidAlloc.Next()
	p.mu.Lock()
	p.connections[coid] = &Connection{Coid: coid, Pid: targetPid, Chid: targetChid}
	p.mu.Unlock()
	return coid
}

// FindConnection looks up an owned connection by coid.
func (p *ProcessEntry) FindConnection(coid int32) (*Connection, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.connections[coid]
	return c, ok
}

// RemoveConnection unlinks a connection. Returns false if coid is unknown.
func (p *ProcessEntry) RemoveConnection(coid int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.connections[coid]; !ok {
		return false
	}
	delete(p.connections, coid)
	return true
}

// AddPending files rec on the pending list, keyed by rcvid, and
// transitions it from RECEIVING to PENDING (spec.md §4.1/§4.3). rec must
// be in StateReceiving on entry.
func (p *ProcessEntry) AddPending(rec *wire.Record) {
	p.pendingMu.Lock()
	p.pending[rec.Rcvid] = rec
	p.pendingMu.Unlock()
	rec.SetState(wire.StatePending)
}

// ReleasePending pops the record with rcvid off the pending list, for the
// replier (Reply/Error) or the sender-abort race. Returns false if
// absent.
func (p *ProcessEntry) ReleasePending(rcvid int64) (*wire.Record, bool) {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	rec, ok := p.pending[rcvid]
	if !ok {
		return nil, false
	}
	delete(p.pending, rcvid)
	return rec, true
}

// ReleasePendingForReply is ReleasePending's counterpart for MsgReply and
// MsgError: a record filed by a MsgSendNoReply send is left on the
// pending list (so MsgRead can still see it) and reported as absent here,
// matching spec.md §8 scenario S2's "Reply/Error fail with NOT-FOUND"
// contract for a send the sender never waits on.
func (p *ProcessEntry) ReleasePendingForReply(rcvid int64) (*wire.Record, bool) {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	rec, ok := p.pending[rcvid]
	if !ok || rec.NoReply {
		return nil, false
	}
	delete(p.pending, rcvid)
	return rec, true
}

// ReadPending copies min(inputLen-offset, len(out)) bytes from the
// pending record's input buffer(s) into out, without releasing it from
// the pending list (spec.md §4.3/§4.4, MsgRead).
func (p *ProcessEntry) ReadPending(rcvid int64, offset int, out []byte) (int, error) {
	p.pendingMu.Lock()
	rec, ok := p.pending[rcvid]
	p.pendingMu.Unlock()
	if !ok {
		return 0, ErrNotFound
	}
	if offset < 0 || offset > rec.In.TotalLen() {
		return 0, ErrInvalidOffset
	}
	return rec.In.CopyOut(offset, out), nil
}

// Teardown tears down every owned channel (draining its queue) and
// forcibly completes every pending record, both with status, then clears
// connections. Matches spec.md §4.3's device-close sequence; the caller
// is responsible for having already removed this entry from the Driver
// Registry so no new lookups can see it.
func (p *ProcessEntry) Teardown(status int32) {
	p.mu.Lock()
	channels := p.channels
	p.channels = make(map[int32]*queue.Channel)
	p.connections = make(map[int32]*Connection)
	p.mu.Unlock()

	for _, ch := range channels {
		ch.Close(status)
	}

	p.pendingMu.Lock()
	pending := p.pending
	p.pending = make(map[int64]*wire.Record)
	p.pendingMu.Unlock()

	for _, rec := range pending {
		rec.Abort(status)
	}
}
