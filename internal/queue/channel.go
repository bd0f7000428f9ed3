// Package queue implements the Channel: the per-process FIFO queue of
// Message Records awaiting receive (spec.md §3, §4.2). Its locked-queue
// plus waiter-count shape is grounded on nsqd's Channel
// (nsqd/channel.go), generalized from a pub/sub message queue to a
// blocking rendezvous queue; enqueue/dequeue/drain semantics instead
// follow spec.md directly.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abilashjram/qnxcomm/internal/wait"
	"github.com/abilashjram/qnxcomm/internal/wire"
)

// Sentinel errors returned by Channel operations. The qnxcomm package
// translates these into structured *qnxcomm.Error values with the
// matching ErrCode.
var (
	ErrChannelClosed = errors.New("channel closed")
	ErrTimeout       = errors.New("timeout")
	ErrInterrupted   = errors.New("interrupted")
)

// Channel is a FIFO queue of Message Records plus a waiter condition,
// owned by one process and identified by a process-local chid.
type Channel struct {
	OwnerPid int32
	Chid     int32
	Flags    uint32

	mu     sync.Mutex
	queue  []*wire.Record
	closed bool
	count  int32 // atomic-accessed via internal/wait; len(queue) mirrored here
}

// New creates an empty, open channel.
func New(ownerPid, chid int32, flags uint32) *Channel {
	return &Channel{OwnerPid: ownerPid, Chid: chid, Flags: flags}
}

// Enqueue appends rec to the FIFO under the channel lock and wakes any
// blocked receiver. Fails with ErrChannelClosed if the channel has begun
// destruction (spec.md §4.2, "Enqueue after destroy").
func (c *Channel) Enqueue(rec *wire.Record) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	c.queue = append(c.queue, rec)
	c.count++
	c.mu.Unlock()

	wait.WakeAll(&c.count)
	return nil
}

// Dequeue blocks until a record is available, the channel is closed, or
// timeoutMS elapses. A timeoutMS of 0 returns ErrTimeout immediately if
// the queue is empty (spec.md §5: 0 means "return immediately if nothing
// queued" on receive — the asymmetric counterpart of Send's "0 means wait
// indefinitely", carried over unchanged from the original driver's
// wait_event_interruptible_timeout(..., msecs_to_jiffies(0)) behavior).
// Spurious wakeups are tolerated: after a plain wakeup the queue is
// re-checked under the lock; a timeout or cancellation reported by the
// wait itself returns at once, without a further check of the queue.
func (c *Channel) Dequeue(ctx context.Context, timeoutMS int) (*wire.Record, error) {
	var deadline time.Time
	if timeoutMS > 0 {
		deadline = time.Now().Add(time.Duration(timeoutMS) * time.Millisecond)
	}

	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, ErrChannelClosed
		}
		if len(c.queue) > 0 {
			rec := c.queue[0]
			c.queue = c.queue[1:]
			c.count--
			// Flip to RECEIVING before releasing the lock, per
			// spec.md §4.1's WAITING -> RECEIVING transition.
			rec.SetState(wire.StateReceiving)
			c.mu.Unlock()
			return rec, nil
		}
		c.mu.Unlock()

		if timeoutMS == 0 {
			return nil, ErrTimeout
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrTimeout
		}

		switch wait.Wait(ctx, &c.count, 0, remaining) {
		case wait.TimedOut:
			return nil, ErrTimeout
		case wait.Cancelled:
			return nil, ErrInterrupted
		case wait.Woken:
			// Re-check under lock; tolerate spurious wakeups.
		}
	}
}

// RemoveByRcvid unlinks and returns the record with the given rcvid if it
// is still in the FIFO (the sender-abort path of spec.md §4.1). O(n)
// scan: queues are expected to be short.
func (c *Channel) RemoveByRcvid(rcvid int64) (*wire.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, rec := range c.queue {
		if rec.Rcvid == rcvid {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			c.count--
			return rec, true
		}
	}
	return nil, false
}

// Close marks the channel closed (rejecting further Enqueue calls) and
// drains every queued record, transitioning each to StateFinished with
// status and waking its sender. Matches spec.md §4.2's drain_on_destroy.
func (c *Channel) Close(status int32) []*wire.Record {
	c.mu.Lock()
	c.closed = true
	drained := c.queue
	c.queue = nil
	c.count = 0
	c.mu.Unlock()

	// Wake any receiver blocked in Dequeue so it observes closed.
	wait.WakeAll(&c.count)

	for _, rec := range drained {
		rec.Abort(status)
	}
	return drained
}

// Len returns the number of records currently queued.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}
