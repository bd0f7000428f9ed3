//go:build linux

package wait

import (
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	futexWaitOp = 0 // FUTEX_WAIT
	futexWakeOp = 1 // FUTEX_WAKE
)

func loadWord(word *int32) int32 {
	return atomic.LoadInt32(word)
}

// futexWait blocks the calling OS thread while *word == expect, for up
// to timeout (0 means forever). This backs both the sender's reply-wait
// of spec.md §4.5 and the receiver's channel wait-queue of §4.2.
func futexWait(word *int32, expect int32, timeout time.Duration) Result {
	var ts *unix.Timespec
	if timeout > 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}

	for {
		_, _, errno := unix.Syscall6(
			unix.SYS_FUTEX,
			uintptr(unsafe.Pointer(word)),
			uintptr(futexWaitOp),
			uintptr(expect),
			uintptr(unsafe.Pointer(ts)),
			0, 0,
		)
		switch errno {
		case 0, unix.EAGAIN:
			// Either a wake arrived, or *word had already changed
			// before the kernel could block us. Either way the
			// caller re-checks its own condition.
			return Woken
		case unix.ETIMEDOUT:
			return TimedOut
		case unix.EINTR:
			// A host-level signal interrupted the syscall itself;
			// this is distinct from caller cancellation (handled by
			// the ctx watcher in Wait), so just retry.
			continue
		default:
			return Woken
		}
	}
}

func futexWake(word *int32) {
	unix.Syscall(unix.SYS_FUTEX, uintptr(unsafe.Pointer(word)), uintptr(futexWakeOp), uintptr(1<<30))
}
