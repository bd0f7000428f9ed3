package qnxcomm

import (
	"runtime"

	"github.com/abilashjram/qnxcomm/internal/logging"
	"github.com/abilashjram/qnxcomm/internal/registry"
)

// Registry is the public façade over the Driver Registry of spec.md §3:
// the process-wide pid -> Process Entry table that every operation
// handler looks resources up through. One Registry models one running
// instance of the facility, the way one opened character device models
// one kernel instance in the source.
type Registry struct {
	driver *registry.Driver
	opts   *Options
	log    *logging.Logger
}

// NewRegistry creates an empty registry. A nil opts uses DefaultOptions.
func NewRegistry(opts *Options) *Registry {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Registry{
		driver: registry.NewDriver(),
		opts:   opts,
		log:    opts.logger(),
	}
}

// Process is a single process's opening of the facility: spec.md §3's
// Process Entry plus the identity (pid) that every operation is
// authorized against. Obtained from Registry.Open, released with Close.
type Process struct {
	pid int32
	reg *Registry
	e   *registry.ProcessEntry
	log *logging.Logger
}

// Open registers pid as a new opening of the facility. A second
// concurrent Open for the same pid fails with NO-SPACE (spec.md §6).
// Operations made through the returned Process are not checked against
// any caller identity: whoever holds the Process acts as pid.
func (r *Registry) Open(pid int32) (*Process, error) {
	entry, err := r.driver.Open(pid)
	if err != nil {
		return nil, NewDescriptorError("Open", pid, ErrCodeNoSpace, "process already open")
	}
	r.log.Debug("process opened", "pid", pid)
	return &Process{pid: pid, reg: r, e: entry, log: r.log.WithProcess(pid)}, nil
}

// Close tears down p: its owned channels are drained, its pending
// records are forcibly completed, and its connections are torn down
// (spec.md §4.3's device-close sequence). p must not be used afterward.
func (r *Registry) Close(p *Process) error {
	entry, ok := r.driver.Close(p.pid)
	if !ok {
		return NewDescriptorError("Close", p.pid, ErrCodeNotFound, "process not open")
	}

	// Teardown aborts every queued/pending record and wakes its sender
	// first (spec.md §4.3 steps 2-4) — including any sender still holding
	// a ref on entry from resolveTarget, which it only releases once its
	// MsgSend call returns. Only after that wakeup can ref-count reach its
	// baseline of 1, so the wait for it (step 5) must come after Teardown,
	// not before: waiting first would deadlock against exactly the
	// blocked-sender case Teardown exists to unblock.
	entry.Teardown(statusByCode[ErrCodeBadDescriptor])

	for entry.RefCount() > 1 {
		runtime.Gosched()
	}

	r.log.Debug("process closed", "pid", p.pid)
	return nil
}

// Pid returns the identity p was opened under.
func (p *Process) Pid() int32 { return p.pid }
