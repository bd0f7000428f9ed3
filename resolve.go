package qnxcomm

import (
	"github.com/abilashjram/qnxcomm/internal/queue"
	"github.com/abilashjram/qnxcomm/internal/registry"
)

// resolveTarget follows coid -> (pid, chid) -> Channel, the lookup every
// Send variant performs before enqueueing (spec.md §4.4). The returned
// ProcessEntry is ref-counted; callers must Release it once the enqueue
// (and, for a waiting send, the reply wait) is done. chid is the target
// channel id, returned alongside for stamping onto the Message Record.
func (p *Process) resolveTarget(op string, coid int32) (target *registry.ProcessEntry, ch *queue.Channel, chid int32, err error) {
	conn, ok := p.e.FindConnection(coid)
	if !ok {
		return nil, nil, 0, NewDescriptorError(op, p.pid, ErrCodeBadDescriptor, "unknown coid")
	}

	target, ok = p.reg.driver.Find(conn.Pid)
	if !ok {
		return nil, nil, 0, NewDescriptorError(op, p.pid, ErrCodeBadDescriptor, "target process not open")
	}

	ch, ok = target.FindChannel(conn.Chid)
	if !ok {
		target.Release()
		return nil, nil, 0, NewDescriptorError(op, p.pid, ErrCodeBadDescriptor, "unknown target chid")
	}
	return target, ch, conn.Chid, nil
}
