package qnxcomm

import (
	"github.com/abilashjram/qnxcomm/internal/queue"
	"github.com/abilashjram/qnxcomm/internal/registry"
)

// MsgReply installs status and in as the reply to rcvid and wakes its
// sender (spec.md §4.4's Reply). in is capped to the sender's declared
// reply capacity before copying. Fails with NOT-FOUND if rcvid is not on
// p's pending list — including a MsgSendNoReply send's rcvid, which is
// never release-able this way (spec.md §8 scenario S2).
func (p *Process) MsgReply(rcvid int64, status int32, in []byte) error {
	const op = "MsgReply"

	rec, ok := p.e.ReleasePendingForReply(rcvid)
	if !ok {
		return NewRcvidError(op, rcvid, ErrCodeNotFound, "no such pending rcvid")
	}

	n := len(in)
	if n > rec.OutCap {
		n = rec.OutCap
	}

	var reply []byte
	if n > 0 {
		reply = queue.GetBuffer(n)
		copy(reply, in[:n])
	}

	rec.Finish(status, reply)
	p.log.WithRcvid(rcvid).Debug("replied", "status", status, "bytes", n)
	return nil
}

// MsgError completes rcvid with a negative status and an empty reply,
// waking its sender (spec.md §4.4's Error). Same NOT-FOUND rules as
// MsgReply.
func (p *Process) MsgError(rcvid int64, errno int32) error {
	const op = "MsgError"

	rec, ok := p.e.ReleasePendingForReply(rcvid)
	if !ok {
		return NewRcvidError(op, rcvid, ErrCodeNotFound, "no such pending rcvid")
	}

	status := errno
	if status > 0 {
		status = -status
	}
	rec.Finish(status, nil)
	p.log.WithRcvid(rcvid).Debug("errored", "status", status)
	return nil
}

// MsgRead copies bytes from rcvid's still-pending input buffer, starting
// at offset, into out (spec.md §4.4's Read). Unlike Reply/Error, this
// works even for a MsgSendNoReply send's rcvid, since the record is still
// filed on the pending list — only Reply/Error special-case it away.
func (p *Process) MsgRead(rcvid int64, offset int, out []byte) (int, error) {
	const op = "MsgRead"

	n, err := p.e.ReadPending(rcvid, offset, out)
	if err != nil {
		switch err {
		case registry.ErrInvalidOffset:
			return 0, NewRcvidError(op, rcvid, ErrCodeInvalid, "offset out of range")
		default:
			return 0, NewRcvidError(op, rcvid, ErrCodeNotFound, "no such pending rcvid")
		}
	}
	return n, nil
}
