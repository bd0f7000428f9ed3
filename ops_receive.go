package qnxcomm

import (
	"context"

	"github.com/abilashjram/qnxcomm/internal/queue"
	"github.com/abilashjram/qnxcomm/internal/wire"
)

// MsgInfoFlags carries the bits described by spec.md §6's "Message info".
type MsgInfoFlags uint32

const (
	// MsgInfoNoReply is set when the delivered message was sent via
	// MsgSendNoReply: the sender is not waiting, and MsgReply/MsgError
	// against this rcvid will fail with NOT-FOUND.
	MsgInfoNoReply MsgInfoFlags = 1 << 0
)

// MsgInfo is the metadata MsgReceive fills in alongside a delivered
// message (spec.md §6's "Message info").
type MsgInfo struct {
	SenderPid  int32
	Chid       int32
	SenderCoid int32
	SrcLen     int // msglen: total bytes in the sender's input
	DstLen     int // dstmsglen: the sender's declared reply capacity
	Flags      MsgInfoFlags
}

// MsgReceive blocks on chid for up to timeoutMS, delivering the next
// queued send or pulse into out (spec.md §4.4's Receive). rcvid is 0 for
// a delivered pulse, >0 for a message now on p's pending list awaiting
// MsgReply/MsgError.
func (p *Process) MsgReceive(ctx context.Context, chid int32, out []byte, timeoutMS int) (MsgInfo, int64, int, error) {
	info, rcvid, n, err := p.MsgReceivev(ctx, chid, [][]byte{out}, timeoutMS)
	return info, rcvid, n, err
}

// MsgReceivev is MsgReceive's scatter/gather variant.
func (p *Process) MsgReceivev(ctx context.Context, chid int32, out [][]byte, timeoutMS int) (MsgInfo, int64, int, error) {
	const op = "MsgReceivev"

	ch, ok := p.e.FindChannel(chid)
	if !ok {
		return MsgInfo{}, 0, 0, NewDescriptorError(op, p.pid, ErrCodeBadDescriptor, "unknown chid")
	}

	rec, err := ch.Dequeue(ctx, p.reg.opts.resolveTimeout(timeoutMS))
	if err != nil {
		return MsgInfo{}, 0, 0, receiveError(op, p.pid, err)
	}

	info := MsgInfo{SenderPid: rec.SenderPid, Chid: chid, SenderCoid: rec.SenderCoid}

	if rec.Kind == wire.KindPulse {
		pulseVecs := wire.NewIOVecs(out)
		n := pulseVecs.CopyIn(rec.Pulse.Marshal())
		info.SrcLen = wire.WireSize
		rec.SetState(wire.StateFinished)
		return info, 0, n, nil
	}

	info.SrcLen = rec.In.TotalLen()
	info.DstLen = rec.OutCap
	if rec.NoReply {
		info.Flags |= MsgInfoNoReply
	}

	// Neither IOVecs side exposes a direct vector-to-vector copy (Send's
	// gather only ever reads into one flat sender buffer); a pooled
	// intermediate buffer lets CopyOut/CopyIn stay the only two
	// vector-copy primitives internal/wire needs.
	outVecs := wire.NewIOVecs(out)
	total := 0
	for i := 0; i < outVecs.Len(); i++ {
		total += len(outVecs.At(i))
	}
	buf := queue.GetBuffer(total)
	copiedIn := rec.In.CopyOut(0, buf)
	copied := outVecs.CopyIn(buf[:copiedIn])
	queue.PutBuffer(buf)

	p.e.AddPending(rec)
	p.log.WithRcvid(rec.Rcvid).Debug("message received", "chid", chid, "src_len", info.SrcLen, "noreply", rec.NoReply)
	return info, rec.Rcvid, copied, nil
}

// receiveError translates the Channel's sentinel errors into the
// structured categories Receive's callers expect.
func receiveError(op string, pid int32, err error) error {
	switch err {
	case queue.ErrTimeout:
		return NewError(op, ErrCodeTimeout, "no message queued")
	case queue.ErrInterrupted:
		return NewError(op, ErrCodeInterrupted, "receive interrupted")
	case queue.ErrChannelClosed:
		return NewDescriptorError(op, pid, ErrCodeBadDescriptor, "channel destroyed")
	default:
		return WrapError(op, err)
	}
}
