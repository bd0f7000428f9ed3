package qnxcomm

// ChannelCreate allocates a new channel owned by p, per spec.md §4.3's
// add_channel. flags is accepted for API parity with the original but
// currently has no bits read back.
func (p *Process) ChannelCreate(flags ChannelFlags) (int32, error) {
	_, chid := p.e.AddChannel(uint32(flags))
	p.log.Debug("channel created", "chid", chid, "flags", flags)
	return chid, nil
}

// ChannelDestroy tears chid down: its queue is drained and every blocked
// sender is woken with BAD-DESCRIPTOR (spec.md §4.2's drain_on_destroy).
// Fails with NOT-FOUND if chid is not one of p's own channels.
func (p *Process) ChannelDestroy(chid int32) error {
	drained, ok := p.e.RemoveChannel(chid, statusByCode[ErrCodeBadDescriptor])
	if !ok {
		return NewDescriptorError("ChannelDestroy", p.pid, ErrCodeNotFound, "unknown chid")
	}
	if len(drained) > 0 {
		p.log.WithChannel(chid).Debug("channel destroyed, drained queued sends", "count", len(drained))
	}
	return nil
}
