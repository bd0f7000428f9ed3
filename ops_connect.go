package qnxcomm

// ConnectAttach creates a connection from p to (targetPid, targetChid),
// returning the new local coid. The target channel need not exist yet
// (spec.md §4.3): resolution happens at send time, not here.
func (p *Process) ConnectAttach(targetPid, targetChid int32) (int32, error) {
	coid := p.e.AddConnection(targetPid, targetChid)
	p.log.Debug("connection attached", "coid", coid, "target_pid", targetPid, "target_chid", targetChid)
	return coid, nil
}

// ConnectDetach unlinks coid. Fails with NOT-FOUND if coid is not one of
// p's own connections.
func (p *Process) ConnectDetach(coid int32) error {
	if !p.e.RemoveConnection(coid) {
		return NewDescriptorError("ConnectDetach", p.pid, ErrCodeNotFound, "unknown coid")
	}
	p.log.WithConnection(coid).Debug("connection detached")
	return nil
}
