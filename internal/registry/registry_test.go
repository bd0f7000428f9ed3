package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abilashjram/qnxcomm/internal/wire"
)

func TestDriverOpenRejectsDoubleOpen(t *testing.T) {
	d := NewDriver()
	_, err := d.Open(100)
	require.NoError(t, err)

	_, err = d.Open(100)
	require.ErrorIs(t, err, ErrAlreadyOpen)
}

func TestDriverFindAndClose(t *testing.T) {
	d := NewDriver()
	entry, _ := d.Open(100)

	found, ok := d.Find(100)
	require.True(t, ok)
	require.Same(t, entry, found)
	found.Release()

	closed, ok := d.Close(100)
	require.True(t, ok)
	require.Same(t, entry, closed)

	_, ok = d.Find(100)
	require.False(t, ok)
}

func TestNextRcvidUnique(t *testing.T) {
	d := NewDriver()
	seen := map[int64]bool{}
	for i := 0; i < 100; i++ {
		r := d.NextRcvid()
		require.False(t, seen[r])
		seen[r] = true
		require.NotZero(t, r)
	}
}

func TestProcessEntryChannelLifecycle(t *testing.T) {
	p := New(1)
	ch, chid := p.AddChannel(0)
	require.NotZero(t, chid)

	found, ok := p.FindChannel(chid)
	require.True(t, ok)
	require.Same(t, ch, found)

	drained, ok := p.RemoveChannel(chid, -9)
	require.True(t, ok)
	require.Empty(t, drained)

	_, ok = p.FindChannel(chid)
	require.False(t, ok)

	_, ok = p.RemoveChannel(999, -9)
	require.False(t, ok)
}

func TestProcessEntryConnectionLifecycle(t *testing.T) {
	p := New(1)
	coid := p.AddConnection(2, 7)
	require.NotZero(t, coid)

	conn, ok := p.FindConnection(coid)
	require.True(t, ok)
	require.EqualValues(t, 2, conn.Pid)
	require.EqualValues(t, 7, conn.Chid)

	require.True(t, p.RemoveConnection(coid))
	require.False(t, p.RemoveConnection(coid))
}

func TestProcessEntryPendingLifecycle(t *testing.T) {
	p := New(1)
	rec := wire.NewMessage(42, 10, 1, 3, 5, wire.NewIOVecs([][]byte{[]byte("0123456789")}), 16, 0)
	rec.SetState(wire.StateReceiving)

	p.AddPending(rec)
	require.Equal(t, wire.StatePending, rec.State())

	n, err := p.ReadPending(42, 0, make([]byte, 4))
	require.NoError(t, err)
	require.Equal(t, 4, n)

	_, err = p.ReadPending(42, 999, make([]byte, 4))
	require.ErrorIs(t, err, ErrInvalidOffset)

	_, err = p.ReadPending(999, 0, make([]byte, 4))
	require.ErrorIs(t, err, ErrNotFound)

	released, ok := p.ReleasePending(42)
	require.True(t, ok)
	require.Same(t, rec, released)

	_, ok = p.ReleasePending(42)
	require.False(t, ok)
}

func TestReleasePendingForReplySkipsNoReply(t *testing.T) {
	p := New(1)
	rec := wire.NewMessage(7, 10, 1, 3, 5, wire.NewIOVecs([][]byte{[]byte("hi")}), 0, 0)
	rec.NoReply = true
	rec.SetState(wire.StateReceiving)
	p.AddPending(rec)

	_, ok := p.ReleasePendingForReply(7)
	require.False(t, ok)

	// Still on the pending list: MsgRead keeps working.
	n, err := p.ReadPending(7, 0, make([]byte, 2))
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestProcessEntryTeardownFinishesPendingAndDrainsChannels(t *testing.T) {
	p := New(1)
	ch, chid := p.AddChannel(0)
	queued := wire.NewMessage(1, 5, 1, 1, chid, wire.NewIOVecs(nil), 0, 0)
	require.NoError(t, ch.Enqueue(queued))

	pendingRec := wire.NewMessage(2, 6, 1, 1, chid, wire.NewIOVecs(nil), 0, 0)
	pendingRec.SetState(wire.StateReceiving)
	p.AddPending(pendingRec)

	p.Teardown(-9)

	require.Equal(t, wire.StateFinished, queued.State())
	require.Equal(t, wire.StateFinished, pendingRec.State())
	require.EqualValues(t, -9, queued.Status)
	require.EqualValues(t, -9, pendingRec.Status)
	require.True(t, queued.Aborted)
	require.True(t, pendingRec.Aborted)

	_, ok := p.FindChannel(chid)
	require.False(t, ok)
}
