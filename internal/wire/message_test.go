package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPulseRoundTrip(t *testing.T) {
	p := Pulse{Code: -5, Coid: 42, Value: -1000}
	buf := p.Marshal()
	require.Len(t, buf, WireSize)

	got := UnmarshalPulse(buf)
	require.Equal(t, p, got)
}

func TestIOVecsInlineAndOverflow(t *testing.T) {
	var v IOVecs
	for i := 0; i < MaxIovecLen+2; i++ {
		v.Append([]byte{byte(i)})
	}
	require.Equal(t, MaxIovecLen+2, v.Len())
	require.Equal(t, MaxIovecLen+2, v.TotalLen())
	for i := 0; i < v.Len(); i++ {
		require.Equal(t, byte(i), v.At(i)[0])
	}
}

func TestIOVecsCopyOut(t *testing.T) {
	v := NewIOVecs([][]byte{[]byte("Hallo "), []byte("Welt"), {0}})
	dst := make([]byte, 16)
	n := v.CopyOut(0, dst)
	require.Equal(t, 11, n)
	require.Equal(t, "Hallo Welt\x00", string(dst[:n]))
}

func TestIOVecsCopyOutWithOffset(t *testing.T) {
	v := NewIOVecs([][]byte{[]byte("0123456789")})
	dst := make([]byte, 4)
	n := v.CopyOut(6, dst)
	require.Equal(t, 4, n)
	require.Equal(t, "6789", string(dst[:n]))
}

func TestIOVecsCopyIn(t *testing.T) {
	a := make([]byte, 3)
	b := make([]byte, 3)
	v := NewIOVecs([][]byte{a, b})
	n := v.CopyIn([]byte("Hallo!"))
	require.Equal(t, 6, n)
	require.Equal(t, "Hal", string(a))
	require.Equal(t, "lo!", string(b))
}

func TestRecordAbortVsFinish(t *testing.T) {
	replied := NewMessage(1, 10, 20, 3, 4, NewIOVecs(nil), 16, 0)
	replied.Finish(0, []byte("OK"))
	require.False(t, replied.Aborted)

	aborted := NewMessage(2, 10, 20, 3, 4, NewIOVecs(nil), 16, 0)
	aborted.Abort(-9)
	require.True(t, aborted.Aborted)
	require.EqualValues(t, -9, aborted.Status)
}

func TestRecordStateTransitions(t *testing.T) {
	rec := NewMessage(1, 10, 20, 3, 4, NewIOVecs([][]byte{[]byte("hi")}), 16, 0)
	require.Equal(t, StateWaiting, rec.State())

	require.True(t, rec.CompareAndSetState(StateWaiting, StateReceiving))
	require.Equal(t, StateReceiving, rec.State())

	require.False(t, rec.CompareAndSetState(StateWaiting, StatePending), "stale CAS must fail")

	rec.Finish(3, []byte("OK\x00"))
	require.Equal(t, StateFinished, rec.State())
	require.EqualValues(t, 3, rec.Status)
	require.Equal(t, "OK\x00", string(rec.Reply))
}

func TestPulseRecordHasZeroRcvid(t *testing.T) {
	rec := NewPulse(10, 20, 3, 4, Pulse{Code: 1, Coid: 3, Value: 99})
	require.EqualValues(t, 0, rec.Rcvid)
	require.Equal(t, KindPulse, rec.Kind)
}
