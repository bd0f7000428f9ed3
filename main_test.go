package qnxcomm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testCtx() context.Context { return context.Background() }

// waitUntilQueued polls until chid's channel has at least one record
// queued, for tests that need a sender genuinely parked before the next
// step (e.g. destroying the channel out from under it).
func waitUntilQueued(t *testing.T, p *Process, chid int32) {
	t.Helper()
	ch, ok := p.e.FindChannel(chid)
	require.True(t, ok)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if ch.Len() > 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for record to be queued")
}
