package wait

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitWakesOnChange(t *testing.T) {
	var word int32
	done := make(chan Result, 1)
	go func() {
		done <- Wait(context.Background(), &word, 0, 0)
	}()

	time.Sleep(20 * time.Millisecond)
	atomic.StoreInt32(&word, 1)
	WakeAll(&word)

	select {
	case res := <-done:
		require.Equal(t, Woken, res)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after WakeAll")
	}
}

func TestWaitReturnsImmediatelyIfAlreadyChanged(t *testing.T) {
	var word int32 = 5
	res := Wait(context.Background(), &word, 0, time.Second)
	require.Equal(t, Woken, res)
}

func TestWaitTimesOut(t *testing.T) {
	var word int32
	start := time.Now()
	res := Wait(context.Background(), &word, 0, 30*time.Millisecond)
	require.Equal(t, TimedOut, res)
	require.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestWaitCancelledByContext(t *testing.T) {
	var word int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan Result, 1)
	go func() {
		done <- Wait(ctx, &word, 0, 0)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case res := <-done:
		require.Equal(t, Cancelled, res)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after context cancellation")
	}
}
