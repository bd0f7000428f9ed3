package ids

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocatorMonotonic(t *testing.T) {
	var a Allocator
	require.EqualValues(t, 1, a.Next())
	require.EqualValues(t, 2, a.Next())
	require.EqualValues(t, 3, a.Next())
}

func TestAllocatorConcurrentUnique(t *testing.T) {
	var a Allocator
	const n = 1000
	seen := make(chan int32, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- a.Next()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int32]bool{}
	for v := range seen {
		require.False(t, unique[v], "duplicate id %d", v)
		unique[v] = true
	}
	require.Len(t, unique, n)
}

func TestRcvidAllocatorNeverZero(t *testing.T) {
	var a RcvidAllocator
	for i := 0; i < 10; i++ {
		require.NotZero(t, a.Next())
	}
}
