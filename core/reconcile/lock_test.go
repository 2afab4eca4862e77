package reconcile

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_TryLock(t *testing.T) {
	l := NewLocker[uint]()

	unlock, ok := l.TryLock(1)
	require.True(t, ok)
	assert.True(t, l.Held(1))

	_, ok = l.TryLock(1)
	assert.False(t, ok, "second holder must be refused")

	other, ok := l.TryLock(2)
	require.True(t, ok, "unrelated keys never contend")
	other()

	unlock()
	unlock() // idempotent
	assert.False(t, l.Held(1))

	again, ok := l.TryLock(1)
	require.True(t, ok)
	again()
}

func TestLocker_SingleWinner(t *testing.T) {
	l := NewLocker[string]()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		start   = make(chan struct{})
		release = make(chan struct{})
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if unlock, ok := l.TryLock("srv"); ok {
				winners.Add(1)
				<-release
				unlock()
			}
		}()
	}

	close(start)
	// Losers return immediately; only the winner waits on release.
	for !l.Held("srv") {
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
