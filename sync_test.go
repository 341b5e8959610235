package nthm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncState_SynchronizeReturnsImmediatelyWhenIdle(t *testing.T) {
	s := newSyncState()
	done := make(chan struct{})
	go func() {
		s.synchronize()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal(`synchronize should return immediately with no active goroutines`)
	}
}

func TestSyncState_WaitsForOutstanding(t *testing.T) {
	s := newSyncState()
	s.beforeSpawn()
	assert.Equal(t, 1, s.outstanding())

	doneSync := make(chan struct{})
	go func() {
		s.synchronize()
		close(doneSync)
	}()

	select {
	case <-doneSync:
		t.Fatal(`synchronize returned before the outstanding goroutine finished`)
	case <-time.After(50 * time.Millisecond):
	}

	go s.done()

	select {
	case <-doneSync:
	case <-time.After(time.Second):
		t.Fatal(`synchronize never returned`)
	}
	assert.Equal(t, 0, s.outstanding())
}

func TestSyncState_RelayChainWaitsForAllFinishers(t *testing.T) {
	s := newSyncState()
	const n = 5
	order := make(chan int, n)
	release := make([]chan struct{}, n)
	for i := range release {
		release[i] = make(chan struct{})
	}

	for i := 0; i < n; i++ {
		i := i
		s.beforeSpawn()
		go func() {
			<-release[i]
			order <- i
			s.done()
		}()
	}

	for i := 0; i < n; i++ {
		close(release[i])
	}

	s.synchronize()
	require.Len(t, order, n)
}
