package nthm

import "sync"

// syncState implements the shutdown relay race (spec.md §5): Sync blocks
// until every goroutine this Runtime has ever spawned has finished. Rather
// than a sync.WaitGroup, each finishing goroutine joins every goroutine
// that queued ahead of it before declaring itself done, then releases the
// next - a chain of one-shot channels standing in for the pthread_join
// chain the original describes, with whichever goroutine empties the
// active count last waking anyone parked in Sync.
type syncState struct {
	mu     sync.Mutex
	cond   *sync.Cond
	active int
	queue  []chan struct{}
}

func newSyncState() *syncState {
	s := &syncState{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// beforeSpawn registers one more goroutine as active. Called before the
// goroutine is actually started, so Sync can never race a spawn that
// hasn't registered yet.
func (s *syncState) beforeSpawn() {
	s.mu.Lock()
	s.active++
	s.mu.Unlock()
}

// done is the deferred call in every spawned goroutine's body. It enqueues
// its own release channel, waits for every goroutine that enqueued ahead
// of it to finish, releases its own waiters, and - if it is the last
// active goroutine - wakes anyone parked in synchronize.
func (s *syncState) done() {
	s.mu.Lock()
	own := make(chan struct{})
	prev := append([]chan struct{}(nil), s.queue...)
	s.queue = append(s.queue, own)
	s.mu.Unlock()

	for _, ch := range prev {
		<-ch
	}
	close(own)

	s.mu.Lock()
	s.active--
	last := s.active == 0
	s.mu.Unlock()

	if last {
		s.mu.Lock()
		s.queue = nil
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}

// synchronize blocks until active reaches zero.
func (s *syncState) synchronize() {
	s.mu.Lock()
	for s.active > 0 {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

// outstanding reports the number of goroutines registered but not yet
// done, for Stats.
func (s *syncState) outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
