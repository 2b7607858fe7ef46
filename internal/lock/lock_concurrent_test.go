package lock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestConcurrentLockers_OnlyOneHolderAtATime(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping concurrency test in short mode")
	}

	repoPath := t.TempDir()
	const workers = 5

	var holders, maxHolders, successes int32
	done := make(chan struct{}, workers)

	for i := 0; i < workers; i++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()

			locker, err := New(repoPath)
			if err != nil {
				t.Errorf("worker %d: New returned error: %v", id, err)
				return
			}

			if err := locker.Acquire(); err != nil {
				// Losing the race is expected.
				return
			}
			atomic.AddInt32(&successes, 1)

			current := atomic.AddInt32(&holders, 1)
			for {
				seen := atomic.LoadInt32(&maxHolders)
				if current <= seen || atomic.CompareAndSwapInt32(&maxHolders, seen, current) {
					break
				}
			}

			time.Sleep(50 * time.Millisecond)
			atomic.AddInt32(&holders, -1)

			if err := locker.Release(); err != nil {
				t.Errorf("worker %d: Release returned error: %v", id, err)
			}
		}(i)
	}

	for i := 0; i < workers; i++ {
		<-done
	}

	if successes < 1 {
		t.Error("expected at least one worker to acquire the lock")
	}
	if maxHolders > 1 {
		t.Errorf("expected at most one concurrent holder, saw %d", maxHolders)
	}
}
