package service

import (
	"sync"
	"testing"
	"time"
)

// TestKeyLockMutualExclusion 测试同键互斥.
func TestKeyLockMutualExclusion(t *testing.T) {
	kl := newKeyLock()

	var (
		wg      sync.WaitGroup
		counter int
	)

	const workers = 32

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			kl.Lock("same")
			defer kl.Unlock("same")

			counter++
		}()
	}

	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

// TestKeyLockIndependentKeys 测试不同键互不阻塞.
func TestKeyLockIndependentKeys(t *testing.T) {
	kl := newKeyLock()

	kl.Lock("a")
	defer kl.Unlock("a")

	done := make(chan struct{})

	go func() {
		kl.Lock("b")
		kl.Unlock("b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on independent key should not block")
	}
}

// TestKeyLockEntryReclaim 测试无引用时回收锁条目.
func TestKeyLockEntryReclaim(t *testing.T) {
	kl := newKeyLock()

	kl.Lock("x")
	kl.Unlock("x")

	kl.mu.Lock()
	n := len(kl.locks)
	kl.mu.Unlock()

	if n != 0 {
		t.Errorf("lock table should be empty, has %d entries", n)
	}
}
