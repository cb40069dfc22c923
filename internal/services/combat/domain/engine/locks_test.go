package engine

import (
	"sync"
	"testing"
	"time"
)

func TestCharacterLocksSerializeSameCharacter(t *testing.T) {
	locks := newCharacterLocks()
	unlock := locks.lock("a")

	acquired := make(chan struct{})
	go func() {
		release := locks.lock("a")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}

func TestCharacterLocksIndependentCharacters(t *testing.T) {
	locks := newCharacterLocks()
	unlockA := locks.lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		locks.lock("b")()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked by a")
	}
}

func TestCharacterLocksReleaseEntries(t *testing.T) {
	locks := newCharacterLocks()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.lock("a")()
		}()
	}
	wg.Wait()
	if locks.size() != 0 {
		t.Fatalf("size = %d, want 0", locks.size())
	}
}
