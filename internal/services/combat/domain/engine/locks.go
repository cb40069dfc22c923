package engine

import "sync"

// characterLocks hands out one mutex per character, dropping entries once
// no request holds or waits on them.
type characterLocks struct {
	mu    sync.Mutex
	locks map[string]*characterLock
}

type characterLock struct {
	mu   sync.Mutex
	refs int
}

func newCharacterLocks() *characterLocks {
	return &characterLocks{locks: make(map[string]*characterLock)}
}

func (l *characterLocks) lock(characterID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[characterID]
	if !ok {
		entry = &characterLock{}
		l.locks[characterID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, characterID)
		}
		l.mu.Unlock()
	}
}

func (l *characterLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
