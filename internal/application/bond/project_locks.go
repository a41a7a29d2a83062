package bond

import "sync"

// projectLocks serializes commands per project within this process.
// Multi-aggregate commands (invest touches project, ledger and accrual
// records) get a consistent view; cross-process races are still caught
// by optimistic locking in the repositories.
type projectLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newProjectLocks() *projectLocks {
	return &projectLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire returns the mutex for the given key, creating it on first use.
// Locks are never removed; the set of live projects is small.
func (p *projectLocks) acquire(key string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	p.locks[key] = l
	return l
}
