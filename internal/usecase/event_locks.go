package usecase

import "sync"

// eventLocks serializes operations per event id. Mutations on one event take
// its write lock so add/update/delete never interleave; balance and finalize
// reads take the read lock and never observe a half-applied mutation.
// Operations on different events do not contend.
type eventLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func newEventLocks() *eventLocks {
	return &eventLocks{locks: make(map[string]*sync.RWMutex)}
}

func (l *eventLocks) get(eventID string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[eventID]
	if !ok {
		lock = &sync.RWMutex{}
		l.locks[eventID] = lock
	}

	return lock
}

// Lock acquires the write lock for an event and returns its release func.
func (l *eventLocks) Lock(eventID string) func() {
	lock := l.get(eventID)
	lock.Lock()

	return lock.Unlock
}

// RLock acquires the read lock for an event and returns its release func.
func (l *eventLocks) RLock(eventID string) func() {
	lock := l.get(eventID)
	lock.RLock()

	return lock.RUnlock
}

// Forget drops the lock for a deleted event. Callers must hold no lock on
// the event when calling.
func (l *eventLocks) Forget(eventID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.locks, eventID)
}
