package processor

import "sync"

// sessionLocks hands out one mutex per session id, so risk events within a
// session are scored and rolled up in arrival order while different sessions
// proceed fully in parallel. A global lock here would needlessly serialize
// unrelated sessions.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *sessionLocks) get(sessionID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[sessionID] = lock
	}
	return lock
}
