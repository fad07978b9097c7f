package solution

import "sync"

// locker serializes turns per user
type locker struct {
	mux   sync.Mutex
	users map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func (l *locker) lock(userID string) func() {
	l.mux.Lock()
	ul, ok := l.users[userID]
	if !ok {
		ul = &userLock{}
		l.users[userID] = ul
	}
	ul.refs++
	l.mux.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()
		l.mux.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.users, userID)
		}
		l.mux.Unlock()
	}
}

func newLocker() *locker {
	return &locker{users: map[string]*userLock{}}
}
