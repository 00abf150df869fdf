package reconcile

import "sync"

// accountLocks serializes merges per account. Different accounts never
// contend.
type accountLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[int64]*sync.Mutex)}
}

// lock blocks until the account is free and returns its unlock func.
func (a *accountLocks) lock(accountID int64) func() {
	a.mu.Lock()
	l, ok := a.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[accountID] = l
	}
	a.mu.Unlock()

	l.Lock()
	return l.Unlock
}
