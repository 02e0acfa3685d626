package kvstore

import "sync"

// tenantLocks hands out one mutex per tenant. Entries are reference counted
// and dropped when the last holder releases them.
type tenantLocks struct {
	mu    sync.Mutex
	locks map[string]*tenantLock
}

type tenantLock struct {
	mu   sync.Mutex
	refs int
}

func newTenantLocks() *tenantLocks {
	return &tenantLocks{locks: make(map[string]*tenantLock)}
}

// lock blocks until the tenant's mutex is held and returns its release func.
func (l *tenantLocks) lock(tenant string) func() {
	l.mu.Lock()
	tl, ok := l.locks[tenant]
	if !ok {
		tl = &tenantLock{}
		l.locks[tenant] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.mu.Lock()
	return func() {
		tl.mu.Unlock()

		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, tenant)
		}
		l.mu.Unlock()
	}
}

// size reports how many tenants currently have a lock entry.
func (l *tenantLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
