package locks

import (
	"sync"

	"github.com/google/uuid"
)

// Keyed serializes work per key. Allocation writes take the employee's lock
// for the whole validate-then-persist transaction, so two concurrent writes
// cannot both read a sub-100% total and jointly overstaff the employee.
type Keyed struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{locks: map[uuid.UUID]*entry{}}
}

// Lock acquires the mutex for key, blocking until it is free.
func (k *Keyed) Lock(key uuid.UUID) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key and drops the entry once unused.
func (k *Keyed) Unlock(key uuid.UUID) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
	}
	k.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
