package locks

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyed_SerializesSameKey(t *testing.T) {
	k := NewKeyed()
	key := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.Lock(key)
			defer k.Unlock(key)
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestKeyed_IndependentKeysDoNotBlock(t *testing.T) {
	k := NewKeyed()
	a, b := uuid.New(), uuid.New()

	k.Lock(a)
	done := make(chan struct{})
	go func() {
		k.Lock(b)
		k.Unlock(b)
		close(done)
	}()
	<-done // would deadlock if b waited on a
	k.Unlock(a)
}

func TestKeyed_EntryDroppedWhenUnused(t *testing.T) {
	k := NewKeyed()
	key := uuid.New()
	k.Lock(key)
	k.Unlock(key)

	k.mu.Lock()
	_, ok := k.locks[key]
	k.mu.Unlock()
	assert.False(t, ok)
}
