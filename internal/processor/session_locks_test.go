package processor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionLocksSameSessionSameMutex(t *testing.T) {
	locks := newSessionLocks()
	assert.Same(t, locks.get(1), locks.get(1))
	assert.NotSame(t, locks.get(1), locks.get(2))
}

func TestSessionLocksSerializeWithinSession(t *testing.T) {
	locks := newSessionLocks()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock := locks.get(7)
			lock.Lock()
			counter++
			lock.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}
