package keylock_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/agentrpg/internal/keylock"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	l := keylock.New()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("session-1")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.Len(), "entries must be released once idle")
}

func TestLocker_LockAll_Overlapping(t *testing.T) {
	l := keylock.New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.LockAll([]string{"a", "b", "c"})()
		}()
		go func() {
			defer wg.Done()
			l.LockAll([]string{"c", "a", "a"})()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, l.Len())
}

// Property: any set of keys can be locked and released, leaving no residue.
func TestProperty_LockAllReleases(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		keys := rapid.SliceOf(rapid.StringMatching(`[a-e]`)).Draw(rt, "keys")
		l := keylock.New()
		l.LockAll(keys)()
		if l.Len() != 0 {
			rt.Fatalf("Len = %d after release", l.Len())
		}
	})
}
