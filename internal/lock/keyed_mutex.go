package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type keyedEntry struct {
	sem  chan struct{}
	refs int
}

// KeyedMutex is an in-process lock with one semaphore per key.
// Entries are removed once no goroutine holds or waits for them.
type KeyedMutex struct {
	mu          sync.Mutex
	entries     map[string]*keyedEntry
	waitTimeout time.Duration
}

func NewKeyedMutex(waitTimeout time.Duration) *KeyedMutex {
	return &KeyedMutex{
		entries:     make(map[string]*keyedEntry),
		waitTimeout: waitTimeout,
	}
}

// Acquire blocks until the key is free, ctx is done, or the wait timeout elapses
func (k *KeyedMutex) Acquire(ctx context.Context, key string) (Release, error) {
	entry := k.ref(key)

	waitCtx, cancel := context.WithTimeout(ctx, k.waitTimeout)
	defer cancel()

	select {
	case entry.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-entry.sem
				k.unref(key, entry)
			})
		}, nil
	case <-waitCtx.Done():
		k.unref(key, entry)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, ctx.Err())
		}
		return nil, fmt.Errorf("acquire %s: %w", key, ErrLockTimeout)
	}
}

// Len returns the number of keys currently held or waited on
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

func (k *KeyedMutex) ref(key string) *keyedEntry {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry, ok := k.entries[key]
	if !ok {
		entry = &keyedEntry{sem: make(chan struct{}, 1)}
		k.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (k *KeyedMutex) unref(key string, entry *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(k.entries, key)
	}
}
