// Package lock provides per-player locking for rating settlement. A match
// settlement reads and writes both participants' ratings; holding both
// players' locks keeps concurrent settlements from interleaving their
// read-modify-write cycles.
package lock

import (
	"sync"
)

// playerMutex wraps a mutex with reference counting for reuse.
type playerMutex struct {
	mu       sync.Mutex
	refCount int
}

// PlayerLock provides independent per-player locks: locking one player
// never blocks operations on another.
type PlayerLock struct {
	locks sync.Map // map[int64]*playerMutex
	pool  sync.Pool
}

// NewPlayerLock creates a new PlayerLock instance.
func NewPlayerLock() *PlayerLock {
	return &PlayerLock{
		pool: sync.Pool{
			New: func() any {
				return &playerMutex{}
			},
		},
	}
}

// getLock retrieves or creates the mutex for a player ID.
func (pl *PlayerLock) getLock(playerID int64) *playerMutex {
	if v, ok := pl.locks.Load(playerID); ok {
		return v.(*playerMutex)
	}

	newLock := pl.pool.Get().(*playerMutex)
	newLock.refCount = 0

	actual, loaded := pl.locks.LoadOrStore(playerID, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool.
		pl.pool.Put(newLock)
	}
	return actual.(*playerMutex)
}

// Lock acquires the lock for a player.
func (pl *PlayerLock) Lock(playerID int64) {
	lock := pl.getLock(playerID)
	lock.mu.Lock()
	lock.refCount++
}

// Unlock releases the lock for a player.
func (pl *PlayerLock) Unlock(playerID int64) {
	if v, ok := pl.locks.Load(playerID); ok {
		lock := v.(*playerMutex)
		lock.refCount--
		lock.mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (pl *PlayerLock) TryLock(playerID int64) bool {
	lock := pl.getLock(playerID)
	if lock.mu.TryLock() {
		lock.refCount++
		return true
	}
	return false
}

// WithLock executes fn while holding one player's lock.
func (pl *PlayerLock) WithLock(playerID int64, fn func() error) error {
	pl.Lock(playerID)
	defer pl.Unlock(playerID)
	return fn()
}

// WithPairLock executes fn while holding both players' locks. Locks are
// always acquired in ascending ID order, so two settlements touching the
// same pair cannot deadlock.
func (pl *PlayerLock) WithPairLock(a, b int64, fn func() error) error {
	if a == b {
		return pl.WithLock(a, fn)
	}
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	pl.Lock(first)
	defer pl.Unlock(first)
	pl.Lock(second)
	defer pl.Unlock(second)
	return fn()
}
