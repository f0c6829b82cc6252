package pool

import (
	"context"
	"sync"
)

// OwnerLocker grants exclusive access to one owner's pools. A busy owner makes
// Lock wait, never fail fast.
type OwnerLocker interface {
	Lock(ctx context.Context, ownerID string) (func(), error)
}

// KeyedLocker is the in-process OwnerLocker.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedLock)}
}

func (l *KeyedLocker) Lock(ctx context.Context, ownerID string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[ownerID]
	if !ok {
		kl = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[ownerID] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(ownerID, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(ownerID, kl)
		})
	}, nil
}

func (l *KeyedLocker) release(ownerID string, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, ownerID)
	}
}
