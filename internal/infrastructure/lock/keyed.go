package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// KeyedLocker serializes work per room inside one process. Locks for
// different rooms never contend.
type KeyedLocker struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLocker creates a new KeyedLocker
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{slots: make(map[uuid.UUID]*slot)}
}

// Lock blocks until the room is free or ctx is done
func (l *KeyedLocker) Lock(ctx context.Context, roomID uuid.UUID) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[roomID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[roomID] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(roomID, s, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(roomID, s, true) })
	}, nil
}

func (l *KeyedLocker) release(roomID uuid.UUID, s *slot, held bool) {
	if held {
		<-s.ch
	}
	l.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, roomID)
	}
	l.mu.Unlock()
}

// Len returns the number of rooms currently locked or awaited
func (l *KeyedLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
