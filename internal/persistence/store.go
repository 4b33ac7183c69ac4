package persistence

import (
	"context"
	"sync"
)

// Slot names one of the two persisted strings.
type Slot string

const (
	AccessTokenSlot  Slot = "token"
	RefreshTokenSlot Slot = "refreshToken"
)

// Slots lists every slot a store holds.
var Slots = []Slot{AccessTokenSlot, RefreshTokenSlot}

// SessionStore is durable key/value storage for the token pair. A missing
// slot reads as the empty string.
type SessionStore interface {
	Get(ctx context.Context, slot Slot) (string, error)
	Set(ctx context.Context, slot Slot, value string) error
	Delete(ctx context.Context, slots ...Slot) error
}

// MemoryStore keeps slots in process memory. Used for tests and for
// sessions that should not outlive the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[Slot]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Slot]string)}
}

func (s *MemoryStore) Get(_ context.Context, slot Slot) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[slot], nil
}

func (s *MemoryStore) Set(_ context.Context, slot Slot, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[slot] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, slots ...Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range slots {
		delete(s.values, slot)
	}
	return nil
}
