package testfixtures

import (
	"context"
	"sync"

	"github.com/example/workshop-planner/internal/persistence"
	"github.com/example/workshop-planner/internal/persistence/memory"
)

// FaultyStore wraps a key-value store and fails selected operations. The
// zero value of each error field lets the call through.
type FaultyStore struct {
	Inner persistence.KeyValueStore

	mu        sync.Mutex
	getErr    error
	setErr    error
	deleteErr error
	keysErr   error
	sets      int
}

// NewFaultyStore wraps a fresh in-memory store.
func NewFaultyStore() *FaultyStore {
	return &FaultyStore{Inner: memory.New()}
}

// FailGets makes every Get return err. A nil err clears the fault.
func (s *FaultyStore) FailGets(err error) {
	s.mu.Lock()
	s.getErr = err
	s.mu.Unlock()
}

// FailSets makes every Set return err.
func (s *FaultyStore) FailSets(err error) {
	s.mu.Lock()
	s.setErr = err
	s.mu.Unlock()
}

// FailDeletes makes every Delete return err.
func (s *FaultyStore) FailDeletes(err error) {
	s.mu.Lock()
	s.deleteErr = err
	s.mu.Unlock()
}

// FailKeys makes every Keys return err.
func (s *FaultyStore) FailKeys(err error) {
	s.mu.Lock()
	s.keysErr = err
	s.mu.Unlock()
}

// Sets reports how many Set calls reached the store, failed ones included.
func (s *FaultyStore) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

func (s *FaultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Inner.Get(ctx, key)
}

func (s *FaultyStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.sets++
	err := s.setErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Inner.Set(ctx, key, value)
}

func (s *FaultyStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	err := s.deleteErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Inner.Delete(ctx, key)
}

func (s *FaultyStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	err := s.keysErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Inner.Keys(ctx, prefix)
}
