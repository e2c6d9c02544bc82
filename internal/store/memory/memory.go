package memory

import (
	"context"
	"sync"

	"tally/internal/core"
	"tally/internal/store"
)

// Store is a mutex-guarded in-memory transaction store. Snapshot returns a
// copy, so readers never observe a partially applied mutation.
type Store struct {
	mu        sync.Mutex
	items     []core.Transaction
	index     map[string]int
	listeners []func()
}

func New() *Store {
	return &Store{index: make(map[string]int)}
}

func (s *Store) Add(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.index[tx.ID] = len(s.items)
	s.items = append(s.items, tx)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) Update(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	i, ok := s.index[tx.ID]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	s.items[i] = tx
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	return s.items[i], nil
}

// Snapshot returns a copy of all transactions in insertion order.
func (s *Store) Snapshot(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

// OnChange registers fn to run after every committed mutation.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := append(([]func())(nil), s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
