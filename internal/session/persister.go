package session

import (
	"context"
	"sync"
)

// Persister stores the {accessToken, user} snapshot between process runs.
// Saving a zero Session removes the stored snapshot.
type Persister interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, snapshot Session) error
}

// MemoryPersister keeps the snapshot in memory. Used by tests and by callers
// that opt out of on-disk persistence.
type MemoryPersister struct {
	mu       sync.Mutex
	snapshot Session
	saves    int
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load(_ context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.clone(), nil
}

func (m *MemoryPersister) Save(_ context.Context, snapshot Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot.clone()
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
