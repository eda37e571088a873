package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/equitytax/tax-calculator/internal/domain"
)

// MemoryStore keeps returns in a map. Used by tests and the default server mode.
type MemoryStore struct {
	mu      sync.RWMutex
	returns map[string]*domain.TaxReturn
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{returns: make(map[string]*domain.TaxReturn)}
}

func (m *MemoryStore) Save(_ context.Context, r *domain.TaxReturn) error {
	if r.ID == "" {
		return errors.New("save tax return: missing id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, other := range m.returns {
		if id != r.ID && other.UserID == r.UserID && other.TaxYear == r.TaxYear {
			return fmt.Errorf("save tax return %s: %w", r.ID, ErrDuplicate)
		}
	}
	m.returns[r.ID] = clone(r)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*domain.TaxReturn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.returns[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

func (m *MemoryStore) FindByUserAndYear(_ context.Context, userID string, taxYear int) (*domain.TaxReturn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.returns {
		if r.UserID == userID && r.TaxYear == taxYear {
			return clone(r), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) List(_ context.Context, f Filter) ([]*domain.TaxReturn, error) {
	m.mu.RLock()
	out := make([]*domain.TaxReturn, 0, len(m.returns))
	for _, r := range m.returns {
		if f.matches(r) {
			out = append(out, clone(r))
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.returns[id]; !ok {
		return ErrNotFound
	}
	delete(m.returns, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
