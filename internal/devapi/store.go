// Package devapi is a reference implementation of the clinic REST API: one
// JSON collection per resource under /api/{resource}, guarded by a bearer
// token. It backs local development and end-to-end tests of the dashboard.
package devapi

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/clinica/dashboard/internal/resource"
	"github.com/clinica/dashboard/pkg/pagination"
)

var ErrNotFound = errors.New("record not found")

// Store persists records per resource. List returns records in insertion
// order. Create assigns the id.
type Store interface {
	List(ctx context.Context, res string, page pagination.Params) ([]resource.Record, error)
	Get(ctx context.Context, res, id string) (resource.Record, error)
	Create(ctx context.Context, res string, rec resource.Record) (resource.Record, error)
	Update(ctx context.Context, res, id string, rec resource.Record) (resource.Record, error)
	Delete(ctx context.Context, res, id string) error
	Ping(ctx context.Context) error
}

type collection struct {
	order []string
	byID  map[string]resource.Record
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*collection)}
}

func (s *MemoryStore) coll(res string) *collection {
	c, ok := s.collections[res]
	if !ok {
		c = &collection{byID: make(map[string]resource.Record)}
		s.collections[res] = c
	}
	return c
}

func (s *MemoryStore) List(_ context.Context, res string, page pagination.Params) ([]resource.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[res]
	if !ok {
		return []resource.Record{}, nil
	}
	ids := pagination.Apply(page, c.order)
	out := make([]resource.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.byID[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, res, id string) (resource.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[res]
	if !ok {
		return nil, ErrNotFound
	}
	rec, ok := c.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, res string, rec resource.Record) (resource.Record, error) {
	stored := rec.Clone()
	if stored == nil {
		stored = resource.Record{}
	}
	id := uuid.NewString()
	stored["id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(res)
	c.order = append(c.order, id)
	c.byID[id] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, res, id string, rec resource.Record) (resource.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[res]
	if !ok {
		return nil, ErrNotFound
	}
	if _, ok := c.byID[id]; !ok {
		return nil, ErrNotFound
	}
	stored := rec.Clone()
	if stored == nil {
		stored = resource.Record{}
	}
	stored["id"] = id
	c.byID[id] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, res, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[res]
	if !ok {
		return ErrNotFound
	}
	if _, ok := c.byID[id]; !ok {
		return ErrNotFound
	}
	delete(c.byID, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
