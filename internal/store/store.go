// Package store implements the in-memory keyed product record store.
package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/fairyhunter13/product-catalogue-service/internal/model"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no product exists for the given ID.
var ErrNotFound = errors.New("product not found")

type Store struct {
	mu sync.RWMutex
	m  map[string]model.Product
}

func New() *Store {
	return &Store{m: make(map[string]model.Product)}
}

// Create inserts a new product under a freshly generated UUID and returns it.
func (s *Store) Create(name, description string) model.Product {
	p := model.Product{ID: uuid.NewString(), Name: name, Description: description}
	s.mu.Lock()
	s.m[p.ID] = p
	s.mu.Unlock()
	return p
}

func (s *Store) Get(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	return p, ok
}

// Update replaces the name and description of an existing product.
func (s *Store) Update(id, name, description string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return model.Product{}, ErrNotFound
	}
	p.Name = name
	p.Description = description
	s.m[id] = p
	return p, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return ErrNotFound
	}
	delete(s.m, id)
	return nil
}

// List returns all products ordered by ID for stable output.
func (s *Store) List() []model.Product {
	s.mu.RLock()
	out := make([]model.Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListProductIDs returns the IDs of all known products. It satisfies the
// aggregator's directory contract; the in-memory store cannot fail, so the
// error is always nil.
func (s *Store) ListProductIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.m))
	for id := range s.m {
		ids = append(ids, id)
	}
	return ids, nil
}
