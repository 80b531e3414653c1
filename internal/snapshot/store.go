// Package snapshot stores the most recent aggregated offers mapping.
package snapshot

import (
	"sync"

	"github.com/fairyhunter13/product-catalogue-service/internal/model"
)

// Store holds the latest complete offers snapshot. The aggregator is the
// only writer; replacement is wholesale, so readers observe either the full
// old mapping or the full new one, never a mix.
type Store struct {
	mu   sync.RWMutex
	snap model.Snapshot
}

func New() *Store {
	return &Store{snap: model.Snapshot{}}
}

// Replace installs a fully built snapshot. The installed map must not be
// mutated afterwards.
func (s *Store) Replace(snap model.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Current returns the latest committed snapshot. The initial snapshot is
// empty until a first aggregation cycle completes.
func (s *Store) Current() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
