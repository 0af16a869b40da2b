package registrant

import (
	"context"
	"sort"
	"sync"
	"time"

	"quarters/internal/housing/models"
)

// MemoryStore holds registrants for tests and dev mode. Registrants are
// managed by the external registration subsystem; Put exists so fixtures and
// dev seeding have a way in.
type MemoryStore struct {
	mu          sync.RWMutex
	registrants map[string]models.Registrant
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{registrants: make(map[string]models.Registrant)}
}

func (s *MemoryStore) Put(r models.Registrant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrants[r.ID] = r
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Registrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.registrants[id]
	if !exists {
		return models.Registrant{}, models.ErrRegistrantNotFound
	}
	return r, nil
}

// List filters by gender (empty means all) and optionally by verification
// state, ordered by registration time then ID for determinism.
func (s *MemoryStore) List(_ context.Context, gender models.Gender, verifiedOnly bool) ([]models.Registrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Registrant, 0, len(s.registrants))
	for _, r := range s.registrants {
		if gender != "" && r.Gender != gender {
			continue
		}
		if verifiedOnly && !r.Verified {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.Before(out[j].RegisteredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) SetVerified(_ context.Context, id string, verified bool, at time.Time, by string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.registrants[id]
	if !exists {
		return models.ErrRegistrantNotFound
	}
	r.Verified = verified
	if verified {
		r.UnverifiedAt = nil
		r.UnverifiedBy = ""
	} else {
		at := at
		r.UnverifiedAt = &at
		r.UnverifiedBy = by
	}
	s.registrants[id] = r
	return nil
}
