package policy

import (
	"context"
	"sync"
)

// MemoryStore keeps the setting in process. Used when redis is not
// configured, and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	ageGap int
}

func NewMemoryStore(defaultAgeGap int) *MemoryStore {
	return &MemoryStore{ageGap: defaultAgeGap}
}

func (s *MemoryStore) AgeGap(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ageGap, nil
}

func (s *MemoryStore) SetAgeGap(_ context.Context, years int) error {
	if err := validateAgeGap(years); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ageGap = years
	return nil
}
