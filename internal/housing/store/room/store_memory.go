package room

import (
	"context"
	"sort"
	"sync"

	"quarters/internal/housing/models"
)

// MemoryStore holds rooms for tests and dev mode. Rooms are managed by an
// external collaborator; Put is the fixture entry point.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]models.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]models.Room)}
}

func (s *MemoryStore) Put(r models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = r
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.rooms[id]
	if !exists {
		return models.Room{}, models.ErrRoomNotFound
	}
	return r, nil
}

// List returns rooms filtered by gender (empty means all), ordered by ID.
func (s *MemoryStore) List(_ context.Context, gender models.Gender) ([]models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if gender != "" && r.Gender != gender {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
