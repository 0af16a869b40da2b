package allocation

import (
	"context"
	"sort"
	"sync"

	"quarters/internal/housing/models"
)

// RoomLookup supplies room capacity at commit time. The memory store holds
// no room state of its own; capacity stays authoritative in one place.
type RoomLookup interface {
	Get(ctx context.Context, id string) (models.Room, error)
}

// MemoryStore is the in-memory allocation ledger used in tests and dev mode.
// A single mutex makes each commit's capacity and uniqueness re-check atomic.
type MemoryStore struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	rooms RoomLookup

	byRegistrant map[string]models.Allocation
	byRoom       map[string]map[string]struct{}
}

func NewMemoryStore(rooms RoomLookup) *MemoryStore {
	return &MemoryStore{
		rooms:        rooms,
		byRegistrant: make(map[string]models.Allocation),
		byRoom:       make(map[string]map[string]struct{}),
	}
}

// Commit inserts the allocation after re-checking uniqueness and capacity
// under the store lock. Candidate selection is advisory; this is the
// authoritative check.
func (s *MemoryStore) Commit(ctx context.Context, alloc models.Allocation) error {
	room, err := s.rooms.Get(ctx, alloc.RoomID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byRegistrant[alloc.RegistrantID]; exists {
		return models.ErrAlreadyAllocated
	}
	if len(s.byRoom[alloc.RoomID]) >= room.Capacity {
		return models.ErrRoomFull
	}

	s.byRegistrant[alloc.RegistrantID] = alloc
	if s.byRoom[alloc.RoomID] == nil {
		s.byRoom[alloc.RoomID] = make(map[string]struct{})
	}
	s.byRoom[alloc.RoomID][alloc.RegistrantID] = struct{}{}
	return nil
}

// Remove deletes the registrant's allocation if present. Removing an absent
// allocation is a no-op, not an error.
func (s *MemoryStore) Remove(_ context.Context, registrantID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alloc, exists := s.byRegistrant[registrantID]
	if !exists {
		return false, nil
	}
	delete(s.byRegistrant, registrantID)
	delete(s.byRoom[alloc.RoomID], registrantID)
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, registrantID string) (*models.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if alloc, exists := s.byRegistrant[registrantID]; exists {
		copied := alloc
		return &copied, nil
	}
	return nil, nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Allocation, 0, len(s.byRegistrant))
	for _, alloc := range s.byRegistrant {
		out = append(out, alloc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegistrantID < out[j].RegistrantID })
	return out, nil
}

func (s *MemoryStore) ListByRoom(_ context.Context, roomID string) ([]models.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Allocation, 0, len(s.byRoom[roomID]))
	for registrantID := range s.byRoom[roomID] {
		out = append(out, s.byRegistrant[registrantID])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegistrantID < out[j].RegistrantID })
	return out, nil
}

// OccupancyByRoom derives live occupancy from the ledger.
func (s *MemoryStore) OccupancyByRoom(_ context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(s.byRoom))
	for roomID, members := range s.byRoom {
		out[roomID] = len(members)
	}
	return out, nil
}

// WithTx serializes multi-step operations (the unverify cascade) against each
// other. Individual ledger operations remain atomic via the store lock.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}
