package service

import (
	"context"
	"fmt"
	"sort"

	"quarters/internal/housing/models"
)

// RoomRegistry answers candidate-room queries against live occupancy. It is
// side-effect free; commit-time re-checks in the store are what actually
// guard capacity.
type RoomRegistry struct {
	rooms       RoomDirectory
	allocations AllocationStore
}

func NewRoomRegistry(rooms RoomDirectory, allocations AllocationStore) *RoomRegistry {
	return &RoomRegistry{rooms: rooms, allocations: allocations}
}

// CandidateRooms returns rooms of the given gender with remaining capacity
// of at least neededSpace, ordered by ascending remaining capacity (best
// fit: near-full rooms first) with room ID as tie-break.
func (r *RoomRegistry) CandidateRooms(ctx context.Context, gender models.Gender, neededSpace int) ([]models.CandidateRoom, error) {
	if neededSpace < 1 {
		neededSpace = 1
	}

	rooms, err := r.rooms.List(ctx, gender)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	occupancy, err := r.allocations.OccupancyByRoom(ctx)
	if err != nil {
		return nil, fmt.Errorf("occupancy: %w", err)
	}

	candidates := make([]models.CandidateRoom, 0, len(rooms))
	for _, room := range rooms {
		c := models.CandidateRoom{Room: room, Occupancy: occupancy[room.ID]}
		if c.Remaining() >= neededSpace {
			candidates = append(candidates, c)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Remaining() != candidates[j].Remaining() {
			return candidates[i].Remaining() < candidates[j].Remaining()
		}
		return candidates[i].Room.ID < candidates[j].Room.ID
	})
	return candidates, nil
}

// RoomOccupancy pairs every room of the given gender scope with its derived
// occupancy, for the admin read views.
func (r *RoomRegistry) RoomOccupancy(ctx context.Context, gender models.Gender) ([]models.CandidateRoom, error) {
	rooms, err := r.rooms.List(ctx, gender)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	occupancy, err := r.allocations.OccupancyByRoom(ctx)
	if err != nil {
		return nil, fmt.Errorf("occupancy: %w", err)
	}

	out := make([]models.CandidateRoom, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, models.CandidateRoom{Room: room, Occupancy: occupancy[room.ID]})
	}
	return out, nil
}
