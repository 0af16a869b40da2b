package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarters/internal/housing/models"
)

func TestCandidateRoomsOrderedByRemainingCapacity(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-a", models.GenderMale, 4)
	f.addRoom("room-b", models.GenderMale, 2)
	f.addRoom("room-c", models.GenderMale, 3)
	f.addRoom("room-f", models.GenderFemale, 5)

	f.addRegistrant("m1", models.GenderMale, 20, true)
	require.NoError(t, f.allocations.Commit(context.Background(), models.Allocation{
		RegistrantID: "m1", RoomID: "room-a", AllocatedAt: testNow, AllocatedBy: "system",
	}))

	candidates, err := f.registry.CandidateRooms(context.Background(), models.GenderMale, 1)
	require.NoError(t, err)

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.Room.ID)
	}
	// Near-full first: room-b rem 2, room-a rem 3, room-c rem 3 (ID break).
	assert.Equal(t, []string{"room-b", "room-a", "room-c"}, ids)
}

func TestCandidateRoomsFiltersByNeededSpace(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-a", models.GenderMale, 4)
	f.addRoom("room-b", models.GenderMale, 2)

	candidates, err := f.registry.CandidateRooms(context.Background(), models.GenderMale, 3)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "room-a", candidates[0].Room.ID)
}

func TestCandidateRoomsExcludesFullRooms(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-a", models.GenderMale, 1)
	f.addRegistrant("m1", models.GenderMale, 20, true)
	require.NoError(t, f.allocations.Commit(context.Background(), models.Allocation{
		RegistrantID: "m1", RoomID: "room-a", AllocatedAt: testNow, AllocatedBy: "system",
	}))

	candidates, err := f.registry.CandidateRooms(context.Background(), models.GenderMale, 1)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestRoomOccupancyIncludesFullRooms(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-a", models.GenderMale, 1)
	f.addRegistrant("m1", models.GenderMale, 20, true)
	require.NoError(t, f.allocations.Commit(context.Background(), models.Allocation{
		RegistrantID: "m1", RoomID: "room-a", AllocatedAt: testNow, AllocatedBy: "system",
	}))

	rooms, err := f.registry.RoomOccupancy(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].Occupancy)
	assert.Equal(t, 0, rooms[0].Remaining())
}
