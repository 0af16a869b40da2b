package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarters/internal/housing/models"
	"quarters/pkg/requestcontext"
)

func TestAllocateByAgePlacesGroupsBestFit(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-2", models.GenderMale, 2)
	f.addRoom("room-3", models.GenderMale, 3)
	f.addRegistrant("r14", models.GenderMale, 14, true)
	f.addRegistrant("r15", models.GenderMale, 15, true)
	f.addRegistrant("r16", models.GenderMale, 16, true)
	f.addRegistrant("r25", models.GenderMale, 25, true)

	result, err := f.allocator.AllocateByAge(context.Background(), models.GenderMale, models.AllocationPolicy{MaxAgeGap: 5})
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalAllocated)
	assert.Empty(t, result.Unallocated)

	// The group of three best-fits the capacity-3 room; the lone 25-year-old
	// cannot share it without stretching the gap, so he lands in the other.
	for _, id := range []string{"r14", "r15", "r16"} {
		assert.Equal(t, "room-3", f.roomOf(t, result, id))
	}
	assert.Equal(t, "room-2", f.roomOf(t, result, "r25"))
}

func TestAllocateByAgeSplitsGroupAcrossRooms(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-2", models.GenderMale, 2)
	f.addRoom("room-3", models.GenderMale, 3)

	// Two occupants already hold the capacity-3 room, leaving one slot.
	for _, id := range []string{"occ1", "occ2"} {
		f.addRegistrant(id, models.GenderMale, 15, true)
		require.NoError(t, f.allocations.Commit(context.Background(), models.Allocation{
			RegistrantID: id, RoomID: "room-3", AllocatedAt: testNow, AllocatedBy: "system",
		}))
	}

	f.addRegistrant("r14", models.GenderMale, 14, true)
	f.addRegistrant("r15", models.GenderMale, 15, true)
	f.addRegistrant("r16", models.GenderMale, 16, true)

	result, err := f.allocator.AllocateByAge(context.Background(), models.GenderMale, models.AllocationPolicy{MaxAgeGap: 5})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalAllocated)
	assert.Empty(t, result.Unallocated)

	occupancy, err := f.allocations.OccupancyByRoom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, occupancy["room-3"])
	assert.Equal(t, 2, occupancy["room-2"])
}

func TestAllocateByAgeKeepsRoomSpreadAcrossGroups(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-big", models.GenderMale, 4)
	f.addRegistrant("r14", models.GenderMale, 14, true)
	f.addRegistrant("r15", models.GenderMale, 15, true)
	f.addRegistrant("r30", models.GenderMale, 30, true)
	f.addRegistrant("r31", models.GenderMale, 31, true)

	result, err := f.allocator.AllocateByAge(context.Background(), models.GenderMale, models.AllocationPolicy{MaxAgeGap: 5})
	require.NoError(t, err)

	// The big room has space for everyone, but mixing the two groups would
	// put a 16-year spread in one room. The second group stays out.
	assert.Equal(t, 2, result.TotalAllocated)
	assert.ElementsMatch(t, []string{"r30", "r31"}, result.Unallocated)
	assert.Equal(t, "room-big", f.roomOf(t, result, "r14"))
	assert.Equal(t, "room-big", f.roomOf(t, result, "r15"))
}

func TestAllocateByAgeSkipsUnverifiedAndAllocated(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-3", models.GenderMale, 3)
	f.addRegistrant("verified", models.GenderMale, 20, true)
	f.addRegistrant("unverified", models.GenderMale, 20, false)
	taken := f.addRegistrant("taken", models.GenderMale, 20, true)
	require.NoError(t, f.allocations.Commit(context.Background(), models.Allocation{
		RegistrantID: taken.ID, RoomID: "room-3", AllocatedAt: testNow, AllocatedBy: "system",
	}))

	result, err := f.allocator.AllocateByAge(context.Background(), models.GenderMale, models.AllocationPolicy{MaxAgeGap: 5})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalAllocated)
	assert.Equal(t, "verified", result.Placements[0].RegistrantID)
	assert.Empty(t, result.Unallocated)
}

func TestAllocateByAgeCoversBothGendersWhenUnscoped(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-m", models.GenderMale, 2)
	f.addRoom("room-f", models.GenderFemale, 2)
	f.addRegistrant("m1", models.GenderMale, 20, true)
	f.addRegistrant("f1", models.GenderFemale, 20, true)

	result, err := f.allocator.AllocateByAge(context.Background(), "", models.AllocationPolicy{MaxAgeGap: 5})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalAllocated)
	assert.Equal(t, "room-m", f.roomOf(t, result, "m1"))
	assert.Equal(t, "room-f", f.roomOf(t, result, "f1"))
}

func TestAllocateByAgeRejectsInvalidGap(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.allocator.AllocateByAge(context.Background(), "", models.AllocationPolicy{MaxAgeGap: 0})
	assert.ErrorIs(t, err, models.ErrInvalidAgeGap)

	_, err = f.allocator.AllocateByAge(context.Background(), "", models.AllocationPolicy{MaxAgeGap: 21})
	assert.ErrorIs(t, err, models.ErrInvalidAgeGap)
}

func TestAllocateRandomFillsCapacity(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-a", models.GenderFemale, 2)
	// Random mode ignores explicit room age bounds.
	f.addBoundedRoom("room-b", models.GenderFemale, 3, 10, 12)

	ids := []string{"f1", "f2", "f3", "f4", "f5"}
	for _, id := range ids {
		f.addRegistrant(id, models.GenderFemale, 20, true)
	}

	result, err := f.allocator.AllocateRandom(context.Background(), models.GenderFemale)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalAllocated)
	assert.Empty(t, result.Unallocated)

	occupancy, err := f.allocations.OccupancyByRoom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, occupancy["room-a"])
	assert.Equal(t, 3, occupancy["room-b"])
}

func TestAllocateRandomReportsOverflow(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-a", models.GenderMale, 2)
	for _, id := range []string{"m1", "m2", "m3"} {
		f.addRegistrant(id, models.GenderMale, 20, true)
	}

	result, err := f.allocator.AllocateRandom(context.Background(), models.GenderMale)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalAllocated)
	assert.Len(t, result.Unallocated, 1)
}

func TestAllocateRandomNeverCrossesGender(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-m", models.GenderMale, 4)
	f.addRegistrant("f1", models.GenderFemale, 20, true)

	result, err := f.allocator.AllocateRandom(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalAllocated)
	assert.Equal(t, []string{"f1"}, result.Unallocated)
}

func TestAllocateManualValidationOrder(t *testing.T) {
	f := newEngineFixture(t)
	f.addBoundedRoom("room-bounded", models.GenderMale, 2, 14, 18)
	f.addRoom("room-full", models.GenderMale, 1)
	f.addRoom("room-f", models.GenderFemale, 2)

	f.addRegistrant("child", models.GenderMale, 12, true)
	f.addRegistrant("teen", models.GenderMale, 15, true)
	f.addRegistrant("pending", models.GenderMale, 15, false)
	occupant := f.addRegistrant("occupant", models.GenderMale, 15, true)
	require.NoError(t, f.allocations.Commit(context.Background(), models.Allocation{
		RegistrantID: occupant.ID, RoomID: "room-full", AllocatedAt: testNow, AllocatedBy: "system",
	}))

	ctx := context.Background()

	t.Run("unknown registrant", func(t *testing.T) {
		_, err := f.allocator.AllocateManual(ctx, "ghost", "room-bounded")
		assert.ErrorIs(t, err, models.ErrRegistrantNotFound)
	})

	t.Run("unverified registrant", func(t *testing.T) {
		_, err := f.allocator.AllocateManual(ctx, "pending", "room-bounded")
		assert.ErrorIs(t, err, models.ErrNotVerified)
	})

	t.Run("already allocated", func(t *testing.T) {
		_, err := f.allocator.AllocateManual(ctx, "occupant", "room-bounded")
		assert.ErrorIs(t, err, models.ErrAlreadyAllocated)
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := f.allocator.AllocateManual(ctx, "teen", "ghost-room")
		assert.ErrorIs(t, err, models.ErrRoomNotFound)
	})

	t.Run("gender mismatch", func(t *testing.T) {
		_, err := f.allocator.AllocateManual(ctx, "teen", "room-f")
		assert.ErrorIs(t, err, models.ErrGenderMismatch)
	})

	t.Run("room full", func(t *testing.T) {
		_, err := f.allocator.AllocateManual(ctx, "teen", "room-full")
		assert.ErrorIs(t, err, models.ErrRoomFull)
	})

	t.Run("age below explicit minimum", func(t *testing.T) {
		_, err := f.allocator.AllocateManual(ctx, "child", "room-bounded")
		assert.ErrorIs(t, err, models.ErrAgeOutOfRange)

		// Rejection leaves no state behind.
		alloc, getErr := f.allocations.Get(ctx, "child")
		require.NoError(t, getErr)
		assert.Nil(t, alloc)
	})

	t.Run("success stamps actor and time", func(t *testing.T) {
		ctx := requestcontext.WithActor(ctx, "admin@example.org")
		alloc, err := f.allocator.AllocateManual(ctx, "teen", "room-bounded")
		require.NoError(t, err)

		assert.Equal(t, "teen", alloc.RegistrantID)
		assert.Equal(t, "room-bounded", alloc.RoomID)
		assert.Equal(t, testNow, alloc.AllocatedAt)
		assert.Equal(t, "admin@example.org", alloc.AllocatedBy)
	})
}

func TestRemoveAllocationIsIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-a", models.GenderMale, 2)
	f.addRegistrant("m1", models.GenderMale, 20, true)
	require.NoError(t, f.allocations.Commit(context.Background(), models.Allocation{
		RegistrantID: "m1", RoomID: "room-a", AllocatedAt: testNow, AllocatedBy: "system",
	}))

	removed, err := f.allocator.RemoveAllocation(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.allocator.RemoveAllocation(context.Background(), "m1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestListAllocationsEnrichesNames(t *testing.T) {
	f := newEngineFixture(t)
	f.addRoom("room-a", models.GenderMale, 2)
	f.addRegistrant("m1", models.GenderMale, 20, true)
	require.NoError(t, f.allocations.Commit(context.Background(), models.Allocation{
		RegistrantID: "m1", RoomID: "room-a", AllocatedAt: testNow, AllocatedBy: "admin",
	}))

	views, err := f.allocator.ListAllocations(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "registrant m1", views[0].RegistrantName)
	assert.Equal(t, "room room-a", views[0].RoomName)
	assert.Equal(t, "admin", views[0].AllocatedBy)
}
