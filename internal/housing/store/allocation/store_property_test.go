package allocation

import (
	"context"
	"errors"
	"testing"

	"pgregory.net/rapid"

	"quarters/internal/housing/models"
	roomstore "quarters/internal/housing/store/room"
)

// TestLedgerInvariants drives the ledger with random commit/remove sequences
// and checks the structural invariants after every step: occupancy never
// exceeds capacity, a registrant holds at most one allocation, and the
// derived occupancy map agrees with the ledger rows.
func TestLedgerInvariants(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		ctx := context.Background()

		numRooms := rapid.IntRange(1, 4).Draw(r, "numRooms")
		roomMem := roomstore.NewMemoryStore()
		capacities := make(map[string]int, numRooms)
		roomIDs := make([]string, 0, numRooms)
		for i := 0; i < numRooms; i++ {
			id := rapid.StringMatching(`room-[a-d]`).Draw(r, "roomID")
			if _, dup := capacities[id]; dup {
				continue
			}
			capacity := rapid.IntRange(1, 4).Draw(r, "capacity")
			roomMem.Put(models.Room{ID: id, Gender: models.GenderMale, Capacity: capacity})
			capacities[id] = capacity
			roomIDs = append(roomIDs, id)
		}

		s := NewMemoryStore(roomMem)
		registrantIDs := []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8"}

		numOps := rapid.IntRange(1, 40).Draw(r, "numOps")
		for op := 0; op < numOps; op++ {
			registrantID := rapid.SampledFrom(registrantIDs).Draw(r, "registrant")

			if rapid.Bool().Draw(r, "remove") {
				if _, err := s.Remove(ctx, registrantID); err != nil {
					r.Fatalf("remove: %v", err)
				}
			} else {
				roomID := rapid.SampledFrom(roomIDs).Draw(r, "room")
				err := s.Commit(ctx, alloc(registrantID, roomID))
				if err != nil &&
					!errors.Is(err, models.ErrAlreadyAllocated) &&
					!errors.Is(err, models.ErrRoomFull) {
					r.Fatalf("commit: %v", err)
				}
			}

			allocs, err := s.List(ctx)
			if err != nil {
				r.Fatalf("list: %v", err)
			}
			seen := make(map[string]bool, len(allocs))
			perRoom := make(map[string]int, len(roomIDs))
			for _, a := range allocs {
				if seen[a.RegistrantID] {
					r.Fatalf("registrant %s allocated twice", a.RegistrantID)
				}
				seen[a.RegistrantID] = true
				perRoom[a.RoomID]++
			}
			for roomID, count := range perRoom {
				if count > capacities[roomID] {
					r.Fatalf("room %s over capacity: %d > %d", roomID, count, capacities[roomID])
				}
			}

			occupancy, err := s.OccupancyByRoom(ctx)
			if err != nil {
				r.Fatalf("occupancy: %v", err)
			}
			for roomID, count := range occupancy {
				if count != perRoom[roomID] {
					r.Fatalf("occupancy drift for %s: %d vs %d", roomID, count, perRoom[roomID])
				}
			}
		}
	})
}
