package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"quarters/internal/audit"
	"quarters/internal/clock"
	"quarters/internal/housing/metrics"
	"quarters/internal/housing/models"
	allocstore "quarters/internal/housing/store/allocation"
	registrantstore "quarters/internal/housing/store/registrant"
	roomstore "quarters/internal/housing/store/room"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// engineFixture wires the full engine against memory stores pinned to a
// fixed clock.
type engineFixture struct {
	registrants *registrantstore.MemoryStore
	rooms       *roomstore.MemoryStore
	allocations *allocstore.MemoryStore
	recorder    *audit.MemoryRecorder
	allocator   *Allocator
	guard       *VerificationGuard
	gate        *EligibilityGate
	registry    *RoomRegistry
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	f := &engineFixture{
		registrants: registrantstore.NewMemoryStore(),
		rooms:       roomstore.NewMemoryStore(),
		recorder:    audit.NewMemoryRecorder(),
	}
	f.allocations = allocstore.NewMemoryStore(f.rooms)

	clk := clock.Fixed(testNow)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWith(prometheus.NewRegistry())

	f.gate = NewEligibilityGate(f.registrants, f.allocations, clk)
	f.registry = NewRoomRegistry(f.rooms, f.allocations)
	f.allocator = NewAllocator(AllocatorConfig{
		Gate:        f.gate,
		Registry:    f.registry,
		Registrants: f.registrants,
		Rooms:       f.rooms,
		Allocations: f.allocations,
		Clock:       clk,
		Logger:      logger,
		Metrics:     m,
		Audit:       f.recorder,
	})
	f.guard = NewVerificationGuard(f.registrants, f.rooms, f.allocations, clk, logger, f.recorder)
	return f
}

func (f *engineFixture) addRegistrant(id string, gender models.Gender, age int, verified bool) models.Registrant {
	r := models.Registrant{
		ID:           id,
		Name:         "registrant " + id,
		Gender:       gender,
		BirthDate:    testNow.AddDate(-age, 0, -30),
		Verified:     verified,
		RegisteredAt: testNow.AddDate(0, -1, 0),
	}
	f.registrants.Put(r)
	return r
}

func (f *engineFixture) addRoom(id string, gender models.Gender, capacity int) models.Room {
	r := models.Room{
		ID:       id,
		Name:     "room " + id,
		Gender:   gender,
		Capacity: capacity,
	}
	f.rooms.Put(r)
	return r
}

func (f *engineFixture) addBoundedRoom(id string, gender models.Gender, capacity, minAge, maxAge int) models.Room {
	r := models.Room{
		ID:       id,
		Name:     "room " + id,
		Gender:   gender,
		Capacity: capacity,
		MinAge:   &minAge,
		MaxAge:   &maxAge,
	}
	f.rooms.Put(r)
	return r
}

func (f *engineFixture) roomOf(t *testing.T, result models.BulkResult, registrantID string) string {
	t.Helper()
	for _, p := range result.Placements {
		if p.RegistrantID == registrantID {
			return p.RoomID
		}
	}
	t.Fatalf("registrant %s has no placement", registrantID)
	return ""
}
