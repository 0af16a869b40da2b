package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"quarters/internal/audit"
	"quarters/internal/clock"
	"quarters/internal/housing/metrics"
	"quarters/internal/housing/models"
	"quarters/pkg/requestcontext"
)

const (
	StrategyAge    = "age"
	StrategyRandom = "random"
	StrategyManual = "manual"
)

// Allocator implements the three placement strategies. Bulk runs are
// partial-success by design: per-item failures land in the unallocated list
// and never roll back placements already committed in the same run.
type Allocator struct {
	gate        *EligibilityGate
	registry    *RoomRegistry
	registrants RegistrantDirectory
	rooms       RoomDirectory
	allocations AllocationStore
	clock       clock.Clock
	logger      *slog.Logger
	metrics     *metrics.Metrics
	audit       audit.Recorder
}

type AllocatorConfig struct {
	Gate        *EligibilityGate
	Registry    *RoomRegistry
	Registrants RegistrantDirectory
	Rooms       RoomDirectory
	Allocations AllocationStore
	Clock       clock.Clock
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Audit       audit.Recorder
}

func NewAllocator(cfg AllocatorConfig) *Allocator {
	return &Allocator{
		gate:        cfg.Gate,
		registry:    cfg.Registry,
		registrants: cfg.Registrants,
		rooms:       cfg.Rooms,
		allocations: cfg.Allocations,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		audit:       cfg.Audit,
	}
}

// ageSpan tracks the age range a room has received during the current bulk
// run. Rooms untouched by the run carry the zero span and accept any group.
type ageSpan struct {
	min, max int
	set      bool
}

func (s ageSpan) merged(lo, hi int) ageSpan {
	if !s.set {
		return ageSpan{min: lo, max: hi, set: true}
	}
	return ageSpan{min: min(s.min, lo), max: max(s.max, hi), set: true}
}

func (s ageSpan) width() int {
	if !s.set {
		return 0
	}
	return s.max - s.min
}

// AllocateByAge groups the eligible pool per gender with the given policy
// and places each group whole into the smallest room that holds it, or
// splits it largest-available-first when no single room fits.
func (a *Allocator) AllocateByAge(ctx context.Context, gender models.Gender, policy models.AllocationPolicy) (models.BulkResult, error) {
	if err := policy.Validate(); err != nil {
		return models.BulkResult{}, err
	}

	started := time.Now()
	now := a.clock.Now()
	by := requestcontext.Actor(ctx)

	var result models.BulkResult
	for _, g := range genderScope(gender) {
		pool, err := a.gate.EligiblePool(ctx, g)
		if err != nil {
			return result, err
		}

		// Per-run span bookkeeping keeps a room's bulk-placed ages within
		// the gap even across group splits.
		spans := make(map[string]ageSpan)
		for _, group := range GroupByAge(pool, policy.MaxAgeGap, now) {
			a.placeGroup(ctx, g, group, policy.MaxAgeGap, spans, &result, by, now)
		}
	}

	a.metrics.ObserveBulkRun(StrategyAge, started, result.TotalAllocated, len(result.Unallocated))
	a.recordBulkRun(ctx, StrategyAge, by, now, result)
	return result, nil
}

func (a *Allocator) placeGroup(ctx context.Context, gender models.Gender, group Group, gap int, spans map[string]ageSpan, result *models.BulkResult, by string, now time.Time) {
	members := group.Members
	attempts := make(map[string]int)

	for len(members) > 0 {
		candidates, err := a.registry.CandidateRooms(ctx, gender, 1)
		if err != nil {
			a.logger.ErrorContext(ctx, "candidate room query failed",
				"gender", gender, "error", err)
			a.markUnallocated(result, members)
			return
		}

		usable := make([]models.CandidateRoom, 0, len(candidates))
		for _, c := range candidates {
			if spans[c.Room.ID].merged(group.MinAge, group.MaxAge).width() <= gap {
				usable = append(usable, c)
			}
		}
		if len(usable) == 0 {
			a.markUnallocated(result, members)
			return
		}

		// Split fallback: largest remaining capacity first. Candidates come
		// back ascending, so the last usable room is the largest.
		target := usable[len(usable)-1]
		take := min(target.Remaining(), len(members))
		// Whole-group best fit: the smallest room that holds everyone.
		for _, c := range usable {
			if c.Remaining() >= len(members) {
				target = c
				take = len(members)
				break
			}
		}
		if take <= 0 {
			a.markUnallocated(result, members)
			return
		}

		chunk, rest := members[:take], members[take:]
		var retry []models.Registrant
		for _, m := range chunk {
			err := a.allocations.Commit(ctx, models.Allocation{
				RegistrantID: m.ID,
				RoomID:       target.Room.ID,
				AllocatedAt:  now,
				AllocatedBy:  by,
			})
			switch {
			case err == nil:
				result.TotalAllocated++
				result.Placements = append(result.Placements, models.Placement{
					RegistrantID: m.ID,
					RoomID:       target.Room.ID,
				})
				age := m.AgeAt(now)
				spans[target.Room.ID] = spans[target.Room.ID].merged(age, age)
			case errors.Is(err, models.ErrAlreadyAllocated):
				// Another admin placed this registrant mid-run; not ours to
				// count either way.
				a.logger.InfoContext(ctx, "registrant allocated concurrently",
					"registrant_id", m.ID)
			case errors.Is(err, models.ErrRoomFull), errors.Is(err, models.ErrConcurrentUpdate):
				a.metrics.Conflicts.WithLabelValues(conflictCode(err)).Inc()
				attempts[m.ID]++
				if attempts[m.ID] > 1 {
					result.Unallocated = append(result.Unallocated, m.ID)
				} else {
					retry = append(retry, m)
				}
			default:
				a.logger.ErrorContext(ctx, "allocation commit failed",
					"registrant_id", m.ID, "room_id", target.Room.ID, "error", err)
				result.Unallocated = append(result.Unallocated, m.ID)
			}
		}
		members = append(retry, rest...)
	}
}

// AllocateRandom shuffles the eligible pool per gender and places each
// registrant first-fit. Room-level age bounds are not checked in this mode;
// only manual placement enforces them.
func (a *Allocator) AllocateRandom(ctx context.Context, gender models.Gender) (models.BulkResult, error) {
	started := time.Now()
	now := a.clock.Now()
	by := requestcontext.Actor(ctx)

	var result models.BulkResult
	for _, g := range genderScope(gender) {
		pool, err := a.gate.EligiblePool(ctx, g)
		if err != nil {
			return result, err
		}
		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

		for _, m := range pool {
			a.placeOne(ctx, g, m, &result, by, now)
		}
	}

	a.metrics.ObserveBulkRun(StrategyRandom, started, result.TotalAllocated, len(result.Unallocated))
	a.recordBulkRun(ctx, StrategyRandom, by, now, result)
	return result, nil
}

func (a *Allocator) placeOne(ctx context.Context, gender models.Gender, m models.Registrant, result *models.BulkResult, by string, now time.Time) {
	for attempt := 0; attempt < 2; attempt++ {
		candidates, err := a.registry.CandidateRooms(ctx, gender, 1)
		if err != nil {
			a.logger.ErrorContext(ctx, "candidate room query failed",
				"gender", gender, "error", err)
			result.Unallocated = append(result.Unallocated, m.ID)
			return
		}
		if len(candidates) == 0 {
			result.Unallocated = append(result.Unallocated, m.ID)
			return
		}

		target := candidates[0]
		err = a.allocations.Commit(ctx, models.Allocation{
			RegistrantID: m.ID,
			RoomID:       target.Room.ID,
			AllocatedAt:  now,
			AllocatedBy:  by,
		})
		switch {
		case err == nil:
			result.TotalAllocated++
			result.Placements = append(result.Placements, models.Placement{
				RegistrantID: m.ID,
				RoomID:       target.Room.ID,
			})
			return
		case errors.Is(err, models.ErrAlreadyAllocated):
			return
		case errors.Is(err, models.ErrRoomFull), errors.Is(err, models.ErrConcurrentUpdate):
			a.metrics.Conflicts.WithLabelValues(conflictCode(err)).Inc()
			// Loop once more against refreshed candidates.
		default:
			a.logger.ErrorContext(ctx, "allocation commit failed",
				"registrant_id", m.ID, "room_id", target.Room.ID, "error", err)
			result.Unallocated = append(result.Unallocated, m.ID)
			return
		}
	}
	result.Unallocated = append(result.Unallocated, m.ID)
}

// AllocateManual places one registrant into one room. Validation order is
// fixed and the first failing check wins; this is the only strategy that
// enforces explicit room age bounds.
func (a *Allocator) AllocateManual(ctx context.Context, registrantID, roomID string) (models.Allocation, error) {
	now := a.clock.Now()
	by := requestcontext.Actor(ctx)

	reg, err := a.registrants.Get(ctx, registrantID)
	if err != nil {
		return models.Allocation{}, err
	}
	if !reg.Verified {
		return models.Allocation{}, models.ErrNotVerified
	}
	if existing, err := a.allocations.Get(ctx, registrantID); err != nil {
		return models.Allocation{}, err
	} else if existing != nil {
		return models.Allocation{}, models.ErrAlreadyAllocated
	}

	room, err := a.rooms.Get(ctx, roomID)
	if err != nil {
		return models.Allocation{}, err
	}
	if room.Gender != reg.Gender {
		return models.Allocation{}, models.ErrGenderMismatch
	}

	occupants, err := a.allocations.ListByRoom(ctx, roomID)
	if err != nil {
		return models.Allocation{}, err
	}
	if len(occupants) >= room.Capacity {
		return models.Allocation{}, models.ErrRoomFull
	}

	if !room.AgeWithinBounds(reg.AgeAt(now)) {
		return models.Allocation{}, models.ErrAgeOutOfRange
	}

	alloc := models.Allocation{
		RegistrantID: registrantID,
		RoomID:       roomID,
		AllocatedAt:  now,
		AllocatedBy:  by,
	}
	if err := a.allocations.Commit(ctx, alloc); err != nil {
		if errors.Is(err, models.ErrConcurrentUpdate) {
			// The race loser sees the same outcome as a full room.
			a.metrics.Conflicts.WithLabelValues(conflictCode(err)).Inc()
			return models.Allocation{}, models.ErrRoomFull
		}
		return models.Allocation{}, err
	}

	a.metrics.AllocationsCommitted.WithLabelValues(StrategyManual).Inc()
	a.record(ctx, audit.Event{
		OccurredAt:   now,
		Action:       audit.ActionAllocationCommitted,
		Actor:        by,
		RegistrantID: registrantID,
		RoomID:       roomID,
		RequestID:    requestcontext.RequestID(ctx),
		Detail:       StrategyManual,
	})
	a.logger.InfoContext(ctx, "manual allocation committed",
		"registrant_id", registrantID, "room_id", roomID, "actor", by)
	return alloc, nil
}

// RemoveAllocation deletes a registrant's allocation. Removing an absent
// allocation is a successful no-op.
func (a *Allocator) RemoveAllocation(ctx context.Context, registrantID string) (bool, error) {
	removed, err := a.allocations.Remove(ctx, registrantID)
	if err != nil {
		return false, err
	}
	if removed {
		a.metrics.AllocationsRemoved.Inc()
		a.record(ctx, audit.Event{
			OccurredAt:   a.clock.Now(),
			Action:       audit.ActionAllocationRemoved,
			Actor:        requestcontext.Actor(ctx),
			RegistrantID: registrantID,
			RequestID:    requestcontext.RequestID(ctx),
		})
	}
	return removed, nil
}

// ListAllocations returns the ledger enriched with registrant and room
// names for the admin views.
func (a *Allocator) ListAllocations(ctx context.Context) ([]models.AllocationView, error) {
	allocs, err := a.allocations.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.AllocationView, 0, len(allocs))
	for _, alloc := range allocs {
		view := models.AllocationView{Allocation: alloc}
		if reg, err := a.registrants.Get(ctx, alloc.RegistrantID); err == nil {
			view.RegistrantName = reg.Name
		}
		if room, err := a.rooms.Get(ctx, alloc.RoomID); err == nil {
			view.RoomName = room.Name
		}
		out = append(out, view)
	}
	return out, nil
}

func (a *Allocator) markUnallocated(result *models.BulkResult, members []models.Registrant) {
	for _, m := range members {
		result.Unallocated = append(result.Unallocated, m.ID)
	}
}

func (a *Allocator) recordBulkRun(ctx context.Context, strategy, by string, now time.Time, result models.BulkResult) {
	a.record(ctx, audit.Event{
		OccurredAt: now,
		Action:     audit.ActionBulkRunCompleted,
		Actor:      by,
		RequestID:  requestcontext.RequestID(ctx),
		Detail:     fmt.Sprintf("strategy=%s allocated=%d unallocated=%d", strategy, result.TotalAllocated, len(result.Unallocated)),
	})
	a.logger.InfoContext(ctx, "bulk allocation run completed",
		"strategy", strategy,
		"allocated", result.TotalAllocated,
		"unallocated", len(result.Unallocated),
		"actor", by)
}

func (a *Allocator) record(ctx context.Context, event audit.Event) {
	if err := a.audit.Record(ctx, event); err != nil {
		a.logger.WarnContext(ctx, "audit record failed",
			"action", event.Action, "error", err)
	}
}

func conflictCode(err error) string {
	switch {
	case errors.Is(err, models.ErrRoomFull):
		return "room_full"
	case errors.Is(err, models.ErrConcurrentUpdate):
		return "concurrent_update"
	case errors.Is(err, models.ErrAlreadyAllocated):
		return "already_allocated"
	default:
		return "other"
	}
}
