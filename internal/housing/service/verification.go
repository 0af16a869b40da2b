package service

import (
	"context"
	"fmt"
	"log/slog"

	"quarters/internal/audit"
	"quarters/internal/clock"
	"quarters/internal/housing/models"
	"quarters/pkg/requestcontext"
)

// VerificationGuard governs the interaction between the external two-state
// verification machine and the allocation ledger: an unverify against an
// allocated registrant is either rejected with full room context or, when
// forced, cascades the allocation removal and the state flip as one unit.
type VerificationGuard struct {
	registrants RegistrantDirectory
	rooms       RoomDirectory
	allocations AllocationStore
	clock       clock.Clock
	logger      *slog.Logger
	audit       audit.Recorder
}

func NewVerificationGuard(registrants RegistrantDirectory, rooms RoomDirectory, allocations AllocationStore, clk clock.Clock, logger *slog.Logger, recorder audit.Recorder) *VerificationGuard {
	return &VerificationGuard{
		registrants: registrants,
		rooms:       rooms,
		allocations: allocations,
		clock:       clk,
		logger:      logger,
		audit:       recorder,
	}
}

// Unverify flips a registrant to unverified. Allocated registrants are
// protected: without force the call fails with a RoomAllocatedError carrying
// room details and roommate names; with force the allocation is removed and
// the flip recorded in the same transaction.
func (g *VerificationGuard) Unverify(ctx context.Context, registrantID string, force bool) error {
	now := g.clock.Now()
	by := requestcontext.Actor(ctx)

	reg, err := g.registrants.Get(ctx, registrantID)
	if err != nil {
		return err
	}
	if !reg.Verified {
		return nil
	}

	alloc, err := g.allocations.Get(ctx, registrantID)
	if err != nil {
		return err
	}

	if alloc == nil {
		if err := g.registrants.SetVerified(ctx, registrantID, false, now, by); err != nil {
			return err
		}
		g.record(ctx, registrantID, "", by, audit.ActionRegistrantUnverified, "")
		return nil
	}

	if !force {
		conflict, err := g.buildConflict(ctx, registrantID, alloc.RoomID)
		if err != nil {
			return err
		}
		return &models.RoomAllocatedError{Conflict: conflict}
	}

	err = g.allocations.WithTx(ctx, func(ctx context.Context) error {
		if _, err := g.allocations.Remove(ctx, registrantID); err != nil {
			return fmt.Errorf("remove allocation: %w", err)
		}
		if err := g.registrants.SetVerified(ctx, registrantID, false, now, by); err != nil {
			return fmt.Errorf("unset verified: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	g.record(ctx, registrantID, alloc.RoomID, by, audit.ActionRegistrantUnverified, "forced cascade")
	g.logger.InfoContext(ctx, "registrant unverified with cascade",
		"registrant_id", registrantID, "room_id", alloc.RoomID, "actor", by)
	return nil
}

// Verify flips a registrant to verified. Verifying an already-verified
// registrant is a no-op.
func (g *VerificationGuard) Verify(ctx context.Context, registrantID string) error {
	reg, err := g.registrants.Get(ctx, registrantID)
	if err != nil {
		return err
	}
	if reg.Verified {
		return nil
	}

	by := requestcontext.Actor(ctx)
	if err := g.registrants.SetVerified(ctx, registrantID, true, g.clock.Now(), by); err != nil {
		return err
	}
	g.record(ctx, registrantID, "", by, audit.ActionRegistrantVerified, "")
	return nil
}

func (g *VerificationGuard) buildConflict(ctx context.Context, registrantID, roomID string) (models.RoomConflict, error) {
	room, err := g.rooms.Get(ctx, roomID)
	if err != nil {
		return models.RoomConflict{}, err
	}
	occupants, err := g.allocations.ListByRoom(ctx, roomID)
	if err != nil {
		return models.RoomConflict{}, err
	}

	conflict := models.RoomConflict{
		RoomID:    room.ID,
		RoomName:  room.Name,
		Gender:    room.Gender,
		Capacity:  room.Capacity,
		Occupancy: len(occupants),
	}
	for _, occ := range occupants {
		if occ.RegistrantID == registrantID {
			continue
		}
		mate, err := g.registrants.Get(ctx, occ.RegistrantID)
		if err != nil {
			g.logger.WarnContext(ctx, "roommate lookup failed",
				"registrant_id", occ.RegistrantID, "error", err)
			continue
		}
		conflict.Roommates = append(conflict.Roommates, mate.Name)
	}
	return conflict, nil
}

func (g *VerificationGuard) record(ctx context.Context, registrantID, roomID, by string, action audit.Action, detail string) {
	event := audit.Event{
		OccurredAt:   g.clock.Now(),
		Action:       action,
		Actor:        by,
		RegistrantID: registrantID,
		RoomID:       roomID,
		RequestID:    requestcontext.RequestID(ctx),
		Detail:       detail,
	}
	if err := g.audit.Record(ctx, event); err != nil {
		g.logger.WarnContext(ctx, "audit record failed",
			"action", action, "error", err)
	}
}
