package service

import (
	"context"
	"fmt"
	"sort"

	"quarters/internal/clock"
	"quarters/internal/housing/models"
)

// EligibilityGate computes the pool of registrants available for placement:
// verified, not already allocated, filtered by gender, sorted by ascending
// age with registration time as tie-break so grouping is deterministic.
type EligibilityGate struct {
	registrants RegistrantDirectory
	allocations AllocationStore
	clock       clock.Clock
}

func NewEligibilityGate(registrants RegistrantDirectory, allocations AllocationStore, clk clock.Clock) *EligibilityGate {
	return &EligibilityGate{
		registrants: registrants,
		allocations: allocations,
		clock:       clk,
	}
}

func (g *EligibilityGate) EligiblePool(ctx context.Context, gender models.Gender) ([]models.Registrant, error) {
	verified, err := g.registrants.List(ctx, gender, true)
	if err != nil {
		return nil, fmt.Errorf("list verified registrants: %w", err)
	}

	allocated, err := g.allocations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	taken := make(map[string]struct{}, len(allocated))
	for _, a := range allocated {
		taken[a.RegistrantID] = struct{}{}
	}

	pool := make([]models.Registrant, 0, len(verified))
	for _, r := range verified {
		if _, exists := taken[r.ID]; exists {
			continue
		}
		pool = append(pool, r)
	}

	now := g.clock.Now()
	sort.SliceStable(pool, func(i, j int) bool {
		ai, aj := pool[i].AgeAt(now), pool[j].AgeAt(now)
		if ai != aj {
			return ai < aj
		}
		if !pool[i].RegisteredAt.Equal(pool[j].RegisteredAt) {
			return pool[i].RegisteredAt.Before(pool[j].RegisteredAt)
		}
		return pool[i].ID < pool[j].ID
	})
	return pool, nil
}
