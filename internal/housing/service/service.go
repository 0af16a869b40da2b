// Package service implements the accommodation allocation engine: candidate
// room queries, the eligible pool, age grouping, the three placement
// strategies and the verification guard. Stores are consumed through
// interfaces so the engine runs identically against memory and postgres.
package service

import (
	"context"
	"time"

	"quarters/internal/housing/models"
)

// AllocationStore is the transactional allocation ledger. Commit re-checks
// capacity and registrant uniqueness atomically; selection beforehand is
// advisory only.
type AllocationStore interface {
	Commit(ctx context.Context, alloc models.Allocation) error
	Remove(ctx context.Context, registrantID string) (bool, error)
	Get(ctx context.Context, registrantID string) (*models.Allocation, error)
	List(ctx context.Context) ([]models.Allocation, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.Allocation, error)
	OccupancyByRoom(ctx context.Context) (map[string]int, error)
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RegistrantDirectory is the engine's read view over registrants, plus the
// single write path used by the unverify cascade.
type RegistrantDirectory interface {
	Get(ctx context.Context, id string) (models.Registrant, error)
	List(ctx context.Context, gender models.Gender, verifiedOnly bool) ([]models.Registrant, error)
	SetVerified(ctx context.Context, id string, verified bool, at time.Time, by string) error
}

// RoomDirectory is the read-only view over rooms.
type RoomDirectory interface {
	Get(ctx context.Context, id string) (models.Room, error)
	List(ctx context.Context, gender models.Gender) ([]models.Room, error)
}

// genderScope expands an optional gender filter into the list of genders a
// bulk run covers.
func genderScope(gender models.Gender) []models.Gender {
	if gender == "" {
		return models.Genders()
	}
	return []models.Gender{gender}
}
