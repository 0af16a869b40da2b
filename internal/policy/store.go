// Package policy persists the process-wide allocation settings, currently
// the default maximum age gap for age-based bulk runs. The value is read
// once per bulk invocation; changing it never touches existing allocations.
package policy

import (
	"context"

	"quarters/internal/housing/models"
)

// Store reads and writes the age-gap setting.
type Store interface {
	AgeGap(ctx context.Context) (int, error)
	SetAgeGap(ctx context.Context, years int) error
}

func validateAgeGap(years int) error {
	return models.AllocationPolicy{MaxAgeGap: years}.Validate()
}
