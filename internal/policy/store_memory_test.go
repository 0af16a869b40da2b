package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarters/internal/housing/models"
)

func TestMemoryStoreAgeGap(t *testing.T) {
	s := NewMemoryStore(5)
	ctx := context.Background()

	years, err := s.AgeGap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, years)

	require.NoError(t, s.SetAgeGap(ctx, 10))
	years, err = s.AgeGap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, years)
}

func TestMemoryStoreRejectsOutOfRangeGap(t *testing.T) {
	s := NewMemoryStore(5)
	ctx := context.Background()

	assert.ErrorIs(t, s.SetAgeGap(ctx, 0), models.ErrInvalidAgeGap)
	assert.ErrorIs(t, s.SetAgeGap(ctx, 21), models.ErrInvalidAgeGap)

	// The stored value survives a rejected write.
	years, err := s.AgeGap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, years)
}
