package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarters/internal/housing/models"
)

func agedRegistrant(id string, age int, now time.Time) models.Registrant {
	return models.Registrant{
		ID:        id,
		Gender:    models.GenderMale,
		BirthDate: now.AddDate(-age, 0, -30),
		Verified:  true,
	}
}

func TestGroupByAge(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	pool := func(ages ...int) []models.Registrant {
		out := make([]models.Registrant, 0, len(ages))
		for i, age := range ages {
			out = append(out, agedRegistrant(string(rune('a'+i)), age, now))
		}
		return out
	}

	groupAges := func(groups []Group) [][2]int {
		out := make([][2]int, 0, len(groups))
		for _, g := range groups {
			out = append(out, [2]int{g.MinAge, g.MaxAge})
		}
		return out
	}

	tests := []struct {
		name      string
		ages      []int
		gap       int
		wantSizes []int
		wantSpans [][2]int
	}{
		{
			name:      "single group within gap",
			ages:      []int{14, 15, 16},
			gap:       5,
			wantSizes: []int{3},
			wantSpans: [][2]int{{14, 16}},
		},
		{
			name:      "break opens new group with new minimum",
			ages:      []int{14, 15, 16, 25},
			gap:       5,
			wantSizes: []int{3, 1},
			wantSpans: [][2]int{{14, 16}, {25, 25}},
		},
		{
			name:      "chain does not stretch past the group minimum",
			ages:      []int{10, 14, 18, 22},
			gap:       5,
			wantSizes: []int{2, 2},
			wantSpans: [][2]int{{10, 14}, {18, 22}},
		},
		{
			name:      "boundary age exactly gap years older joins",
			ages:      []int{20, 25},
			gap:       5,
			wantSizes: []int{2},
			wantSpans: [][2]int{{20, 25}},
		},
		{
			name:      "gap of one keeps adjacent ages together",
			ages:      []int{17, 18, 20},
			gap:       1,
			wantSizes: []int{2, 1},
			wantSpans: [][2]int{{17, 18}, {20, 20}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := GroupByAge(pool(tt.ages...), tt.gap, now)
			require.Len(t, groups, len(tt.wantSizes))
			for i, g := range groups {
				assert.Len(t, g.Members, tt.wantSizes[i])
			}
			assert.Equal(t, tt.wantSpans, groupAges(groups))
		})
	}
}

func TestGroupByAgeEmptyPool(t *testing.T) {
	assert.Nil(t, GroupByAge(nil, 5, time.Now()))
}
