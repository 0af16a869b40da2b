package service

import (
	"time"

	"quarters/internal/housing/models"
)

// Group is a contiguous slice of the age-sorted pool whose internal age
// spread does not exceed the gap it was built with.
type Group struct {
	Members []models.Registrant
	MinAge  int
	MaxAge  int
}

// GroupByAge partitions an age-sorted pool in a single sweep: a registrant
// joins the current group while age - groupMin <= maxAgeGap, otherwise it
// opens a new group with itself as the new minimum. Groups come back
// youngest-first.
func GroupByAge(pool []models.Registrant, maxAgeGap int, now time.Time) []Group {
	if len(pool) == 0 {
		return nil
	}

	var groups []Group
	current := Group{
		Members: []models.Registrant{pool[0]},
		MinAge:  pool[0].AgeAt(now),
		MaxAge:  pool[0].AgeAt(now),
	}

	for _, r := range pool[1:] {
		age := r.AgeAt(now)
		if age-current.MinAge <= maxAgeGap {
			current.Members = append(current.Members, r)
			current.MaxAge = age
			continue
		}
		groups = append(groups, current)
		current = Group{
			Members: []models.Registrant{r},
			MinAge:  age,
			MaxAge:  age,
		}
	}
	return append(groups, current)
}
