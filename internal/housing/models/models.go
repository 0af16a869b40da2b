package models

import "time"

// Gender designates both registrants and rooms. Allocations never cross it.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Genders lists the allocation scopes in deterministic processing order.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale}
}

// ParseGender validates a wire value. Empty is allowed where it means "both".
func ParseGender(s string) (Gender, bool) {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s), true
	case "":
		return "", true
	}
	return "", false
}

// Registrant is owned by the external registration subsystem. The engine
// reads gender, birth date and verification state; the only field it ever
// writes is the verification flip performed by a forced-unverify cascade.
type Registrant struct {
	ID           string
	Name         string
	Gender       Gender
	BirthDate    time.Time
	Verified     bool
	RegisteredAt time.Time
	UnverifiedAt *time.Time
	UnverifiedBy string
}

// AgeAt returns the registrant's age in whole years at the given instant.
func (r Registrant) AgeAt(now time.Time) int {
	return AgeYears(r.BirthDate, now)
}

// AgeYears computes whole years elapsed between birth and now.
func AgeYears(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Room is a housing unit. MinAge/MaxAge are inclusive hard bounds enforced
// only for manual placements; occupancy is derived from the allocation
// ledger and never stored on the room.
type Room struct {
	ID       string
	Name     string
	Gender   Gender
	Capacity int
	MinAge   *int
	MaxAge   *int
}

// AgeWithinBounds reports whether age satisfies the room's explicit bounds.
// Rooms without bounds accept any age.
func (r Room) AgeWithinBounds(age int) bool {
	if r.MinAge != nil && age < *r.MinAge {
		return false
	}
	if r.MaxAge != nil && age > *r.MaxAge {
		return false
	}
	return true
}

// Allocation links one registrant to one room. RegistrantID is unique in
// the ledger: a registrant holds at most one active allocation.
type Allocation struct {
	RegistrantID string
	RoomID       string
	AllocatedAt  time.Time
	AllocatedBy  string
}

// AllocationPolicy carries the bulk grouping configuration. It is passed
// explicitly into each age-based run; later changes are never retroactive.
type AllocationPolicy struct {
	MaxAgeGap int
}

const (
	MinAgeGapYears = 1
	MaxAgeGapYears = 20
)

// Validate checks the configured gap against the allowed bounds.
func (p AllocationPolicy) Validate() error {
	if p.MaxAgeGap < MinAgeGapYears || p.MaxAgeGap > MaxAgeGapYears {
		return ErrInvalidAgeGap
	}
	return nil
}

// Placement records one committed registrant-to-room assignment from a
// bulk run.
type Placement struct {
	RegistrantID string
	RoomID       string
}

// BulkResult is the partial-success report of a bulk strategy. Per-item
// failures never abort a run; unplaceable registrants are listed instead.
type BulkResult struct {
	TotalAllocated int
	Placements     []Placement
	Unallocated    []string
}

// CandidateRoom pairs a room with its occupancy as observed at candidate
// selection time. Selection is advisory; the commit transaction re-checks.
type CandidateRoom struct {
	Room      Room
	Occupancy int
}

// Remaining is the free capacity observed at selection time.
func (c CandidateRoom) Remaining() int {
	return c.Room.Capacity - c.Occupancy
}

// AllocationView enriches a ledger row with display names for the admin
// listing screens.
type AllocationView struct {
	Allocation
	RegistrantName string
	RoomName       string
}

// RoomConflict is the structured payload returned when an unverify request
// hits an allocated registrant without force: the caller decides with full
// room context in hand.
type RoomConflict struct {
	RoomID    string
	RoomName  string
	Gender    Gender
	Capacity  int
	Occupancy int
	Roommates []string
}
