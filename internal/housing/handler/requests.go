package handler

import (
	"errors"
	"time"

	"github.com/asaskevich/govalidator"

	"quarters/internal/housing/models"
)

type allocateByAgeRequest struct {
	Gender string `json:"gender"`
	// Zero means "use the configured age-gap policy".
	AgeRangeYears int `json:"age_range_years"`
}

func (r allocateByAgeRequest) validate() error {
	if _, ok := models.ParseGender(r.Gender); !ok {
		return errors.New("gender must be male, female or omitted")
	}
	if r.AgeRangeYears != 0 {
		if !govalidator.InRangeInt(r.AgeRangeYears, models.MinAgeGapYears, models.MaxAgeGapYears) {
			return errors.New("age_range_years must be between 1 and 20")
		}
	}
	return nil
}

type allocateRandomRequest struct {
	Gender string `json:"gender"`
}

func (r allocateRandomRequest) validate() error {
	if _, ok := models.ParseGender(r.Gender); !ok {
		return errors.New("gender must be male, female or omitted")
	}
	return nil
}

type allocateManualRequest struct {
	RegistrantID string `json:"registrant_id"`
	RoomID       string `json:"room_id"`
}

func (r allocateManualRequest) validate() error {
	if !govalidator.IsUUID(r.RegistrantID) {
		return errors.New("registrant_id must be a UUID")
	}
	if !govalidator.IsUUID(r.RoomID) {
		return errors.New("room_id must be a UUID")
	}
	return nil
}

type unverifyRequest struct {
	Force bool `json:"force"`
}

type setAgeGapRequest struct {
	Years int `json:"years"`
}

func (r setAgeGapRequest) validate() error {
	if !govalidator.InRangeInt(r.Years, models.MinAgeGapYears, models.MaxAgeGapYears) {
		return errors.New("years must be between 1 and 20")
	}
	return nil
}

type placementResponse struct {
	RegistrantID string `json:"registrant_id"`
	RoomID       string `json:"room_id"`
}

type bulkResultResponse struct {
	TotalAllocated int                 `json:"total_allocated"`
	Placements     []placementResponse `json:"placements"`
	Unallocated    []string            `json:"unallocated"`
}

func toBulkResultResponse(result models.BulkResult) bulkResultResponse {
	resp := bulkResultResponse{
		TotalAllocated: result.TotalAllocated,
		Placements:     make([]placementResponse, 0, len(result.Placements)),
		Unallocated:    result.Unallocated,
	}
	if resp.Unallocated == nil {
		resp.Unallocated = []string{}
	}
	for _, p := range result.Placements {
		resp.Placements = append(resp.Placements, placementResponse{
			RegistrantID: p.RegistrantID,
			RoomID:       p.RoomID,
		})
	}
	return resp
}

type allocationResponse struct {
	RegistrantID string    `json:"registrant_id"`
	RoomID       string    `json:"room_id"`
	AllocatedAt  time.Time `json:"allocated_at"`
	AllocatedBy  string    `json:"allocated_by"`
}

type allocationViewResponse struct {
	allocationResponse
	RegistrantName string `json:"registrant_name"`
	RoomName       string `json:"room_name"`
}

type roomOccupancyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	Capacity  int    `json:"capacity"`
	MinAge    *int   `json:"min_age,omitempty"`
	MaxAge    *int   `json:"max_age,omitempty"`
	Occupancy int    `json:"occupancy"`
	Remaining int    `json:"remaining"`
}

type roomConflictResponse struct {
	RoomID    string   `json:"room_id"`
	RoomName  string   `json:"room_name"`
	Gender    string   `json:"gender"`
	Capacity  int      `json:"capacity"`
	Occupancy int      `json:"occupancy"`
	Roommates []string `json:"roommates"`
}

func toRoomConflictResponse(c models.RoomConflict) roomConflictResponse {
	roommates := c.Roommates
	if roommates == nil {
		roommates = []string{}
	}
	return roomConflictResponse{
		RoomID:    c.RoomID,
		RoomName:  c.RoomName,
		Gender:    string(c.Gender),
		Capacity:  c.Capacity,
		Occupancy: c.Occupancy,
		Roommates: roommates,
	}
}
