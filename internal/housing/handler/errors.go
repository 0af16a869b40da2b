package handler

import (
	"errors"
	"net/http"

	"quarters/internal/housing/models"
	"quarters/pkg/httputil"
)

// writeDomainError translates engine errors into the JSON envelope. The
// unverify conflict is handled separately because it carries a payload.
func writeDomainError(w http.ResponseWriter, err error) {
	var roomAllocated *models.RoomAllocatedError
	if errors.As(err, &roomAllocated) {
		httputil.WriteConflict(w, "room_allocated", toRoomConflictResponse(roomAllocated.Conflict))
		return
	}

	switch {
	case errors.Is(err, models.ErrRegistrantNotFound):
		httputil.WriteError(w, http.StatusNotFound, "registrant_not_found", err.Error())
	case errors.Is(err, models.ErrRoomNotFound):
		httputil.WriteError(w, http.StatusNotFound, "room_not_found", err.Error())
	case errors.Is(err, models.ErrAllocationNotFound):
		httputil.WriteError(w, http.StatusNotFound, "allocation_not_found", err.Error())
	case errors.Is(err, models.ErrAlreadyAllocated):
		httputil.WriteError(w, http.StatusConflict, "already_allocated", err.Error())
	case errors.Is(err, models.ErrGenderMismatch):
		httputil.WriteError(w, http.StatusConflict, "gender_mismatch", err.Error())
	case errors.Is(err, models.ErrRoomFull):
		httputil.WriteError(w, http.StatusConflict, "room_full", err.Error())
	case errors.Is(err, models.ErrAgeOutOfRange):
		httputil.WriteError(w, http.StatusConflict, "age_out_of_range", err.Error())
	case errors.Is(err, models.ErrNotVerified):
		httputil.WriteError(w, http.StatusConflict, "not_verified", err.Error())
	case errors.Is(err, models.ErrInvalidAgeGap):
		httputil.WriteError(w, http.StatusBadRequest, "invalid_age_gap", err.Error())
	default:
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
