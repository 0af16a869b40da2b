// Package handler is the thin HTTP layer over the allocation engine. It
// decodes, validates, delegates and translates errors; business rules live
// in the service package.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quarters/internal/housing/models"
	"quarters/internal/policy"
	"quarters/pkg/httputil"
	"quarters/pkg/requestcontext"
)

// AllocatorService is the engine surface the handler needs.
type AllocatorService interface {
	AllocateByAge(ctx context.Context, gender models.Gender, p models.AllocationPolicy) (models.BulkResult, error)
	AllocateRandom(ctx context.Context, gender models.Gender) (models.BulkResult, error)
	AllocateManual(ctx context.Context, registrantID, roomID string) (models.Allocation, error)
	RemoveAllocation(ctx context.Context, registrantID string) (bool, error)
	ListAllocations(ctx context.Context) ([]models.AllocationView, error)
}

// VerificationService governs the verification state machine.
type VerificationService interface {
	Verify(ctx context.Context, registrantID string) error
	Unverify(ctx context.Context, registrantID string, force bool) error
}

// RoomView supplies the occupancy listing.
type RoomView interface {
	RoomOccupancy(ctx context.Context, gender models.Gender) ([]models.CandidateRoom, error)
}

type Handler struct {
	allocator AllocatorService
	guard     VerificationService
	rooms     RoomView
	policies  policy.Store
	logger    *slog.Logger
}

func New(allocator AllocatorService, guard VerificationService, rooms RoomView, policies policy.Store, logger *slog.Logger) *Handler {
	return &Handler{
		allocator: allocator,
		guard:     guard,
		rooms:     rooms,
		policies:  policies,
		logger:    logger,
	}
}

// Register mounts the engine endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/allocations/by-age", h.handleAllocateByAge)
	r.Post("/allocations/random", h.handleAllocateRandom)
	r.Post("/allocations", h.handleAllocateManual)
	r.Get("/allocations", h.handleListAllocations)
	r.Delete("/allocations/{registrantID}", h.handleRemoveAllocation)
	r.Get("/rooms", h.handleListRooms)
	r.Get("/settings/age-gap", h.handleGetAgeGap)
	r.Put("/settings/age-gap", h.handleSetAgeGap)
	r.Post("/registrants/{registrantID}/verify", h.handleVerify)
	r.Post("/registrants/{registrantID}/unverify", h.handleUnverify)
}

func (h *Handler) handleAllocateByAge(w http.ResponseWriter, r *http.Request) {
	var req allocateByAgeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	gap := req.AgeRangeYears
	if gap == 0 {
		configured, err := h.policies.AgeGap(r.Context())
		if err != nil {
			h.logError(r, "read age gap policy", err)
			httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
			return
		}
		gap = configured
	}

	gender, _ := models.ParseGender(req.Gender)
	result, err := h.allocator.AllocateByAge(r.Context(), gender, models.AllocationPolicy{MaxAgeGap: gap})
	if err != nil {
		h.logError(r, "age-based bulk allocation", err)
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBulkResultResponse(result))
}

func (h *Handler) handleAllocateRandom(w http.ResponseWriter, r *http.Request) {
	var req allocateRandomRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	gender, _ := models.ParseGender(req.Gender)
	result, err := h.allocator.AllocateRandom(r.Context(), gender)
	if err != nil {
		h.logError(r, "random bulk allocation", err)
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBulkResultResponse(result))
}

func (h *Handler) handleAllocateManual(w http.ResponseWriter, r *http.Request) {
	var req allocateManualRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	alloc, err := h.allocator.AllocateManual(r.Context(), req.RegistrantID, req.RoomID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, allocationResponse{
		RegistrantID: alloc.RegistrantID,
		RoomID:       alloc.RoomID,
		AllocatedAt:  alloc.AllocatedAt,
		AllocatedBy:  alloc.AllocatedBy,
	})
}

func (h *Handler) handleRemoveAllocation(w http.ResponseWriter, r *http.Request) {
	registrantID := chi.URLParam(r, "registrantID")

	removed, err := h.allocator.RemoveAllocation(r.Context(), registrantID)
	if err != nil {
		h.logError(r, "remove allocation", err)
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (h *Handler) handleListAllocations(w http.ResponseWriter, r *http.Request) {
	views, err := h.allocator.ListAllocations(r.Context())
	if err != nil {
		h.logError(r, "list allocations", err)
		writeDomainError(w, err)
		return
	}

	out := make([]allocationViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, allocationViewResponse{
			allocationResponse: allocationResponse{
				RegistrantID: v.RegistrantID,
				RoomID:       v.RoomID,
				AllocatedAt:  v.AllocatedAt,
				AllocatedBy:  v.AllocatedBy,
			},
			RegistrantName: v.RegistrantName,
			RoomName:       v.RoomName,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	gender, ok := models.ParseGender(r.URL.Query().Get("gender"))
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "validation_error", "gender must be male, female or omitted")
		return
	}

	rooms, err := h.rooms.RoomOccupancy(r.Context(), gender)
	if err != nil {
		h.logError(r, "room occupancy", err)
		writeDomainError(w, err)
		return
	}

	out := make([]roomOccupancyResponse, 0, len(rooms))
	for _, c := range rooms {
		out = append(out, roomOccupancyResponse{
			ID:        c.Room.ID,
			Name:      c.Room.Name,
			Gender:    string(c.Room.Gender),
			Capacity:  c.Room.Capacity,
			MinAge:    c.Room.MinAge,
			MaxAge:    c.Room.MaxAge,
			Occupancy: c.Occupancy,
			Remaining: c.Remaining(),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetAgeGap(w http.ResponseWriter, r *http.Request) {
	years, err := h.policies.AgeGap(r.Context())
	if err != nil {
		h.logError(r, "read age gap policy", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"years": years})
}

func (h *Handler) handleSetAgeGap(w http.ResponseWriter, r *http.Request) {
	var req setAgeGapRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.policies.SetAgeGap(r.Context(), req.Years); err != nil {
		h.logError(r, "set age gap policy", err)
		writeDomainError(w, err)
		return
	}
	h.logger.InfoContext(r.Context(), "age gap policy changed",
		"years", req.Years,
		"actor", requestcontext.Actor(r.Context()),
		"request_id", requestcontext.RequestID(r.Context()))
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"years": req.Years})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	registrantID := chi.URLParam(r, "registrantID")

	if err := h.guard.Verify(r.Context(), registrantID); err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleUnverify(w http.ResponseWriter, r *http.Request) {
	registrantID := chi.URLParam(r, "registrantID")

	var req unverifyRequest
	if r.ContentLength > 0 && !decode(w, r, &req) {
		return
	}

	if err := h.guard.Unverify(r.Context(), registrantID, req.Force); err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid_request_body", "request body is not valid JSON")
		return false
	}
	return true
}

func (h *Handler) logError(r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), op+" failed",
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err)
}
