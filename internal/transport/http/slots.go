package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bharatTiffin/elitemeet-backend/internal/app"
	"github.com/bharatTiffin/elitemeet-backend/internal/auth"
	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
	"github.com/go-chi/chi/v5"
)

// SlotAdminService is the minimal interface the slot endpoints need.
type SlotAdminService interface {
	CreateSlots(ctx context.Context, adminID string, inputs []app.CreateSlotInput) ([]domain.Slot, error)
	ListAvailable(ctx context.Context, from, to *time.Time) ([]domain.Slot, error)
	ListForAdmin(ctx context.Context, adminID string) ([]domain.Slot, error)
	UpdateSlot(ctx context.Context, adminID, slotID string, in app.UpdateSlotInput) (domain.Slot, error)
	DeleteSlot(ctx context.Context, adminID, slotID string) error
}

type slotResponse struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           int64     `json:"price"`
	Status          string    `json:"status"`
}

func toSlotResponse(s domain.Slot) slotResponse {
	return slotResponse{
		ID:              s.ID,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DurationMinutes: s.DurationMinutes,
		Price:           s.Price,
		Status:          string(s.Status),
	}
}

// HandleListSlots returns available slots, optionally windowed by from/to
// RFC 3339 query parameters.
func HandleListSlots(svc SlotAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var from, to *time.Time
		if f, t := r.URL.Query().Get("from"), r.URL.Query().Get("to"); f != "" && t != "" {
			parsedFrom, errF := time.Parse(time.RFC3339, f)
			parsedTo, errT := time.Parse(time.RFC3339, t)
			if errF != nil || errT != nil {
				writeError(w, http.StatusBadRequest, codeInvalidSlotTime, "invalid from/to format")
				return
			}
			from, to = &parsedFrom, &parsedTo
		}

		slots, err := svc.ListAvailable(r.Context(), from, to)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]slotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, toSlotResponse(s))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleAdminListSlots returns every slot the admin owns.
func HandleAdminListSlots(svc SlotAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFromContext(r.Context())

		slots, err := svc.ListForAdmin(r.Context(), identity.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]slotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, toSlotResponse(s))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type createSlotsRequest struct {
	Slots []struct {
		StartTime       time.Time `json:"start_time"`
		DurationMinutes int       `json:"duration_minutes"`
		Price           int64     `json:"price"`
	} `json:"slots"`
}

// HandleAdminCreateSlots creates a batch of slots for the admin.
func HandleAdminCreateSlots(svc SlotAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFromContext(r.Context())

		var req createSlotsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Slots) == 0 {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "slots array required")
			return
		}

		inputs := make([]app.CreateSlotInput, 0, len(req.Slots))
		for _, s := range req.Slots {
			inputs = append(inputs, app.CreateSlotInput{
				StartTime:       s.StartTime,
				DurationMinutes: s.DurationMinutes,
				Price:           s.Price,
			})
		}

		created, err := svc.CreateSlots(r.Context(), identity.UserID, inputs)
		if err != nil {
			switch err {
			case domain.ErrInvalidSlotTime:
				writeError(w, http.StatusBadRequest, codeInvalidSlotTime, err.Error())
			case domain.ErrSlotOverlap:
				writeError(w, http.StatusConflict, codeSlotOverlap, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		resp := make([]slotResponse, 0, len(created))
		for _, s := range created {
			resp = append(resp, toSlotResponse(s))
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

type updateSlotRequest struct {
	StartTime       *time.Time `json:"start_time"`
	DurationMinutes *int       `json:"duration_minutes"`
	Price           *int64     `json:"price"`
}

// HandleAdminUpdateSlot edits an available slot.
func HandleAdminUpdateSlot(svc SlotAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFromContext(r.Context())
		slotID := chi.URLParam(r, "id")

		var req updateSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		slot, err := svc.UpdateSlot(r.Context(), identity.UserID, slotID, app.UpdateSlotInput{
			StartTime:       req.StartTime,
			DurationMinutes: req.DurationMinutes,
			Price:           req.Price,
		})
		if err != nil {
			switch err {
			case domain.ErrSlotNotFound, domain.ErrInvalidID:
				writeError(w, http.StatusNotFound, codeSlotNotFound, domain.ErrSlotNotFound.Error())
			case domain.ErrSlotNotEditable:
				writeError(w, http.StatusConflict, codeSlotNotEditable, err.Error())
			case domain.ErrSlotOverlap:
				writeError(w, http.StatusConflict, codeSlotOverlap, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, toSlotResponse(slot))
	}
}

// HandleAdminDeleteSlot removes an available slot.
func HandleAdminDeleteSlot(svc SlotAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFromContext(r.Context())
		slotID := chi.URLParam(r, "id")

		if err := svc.DeleteSlot(r.Context(), identity.UserID, slotID); err != nil {
			switch err {
			case domain.ErrInvalidID:
				writeError(w, http.StatusNotFound, codeSlotNotFound, domain.ErrSlotNotFound.Error())
			case domain.ErrSlotNotEditable:
				writeError(w, http.StatusConflict, codeSlotNotEditable, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "slot deleted"})
	}
}
