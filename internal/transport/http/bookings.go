package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bharatTiffin/elitemeet-backend/internal/app"
	"github.com/bharatTiffin/elitemeet-backend/internal/auth"
	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
)

// BookingReserver is the minimal interface the booking endpoints need.
type BookingReserver interface {
	Reserve(ctx context.Context, in app.ReserveInput) (app.ReserveResult, error)
	ReserveMentorship(ctx context.Context, in app.EnrollInput) (app.ReserveResult, error)
	Cancel(ctx context.Context, orderID string) error
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
}

type createBookingRequest struct {
	SlotID  string `json:"slot_id"`
	Purpose string `json:"purpose"`
}

type reserveResponse struct {
	BookingID string    `json:"booking_id"`
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleCreateBooking reserves a slot for the authenticated caller and
// returns the order the client completes out-of-band.
func HandleCreateBooking(svc BookingReserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "no token provided")
			return
		}

		var req createBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.SlotID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "slot_id is required")
			return
		}

		result, err := svc.Reserve(r.Context(), app.ReserveInput{
			SlotID:    req.SlotID,
			UserID:    identity.UserID,
			UserName:  identity.Name,
			UserEmail: identity.Email,
			Purpose:   req.Purpose,
		})
		if err != nil {
			switch err {
			case domain.ErrSlotUnavailable:
				writeError(w, http.StatusConflict, codeSlotUnavailable,
					"slot not available, it may have been booked by another user")
			case domain.ErrInvalidID:
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case domain.ErrNameRequired:
				writeError(w, http.StatusBadRequest, codeNameRequired, err.Error())
			case domain.ErrEmailRequired:
				writeError(w, http.StatusBadRequest, codeEmailRequired, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, reserveResponse{
			BookingID: result.Booking.ID,
			OrderID:   result.OrderID,
			Amount:    result.Amount,
			Currency:  result.Currency,
			ExpiresAt: result.Booking.ExpiresAt,
		})
	}
}

// HandleEnrollMentorship opens a slot-less mentorship booking.
func HandleEnrollMentorship(svc BookingReserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "no token provided")
			return
		}

		result, err := svc.ReserveMentorship(r.Context(), app.EnrollInput{
			UserID:    identity.UserID,
			UserName:  identity.Name,
			UserEmail: identity.Email,
		})
		if err != nil {
			switch err {
			case domain.ErrAlreadyBooked:
				writeError(w, http.StatusConflict, codeAlreadyBooked, err.Error())
			case domain.ErrNameRequired:
				writeError(w, http.StatusBadRequest, codeNameRequired, err.Error())
			case domain.ErrEmailRequired:
				writeError(w, http.StatusBadRequest, codeEmailRequired, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, reserveResponse{
			BookingID: result.Booking.ID,
			OrderID:   result.OrderID,
			Amount:    result.Amount,
			Currency:  result.Currency,
			ExpiresAt: result.Booking.ExpiresAt,
		})
	}
}

type cancelBookingRequest struct {
	OrderID string `json:"order_id"`
}

// HandleCancelBooking aborts a pending booking; cancelling an already
// settled one is a no-op success.
func HandleCancelBooking(svc BookingReserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cancelBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "order_id is required")
			return
		}

		if err := svc.Cancel(r.Context(), req.OrderID); err != nil {
			switch err {
			case domain.ErrBookingNotFound:
				writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "booking cancelled"})
	}
}

type bookingResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	SlotID    *string   `json:"slot_id,omitempty"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	OrderID   string    `json:"order_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// HandleListBookings returns the caller's bookings, newest first.
func HandleListBookings(svc BookingReserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "no token provided")
			return
		}

		bookings, err := svc.ListUserBookings(r.Context(), identity.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]bookingResponse, 0, len(bookings))
		for _, b := range bookings {
			resp = append(resp, bookingResponse{
				ID:        b.ID,
				Kind:      string(b.Kind),
				SlotID:    b.SlotID,
				Amount:    b.Amount,
				Currency:  b.Currency,
				Status:    string(b.Status),
				OrderID:   b.OrderID,
				ExpiresAt: b.ExpiresAt,
				CreatedAt: b.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
