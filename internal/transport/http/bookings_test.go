package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bharatTiffin/elitemeet-backend/internal/app"
	"github.com/bharatTiffin/elitemeet-backend/internal/auth"
	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
)

func authedRequest(method, target, body string, id auth.Identity) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	return req.WithContext(auth.WithIdentity(req.Context(), id))
}

func TestHandleCreateBooking(t *testing.T) {
	t.Parallel()

	identity := auth.Identity{UserID: "user-1", Name: "Asha", Email: "asha@example.com"}

	t.Run("reserves and returns order details", func(t *testing.T) {
		expires := time.Date(2026, 3, 10, 12, 15, 0, 0, time.UTC)
		svc := &fakeBookingSvc{reserveResult: app.ReserveResult{
			Booking:  domain.Booking{ID: "bk-1", ExpiresAt: expires},
			OrderID:  "order_1",
			Amount:   500_00,
			Currency: "INR",
		}}
		req := authedRequest(http.MethodPost, "/api/bookings", `{"slot_id":"slot-1","purpose":"resume review"}`, identity)
		rec := httptest.NewRecorder()

		HandleCreateBooking(svc)(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.gotReserve.SlotID != "slot-1" || svc.gotReserve.UserID != "user-1" {
			t.Fatalf("unexpected reserve input: %+v", svc.gotReserve)
		}
		if svc.gotReserve.Purpose != "resume review" {
			t.Fatalf("expected purpose forwarded, got %q", svc.gotReserve.Purpose)
		}

		var resp reserveResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.OrderID != "order_1" || resp.Amount != 500_00 {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if !resp.ExpiresAt.Equal(expires) {
			t.Fatalf("expected expires_at %v, got %v", expires, resp.ExpiresAt)
		}
	})

	t.Run("missing identity is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader([]byte(`{"slot_id":"slot-1"}`)))
		rec := httptest.NewRecorder()

		HandleCreateBooking(&fakeBookingSvc{})(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("missing slot_id rejected", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/api/bookings", `{"purpose":"x"}`, identity)
		rec := httptest.NewRecorder()

		HandleCreateBooking(&fakeBookingSvc{})(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("lost claim race maps to conflict", func(t *testing.T) {
		svc := &fakeBookingSvc{reserveErr: domain.ErrSlotUnavailable}
		req := authedRequest(http.MethodPost, "/api/bookings", `{"slot_id":"slot-1"}`, identity)
		rec := httptest.NewRecorder()

		HandleCreateBooking(svc)(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}

		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error response: %v", err)
		}
		if resp.Code != codeSlotUnavailable {
			t.Fatalf("expected code %s, got %s", codeSlotUnavailable, resp.Code)
		}
	})
}

func TestHandleEnrollMentorship(t *testing.T) {
	t.Parallel()

	identity := auth.Identity{UserID: "user-1", Name: "Asha", Email: "asha@example.com"}

	t.Run("opens enrollment order", func(t *testing.T) {
		svc := &fakeBookingSvc{enrollResult: app.ReserveResult{
			Booking:  domain.Booking{ID: "bk-1"},
			OrderID:  "order_m",
			Amount:   50000_00,
			Currency: "INR",
		}}
		req := authedRequest(http.MethodPost, "/api/mentorship/enroll", `{}`, identity)
		rec := httptest.NewRecorder()

		HandleEnrollMentorship(svc)(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
	})

	t.Run("second enrollment maps to conflict", func(t *testing.T) {
		svc := &fakeBookingSvc{enrollErr: domain.ErrAlreadyBooked}
		req := authedRequest(http.MethodPost, "/api/mentorship/enroll", `{}`, identity)
		rec := httptest.NewRecorder()

		HandleEnrollMentorship(svc)(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestHandleCancelBooking(t *testing.T) {
	t.Parallel()

	t.Run("cancels by order id", func(t *testing.T) {
		svc := &fakeBookingSvc{}
		req := httptest.NewRequest(http.MethodPost, "/api/bookings/cancel", bytes.NewReader([]byte(`{"order_id":"order_1"}`)))
		rec := httptest.NewRecorder()

		HandleCancelBooking(svc)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if svc.cancelledOrder != "order_1" {
			t.Fatalf("expected cancel for order_1, got %q", svc.cancelledOrder)
		}
	})

	t.Run("missing order_id rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings/cancel", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()

		HandleCancelBooking(&fakeBookingSvc{})(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown order maps to 404", func(t *testing.T) {
		svc := &fakeBookingSvc{cancelErr: domain.ErrBookingNotFound}
		req := httptest.NewRequest(http.MethodPost, "/api/bookings/cancel", bytes.NewReader([]byte(`{"order_id":"order_x"}`)))
		rec := httptest.NewRecorder()

		HandleCancelBooking(svc)(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestHandleListBookings(t *testing.T) {
	t.Parallel()

	identity := auth.Identity{UserID: "user-1"}
	slotID := "slot-1"
	svc := &fakeBookingSvc{bookings: []domain.Booking{
		{ID: "bk-2", Kind: domain.KindMentorship, Status: domain.BookingStatusPending, OrderID: "order_2"},
		{ID: "bk-1", Kind: domain.KindConsultation, SlotID: &slotID, Status: domain.BookingStatusConfirmed, OrderID: "order_1"},
	}}

	req := authedRequest(http.MethodGet, "/api/bookings", "", identity)
	rec := httptest.NewRecorder()

	HandleListBookings(svc)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(resp))
	}
	if resp[1].SlotID == nil || *resp[1].SlotID != slotID {
		t.Fatalf("expected slot id preserved, got %+v", resp[1])
	}
	if resp[0].SlotID != nil {
		t.Fatalf("expected mentorship booking without slot_id")
	}
}
