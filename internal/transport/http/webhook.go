package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
)

const signatureHeader = "X-Razorpay-Signature"

// maxWebhookBody bounds how much of a webhook payload is read.
const maxWebhookBody = 1 << 20

// WebhookHandler is the minimal interface the payment callback endpoints need.
type WebhookHandler interface {
	HandleWebhookEvent(ctx context.Context, rawBody []byte, signature string) error
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (domain.Booking, error)
}

// HandlePaymentWebhook consumes the provider's asynchronous events. The body
// is read exactly once and the same bytes feed signature verification and
// parsing; nothing upstream may re-serialize it.
func HandlePaymentWebhook(svc WebhookHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "unreadable body")
			return
		}

		signature := r.Header.Get(signatureHeader)
		if signature == "" {
			writeError(w, http.StatusBadRequest, codeInvalidSignature, "missing signature")
			return
		}

		if err := svc.HandleWebhookEvent(r.Context(), body, signature); err != nil {
			if err == domain.ErrInvalidSignature {
				// Generic rejection; never echo the expected signature.
				writeError(w, http.StatusBadRequest, codeInvalidSignature, "invalid webhook signature")
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "webhook error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// HandleVerifyPayment is the client-initiated confirmation path carrying the
// signature the checkout UI returned.
func HandleVerifyPayment(svc WebhookHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody,
				"razorpay_order_id, razorpay_payment_id and razorpay_signature are required")
			return
		}

		booking, err := svc.VerifyPayment(r.Context(), req.OrderID, req.PaymentID, req.Signature)
		if err != nil {
			switch err {
			case domain.ErrInvalidSignature:
				writeError(w, http.StatusBadRequest, codeInvalidSignature, "invalid payment signature")
			case domain.ErrBookingNotFound:
				writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "payment verified and booking confirmed",
			"booking": bookingResponse{
				ID:        booking.ID,
				Kind:      string(booking.Kind),
				SlotID:    booking.SlotID,
				Amount:    booking.Amount,
				Currency:  booking.Currency,
				Status:    string(booking.Status),
				OrderID:   booking.OrderID,
				ExpiresAt: booking.ExpiresAt,
				CreatedAt: booking.CreatedAt,
			},
		})
	}
}
