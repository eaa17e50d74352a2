package app

import (
	"context"
	"fmt"

	"github.com/bharatTiffin/elitemeet-backend/internal/clock"
	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
	"github.com/bharatTiffin/elitemeet-backend/internal/notify"
	"github.com/bharatTiffin/elitemeet-backend/internal/observability"
	"github.com/bharatTiffin/elitemeet-backend/internal/payment"
	"github.com/sirupsen/logrus"
)

// SlotFinalizer is the slot-side storage the confirmation handler needs.
type SlotFinalizer interface {
	Get(ctx context.Context, slotID string) (domain.Slot, error)
	Finalize(ctx context.Context, slotID, userID string) error
	Release(ctx context.Context, slotID string, from domain.SlotStatus) (bool, error)
}

// BookingConfirmer is the booking-side storage the confirmation handler needs.
type BookingConfirmer interface {
	Create(ctx context.Context, b domain.Booking) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Booking, error)
	ConfirmByOrderID(ctx context.Context, orderID, paymentID, signature string) (*domain.Booking, bool, error)
	CancelByOrderID(ctx context.Context, orderID string, to domain.BookingStatus) (*domain.Booking, bool, error)
}

// Notifier queues a fire-and-forget message.
type Notifier interface {
	Enqueue(msg notify.Message)
}

// ConfirmService is the single authority that moves bookings into their
// confirmed terminal state. Webhook deliveries and the client verify call
// converge on the same idempotent core, so provider retries and either
// arrival order are safe.
type ConfirmService struct {
	slots         SlotFinalizer
	bookings      BookingConfirmer
	provider      payment.Provider
	notifier      Notifier
	clock         clock.Clock
	log           *logrus.Logger
	metrics       *observability.Metrics
	webhookSecret string
	keySecret     string
	adminEmail    string
}

func NewConfirmService(
	slots SlotFinalizer,
	bookings BookingConfirmer,
	provider payment.Provider,
	notifier Notifier,
	clk clock.Clock,
	log *logrus.Logger,
	metrics *observability.Metrics,
	webhookSecret, keySecret, adminEmail string,
) *ConfirmService {
	return &ConfirmService{
		slots:         slots,
		bookings:      bookings,
		provider:      provider,
		notifier:      notifier,
		clock:         clk,
		log:           log,
		metrics:       metrics,
		webhookSecret: webhookSecret,
		keySecret:     keySecret,
		adminEmail:    adminEmail,
	}
}

// HandleWebhookEvent verifies the signature over the exact bytes received
// and advances the state machine. The body must not have been re-serialized
// by any transport layer.
func (s *ConfirmService) HandleWebhookEvent(ctx context.Context, rawBody []byte, signature string) error {
	if !payment.VerifyWebhookSignature(rawBody, signature, s.webhookSecret) {
		s.metrics.InvalidSignatures.Inc()
		s.log.Warn("webhook signature mismatch")
		return domain.ErrInvalidSignature
	}

	event, err := payment.ParseEvent(rawBody)
	if err != nil {
		return fmt.Errorf("parse webhook event: %w", err)
	}

	switch event.Kind {
	case payment.EventPaymentCaptured:
		return s.confirmCaptured(ctx, event.OrderID, event.PaymentID, signature)
	case payment.EventPaymentFailed:
		return s.handleFailed(ctx, event.OrderID)
	default:
		// Unknown event types are acknowledged; the provider retries on
		// anything else.
		s.log.WithField("event", event.Kind).Debug("ignoring webhook event")
		return nil
	}
}

// VerifyPayment is the client-initiated path carrying the signature the
// checkout UI handed back.
func (s *ConfirmService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (domain.Booking, error) {
	if !payment.VerifyCheckoutSignature(orderID, paymentID, signature, s.keySecret) {
		s.metrics.InvalidSignatures.Inc()
		s.log.WithField("order_id", orderID).Warn("checkout signature mismatch")
		return domain.Booking{}, domain.ErrInvalidSignature
	}

	if err := s.confirmCaptured(ctx, orderID, paymentID, signature); err != nil {
		return domain.Booking{}, err
	}

	booking, err := s.bookings.GetByOrderID(ctx, orderID)
	if err != nil {
		return domain.Booking{}, err
	}
	if booking == nil {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return *booking, nil
}

// confirmCaptured is the idempotent confirmation core.
func (s *ConfirmService) confirmCaptured(ctx context.Context, orderID, paymentID, signature string) error {
	booking, err := s.bookings.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if booking == nil {
		return s.synthesize(ctx, orderID, paymentID, signature)
	}

	if booking.Status == domain.BookingStatusConfirmed {
		s.metrics.DuplicateDeliveries.Inc()
		s.log.WithField("order_id", orderID).Info("booking already confirmed")
		return nil
	}

	confirmed, changed, err := s.bookings.ConfirmByOrderID(ctx, orderID, paymentID, signature)
	if err != nil {
		return err
	}
	if confirmed == nil {
		return domain.ErrBookingNotFound
	}
	if !changed {
		// Lost the race to another delivery, or the booking was cancelled by
		// the user before the payment landed. Either way the row is terminal
		// and retries must see success.
		s.metrics.DuplicateDeliveries.Inc()
		return nil
	}

	s.metrics.Confirmations.Inc()

	if confirmed.SlotID != nil {
		// Unconditional: the sweeper may have raced the slot back to
		// available, and confirmation always wins.
		if err := s.slots.Finalize(ctx, *confirmed.SlotID, confirmed.UserID); err != nil {
			s.log.WithError(err).WithField("slot_id", *confirmed.SlotID).
				Error("slot finalize failed, reconciliation will repair")
		}
	}

	s.fanOut(ctx, *confirmed, paymentID)
	s.log.WithFields(logrus.Fields{
		"order_id":   orderID,
		"payment_id": paymentID,
	}).Info("booking confirmed")
	return nil
}

// synthesize rebuilds a confirmed booking from the order's embedded metadata
// when the local row is missing. The payment already succeeded; an orphaned
// event must not drop it. Events without enough metadata are acknowledged.
func (s *ConfirmService) synthesize(ctx context.Context, orderID, paymentID, signature string) error {
	order, err := s.provider.FetchOrder(ctx, orderID)
	if err != nil {
		s.log.WithError(err).WithField("order_id", orderID).
			Warn("order lookup failed for orphaned event")
		return nil
	}

	userID := order.Notes["user_id"]
	userEmail := order.Notes["user_email"]
	if userID == "" || userEmail == "" {
		s.log.WithField("order_id", orderID).
			Warn("orphaned payment event lacks metadata, acknowledging")
		return nil
	}

	now := s.clock.Now()
	kind := domain.BookingKind(order.Notes["kind"])
	if kind == "" {
		kind = domain.KindConsultation
	}

	var slotID *string
	if v := order.Notes["slot_id"]; v != "" {
		slotID = &v
	}

	booking := domain.Booking{
		ID:               newID(),
		UserID:           userID,
		UserName:         order.Notes["user_name"],
		UserEmail:        userEmail,
		Kind:             kind,
		SlotID:           slotID,
		Amount:           order.Amount,
		Currency:         order.Currency,
		Status:           domain.BookingStatusConfirmed,
		OrderID:          orderID,
		PaymentID:        &paymentID,
		PaymentSignature: &signature,
		ExpiresAt:        now,
		CreatedAt:        now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		if err == domain.ErrDuplicateOrder {
			// A concurrent delivery synthesized it first.
			s.metrics.DuplicateDeliveries.Inc()
			return nil
		}
		return err
	}

	s.metrics.Confirmations.Inc()

	if slotID != nil {
		if err := s.slots.Finalize(ctx, *slotID, userID); err != nil {
			s.log.WithError(err).WithField("slot_id", *slotID).
				Error("slot finalize failed for synthesized booking")
		}
	}

	s.fanOut(ctx, booking, paymentID)
	s.log.WithField("order_id", orderID).Info("synthesized confirmed booking from order metadata")
	return nil
}

// handleFailed cancels a pending booking after a failed payment and frees
// the slot. Terminal bookings are untouched.
func (s *ConfirmService) handleFailed(ctx context.Context, orderID string) error {
	booking, changed, err := s.bookings.CancelByOrderID(ctx, orderID, domain.BookingStatusCancelled)
	if err != nil {
		return err
	}
	if booking == nil {
		s.log.WithField("order_id", orderID).Warn("payment failure for unknown order")
		return nil
	}
	if !changed {
		return nil
	}

	if booking.SlotID != nil {
		if _, err := s.slots.Release(ctx, *booking.SlotID, domain.SlotStatusReserved); err != nil {
			s.log.WithError(err).WithField("slot_id", *booking.SlotID).
				Error("release after payment failure errored")
		}
	}
	s.log.WithField("order_id", orderID).Info("booking cancelled after payment failure")
	return nil
}

// fanOut queues holder and owner notifications. Failures never reach the
// confirmation response.
func (s *ConfirmService) fanOut(ctx context.Context, booking domain.Booking, paymentID string) {
	details := notify.BookingDetails{
		UserName:     booking.UserName,
		UserEmail:    booking.UserEmail,
		Purpose:      booking.Purpose,
		AmountRupees: booking.Amount / 100,
		PaymentID:    paymentID,
	}

	if booking.Kind == domain.KindMentorship {
		s.notifier.Enqueue(notify.MentorshipConfirmedMessage(details))
		if s.adminEmail != "" {
			s.notifier.Enqueue(notify.AdminConfirmedMessage(s.adminEmail, details))
		}
		return
	}

	if booking.SlotID != nil {
		if slot, err := s.slots.Get(ctx, *booking.SlotID); err == nil {
			details.StartTime = slot.StartTime
			details.Duration = slot.DurationMinutes
		}
	}

	s.notifier.Enqueue(notify.UserConfirmedMessage(details))
	if s.adminEmail != "" {
		s.notifier.Enqueue(notify.AdminConfirmedMessage(s.adminEmail, details))
	}
}
