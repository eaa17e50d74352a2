package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bharatTiffin/elitemeet-backend/internal/clock"
	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
	"github.com/bharatTiffin/elitemeet-backend/internal/observability"
	"github.com/bharatTiffin/elitemeet-backend/internal/payment"
	"github.com/sirupsen/logrus"
)

// SlotClaimer is the slot-side storage the orchestrator needs.
type SlotClaimer interface {
	ClaimAvailable(ctx context.Context, slotID, userID string) (domain.Slot, error)
	Release(ctx context.Context, slotID string, from domain.SlotStatus) (bool, error)
}

// BookingWriter is the booking-side storage the orchestrator needs.
type BookingWriter interface {
	Create(ctx context.Context, b domain.Booking) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Booking, error)
	CancelByOrderID(ctx context.Context, orderID string, to domain.BookingStatus) (*domain.Booking, bool, error)
	HasActiveForUser(ctx context.Context, userID string, kind domain.BookingKind, now time.Time) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
}

const (
	defaultHoldTTL         = 15 * time.Minute
	defaultCurrency        = "INR"
	defaultMentorshipPrice = 50000_00
)

// BookingService is the reservation orchestrator: it claims the slot, opens
// a provider order, and persists the pending booking, compensating when a
// downstream step fails. It never confirms anything; that is the
// confirmation handler's job.
type BookingService struct {
	slots           SlotClaimer
	bookings        BookingWriter
	provider        payment.Provider
	clock           clock.Clock
	log             *logrus.Logger
	metrics         *observability.Metrics
	holdTTL         time.Duration
	mentorshipPrice int64
}

type BookingServiceOption func(*BookingService)

// WithHoldTTL overrides how long a pending booking holds its slot.
func WithHoldTTL(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// WithMentorshipPrice overrides the slot-less mentorship product price.
func WithMentorshipPrice(p int64) BookingServiceOption {
	return func(s *BookingService) {
		if p > 0 {
			s.mentorshipPrice = p
		}
	}
}

func NewBookingService(
	slots SlotClaimer,
	bookings BookingWriter,
	provider payment.Provider,
	clk clock.Clock,
	log *logrus.Logger,
	metrics *observability.Metrics,
	opts ...BookingServiceOption,
) *BookingService {
	svc := &BookingService{
		slots:           slots,
		bookings:        bookings,
		provider:        provider,
		clock:           clk,
		log:             log,
		metrics:         metrics,
		holdTTL:         defaultHoldTTL,
		mentorshipPrice: defaultMentorshipPrice,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReserveInput struct {
	SlotID    string
	UserID    string
	UserName  string
	UserEmail string
	Purpose   string
}

// ReserveResult carries what the client needs to complete checkout.
type ReserveResult struct {
	Booking  domain.Booking
	OrderID  string
	Amount   int64
	Currency string
}

// Reserve claims the slot, opens an order, and records a pending booking.
// The claim is a single conditional update; everything after it is
// compensated by releasing the slot if it fails.
func (s *BookingService) Reserve(ctx context.Context, in ReserveInput) (ReserveResult, error) {
	if err := validateReserveInput(in.UserName, in.UserEmail); err != nil {
		return ReserveResult{}, err
	}

	now := s.clock.Now()

	slot, err := s.slots.ClaimAvailable(ctx, in.SlotID, in.UserID)
	if err != nil {
		if err == domain.ErrSlotUnavailable {
			s.metrics.ReservationsLost.Inc()
		}
		return ReserveResult{}, err
	}

	result, err := s.openOrderAndPersist(ctx, slot, in, now)
	if err != nil {
		s.compensate(ctx, slot.ID)
		return ReserveResult{}, err
	}

	s.metrics.ReservationsWon.Inc()
	s.log.WithFields(logrus.Fields{
		"slot_id":  slot.ID,
		"order_id": result.OrderID,
		"user_id":  in.UserID,
	}).Info("slot reserved")
	return result, nil
}

func (s *BookingService) openOrderAndPersist(ctx context.Context, slot domain.Slot, in ReserveInput, now time.Time) (ReserveResult, error) {
	order, err := s.provider.CreateOrder(ctx, payment.CreateOrderInput{
		Amount:   slot.Price,
		Currency: defaultCurrency,
		Receipt:  fmt.Sprintf("booking_%d", now.UnixMilli()),
		Notes: map[string]string{
			"kind":       string(domain.KindConsultation),
			"slot_id":    slot.ID,
			"user_id":    in.UserID,
			"user_name":  in.UserName,
			"user_email": in.UserEmail,
		},
	})
	if err != nil {
		return ReserveResult{}, fmt.Errorf("create payment order: %w", err)
	}

	slotID := slot.ID
	booking := domain.Booking{
		ID:        newID(),
		UserID:    in.UserID,
		UserName:  in.UserName,
		UserEmail: in.UserEmail,
		Purpose:   in.Purpose,
		Kind:      domain.KindConsultation,
		SlotID:    &slotID,
		Amount:    slot.Price,
		Currency:  defaultCurrency,
		Status:    domain.BookingStatusPending,
		OrderID:   order.ID,
		ExpiresAt: now.Add(s.holdTTL),
		CreatedAt: now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return ReserveResult{}, err
	}

	return ReserveResult{
		Booking:  booking,
		OrderID:  order.ID,
		Amount:   slot.Price,
		Currency: defaultCurrency,
	}, nil
}

// compensate reverts the claim after a downstream failure. A failed revert
// leaves the slot for the sweeper or reconciliation and is logged loudly.
func (s *BookingService) compensate(ctx context.Context, slotID string) {
	released, err := s.slots.Release(ctx, slotID, domain.SlotStatusReserved)
	if err != nil {
		s.log.WithError(err).WithField("slot_id", slotID).
			Error("compensation failed, slot may need reconciliation")
		return
	}
	if !released {
		s.log.WithField("slot_id", slotID).
			Warn("compensation found slot already moved on")
	}
}

type EnrollInput struct {
	UserID    string
	UserName  string
	UserEmail string
}

// ReserveMentorship opens a slot-less pending booking for the mentorship
// program, gated by the one-per-user entitlement check.
func (s *BookingService) ReserveMentorship(ctx context.Context, in EnrollInput) (ReserveResult, error) {
	if err := validateReserveInput(in.UserName, in.UserEmail); err != nil {
		return ReserveResult{}, err
	}

	now := s.clock.Now()

	if domain.KindMentorship.Exclusive() {
		active, err := s.bookings.HasActiveForUser(ctx, in.UserID, domain.KindMentorship, now)
		if err != nil {
			return ReserveResult{}, err
		}
		if active {
			return ReserveResult{}, domain.ErrAlreadyBooked
		}
	}

	order, err := s.provider.CreateOrder(ctx, payment.CreateOrderInput{
		Amount:   s.mentorshipPrice,
		Currency: defaultCurrency,
		Receipt:  fmt.Sprintf("mentorship_%d", now.UnixMilli()),
		Notes: map[string]string{
			"kind":       string(domain.KindMentorship),
			"user_id":    in.UserID,
			"user_name":  in.UserName,
			"user_email": in.UserEmail,
		},
	})
	if err != nil {
		return ReserveResult{}, fmt.Errorf("create payment order: %w", err)
	}

	booking := domain.Booking{
		ID:        newID(),
		UserID:    in.UserID,
		UserName:  in.UserName,
		UserEmail: in.UserEmail,
		Kind:      domain.KindMentorship,
		Amount:    s.mentorshipPrice,
		Currency:  defaultCurrency,
		Status:    domain.BookingStatusPending,
		OrderID:   order.ID,
		ExpiresAt: now.Add(s.holdTTL),
		CreatedAt: now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return ReserveResult{}, err
	}

	return ReserveResult{
		Booking:  booking,
		OrderID:  order.ID,
		Amount:   s.mentorshipPrice,
		Currency: defaultCurrency,
	}, nil
}

// Cancel aborts a pending booking and frees its slot if still reserved.
// Already-terminal bookings are a no-op success.
func (s *BookingService) Cancel(ctx context.Context, orderID string) error {
	booking, changed, err := s.bookings.CancelByOrderID(ctx, orderID, domain.BookingStatusCancelled)
	if err != nil {
		return err
	}
	if booking == nil {
		return domain.ErrBookingNotFound
	}
	if !changed {
		return nil
	}

	if booking.SlotID != nil {
		if _, err := s.slots.Release(ctx, *booking.SlotID, domain.SlotStatusReserved); err != nil {
			s.log.WithError(err).WithField("slot_id", *booking.SlotID).
				Error("release after cancellation failed")
		}
	}

	s.log.WithField("order_id", orderID).Info("booking cancelled")
	return nil
}

// ListUserBookings returns the caller's bookings, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func validateReserveInput(name, email string) error {
	if name == "" {
		return domain.ErrNameRequired
	}
	if email == "" {
		return domain.ErrEmailRequired
	}
	return nil
}
