package app

import (
	"context"

	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
	"github.com/bharatTiffin/elitemeet-backend/internal/observability"
	"github.com/sirupsen/logrus"
)

// SlotReconcileStore is the slot-side storage the reconciliation pass needs.
type SlotReconcileStore interface {
	Get(ctx context.Context, slotID string) (domain.Slot, error)
	Finalize(ctx context.Context, slotID, userID string) error
}

// BookingReconcileStore lists confirmed slot-bound bookings.
type BookingReconcileStore interface {
	ListConfirmedWithSlot(ctx context.Context) ([]domain.Booking, error)
}

// ReconcileResult reports one repair pass.
type ReconcileResult struct {
	AlreadyCorrect int
	Fixed          int
	Errored        int
}

// ReconcileService is the backstop for the race-tolerant paths: every
// confirmed booking's slot must be booked by its holder. Running it twice in
// a row fixes nothing the second time.
type ReconcileService struct {
	slots    SlotReconcileStore
	bookings BookingReconcileStore
	log      *logrus.Logger
	metrics  *observability.Metrics
}

func NewReconcileService(
	slots SlotReconcileStore,
	bookings BookingReconcileStore,
	log *logrus.Logger,
	metrics *observability.Metrics,
) *ReconcileService {
	return &ReconcileService{slots: slots, bookings: bookings, log: log, metrics: metrics}
}

func (s *ReconcileService) Reconcile(ctx context.Context) (ReconcileResult, error) {
	bookings, err := s.bookings.ListConfirmedWithSlot(ctx)
	if err != nil {
		return ReconcileResult{}, err
	}

	var result ReconcileResult
	for _, booking := range bookings {
		slot, err := s.slots.Get(ctx, *booking.SlotID)
		if err != nil {
			s.log.WithError(err).WithField("booking_id", booking.ID).
				Error("reconcile: slot lookup failed")
			result.Errored++
			continue
		}

		if slot.Status == domain.SlotStatusBooked {
			result.AlreadyCorrect++
			continue
		}

		if err := s.slots.Finalize(ctx, slot.ID, booking.UserID); err != nil {
			s.log.WithError(err).WithField("slot_id", slot.ID).
				Error("reconcile: finalize failed")
			result.Errored++
			continue
		}

		s.log.WithFields(logrus.Fields{
			"slot_id":     slot.ID,
			"booking_id":  booking.ID,
			"from_status": slot.Status,
		}).Info("reconcile: repaired slot")
		result.Fixed++
	}

	s.metrics.ReconcileFixed.Add(float64(result.Fixed))
	return result, nil
}
