package app

import (
	"context"
	"time"

	"github.com/bharatTiffin/elitemeet-backend/internal/clock"
	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
	"github.com/bharatTiffin/elitemeet-backend/internal/observability"
	"github.com/sirupsen/logrus"
)

// SlotSweeperStore is the slot-side storage the sweeper needs.
type SlotSweeperStore interface {
	ReleaseStuckReserved(ctx context.Context, cutoff time.Time) (int, error)
	Release(ctx context.Context, slotID string, from domain.SlotStatus) (bool, error)
}

// BookingSweeperStore is the booking-side storage the sweeper needs.
type BookingSweeperStore interface {
	ListExpiredPending(ctx context.Context, now time.Time) ([]domain.Booking, error)
	MarkExpired(ctx context.Context, bookingID string) (bool, error)
}

// SweepResult reports one pass of the sweeper.
type SweepResult struct {
	SlotsReleased   int
	BookingsExpired int
}

// SweeperService reclaims abandoned holds. Every release is an independent
// conditional update, so a failure mid-batch loses nothing: the next tick
// picks up where this one stopped.
type SweeperService struct {
	slots         SlotSweeperStore
	bookings      BookingSweeperStore
	clock         clock.Clock
	log           *logrus.Logger
	metrics       *observability.Metrics
	reservedGrace time.Duration
}

func NewSweeperService(
	slots SlotSweeperStore,
	bookings BookingSweeperStore,
	clk clock.Clock,
	log *logrus.Logger,
	metrics *observability.Metrics,
	reservedGrace time.Duration,
) *SweeperService {
	if reservedGrace <= 0 {
		reservedGrace = defaultHoldTTL
	}
	return &SweeperService{
		slots:         slots,
		bookings:      bookings,
		clock:         clk,
		log:           log,
		metrics:       metrics,
		reservedGrace: reservedGrace,
	}
}

// Sweep runs both passes: free slots stuck reserved past the grace period,
// then expire overdue pending bookings and conditionally release their
// slots. A slot that was confirmed or re-reserved in the meantime is left
// alone.
func (s *SweeperService) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.clock.Now()
	var result SweepResult

	released, err := s.slots.ReleaseStuckReserved(ctx, now.Add(-s.reservedGrace))
	if err != nil {
		return result, err
	}
	result.SlotsReleased += released

	expired, err := s.bookings.ListExpiredPending(ctx, now)
	if err != nil {
		return result, err
	}

	for _, booking := range expired {
		changed, err := s.bookings.MarkExpired(ctx, booking.ID)
		if err != nil {
			s.log.WithError(err).WithField("booking_id", booking.ID).
				Error("expire booking failed, will retry next tick")
			continue
		}
		if !changed {
			// A confirmation landed between the scan and this update.
			continue
		}
		result.BookingsExpired++

		if booking.SlotID != nil {
			freed, err := s.slots.Release(ctx, *booking.SlotID, domain.SlotStatusReserved)
			if err != nil {
				s.log.WithError(err).WithField("slot_id", *booking.SlotID).
					Error("release expired slot failed")
				continue
			}
			if freed {
				result.SlotsReleased++
			}
		}
	}

	s.metrics.SweepSlotsReleased.Add(float64(result.SlotsReleased))
	s.metrics.SweepBookingsExpired.Add(float64(result.BookingsExpired))

	if result.SlotsReleased > 0 || result.BookingsExpired > 0 {
		s.log.WithFields(logrus.Fields{
			"slots_released":   result.SlotsReleased,
			"bookings_expired": result.BookingsExpired,
		}).Info("sweep released abandoned holds")
	}
	return result, nil
}

// Run sweeps on the given interval until ctx is cancelled. Errors are logged
// and retried on the next tick.
func (s *SweeperService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.log.WithError(err).Error("sweep failed")
			}
		}
	}
}
