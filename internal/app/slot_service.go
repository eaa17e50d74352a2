package app

import (
	"context"
	"time"

	"github.com/bharatTiffin/elitemeet-backend/internal/clock"
	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
)

// SlotAdminStore is the storage the slot administration service needs.
type SlotAdminStore interface {
	Create(ctx context.Context, slot domain.Slot) error
	Get(ctx context.Context, slotID string) (domain.Slot, error)
	ListAvailable(ctx context.Context, from, to *time.Time) ([]domain.Slot, error)
	ListByAdmin(ctx context.Context, adminID string) ([]domain.Slot, error)
	HasOverlap(ctx context.Context, adminID string, start, end time.Time, excludeID string) (bool, error)
	UpdateAvailable(ctx context.Context, slot domain.Slot) error
	DeleteAvailable(ctx context.Context, slotID, adminID string) error
}

const (
	defaultSlotDuration = 30
	defaultSlotPrice    = 500_00
)

// SlotService manages the slot catalog. Slots are only editable while
// available; booked history is immutable.
type SlotService struct {
	repo  SlotAdminStore
	clock clock.Clock
}

func NewSlotService(repo SlotAdminStore, clk clock.Clock) *SlotService {
	return &SlotService{repo: repo, clock: clk}
}

type CreateSlotInput struct {
	StartTime       time.Time
	DurationMinutes int
	Price           int64
}

// CreateSlots creates a batch of slots for an admin, rejecting the whole
// batch on the first overlap with an existing slot.
func (s *SlotService) CreateSlots(ctx context.Context, adminID string, inputs []CreateSlotInput) ([]domain.Slot, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrInvalidSlotTime
	}

	now := s.clock.Now()
	created := make([]domain.Slot, 0, len(inputs))

	for _, in := range inputs {
		if in.StartTime.IsZero() {
			return nil, domain.ErrInvalidSlotTime
		}
		duration := in.DurationMinutes
		if duration <= 0 {
			duration = defaultSlotDuration
		}
		price := in.Price
		if price <= 0 {
			price = defaultSlotPrice
		}
		end := in.StartTime.Add(time.Duration(duration) * time.Minute)

		overlap, err := s.repo.HasOverlap(ctx, adminID, in.StartTime, end, "")
		if err != nil {
			return nil, err
		}
		if overlap {
			return nil, domain.ErrSlotOverlap
		}

		slot := domain.Slot{
			ID:              newID(),
			AdminID:         adminID,
			StartTime:       in.StartTime,
			EndTime:         end,
			DurationMinutes: duration,
			Price:           price,
			Status:          domain.SlotStatusAvailable,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.Create(ctx, slot); err != nil {
			return nil, err
		}
		created = append(created, slot)
	}
	return created, nil
}

// ListAvailable returns open slots, optionally bounded to a time window.
func (s *SlotService) ListAvailable(ctx context.Context, from, to *time.Time) ([]domain.Slot, error) {
	return s.repo.ListAvailable(ctx, from, to)
}

// ListForAdmin returns every slot the admin owns, whatever the status.
func (s *SlotService) ListForAdmin(ctx context.Context, adminID string) ([]domain.Slot, error) {
	return s.repo.ListByAdmin(ctx, adminID)
}

type UpdateSlotInput struct {
	StartTime       *time.Time
	DurationMinutes *int
	Price           *int64
}

// UpdateSlot edits an available slot's timing or price.
func (s *SlotService) UpdateSlot(ctx context.Context, adminID, slotID string, in UpdateSlotInput) (domain.Slot, error) {
	slot, err := s.repo.Get(ctx, slotID)
	if err != nil {
		return domain.Slot{}, err
	}
	if slot.AdminID != adminID {
		return domain.Slot{}, domain.ErrSlotNotFound
	}
	if slot.Status != domain.SlotStatusAvailable {
		return domain.Slot{}, domain.ErrSlotNotEditable
	}

	if in.StartTime != nil {
		slot.StartTime = *in.StartTime
	}
	if in.DurationMinutes != nil && *in.DurationMinutes > 0 {
		slot.DurationMinutes = *in.DurationMinutes
	}
	if in.Price != nil && *in.Price > 0 {
		slot.Price = *in.Price
	}
	slot.EndTime = slot.StartTime.Add(time.Duration(slot.DurationMinutes) * time.Minute)

	overlap, err := s.repo.HasOverlap(ctx, adminID, slot.StartTime, slot.EndTime, slot.ID)
	if err != nil {
		return domain.Slot{}, err
	}
	if overlap {
		return domain.Slot{}, domain.ErrSlotOverlap
	}

	if err := s.repo.UpdateAvailable(ctx, slot); err != nil {
		return domain.Slot{}, err
	}
	return slot, nil
}

// DeleteSlot removes an available slot.
func (s *SlotService) DeleteSlot(ctx context.Context, adminID, slotID string) error {
	return s.repo.DeleteAvailable(ctx, slotID, adminID)
}
