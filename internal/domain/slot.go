package domain

import "time"

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusReserved  SlotStatus = "reserved"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusCompleted SlotStatus = "completed"
	SlotStatusCancelled SlotStatus = "cancelled"
)

// Slot is a bookable consultation window owned by an admin. At most one
// non-cancelled booking may hold a slot; all status changes go through
// conditional updates in storage, never read-modify-write.
type Slot struct {
	ID              string
	AdminID         string
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
	// Price is in minor currency units (paise).
	Price      int64
	Status     SlotStatus
	ReservedBy *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
