package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

// BookingKind selects the product family a booking belongs to. Entitlement
// checks are keyed by (user, kind) so the same state machine serves both
// slot-bound consultations and slot-less mentorship enrollments.
type BookingKind string

const (
	KindConsultation BookingKind = "consultation"
	KindMentorship   BookingKind = "mentorship"
)

// Booking records one user's paid (or in-flight) claim on a product.
// OrderID is the provider order reference and the join key for asynchronous
// payment events; it is globally unique. Bookings leave pending exactly once
// and are never deleted.
type Booking struct {
	ID        string
	UserID    string
	UserName  string
	UserEmail string
	Purpose   string
	Kind      BookingKind
	// SlotID is nil for mentorship enrollments.
	SlotID *string
	// Amount is in minor currency units.
	Amount           int64
	Currency         string
	Status           BookingStatus
	OrderID          string
	PaymentID        *string
	PaymentSignature *string
	ExpiresAt        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Terminal reports whether the booking can no longer change state.
func (b Booking) Terminal() bool {
	return b.Status != BookingStatusPending
}

// Exclusive reports whether a user may hold at most one active booking of
// this kind. Consultations can be bought repeatedly; the mentorship program
// is a one-per-user product.
func (k BookingKind) Exclusive() bool {
	return k == KindMentorship
}
