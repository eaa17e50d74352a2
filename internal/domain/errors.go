package domain

import "errors"

var (
	ErrSlotNotFound     = errors.New("slot not found")
	ErrSlotUnavailable  = errors.New("slot not available")
	ErrSlotNotEditable  = errors.New("slot is not available for modification")
	ErrSlotOverlap      = errors.New("slot overlaps an existing slot")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrDuplicateOrder   = errors.New("order reference already used")
	ErrAlreadyBooked    = errors.New("an active booking already exists")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidSlotTime  = errors.New("invalid slot time")
	ErrNameRequired     = errors.New("name is required")
	ErrEmailRequired    = errors.New("email is required")
)
