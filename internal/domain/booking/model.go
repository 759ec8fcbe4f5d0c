package booking

import (
	"errors"
	"time"
)

// Status constants
const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

// Domain errors
var (
	ErrNotFound         = errors.New("booking not found")
	ErrEmptyClass       = errors.New("class is required")
	ErrEmptyMember      = errors.New("member is required")
	ErrInvalidStatus    = errors.New("status must be 'booked' or 'cancelled'")
	ErrClassFull        = errors.New("class is full")
	ErrAlreadyBooked    = errors.New("you have already booked this class")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrNotOwner         = errors.New("booking belongs to another member")
	ErrClassStarted     = errors.New("class has already started")
)

// Booking reserves a member's place in a class.
type Booking struct {
	ID       string
	ClassID  string
	MemberID string
	Status   string
	BookedAt time.Time
}

// Validate checks if the Booking has valid data.
func (b *Booking) Validate() error {
	if b.ClassID == "" {
		return ErrEmptyClass
	}
	if b.MemberID == "" {
		return ErrEmptyMember
	}
	if b.Status != StatusBooked && b.Status != StatusCancelled {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive returns true if the booking holds a place.
func (b *Booking) IsActive() bool {
	return b.Status == StatusBooked
}

// Cancel releases the place.
// PRE: memberID is the acting member
// POST: Status is cancelled
func (b *Booking) Cancel(memberID string) error {
	if b.MemberID != memberID {
		return ErrNotOwner
	}
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	b.Status = StatusCancelled
	return nil
}

// SpotsLeft returns the remaining places for a class, never negative.
func SpotsLeft(capacity, booked int) int {
	if booked >= capacity {
		return 0
	}
	return capacity - booked
}
