package gymclass

import (
	"errors"
	"strings"
	"time"
)

// Field limits
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 1000
	MaxRoomLength        = 50
	MinDurationMinutes   = 15
	MaxDurationMinutes   = 240
	MinCapacity          = 1
	MaxCapacity          = 100
)

// Status constants
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Domain errors
var (
	ErrNotFound           = errors.New("class not found")
	ErrEmptyName          = errors.New("class name cannot be empty")
	ErrNameTooLong        = errors.New("class name cannot exceed 100 characters")
	ErrDescriptionTooLong = errors.New("description cannot exceed 1000 characters")
	ErrEmptyTrainer       = errors.New("a trainer must be assigned")
	ErrEmptyStart         = errors.New("start time is required")
	ErrInvalidDuration    = errors.New("duration must be between 15 and 240 minutes")
	ErrInvalidCapacity    = errors.New("capacity must be between 1 and 100")
	ErrRoomTooLong        = errors.New("room cannot exceed 50 characters")
	ErrInvalidStatus      = errors.New("status must be 'scheduled' or 'cancelled'")
	ErrInPast             = errors.New("class must start in the future")
	ErrAlreadyCancelled   = errors.New("class is already cancelled")
	ErrAlreadyStarted     = errors.New("class has already started")
	ErrTrainerOverlap     = errors.New("trainer already has a class at that time")
	ErrNotOwner           = errors.New("trainers can only manage their own classes")
)

// Class is a scheduled group session.
type Class struct {
	ID              string
	Name            string
	Description     string
	TrainerID       string
	StartsAt        time.Time
	DurationMinutes int
	Capacity        int
	Room            string
	Status          string
	CreatedAt       time.Time
}

// Validate checks if the Class has valid data.
// PRE: Class struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Class) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(c.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if c.TrainerID == "" {
		return ErrEmptyTrainer
	}
	if c.StartsAt.IsZero() {
		return ErrEmptyStart
	}
	if c.DurationMinutes < MinDurationMinutes || c.DurationMinutes > MaxDurationMinutes {
		return ErrInvalidDuration
	}
	if c.Capacity < MinCapacity || c.Capacity > MaxCapacity {
		return ErrInvalidCapacity
	}
	if len(c.Room) > MaxRoomLength {
		return ErrRoomTooLong
	}
	if c.Status != StatusScheduled && c.Status != StatusCancelled {
		return ErrInvalidStatus
	}
	return nil
}

// EndsAt returns the end of the session.
func (c *Class) EndsAt() time.Time {
	return c.StartsAt.Add(time.Duration(c.DurationMinutes) * time.Minute)
}

// Overlaps reports whether c and other share any time. Cancelled classes never overlap.
// Intervals are half-open, so back-to-back sessions are allowed.
func (c *Class) Overlaps(other Class) bool {
	if c.Status == StatusCancelled || other.Status == StatusCancelled {
		return false
	}
	return c.StartsAt.Before(other.EndsAt()) && other.StartsAt.Before(c.EndsAt())
}

// IsUpcoming reports whether the class is scheduled and has not started.
func (c *Class) IsUpcoming(now time.Time) bool {
	return c.Status == StatusScheduled && c.StartsAt.After(now)
}

// Cancel marks a scheduled class as cancelled.
func (c *Class) Cancel() error {
	if c.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	c.Status = StatusCancelled
	return nil
}
