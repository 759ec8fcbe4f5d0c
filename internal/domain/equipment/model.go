package equipment

import (
	"errors"
	"strings"
	"time"
)

// Field limits
const (
	MaxNameLength    = 100
	MaxSerialLength  = 64
	MaxNotesLength   = 500
	MaxPurchaseCents = 10000000
	DateLayout       = "2006-01-02"
)

// Category constants
const (
	CategoryCardio      = "cardio"
	CategoryStrength    = "strength"
	CategoryFreeWeights = "free_weights"
	CategoryFunctional  = "functional"
	CategoryOther       = "other"
)

// Categories lists the accepted categories in display order.
var Categories = []string{CategoryCardio, CategoryStrength, CategoryFreeWeights, CategoryFunctional, CategoryOther}

// Status constants
const (
	StatusOperational = "operational"
	StatusMaintenance = "maintenance"
	StatusRetired     = "retired"
)

// Statuses lists the accepted statuses in display order.
var Statuses = []string{StatusOperational, StatusMaintenance, StatusRetired}

// Domain errors
var (
	ErrNotFound          = errors.New("equipment not found")
	ErrEmptyName         = errors.New("equipment name cannot be empty")
	ErrNameTooLong       = errors.New("equipment name cannot exceed 100 characters")
	ErrInvalidCategory   = errors.New("category is not recognised")
	ErrEmptySerial       = errors.New("serial number is required")
	ErrSerialTooLong     = errors.New("serial number cannot exceed 64 characters")
	ErrDuplicateSerial   = errors.New("serial number is already registered")
	ErrEmptyPurchaseDate = errors.New("purchase date is required")
	ErrFuturePurchase    = errors.New("purchase date cannot be in the future")
	ErrInvalidPrice      = errors.New("purchase price must be between 0 and 100000.00")
	ErrInvalidStatus     = errors.New("status must be 'operational', 'maintenance', or 'retired'")
	ErrNotesTooLong      = errors.New("notes cannot exceed 500 characters")
	ErrRetired           = errors.New("retired equipment cannot change status")
	ErrSameStatus        = errors.New("equipment already has that status")
)

// Equipment is an asset in the gym register.
type Equipment struct {
	ID                 string
	Name               string
	Category           string
	SerialNumber       string
	PurchaseDate       time.Time
	PurchasePriceCents int
	Status             string
	LastServicedOn     time.Time
	Notes              string
	CreatedAt          time.Time
}

// Validate checks if the Equipment has valid data against today's date.
// PRE: Equipment struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Equipment) Validate(today time.Time) error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len(e.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !isOneOf(e.Category, Categories) {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(e.SerialNumber) == "" {
		return ErrEmptySerial
	}
	if len(e.SerialNumber) > MaxSerialLength {
		return ErrSerialTooLong
	}
	if e.PurchaseDate.IsZero() {
		return ErrEmptyPurchaseDate
	}
	if e.PurchaseDate.After(today) {
		return ErrFuturePurchase
	}
	if e.PurchasePriceCents < 0 || e.PurchasePriceCents > MaxPurchaseCents {
		return ErrInvalidPrice
	}
	if !isOneOf(e.Status, Statuses) {
		return ErrInvalidStatus
	}
	if len(e.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// TransitionTo moves the equipment to status. Retired is terminal.
// Returning to operational from maintenance stamps LastServicedOn.
// PRE: status is a known status
// POST: Status updated or an error describing the rejected move
func (e *Equipment) TransitionTo(status string, today time.Time) error {
	if !isOneOf(status, Statuses) {
		return ErrInvalidStatus
	}
	if e.Status == StatusRetired {
		return ErrRetired
	}
	if e.Status == status {
		return ErrSameStatus
	}
	if e.Status == StatusMaintenance && status == StatusOperational {
		e.LastServicedOn = today
	}
	e.Status = status
	return nil
}

// IsAvailable returns true when the equipment can be used on the floor.
func (e *Equipment) IsAvailable() bool {
	return e.Status == StatusOperational
}

func isOneOf(s string, options []string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
