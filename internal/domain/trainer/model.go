package trainer

import (
	"errors"
	"strings"
	"time"
)

// Field limits
const (
	MaxNameLength          = 100
	MaxPhoneLength         = 25
	MaxCertificationLength = 120
	MaxBioLength           = 2000
	MaxExperienceYears     = 60
	MaxHourlyRateCents     = 100000
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Specialty constants
const (
	SpecialtyStrength  = "strength"
	SpecialtyCardio    = "cardio"
	SpecialtyYoga      = "yoga"
	SpecialtyPilates   = "pilates"
	SpecialtyCrossfit  = "crossfit"
	SpecialtyBoxing    = "boxing"
	SpecialtyNutrition = "nutrition"
	SpecialtyRehab     = "rehab"
)

// Specialties lists the accepted specialties in display order.
var Specialties = []string{
	SpecialtyStrength, SpecialtyCardio, SpecialtyYoga, SpecialtyPilates,
	SpecialtyCrossfit, SpecialtyBoxing, SpecialtyNutrition, SpecialtyRehab,
}

// Domain errors
var (
	ErrNotFound             = errors.New("trainer not found")
	ErrEmptyName            = errors.New("trainer name cannot be empty")
	ErrNameTooLong          = errors.New("trainer name cannot exceed 100 characters")
	ErrInvalidEmail         = errors.New("trainer email must be valid")
	ErrInvalidSpecialty     = errors.New("specialty is not recognised")
	ErrEmptyCertification   = errors.New("certification is required")
	ErrCertificationTooLong = errors.New("certification cannot exceed 120 characters")
	ErrInvalidExperience    = errors.New("experience must be between 0 and 60 years")
	ErrInvalidRate          = errors.New("hourly rate must be between 0 and 1000.00")
	ErrBioTooLong           = errors.New("bio cannot exceed 2000 characters")
	ErrInvalidStatus        = errors.New("status must be 'active' or 'inactive'")
	ErrAlreadyInactive      = errors.New("trainer is already inactive")
	ErrInactive             = errors.New("trainer is inactive")
)

// Trainer is a staff profile used for class assignment.
type Trainer struct {
	ID              string
	AccountID       string
	Name            string
	Email           string
	Phone           string
	Specialty       string
	Certification   string
	ExperienceYears int
	HourlyRateCents int
	Bio             string
	Status          string
	HiredOn         time.Time
}

// Validate checks if the Trainer has valid data.
// PRE: Trainer struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Trainer) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !strings.Contains(t.Email, "@") {
		return ErrInvalidEmail
	}
	if !IsValidSpecialty(t.Specialty) {
		return ErrInvalidSpecialty
	}
	if strings.TrimSpace(t.Certification) == "" {
		return ErrEmptyCertification
	}
	if len(t.Certification) > MaxCertificationLength {
		return ErrCertificationTooLong
	}
	if t.ExperienceYears < 0 || t.ExperienceYears > MaxExperienceYears {
		return ErrInvalidExperience
	}
	if t.HourlyRateCents < 0 || t.HourlyRateCents > MaxHourlyRateCents {
		return ErrInvalidRate
	}
	if len(t.Bio) > MaxBioLength {
		return ErrBioTooLong
	}
	if t.Status != StatusActive && t.Status != StatusInactive {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive returns true if the trainer can take classes.
func (t *Trainer) IsActive() bool {
	return t.Status == StatusActive
}

// Deactivate removes the trainer from the assignable pool.
func (t *Trainer) Deactivate() error {
	if t.Status == StatusInactive {
		return ErrAlreadyInactive
	}
	t.Status = StatusInactive
	return nil
}

// IsValidSpecialty reports whether s is a known specialty.
func IsValidSpecialty(s string) bool {
	for _, v := range Specialties {
		if v == s {
			return true
		}
	}
	return false
}
