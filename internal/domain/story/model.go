package story

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits
const (
	MinTitleLength    = 5
	MaxTitleLength    = 120
	MinBodyLength     = 20
	MaxBodyLength     = 5000
	MaxMonthsTraining = 600
)

// Status constants
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusRejected  = "rejected"
)

// Review decisions
const (
	DecisionPublish = "publish"
	DecisionReject  = "reject"
)

// Domain errors
var (
	ErrNotFound        = errors.New("story not found")
	ErrEmptyMember     = errors.New("member is required")
	ErrTitleLength     = errors.New("title must be between 5 and 120 characters")
	ErrBodyLength      = errors.New("story must be between 20 and 5000 characters")
	ErrInvalidMonths   = errors.New("months training must be between 0 and 600")
	ErrInvalidStatus   = errors.New("status must be 'pending', 'published', or 'rejected'")
	ErrInvalidDecision = errors.New("decision must be 'publish' or 'reject'")
	ErrAlreadyReviewed = errors.New("story has already been reviewed")
)

// Story is a member's success story, written in markdown and moderated by admins.
type Story struct {
	ID             string
	MemberID       string
	Title          string
	Body           string
	MonthsTraining int
	Status         string
	SubmittedAt    time.Time
	ReviewedBy     string
	ReviewedAt     time.Time
}

// Validate checks if the Story has valid data.
// Lengths are counted in characters, not bytes.
func (s *Story) Validate() error {
	if s.MemberID == "" {
		return ErrEmptyMember
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(s.Title)); n < MinTitleLength || n > MaxTitleLength {
		return ErrTitleLength
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(s.Body)); n < MinBodyLength || n > MaxBodyLength {
		return ErrBodyLength
	}
	if s.MonthsTraining < 0 || s.MonthsTraining > MaxMonthsTraining {
		return ErrInvalidMonths
	}
	switch s.Status {
	case StatusPending, StatusPublished, StatusRejected:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// Review applies an admin decision to a pending story.
// PRE: reviewerID is an admin account
// POST: Status is published or rejected, review stamped
func (s *Story) Review(decision, reviewerID string, now time.Time) error {
	if s.Status != StatusPending {
		return ErrAlreadyReviewed
	}
	switch decision {
	case DecisionPublish:
		s.Status = StatusPublished
	case DecisionReject:
		s.Status = StatusRejected
	default:
		return ErrInvalidDecision
	}
	s.ReviewedBy = reviewerID
	s.ReviewedAt = now
	return nil
}

// IsPublished returns true if the story is publicly visible.
func (s *Story) IsPublished() bool {
	return s.Status == StatusPublished
}
