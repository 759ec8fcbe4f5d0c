package gymclass_test

import (
	"strings"
	"testing"
	"time"

	"gymhub/internal/domain/gymclass"
)

var start = time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)

func validClass() gymclass.Class {
	return gymclass.Class{
		ID:              "c1",
		Name:            "Evening HIIT",
		TrainerID:       "t1",
		StartsAt:        start,
		DurationMinutes: 45,
		Capacity:        20,
		Room:            "Studio A",
		Status:          gymclass.StatusScheduled,
	}
}

// TestClassValidation tests validation of Class.
func TestClassValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *gymclass.Class)
		wantErr error
	}{
		{name: "valid class", mutate: func(c *gymclass.Class) {}},
		{name: "empty name", mutate: func(c *gymclass.Class) { c.Name = "" }, wantErr: gymclass.ErrEmptyName},
		{name: "long description", mutate: func(c *gymclass.Class) { c.Description = strings.Repeat("d", 1001) }, wantErr: gymclass.ErrDescriptionTooLong},
		{name: "no trainer", mutate: func(c *gymclass.Class) { c.TrainerID = "" }, wantErr: gymclass.ErrEmptyTrainer},
		{name: "no start", mutate: func(c *gymclass.Class) { c.StartsAt = time.Time{} }, wantErr: gymclass.ErrEmptyStart},
		{name: "duration too short", mutate: func(c *gymclass.Class) { c.DurationMinutes = 14 }, wantErr: gymclass.ErrInvalidDuration},
		{name: "duration too long", mutate: func(c *gymclass.Class) { c.DurationMinutes = 241 }, wantErr: gymclass.ErrInvalidDuration},
		{name: "zero capacity", mutate: func(c *gymclass.Class) { c.Capacity = 0 }, wantErr: gymclass.ErrInvalidCapacity},
		{name: "capacity too large", mutate: func(c *gymclass.Class) { c.Capacity = 101 }, wantErr: gymclass.ErrInvalidCapacity},
		{name: "room too long", mutate: func(c *gymclass.Class) { c.Room = strings.Repeat("r", 51) }, wantErr: gymclass.ErrRoomTooLong},
		{name: "bad status", mutate: func(c *gymclass.Class) { c.Status = "done" }, wantErr: gymclass.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validClass()
			tt.mutate(&c)
			if err := c.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestClassOverlaps verifies half-open interval overlap.
func TestClassOverlaps(t *testing.T) {
	base := validClass()

	tests := []struct {
		name     string
		offset   time.Duration
		duration int
		status   string
		want     bool
	}{
		{name: "same slot", offset: 0, duration: 45, want: true},
		{name: "starts inside", offset: 30 * time.Minute, duration: 30, want: true},
		{name: "ends inside", offset: -30 * time.Minute, duration: 45, want: true},
		{name: "back to back after", offset: 45 * time.Minute, duration: 30, want: false},
		{name: "back to back before", offset: -30 * time.Minute, duration: 30, want: false},
		{name: "cancelled never overlaps", offset: 0, duration: 45, status: gymclass.StatusCancelled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := validClass()
			other.StartsAt = start.Add(tt.offset)
			other.DurationMinutes = tt.duration
			if tt.status != "" {
				other.Status = tt.status
			}
			if got := base.Overlaps(other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestClassCancel verifies cancel is reported once.
func TestClassCancel(t *testing.T) {
	c := validClass()
	if !c.IsUpcoming(start.Add(-time.Hour)) {
		t.Error("class should be upcoming before start")
	}
	if err := c.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if c.IsUpcoming(start.Add(-time.Hour)) {
		t.Error("cancelled class should not be upcoming")
	}
	if err := c.Cancel(); err != gymclass.ErrAlreadyCancelled {
		t.Errorf("second Cancel = %v, want ErrAlreadyCancelled", err)
	}
}
