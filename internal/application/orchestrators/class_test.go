package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	bookingstore "gymhub/internal/adapters/storage/booking"
	"gymhub/internal/application/validation"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/booking"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/member"
	"gymhub/internal/domain/outbox"
	"gymhub/internal/domain/trainer"
)

var (
	adminActor   = Actor{AccountID: "acc-admin", Role: account.RoleAdmin}
	trainerActor = Actor{AccountID: "acc-riley", Role: account.RoleTrainer}
	memberActor  = Actor{AccountID: "acc-sam", Role: account.RoleMember}
)

func classTrainers() *mockTrainerStore {
	return newMockTrainerStore(
		trainer.Trainer{ID: "t-riley", AccountID: "acc-riley", Name: "Riley", Status: trainer.StatusActive},
		trainer.Trainer{ID: "t-noor", AccountID: "acc-noor", Name: "Noor", Status: trainer.StatusActive},
		trainer.Trainer{ID: "t-gone", AccountID: "acc-gone", Name: "Gone", Status: trainer.StatusInactive},
	)
}

// existingClass runs tomorrow 09:00-10:00 for t-riley.
func existingClass() gymclass.Class {
	return gymclass.Class{
		ID: "c-existing", Name: "Morning Strength", TrainerID: "t-riley",
		StartsAt: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), DurationMinutes: 60, Capacity: 10,
		Status: gymclass.StatusScheduled,
	}
}

func classInput(actor Actor, trainerID, start string, minutes int) CreateClassInput {
	return CreateClassInput{
		Actor: actor, TrainerID: trainerID, Name: "Power Hour", StartsAt: start,
		DurationMinutes: minutes, Capacity: 12, Room: "Weights room",
	}
}

func TestExecuteCreateClass(t *testing.T) {
	tests := []struct {
		name        string
		input       CreateClassInput
		wantTrainer string
		wantErr     error  // checked with errors.Is
		wantMsg     string // checked against validation messages
	}{
		{name: "admin picks trainer", input: classInput(adminActor, "t-noor", "2026-03-11T09:30", 60), wantTrainer: "t-noor"},
		{name: "trainer creates own", input: classInput(trainerActor, "", "2026-03-11T10:00", 45), wantTrainer: "t-riley"},
		{name: "back to back is allowed", input: classInput(trainerActor, "t-riley", "2026-03-11T08:00", 60), wantTrainer: "t-riley"},
		{name: "overlap rejected", input: classInput(adminActor, "t-riley", "2026-03-11T09:30", 60), wantMsg: gymclass.ErrTrainerOverlap.Error()},
		{name: "long earlier class overlaps", input: classInput(adminActor, "t-riley", "2026-03-11T07:00", 150), wantMsg: gymclass.ErrTrainerOverlap.Error()},
		{name: "trainer for someone else", input: classInput(trainerActor, "t-noor", "2026-03-12T09:00", 60), wantErr: gymclass.ErrNotOwner},
		{name: "member forbidden", input: classInput(memberActor, "t-noor", "2026-03-12T09:00", 60), wantErr: ErrForbidden},
		{name: "in the past", input: classInput(adminActor, "t-noor", "2026-03-10T11:00", 60), wantMsg: gymclass.ErrInPast.Error()},
		{name: "inactive trainer", input: classInput(adminActor, "t-gone", "2026-03-12T09:00", 60), wantMsg: trainer.ErrInactive.Error()},
		{name: "unknown trainer", input: classInput(adminActor, "t-who", "2026-03-12T09:00", 60), wantMsg: trainer.ErrNotFound.Error()},
		{name: "admin without trainer", input: classInput(adminActor, "", "2026-03-12T09:00", 60), wantMsg: gymclass.ErrEmptyTrainer.Error()},
		{name: "duration too short", input: classInput(adminActor, "t-noor", "2026-03-12T09:00", 10), wantMsg: "Duration must be at least 15"},
		{name: "bad start format", input: classInput(adminActor, "t-noor", "tomorrow", 60), wantMsg: "Start time must be a date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classes := newMockClassStore(existingClass())
			c, err := ExecuteCreateClass(context.Background(), tt.input, CreateClassDeps{
				TrainerStore: classTrainers(), ClassStore: classes, GenerateID: sequentialIDs(), Now: fixedNow,
			})

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.wantMsg != "":
				if msgs := validation.Messages(err); len(msgs) == 0 || !strings.Contains(msgs[0], tt.wantMsg) {
					t.Fatalf("messages = %v, want %q (err %v)", msgs, tt.wantMsg, err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if c.TrainerID != tt.wantTrainer || c.Status != gymclass.StatusScheduled {
					t.Errorf("class = %+v", c)
				}
				if _, ok := classes.classes[c.ID]; !ok {
					t.Error("class not saved")
				}
				return
			}
			if len(classes.classes) != 1 {
				t.Errorf("classes = %d, want only the existing one", len(classes.classes))
			}
		})
	}
}

func TestExecuteCreateClass_Location(t *testing.T) {
	loc := time.FixedZone("NZDT", 13*3600)
	classes := newMockClassStore()
	c, err := ExecuteCreateClass(context.Background(), classInput(adminActor, "t-noor", "2026-03-12T06:00", 60), CreateClassDeps{
		TrainerStore: classTrainers(), ClassStore: classes, GenerateID: sequentialIDs(), Now: fixedNow, Location: loc,
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 3, 11, 17, 0, 0, 0, time.UTC); !c.StartsAt.Equal(want) || c.StartsAt.Location() != time.UTC {
		t.Errorf("starts at = %v, want %v", c.StartsAt, want)
	}
}

func cancelFixture() (*mockClassStore, *mockBookingStore, *mockOutbox, CancelClassDeps) {
	classes := newMockClassStore(existingClass())
	bookings := newMockBookingStore()
	bookings.roster["c-existing"] = []bookingstore.RosterEntry{
		{BookingID: "b1", MemberID: "m1", MemberName: "Sam", MemberEmail: "sam@gym.test"},
		{BookingID: "b2", MemberID: "m2", MemberName: "Jo", MemberEmail: "jo@gym.test"},
	}
	box := newMockOutbox()
	return classes, bookings, box, CancelClassDeps{
		ClassStore: classes, Roster: bookings, TrainerStore: classTrainers(), Outbox: box,
		GenerateID: sequentialIDs(), Now: fixedNow,
	}
}

func TestExecuteCancelClass_NotifiesRoster(t *testing.T) {
	for _, actor := range []Actor{adminActor, trainerActor} {
		t.Run(actor.Role, func(t *testing.T) {
			classes, _, box, deps := cancelFixture()
			n, err := ExecuteCancelClass(context.Background(), CancelClassInput{Actor: actor, ClassID: "c-existing"}, deps)
			if err != nil {
				t.Fatal(err)
			}
			if n != 2 {
				t.Errorf("notified = %d, want 2", n)
			}
			if classes.classes["c-existing"].Status != gymclass.StatusCancelled {
				t.Error("class not cancelled")
			}
			for _, e := range box.emails() {
				if e.Kind != outbox.KindClassCancelled || !strings.Contains(e.Subject, "Morning Strength") {
					t.Errorf("email = %+v", e)
				}
			}
		})
	}
}

func TestExecuteCancelClass_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		setup   func(*mockClassStore)
		wantErr error
		wantMsg string
	}{
		{name: "other trainer", actor: Actor{AccountID: "acc-noor", Role: account.RoleTrainer}, wantErr: gymclass.ErrNotOwner},
		{name: "member", actor: memberActor, wantErr: ErrForbidden},
		{name: "already cancelled", actor: adminActor, setup: func(s *mockClassStore) {
			c := s.classes["c-existing"]
			c.Status = gymclass.StatusCancelled
			s.classes["c-existing"] = c
		}, wantMsg: gymclass.ErrAlreadyCancelled.Error()},
		{name: "already started", actor: adminActor, setup: func(s *mockClassStore) {
			c := s.classes["c-existing"]
			c.StartsAt = fixedTime.Add(-10 * time.Minute)
			s.classes["c-existing"] = c
		}, wantMsg: gymclass.ErrAlreadyStarted.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classes, _, box, deps := cancelFixture()
			if tt.setup != nil {
				tt.setup(classes)
			}
			_, err := ExecuteCancelClass(context.Background(), CancelClassInput{Actor: tt.actor, ClassID: "c-existing"}, deps)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				if msgs := validation.Messages(err); len(msgs) != 1 || msgs[0] != tt.wantMsg {
					t.Fatalf("messages = %v, want %q", msgs, tt.wantMsg)
				}
			}
			if len(classes.cancelled) != 0 || len(box.entries) != 0 {
				t.Error("rejected cancel left side effects")
			}
		})
	}
}

func TestExecuteBookClass(t *testing.T) {
	active := member.Member{ID: "m1", AccountID: "acc-sam", Status: member.StatusActive}
	expired := member.Member{ID: "m1", AccountID: "acc-sam", Status: member.StatusExpired}

	tests := []struct {
		name    string
		stored  member.Member
		bookErr error
		wantMsg string
	}{
		{name: "active member books", stored: active},
		{name: "expired member", stored: expired, wantMsg: member.ErrNotActive.Error()},
		{name: "class full", stored: active, bookErr: booking.ErrClassFull, wantMsg: booking.ErrClassFull.Error()},
		{name: "already booked", stored: active, bookErr: booking.ErrAlreadyBooked, wantMsg: booking.ErrAlreadyBooked.Error()},
		{name: "class cancelled", stored: active, bookErr: gymclass.ErrAlreadyCancelled, wantMsg: gymclass.ErrAlreadyCancelled.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := newMockBookingStore()
			bookings.bookErr = tt.bookErr
			b, err := ExecuteBookClass(context.Background(), BookClassInput{AccountID: "acc-sam", ClassID: "c-existing"}, BookClassDeps{
				MemberStore: newMockMemberStore(tt.stored), BookingStore: bookings, GenerateID: sequentialIDs(), Now: fixedNow,
			})
			if tt.wantMsg != "" {
				if msgs := validation.Messages(err); len(msgs) != 1 || msgs[0] != tt.wantMsg {
					t.Fatalf("messages = %v, want %q (err %v)", msgs, tt.wantMsg, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if b.MemberID != "m1" || b.Status != booking.StatusBooked || !b.BookedAt.Equal(fixedTime) {
				t.Errorf("booking = %+v", b)
			}
		})
	}
}

func TestExecuteBookClass_StoreError(t *testing.T) {
	bookings := newMockBookingStore()
	bookings.bookErr = errStoreDown
	_, err := ExecuteBookClass(context.Background(), BookClassInput{AccountID: "acc-sam", ClassID: "c1"}, BookClassDeps{
		MemberStore:  newMockMemberStore(member.Member{ID: "m1", AccountID: "acc-sam", Status: member.StatusActive}),
		BookingStore: bookings,
	})
	if !errors.Is(err, errStoreDown) || validation.Messages(err) != nil {
		t.Fatalf("err = %v", err)
	}
}

func TestExecuteCancelBooking(t *testing.T) {
	future := existingClass()
	started := existingClass()
	started.StartsAt = fixedTime.Add(-time.Minute)

	tests := []struct {
		name      string
		accountID string
		class     gymclass.Class
		status    string
		wantErr   error
		wantMsg   string
	}{
		{name: "own booking before start", accountID: "acc-sam", class: future, status: booking.StatusBooked},
		{name: "someone else's booking", accountID: "acc-jo", class: future, status: booking.StatusBooked, wantErr: booking.ErrNotOwner},
		{name: "class started", accountID: "acc-sam", class: started, status: booking.StatusBooked, wantMsg: booking.ErrClassStarted.Error()},
		{name: "already cancelled", accountID: "acc-sam", class: future, status: booking.StatusCancelled, wantMsg: booking.ErrAlreadyCancelled.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := newMockBookingStore(booking.Booking{ID: "b1", ClassID: "c-existing", MemberID: "m1", Status: tt.status})
			err := ExecuteCancelBooking(context.Background(), CancelBookingInput{AccountID: tt.accountID, BookingID: "b1"}, CancelBookingDeps{
				MemberStore: newMockMemberStore(
					member.Member{ID: "m1", AccountID: "acc-sam"},
					member.Member{ID: "m2", AccountID: "acc-jo"},
				),
				BookingStore: bookings,
				ClassStore:   newMockClassStore(tt.class),
				Now:          fixedNow,
			})
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.wantMsg != "":
				if msgs := validation.Messages(err); len(msgs) != 1 || msgs[0] != tt.wantMsg {
					t.Fatalf("messages = %v, want %q", msgs, tt.wantMsg)
				}
			default:
				if err != nil {
					t.Fatal(err)
				}
				if bookings.bookings["b1"].Status != booking.StatusCancelled {
					t.Error("booking not cancelled")
				}
			}
		})
	}
}
