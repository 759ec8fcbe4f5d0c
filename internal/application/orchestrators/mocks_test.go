package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingstore "gymhub/internal/adapters/storage/booking"
	memberstore "gymhub/internal/adapters/storage/member"
	trainerstore "gymhub/internal/adapters/storage/trainer"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/booking"
	"gymhub/internal/domain/equipment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/member"
	"gymhub/internal/domain/outbox"
	"gymhub/internal/domain/payment"
	"gymhub/internal/domain/story"
	"gymhub/internal/domain/trainer"
)

var fixedTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var errStoreDown = errors.New("store unavailable")

// --- accounts ---

type mockAccountStore struct {
	accounts map[string]account.Account
	saveErr  error
}

func newMockAccountStore(accts ...account.Account) *mockAccountStore {
	s := &mockAccountStore{accounts: make(map[string]account.Account)}
	for _, a := range accts {
		s.accounts[a.ID] = a
	}
	return s
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

// --- members ---

type mockMemberStore struct {
	members  map[string]member.Member
	accounts map[string]account.Account
	saveErr  error
}

func newMockMemberStore(ms ...member.Member) *mockMemberStore {
	s := &mockMemberStore{members: make(map[string]member.Member), accounts: make(map[string]account.Account)}
	for _, m := range ms {
		s.members[m.ID] = m
	}
	return s
}

func (s *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	return m, nil
}

func (s *mockMemberStore) GetByAccountID(_ context.Context, accountID string) (member.Member, error) {
	for _, m := range s.members {
		if m.AccountID == accountID {
			return m, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (s *mockMemberStore) Save(_ context.Context, m member.Member) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.members[m.ID] = m
	return nil
}

func (s *mockMemberStore) CreateWithAccount(_ context.Context, m member.Member, a account.Account) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	for _, existing := range s.members {
		if strings.EqualFold(existing.Email, m.Email) {
			return memberstore.ErrDuplicateEmail
		}
	}
	s.members[m.ID] = m
	s.accounts[a.ID] = a
	return nil
}

func (s *mockMemberStore) ListLapsed(_ context.Context, today time.Time) ([]member.Member, error) {
	var out []member.Member
	for _, m := range s.members {
		if m.Status == member.StatusActive && !m.ExpiresOn.IsZero() && m.ExpiresOn.Before(today.Truncate(24*time.Hour)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *mockMemberStore) Update(_ context.Context, id string, change func(*member.Member) error) (member.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	if err := change(&m); err != nil {
		return member.Member{}, err
	}
	if s.saveErr != nil {
		return member.Member{}, s.saveErr
	}
	s.members[id] = m
	return m, nil
}

func (s *mockMemberStore) ExpireIfLapsed(_ context.Context, id string, today time.Time) (bool, error) {
	if s.saveErr != nil {
		return false, s.saveErr
	}
	m, ok := s.members[id]
	if !ok || !m.Expire(today) {
		return false, nil
	}
	s.members[id] = m
	return true, nil
}

// --- trainers ---

type mockTrainerStore struct {
	trainers map[string]trainer.Trainer
	accounts map[string]account.Account
}

func newMockTrainerStore(ts ...trainer.Trainer) *mockTrainerStore {
	s := &mockTrainerStore{trainers: make(map[string]trainer.Trainer), accounts: make(map[string]account.Account)}
	for _, t := range ts {
		s.trainers[t.ID] = t
	}
	return s
}

func (s *mockTrainerStore) GetByID(_ context.Context, id string) (trainer.Trainer, error) {
	t, ok := s.trainers[id]
	if !ok {
		return trainer.Trainer{}, trainer.ErrNotFound
	}
	return t, nil
}

func (s *mockTrainerStore) GetByAccountID(_ context.Context, accountID string) (trainer.Trainer, error) {
	for _, t := range s.trainers {
		if t.AccountID == accountID {
			return t, nil
		}
	}
	return trainer.Trainer{}, trainer.ErrNotFound
}

func (s *mockTrainerStore) Save(_ context.Context, t trainer.Trainer) error {
	s.trainers[t.ID] = t
	return nil
}

func (s *mockTrainerStore) CreateWithAccount(_ context.Context, t trainer.Trainer, a account.Account) error {
	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return trainerstore.ErrDuplicateEmail
		}
	}
	s.trainers[t.ID] = t
	s.accounts[a.ID] = a
	return nil
}

// --- classes and bookings ---

type mockClassStore struct {
	classes   map[string]gymclass.Class
	cancelled []string
}

func newMockClassStore(cs ...gymclass.Class) *mockClassStore {
	s := &mockClassStore{classes: make(map[string]gymclass.Class)}
	for _, c := range cs {
		s.classes[c.ID] = c
	}
	return s
}

func (s *mockClassStore) GetByID(_ context.Context, id string) (gymclass.Class, error) {
	c, ok := s.classes[id]
	if !ok {
		return gymclass.Class{}, gymclass.ErrNotFound
	}
	return c, nil
}

func (s *mockClassStore) Save(_ context.Context, c gymclass.Class) error {
	s.classes[c.ID] = c
	return nil
}

func (s *mockClassStore) CreateUnlessOverlapping(_ context.Context, c gymclass.Class) (gymclass.Class, error) {
	for _, other := range s.classes {
		if other.TrainerID == c.TrainerID && other.ID != c.ID && c.Overlaps(other) {
			return other, gymclass.ErrTrainerOverlap
		}
	}
	s.classes[c.ID] = c
	return gymclass.Class{}, nil
}

func (s *mockClassStore) CancelWithBookings(_ context.Context, id string) error {
	c, ok := s.classes[id]
	if !ok {
		return gymclass.ErrNotFound
	}
	if err := c.Cancel(); err != nil {
		return err
	}
	s.classes[id] = c
	s.cancelled = append(s.cancelled, id)
	return nil
}

type mockBookingStore struct {
	bookings map[string]booking.Booking
	bookErr  error
	roster   map[string][]bookingstore.RosterEntry
}

func newMockBookingStore(bs ...booking.Booking) *mockBookingStore {
	s := &mockBookingStore{bookings: make(map[string]booking.Booking), roster: make(map[string][]bookingstore.RosterEntry)}
	for _, b := range bs {
		s.bookings[b.ID] = b
	}
	return s
}

func (s *mockBookingStore) GetByID(_ context.Context, id string) (booking.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	return b, nil
}

func (s *mockBookingStore) Save(_ context.Context, b booking.Booking) error {
	s.bookings[b.ID] = b
	return nil
}

func (s *mockBookingStore) BookWithCapacity(_ context.Context, b booking.Booking, _ time.Time) error {
	if s.bookErr != nil {
		return s.bookErr
	}
	s.bookings[b.ID] = b
	return nil
}

func (s *mockBookingStore) ListRoster(_ context.Context, classID string) ([]bookingstore.RosterEntry, error) {
	return s.roster[classID], nil
}

// --- payments ---

type mockPaymentStore struct {
	members  *mockMemberStore
	payments []payment.Payment
}

func (s *mockPaymentStore) RecordWithMembership(ctx context.Context, p payment.Payment, update func(*member.Member) error) (member.Member, error) {
	m, err := s.members.GetByID(ctx, p.MemberID)
	if err != nil {
		return member.Member{}, err
	}
	if err := update(&m); err != nil {
		return member.Member{}, err
	}
	s.members.members[m.ID] = m
	s.payments = append(s.payments, p)
	return m, nil
}

// --- equipment and stories ---

type mockEquipmentStore struct {
	items map[string]equipment.Equipment
}

func newMockEquipmentStore(es ...equipment.Equipment) *mockEquipmentStore {
	s := &mockEquipmentStore{items: make(map[string]equipment.Equipment)}
	for _, e := range es {
		s.items[e.ID] = e
	}
	return s
}

func (s *mockEquipmentStore) GetByID(_ context.Context, id string) (equipment.Equipment, error) {
	e, ok := s.items[id]
	if !ok {
		return equipment.Equipment{}, equipment.ErrNotFound
	}
	return e, nil
}

func (s *mockEquipmentStore) Save(_ context.Context, e equipment.Equipment) error {
	for _, existing := range s.items {
		if existing.ID != e.ID && existing.SerialNumber == e.SerialNumber {
			return equipment.ErrDuplicateSerial
		}
	}
	s.items[e.ID] = e
	return nil
}

type mockStoryStore struct {
	stories map[string]story.Story
}

func newMockStoryStore(ss ...story.Story) *mockStoryStore {
	s := &mockStoryStore{stories: make(map[string]story.Story)}
	for _, st := range ss {
		s.stories[st.ID] = st
	}
	return s
}

func (s *mockStoryStore) GetByID(_ context.Context, id string) (story.Story, error) {
	st, ok := s.stories[id]
	if !ok {
		return story.Story{}, story.ErrNotFound
	}
	return st, nil
}

func (s *mockStoryStore) Save(_ context.Context, st story.Story) error {
	s.stories[st.ID] = st
	return nil
}

// --- outbox ---

type mockOutbox struct {
	entries map[string]outbox.Entry
	order   []string
	saveErr error
}

func newMockOutbox(es ...outbox.Entry) *mockOutbox {
	o := &mockOutbox{entries: make(map[string]outbox.Entry)}
	for _, e := range es {
		o.entries[e.ID] = e
		o.order = append(o.order, e.ID)
	}
	return o
}

func (o *mockOutbox) Save(_ context.Context, e outbox.Entry) error {
	if o.saveErr != nil {
		return o.saveErr
	}
	if _, ok := o.entries[e.ID]; !ok {
		o.order = append(o.order, e.ID)
	}
	o.entries[e.ID] = e
	return nil
}

func (o *mockOutbox) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := o.entries[id]
	if !ok {
		return outbox.Entry{}, outbox.ErrNotFound
	}
	return e, nil
}

func (o *mockOutbox) ListDue(_ context.Context, now time.Time, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, id := range o.order {
		e := o.entries[id]
		if e.IsDue(now) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (o *mockOutbox) ListByStatus(_ context.Context, status string, _ int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, id := range o.order {
		if e := o.entries[id]; status == "" || e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (o *mockOutbox) CountByStatus(_ context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, e := range o.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (o *mockOutbox) Delete(_ context.Context, id string) error {
	delete(o.entries, id)
	return nil
}

// emails decodes every queued email, in enqueue order.
func (o *mockOutbox) emails() []outbox.EmailPayload {
	var out []outbox.EmailPayload
	for _, id := range o.order {
		e := o.entries[id]
		p, err := e.Email()
		if err == nil {
			out = append(out, p)
		}
	}
	return out
}
