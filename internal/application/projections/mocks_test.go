package projections

import (
	"context"
	"errors"
	"strings"
	"time"

	bookingstore "gymhub/internal/adapters/storage/booking"
	classstore "gymhub/internal/adapters/storage/gymclass"
	memberstore "gymhub/internal/adapters/storage/member"
	paymentstore "gymhub/internal/adapters/storage/payment"
	"gymhub/internal/adapters/storage/report"
	storystore "gymhub/internal/adapters/storage/story"
	domainMember "gymhub/internal/domain/member"
	domainPayment "gymhub/internal/domain/payment"
	domainStory "gymhub/internal/domain/story"
	domainTrainer "gymhub/internal/domain/trainer"
)

var fixedTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

var errStoreDown = errors.New("store down")

type mockMemberStore struct {
	members []domainMember.Member
	filters []memberstore.ListFilter
}

func (m *mockMemberStore) GetByAccountID(_ context.Context, accountID string) (domainMember.Member, error) {
	for _, mem := range m.members {
		if mem.AccountID == accountID {
			return mem, nil
		}
	}
	return domainMember.Member{}, domainMember.ErrNotFound
}

func (m *mockMemberStore) matching(f memberstore.ListFilter) []domainMember.Member {
	var out []domainMember.Member
	for _, mem := range m.members {
		if f.Status != "" && mem.Status != f.Status {
			continue
		}
		if f.Plan != "" && mem.Plan != f.Plan {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(mem.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, mem)
	}
	return out
}

func (m *mockMemberStore) List(_ context.Context, f memberstore.ListFilter) ([]domainMember.Member, error) {
	m.filters = append(m.filters, f)
	all := m.matching(f)
	if f.Offset >= len(all) {
		return nil, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, nil
}

func (m *mockMemberStore) Count(_ context.Context, f memberstore.ListFilter) (int, error) {
	return len(m.matching(f)), nil
}

type mockTrainerStore struct {
	trainers []domainTrainer.Trainer
}

func (m *mockTrainerStore) GetByAccountID(_ context.Context, accountID string) (domainTrainer.Trainer, error) {
	for _, t := range m.trainers {
		if t.AccountID == accountID {
			return t, nil
		}
	}
	return domainTrainer.Trainer{}, domainTrainer.ErrNotFound
}

type mockScheduleStore struct {
	classes []classstore.ScheduledClass
	filter  classstore.ScheduleFilter
	err     error
}

func (m *mockScheduleStore) ListSchedule(_ context.Context, f classstore.ScheduleFilter) ([]classstore.ScheduledClass, error) {
	m.filter = f
	if m.err != nil {
		return nil, m.err
	}
	var out []classstore.ScheduledClass
	for _, c := range m.classes {
		if f.TrainerID != "" && c.TrainerID != f.TrainerID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type mockBookingStore struct {
	byMember map[string][]bookingstore.MemberBooking
	rosters  map[string][]bookingstore.RosterEntry
}

func (m *mockBookingStore) ListForMember(_ context.Context, memberID string, _ time.Time) ([]bookingstore.MemberBooking, error) {
	return m.byMember[memberID], nil
}

func (m *mockBookingStore) ListRoster(_ context.Context, classID string) ([]bookingstore.RosterEntry, error) {
	return m.rosters[classID], nil
}

type mockPaymentStore struct {
	byMember map[string][]domainPayment.Payment
	rows     []paymentstore.PaymentRow
	filter   paymentstore.ListFilter
	err      error
}

func (m *mockPaymentStore) ListForMember(_ context.Context, memberID string, limit int) ([]domainPayment.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	ps := m.byMember[memberID]
	if len(ps) > limit {
		ps = ps[:limit]
	}
	return ps, nil
}

func (m *mockPaymentStore) List(_ context.Context, f paymentstore.ListFilter) ([]paymentstore.PaymentRow, error) {
	m.filter = f
	rows := m.rows
	if f.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[f.Offset:]
	if len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}
	return rows, nil
}

type mockStoryStore struct {
	stories []storystore.AuthoredStory
	filter  storystore.ListFilter
}

func (m *mockStoryStore) List(_ context.Context, f storystore.ListFilter) ([]storystore.AuthoredStory, error) {
	m.filter = f
	var out []storystore.AuthoredStory
	for _, s := range m.stories {
		if f.Status == "" || s.Status == f.Status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStoryStore) ListForMember(_ context.Context, memberID string) ([]domainStory.Story, error) {
	var out []domainStory.Story
	for _, s := range m.stories {
		if s.MemberID == memberID {
			out = append(out, s.Story)
		}
	}
	return out, nil
}

type mockReportStore struct {
	months  []report.MonthTotal
	methods []report.MethodTotal
	plans   []report.PlanTotal
	loads   []report.TrainerLoad
	err     error
}

func (m *mockReportStore) RevenueByMonth(context.Context, time.Time, time.Time) ([]report.MonthTotal, error) {
	return m.months, nil
}

func (m *mockReportStore) RevenueByMethod(context.Context, time.Time, time.Time) ([]report.MethodTotal, error) {
	return m.methods, m.err
}

func (m *mockReportStore) RevenueByPlan(context.Context, time.Time, time.Time) ([]report.PlanTotal, error) {
	return m.plans, nil
}

func (m *mockReportStore) TrainerLoads(context.Context, time.Time, time.Time) ([]report.TrainerLoad, error) {
	return m.loads, nil
}

// dashboard counters

type countMap struct {
	counts map[string]int
	calls  int
	err    error
}

func (c *countMap) CountByStatus(context.Context) (map[string]int, error) {
	c.calls++
	return c.counts, c.err
}

type countFunc func() (int, error)

func (f countFunc) CountActive(context.Context) (int, error) { return f() }

func (f countFunc) CountUpcoming(context.Context, time.Time) (int, error) { return f() }

func (f countFunc) CountPending(context.Context) (int, error) { return f() }

func constCount(n int) countFunc {
	return func() (int, error) { return n, nil }
}

type sumRecorder struct {
	total    int
	from, to time.Time
}

func (s *sumRecorder) SumBetween(_ context.Context, from, to time.Time) (int, error) {
	s.from, s.to = from, to
	return s.total, nil
}
