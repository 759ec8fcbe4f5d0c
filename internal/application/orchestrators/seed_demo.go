package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymhub/internal/domain/account"
	"gymhub/internal/domain/equipment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/member"
	"gymhub/internal/domain/payment"
	"gymhub/internal/domain/trainer"
)

// DemoPassword is the password of every seeded demo account.
const DemoPassword = "gymhub-demo-2026"

// SeedDemoDeps holds stores needed for demo data seeding.
type SeedDemoDeps struct {
	AccountStore interface {
		GetByEmail(ctx context.Context, email string) (account.Account, error)
		Save(ctx context.Context, a account.Account) error
	}
	MemberStore    MemberStoreForRegister
	TrainerStore   TrainerStoreForOnboard
	ClassStore     interface{ Save(ctx context.Context, c gymclass.Class) error }
	EquipmentStore interface {
		Save(ctx context.Context, e equipment.Equipment) error
	}
	PaymentStore PaymentStoreForRecord
	GenerateID   func() string
	Now          func() time.Time
}

type demoTrainer struct {
	Name, Email, Specialty, Certification string
	Years, RateCents                      int
}

type demoMember struct {
	Name, Email, Plan string
	PaidMonths        int // 0 leaves the member pending
}

var (
	demoAdminEmail = "admin@gymhub.test"
	demoTrainers   = []demoTrainer{
		{"Riley Stone", "riley@gymhub.test", trainer.SpecialtyStrength, "NASM CPT", 8, 4500},
		{"Noor Haddad", "noor@gymhub.test", trainer.SpecialtyYoga, "RYT-500", 5, 4000},
	}
	demoMembers = []demoMember{
		{"Sam Porter", "sam@gymhub.test", member.PlanStandard, 3},
		{"Jo Lim", "jo@gymhub.test", member.PlanPremium, 12},
		{"Alex Kerr", "alex@gymhub.test", member.PlanBasic, 0},
	}
	demoEquipment = []struct{ Name, Category, Serial string }{
		{"Treadmill T9", equipment.CategoryCardio, "TM-0001"},
		{"Squat rack", equipment.CategoryStrength, "SR-0001"},
		{"Kettlebell set", equipment.CategoryFreeWeights, "KB-0001"},
	}
)

// ExecuteSeedDemo creates demo accounts and data if the demo admin does not exist yet.
// It is idempotent: a second run is a no-op.
// PRE: Database is migrated; not used in production
// POST: Demo admin, trainers, members, classes, equipment and payments exist
func ExecuteSeedDemo(ctx context.Context, deps SeedDemoDeps) (bool, error) {
	if _, err := deps.AccountStore.GetByEmail(ctx, demoAdminEmail); err == nil {
		return false, nil
	} else if !errors.Is(err, account.ErrNotFound) {
		return false, err
	}
	now := clock(deps.Now)

	admin, err := demoAccount(deps.GenerateID, demoAdminEmail, "Demo Admin", account.RoleAdmin, now)
	if err != nil {
		return false, err
	}
	if err := deps.AccountStore.Save(ctx, admin); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}

	var trainerIDs []string
	for _, d := range demoTrainers {
		acct, err := demoAccount(deps.GenerateID, d.Email, d.Name, account.RoleTrainer, now)
		if err != nil {
			return false, err
		}
		t := trainer.Trainer{
			ID: newID(deps.GenerateID), AccountID: acct.ID, Name: d.Name, Email: d.Email,
			Specialty: d.Specialty, Certification: d.Certification, ExperienceYears: d.Years,
			HourlyRateCents: d.RateCents, Status: trainer.StatusActive, HiredOn: now,
		}
		if err := deps.TrainerStore.CreateWithAccount(ctx, t, acct); err != nil {
			return false, fmt.Errorf("seed trainer %s: %w", d.Email, err)
		}
		trainerIDs = append(trainerIDs, t.ID)
	}

	for _, d := range demoMembers {
		acct, err := demoAccount(deps.GenerateID, d.Email, d.Name, account.RoleMember, now)
		if err != nil {
			return false, err
		}
		m := member.Member{
			ID: newID(deps.GenerateID), AccountID: acct.ID, Name: d.Name, Email: d.Email,
			Plan: d.Plan, Status: member.StatusPending, JoinedAt: now,
		}
		if err := deps.MemberStore.CreateWithAccount(ctx, m, acct); err != nil {
			return false, fmt.Errorf("seed member %s: %w", d.Email, err)
		}
		if d.PaidMonths == 0 {
			continue
		}
		p := payment.Payment{
			ID: newID(deps.GenerateID), MemberID: m.ID, Method: payment.MethodCard, Plan: d.Plan,
			AmountCents: member.PlanPrice(d.Plan, d.PaidMonths), PeriodMonths: d.PaidMonths,
			PaidAt: now, RecordedBy: admin.ID,
		}
		if _, err := deps.PaymentStore.RecordWithMembership(ctx, p, func(m *member.Member) error {
			return m.ExtendMembership(p.PeriodMonths, now)
		}); err != nil {
			return false, fmt.Errorf("seed payment for %s: %w", d.Email, err)
		}
	}

	tomorrow := now.Truncate(time.Hour).Add(24 * time.Hour)
	classes := []struct {
		Name  string
		Start time.Duration
		Min   int
		Cap   int
		Room  string
	}{
		{"Morning Strength", 7 * time.Hour, 60, 12, "Weights room"},
		{"Vinyasa Flow", 18 * time.Hour, 75, 20, "Studio A"},
		{"Power Hour", 31 * time.Hour, 60, 10, "Weights room"},
	}
	for i, c := range classes {
		class := gymclass.Class{
			ID: newID(deps.GenerateID), Name: c.Name, TrainerID: trainerIDs[i%len(trainerIDs)],
			StartsAt: tomorrow.Add(c.Start), DurationMinutes: c.Min, Capacity: c.Cap, Room: c.Room,
			Status: gymclass.StatusScheduled, CreatedAt: now,
		}
		if err := deps.ClassStore.Save(ctx, class); err != nil {
			return false, fmt.Errorf("seed class %s: %w", c.Name, err)
		}
	}

	for _, d := range demoEquipment {
		e := equipment.Equipment{
			ID: newID(deps.GenerateID), Name: d.Name, Category: d.Category, SerialNumber: d.Serial,
			PurchaseDate: now.AddDate(-1, 0, 0), Status: equipment.StatusOperational, CreatedAt: now,
		}
		if err := deps.EquipmentStore.Save(ctx, e); err != nil {
			return false, fmt.Errorf("seed equipment %s: %w", d.Serial, err)
		}
	}

	slog.Info("seed_event", "event", "demo_seeded",
		"trainers", len(demoTrainers), "members", len(demoMembers), "classes", len(classes))
	return true, nil
}

func demoAccount(gen func() string, email, name, role string, now time.Time) (account.Account, error) {
	a := account.Account{ID: newID(gen), Email: email, Name: name, Role: role, CreatedAt: now}
	if err := a.SetPassword(DemoPassword); err != nil {
		return account.Account{}, fmt.Errorf("seed %s: %w", email, err)
	}
	return a, nil
}
