package projections

import (
	"context"
	"fmt"
	"time"

	"gymhub/internal/adapters/cache"
	"gymhub/internal/domain/equipment"
	"gymhub/internal/domain/member"
)

// DashboardCacheKey is the cache key of the admin dashboard.
const DashboardCacheKey = "dashboard:admin"

// DashboardTTL is how long a computed dashboard is served from cache.
const DashboardTTL = 60 * time.Second

// DashboardCounts defines the aggregate queries the admin dashboard needs.
type DashboardCounts struct {
	Members interface {
		CountByStatus(ctx context.Context) (map[string]int, error)
	}
	Trainers interface {
		CountActive(ctx context.Context) (int, error)
	}
	Classes interface {
		CountUpcoming(ctx context.Context, now time.Time) (int, error)
	}
	Equipment interface {
		CountByStatus(ctx context.Context) (map[string]int, error)
	}
	Payments interface {
		SumBetween(ctx context.Context, from, to time.Time) (int, error)
	}
	Stories interface {
		CountPending(ctx context.Context) (int, error)
	}
}

// GetAdminDashboardDeps holds dependencies for the admin dashboard.
type GetAdminDashboardDeps struct {
	Counts DashboardCounts
	Cache  cache.Store // optional: nil computes on every call
	Now    func() time.Time
}

// AdminDashboard is the admin landing page summary.
type AdminDashboard struct {
	MembersByStatus      map[string]int
	ActiveMembers        int
	PendingMembers       int
	ActiveTrainers       int
	UpcomingClasses      int
	EquipmentMaintenance int
	MonthRevenueCents    int
	PendingStories       int
	GeneratedAt          time.Time
}

// QueryGetAdminDashboard returns the dashboard, serving it from cache for DashboardTTL.
// PRE: caller is admin
// POST: Counts reflect the state at GeneratedAt
func QueryGetAdminDashboard(ctx context.Context, deps GetAdminDashboardDeps) (AdminDashboard, error) {
	return cache.Load(ctx, deps.Cache, DashboardCacheKey, DashboardTTL, func(ctx context.Context) (AdminDashboard, error) {
		return computeAdminDashboard(ctx, deps.Counts, clock(deps.Now))
	})
}

// InvalidateAdminDashboard drops the cached dashboard after a write that changes its counts.
func InvalidateAdminDashboard(ctx context.Context, c cache.Store) {
	if c != nil {
		_ = c.Delete(ctx, DashboardCacheKey)
	}
}

func computeAdminDashboard(ctx context.Context, counts DashboardCounts, now time.Time) (AdminDashboard, error) {
	d := AdminDashboard{GeneratedAt: now}

	byStatus, err := counts.Members.CountByStatus(ctx)
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("count members: %w", err)
	}
	d.MembersByStatus = byStatus
	d.ActiveMembers = byStatus[member.StatusActive]
	d.PendingMembers = byStatus[member.StatusPending]

	if d.ActiveTrainers, err = counts.Trainers.CountActive(ctx); err != nil {
		return AdminDashboard{}, fmt.Errorf("count trainers: %w", err)
	}
	if d.UpcomingClasses, err = counts.Classes.CountUpcoming(ctx, now); err != nil {
		return AdminDashboard{}, fmt.Errorf("count classes: %w", err)
	}

	kit, err := counts.Equipment.CountByStatus(ctx)
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("count equipment: %w", err)
	}
	d.EquipmentMaintenance = kit[equipment.StatusMaintenance]

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if d.MonthRevenueCents, err = counts.Payments.SumBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		return AdminDashboard{}, fmt.Errorf("sum payments: %w", err)
	}
	if d.PendingStories, err = counts.Stories.CountPending(ctx); err != nil {
		return AdminDashboard{}, fmt.Errorf("count stories: %w", err)
	}
	return d, nil
}
