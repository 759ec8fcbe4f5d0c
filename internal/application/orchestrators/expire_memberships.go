package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gymhub/internal/domain/member"
)

// MemberStoreForExpiry defines the store interface needed by ExpireMemberships.
type MemberStoreForExpiry interface {
	ListLapsed(ctx context.Context, today time.Time) ([]member.Member, error)
	ExpireIfLapsed(ctx context.Context, id string, today time.Time) (bool, error)
}

// ExpireMembershipsDeps holds dependencies for ExpireMemberships.
type ExpireMembershipsDeps struct {
	MemberStore MemberStoreForExpiry
	Now         func() time.Time
}

// ExecuteExpireMemberships marks active members whose paid period ended as expired.
// PRE: none
// POST: Every lapsed active member is expired; returns how many changed
func ExecuteExpireMemberships(ctx context.Context, deps ExpireMembershipsDeps) (int, error) {
	today := clock(deps.Now)
	lapsed, err := deps.MemberStore.ListLapsed(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list lapsed members: %w", err)
	}

	expired := 0
	for _, m := range lapsed {
		if !m.Expire(today) {
			continue
		}
		// The row is re-checked at write time; a renewal since the listing wins.
		ok, err := deps.MemberStore.ExpireIfLapsed(ctx, m.ID, today)
		if err != nil {
			return expired, fmt.Errorf("expire member %s: %w", m.ID, err)
		}
		if !ok {
			slog.Info("membership_expiry_skipped", "member_id", m.ID)
			continue
		}
		expired++
	}
	if expired > 0 {
		slog.Info("memberships_expired", "count", expired)
	}
	return expired, nil
}
