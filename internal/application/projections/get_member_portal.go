package projections

import (
	"context"
	"time"

	bookingstore "gymhub/internal/adapters/storage/booking"
	"gymhub/internal/domain/member"
	"gymhub/internal/domain/payment"
	"gymhub/internal/domain/story"
)

// PortalPaymentLimit caps the payment history shown on the member portal.
const PortalPaymentLimit = 12

// GetMemberPortalQuery carries query parameters.
type GetMemberPortalQuery struct {
	AccountID string
}

// GetMemberPortalDeps holds dependencies for the member portal.
type GetMemberPortalDeps struct {
	MemberStore  MemberStore
	BookingStore BookingStore
	PaymentStore PaymentStore
	StoryStore   StoryStore // optional: nil skips the member's stories
	Now          func() time.Time
}

// MemberPortal is everything the member portal home page shows.
type MemberPortal struct {
	Member        member.Member
	DaysRemaining int
	ExpiringSoon  bool // active with a week or less left
	CanBook       bool
	Bookings      []bookingstore.MemberBooking
	Payments      []payment.Payment
	Stories       []story.Story
}

// QueryGetMemberPortal loads the signed-in member's summary, upcoming bookings and payments.
// PRE: AccountID belongs to a member account
// POST: Returns member.ErrNotFound when the account has no member profile
func QueryGetMemberPortal(ctx context.Context, query GetMemberPortalQuery, deps GetMemberPortalDeps) (MemberPortal, error) {
	now := clock(deps.Now)
	m, err := deps.MemberStore.GetByAccountID(ctx, query.AccountID)
	if err != nil {
		return MemberPortal{}, err
	}

	p := MemberPortal{
		Member:        m,
		DaysRemaining: m.DaysRemaining(now),
		CanBook:       m.IsActive(),
	}
	p.ExpiringSoon = p.CanBook && p.DaysRemaining <= 7

	if p.Bookings, err = deps.BookingStore.ListForMember(ctx, m.ID, now); err != nil {
		return MemberPortal{}, err
	}
	if p.Payments, err = deps.PaymentStore.ListForMember(ctx, m.ID, PortalPaymentLimit); err != nil {
		return MemberPortal{}, err
	}
	if deps.StoryStore != nil {
		if p.Stories, err = deps.StoryStore.ListForMember(ctx, m.ID); err != nil {
			return MemberPortal{}, err
		}
	}
	return p, nil
}
