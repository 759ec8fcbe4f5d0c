package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymhub/internal/application/validation"
	"gymhub/internal/domain/member"
)

// MemberStoreForStatus defines the store interface needed by UpdateMemberStatus.
type MemberStoreForStatus interface {
	Update(ctx context.Context, id string, change func(*member.Member) error) (member.Member, error)
}

// UpdateMemberStatusInput carries input for the orchestrator.
type UpdateMemberStatusInput struct {
	MemberID string `validate:"required" label:"Member"`
	Action   string `validate:"required,oneof=suspend reinstate" label:"Action"`
}

// Member status actions.
const (
	ActionSuspend   = "suspend"
	ActionReinstate = "reinstate"
)

// UpdateMemberStatusDeps holds dependencies for UpdateMemberStatus.
type UpdateMemberStatusDeps struct {
	MemberStore MemberStoreForStatus
	Now         func() time.Time
}

// ExecuteUpdateMemberStatus suspends or reinstates a member.
// PRE: caller is admin
// POST: Member status updated; reinstated members return to active, expired or pending
func ExecuteUpdateMemberStatus(ctx context.Context, input UpdateMemberStatusInput, deps UpdateMemberStatusDeps) (member.Member, error) {
	if err := validation.Struct(input); err != nil {
		return member.Member{}, err
	}

	today := clock(deps.Now)
	var previous string
	m, err := deps.MemberStore.Update(ctx, input.MemberID, func(m *member.Member) error {
		previous = m.Status
		if input.Action == ActionSuspend {
			return m.Suspend()
		}
		return m.Reinstate(today)
	})
	if err != nil {
		if errors.Is(err, member.ErrAlreadySuspended) || errors.Is(err, member.ErrNotSuspended) {
			return member.Member{}, validation.Wrap(err)
		}
		return member.Member{}, fmt.Errorf("update member: %w", err)
	}

	slog.Info("member_status_changed", "member_id", m.ID, "from", previous, "to", m.Status)
	return m, nil
}
