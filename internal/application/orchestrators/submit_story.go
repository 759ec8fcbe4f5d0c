package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymhub/internal/application/validation"
	"gymhub/internal/domain/member"
	"gymhub/internal/domain/story"
)

// StoryStore defines the store interface needed by the story orchestrators.
type StoryStore interface {
	GetByID(ctx context.Context, id string) (story.Story, error)
	Save(ctx context.Context, s story.Story) error
}

// SubmitStoryInput carries the member's story form.
type SubmitStoryInput struct {
	AccountID      string
	Title          string `validate:"required" label:"Title"`
	Body           string `validate:"required" label:"Story"`
	MonthsTraining int    `validate:"min=0,max=600" label:"Months training"`
}

// SubmitStoryDeps holds dependencies for SubmitStory.
type SubmitStoryDeps struct {
	MemberStore MemberLookup
	StoryStore  StoryStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteSubmitStory stores a member's success story for moderation.
// PRE: caller is a member
// POST: Story saved as pending
func ExecuteSubmitStory(ctx context.Context, input SubmitStoryInput, deps SubmitStoryDeps) (story.Story, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Body = strings.TrimSpace(input.Body)
	if err := validation.Struct(input); err != nil {
		return story.Story{}, err
	}

	m, err := deps.MemberStore.GetByAccountID(ctx, input.AccountID)
	if err != nil {
		return story.Story{}, fmt.Errorf("load member: %w", err)
	}

	s := story.Story{
		ID:             newID(deps.GenerateID),
		MemberID:       m.ID,
		Title:          input.Title,
		Body:           input.Body,
		MonthsTraining: input.MonthsTraining,
		Status:         story.StatusPending,
		SubmittedAt:    clock(deps.Now),
	}
	if err := s.Validate(); err != nil {
		return story.Story{}, validation.Wrap(err)
	}
	if err := deps.StoryStore.Save(ctx, s); err != nil {
		return story.Story{}, err
	}

	slog.Info("story_submitted", "story_id", s.ID, "member_id", m.ID)
	return s, nil
}

// MemberGetter loads a member by ID.
type MemberGetter interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// ReviewStoryInput carries the admin's moderation decision.
type ReviewStoryInput struct {
	StoryID    string `validate:"required" label:"Story"`
	Decision   string `validate:"required,oneof=publish reject" label:"Decision"`
	ReviewerID string // admin account ID
}

// ReviewStoryDeps holds dependencies for ReviewStory.
type ReviewStoryDeps struct {
	StoryStore  StoryStore
	MemberStore MemberGetter
	Outbox      OutboxWriter
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteReviewStory publishes or rejects a pending story.
// PRE: caller is admin
// POST: Story is published or rejected; the author is emailed
func ExecuteReviewStory(ctx context.Context, input ReviewStoryInput, deps ReviewStoryDeps) (story.Story, error) {
	if err := validation.Struct(input); err != nil {
		return story.Story{}, err
	}
	s, err := deps.StoryStore.GetByID(ctx, input.StoryID)
	if err != nil {
		return story.Story{}, err
	}

	now := clock(deps.Now)
	if err := s.Review(input.Decision, input.ReviewerID, now); err != nil {
		return story.Story{}, validation.Wrap(err)
	}
	if err := deps.StoryStore.Save(ctx, s); err != nil {
		return story.Story{}, err
	}
	slog.Info("story_reviewed", "story_id", s.ID, "status", s.Status, "reviewer_id", input.ReviewerID)

	author, err := deps.MemberStore.GetByID(ctx, s.MemberID)
	if err != nil {
		slog.Warn("story_author_lookup_failed", "story_id", s.ID, "error", err)
		return s, nil
	}
	_ = enqueueEmail(ctx, deps.Outbox, newID(deps.GenerateID),
		storyReviewedEmail(author.Name, author.Email, s.Title, s.IsPublished()), now)
	return s, nil
}
