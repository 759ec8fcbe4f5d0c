package story

import (
	"context"

	domain "gymhub/internal/domain/story"
)

// Store persists Story state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Story, error)
	Save(ctx context.Context, value domain.Story) error
	List(ctx context.Context, filter ListFilter) ([]AuthoredStory, error)
	ListForMember(ctx context.Context, memberID string) ([]domain.Story, error)
	CountPending(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// AuthoredStory is a story with its author's display name.
type AuthoredStory struct {
	domain.Story
	AuthorName string
}
