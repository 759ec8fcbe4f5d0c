package projections

import (
	"context"

	storystore "gymhub/internal/adapters/storage/story"
	"gymhub/internal/domain/story"
)

// PublicStoryLimit caps the stories on the public page.
const PublicStoryLimit = 20

// GetStoriesQuery selects stories by review status.
type GetStoriesQuery struct {
	Status string // empty lists every status
	Limit  int
}

// GetStoriesDeps holds dependencies for story listings.
type GetStoriesDeps struct {
	StoryStore StoryStore
}

// QueryGetPublishedStories lists published stories, newest first, for the public page.
func QueryGetPublishedStories(ctx context.Context, deps GetStoriesDeps) ([]storystore.AuthoredStory, error) {
	return QueryGetStories(ctx, GetStoriesQuery{Status: story.StatusPublished, Limit: PublicStoryLimit}, deps)
}

// QueryGetStories lists stories for the admin review queue.
func QueryGetStories(ctx context.Context, query GetStoriesQuery, deps GetStoriesDeps) ([]storystore.AuthoredStory, error) {
	return deps.StoryStore.List(ctx, storystore.ListFilter{Status: query.Status, Limit: query.Limit})
}
