package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

type storyServiceMocks struct {
	stories    *MockStoryStore
	users      *MockUserStore
	characters *MockCharacterStore
	scheduler  *MockScheduler
}

func newTestStoryService(t *testing.T) (*StoryService, storyServiceMocks) {
	t.Helper()
	mocks := storyServiceMocks{
		stories:    new(MockStoryStore),
		users:      new(MockUserStore),
		characters: new(MockCharacterStore),
		scheduler:  new(MockScheduler),
	}
	svc, err := NewStoryService(
		unreachableDB(t),
		mocks.stories,
		mocks.users,
		mocks.characters,
		mocks.scheduler,
		noopEmitter{},
		slog.Default(),
	)
	require.NoError(t, err)
	return svc, mocks
}

func storyFixture(t *testing.T, ownerID uuid.UUID) *domain.Story {
	t.Helper()
	story, err := domain.NewStory("The Hidden Cave", "a cave adventure", uuid.New(), ownerID)
	require.NoError(t, err)
	story.ClearDomainEvents()
	return story
}

func TestCreateStoryQuotaExhausted(t *testing.T) {
	t.Parallel()

	user := verifiedParent(t)
	user.Usage.StoriesThisMonth = user.Limits().MonthlyStoryQuota

	svc, mocks := newTestStoryService(t)
	mocks.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := svc.CreateStory(context.Background(), user.ID, CreateStoryInput{
		Title:       "The Hidden Cave",
		Prompt:      "a cave adventure",
		CharacterID: uuid.New(),
	})
	assert.ErrorIs(t, err, domain.ErrStoryQuotaExhausted)
}

func TestCreateStoryRejectsForeignCharacter(t *testing.T) {
	t.Parallel()

	user := verifiedParent(t)
	character, err := domain.NewCharacter(uuid.New(), "Luna", "explorer", nil)
	require.NoError(t, err)

	svc, mocks := newTestStoryService(t)
	mocks.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mocks.characters.On("GetByID", mock.Anything, character.ID).Return(character, nil)

	_, err = svc.CreateStory(context.Background(), user.ID, CreateStoryInput{
		Title:       "The Hidden Cave",
		Prompt:      "a cave adventure",
		CharacterID: character.ID,
	})
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestGetStoryPrivateRequiresOwnership(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	story := storyFixture(t, ownerID)

	svc, mocks := newTestStoryService(t)
	mocks.stories.On("GetByID", mock.Anything, story.ID).Return(story, nil)

	got, err := svc.GetStory(context.Background(), ownerID, story.ID)
	require.NoError(t, err)
	assert.Equal(t, story.ID, got.ID)

	_, err = svc.GetStory(context.Background(), uuid.New(), story.ID)
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestGetStoryPublicReadableByAnyone(t *testing.T) {
	t.Parallel()

	story := storyFixture(t, uuid.New())
	story.IsPublic = true

	svc, mocks := newTestStoryService(t)
	mocks.stories.On("GetByID", mock.Anything, story.ID).Return(story, nil)

	got, err := svc.GetStory(context.Background(), uuid.New(), story.ID)
	require.NoError(t, err)
	assert.Equal(t, story.ID, got.ID)
}

func TestGetStoryNotFound(t *testing.T) {
	t.Parallel()

	svc, mocks := newTestStoryService(t)
	mocks.stories.On("GetByID", mock.Anything, mock.Anything).
		Return(nil, store.ErrStoryNotFound)

	_, err := svc.GetStory(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrStoryNotFound)
}

func TestDeleteStoryRequiresOwnership(t *testing.T) {
	t.Parallel()

	story := storyFixture(t, uuid.New())

	svc, mocks := newTestStoryService(t)
	mocks.stories.On("GetByID", mock.Anything, story.ID).Return(story, nil)

	err := svc.DeleteStory(context.Background(), uuid.New(), story.ID)
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestPublishRejectsPendingStory(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	story := storyFixture(t, ownerID) // still pending generation

	svc, mocks := newTestStoryService(t)
	mocks.stories.On("GetByID", mock.Anything, story.ID).Return(story, nil)

	err := svc.Publish(context.Background(), ownerID, story.ID)
	assert.Error(t, err)
	assert.False(t, story.IsPublic)
}
