package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

type goalServiceMocks struct {
	goals      *MockLearningGoalStore
	users      *MockUserStore
	characters *MockCharacterStore
}

func newTestGoalService(t *testing.T) (*LearningGoalService, goalServiceMocks) {
	t.Helper()
	mocks := goalServiceMocks{
		goals:      new(MockLearningGoalStore),
		users:      new(MockUserStore),
		characters: new(MockCharacterStore),
	}
	svc, err := NewLearningGoalService(
		unreachableDB(t),
		mocks.goals,
		mocks.users,
		mocks.characters,
		noopEmitter{},
		slog.Default(),
	)
	require.NoError(t, err)
	return svc, mocks
}

// childFixture builds a child profile of the given age, along with its parent.
func childFixture(t *testing.T, age int) *domain.User {
	t.Helper()
	parent := verifiedParent(t)
	dateOfBirth := time.Now().UTC().AddDate(-age, -1, 0)
	child, err := parent.CreateChildProfile("Mia", dateOfBirth)
	require.NoError(t, err)
	child.ClearDomainEvents()
	return child
}

func goalFixture(t *testing.T, title string, difficulty domain.GoalDifficulty, targetAge int, traits ...string) *domain.LearningGoal {
	t.Helper()
	goal, err := domain.NewLearningGoal(title, "social", difficulty, targetAge, 3)
	require.NoError(t, err)
	goal.RelatedTraits = traits
	goal.ClearDomainEvents()
	return goal
}

func TestCreateGoalRejectsInvalidPriority(t *testing.T) {
	t.Parallel()

	svc, _ := newTestGoalService(t)
	_, err := svc.CreateGoal(context.Background(), CreateGoalInput{
		Title:      "Sharing with friends",
		Category:   "social",
		Difficulty: domain.DifficultyEasyGoal,
		TargetAge:  6,
		Priority:   9,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidGoalPriority)
}

func TestCreateGoalUnknownChild(t *testing.T) {
	t.Parallel()

	childID := uuid.New()
	svc, mocks := newTestGoalService(t)
	mocks.users.On("GetByID", mock.Anything, childID).
		Return(nil, store.ErrUserNotFound)

	_, err := svc.CreateGoal(context.Background(), CreateGoalInput{
		Title:      "Sharing with friends",
		Category:   "social",
		Difficulty: domain.DifficultyEasyGoal,
		TargetAge:  6,
		Priority:   3,
		ChildID:    &childID,
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetGoalNotFound(t *testing.T) {
	t.Parallel()

	svc, mocks := newTestGoalService(t)
	mocks.goals.On("GetByID", mock.Anything, mock.Anything).
		Return(nil, store.ErrGoalNotFound)

	_, err := svc.GetGoal(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestRankGoalsForChildOrdersBySuitability(t *testing.T) {
	t.Parallel()

	child := childFixture(t, 6)
	character, err := domain.NewCharacter(uuid.New(), "Luna", "explorer",
		map[string]int{"empathy": 50, "courage": 30})
	require.NoError(t, err)

	// An age-matched easy goal sharing a trait should beat a hard goal
	// pitched at much older children.
	matched := goalFixture(t, "Sharing with friends", domain.DifficultyEasyGoal, 6, "empathy")
	distant := goalFixture(t, "Debate club basics", domain.DifficultyHardGoal, 12)

	svc, mocks := newTestGoalService(t)
	mocks.users.On("GetByID", mock.Anything, child.ID).Return(child, nil)
	mocks.characters.On("GetByID", mock.Anything, character.ID).Return(character, nil)
	mocks.goals.On("ListByChild", mock.Anything, child.ID).
		Return([]*domain.LearningGoal{distant, matched}, nil)

	ranked, err := svc.RankGoalsForChild(context.Background(), child.ID, character.ID)
	require.NoError(t, err)
	require.NotEmpty(t, ranked)

	assert.Equal(t, matched.ID, ranked[0].Goal.ID)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRankGoalsDropsUnsuitableGoals(t *testing.T) {
	t.Parallel()

	child := childFixture(t, 5)
	// Target age 11 against a five-year-old zeroes the age factor.
	unsuitable := goalFixture(t, "Essay writing", domain.DifficultyHardGoal, 11)

	svc, mocks := newTestGoalService(t)
	mocks.users.On("GetByID", mock.Anything, child.ID).Return(child, nil)
	mocks.goals.On("ListByChild", mock.Anything, child.ID).
		Return([]*domain.LearningGoal{unsuitable}, nil)

	ranked, err := svc.RankGoalsForChild(context.Background(), child.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestUpdateProgressOutOfRange(t *testing.T) {
	t.Parallel()

	goal := goalFixture(t, "Sharing with friends", domain.DifficultyEasyGoal, 6)
	svc, mocks := newTestGoalService(t)
	mocks.goals.On("GetByID", mock.Anything, goal.ID).Return(goal, nil)

	_, err := svc.UpdateProgress(context.Background(), goal.ID, 120)
	assert.ErrorIs(t, err, domain.ErrProgressOutOfRange)
}
