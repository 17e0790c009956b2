package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/events"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

// CreateGoalInput carries the user-provided fields for a new learning goal.
type CreateGoalInput struct {
	Title           string
	Category        string
	Difficulty      domain.GoalDifficulty
	TargetAge       int
	Priority        int
	SuccessCriteria []string
	RelatedTraits   []string
	ChildID         *uuid.UUID
}

// RankedGoal pairs a goal with its suitability score for a specific child.
type RankedGoal struct {
	Goal  *domain.LearningGoal
	Score float64
}

// LearningGoalService manages educational objectives: creation, progress
// tracking, evidence collection and per-child goal recommendation.
type LearningGoalService struct {
	db         *sql.DB
	goals      store.LearningGoalStore
	users      store.UserStore
	characters store.CharacterStore
	emitter    events.EventEmitter
	logger     *slog.Logger
}

// NewLearningGoalService creates a LearningGoalService.
func NewLearningGoalService(
	db *sql.DB,
	goals store.LearningGoalStore,
	users store.UserStore,
	characters store.CharacterStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*LearningGoalService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if goals == nil || users == nil || characters == nil {
		return nil, errors.New("stores cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LearningGoalService{
		db:         db,
		goals:      goals,
		users:      users,
		characters: characters,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "learning_goal_service")),
	}, nil
}

// CreateGoal creates a learning goal, optionally assigned to a child profile.
func (s *LearningGoalService) CreateGoal(ctx context.Context, input CreateGoalInput) (*domain.LearningGoal, error) {
	goal, err := domain.NewLearningGoal(input.Title, input.Category, input.Difficulty, input.TargetAge, input.Priority)
	if err != nil {
		return nil, err
	}
	goal.SuccessCriteria = input.SuccessCriteria
	goal.RelatedTraits = input.RelatedTraits

	if input.ChildID != nil {
		if _, err := s.users.GetByID(ctx, *input.ChildID); err != nil {
			return nil, wrapError("create_goal", "failed to load child profile", err)
		}
		goal.ChildID = input.ChildID
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.goals.WithTx(tx).Create(ctx, goal)
	})
	if err != nil {
		return nil, wrapError("create_goal", "failed to save learning goal", err)
	}

	publishEvents(ctx, s.emitter, s.logger, goal)

	s.logger.Info("learning goal created", "goal_id", goal.ID, "category", goal.Category)
	return goal, nil
}

// GetGoal retrieves a learning goal by ID.
func (s *LearningGoalService) GetGoal(ctx context.Context, goalID uuid.UUID) (*domain.LearningGoal, error) {
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, wrapError("get_goal", "failed to load learning goal", err)
	}
	return goal, nil
}

// ListChildGoals returns the goals assigned to a child, ordered by priority.
func (s *LearningGoalService) ListChildGoals(ctx context.Context, childID uuid.UUID) ([]*domain.LearningGoal, error) {
	goals, err := s.goals.ListByChild(ctx, childID)
	if err != nil {
		return nil, wrapError("list_child_goals", "failed to load learning goals", err)
	}
	return goals, nil
}

// UpdateProgress sets a goal's progress percentage; the status derives from
// fixed thresholds.
func (s *LearningGoalService) UpdateProgress(ctx context.Context, goalID uuid.UUID, progress float64) (*domain.LearningGoal, error) {
	return s.mutate(ctx, goalID, "update_progress", func(goal *domain.LearningGoal) error {
		return goal.UpdateProgress(progress)
	})
}

// AddEvidence records an observation supporting a goal's progress.
func (s *LearningGoalService) AddEvidence(ctx context.Context, goalID uuid.UUID, note string, storyID uuid.UUID) (*domain.LearningGoal, error) {
	return s.mutate(ctx, goalID, "add_evidence", func(goal *domain.LearningGoal) error {
		return goal.AddEvidence(note, storyID)
	})
}

// FlagForReview moves a goal into the needs-review state.
func (s *LearningGoalService) FlagForReview(ctx context.Context, goalID uuid.UUID, reason string) (*domain.LearningGoal, error) {
	return s.mutate(ctx, goalID, "flag_for_review", func(goal *domain.LearningGoal) error {
		goal.FlagForReview(reason)
		return nil
	})
}

// AssignToChild attaches an existing goal to a child profile.
func (s *LearningGoalService) AssignToChild(ctx context.Context, goalID, childID uuid.UUID) (*domain.LearningGoal, error) {
	if _, err := s.users.GetByID(ctx, childID); err != nil {
		return nil, wrapError("assign_goal", "failed to load child profile", err)
	}
	return s.mutate(ctx, goalID, "assign_goal", func(goal *domain.LearningGoal) error {
		goal.ChildID = &childID
		return nil
	})
}

// RankGoalsForChild scores the child's goals by suitability, using the
// child's age and the traits of one of their characters, and returns them
// best-first. Goals scoring zero are dropped.
func (s *LearningGoalService) RankGoalsForChild(ctx context.Context, childID, characterID uuid.UUID) ([]RankedGoal, error) {
	child, err := s.users.GetByID(ctx, childID)
	if err != nil {
		return nil, wrapError("rank_goals", "failed to load child profile", err)
	}

	var childTraits []string
	if characterID != uuid.Nil {
		character, err := s.characters.GetByID(ctx, characterID)
		if err != nil {
			return nil, wrapError("rank_goals", "failed to load character", err)
		}
		childTraits = character.TraitNames()
	}

	goals, err := s.goals.ListByChild(ctx, childID)
	if err != nil {
		return nil, wrapError("rank_goals", "failed to load learning goals", err)
	}

	ranked := make([]RankedGoal, 0, len(goals))
	for _, goal := range goals {
		score := goal.SuitabilityForChild(child.Age(), childTraits)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, RankedGoal{Goal: goal, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// DeleteGoal removes a learning goal permanently.
func (s *LearningGoalService) DeleteGoal(ctx context.Context, goalID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.goals.WithTx(tx).Delete(ctx, goalID)
	})
	if err != nil {
		return wrapError("delete_goal", "failed to delete learning goal", err)
	}
	return nil
}

// mutate loads a goal, applies fn, and persists the result in a transaction.
// Events recorded by fn are published after commit.
func (s *LearningGoalService) mutate(ctx context.Context, goalID uuid.UUID, operation string, fn func(*domain.LearningGoal) error) (*domain.LearningGoal, error) {
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, wrapError(operation, "failed to load learning goal", err)
	}

	if err := fn(goal); err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.goals.WithTx(tx).Update(ctx, goal)
	})
	if err != nil {
		return nil, wrapError(operation, "failed to save learning goal", err)
	}

	publishEvents(ctx, s.emitter, s.logger, goal)
	return goal, nil
}
