package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/platform/logger"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

// PostgresLearningGoalStore implements store.LearningGoalStore backed by
// PostgreSQL. Success criteria, related traits and evidence entries are
// stored as JSONB.
type PostgresLearningGoalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLearningGoalStore creates a PostgreSQL-backed learning goal store.
func NewPostgresLearningGoalStore(db store.DBTX, logger *slog.Logger) *PostgresLearningGoalStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLearningGoalStore{
		db:     db,
		logger: logger.With(slog.String("component", "learning_goal_store")),
	}
}

var _ store.LearningGoalStore = (*PostgresLearningGoalStore)(nil)

const goalColumns = `id, title, category, child_id, difficulty, target_age,
	priority, progress, status, success_criteria, related_traits, evidence,
	completed_at, created_at, updated_at`

// Create implements store.LearningGoalStore.Create.
func (s *PostgresLearningGoalStore) Create(ctx context.Context, goal *domain.LearningGoal) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := goal.Validate(); err != nil {
		log.Warn("learning goal validation failed during create",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	criteria, traits, evidence, err := s.marshalCollections(goal)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO learning_goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.ExecContext(ctx, query,
		goal.ID,
		goal.Title,
		goal.Category,
		goal.ChildID,
		goal.Difficulty,
		goal.TargetAge,
		goal.Priority,
		goal.Progress,
		goal.Status,
		criteria,
		traits,
		evidence,
		goal.CompletedAt,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: child does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create learning goal",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return MapError(err)
	}

	log.Info("learning goal created",
		slog.String("goal_id", goal.ID.String()),
		slog.String("category", goal.Category))
	return nil
}

// GetByID implements store.LearningGoalStore.GetByID.
func (s *PostgresLearningGoalStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM learning_goals WHERE id = $1`
	goal, err := scanGoal(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGoalNotFound
		}
		return nil, MapError(err)
	}
	return goal, nil
}

// ListByChild implements store.LearningGoalStore.ListByChild.
func (s *PostgresLearningGoalStore) ListByChild(ctx context.Context, childID uuid.UUID) ([]*domain.LearningGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM learning_goals WHERE child_id = $1 ORDER BY priority DESC, created_at`
	rows, err := s.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var goals []*domain.LearningGoal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, MapError(err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return goals, nil
}

// Update implements store.LearningGoalStore.Update.
func (s *PostgresLearningGoalStore) Update(ctx context.Context, goal *domain.LearningGoal) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := goal.Validate(); err != nil {
		log.Warn("learning goal validation failed during update",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	criteria, traits, evidence, err := s.marshalCollections(goal)
	if err != nil {
		return err
	}

	query := `
		UPDATE learning_goals
		SET title = $1, category = $2, child_id = $3, difficulty = $4,
			target_age = $5, priority = $6, progress = $7, status = $8,
			success_criteria = $9, related_traits = $10, evidence = $11,
			completed_at = $12, updated_at = $13
		WHERE id = $14
	`
	result, err := s.db.ExecContext(ctx, query,
		goal.Title,
		goal.Category,
		goal.ChildID,
		goal.Difficulty,
		goal.TargetAge,
		goal.Priority,
		goal.Progress,
		goal.Status,
		criteria,
		traits,
		evidence,
		goal.CompletedAt,
		goal.UpdatedAt,
		goal.ID,
	)
	if err != nil {
		log.Error("failed to update learning goal",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrGoalNotFound)
}

// Delete implements store.LearningGoalStore.Delete.
func (s *PostgresLearningGoalStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM learning_goals WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete learning goal",
			slog.String("error", err.Error()),
			slog.String("goal_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrGoalNotFound); err != nil {
		return err
	}

	log.Info("learning goal deleted", slog.String("goal_id", id.String()))
	return nil
}

// WithTx implements store.LearningGoalStore.WithTx.
func (s *PostgresLearningGoalStore) WithTx(tx *sql.Tx) store.LearningGoalStore {
	return &PostgresLearningGoalStore{db: tx, logger: s.logger}
}

func (s *PostgresLearningGoalStore) marshalCollections(goal *domain.LearningGoal) (criteria, traits, evidence any, err error) {
	if criteria, err = marshalColumn(goal.SuccessCriteria); err != nil {
		return nil, nil, nil, err
	}
	if traits, err = marshalColumn(goal.RelatedTraits); err != nil {
		return nil, nil, nil, err
	}
	if evidence, err = marshalColumn(goal.Evidence); err != nil {
		return nil, nil, nil, err
	}
	return criteria, traits, evidence, nil
}

func scanGoal(row rowScanner) (*domain.LearningGoal, error) {
	var (
		goal       domain.LearningGoal
		difficulty string
		status     string
		criteria   []byte
		traits     []byte
		evidence   []byte
	)
	err := row.Scan(
		&goal.ID,
		&goal.Title,
		&goal.Category,
		&goal.ChildID,
		&difficulty,
		&goal.TargetAge,
		&goal.Priority,
		&goal.Progress,
		&status,
		&criteria,
		&traits,
		&evidence,
		&goal.CompletedAt,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	goal.Difficulty = domain.GoalDifficulty(difficulty)
	goal.Status = domain.GoalStatus(status)
	if err := unmarshalColumn(criteria, &goal.SuccessCriteria); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(traits, &goal.RelatedTraits); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(evidence, &goal.Evidence); err != nil {
		return nil, err
	}
	return &goal, nil
}
