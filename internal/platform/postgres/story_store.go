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

// PostgresStoryStore implements store.StoryStore backed by PostgreSQL.
// Scenes, learning goal references, tags and image URLs are stored as JSONB
// alongside the scalar columns.
type PostgresStoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStoryStore creates a PostgreSQL-backed story store.
func NewPostgresStoryStore(db store.DBTX, logger *slog.Logger) *PostgresStoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "story_store")),
	}
}

var _ store.StoryStore = (*PostgresStoryStore)(nil)

const storyColumns = `id, title, prompt, content, summary, character_id, user_id,
	genre, ai_model, generation_status, moderation_status, failure_reason,
	is_public, published_at, view_count, like_count, share_count,
	rating_count, rating_sum, average_rating, engagement_score,
	word_count, reading_time_minutes, scenes, learning_goal_ids, tags,
	image_urls, created_at, updated_at`

// Create implements store.StoryStore.Create.
func (s *PostgresStoryStore) Create(ctx context.Context, story *domain.Story) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := story.Validate(); err != nil {
		log.Warn("story validation failed during create",
			slog.String("error", err.Error()),
			slog.String("story_id", story.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	scenes, goalIDs, tags, images, err := s.marshalCollections(story)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO stories (` + storyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`
	_, err = s.db.ExecContext(ctx, query,
		story.ID,
		story.Title,
		story.Prompt,
		story.Content,
		story.Summary,
		story.CharacterID,
		story.UserID,
		story.Genre,
		story.AIModel,
		story.GenerationStatus,
		story.ModerationStatus,
		story.FailureReason,
		story.IsPublic,
		story.PublishedAt,
		story.ViewCount,
		story.LikeCount,
		story.ShareCount,
		story.RatingCount,
		story.RatingSum,
		story.AverageRating,
		story.EngagementScore,
		story.WordCount,
		story.ReadingTimeMinutes,
		scenes,
		goalIDs,
		tags,
		images,
		story.CreatedAt,
		story.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner or character does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create story",
			slog.String("error", err.Error()),
			slog.String("story_id", story.ID.String()))
		return MapError(err)
	}

	log.Info("story created",
		slog.String("story_id", story.ID.String()),
		slog.String("user_id", story.UserID.String()))
	return nil
}

// GetByID implements store.StoryStore.GetByID.
func (s *PostgresStoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`
	story, err := scanStory(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStoryNotFound
		}
		return nil, MapError(err)
	}
	return story, nil
}

// ListByUser implements store.StoryStore.ListByUser.
func (s *PostgresStoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories WHERE user_id = $1 ORDER BY created_at DESC`
	return s.queryStories(ctx, query, userID)
}

// ListPublished implements store.StoryStore.ListPublished.
func (s *PostgresStoryStore) ListPublished(ctx context.Context, offset, limit int) ([]*domain.Story, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE is_public = TRUE
		ORDER BY published_at DESC
		LIMIT $1 OFFSET $2
	`
	return s.queryStories(ctx, query, limit, offset)
}

// Update implements store.StoryStore.Update.
func (s *PostgresStoryStore) Update(ctx context.Context, story *domain.Story) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := story.Validate(); err != nil {
		log.Warn("story validation failed during update",
			slog.String("error", err.Error()),
			slog.String("story_id", story.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	scenes, goalIDs, tags, images, err := s.marshalCollections(story)
	if err != nil {
		return err
	}

	query := `
		UPDATE stories
		SET title = $1, prompt = $2, content = $3, summary = $4, genre = $5,
			ai_model = $6, generation_status = $7, moderation_status = $8,
			failure_reason = $9, is_public = $10, published_at = $11,
			view_count = $12, like_count = $13, share_count = $14,
			rating_count = $15, rating_sum = $16, average_rating = $17,
			engagement_score = $18, word_count = $19, reading_time_minutes = $20,
			scenes = $21, learning_goal_ids = $22, tags = $23, image_urls = $24,
			updated_at = $25
		WHERE id = $26
	`
	result, err := s.db.ExecContext(ctx, query,
		story.Title,
		story.Prompt,
		story.Content,
		story.Summary,
		story.Genre,
		story.AIModel,
		story.GenerationStatus,
		story.ModerationStatus,
		story.FailureReason,
		story.IsPublic,
		story.PublishedAt,
		story.ViewCount,
		story.LikeCount,
		story.ShareCount,
		story.RatingCount,
		story.RatingSum,
		story.AverageRating,
		story.EngagementScore,
		story.WordCount,
		story.ReadingTimeMinutes,
		scenes,
		goalIDs,
		tags,
		images,
		story.UpdatedAt,
		story.ID,
	)
	if err != nil {
		log.Error("failed to update story",
			slog.String("error", err.Error()),
			slog.String("story_id", story.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrStoryNotFound)
}

// Delete implements store.StoryStore.Delete.
func (s *PostgresStoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete story",
			slog.String("error", err.Error()),
			slog.String("story_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrStoryNotFound); err != nil {
		return err
	}

	log.Info("story deleted", slog.String("story_id", id.String()))
	return nil
}

// WithTx implements store.StoryStore.WithTx.
func (s *PostgresStoryStore) WithTx(tx *sql.Tx) store.StoryStore {
	return &PostgresStoryStore{db: tx, logger: s.logger}
}

func (s *PostgresStoryStore) marshalCollections(story *domain.Story) (scenes, goalIDs, tags, images any, err error) {
	if scenes, err = marshalColumn(story.Scenes); err != nil {
		return nil, nil, nil, nil, err
	}
	if goalIDs, err = marshalColumn(story.LearningGoalIDs); err != nil {
		return nil, nil, nil, nil, err
	}
	if tags, err = marshalColumn(story.Tags); err != nil {
		return nil, nil, nil, nil, err
	}
	if images, err = marshalColumn(story.ImageURLs); err != nil {
		return nil, nil, nil, nil, err
	}
	return scenes, goalIDs, tags, images, nil
}

func (s *PostgresStoryStore) queryStories(ctx context.Context, query string, args ...any) ([]*domain.Story, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var stories []*domain.Story
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, MapError(err)
		}
		stories = append(stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return stories, nil
}

func scanStory(row rowScanner) (*domain.Story, error) {
	var (
		story            domain.Story
		generationStatus string
		moderationStatus string
		scenes           []byte
		goalIDs          []byte
		tags             []byte
		images           []byte
	)
	err := row.Scan(
		&story.ID,
		&story.Title,
		&story.Prompt,
		&story.Content,
		&story.Summary,
		&story.CharacterID,
		&story.UserID,
		&story.Genre,
		&story.AIModel,
		&generationStatus,
		&moderationStatus,
		&story.FailureReason,
		&story.IsPublic,
		&story.PublishedAt,
		&story.ViewCount,
		&story.LikeCount,
		&story.ShareCount,
		&story.RatingCount,
		&story.RatingSum,
		&story.AverageRating,
		&story.EngagementScore,
		&story.WordCount,
		&story.ReadingTimeMinutes,
		&scenes,
		&goalIDs,
		&tags,
		&images,
		&story.CreatedAt,
		&story.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	story.GenerationStatus = domain.GenerationStatus(generationStatus)
	story.ModerationStatus = domain.ModerationStatus(moderationStatus)
	if err := unmarshalColumn(scenes, &story.Scenes); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(goalIDs, &story.LearningGoalIDs); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(tags, &story.Tags); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(images, &story.ImageURLs); err != nil {
		return nil, err
	}
	return &story, nil
}
