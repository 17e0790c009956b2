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

// PostgresCharacterStore implements store.CharacterStore backed by
// PostgreSQL. Traits and memories are stored as JSONB.
type PostgresCharacterStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCharacterStore creates a PostgreSQL-backed character store.
func NewPostgresCharacterStore(db store.DBTX, logger *slog.Logger) *PostgresCharacterStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCharacterStore{
		db:     db,
		logger: logger.With(slog.String("component", "character_store")),
	}
}

var _ store.CharacterStore = (*PostgresCharacterStore)(nil)

const characterColumns = `id, user_id, name, archetype, avatar_url, traits,
	memories, experience, level, created_at, updated_at`

// Create implements store.CharacterStore.Create.
func (s *PostgresCharacterStore) Create(ctx context.Context, character *domain.Character) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := character.Validate(); err != nil {
		log.Warn("character validation failed during create",
			slog.String("error", err.Error()),
			slog.String("character_id", character.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	traits, err := marshalColumn(character.Traits)
	if err != nil {
		return err
	}
	memories, err := marshalColumn(character.Memories)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO characters (` + characterColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		character.ID,
		character.UserID,
		character.Name,
		character.Archetype,
		character.AvatarURL,
		traits,
		memories,
		character.Experience,
		character.Level,
		character.CreatedAt,
		character.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create character",
			slog.String("error", err.Error()),
			slog.String("character_id", character.ID.String()))
		return MapError(err)
	}

	log.Info("character created",
		slog.String("character_id", character.ID.String()),
		slog.String("user_id", character.UserID.String()))
	return nil
}

// GetByID implements store.CharacterStore.GetByID.
func (s *PostgresCharacterStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = $1`
	character, err := scanCharacter(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCharacterNotFound
		}
		return nil, MapError(err)
	}
	return character, nil
}

// ListByUser implements store.CharacterStore.ListByUser.
func (s *PostgresCharacterStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE user_id = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var characters []*domain.Character
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, MapError(err)
		}
		characters = append(characters, character)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return characters, nil
}

// Update implements store.CharacterStore.Update.
func (s *PostgresCharacterStore) Update(ctx context.Context, character *domain.Character) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := character.Validate(); err != nil {
		log.Warn("character validation failed during update",
			slog.String("error", err.Error()),
			slog.String("character_id", character.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	traits, err := marshalColumn(character.Traits)
	if err != nil {
		return err
	}
	memories, err := marshalColumn(character.Memories)
	if err != nil {
		return err
	}

	query := `
		UPDATE characters
		SET name = $1, archetype = $2, avatar_url = $3, traits = $4,
			memories = $5, experience = $6, level = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := s.db.ExecContext(ctx, query,
		character.Name,
		character.Archetype,
		character.AvatarURL,
		traits,
		memories,
		character.Experience,
		character.Level,
		character.UpdatedAt,
		character.ID,
	)
	if err != nil {
		log.Error("failed to update character",
			slog.String("error", err.Error()),
			slog.String("character_id", character.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrCharacterNotFound)
}

// Delete implements store.CharacterStore.Delete.
func (s *PostgresCharacterStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete character",
			slog.String("error", err.Error()),
			slog.String("character_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrCharacterNotFound); err != nil {
		return err
	}

	log.Info("character deleted", slog.String("character_id", id.String()))
	return nil
}

// WithTx implements store.CharacterStore.WithTx.
func (s *PostgresCharacterStore) WithTx(tx *sql.Tx) store.CharacterStore {
	return &PostgresCharacterStore{db: tx, logger: s.logger}
}

func scanCharacter(row rowScanner) (*domain.Character, error) {
	var (
		character domain.Character
		traits    []byte
		memories  []byte
	)
	err := row.Scan(
		&character.ID,
		&character.UserID,
		&character.Name,
		&character.Archetype,
		&character.AvatarURL,
		&traits,
		&memories,
		&character.Experience,
		&character.Level,
		&character.CreatedAt,
		&character.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalColumn(traits, &character.Traits); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(memories, &character.Memories); err != nil {
		return nil, err
	}
	if character.Traits == nil {
		character.Traits = map[string]int{}
	}
	return &character, nil
}
