package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/events"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

// CreateCharacterInput carries the user-provided fields for a new character.
type CreateCharacterInput struct {
	Name           string
	Archetype      string
	AvatarURL      string
	StartingTraits map[string]int
}

// CharacterService manages story protagonists: creation against the owner's
// quota, trait progression, memories and experience.
type CharacterService struct {
	db         *sql.DB
	characters store.CharacterStore
	users      store.UserStore
	emitter    events.EventEmitter
	logger     *slog.Logger
}

// NewCharacterService creates a CharacterService.
func NewCharacterService(
	db *sql.DB,
	characters store.CharacterStore,
	users store.UserStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*CharacterService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if characters == nil || users == nil {
		return nil, errors.New("stores cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CharacterService{
		db:         db,
		characters: characters,
		users:      users,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "character_service")),
	}, nil
}

// CreateCharacter creates a character for the user, consuming one slot from
// the subscription's character allowance.
func (s *CharacterService) CreateCharacter(ctx context.Context, userID uuid.UUID, input CreateCharacterInput) (*domain.Character, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapError("create_character", "failed to load account", err)
	}
	if !user.CanCreateMoreCharacters() {
		return nil, domain.ErrCharacterQuotaReached
	}

	character, err := domain.NewCharacter(userID, input.Name, input.Archetype, input.StartingTraits)
	if err != nil {
		return nil, err
	}
	character.AvatarURL = input.AvatarURL

	if err := user.RecordCharacterCreated(); err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.characters.WithTx(tx).Create(ctx, character); err != nil {
			return err
		}
		return s.users.WithTx(tx).Update(ctx, user)
	})
	if err != nil {
		return nil, wrapError("create_character", "failed to save character", err)
	}

	publishEvents(ctx, s.emitter, s.logger, character, user)

	s.logger.Info("character created", "character_id", character.ID, "user_id", userID)
	return character, nil
}

// GetCharacter retrieves a character owned by the requester.
func (s *CharacterService) GetCharacter(ctx context.Context, requesterID, characterID uuid.UUID) (*domain.Character, error) {
	character, err := s.characters.GetByID(ctx, characterID)
	if err != nil {
		return nil, wrapError("get_character", "failed to load character", err)
	}
	if character.UserID != requesterID {
		return nil, ErrNotOwned
	}
	return character, nil
}

// ListCharacters returns all characters owned by the user.
func (s *CharacterService) ListCharacters(ctx context.Context, userID uuid.UUID) ([]*domain.Character, error) {
	characters, err := s.characters.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrapError("list_characters", "failed to load characters", err)
	}
	return characters, nil
}

// AdjustTrait applies a delta to one of the character's traits.
func (s *CharacterService) AdjustTrait(ctx context.Context, requesterID, characterID uuid.UUID, trait string, delta int) (*domain.Character, error) {
	return s.mutate(ctx, requesterID, characterID, "adjust_trait", func(character *domain.Character) error {
		return character.AdjustTrait(trait, delta)
	})
}

// AddMemory records a story moment in the character's memory log.
func (s *CharacterService) AddMemory(ctx context.Context, requesterID, characterID, storyID uuid.UUID, summary, emotion string) (*domain.Character, error) {
	return s.mutate(ctx, requesterID, characterID, "add_memory", func(character *domain.Character) error {
		return character.AddMemory(storyID, summary, emotion)
	})
}

// GainExperience awards experience points, leveling the character up when a
// threshold is crossed.
func (s *CharacterService) GainExperience(ctx context.Context, requesterID, characterID uuid.UUID, points int) (*domain.Character, error) {
	return s.mutate(ctx, requesterID, characterID, "gain_experience", func(character *domain.Character) error {
		return character.GainExperience(points)
	})
}

// UpdateAvatar sets the character's avatar image URL.
func (s *CharacterService) UpdateAvatar(ctx context.Context, requesterID, characterID uuid.UUID, avatarURL string) (*domain.Character, error) {
	return s.mutate(ctx, requesterID, characterID, "update_avatar", func(character *domain.Character) error {
		character.AvatarURL = avatarURL
		return nil
	})
}

// DeleteCharacter removes the requester's character permanently.
func (s *CharacterService) DeleteCharacter(ctx context.Context, requesterID, characterID uuid.UUID) error {
	character, err := s.characters.GetByID(ctx, characterID)
	if err != nil {
		return wrapError("delete_character", "failed to load character", err)
	}
	if character.UserID != requesterID {
		return ErrNotOwned
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.characters.WithTx(tx).Delete(ctx, characterID)
	})
	if err != nil {
		return wrapError("delete_character", "failed to delete character", err)
	}
	return nil
}

// mutate loads an owned character, applies fn, and persists the result in a
// transaction. Events recorded by fn are published after commit.
func (s *CharacterService) mutate(ctx context.Context, requesterID, characterID uuid.UUID, operation string, fn func(*domain.Character) error) (*domain.Character, error) {
	character, err := s.characters.GetByID(ctx, characterID)
	if err != nil {
		return nil, wrapError(operation, "failed to load character", err)
	}
	if character.UserID != requesterID {
		return nil, ErrNotOwned
	}

	if err := fn(character); err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.characters.WithTx(tx).Update(ctx, character)
	})
	if err != nil {
		return nil, wrapError(operation, "failed to save character", err)
	}

	publishEvents(ctx, s.emitter, s.logger, character)
	return character, nil
}
