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

func newTestCharacterService(t *testing.T) (*CharacterService, *MockCharacterStore, *MockUserStore) {
	t.Helper()
	characters := new(MockCharacterStore)
	users := new(MockUserStore)
	svc, err := NewCharacterService(unreachableDB(t), characters, users, noopEmitter{}, slog.Default())
	require.NoError(t, err)
	return svc, characters, users
}

func TestCreateCharacterQuotaReached(t *testing.T) {
	t.Parallel()

	user := verifiedParent(t) // free tier: 3 characters
	user.Usage.CharactersCreated = user.Limits().MaxCharacters

	svc, _, users := newTestCharacterService(t)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := svc.CreateCharacter(context.Background(), user.ID, CreateCharacterInput{Name: "Luna"})
	assert.ErrorIs(t, err, domain.ErrCharacterQuotaReached)
}

func TestCreateCharacterRejectsEmptyName(t *testing.T) {
	t.Parallel()

	user := verifiedParent(t)
	svc, _, users := newTestCharacterService(t)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := svc.CreateCharacter(context.Background(), user.ID, CreateCharacterInput{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrEmptyCharacterName)
}

func TestGetCharacterRequiresOwnership(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	character, err := domain.NewCharacter(ownerID, "Luna", "explorer", map[string]int{"courage": 40})
	require.NoError(t, err)

	svc, characters, _ := newTestCharacterService(t)
	characters.On("GetByID", mock.Anything, character.ID).Return(character, nil)

	got, err := svc.GetCharacter(context.Background(), ownerID, character.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luna", got.Name)

	_, err = svc.GetCharacter(context.Background(), uuid.New(), character.ID)
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestGetCharacterNotFound(t *testing.T) {
	t.Parallel()

	svc, characters, _ := newTestCharacterService(t)
	characters.On("GetByID", mock.Anything, mock.Anything).
		Return(nil, store.ErrCharacterNotFound)

	_, err := svc.GetCharacter(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestAdjustTraitRequiresOwnership(t *testing.T) {
	t.Parallel()

	character, err := domain.NewCharacter(uuid.New(), "Luna", "explorer", nil)
	require.NoError(t, err)

	svc, characters, _ := newTestCharacterService(t)
	characters.On("GetByID", mock.Anything, character.ID).Return(character, nil)

	_, err = svc.AdjustTrait(context.Background(), uuid.New(), character.ID, "courage", 5)
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestGainExperienceRejectsNegativePoints(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	character, err := domain.NewCharacter(ownerID, "Luna", "explorer", nil)
	require.NoError(t, err)

	svc, characters, _ := newTestCharacterService(t)
	characters.On("GetByID", mock.Anything, character.ID).Return(character, nil)

	_, err = svc.GainExperience(context.Background(), ownerID, character.ID, -10)
	assert.ErrorIs(t, err, domain.ErrNegativeExperience)
}
