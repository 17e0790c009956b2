package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/service"
)

type stubCharacterManager struct {
	character  *domain.Character
	characters []*domain.Character
	err        error
	gotInput   service.CreateCharacterInput
	gotTrait   string
	gotDelta   int
}

func (s *stubCharacterManager) CreateCharacter(_ context.Context, _ uuid.UUID, input service.CreateCharacterInput) (*domain.Character, error) {
	s.gotInput = input
	return s.character, s.err
}

func (s *stubCharacterManager) GetCharacter(context.Context, uuid.UUID, uuid.UUID) (*domain.Character, error) {
	return s.character, s.err
}

func (s *stubCharacterManager) ListCharacters(context.Context, uuid.UUID) ([]*domain.Character, error) {
	return s.characters, s.err
}

func (s *stubCharacterManager) AdjustTrait(_ context.Context, _, _ uuid.UUID, trait string, delta int) (*domain.Character, error) {
	s.gotTrait = trait
	s.gotDelta = delta
	return s.character, s.err
}

func (s *stubCharacterManager) AddMemory(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, string, string) (*domain.Character, error) {
	return s.character, s.err
}

func (s *stubCharacterManager) GainExperience(context.Context, uuid.UUID, uuid.UUID, int) (*domain.Character, error) {
	return s.character, s.err
}

func (s *stubCharacterManager) DeleteCharacter(context.Context, uuid.UUID, uuid.UUID) error {
	return s.err
}

func testCharacter(t *testing.T, ownerID uuid.UUID) *domain.Character {
	t.Helper()
	character, err := domain.NewCharacter(ownerID, "Luna", "explorer", map[string]int{"courage": 60})
	require.NoError(t, err)
	return character
}

func TestCreateCharacterCreated(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	manager := &stubCharacterManager{character: testCharacter(t, userID)}
	h := NewCharacterHandler(manager)

	req := authedRequest(t, http.MethodPost, "/characters", userID, CreateCharacterRequest{
		Name:      "Luna",
		Archetype: "explorer",
		Traits:    map[string]int{"courage": 60},
	}, nil)
	w := httptest.NewRecorder()
	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Luna", manager.gotInput.Name)
	assert.Equal(t, 60, manager.gotInput.StartingTraits["courage"])
}

func TestCreateCharacterQuotaReached(t *testing.T) {
	t.Parallel()

	h := NewCharacterHandler(&stubCharacterManager{err: domain.ErrCharacterQuotaReached})
	req := authedRequest(t, http.MethodPost, "/characters", uuid.New(), CreateCharacterRequest{
		Name:      "Luna",
		Archetype: "explorer",
	}, nil)
	w := httptest.NewRecorder()
	h.Create(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateCharacterMissingName(t *testing.T) {
	t.Parallel()

	h := NewCharacterHandler(&stubCharacterManager{})
	req := authedRequest(t, http.MethodPost, "/characters", uuid.New(), CreateCharacterRequest{
		Archetype: "explorer",
	}, nil)
	w := httptest.NewRecorder()
	h.Create(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdjustTraitPassesDelta(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	manager := &stubCharacterManager{character: testCharacter(t, userID)}
	h := NewCharacterHandler(manager)

	characterID := uuid.New()
	req := authedRequest(t, http.MethodPost, "/characters/"+characterID.String()+"/traits", userID,
		AdjustTraitRequest{Trait: "empathy", Delta: -5},
		map[string]string{"id": characterID.String()})
	w := httptest.NewRecorder()
	h.AdjustTrait(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "empathy", manager.gotTrait)
	assert.Equal(t, -5, manager.gotDelta)
}

func TestGetCharacterNotFound(t *testing.T) {
	t.Parallel()

	h := NewCharacterHandler(&stubCharacterManager{err: service.ErrCharacterNotFound})
	characterID := uuid.New()
	req := authedRequest(t, http.MethodGet, "/characters/"+characterID.String(), uuid.New(), nil,
		map[string]string{"id": characterID.String()})
	w := httptest.NewRecorder()
	h.Get(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCharacterForbidden(t *testing.T) {
	t.Parallel()

	h := NewCharacterHandler(&stubCharacterManager{err: service.ErrNotOwned})
	characterID := uuid.New()
	req := authedRequest(t, http.MethodDelete, "/characters/"+characterID.String(), uuid.New(), nil,
		map[string]string{"id": characterID.String()})
	w := httptest.NewRecorder()
	h.Delete(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
