package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/api/middleware"
	"github.com/dschilow/Avatales-Backend-sub001/internal/api/shared"
	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/service"
)

// CharacterManager is the slice of the character service the character
// endpoints need.
type CharacterManager interface {
	CreateCharacter(ctx context.Context, userID uuid.UUID, input service.CreateCharacterInput) (*domain.Character, error)
	GetCharacter(ctx context.Context, requesterID, characterID uuid.UUID) (*domain.Character, error)
	ListCharacters(ctx context.Context, userID uuid.UUID) ([]*domain.Character, error)
	AdjustTrait(ctx context.Context, requesterID, characterID uuid.UUID, trait string, delta int) (*domain.Character, error)
	AddMemory(ctx context.Context, requesterID, characterID, storyID uuid.UUID, summary, emotion string) (*domain.Character, error)
	GainExperience(ctx context.Context, requesterID, characterID uuid.UUID, points int) (*domain.Character, error)
	DeleteCharacter(ctx context.Context, requesterID, characterID uuid.UUID) error
}

// CharacterHandler handles character management requests.
type CharacterHandler struct {
	characters CharacterManager
}

// NewCharacterHandler creates a CharacterHandler delegating to the given
// service.
func NewCharacterHandler(characters CharacterManager) *CharacterHandler {
	return &CharacterHandler{characters: characters}
}

func characterIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// Create handles POST /characters.
func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateCharacterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	character, err := h.characters.CreateCharacter(r.Context(), userID, service.CreateCharacterInput{
		Name:           req.Name,
		Archetype:      req.Archetype,
		AvatarURL:      req.AvatarURL,
		StartingTraits: req.Traits,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, character)
}

// Get handles GET /characters/{id}.
func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	characterID, err := characterIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid character ID")
		return
	}

	character, err := h.characters.GetCharacter(r.Context(), userID, characterID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, character)
}

// List handles GET /characters.
func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	characters, err := h.characters.ListCharacters(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, characters)
}

// AdjustTrait handles POST /characters/{id}/traits.
func (h *CharacterHandler) AdjustTrait(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	characterID, err := characterIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid character ID")
		return
	}

	var req AdjustTraitRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	character, err := h.characters.AdjustTrait(r.Context(), userID, characterID, req.Trait, req.Delta)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, character)
}

// AddMemory handles POST /characters/{id}/memories.
func (h *CharacterHandler) AddMemory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	characterID, err := characterIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid character ID")
		return
	}

	var req AddMemoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	character, err := h.characters.AddMemory(r.Context(), userID, characterID, req.StoryID, req.Summary, req.Emotion)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, character)
}

// GainExperience handles POST /characters/{id}/experience.
func (h *CharacterHandler) GainExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	characterID, err := characterIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid character ID")
		return
	}

	var req GainExperienceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	character, err := h.characters.GainExperience(r.Context(), userID, characterID, req.Points)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, character)
}

// Delete handles DELETE /characters/{id}.
func (h *CharacterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	characterID, err := characterIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid character ID")
		return
	}

	if err := h.characters.DeleteCharacter(r.Context(), userID, characterID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
