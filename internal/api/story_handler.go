package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/api/middleware"
	"github.com/dschilow/Avatales-Backend-sub001/internal/api/shared"
	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/service"
)

// StoryManager is the slice of the story service the story endpoints need.
type StoryManager interface {
	CreateStory(ctx context.Context, userID uuid.UUID, input service.CreateStoryInput) (*domain.Story, error)
	GetStory(ctx context.Context, requesterID, storyID uuid.UUID) (*domain.Story, error)
	ListUserStories(ctx context.Context, userID uuid.UUID) ([]*domain.Story, error)
	ListPublished(ctx context.Context, offset, limit int) ([]*domain.Story, error)
	Publish(ctx context.Context, requesterID, storyID uuid.UUID) error
	Unpublish(ctx context.Context, requesterID, storyID uuid.UUID) error
	Moderate(ctx context.Context, storyID uuid.UUID, status domain.ModerationStatus) error
	RecordView(ctx context.Context, storyID uuid.UUID) error
	AddLike(ctx context.Context, storyID uuid.UUID) error
	RemoveLike(ctx context.Context, storyID uuid.UUID) error
	RecordShare(ctx context.Context, storyID uuid.UUID) error
	AddRating(ctx context.Context, storyID uuid.UUID, rating float64) error
	AddTag(ctx context.Context, requesterID, storyID uuid.UUID, tag string) error
	AddImage(ctx context.Context, requesterID, storyID uuid.UUID, url string) error
	AddLearningGoal(ctx context.Context, requesterID, storyID, goalID uuid.UUID) error
	DeleteStory(ctx context.Context, requesterID, storyID uuid.UUID) error
}

// StoryHandler handles story lifecycle and engagement requests.
type StoryHandler struct {
	stories StoryManager
}

// NewStoryHandler creates a StoryHandler delegating to the given service.
func NewStoryHandler(stories StoryManager) *StoryHandler {
	return &StoryHandler{stories: stories}
}

// storyIDFromRequest parses the {id} URL parameter.
func storyIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// Create handles POST /stories.
func (h *StoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateStoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	story, err := h.stories.CreateStory(r.Context(), userID, service.CreateStoryInput{
		Title:           req.Title,
		Prompt:          req.Prompt,
		Genre:           req.Genre,
		CharacterID:     req.CharacterID,
		LearningGoalIDs: req.LearningGoalIDs,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, story)
}

// Get handles GET /stories/{id}.
func (h *StoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	storyID, err := storyIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid story ID")
		return
	}

	story, err := h.stories.GetStory(r.Context(), userID, storyID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, story)
}

// List handles GET /stories.
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	stories, err := h.stories.ListUserStories(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stories)
}

// ListPublished handles GET /stories/published. Offset and limit come from
// query parameters; out-of-range values fall back to defaults.
func (h *StoryHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	stories, err := h.stories.ListPublished(r.Context(), offset, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stories)
}

// Publish handles POST /stories/{id}/publish.
func (h *StoryHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.ownedAction(w, r, h.stories.Publish)
}

// Unpublish handles POST /stories/{id}/unpublish.
func (h *StoryHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.ownedAction(w, r, h.stories.Unpublish)
}

// Delete handles DELETE /stories/{id}.
func (h *StoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.ownedAction(w, r, h.stories.DeleteStory)
}

// Moderate handles POST /stories/{id}/moderate. Intended for review tooling.
func (h *StoryHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	storyID, err := storyIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid story ID")
		return
	}

	var req ModerateStoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.stories.Moderate(r.Context(), storyID, domain.ModerationStatus(req.Status)); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordView handles POST /stories/{id}/view.
func (h *StoryHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	h.engagementAction(w, r, h.stories.RecordView)
}

// AddLike handles POST /stories/{id}/like.
func (h *StoryHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	h.engagementAction(w, r, h.stories.AddLike)
}

// RemoveLike handles DELETE /stories/{id}/like.
func (h *StoryHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	h.engagementAction(w, r, h.stories.RemoveLike)
}

// RecordShare handles POST /stories/{id}/share.
func (h *StoryHandler) RecordShare(w http.ResponseWriter, r *http.Request) {
	h.engagementAction(w, r, h.stories.RecordShare)
}

// Rate handles POST /stories/{id}/rating.
func (h *StoryHandler) Rate(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	storyID, err := storyIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid story ID")
		return
	}

	var req RateStoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.stories.AddRating(r.Context(), storyID, req.Rating); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTag handles POST /stories/{id}/tags.
func (h *StoryHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	storyID, err := storyIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid story ID")
		return
	}

	var req TagRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.stories.AddTag(r.Context(), userID, storyID, req.Tag); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddImage handles POST /stories/{id}/images.
func (h *StoryHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	storyID, err := storyIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid story ID")
		return
	}

	var req ImageRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.stories.AddImage(r.Context(), userID, storyID, req.URL); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachGoal handles POST /stories/{id}/goals/{goalID}.
func (h *StoryHandler) AttachGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	storyID, err := storyIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid story ID")
		return
	}
	goalID, err := uuid.Parse(chi.URLParam(r, "goalID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid goal ID")
		return
	}

	if err := h.stories.AddLearningGoal(r.Context(), userID, storyID, goalID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedAction runs an owner-scoped story operation identified by the URL.
func (h *StoryHandler) ownedAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, requesterID, storyID uuid.UUID) error) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	storyID, err := storyIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid story ID")
		return
	}

	if err := fn(r.Context(), userID, storyID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// engagementAction runs an unauthenticated-counter operation on a story.
func (h *StoryHandler) engagementAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, storyID uuid.UUID) error) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	storyID, err := storyIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid story ID")
		return
	}

	if err := fn(r.Context(), storyID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
