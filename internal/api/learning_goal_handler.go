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

// GoalManager is the slice of the learning goal service the goal endpoints
// need.
type GoalManager interface {
	CreateGoal(ctx context.Context, input service.CreateGoalInput) (*domain.LearningGoal, error)
	GetGoal(ctx context.Context, goalID uuid.UUID) (*domain.LearningGoal, error)
	ListChildGoals(ctx context.Context, childID uuid.UUID) ([]*domain.LearningGoal, error)
	UpdateProgress(ctx context.Context, goalID uuid.UUID, progress float64) (*domain.LearningGoal, error)
	AddEvidence(ctx context.Context, goalID uuid.UUID, note string, storyID uuid.UUID) (*domain.LearningGoal, error)
	FlagForReview(ctx context.Context, goalID uuid.UUID, reason string) (*domain.LearningGoal, error)
	AssignToChild(ctx context.Context, goalID, childID uuid.UUID) (*domain.LearningGoal, error)
	RankGoalsForChild(ctx context.Context, childID, characterID uuid.UUID) ([]service.RankedGoal, error)
	DeleteGoal(ctx context.Context, goalID uuid.UUID) error
}

// LearningGoalHandler handles learning goal requests.
type LearningGoalHandler struct {
	goals GoalManager
}

// NewLearningGoalHandler creates a LearningGoalHandler delegating to the
// given service.
func NewLearningGoalHandler(goals GoalManager) *LearningGoalHandler {
	return &LearningGoalHandler{goals: goals}
}

func goalIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// Create handles POST /goals.
func (h *LearningGoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateGoalRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	goal, err := h.goals.CreateGoal(r.Context(), service.CreateGoalInput{
		Title:           req.Title,
		Category:        req.Category,
		Difficulty:      domain.GoalDifficulty(req.Difficulty),
		TargetAge:       req.TargetAge,
		Priority:        req.Priority,
		SuccessCriteria: req.SuccessCriteria,
		RelatedTraits:   req.RelatedTraits,
		ChildID:         req.ChildID,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, goal)
}

// Get handles GET /goals/{id}.
func (h *LearningGoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	goalID, err := goalIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid goal ID")
		return
	}

	goal, err := h.goals.GetGoal(r.Context(), goalID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goal)
}

// ListForChild handles GET /children/{id}/goals.
func (h *LearningGoalHandler) ListForChild(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid child ID")
		return
	}

	goals, err := h.goals.ListChildGoals(r.Context(), childID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goals)
}

// Recommend handles GET /children/{id}/goals/recommended. An optional
// character_id query parameter supplies the traits used for scoring.
func (h *LearningGoalHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid child ID")
		return
	}

	characterID := uuid.Nil
	if raw := r.URL.Query().Get("character_id"); raw != "" {
		characterID, err = uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid character ID")
			return
		}
	}

	ranked, err := h.goals.RankGoalsForChild(r.Context(), childID, characterID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := make([]RankedGoalResponse, 0, len(ranked))
	for _, entry := range ranked {
		response = append(response, RankedGoalResponse{Goal: entry.Goal, Score: entry.Score})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// UpdateProgress handles PUT /goals/{id}/progress.
func (h *LearningGoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	goalID, err := goalIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid goal ID")
		return
	}

	var req UpdateProgressRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	goal, err := h.goals.UpdateProgress(r.Context(), goalID, req.Progress)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goal)
}

// AddEvidence handles POST /goals/{id}/evidence.
func (h *LearningGoalHandler) AddEvidence(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	goalID, err := goalIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid goal ID")
		return
	}

	var req EvidenceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	goal, err := h.goals.AddEvidence(r.Context(), goalID, req.Note, req.StoryID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goal)
}

// Flag handles POST /goals/{id}/flag.
func (h *LearningGoalHandler) Flag(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	goalID, err := goalIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid goal ID")
		return
	}

	var req FlagGoalRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	goal, err := h.goals.FlagForReview(r.Context(), goalID, req.Reason)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goal)
}

// Assign handles POST /goals/{id}/assign/{childID}.
func (h *LearningGoalHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	goalID, err := goalIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid goal ID")
		return
	}
	childID, err := uuid.Parse(chi.URLParam(r, "childID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid child ID")
		return
	}

	goal, err := h.goals.AssignToChild(r.Context(), goalID, childID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goal)
}

// Delete handles DELETE /goals/{id}.
func (h *LearningGoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	goalID, err := goalIDFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid goal ID")
		return
	}

	if err := h.goals.DeleteGoal(r.Context(), goalID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
