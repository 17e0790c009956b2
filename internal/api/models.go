package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
	Password    string `json:"password"     validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest defines the payload for profile updates.
type UpdateProfileRequest struct {
	DisplayName string     `json:"display_name" validate:"required,min=1,max=100"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// ChangePasswordRequest defines the payload for password changes.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// AddChildRequest defines the payload for creating a child profile.
type AddChildRequest struct {
	Name        string    `json:"name"          validate:"required,min=1,max=100"`
	DateOfBirth time.Time `json:"date_of_birth" validate:"required"`
}

// PreferenceRequest defines the payload for setting a single preference.
type PreferenceRequest struct {
	Key   string `json:"key"   validate:"required"`
	Value string `json:"value" validate:"required"`
}

// SubscriptionRequest defines the payload for switching subscription tiers.
type SubscriptionRequest struct {
	Tier      string     `json:"tier" validate:"required,oneof=free premium family"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// UsageRequest defines the payload for tracking a child's reading time.
type UsageRequest struct {
	Minutes int `json:"minutes" validate:"required,gt=0"`
}

// UsageResponse reports whether the daily limit is now exceeded.
type UsageResponse struct {
	LimitExceeded bool `json:"limit_exceeded"`
}

// CreateStoryRequest defines the payload for drafting a new story.
type CreateStoryRequest struct {
	Title           string      `json:"title"        validate:"required,min=1,max=200"`
	Prompt          string      `json:"prompt"       validate:"required,min=1,max=2000"`
	Genre           string      `json:"genre,omitempty"`
	CharacterID     uuid.UUID   `json:"character_id" validate:"required"`
	LearningGoalIDs []uuid.UUID `json:"learning_goal_ids,omitempty"`
}

// RateStoryRequest defines the payload for rating a story.
type RateStoryRequest struct {
	Rating float64 `json:"rating" validate:"required,gte=1,lte=5"`
}

// TagRequest defines the payload for tagging a story.
type TagRequest struct {
	Tag string `json:"tag" validate:"required,min=1,max=50"`
}

// ImageRequest defines the payload for attaching an illustration to a story.
type ImageRequest struct {
	URL string `json:"url" validate:"required,url,max=500"`
}

// ModerateStoryRequest defines the payload for applying a moderation decision.
type ModerateStoryRequest struct {
	Status string `json:"status" validate:"required,oneof=pending auto_approved approved rejected"`
}

// CreateCharacterRequest defines the payload for creating a character.
type CreateCharacterRequest struct {
	Name      string         `json:"name"      validate:"required,min=1,max=100"`
	Archetype string         `json:"archetype,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Traits    map[string]int `json:"traits,omitempty"`
}

// AdjustTraitRequest defines the payload for adjusting a character trait.
type AdjustTraitRequest struct {
	Trait string `json:"trait" validate:"required"`
	Delta int    `json:"delta" validate:"required"`
}

// AddMemoryRequest defines the payload for recording a character memory.
type AddMemoryRequest struct {
	StoryID uuid.UUID `json:"story_id"`
	Summary string    `json:"summary" validate:"required,min=1,max=500"`
	Emotion string    `json:"emotion,omitempty"`
}

// GainExperienceRequest defines the payload for awarding experience.
type GainExperienceRequest struct {
	Points int `json:"points" validate:"required,gt=0"`
}

// CreateGoalRequest defines the payload for creating a learning goal.
type CreateGoalRequest struct {
	Title           string     `json:"title"      validate:"required,min=1,max=200"`
	Category        string     `json:"category"   validate:"required"`
	Difficulty      string     `json:"difficulty" validate:"required,oneof=easy medium hard"`
	TargetAge       int        `json:"target_age" validate:"gte=0,lte=17"`
	Priority        int        `json:"priority"   validate:"required,gte=1,lte=5"`
	SuccessCriteria []string   `json:"success_criteria,omitempty"`
	RelatedTraits   []string   `json:"related_traits,omitempty"`
	ChildID         *uuid.UUID `json:"child_id,omitempty"`
}

// UpdateProgressRequest defines the payload for updating goal progress.
type UpdateProgressRequest struct {
	Progress float64 `json:"progress" validate:"gte=0,lte=100"`
}

// EvidenceRequest defines the payload for recording goal evidence.
type EvidenceRequest struct {
	Note    string    `json:"note" validate:"required,min=1,max=500"`
	StoryID uuid.UUID `json:"story_id"`
}

// FlagGoalRequest defines the payload for flagging a goal for review.
type FlagGoalRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RankedGoalResponse pairs a goal with its suitability score.
type RankedGoalResponse struct {
	Goal  *domain.LearningGoal `json:"goal"`
	Score float64              `json:"score"`
}
