package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerationStatus is the lifecycle of the AI-produced story text.
type GenerationStatus string

// Possible generation status values.
const (
	GenerationPending    GenerationStatus = "pending"
	GenerationInProgress GenerationStatus = "in_progress"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

// ModerationStatus is the content-safety review outcome gating publication.
type ModerationStatus string

// Possible moderation status values.
const (
	ModerationPending      ModerationStatus = "pending"
	ModerationApproved     ModerationStatus = "approved"
	ModerationAutoApproved ModerationStatus = "auto_approved"
	ModerationRejected     ModerationStatus = "rejected"
)

// Story content limits.
const (
	MaxLearningGoalsPerStory = 5
	MaxTagsPerStory          = 15
	MaxImagesPerStory        = 10

	// wordsPerMinute is the assumed reading speed for the reading-time
	// estimate.
	wordsPerMinute = 200

	viewMilestoneInterval  = 100
	likeMilestoneInterval  = 10
	shareMilestoneInterval = 5
)

// Common validation errors for Story.
var (
	ErrEmptyStoryID          = errors.New("story ID cannot be empty")
	ErrEmptyStoryTitle       = errors.New("story title cannot be empty")
	ErrEmptyStoryPrompt      = errors.New("story prompt cannot be empty")
	ErrEmptyStoryOwner       = errors.New("story owner ID cannot be empty")
	ErrEmptyStoryCharacter   = errors.New("story character ID cannot be empty")
	ErrEmptyStoryContent     = errors.New("story content cannot be empty")
	ErrInvalidGenerationStatus = errors.New("invalid generation status")
	ErrInvalidModerationStatus = errors.New("invalid moderation status")
	ErrGenerationNotPending    = errors.New("generation can only start from the pending state")
	ErrGenerationNotInProgress = errors.New("generation is not in progress")
	ErrStoryNotPublishable     = errors.New("story must be fully generated and approved before publishing")
	ErrRatingOutOfRange        = errors.New("rating must be between 1.0 and 5.0")
	ErrLearningGoalLimit       = errors.New("a story can reference at most 5 learning goals")
	ErrImageLimit              = errors.New("a story can reference at most 10 images")
	ErrEmptyTag                = errors.New("tag cannot be empty")
	ErrEmptyImageURL           = errors.New("image URL cannot be empty")
	ErrNoLikesToRemove         = errors.New("story has no likes to remove")
)

// Story is an AI-generated story owned by a user and starring one of their
// characters. Its lifecycle is the product of generation status, moderation
// status, and the publication flag.
type Story struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Prompt      string    `json:"prompt"`
	Content     string    `json:"content,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	CharacterID uuid.UUID `json:"character_id"`
	UserID      uuid.UUID `json:"user_id"`
	Genre       string    `json:"genre,omitempty"`
	AIModel     string    `json:"ai_model,omitempty"`

	GenerationStatus GenerationStatus `json:"generation_status"`
	ModerationStatus ModerationStatus `json:"moderation_status"`
	FailureReason    string           `json:"failure_reason,omitempty"`

	IsPublic    bool       `json:"is_public"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	ViewCount  int64 `json:"view_count"`
	LikeCount  int64 `json:"like_count"`
	ShareCount int64 `json:"share_count"`

	// AverageRating aggregates explicit ratings submitted through AddRating.
	// EngagementScore is the independent like/view-ratio heuristic updated by
	// AddLike; the two are deliberately kept as separate derived fields.
	RatingCount     int64   `json:"rating_count"`
	RatingSum       float64 `json:"rating_sum"`
	AverageRating   float64 `json:"average_rating"`
	EngagementScore float64 `json:"engagement_score"`

	WordCount          int `json:"word_count"`
	ReadingTimeMinutes int `json:"reading_time_minutes"`

	Scenes          []StoryScene `json:"scenes,omitempty"`
	LearningGoalIDs []uuid.UUID  `json:"learning_goal_ids,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	ImageURLs       []string     `json:"image_urls,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	eventRecorder
}

// NewStory creates a story in the pending generation state.
func NewStory(title, prompt string, characterID, userID uuid.UUID) (*Story, error) {
	now := time.Now().UTC()
	story := &Story{
		ID:               uuid.New(),
		Title:            strings.TrimSpace(title),
		Prompt:           strings.TrimSpace(prompt),
		CharacterID:      characterID,
		UserID:           userID,
		GenerationStatus: GenerationPending,
		ModerationStatus: ModerationPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := story.Validate(); err != nil {
		return nil, err
	}

	story.record(story.ID, StoryCreatedPayload{OwnerID: userID, CharacterID: characterID})
	return story, nil
}

// Validate checks the structural invariants of the story.
func (s *Story) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptyStoryID
	}
	if s.Title == "" {
		return ErrEmptyStoryTitle
	}
	if s.Prompt == "" {
		return ErrEmptyStoryPrompt
	}
	if s.UserID == uuid.Nil {
		return ErrEmptyStoryOwner
	}
	if s.CharacterID == uuid.Nil {
		return ErrEmptyStoryCharacter
	}
	if !isValidGenerationStatus(s.GenerationStatus) {
		return ErrInvalidGenerationStatus
	}
	if !isValidModerationStatus(s.ModerationStatus) {
		return ErrInvalidModerationStatus
	}
	return nil
}

// StartGeneration moves the story from pending to in-progress and records
// which AI model is producing the text.
func (s *Story) StartGeneration(aiModel string) error {
	if s.GenerationStatus != GenerationPending {
		return ErrGenerationNotPending
	}
	s.GenerationStatus = GenerationInProgress
	s.AIModel = aiModel
	s.touch()
	s.record(s.ID, GenerationStartedPayload{AIModel: aiModel})
	return nil
}

// CompleteGeneration stores the generated text, derives the word count and
// reading time, and appends the supplied scenes. Only an in-progress
// generation can complete, and the content must not be empty.
func (s *Story) CompleteGeneration(content, summary string, scenes []StoryScene) error {
	if s.GenerationStatus != GenerationInProgress {
		return ErrGenerationNotInProgress
	}
	if strings.TrimSpace(content) == "" {
		return ErrEmptyStoryContent
	}
	for i := range scenes {
		if err := scenes[i].Validate(); err != nil {
			return err
		}
	}

	s.Content = content
	s.Summary = summary
	s.WordCount = countWords(content)
	s.ReadingTimeMinutes = readingTimeMinutes(s.WordCount)
	s.Scenes = append(s.Scenes, scenes...)
	s.GenerationStatus = GenerationCompleted
	s.touch()
	s.record(s.ID, GenerationCompletedPayload{
		WordCount:          s.WordCount,
		ReadingTimeMinutes: s.ReadingTimeMinutes,
		SceneCount:         len(s.Scenes),
	})
	return nil
}

// FailGeneration marks an in-progress generation as failed.
func (s *Story) FailGeneration(reason string) error {
	if s.GenerationStatus != GenerationInProgress {
		return ErrGenerationNotInProgress
	}
	s.GenerationStatus = GenerationFailed
	s.FailureReason = reason
	s.touch()
	s.record(s.ID, GenerationFailedPayload{Reason: reason})
	return nil
}

// SetModerationStatus records the moderation outcome. An approval
// automatically publishes the story if it is not public yet and the
// generation has completed.
func (s *Story) SetModerationStatus(status ModerationStatus) error {
	if !isValidModerationStatus(status) {
		return ErrInvalidModerationStatus
	}
	if s.ModerationStatus == status {
		return nil
	}

	s.ModerationStatus = status
	s.touch()
	s.record(s.ID, StoryModeratedPayload{Status: status})

	if (status == ModerationApproved || status == ModerationAutoApproved) && !s.IsPublic {
		// Publication still requires completed generation; a rejected
		// publish here is not an error for the moderation call itself.
		if s.GenerationStatus == GenerationCompleted {
			return s.Publish()
		}
	}
	return nil
}

// Publish makes the story publicly visible. It requires completed generation
// and an approving moderation outcome; otherwise the story is left unchanged.
func (s *Story) Publish() error {
	if s.GenerationStatus != GenerationCompleted {
		return ErrStoryNotPublishable
	}
	if s.ModerationStatus != ModerationApproved && s.ModerationStatus != ModerationAutoApproved {
		return ErrStoryNotPublishable
	}
	if s.IsPublic {
		return nil
	}

	now := time.Now().UTC()
	s.IsPublic = true
	s.PublishedAt = &now
	s.touch()
	s.record(s.ID, StoryPublishedPayload{PublishedAt: now})
	return nil
}

// Unpublish withdraws the story from public view and clears the published
// timestamp.
func (s *Story) Unpublish() {
	if !s.IsPublic {
		return
	}
	s.IsPublic = false
	s.PublishedAt = nil
	s.touch()
	s.record(s.ID, StoryUnpublishedPayload{})
}

// RecordView increments the view counter. A milestone event fires at every
// multiple of 100 views.
func (s *Story) RecordView() {
	s.ViewCount++
	s.touch()
	if s.ViewCount%viewMilestoneInterval == 0 {
		s.record(s.ID, ViewMilestonePayload{Views: s.ViewCount})
	}
}

// AddLike increments the like counter and refreshes the like/view engagement
// heuristic. A milestone event fires at every multiple of 10 likes.
func (s *Story) AddLike() {
	s.LikeCount++
	s.refreshEngagementScore()
	s.touch()
	if s.LikeCount%likeMilestoneInterval == 0 {
		s.record(s.ID, LikeMilestonePayload{Likes: s.LikeCount})
	}
}

// RemoveLike decrements the like counter.
func (s *Story) RemoveLike() error {
	if s.LikeCount == 0 {
		return ErrNoLikesToRemove
	}
	s.LikeCount--
	s.refreshEngagementScore()
	s.touch()
	return nil
}

// RecordShare increments the share counter. A milestone event fires at every
// multiple of 5 shares.
func (s *Story) RecordShare() {
	s.ShareCount++
	s.touch()
	if s.ShareCount%shareMilestoneInterval == 0 {
		s.record(s.ID, ShareMilestonePayload{Shares: s.ShareCount})
	}
}

// AddRating folds a new rating in [1.0, 5.0] into the running average.
// An out-of-range rating is rejected and the story is left unchanged.
func (s *Story) AddRating(rating float64) error {
	if rating < 1.0 || rating > 5.0 {
		return ErrRatingOutOfRange
	}
	s.RatingSum += rating
	s.RatingCount++
	s.AverageRating = s.RatingSum / float64(s.RatingCount)
	s.touch()
	s.record(s.ID, StoryRatedPayload{Rating: rating, AverageRating: s.AverageRating})
	return nil
}

// AddLearningGoal links a learning goal to the story, up to the cap of 5.
// Linking an already linked goal is a no-op.
func (s *Story) AddLearningGoal(goalID uuid.UUID) error {
	for _, id := range s.LearningGoalIDs {
		if id == goalID {
			return nil
		}
	}
	if len(s.LearningGoalIDs) >= MaxLearningGoalsPerStory {
		return ErrLearningGoalLimit
	}
	s.LearningGoalIDs = append(s.LearningGoalIDs, goalID)
	s.touch()
	s.record(s.ID, LearningGoalAddedPayload{GoalID: goalID})
	return nil
}

// AddTag lowercases and stores a tag. Duplicates are ignored, and once 15
// distinct tags exist further tags are silently dropped.
func (s *Story) AddTag(tag string) error {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return ErrEmptyTag
	}
	for _, existing := range s.Tags {
		if existing == tag {
			return nil
		}
	}
	if len(s.Tags) >= MaxTagsPerStory {
		return nil
	}
	s.Tags = append(s.Tags, tag)
	s.touch()
	s.record(s.ID, TagAddedPayload{Tag: tag})
	return nil
}

// AddImageURL stores an illustration URL, deduplicated and capped at 10.
func (s *Story) AddImageURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrEmptyImageURL
	}
	for _, existing := range s.ImageURLs {
		if existing == url {
			return nil
		}
	}
	if len(s.ImageURLs) >= MaxImagesPerStory {
		return ErrImageLimit
	}
	s.ImageURLs = append(s.ImageURLs, url)
	s.touch()
	s.record(s.ID, ImageAddedPayload{URL: url})
	return nil
}

// refreshEngagementScore recomputes the like/view-ratio heuristic, capped at
// 5.0. Stories with no views score zero.
func (s *Story) refreshEngagementScore() {
	if s.ViewCount == 0 {
		s.EngagementScore = 0
		return
	}
	score := float64(s.LikeCount) / float64(s.ViewCount) * 5.0
	if score > 5.0 {
		score = 5.0
	}
	s.EngagementScore = score
}

func (s *Story) touch() {
	s.UpdatedAt = time.Now().UTC()
}

func isValidGenerationStatus(status GenerationStatus) bool {
	switch status {
	case GenerationPending, GenerationInProgress, GenerationCompleted, GenerationFailed:
		return true
	default:
		return false
	}
}

func isValidModerationStatus(status ModerationStatus) bool {
	switch status {
	case ModerationPending, ModerationApproved, ModerationAutoApproved, ModerationRejected:
		return true
	default:
		return false
	}
}

// countWords splits on whitespace; the result drives the reading-time
// estimate and the difficulty bucket.
func countWords(text string) int {
	return len(strings.Fields(text))
}

// readingTimeMinutes estimates reading time at 200 words per minute, with a
// minimum of one minute for any non-empty story.
func readingTimeMinutes(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	minutes := wordCount / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
