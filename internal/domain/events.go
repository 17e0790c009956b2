package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies the type of a domain event.
type EventKind string

// Event kinds recorded by the User entity.
const (
	EventUserRegistered          EventKind = "user.registered"
	EventChildProfileCreated     EventKind = "user.child_profile_created"
	EventUserEmailVerified       EventKind = "user.email_verified"
	EventUserProfileUpdated      EventKind = "user.profile_updated"
	EventUserPasswordChanged     EventKind = "user.password_changed"
	EventUserSubscriptionUpdated EventKind = "user.subscription_updated"
	EventChildAdded              EventKind = "user.child_added"
	EventChildRemoved            EventKind = "user.child_removed"
	EventUserLoggedIn            EventKind = "user.logged_in"
	EventUserLoginFailed         EventKind = "user.login_failed"
	EventUserLocked              EventKind = "user.locked"
	EventUserDeactivated         EventKind = "user.deactivated"
	EventUserReactivated         EventKind = "user.reactivated"
	EventDailyUsageTracked       EventKind = "user.daily_usage_tracked"
	EventStoryQuotaConsumed      EventKind = "user.story_quota_consumed"
	EventCharacterSlotConsumed   EventKind = "user.character_slot_consumed"
	EventPreferenceSet           EventKind = "user.preference_set"
)

// Event kinds recorded by the Story entity.
const (
	EventStoryCreated             EventKind = "story.created"
	EventStoryGenerationStarted   EventKind = "story.generation_started"
	EventStoryGenerationCompleted EventKind = "story.generation_completed"
	EventStoryGenerationFailed    EventKind = "story.generation_failed"
	EventStoryModerated           EventKind = "story.moderated"
	EventStoryPublished           EventKind = "story.published"
	EventStoryUnpublished         EventKind = "story.unpublished"
	EventStoryViewMilestone       EventKind = "story.view_milestone"
	EventStoryLikeMilestone       EventKind = "story.like_milestone"
	EventStoryShareMilestone      EventKind = "story.share_milestone"
	EventStoryRated               EventKind = "story.rated"
	EventStoryLearningGoalAdded   EventKind = "story.learning_goal_added"
	EventStoryTagAdded            EventKind = "story.tag_added"
	EventStoryImageAdded          EventKind = "story.image_added"
)

// Event kinds recorded by the Character entity.
const (
	EventCharacterCreated     EventKind = "character.created"
	EventTraitAdjusted        EventKind = "character.trait_adjusted"
	EventMemoryAdded          EventKind = "character.memory_added"
	EventExperienceGained     EventKind = "character.experience_gained"
	EventCharacterLeveledUp   EventKind = "character.leveled_up"
)

// Event kinds recorded by the LearningGoal entity.
const (
	EventGoalCreated         EventKind = "goal.created"
	EventGoalProgressUpdated EventKind = "goal.progress_updated"
	EventGoalCompleted       EventKind = "goal.completed"
	EventGoalEvidenceAdded   EventKind = "goal.evidence_added"
	EventGoalFlaggedForReview EventKind = "goal.flagged_for_review"
)

// EventPayload is the closed set of per-kind event payloads. Each variant
// reports the kind it belongs to, which acts as the discriminant when events
// are serialized or dispatched.
type EventPayload interface {
	EventKind() EventKind
}

// Event describes a single state change recorded by an entity. Events are
// appended in mutation order and drained by the service layer after the
// entity has been persisted.
type Event struct {
	ID         uuid.UUID
	Kind       EventKind
	EntityID   uuid.UUID
	OccurredAt time.Time
	Payload    EventPayload
}

// newEvent builds an Event for the given entity and payload. The kind is
// taken from the payload so the two can never disagree.
func newEvent(entityID uuid.UUID, payload EventPayload) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       payload.EventKind(),
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// eventRecorder is embedded by entities to collect domain events.
// It is deliberately unexported: only entity methods may record events.
type eventRecorder struct {
	events []Event
}

// DomainEvents returns the events recorded since the last call to
// ClearDomainEvents, in the order the mutations occurred.
func (r *eventRecorder) DomainEvents() []Event {
	return r.events
}

// ClearDomainEvents discards all recorded events. The service layer calls
// this after events have been handed to the emitter.
func (r *eventRecorder) ClearDomainEvents() {
	r.events = nil
}

func (r *eventRecorder) record(entityID uuid.UUID, payload EventPayload) {
	r.events = append(r.events, newEvent(entityID, payload))
}

// --- User event payloads ---

type UserRegisteredPayload struct {
	Email string
	Role  Role
}

func (UserRegisteredPayload) EventKind() EventKind { return EventUserRegistered }

type ChildProfileCreatedPayload struct {
	ParentID          uuid.UUID
	Age               int
	DailyLimitMinutes int
}

func (ChildProfileCreatedPayload) EventKind() EventKind { return EventChildProfileCreated }

type EmailVerifiedPayload struct{}

func (EmailVerifiedPayload) EventKind() EventKind { return EventUserEmailVerified }

type ProfileUpdatedPayload struct {
	DisplayName string
}

func (ProfileUpdatedPayload) EventKind() EventKind { return EventUserProfileUpdated }

type PasswordChangedPayload struct{}

func (PasswordChangedPayload) EventKind() EventKind { return EventUserPasswordChanged }

type SubscriptionUpdatedPayload struct {
	Tier SubscriptionTier
}

func (SubscriptionUpdatedPayload) EventKind() EventKind { return EventUserSubscriptionUpdated }

type ChildAddedPayload struct {
	ChildID uuid.UUID
}

func (ChildAddedPayload) EventKind() EventKind { return EventChildAdded }

type ChildRemovedPayload struct {
	ChildID uuid.UUID
}

func (ChildRemovedPayload) EventKind() EventKind { return EventChildRemoved }

type LoggedInPayload struct{}

func (LoggedInPayload) EventKind() EventKind { return EventUserLoggedIn }

type LoginFailedPayload struct {
	Attempts int
}

func (LoginFailedPayload) EventKind() EventKind { return EventUserLoginFailed }

type UserLockedPayload struct {
	Until time.Time
}

func (UserLockedPayload) EventKind() EventKind { return EventUserLocked }

type UserDeactivatedPayload struct{}

func (UserDeactivatedPayload) EventKind() EventKind { return EventUserDeactivated }

type UserReactivatedPayload struct{}

func (UserReactivatedPayload) EventKind() EventKind { return EventUserReactivated }

type DailyUsageTrackedPayload struct {
	MinutesUsedToday int
	LimitExceeded    bool
}

func (DailyUsageTrackedPayload) EventKind() EventKind { return EventDailyUsageTracked }

type StoryQuotaConsumedPayload struct {
	StoriesThisMonth int
}

func (StoryQuotaConsumedPayload) EventKind() EventKind { return EventStoryQuotaConsumed }

type CharacterSlotConsumedPayload struct {
	CharactersCreated int
}

func (CharacterSlotConsumedPayload) EventKind() EventKind { return EventCharacterSlotConsumed }

type PreferenceSetPayload struct {
	Key   string
	Value string
}

func (PreferenceSetPayload) EventKind() EventKind { return EventPreferenceSet }

// --- Story event payloads ---

type StoryCreatedPayload struct {
	OwnerID     uuid.UUID
	CharacterID uuid.UUID
}

func (StoryCreatedPayload) EventKind() EventKind { return EventStoryCreated }

type GenerationStartedPayload struct {
	AIModel string
}

func (GenerationStartedPayload) EventKind() EventKind { return EventStoryGenerationStarted }

type GenerationCompletedPayload struct {
	WordCount          int
	ReadingTimeMinutes int
	SceneCount         int
}

func (GenerationCompletedPayload) EventKind() EventKind { return EventStoryGenerationCompleted }

type GenerationFailedPayload struct {
	Reason string
}

func (GenerationFailedPayload) EventKind() EventKind { return EventStoryGenerationFailed }

type StoryModeratedPayload struct {
	Status ModerationStatus
}

func (StoryModeratedPayload) EventKind() EventKind { return EventStoryModerated }

type StoryPublishedPayload struct {
	PublishedAt time.Time
}

func (StoryPublishedPayload) EventKind() EventKind { return EventStoryPublished }

type StoryUnpublishedPayload struct{}

func (StoryUnpublishedPayload) EventKind() EventKind { return EventStoryUnpublished }

type ViewMilestonePayload struct {
	Views int64
}

func (ViewMilestonePayload) EventKind() EventKind { return EventStoryViewMilestone }

type LikeMilestonePayload struct {
	Likes int64
}

func (LikeMilestonePayload) EventKind() EventKind { return EventStoryLikeMilestone }

type ShareMilestonePayload struct {
	Shares int64
}

func (ShareMilestonePayload) EventKind() EventKind { return EventStoryShareMilestone }

type StoryRatedPayload struct {
	Rating        float64
	AverageRating float64
}

func (StoryRatedPayload) EventKind() EventKind { return EventStoryRated }

type LearningGoalAddedPayload struct {
	GoalID uuid.UUID
}

func (LearningGoalAddedPayload) EventKind() EventKind { return EventStoryLearningGoalAdded }

type TagAddedPayload struct {
	Tag string
}

func (TagAddedPayload) EventKind() EventKind { return EventStoryTagAdded }

type ImageAddedPayload struct {
	URL string
}

func (ImageAddedPayload) EventKind() EventKind { return EventStoryImageAdded }

// --- Character event payloads ---

type CharacterCreatedPayload struct {
	OwnerID uuid.UUID
	Name    string
}

func (CharacterCreatedPayload) EventKind() EventKind { return EventCharacterCreated }

type TraitAdjustedPayload struct {
	Trait    string
	Delta    int
	NewValue int
}

func (TraitAdjustedPayload) EventKind() EventKind { return EventTraitAdjusted }

type MemoryAddedPayload struct {
	Summary string
}

func (MemoryAddedPayload) EventKind() EventKind { return EventMemoryAdded }

type ExperienceGainedPayload struct {
	Points int
	Total  int
}

func (ExperienceGainedPayload) EventKind() EventKind { return EventExperienceGained }

type CharacterLeveledUpPayload struct {
	Level int
}

func (CharacterLeveledUpPayload) EventKind() EventKind { return EventCharacterLeveledUp }

// --- LearningGoal event payloads ---

type GoalCreatedPayload struct {
	Title string
}

func (GoalCreatedPayload) EventKind() EventKind { return EventGoalCreated }

type GoalProgressUpdatedPayload struct {
	Progress float64
	Status   GoalStatus
}

func (GoalProgressUpdatedPayload) EventKind() EventKind { return EventGoalProgressUpdated }

type GoalCompletedPayload struct {
	CompletedAt time.Time
}

func (GoalCompletedPayload) EventKind() EventKind { return EventGoalCompleted }

type GoalEvidenceAddedPayload struct {
	Note string
}

func (GoalEvidenceAddedPayload) EventKind() EventKind { return EventGoalEvidenceAdded }

type GoalFlaggedForReviewPayload struct {
	Reason string
}

func (GoalFlaggedForReviewPayload) EventKind() EventKind { return EventGoalFlaggedForReview }
