package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GoalStatus is the progression state of a learning goal.
type GoalStatus string

// Possible goal status values.
const (
	GoalNotStarted  GoalStatus = "not_started"
	GoalInProgress  GoalStatus = "in_progress"
	GoalMastered    GoalStatus = "mastered"
	GoalCompleted   GoalStatus = "completed"
	GoalNeedsReview GoalStatus = "needs_review"
)

// GoalDifficulty grades how demanding a learning goal is.
type GoalDifficulty string

// Possible goal difficulties.
const (
	DifficultyEasyGoal   GoalDifficulty = "easy"
	DifficultyMediumGoal GoalDifficulty = "medium"
	DifficultyHardGoal   GoalDifficulty = "hard"
)

// Progress thresholds driving the status machine.
const (
	masteredThreshold  = 80.0
	completedThreshold = 100.0

	// MaxSuitabilityScore caps the child-suitability score.
	MaxSuitabilityScore = 2.0
)

// Common validation errors for LearningGoal.
var (
	ErrEmptyGoalID          = errors.New("learning goal ID cannot be empty")
	ErrEmptyGoalTitle       = errors.New("learning goal title cannot be empty")
	ErrEmptyGoalCategory    = errors.New("learning goal category cannot be empty")
	ErrInvalidGoalDifficulty = errors.New("invalid learning goal difficulty")
	ErrInvalidGoalPriority   = errors.New("learning goal priority must be between 1 and 5")
	ErrProgressOutOfRange    = errors.New("progress must be between 0 and 100")
	ErrEmptyEvidence         = errors.New("evidence note cannot be empty")
)

// GoalEvidence is one recorded observation supporting a goal's progress.
type GoalEvidence struct {
	Note       string    `json:"note"`
	StoryID    uuid.UUID `json:"story_id,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// LearningGoal is an educational objective attached to stories. Progress is
// a percentage; the status derives from fixed thresholds.
type LearningGoal struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	Category        string         `json:"category"`
	ChildID         *uuid.UUID     `json:"child_id,omitempty"`
	Difficulty      GoalDifficulty `json:"difficulty"`
	TargetAge       int            `json:"target_age"`
	Priority        int            `json:"priority"`
	Progress        float64        `json:"progress"`
	Status          GoalStatus     `json:"status"`
	SuccessCriteria []string       `json:"success_criteria,omitempty"`
	RelatedTraits   []string       `json:"related_traits,omitempty"`
	Evidence        []GoalEvidence `json:"evidence,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	eventRecorder
}

// NewLearningGoal creates a goal in the not-started state.
func NewLearningGoal(title, category string, difficulty GoalDifficulty, targetAge, priority int) (*LearningGoal, error) {
	now := time.Now().UTC()
	goal := &LearningGoal{
		ID:         uuid.New(),
		Title:      strings.TrimSpace(title),
		Category:   strings.ToLower(strings.TrimSpace(category)),
		Difficulty: difficulty,
		TargetAge:  targetAge,
		Priority:   priority,
		Status:     GoalNotStarted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}

	goal.record(goal.ID, GoalCreatedPayload{Title: goal.Title})
	return goal, nil
}

// Validate checks the structural invariants of the goal.
func (g *LearningGoal) Validate() error {
	if g.ID == uuid.Nil {
		return ErrEmptyGoalID
	}
	if g.Title == "" {
		return ErrEmptyGoalTitle
	}
	if g.Category == "" {
		return ErrEmptyGoalCategory
	}
	if !isValidGoalDifficulty(g.Difficulty) {
		return ErrInvalidGoalDifficulty
	}
	if g.Priority < 1 || g.Priority > 5 {
		return ErrInvalidGoalPriority
	}
	return nil
}

// UpdateProgress sets the progress percentage and derives the status from
// the fixed thresholds: 100 completed, 80 mastered, anything above zero in
// progress. The completion timestamp is stamped exactly once; repeated calls
// with 100 leave it untouched.
func (g *LearningGoal) UpdateProgress(progress float64) error {
	if progress < 0 || progress > 100 {
		return ErrProgressOutOfRange
	}

	g.Progress = progress
	switch {
	case progress >= completedThreshold:
		g.Status = GoalCompleted
	case progress >= masteredThreshold:
		g.Status = GoalMastered
	case progress > 0:
		g.Status = GoalInProgress
	default:
		g.Status = GoalNotStarted
	}
	g.touch()
	g.record(g.ID, GoalProgressUpdatedPayload{Progress: progress, Status: g.Status})

	if g.Status == GoalCompleted && g.CompletedAt == nil {
		now := time.Now().UTC()
		g.CompletedAt = &now
		g.record(g.ID, GoalCompletedPayload{CompletedAt: now})
	}
	return nil
}

// AddEvidence appends an observation to the evidence log.
func (g *LearningGoal) AddEvidence(note string, storyID uuid.UUID) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return ErrEmptyEvidence
	}
	g.Evidence = append(g.Evidence, GoalEvidence{
		Note:       note,
		StoryID:    storyID,
		RecordedAt: time.Now().UTC(),
	})
	g.touch()
	g.record(g.ID, GoalEvidenceAddedPayload{Note: note})
	return nil
}

// FlagForReview moves the goal into the needs-review state, typically after
// a regression was observed. The next UpdateProgress call re-derives the
// status from the thresholds.
func (g *LearningGoal) FlagForReview(reason string) {
	if g.Status == GoalNeedsReview {
		return
	}
	g.Status = GoalNeedsReview
	g.touch()
	g.record(g.ID, GoalFlaggedForReviewPayload{Reason: reason})
}

// SuitabilityForChild scores how well this goal fits a child, multiplying an
// age-distance penalty, a trait-overlap bonus, and a difficulty-match
// factor. The result is deterministic and clamped to [0, 2.0].
func (g *LearningGoal) SuitabilityForChild(childAge int, childTraits []string) float64 {
	score := ageDistanceFactor(g.TargetAge, childAge) *
		traitOverlapBonus(g.RelatedTraits, childTraits) *
		difficultyMatchFactor(g.Difficulty, childAge)

	if score < 0 {
		return 0
	}
	if score > MaxSuitabilityScore {
		return MaxSuitabilityScore
	}
	return score
}

// ageDistanceFactor penalizes each year of distance between the goal's
// target age and the child's age by 20%, bottoming out at zero.
func ageDistanceFactor(targetAge, childAge int) float64 {
	distance := targetAge - childAge
	if distance < 0 {
		distance = -distance
	}
	factor := 1.0 - 0.2*float64(distance)
	if factor < 0 {
		return 0
	}
	return factor
}

// traitOverlapBonus grants 15% per trait the child's character shares with
// the goal, counting at most three overlapping traits.
func traitOverlapBonus(goalTraits, childTraits []string) float64 {
	overlap := 0
	for _, gt := range goalTraits {
		for _, ct := range childTraits {
			if strings.EqualFold(gt, ct) {
				overlap++
				break
			}
		}
	}
	if overlap > 3 {
		overlap = 3
	}
	return 1.0 + 0.15*float64(overlap)
}

// expectedDifficultyForAge mirrors the age bands used for child
// restrictions: the youngest readers get easy goals, pre-teens medium,
// older children hard.
func expectedDifficultyForAge(age int) GoalDifficulty {
	switch {
	case age <= 6:
		return DifficultyEasyGoal
	case age <= 10:
		return DifficultyMediumGoal
	default:
		return DifficultyHardGoal
	}
}

// difficultyMatchFactor rewards goals pitched at the child's expected level
// and penalizes goals more than one step away from it.
func difficultyMatchFactor(difficulty GoalDifficulty, childAge int) float64 {
	expected := expectedDifficultyForAge(childAge)
	if difficulty == expected {
		return 1.25
	}
	if difficultySteps(difficulty, expected) == 1 {
		return 1.0
	}
	return 0.6
}

var difficultyRank = map[GoalDifficulty]int{
	DifficultyEasyGoal:   0,
	DifficultyMediumGoal: 1,
	DifficultyHardGoal:   2,
}

func difficultySteps(a, b GoalDifficulty) int {
	steps := difficultyRank[a] - difficultyRank[b]
	if steps < 0 {
		steps = -steps
	}
	return steps
}

func isValidGoalDifficulty(d GoalDifficulty) bool {
	_, ok := difficultyRank[d]
	return ok
}

func (g *LearningGoal) touch() {
	g.UpdatedAt = time.Now().UTC()
}
