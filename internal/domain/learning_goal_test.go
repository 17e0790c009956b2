package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestGoal(t *testing.T) *LearningGoal {
	t.Helper()
	goal, err := NewLearningGoal("Learn to share", "social", DifficultyEasyGoal, 6, 3)
	if err != nil {
		t.Fatalf("NewLearningGoal: %v", err)
	}
	goal.ClearDomainEvents()
	return goal
}

func TestNewLearningGoalValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewLearningGoal("", "social", DifficultyEasyGoal, 6, 3); err != ErrEmptyGoalTitle {
		t.Errorf("Expected ErrEmptyGoalTitle, got %v", err)
	}
	if _, err := NewLearningGoal("Title", "", DifficultyEasyGoal, 6, 3); err != ErrEmptyGoalCategory {
		t.Errorf("Expected ErrEmptyGoalCategory, got %v", err)
	}
	if _, err := NewLearningGoal("Title", "social", "impossible", 6, 3); err != ErrInvalidGoalDifficulty {
		t.Errorf("Expected ErrInvalidGoalDifficulty, got %v", err)
	}
	if _, err := NewLearningGoal("Title", "social", DifficultyEasyGoal, 6, 0); err != ErrInvalidGoalPriority {
		t.Errorf("Expected ErrInvalidGoalPriority, got %v", err)
	}
	if _, err := NewLearningGoal("Title", "social", DifficultyEasyGoal, 6, 6); err != ErrInvalidGoalPriority {
		t.Errorf("Expected ErrInvalidGoalPriority, got %v", err)
	}

	goal, err := NewLearningGoal("Title", "Social", DifficultyEasyGoal, 6, 3)
	if err != nil {
		t.Fatalf("NewLearningGoal: %v", err)
	}
	if goal.Status != GoalNotStarted {
		t.Errorf("Expected not-started status, got %s", goal.Status)
	}
	if goal.Category != "social" {
		t.Errorf("Expected lowercased category, got %q", goal.Category)
	}
}

func TestUpdateProgressStatusThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		progress float64
		want     GoalStatus
	}{
		{0, GoalNotStarted},
		{1, GoalInProgress},
		{79.9, GoalInProgress},
		{80, GoalMastered},
		{99.9, GoalMastered},
		{100, GoalCompleted},
	}
	for _, tc := range tests {
		goal := newTestGoal(t)
		if err := goal.UpdateProgress(tc.progress); err != nil {
			t.Fatalf("UpdateProgress(%v): %v", tc.progress, err)
		}
		if goal.Status != tc.want {
			t.Errorf("Progress %v: expected status %s, got %s", tc.progress, tc.want, goal.Status)
		}
	}

	goal := newTestGoal(t)
	if err := goal.UpdateProgress(-0.1); err != ErrProgressOutOfRange {
		t.Errorf("Expected ErrProgressOutOfRange, got %v", err)
	}
	if err := goal.UpdateProgress(100.1); err != ErrProgressOutOfRange {
		t.Errorf("Expected ErrProgressOutOfRange, got %v", err)
	}
}

func TestCompletionTimestampStampedOnce(t *testing.T) {
	t.Parallel()

	goal := newTestGoal(t)
	if err := goal.UpdateProgress(100); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if goal.CompletedAt == nil {
		t.Fatal("Expected completion timestamp")
	}
	first := *goal.CompletedAt

	time.Sleep(5 * time.Millisecond)
	if err := goal.UpdateProgress(100); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if !goal.CompletedAt.Equal(first) {
		t.Error("Completion timestamp must be stamped exactly once")
	}

	completions := 0
	for _, e := range goal.DomainEvents() {
		if e.Kind == EventGoalCompleted {
			completions++
		}
	}
	if completions != 1 {
		t.Errorf("Expected one completion event, got %d", completions)
	}
}

func TestAddEvidence(t *testing.T) {
	t.Parallel()

	goal := newTestGoal(t)
	if err := goal.AddEvidence("  ", uuid.Nil); err != ErrEmptyEvidence {
		t.Errorf("Expected ErrEmptyEvidence, got %v", err)
	}
	if err := goal.AddEvidence("shared toys in the playground scene", uuid.New()); err != nil {
		t.Fatalf("AddEvidence: %v", err)
	}
	if len(goal.Evidence) != 1 {
		t.Errorf("Expected one evidence entry, got %d", len(goal.Evidence))
	}
}

func TestFlagForReview(t *testing.T) {
	t.Parallel()

	goal := newTestGoal(t)
	_ = goal.UpdateProgress(60)

	goal.FlagForReview("progress regressed after a month")
	if goal.Status != GoalNeedsReview {
		t.Errorf("Expected needs-review status, got %s", goal.Status)
	}

	// Flagging twice is a no-op.
	goal.ClearDomainEvents()
	goal.FlagForReview("again")
	if len(goal.DomainEvents()) != 0 {
		t.Error("Second flag must not emit an event")
	}

	// The next progress update re-derives the status.
	if err := goal.UpdateProgress(85); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if goal.Status != GoalMastered {
		t.Errorf("Expected mastered after review, got %s", goal.Status)
	}
}

func TestSuitabilityForChild(t *testing.T) {
	t.Parallel()

	goal := newTestGoal(t)
	goal.RelatedTraits = []string{"empathy", "kindness"}

	// Exact age and difficulty match, no trait overlap: 1.0 * 1.0 * 1.25.
	score := goal.SuitabilityForChild(6, nil)
	if math.Abs(score-1.25) > 1e-9 {
		t.Errorf("Expected 1.25, got %v", score)
	}

	// Two overlapping traits add 15% each.
	score = goal.SuitabilityForChild(6, []string{"Empathy", "kindness", "logic"})
	want := 1.0 * 1.3 * 1.25
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("Expected %v, got %v", want, score)
	}

	// Age distance applies a 20% penalty per year.
	score = goal.SuitabilityForChild(4, nil)
	want = 0.6 * 1.0 * 1.25
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("Expected %v, got %v", want, score)
	}

	// A hard goal for a six year old is two steps off the expected level.
	hard, err := NewLearningGoal("Multiplication", "math", DifficultyHardGoal, 6, 3)
	if err != nil {
		t.Fatalf("NewLearningGoal: %v", err)
	}
	score = hard.SuitabilityForChild(6, nil)
	want = 1.0 * 1.0 * 0.6
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("Expected %v, got %v", want, score)
	}

	// Extreme age distance bottoms out at zero.
	if score := goal.SuitabilityForChild(16, nil); score != 0 {
		t.Errorf("Expected 0 for distant age, got %v", score)
	}

	// The score never exceeds the cap.
	goal.RelatedTraits = []string{"a", "b", "c", "d", "e"}
	score = goal.SuitabilityForChild(6, []string{"a", "b", "c", "d", "e"})
	if score > MaxSuitabilityScore {
		t.Errorf("Expected score capped at %v, got %v", MaxSuitabilityScore, score)
	}
}
