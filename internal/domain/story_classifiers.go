package domain

import "time"

// ReadingDifficulty buckets a story by word count.
type ReadingDifficulty string

// Reading difficulty buckets, from shortest to longest stories.
const (
	DifficultyBeginner     ReadingDifficulty = "beginner"
	DifficultyEasy         ReadingDifficulty = "easy"
	DifficultyIntermediate ReadingDifficulty = "intermediate"
	DifficultyAdvanced     ReadingDifficulty = "advanced"
	DifficultyExpert       ReadingDifficulty = "expert"
)

// Popularity and trending thresholds.
const (
	popularViewThreshold   = 100
	popularLikeThreshold   = 20
	popularRatingThreshold = 4.5
	trendingViewThreshold  = 50
	trendingWindow         = 7 * 24 * time.Hour
)

// difficultyThresholds maps word-count upper bounds to difficulty buckets,
// checked in order.
var difficultyThresholds = []struct {
	maxWords   int
	difficulty ReadingDifficulty
}{
	{100, DifficultyBeginner},
	{250, DifficultyEasy},
	{500, DifficultyIntermediate},
	{900, DifficultyAdvanced},
}

// genreTraits maps a story genre to the character-development traits the
// story is expected to exercise.
var genreTraits = map[string][]string{
	"adventure":  {"courage", "curiosity"},
	"friendship": {"empathy", "kindness"},
	"family":     {"empathy", "responsibility"},
	"mystery":    {"logic", "curiosity"},
	"fantasy":    {"imagination", "creativity"},
	"fairy_tale": {"imagination", "kindness"},
	"science":    {"curiosity", "logic"},
	"animals":    {"empathy", "responsibility"},
	"nature":     {"curiosity", "responsibility"},
	"bedtime":    {"calmness", "imagination"},
}

// defaultSuggestedTraits applies when the genre has no entry in the table.
var defaultSuggestedTraits = []string{"curiosity"}

// IsChildFriendly reports whether moderation has cleared the story for
// children.
func (s *Story) IsChildFriendly() bool {
	return s.ModerationStatus == ModerationApproved || s.ModerationStatus == ModerationAutoApproved
}

// IsPopular reports whether the story has crossed any of the popularity
// thresholds: 100 views, 20 likes, or a 4.5 average rating.
func (s *Story) IsPopular() bool {
	return s.ViewCount >= popularViewThreshold ||
		s.LikeCount >= popularLikeThreshold ||
		s.AverageRating >= popularRatingThreshold
}

// IsTrending reports whether the story is public, has at least 50 views, and
// was published within the last 7 days.
func (s *Story) IsTrending() bool {
	if !s.IsPublic || s.PublishedAt == nil {
		return false
	}
	if s.ViewCount < trendingViewThreshold {
		return false
	}
	return time.Since(*s.PublishedAt) <= trendingWindow
}

// IsShareable reports whether the story may be shared outside the family:
// it must be public and child-friendly.
func (s *Story) IsShareable() bool {
	return s.IsPublic && s.IsChildFriendly()
}

// ReadingDifficulty buckets the story by its word count.
func (s *Story) ReadingDifficulty() ReadingDifficulty {
	for _, t := range difficultyThresholds {
		if s.WordCount < t.maxWords {
			return t.difficulty
		}
	}
	return DifficultyExpert
}

// SuggestedTraits returns the character-development traits associated with
// the story's genre.
func (s *Story) SuggestedTraits() []string {
	if traits, ok := genreTraits[s.Genre]; ok {
		return append([]string(nil), traits...)
	}
	return append([]string(nil), defaultSuggestedTraits...)
}
