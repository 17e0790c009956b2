package domain

import "errors"

// SubscriptionTier identifies the pricing plan an account is on.
type SubscriptionTier string

// Possible subscription tiers.
const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
	TierFamily  SubscriptionTier = "family"
)

// ErrInvalidSubscriptionTier is returned when a tier is not recognized.
var ErrInvalidSubscriptionTier = errors.New("invalid subscription tier")

// SubscriptionLimits describes what a tier allows. A limit of -1 means
// unlimited.
type SubscriptionLimits struct {
	MaxCharacters       int
	MonthlyStoryQuota   int
	AdvancedTraits      bool
	AudioStories        bool
	CustomIllustrations bool
}

// tierLimits is the static tier configuration table.
var tierLimits = map[SubscriptionTier]SubscriptionLimits{
	TierFree: {
		MaxCharacters:     3,
		MonthlyStoryQuota: 10,
	},
	TierPremium: {
		MaxCharacters:     10,
		MonthlyStoryQuota: 100,
		AdvancedTraits:    true,
		AudioStories:      true,
	},
	TierFamily: {
		MaxCharacters:       -1,
		MonthlyStoryQuota:   -1,
		AdvancedTraits:      true,
		AudioStories:        true,
		CustomIllustrations: true,
	},
}

// LimitsForTier resolves the limits for a subscription tier. Unknown tiers
// resolve to the free tier so a bad value can never grant extra quota.
func LimitsForTier(tier SubscriptionTier) SubscriptionLimits {
	if limits, ok := tierLimits[tier]; ok {
		return limits
	}
	return tierLimits[TierFree]
}

func isValidTier(tier SubscriptionTier) bool {
	_, ok := tierLimits[tier]
	return ok
}

// RestrictionDefaults are the age-derived defaults applied to a child profile
// at creation time.
type RestrictionDefaults struct {
	DailyLimitMinutes int
	AllowedCategories []string
}

// youngChildCategories is the restricted topic list for the youngest readers.
var youngChildCategories = []string{
	"animals",
	"friendship",
	"family",
	"nature",
	"bedtime",
}

// allCategories is the full topic list available to older children.
var allCategories = []string{
	"animals",
	"friendship",
	"family",
	"nature",
	"bedtime",
	"adventure",
	"fantasy",
	"science",
	"mystery",
	"fairy_tale",
}

// RestrictionDefaultsForAge maps a child's age to their default daily time
// limit and allowed story categories.
func RestrictionDefaultsForAge(age int) RestrictionDefaults {
	switch {
	case age <= 6:
		return RestrictionDefaults{
			DailyLimitMinutes: 30,
			AllowedCategories: append([]string(nil), youngChildCategories...),
		}
	case age <= 10:
		return RestrictionDefaults{
			DailyLimitMinutes: 60,
			AllowedCategories: append([]string(nil), allCategories...),
		}
	default:
		return RestrictionDefaults{
			DailyLimitMinutes: 120,
			AllowedCategories: append([]string(nil), allCategories...),
		}
	}
}
