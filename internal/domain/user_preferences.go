package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// Preference validation errors.
var (
	ErrUnknownPreferenceKey   = errors.New("unknown preference key")
	ErrInvalidPreferenceValue = errors.New("invalid preference value")
)

// preferenceRule validates the value of a single preference key.
type preferenceRule struct {
	// allowed enumerates the accepted values; empty when min/max apply.
	allowed []string
	// min and max bound numeric values when allowed is empty.
	min, max int
}

func (r preferenceRule) validate(value string) bool {
	if len(r.allowed) > 0 {
		for _, v := range r.allowed {
			if v == value {
				return true
			}
		}
		return false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	return n >= r.min && n <= r.max
}

// preferenceRules is the fixed allow-list of preference keys. Any key not in
// this table is rejected.
var preferenceRules = map[string]preferenceRule{
	"language":        {allowed: []string{"en", "de", "fr", "es", "it"}},
	"theme":           {allowed: []string{"light", "dark", "auto"}},
	"reading_speed":   {allowed: []string{"slow", "normal", "fast"}},
	"sound_enabled":   {allowed: []string{"true", "false"}},
	"narration_voice": {allowed: []string{"warm", "cheerful", "calm"}},
	"font_size":       {min: 12, max: 32},
	"stories_per_day": {min: 1, max: 10},
}

// ValidatePreference checks a key/value pair against the preference
// allow-list. Each key carries its own value rule: either an enumerated set
// of values or a numeric range.
func ValidatePreference(key, value string) error {
	rule, ok := preferenceRules[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreferenceKey, key)
	}
	if !rule.validate(value) {
		return fmt.Errorf("%w: %q for key %q", ErrInvalidPreferenceValue, value, key)
	}
	return nil
}

// PreferenceKeys returns the set of recognized preference keys.
func PreferenceKeys() []string {
	keys := make([]string, 0, len(preferenceRules))
	for k := range preferenceRules {
		keys = append(keys, k)
	}
	return keys
}
