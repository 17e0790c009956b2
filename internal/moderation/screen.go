package moderation

import (
	"strings"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
)

// Content length bounds for generated stories.
const (
	MinContentLength = 200
	MaxContentLength = 50000
)

// blockedTerms always reject the content. The list targets themes that have
// no place in children's stories regardless of context.
var blockedTerms = []string{
	"kill", "murder", "blood", "weapon", "gun", "knife",
	"drug", "alcohol", "cigarette",
	"suicide", "death", "corpse",
	"hate", "racist",
}

// reviewTerms do not reject on their own but flag the story for a human
// reviewer instead of auto-approval.
var reviewTerms = []string{
	"scary", "monster", "nightmare", "ghost",
	"fight", "steal", "lie",
}

// Decision is the outcome of screening one story.
type Decision struct {
	Status  domain.ModerationStatus
	Reasons []string
}

// Approved reports whether the content may be shown to children.
func (d Decision) Approved() bool {
	return d.Status == domain.ModerationAutoApproved || d.Status == domain.ModerationApproved
}

// Screen evaluates story content and returns a deterministic decision.
// Clean content is auto-approved, content with review terms stays pending,
// and content with blocked terms or broken structure is rejected.
func Screen(content string) Decision {
	lowered := strings.ToLower(content)

	if len(content) < MinContentLength {
		return Decision{
			Status:  domain.ModerationRejected,
			Reasons: []string{"content is too short for a complete story"},
		}
	}
	if len(content) > MaxContentLength {
		return Decision{
			Status:  domain.ModerationRejected,
			Reasons: []string{"content exceeds the maximum story length"},
		}
	}

	var blocked []string
	for _, term := range blockedTerms {
		if containsWord(lowered, term) {
			blocked = append(blocked, term)
		}
	}
	if len(blocked) > 0 {
		return Decision{
			Status:  domain.ModerationRejected,
			Reasons: append([]string{"content contains blocked terms"}, blocked...),
		}
	}

	var flagged []string
	for _, term := range reviewTerms {
		if containsWord(lowered, term) {
			flagged = append(flagged, term)
		}
	}
	if len(flagged) > 0 {
		return Decision{
			Status:  domain.ModerationPending,
			Reasons: append([]string{"content needs human review"}, flagged...),
		}
	}

	return Decision{Status: domain.ModerationAutoApproved}
}

// containsWord matches term as a whole word, so "skill" does not trip the
// "kill" filter.
func containsWord(text, term string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], term)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(term)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
