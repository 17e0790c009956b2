package generation

import (
	"fmt"
	"sort"
	"strings"
)

// recentMemoryCount limits how many character memories are included in the
// prompt so it stays within a predictable token budget.
const recentMemoryCount = 5

// BuildPrompt renders a generation request into the instruction sent to the
// language model. The output is deterministic for a given request so prompts
// can be tested and cached.
func BuildPrompt(req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", ErrEmptyPrompt
	}

	age := req.ChildAge
	if age <= 0 {
		age = 8
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a children's story for a %d year old reader.\n", age)
	b.WriteString("The story must be gentle, positive and free of violence, fear or adult themes.\n")
	fmt.Fprintf(&b, "Use vocabulary suitable for age %d and a warm, encouraging tone.\n\n", age)

	if req.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", req.Title)
	}
	if req.Genre != "" {
		fmt.Fprintf(&b, "Genre: %s\n", req.Genre)
	}
	fmt.Fprintf(&b, "Story idea: %s\n", strings.TrimSpace(req.Prompt))

	if c := req.Character; c != nil {
		fmt.Fprintf(&b, "\nThe protagonist is %s", c.Name)
		if c.Archetype != "" {
			fmt.Fprintf(&b, ", a %s", c.Archetype)
		}
		b.WriteString(".\n")

		if len(c.Traits) > 0 {
			names := make([]string, 0, len(c.Traits))
			for trait := range c.Traits {
				names = append(names, trait)
			}
			sort.Strings(names)
			pairs := make([]string, 0, len(names))
			for _, trait := range names {
				pairs = append(pairs, fmt.Sprintf("%s (%d/100)", trait, c.Traits[trait]))
			}
			fmt.Fprintf(&b, "Personality traits: %s.\n", strings.Join(pairs, ", "))
		}

		memories := c.Memories
		if len(memories) > recentMemoryCount {
			memories = memories[len(memories)-recentMemoryCount:]
		}
		if len(memories) > 0 {
			b.WriteString("Earlier adventures the story may reference:\n")
			for _, memory := range memories {
				fmt.Fprintf(&b, "- %s\n", memory.Summary)
			}
		}
	}

	if len(req.LearningGoals) > 0 {
		b.WriteString("\nWeave in these learning themes naturally, without lecturing:\n")
		for _, goal := range req.LearningGoals {
			if goal == nil {
				continue
			}
			fmt.Fprintf(&b, "- %s (%s)\n", goal.Title, goal.Category)
		}
	}

	b.WriteString("\nRespond with JSON only, using this shape:\n")
	b.WriteString(`{"summary": "...", "scenes": [{"number": 1, "content": "...", "primary_emotion": "...", "choices": [{"text": "...", "outcome": "...", "trait_influences": {"courage": 0.2}}]}]}`)
	b.WriteString("\nProduce 3 to 5 scenes. Each scene may offer up to 4 choices; choices are optional.\n")

	return b.String(), nil
}
