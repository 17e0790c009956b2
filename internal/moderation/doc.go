// Package moderation screens generated story content before it can be
// published. The screen is deterministic: a fixed blocklist plus structural
// checks, so the same content always yields the same decision. Stories that
// pass cleanly are auto-approved; borderline content is left pending for a
// human reviewer.
package moderation
