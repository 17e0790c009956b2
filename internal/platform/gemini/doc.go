// Package gemini implements generation.StoryGenerator using Google's Gemini
// API via the google.golang.org/genai client.
package gemini
