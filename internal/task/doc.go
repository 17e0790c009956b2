// Package task provides the background processing infrastructure: a bounded
// in-memory task queue, a worker pool that drains it, and the story
// generation task that drives a story through its generation and moderation
// lifecycle.
package task
