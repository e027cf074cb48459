package agent

import (
	"sync"
)

// TokenUsage represents aggregated token usage for a run.
type TokenUsage struct {
	// InputTokens is the total input tokens consumed.
	InputTokens int64
	// OutputTokens is the total output tokens consumed.
	OutputTokens int64
}

// Total returns input plus output tokens.
func (u TokenUsage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}

// TokenTracker accumulates API-reported token usage across calls.
// Safe for concurrent use; parallel repairs share one client.
type TokenTracker struct {
	mu    sync.Mutex
	usage TokenUsage
}

// NewTokenTracker creates an empty tracker.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{}
}

// Add records usage from one API response.
func (t *TokenTracker) Add(input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.InputTokens += input
	t.usage.OutputTokens += output
}

// Usage returns a snapshot of the accumulated usage.
func (t *TokenTracker) Usage() TokenUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage
}
