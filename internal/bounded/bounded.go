// Package bounded provides the retry-with-cap primitive shared by the repair
// sub-loop and the top-level validation loop: a hard attempt ceiling plus a
// stuck-detection heuristic for repeated failure signals.
package bounded

// Loop caps iteration count and tracks whether the same failure signal keeps
// recurring. Zero value is not usable; construct with New.
type Loop struct {
	maxAttempts int
	stuckAfter  int

	attempt    int
	lastSignal string
	repeats    int
}

// New creates a loop allowing at most maxAttempts iterations. stuckAfter is
// the number of consecutive identical failure signals that counts as stuck;
// zero disables stuck detection.
func New(maxAttempts, stuckAfter int) *Loop {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Loop{maxAttempts: maxAttempts, stuckAfter: stuckAfter}
}

// Next advances to the next attempt and reports whether it is allowed.
// Intended as a for-loop condition: for l.Next() { ... }.
func (l *Loop) Next() bool {
	if l.attempt >= l.maxAttempts {
		return false
	}
	l.attempt++
	return true
}

// Attempt returns the current attempt number (1-indexed, 0 before Next).
func (l *Loop) Attempt() int {
	return l.attempt
}

// Exhausted reports whether the attempt budget is used up.
func (l *Loop) Exhausted() bool {
	return l.attempt >= l.maxAttempts
}

// Observe records the failure signal of the current attempt. Identical
// consecutive signals accumulate toward stuck detection; a changed signal
// resets the count.
func (l *Loop) Observe(signal string) {
	if signal == l.lastSignal {
		l.repeats++
	} else {
		l.lastSignal = signal
		l.repeats = 1
	}
}

// Stuck reports whether the same signal has been observed stuckAfter or more
// consecutive times. Callers are expected to switch strategy rather than
// retry the identical fix.
func (l *Loop) Stuck() bool {
	return l.stuckAfter > 0 && l.repeats >= l.stuckAfter
}

// ResetStuck clears the repetition counter after a strategy switch so the
// new approach gets a full window before being declared stuck again.
func (l *Loop) ResetStuck() {
	l.lastSignal = ""
	l.repeats = 0
}
