// Package validation implements the bounded validation-and-repair state
// machine that runs after generation: repair known failures, apply the
// advisory quality pass, re-check everything, and loop or exit on a fixed
// attempt budget.
package validation

import (
	"context"
	"time"

	"github.com/atelierhq/veneer/internal/bounded"
	"github.com/atelierhq/veneer/internal/checks"
	"github.com/atelierhq/veneer/internal/registry"
	"github.com/atelierhq/veneer/internal/repair"
	"github.com/atelierhq/veneer/internal/review"
	"github.com/atelierhq/veneer/pkg/models"
)

// DefaultMaxAttempts is the attempt budget when none is configured.
const DefaultMaxAttempts = 3

// State identifies a phase of the validation loop.
type State int

const (
	// StateRepairing runs the repair coordinator over known failures.
	StateRepairing State = iota
	// StateQualityReview runs the advisory quality pass.
	StateQualityReview
	// StateFinalCheck runs the comprehensive check over all artifacts.
	StateFinalCheck
	// StateExit is the terminal state.
	StateExit
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRepairing:
		return "repairing"
	case StateQualityReview:
		return "quality_review"
	case StateFinalCheck:
		return "final_check"
	case StateExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Outcome is the terminal value of a validation run.
type Outcome struct {
	// Passed indicates every tracked artifact was clean at the final check.
	Passed bool
	// Failures maps artifact name to its failure record at exit.
	// Empty when Passed.
	Failures map[string]*models.FailureRecord
	// Attempt is the attempt counter value at exit.
	Attempt int
	// Attempted marks artifacts that received at least one repair
	// invocation during the run, so the final report can distinguish
	// "repair attempted and still failing" from "never attempted repair".
	Attempted map[string]bool
}

// Context carries the run-scoped collaborators the orchestrator needs.
type Context struct {
	// Root is the artifact output root directory.
	Root string
	// Registry is the artifact registry handle.
	Registry *registry.Registry
}

// Checker runs the comprehensive check. Implemented by checks.Runner.
type Checker interface {
	RunChecks(ctx context.Context, root string) (*checks.Report, error)
}

// Repairer runs the repair sub-loop over a failure set.
// Implemented by repair.Coordinator.
type Repairer interface {
	RepairAll(ctx context.Context, root string, failures map[string]*models.FailureRecord) (map[string]repair.Result, error)
}

// Quality runs the advisory quality pass. Implemented by review.Pass.
// iteration is the 1-based loop iteration, which can lag the attempt counter:
// a run entering with known failures reaches its first quality pass at
// attempt 2 but iteration 1, and the first iteration always reviews the full
// artifact set.
type Quality interface {
	ReviewAll(ctx context.Context, root string, artifacts []models.Artifact, iteration int, failing map[string]*models.FailureRecord) map[string]review.Result
}

// EventType classifies orchestrator events.
type EventType int

const (
	// EventState is emitted on every state transition.
	EventState EventType = iota
	// EventRepair is emitted per artifact repair result.
	EventRepair
	// EventCheck is emitted after each comprehensive check.
	EventCheck
	// EventDone is emitted once, at exit.
	EventDone
)

// Event is a progress notification for the TUI and run log.
type Event struct {
	// Type classifies the event.
	Type EventType
	// State is the machine state the event belongs to.
	State State
	// Attempt is the attempt counter at emission time.
	Attempt int
	// Artifact names the artifact for per-artifact events.
	Artifact string
	// Message is a human-readable description.
	Message string
	// Failures is the failing-artifact count for check/done events.
	Failures int
	// Timestamp is when the event was emitted.
	Timestamp time.Time
}

// Orchestrator sequences repair, quality review, and comprehensive checks,
// and decides when to loop versus hand off a partial failure report.
type Orchestrator struct {
	checker     Checker
	repairer    Repairer
	quality     Quality
	maxAttempts int
	logf        func(format string, args ...interface{})
	events      chan<- Event
}

// Options configures an Orchestrator.
type Options struct {
	// MaxAttempts bounds full loop iterations. Default DefaultMaxAttempts.
	MaxAttempts int
	// Logf receives progress lines. May be nil.
	Logf func(format string, args ...interface{})
	// Events receives progress events; emission never blocks. May be nil.
	Events chan<- Event
}

// NewOrchestrator wires the three passes into a validation loop.
func NewOrchestrator(checker Checker, repairer Repairer, quality Quality, opts Options) *Orchestrator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...interface{}) {}
	}
	return &Orchestrator{
		checker:     checker,
		repairer:    repairer,
		quality:     quality,
		maxAttempts: opts.MaxAttempts,
		logf:        opts.Logf,
		events:      opts.Events,
	}
}

// RunValidation executes the state machine until exit and returns the final
// outcome. initial carries failures already known to the surrounding
// pipeline (possibly empty). A *checks.ToolError from any check pass aborts
// the whole run immediately and is returned as an error; attempt-budget
// exhaustion is a successful termination with a partial result, returned as
// data with Passed set to false.
//
// The attempt counter starts at 1 and advances exactly once per full loop
// iteration: immediately after the iteration's repair pass. An iteration
// that skips repair (no known failures) does not consume an attempt, so a
// clean artifact set exits with Attempt == 1.
func (o *Orchestrator) RunValidation(ctx context.Context, initial map[string]*models.FailureRecord, vc Context) (*Outcome, error) {
	failures := make(map[string]*models.FailureRecord, len(initial))
	for name, rec := range initial {
		failures[name] = rec
	}
	attempted := make(map[string]bool)

	// The same retry-with-cap primitive the repair sub-loop uses, with stuck
	// detection disabled: a stagnant failure set needs no strategy switch
	// here because every iteration recomputes the map from scratch.
	loop := bounded.New(o.maxAttempts, 0)
	loop.Next()

	iteration := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iteration++

		if len(failures) > 0 {
			o.transition(StateRepairing, loop.Attempt())
			results, err := o.repairer.RepairAll(ctx, vc.Root, failures)
			if err != nil {
				return nil, err
			}
			for name := range failures {
				attempted[name] = true
			}
			for name, res := range results {
				status := "repaired"
				if !res.Success {
					status = "still failing"
				}
				o.logf("repair %s: %s after %d turn(s)", name, status, res.Turns)
				o.emit(Event{Type: EventRepair, State: StateRepairing, Attempt: loop.Attempt(), Artifact: name, Message: status})
			}
			// One full loop iteration consumed.
			loop.Next()
		}

		o.transition(StateQualityReview, loop.Attempt())
		o.quality.ReviewAll(ctx, vc.Root, vc.Registry.ListArtifacts(), iteration, failures)

		o.transition(StateFinalCheck, loop.Attempt())
		report, err := o.checker.RunChecks(ctx, vc.Root)
		if err != nil {
			// Fatal tool-invocation failure: abort, do not loop.
			return nil, err
		}
		// The fresh map entirely replaces the old one. Failures are always
		// recomputed from the current tree; stale entries must not survive.
		fresh := checks.Aggregate(report, vc.Registry)
		o.logf("final check: %d failing artifact(s) at attempt %d", len(fresh), loop.Attempt())
		o.emit(Event{Type: EventCheck, State: StateFinalCheck, Attempt: loop.Attempt(), Failures: len(fresh)})

		if len(fresh) == 0 {
			return o.exit(&Outcome{Passed: true, Failures: fresh, Attempt: loop.Attempt(), Attempted: attempted})
		}
		if loop.Exhausted() {
			return o.exit(&Outcome{Passed: false, Failures: fresh, Attempt: loop.Attempt(), Attempted: attempted})
		}
		failures = fresh
	}
}

// exit emits the terminal event and returns the outcome.
func (o *Orchestrator) exit(outcome *Outcome) (*Outcome, error) {
	o.transition(StateExit, outcome.Attempt)
	o.emit(Event{Type: EventDone, State: StateExit, Attempt: outcome.Attempt, Failures: len(outcome.Failures)})
	return outcome, nil
}

// transition logs and emits a state change.
func (o *Orchestrator) transition(s State, attempt int) {
	o.logf("state: %s (attempt %d)", s, attempt)
	o.emit(Event{Type: EventState, State: s, Attempt: attempt})
}

// emit sends an event without blocking; a slow consumer drops events rather
// than stalling the loop.
func (o *Orchestrator) emit(e Event) {
	if o.events == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case o.events <- e:
	default:
	}
}
