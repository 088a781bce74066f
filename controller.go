package toolprobe

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"
)

// StepKind distinguishes the three things a run script can do.
type StepKind int

const (
	// StepSelect resolves a variable from an ordered candidate list.
	StepSelect StepKind = iota
	// StepGate hard-requires a capability with no fallback.
	StepGate
	// StepSet binds a literal value decided by an earlier directive or
	// guard, without consulting the harness.
	StepSet
)

// Step is one entry in the fixed run script.
//
// Steps execute strictly in declared order. Reads lists the variables a
// step's probe or guard depends on; every name in Reads must be resolved by
// the seed or by an earlier step, which ValidateStepOrder checks without
// running a single probe.
type Step struct {
	// Name is the variable to resolve, or the gate label.
	Name string

	// Kind selects resolution, gate, or literal-bind behavior.
	Kind StepKind

	// When is an optional guard expression evaluated against the resolved
	// environment, e.g. `MINGW == "yes"`. A false guard skips the step.
	When string

	// Reads declares the previously resolved variables this step depends
	// on, including those its guard references.
	Reads []string

	// Candidates are the ordered trial values for StepSelect, or the
	// single literal for StepSet.
	Candidates []string

	// Probe names the harness fixture for StepSelect and StepGate.
	Probe string

	// Hint is the remediation message shown when the step cannot be
	// satisfied.
	Hint string
}

// State is the controller's position in its run.
type State int

const (
	NotStarted State = iota
	Probing
	Completed
	Aborted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Probing:
		return "probing"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StepRecord is the per-step entry in a RunResult.
type StepRecord struct {
	Step    string
	Kind    StepKind
	Skipped bool   // Guard evaluated false, or variable already seeded
	Value   string // Committed value for select/set steps
}

// RunResult is what one configuration pass produces: either a complete
// Environment, or the typed reason the run aborted. Callers inspect Failure
// with errors.As rather than parsing output text.
type RunResult struct {
	RunID   string
	Env     *Environment
	Steps   []StepRecord
	State   State
	Failure error
}

// Controller executes the fixed, hand-ordered script of resolutions and
// gates that constitute one configuration pass.
//
// Ordering is significant: later steps assume earlier variables are already
// resolved and threaded into their probes. The controller is the single
// writer of the Environment; no step runs concurrently with another, and no
// step is retried. The first fatal failure moves the controller to the
// absorbing Aborted state and nothing after it runs.
type Controller struct {
	harness  Harness
	env      *Environment
	steps    []Step
	progress io.Writer

	state State
}

// NewController creates a controller over a seeded environment and a run
// script. Progress output is discarded until SetProgress is called.
func NewController(harness Harness, env *Environment, steps []Step) *Controller {
	return &Controller{
		harness: harness,
		env:     env,
		steps:   steps,
		state:   NotStarted,
	}
}

// SetProgress directs the one-line-per-step progress output to w.
func (c *Controller) SetProgress(w io.Writer) {
	c.progress = w
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return c.state
}

// Run executes the script from the beginning.
//
// The step order is validated structurally before any probe runs; a script
// whose step reads a variable no earlier step resolves is rejected
// immediately. On abort the returned RunResult still carries the run id,
// the step records up to the failure, and the typed failure reason - but
// the Environment must not be written out, since it is incomplete.
func (c *Controller) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{
		RunID: uuid.NewString(),
		Env:   c.env,
		State: NotStarted,
	}

	if c.state != NotStarted {
		return result, fmt.Errorf("controller already ran (state %s)", c.state)
	}
	if err := ValidateStepOrder(c.env, c.steps); err != nil {
		c.state = Aborted
		result.State = Aborted
		result.Failure = err
		return result, err
	}

	c.state = Probing
	result.State = Probing
	resolver := &Resolver{Harness: c.harness, Env: c.env, Progress: c.progress}

	for _, step := range c.steps {
		if err := ctx.Err(); err != nil {
			return c.abort(result, err)
		}

		run, err := c.shouldRun(step)
		if err != nil {
			return c.abort(result, err)
		}
		if !run {
			result.Steps = append(result.Steps, StepRecord{Step: step.Name, Kind: step.Kind, Skipped: true})
			continue
		}

		switch step.Kind {
		case StepGate:
			if err := resolver.Require(ctx, step.Name, step.Probe, step.Hint); err != nil {
				return c.abort(result, err)
			}
			result.Steps = append(result.Steps, StepRecord{Step: step.Name, Kind: step.Kind})

		case StepSet:
			value := ""
			if len(step.Candidates) > 0 {
				value = step.Candidates[0]
			}
			if err := c.env.Bind(step.Name, value); err != nil {
				return c.abort(result, err)
			}
			if c.progress != nil {
				fmt.Fprintf(c.progress, "%s set to %q\n", step.Name, value)
			}
			result.Steps = append(result.Steps, StepRecord{Step: step.Name, Kind: step.Kind, Value: value})

		default:
			value, err := resolver.Select(ctx, step.Name, step.Candidates, step.Probe, step.Hint)
			if err != nil {
				return c.abort(result, err)
			}
			result.Steps = append(result.Steps, StepRecord{Step: step.Name, Kind: step.Kind, Value: value})
		}
	}

	c.state = Completed
	result.State = Completed
	return result, nil
}

// shouldRun decides whether a step executes: seeded variables keep their
// seed value, and guard expressions can exclude a step on this platform.
func (c *Controller) shouldRun(step Step) (bool, error) {
	if step.Kind != StepGate && c.env.Has(step.Name) {
		if c.progress != nil {
			fmt.Fprintf(c.progress, "%s kept from seed as %q\n", step.Name, c.env.Value(step.Name))
		}
		return false, nil
	}
	return evalGuard(step.When, c.env.Snapshot())
}

func (c *Controller) abort(result *RunResult, reason error) (*RunResult, error) {
	c.state = Aborted
	result.State = Aborted
	result.Failure = reason
	return result, reason
}

// evalGuard evaluates a step guard against the resolved environment using
// expr-lang. Variables not yet resolved evaluate as nil, so guards compare
// against explicit values ("yes", "") rather than testing presence.
func evalGuard(guard string, env map[string]string) (bool, error) {
	guard = strings.TrimSpace(guard)
	if guard == "" {
		return true, nil
	}

	data := make(map[string]any, len(env))
	for k, v := range env {
		data[k] = v
	}
	program, err := expr.Compile(guard, expr.Env(data), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compile guard %q: %w", guard, err)
	}
	output, err := expr.Run(program, data)
	if err != nil {
		return false, fmt.Errorf("eval guard %q: %w", guard, err)
	}
	ok, isBool := output.(bool)
	if !isBool {
		return false, fmt.Errorf("guard %q did not return bool (got %T)", guard, output)
	}
	return ok, nil
}

// ValidateStepOrder checks the structural ordering invariant: every name a
// step declares in Reads must be resolved by the seed environment or by an
// earlier select/set step. This catches reordering bugs statically, before
// a single probe runs.
func ValidateStepOrder(seed *Environment, steps []Step) error {
	resolved := make(map[string]bool)
	for _, pair := range seed.Pairs() {
		resolved[pair.Name] = true
	}

	for i, step := range steps {
		for _, dep := range step.Reads {
			if !resolved[dep] {
				return fmt.Errorf("step %d (%s) reads %s, which no earlier step resolves",
					i, step.Name, dep)
			}
		}
		if step.Kind != StepGate {
			resolved[step.Name] = true
		}
	}
	return nil
}
