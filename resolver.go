package toolprobe

import (
	"context"
	"fmt"
	"io"
)

// Resolver binds configuration variables by trial: each candidate value is
// handed to the harness in turn, and the first one whose probe succeeds is
// committed to the Environment permanently.
//
// A Resolver never retries a failed candidate and never revisits a bound
// variable. Falling through to the next candidate is the designed fallback
// path, not error recovery; an error only escapes once every candidate is
// gone or the harness cannot be invoked at all.
type Resolver struct {
	// Harness verifies candidates. Required.
	Harness Harness

	// Env accumulates resolved variables. Required.
	Env *Environment

	// Progress receives one human-readable line per committed variable or
	// passed gate. Optional; nil discards progress output.
	Progress io.Writer
}

// Select resolves one variable from an ordered candidate list.
//
// Candidates are tried strictly in order. For each, the variable is bound as
// a trial value visible only to that probe; the trial binding reaches the
// Environment only when the probe succeeds. On first success the candidate
// is committed and the remaining candidates are never tried.
//
// The empty string is an ordinary candidate ("no flag needed") and is tried
// in its declared position. An empty candidate list fails immediately,
// equivalent to exhausting all candidates.
//
// On exhaustion Select returns an *ExhaustedError carrying the hint; the
// Environment is left without the variable, so no later step can observe a
// partial result.
func (r *Resolver) Select(ctx context.Context, variable string, candidates []string, probe, hint string) (string, error) {
	var lastDiag string

	for _, candidate := range candidates {
		trial := r.Env.Snapshot()
		trial[variable] = candidate

		outcome, err := r.Harness.Probe(ctx, probe, trial)
		if err != nil {
			return "", &ExhaustedError{
				Variable:   variable,
				Probe:      probe,
				Hint:       hint,
				Candidates: len(candidates),
				cause:      err,
			}
		}
		if outcome.Succeeded {
			if err := r.Env.Bind(variable, candidate); err != nil {
				return "", err
			}
			r.progressf("%s selected as %q\n", variable, candidate)
			return candidate, nil
		}
		lastDiag = probeDiagnostic(outcome.Stderr, outcome.Stdout)
	}

	return "", &ExhaustedError{
		Variable:   variable,
		Probe:      probe,
		Hint:       hint,
		Candidates: len(candidates),
		Diagnostic: lastDiag,
	}
}

// Require runs a gate: a resolution with a single implicit candidate that
// leaves the Environment unchanged. Either the probe passes and the run
// continues, or the run aborts with the hint - there is no fallback.
func (r *Resolver) Require(ctx context.Context, gate, probe, hint string) error {
	outcome, err := r.Harness.Probe(ctx, probe, r.Env.Snapshot())
	if err != nil {
		return &ExhaustedError{
			Variable:   gate,
			Probe:      probe,
			Hint:       hint,
			Candidates: 1,
			cause:      err,
		}
	}
	if !outcome.Succeeded {
		return &ExhaustedError{
			Variable:   gate,
			Probe:      probe,
			Hint:       hint,
			Candidates: 1,
			Diagnostic: probeDiagnostic(outcome.Stderr, outcome.Stdout),
		}
	}
	r.progressf("%s answered yes\n", gate)
	return nil
}

func (r *Resolver) progressf(format string, args ...any) {
	if r.Progress != nil {
		fmt.Fprintf(r.Progress, format, args...)
	}
}
