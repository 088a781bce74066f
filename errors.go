package toolprobe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHarnessUnavailable indicates the probe harness itself could not be
// invoked (missing interpreter or fixture directory). For the variable that
// needed the probe this is fatal in exactly the same way candidate
// exhaustion is.
var ErrHarnessUnavailable = errors.New("probe harness unavailable")

// ExhaustedError is the fatal outcome of a resolution whose every candidate
// failed its probe, or of a gate whose single implicit candidate failed.
//
// The resolver recovers individual candidate failures internally by moving
// on to the next candidate; ExhaustedError is only produced once there is
// nothing left to try. It carries enough context for a caller to say which
// requirement was unmet without parsing output text.
type ExhaustedError struct {
	// Variable is the configuration variable (or gate name) that could not
	// be satisfied.
	Variable string

	// Probe is the harness fixture that rejected every candidate.
	Probe string

	// Hint is the user-facing remediation hint declared by the step.
	Hint string

	// Candidates is how many candidates were tried. Zero means the list
	// was empty, which fails resolution immediately.
	Candidates int

	// Diagnostic holds captured output from the last failed probe, if any.
	Diagnostic string

	cause error
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("%s: no working candidate found (probe %s, %d tried)",
		e.Variable, e.Probe, e.Candidates)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	if e.cause != nil {
		msg += fmt.Sprintf(": %v", e.cause)
	}
	return msg
}

func (e *ExhaustedError) Unwrap() error {
	return e.cause
}

// ConflictError reports mutually exclusive configuration directives. It is
// detected before any probing begins, so a conflicting request never spends
// time compiling fixtures.
type ConflictError struct {
	// Directives names the requests that cannot be honored together.
	Directives []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting configuration directives: %s",
		strings.Join(e.Directives, " and "))
}

// probeDiagnostic formats captured harness output for inclusion in a fatal
// error. Empty output collapses to nothing so errors stay one line when the
// harness had nothing to say.
func probeDiagnostic(stderr, stdout []byte) string {
	text := strings.TrimSpace(string(stderr))
	if text == "" {
		text = strings.TrimSpace(string(stdout))
	}
	return text
}
