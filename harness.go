package toolprobe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ProbeOutcome is the complete result of one harness invocation.
//
// The engine depends only on Succeeded; captured output is kept purely for
// diagnostics on total failure and is never parsed as a data channel.
type ProbeOutcome struct {
	Succeeded bool   // True only when the harness exited with status 0
	Stdout    []byte // Captured standard output, for diagnostics
	Stderr    []byte // Captured standard error, for diagnostics
}

// Harness is the narrow interface between the resolution engine and the
// external fixture-build system that verifies one toolchain capability.
//
// Given a named fixture and the environment of variables resolved so far
// (plus the candidate under trial), a Harness attempts the build and reports
// pass or fail. Exit status zero is the only success; every other status,
// including a harness crash, is an ordinary failed probe.
//
// The returned error is reserved for one situation: the harness itself could
// not be invoked at all. Such errors wrap ErrHarnessUnavailable and are
// fatal for the variable that needed the probe. A fixture that builds and
// fails is NOT an error - it is a ProbeOutcome with Succeeded=false.
//
// # Implementations
//
// ExecHarness runs real fixtures through a shell; tests substitute scripted
// in-memory harnesses so resolver logic can be exercised without a compiler.
type Harness interface {
	// Probe runs the named fixture with the given variable bindings
	// exported into its environment.
	Probe(ctx context.Context, name string, env map[string]string) (ProbeOutcome, error)
}

// ExecHarness runs probe fixtures as subprocesses.
//
// A fixture is a file under FixtureDir named <probe><FixtureExt>, executed
// as Command... <fixture path>. The resolved environment is exported as
// process environment variables, so a fixture reads the compiler under test
// from $CC, the trial flags from the variable being resolved, and so on.
//
// Every probe gets a fresh scratch directory, exported as PROBE_TMPDIR, for
// its build artifacts. The directory is removed on every exit path so a
// failed probe can never contaminate a later one with stale artifacts.
//
// # Thread Safety
//
// ExecHarness holds no per-probe state and is safe for concurrent use,
// though the engine itself only ever probes sequentially.
type ExecHarness struct {
	// Command is the interpreter invocation, e.g. {"sh"} or {"make", "-f"}.
	Command []string

	// FixtureDir is the directory containing probe fixtures.
	FixtureDir string

	// FixtureExt is appended to the probe name to form the fixture file
	// name. Defaults to ".sh".
	FixtureExt string
}

// NewExecHarness creates a harness that runs sh fixtures from the given
// directory.
func NewExecHarness(fixtureDir string) *ExecHarness {
	return &ExecHarness{
		Command:    []string{"sh"},
		FixtureDir: fixtureDir,
		FixtureExt: ".sh",
	}
}

// Check verifies the harness can be invoked at all: the interpreter must be
// on PATH and the fixture directory must exist. Intended as a fail-fast
// call before the first probe; errors wrap ErrHarnessUnavailable.
func (h *ExecHarness) Check() error {
	if len(h.Command) == 0 {
		return fmt.Errorf("%w: no interpreter configured", ErrHarnessUnavailable)
	}
	if err := CheckRequiredTools([]ToolRequirement{
		{Name: h.Command[0], Purpose: "probe fixture interpreter"},
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrHarnessUnavailable, err)
	}
	if info, err := os.Stat(h.FixtureDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: fixture directory %s not found", ErrHarnessUnavailable, h.FixtureDir)
	}
	return nil
}

// Probe runs one fixture and reports the outcome.
//
// The flow mirrors a miniature build: stage a scratch directory, run the
// fixture with the environment exported, release the scratch directory.
// Cleanup happens on success, failure, and invocation error alike.
func (h *ExecHarness) Probe(ctx context.Context, name string, env map[string]string) (ProbeOutcome, error) {
	fixture, err := h.fixturePath(name)
	if err != nil {
		return ProbeOutcome{}, err
	}

	scratch, err := os.MkdirTemp("", "toolprobe-"+name+"-")
	if err != nil {
		return ProbeOutcome{}, fmt.Errorf("%w: cannot create scratch directory: %v", ErrHarnessUnavailable, err)
	}
	defer os.RemoveAll(scratch)

	args := append(append([]string{}, h.Command[1:]...), fixture)
	//nolint:gosec // Command comes from trusted harness configuration.
	cmd := exec.CommandContext(ctx, h.Command[0], args...)
	cmd.Dir = scratch

	cmd.Env = os.Environ()
	for key, value := range env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}
	cmd.Env = append(cmd.Env, "PROBE_TMPDIR="+scratch)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return ProbeOutcome{}, fmt.Errorf("%w: cannot start %s: %v", ErrHarnessUnavailable, h.Command[0], err)
	}

	runErr := cmd.Wait()
	outcome := ProbeOutcome{
		Succeeded: runErr == nil,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
	}
	return outcome, nil
}

// fixturePath resolves the fixture file for a probe name, rejecting names
// that would escape the fixture directory.
func (h *ExecHarness) fixturePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: invalid probe name %q", ErrHarnessUnavailable, name)
	}
	ext := h.FixtureExt
	if ext == "" {
		ext = ".sh"
	}
	fixture := filepath.Join(h.FixtureDir, name+ext)
	if _, err := os.Stat(fixture); err != nil {
		return "", fmt.Errorf("%w: fixture %s not found", ErrHarnessUnavailable, fixture)
	}
	return fixture, nil
}
