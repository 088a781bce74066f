package toolprobe

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// probeNames walks a script and collects every fixture it can invoke.
func probeNames(steps []Step) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range steps {
		if s.Probe != "" && !seen[s.Probe] {
			seen[s.Probe] = true
			names = append(names, s.Probe)
		}
	}
	return names
}

// TestFullConfigurationRun drives the complete default script through real
// shell fixtures and writes the resulting configuration file, the same path
// a user's configure invocation takes.
func TestFullConfigurationRun(t *testing.T) {
	skipWithoutShell(t)

	steps, err := DefaultScript(Directives{})
	if err != nil {
		t.Fatalf("DefaultScript failed: %v", err)
	}

	// Fixtures that accept the first candidate for everything except the
	// optimization flags, where only plain -O2 passes.
	dir := t.TempDir()
	for _, probe := range probeNames(steps) {
		script := "exit 0\n"
		if probe == "cc_optimize" {
			script = `[ "$CFLAGS_OPT" = "-O2" ] || exit 1` + "\n"
		}
		writeFixture(t, dir, probe, script)
	}

	env := NewEnvironment()
	if err := DetectSeed(nil).Apply(env); err != nil {
		t.Fatalf("Seed apply failed: %v", err)
	}

	ctrl := NewController(NewExecHarness(dir), env, steps)
	var progress bytes.Buffer
	ctrl.SetProgress(&progress)

	result, err := ctrl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v\nprogress:\n%s", err, progress.String())
	}
	if result.State != Completed {
		t.Fatalf("Expected Completed state, got %s", result.State)
	}
	if got := env.Value("CC"); got != "gcc" {
		t.Errorf("Expected first compiler candidate, got %q", got)
	}
	if got := env.Value("CFLAGS_OPT"); got != "-O2" {
		t.Errorf("Expected fixture to force CFLAGS_OPT=-O2, got %q", got)
	}
	if !strings.Contains(progress.String(), `CFLAGS_OPT selected as "-O2"`) {
		t.Errorf("Expected progress to show the optimization selection:\n%s", progress.String())
	}

	output := filepath.Join(t.TempDir(), "Make.inc")
	if err := WriteConfigFile(output, result); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Failed to read configuration: %v", err)
	}
	text := string(data)
	for _, line := range []string{"CC = gcc", "CFLAGS_OPT = -O2", "BLAS_BUILD = no"} {
		if !strings.Contains(text, line) {
			t.Errorf("Expected %q in configuration:\n%s", line, text)
		}
	}
}

// TestFullRunAbortsOnFailedGate checks the other half of the contract: a
// hard requirement that cannot be satisfied stops the run and nothing is
// persisted.
func TestFullRunAbortsOnFailedGate(t *testing.T) {
	skipWithoutShell(t)

	steps, err := DefaultScript(Directives{})
	if err != nil {
		t.Fatalf("DefaultScript failed: %v", err)
	}

	dir := t.TempDir()
	for _, probe := range probeNames(steps) {
		script := "exit 0\n"
		if probe == "cc_stack_local" {
			script = "echo no VLA support >&2\nexit 1\n"
		}
		writeFixture(t, dir, probe, script)
	}

	env := NewEnvironment()
	if err := DetectSeed(nil).Apply(env); err != nil {
		t.Fatalf("Seed apply failed: %v", err)
	}

	ctrl := NewController(NewExecHarness(dir), env, steps)
	result, err := ctrl.Run(context.Background())
	if err == nil {
		t.Fatal("Expected the failed gate to abort the run")
	}
	if result.State != Aborted {
		t.Errorf("Expected Aborted state, got %s", result.State)
	}
	if !strings.Contains(err.Error(), "STACK_LOCAL") {
		t.Errorf("Expected STACK_LOCAL in the failure, got %v", err)
	}

	output := filepath.Join(t.TempDir(), "Make.inc")
	if err := WriteConfigFile(output, result); err == nil {
		t.Error("Expected WriteConfigFile to refuse the aborted run")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("Expected no configuration file after an aborted run")
	}
}
