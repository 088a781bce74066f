package toolprobe

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func completedResult(t *testing.T, pairs ...Pair) *RunResult {
	t.Helper()
	env := NewEnvironment()
	for _, p := range pairs {
		if err := env.Bind(p.Name, p.Value); err != nil {
			t.Fatalf("Bind %s failed: %v", p.Name, err)
		}
	}
	return &RunResult{RunID: "test-run", Env: env, State: Completed}
}

func TestWriteConfig(t *testing.T) {
	result := completedResult(t,
		Pair{"CC", "gcc"},
		Pair{"CFLAGS_OPT", "-O2 -fno-strict-aliasing"},
		Pair{"CFLAGS_FLOAT", ""},
		Pair{"AR", "ar"},
	)

	var out bytes.Buffer
	if err := WriteConfig(&out, result); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("Expected 2 header + 4 variable lines, got %d: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "test-run") {
		t.Errorf("Expected run id in header, got %q", lines[0])
	}

	// Variables appear in resolution order, empty values included.
	expected := []string{
		"CC = gcc",
		"CFLAGS_OPT = -O2 -fno-strict-aliasing",
		"CFLAGS_FLOAT = ",
		"AR = ar",
	}
	for i, want := range expected {
		if lines[i+2] != want {
			t.Errorf("Expected line %d to be %q, got %q", i+2, want, lines[i+2])
		}
	}
}

func TestWriteConfigRefusesIncompleteRuns(t *testing.T) {
	for _, state := range []State{NotStarted, Probing, Aborted} {
		t.Run(state.String(), func(t *testing.T) {
			result := completedResult(t, Pair{"CC", "gcc"})
			result.State = state

			var out bytes.Buffer
			if err := WriteConfig(&out, result); err == nil {
				t.Errorf("Expected WriteConfig to refuse a %s run", state)
			}
			if out.Len() != 0 {
				t.Errorf("Expected no output for a %s run", state)
			}
		})
	}
}

func TestWriteConfigRejectsUnserializableValues(t *testing.T) {
	testCases := []struct {
		name string
		pair Pair
	}{
		{name: "name with space", pair: Pair{"BAD NAME", "x"}},
		{name: "name with equals", pair: Pair{"BAD=NAME", "x"}},
		{name: "value with newline", pair: Pair{"NAME", "a\nb"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := completedResult(t, tc.pair)
			if err := WriteConfig(&bytes.Buffer{}, result); err == nil {
				t.Error("Expected serialization error")
			}
		})
	}
}

func TestWriteConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Make.inc")

	result := completedResult(t, Pair{"CC", "gcc"})
	if err := WriteConfigFile(path, result); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read configuration: %v", err)
	}
	if !strings.Contains(string(data), "CC = gcc") {
		t.Errorf("Expected CC line in configuration, got %q", data)
	}

	// A second run replaces the file rather than appending to it.
	second := completedResult(t, Pair{"CC", "clang"})
	second.RunID = "second-run"
	if err := WriteConfigFile(path, second); err != nil {
		t.Fatalf("Second WriteConfigFile failed: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to re-read configuration: %v", err)
	}
	if strings.Contains(string(data), "gcc") {
		t.Errorf("Expected old configuration replaced, got %q", data)
	}

	// No temp files linger next to the output.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the configuration file in %s, found %d entries", dir, len(entries))
	}
}

func TestWriteConfigFileAbortedRunLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Make.inc")

	result := completedResult(t, Pair{"CC", "gcc"})
	result.State = Aborted
	if err := WriteConfigFile(path, result); err == nil {
		t.Fatal("Expected WriteConfigFile to refuse an aborted run")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no configuration file for an aborted run, stat err: %v", err)
	}
}
