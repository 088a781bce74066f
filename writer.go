package toolprobe

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteConfig serializes a completed run to w as a Make include fragment:
// one NAME = value line per resolved variable, in resolution order, under a
// short generated header.
//
// Only a Completed run may be written; writing an aborted run would persist
// a partial configuration that a downstream build could silently trust.
func WriteConfig(w io.Writer, result *RunResult) error {
	if result.State != Completed {
		return fmt.Errorf("refusing to write configuration for %s run", result.State)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Generated by toolprobe (run %s).\n", result.RunID)
	fmt.Fprintf(bw, "# Do not edit; re-run the configuration instead.\n")

	for _, pair := range result.Env.Pairs() {
		if strings.ContainsAny(pair.Name, " \t\n=") {
			return fmt.Errorf("variable name %q is not serializable", pair.Name)
		}
		if strings.Contains(pair.Value, "\n") {
			return fmt.Errorf("variable %s contains a newline", pair.Name)
		}
		fmt.Fprintf(bw, "%s = %s\n", pair.Name, pair.Value)
	}

	return bw.Flush()
}

// WriteConfigFile writes the configuration to path, replacing any previous
// file atomically enough for a sequential configure step: the file is fully
// written and closed before the old content is considered gone.
func WriteConfigFile(path string, result *RunResult) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".toolprobe-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := WriteConfig(tmp, result); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
