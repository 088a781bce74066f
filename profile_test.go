package toolprobe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleProfile = `harness:
  command: [sh, -e]
  fixtures: probes
seed:
  PREFIX: /opt/ext
  CC: clang
directives:
  with_blas: "-L/opt/openblas/lib -lopenblas"
  build_lapack: false
output: config/Make.inc
`

func TestParseProfile(t *testing.T) {
	profile, err := ParseProfile([]byte(sampleProfile))
	if err != nil {
		t.Fatalf("ParseProfile failed: %v", err)
	}

	if len(profile.Harness.Command) != 2 || profile.Harness.Command[0] != "sh" {
		t.Errorf("Expected harness command [sh -e], got %v", profile.Harness.Command)
	}
	if profile.Harness.Fixtures != "probes" {
		t.Errorf("Expected fixtures dir probes, got %s", profile.Harness.Fixtures)
	}
	if profile.Seed["PREFIX"] != "/opt/ext" || profile.Seed["CC"] != "clang" {
		t.Errorf("Expected seed overrides, got %v", profile.Seed)
	}
	if profile.Output != "config/Make.inc" {
		t.Errorf("Expected output path, got %s", profile.Output)
	}

	directives := profile.ToDirectives()
	if directives.BLASLib != "-L/opt/openblas/lib -lopenblas" {
		t.Errorf("Expected external BLAS directive, got %q", directives.BLASLib)
	}
	if directives.BuildLAPACK {
		t.Error("Expected build_lapack false")
	}
}

func TestParseProfileRejectsUnknownKeys(t *testing.T) {
	// A typo like "with_bas" must fail loudly instead of silently probing
	// for a library the user meant to supply.
	_, err := ParseProfile([]byte("directives:\n  with_bas: \"-lblas\"\n"))
	if err == nil {
		t.Fatal("Expected unknown key to be rejected")
	}
	if !strings.Contains(err.Error(), "with_bas") && !strings.Contains(err.Error(), "field") {
		t.Errorf("Expected field error, got %v", err)
	}
}

func TestParseProfileEmpty(t *testing.T) {
	profile, err := ParseProfile([]byte(""))
	if err != nil {
		t.Fatalf("Expected an empty profile to mean all defaults, got %v", err)
	}
	if profile.Output != "" || len(profile.Seed) != 0 {
		t.Errorf("Expected zero-valued profile, got %+v", profile)
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.yaml")
	if err := os.WriteFile(path, []byte(sampleProfile), 0o644); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if profile.Seed["CC"] != "clang" {
		t.Errorf("Expected CC=clang from file, got %s", profile.Seed["CC"])
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for a missing profile file")
	}
}
