package toolprobe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the optional YAML configuration file for a run. Everything in
// it can also be supplied on the command line; flags win over the profile,
// and the profile wins over detection.
//
// Example:
//
//	harness:
//	  command: [sh]
//	  fixtures: fixtures
//	seed:
//	  PREFIX: /opt/ext
//	  CC: clang
//	directives:
//	  with_blas: "-L/opt/openblas/lib -lopenblas"
//	output: Make.inc
type Profile struct {
	Harness struct {
		// Command is the fixture interpreter invocation. Default: [sh].
		Command []string `yaml:"command"`
		// Fixtures is the probe fixture directory. Default: fixtures.
		Fixtures string `yaml:"fixtures"`
	} `yaml:"harness"`

	// Seed overrides individual detected seed variables by name.
	Seed map[string]string `yaml:"seed"`

	Directives struct {
		WithBLAS      string `yaml:"with_blas"`
		BuildBLAS     bool   `yaml:"build_blas"`
		BuildOpenBLAS bool   `yaml:"build_openblas"`
		WithLAPACK    string `yaml:"with_lapack"`
		BuildLAPACK   bool   `yaml:"build_lapack"`
	} `yaml:"directives"`

	// Output is the path of the generated configuration file.
	Output string `yaml:"output"`
}

// LoadProfile reads and parses a profile file. Unknown keys are rejected so
// a typo in a directive name cannot silently change what gets built.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile parses profile YAML.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&profile); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &profile, nil
}

// ToDirectives converts the profile's directive block.
func (p *Profile) ToDirectives() Directives {
	return Directives{
		BLASLib:       p.Directives.WithBLAS,
		BuildBLAS:     p.Directives.BuildBLAS,
		BuildOpenBLAS: p.Directives.BuildOpenBLAS,
		LAPACKLib:     p.Directives.WithLAPACK,
		BuildLAPACK:   p.Directives.BuildLAPACK,
	}
}
