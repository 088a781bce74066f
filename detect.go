package toolprobe

import (
	"runtime"
	"strings"
)

// EnvFunc looks up process environment variables. The default is
// os.LookupEnv; tests inject their own so detection is deterministic.
type EnvFunc func(key string) (string, bool)

// Seed is the one-shot set of initial variable values supplied to the
// engine before the first probe. Values the detector cannot determine fall
// back to a fixed internal default, so the run script can always rely on
// the seed variables being present.
type Seed struct {
	pairs []Pair
}

// Pairs returns the seed values in binding order.
func (s *Seed) Pairs() []Pair {
	return append([]Pair{}, s.pairs...)
}

// Apply binds every seed value into the environment.
func (s *Seed) Apply(env *Environment) error {
	for _, p := range s.pairs {
		if err := env.Bind(p.Name, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// Set adds or replaces a seed value before it is applied. Later steps treat
// a seeded variable as already resolved and keep it.
func (s *Seed) Set(name, value string) {
	for i, p := range s.pairs {
		if p.Name == name {
			s.pairs[i].Value = value
			return
		}
	}
	s.pairs = append(s.pairs, Pair{Name: name, Value: value})
}

// DetectSeed reads the host platform and process environment into a Seed.
//
// Detected variables:
//
//	TARGET_OS    - host operating system (GOOS)
//	TARGET_ARCH  - host architecture (GOARCH)
//	TARGET_BITS  - "64" or "32", from the architecture name
//	MINGW        - "yes" on Windows, where MinGW toolchain rules apply
//	VERSION      - PROBE_VERSION from the environment, else "0.0.0"
//	PREFIX       - PROBE_PREFIX from the environment, else /usr/local
//	CC, FC       - taken from the environment when set, so an explicit
//	               compiler choice is kept instead of rediscovered
func DetectSeed(lookup EnvFunc) *Seed {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}

	seed := &Seed{}
	seed.Set("TARGET_OS", runtime.GOOS)
	seed.Set("TARGET_ARCH", runtime.GOARCH)
	seed.Set("TARGET_BITS", archBits(runtime.GOARCH))

	mingw := "no"
	if runtime.GOOS == "windows" {
		mingw = "yes"
	}
	seed.Set("MINGW", mingw)

	version := "0.0.0"
	if v, ok := lookup("PROBE_VERSION"); ok && v != "" {
		version = v
	}
	seed.Set("VERSION", version)

	prefix := "/usr/local"
	if runtime.GOOS == "windows" {
		prefix = `C:\local`
	}
	if p, ok := lookup("PROBE_PREFIX"); ok && p != "" {
		prefix = p
	}
	seed.Set("PREFIX", prefix)

	if cc, ok := lookup("CC"); ok && cc != "" {
		seed.Set("CC", cc)
	}
	if fc, ok := lookup("FC"); ok && fc != "" {
		seed.Set("FC", fc)
	}

	return seed
}

func archBits(arch string) string {
	if strings.Contains(arch, "64") {
		return "64"
	}
	return "32"
}
