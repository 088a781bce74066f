// Package toolprobe determines a working build configuration for a native
// extension by empirically probing the host toolchain.
//
// Instead of trusting static platform tables, toolprobe compiles and links
// small test fixtures with candidate flags and accepts the first candidate
// that succeeds. The approach survives toolchain variance that table-driven
// configuration does not: GCC vs. clang vs. cross-compilers, MinGW vs.
// native POSIX, 32- vs. 64-bit targets.
//
// # Core Abstractions
//
// The engine is built from a small set of pieces:
//
//   - Environment - the append-only set of resolved configuration variables
//   - Harness - an opaque pass/fail verifier for one named probe fixture
//   - Resolver - tries an ordered candidate list, commits the first success
//   - Controller - runs the fixed, hand-ordered script of resolutions/gates
//   - WriteConfig - serializes the completed Environment to a key=value file
//
// # Basic Usage
//
// Detect the platform seed, build a run script, and execute it:
//
//	env := toolprobe.NewEnvironment()
//	toolprobe.DetectSeed(os.LookupEnv).Apply(env)
//
//	directives := toolprobe.Directives{}
//	steps, err := toolprobe.DefaultScript(directives)
//	if err != nil {
//	    // configuration conflict, nothing was probed
//	}
//
//	harness := toolprobe.NewExecHarness("fixtures")
//	ctrl := toolprobe.NewController(harness, env, steps)
//	result, err := ctrl.Run(ctx)
//	if err == nil {
//	    toolprobe.WriteConfigFile("Make.inc", result)
//	}
//
// # Resolution Semantics
//
// Candidates are tried strictly in declared order; order encodes preference.
// The empty string is a legitimate candidate meaning "no extra flag needed"
// and is tried in its declared position. A single-candidate list expresses a
// hard requirement with no fallback. When every candidate fails, the whole
// run aborts - a later step must never observe a partially resolved variable.
//
// Probing is strictly sequential: each probe observes the environment exactly
// as committed by all earlier steps, so parallel probing is not safe and is
// not attempted.
//
// # Platform Support
//
// Full support on Linux and macOS. Windows is supported through MinGW/MSYS2
// toolchains; the run script carries guarded steps for the differences.
//
// # Requirements
//
// Requires Go 1.25 or later.
package toolprobe
