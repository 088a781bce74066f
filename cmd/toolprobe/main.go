// Command toolprobe probes the host toolchain and writes the build
// configuration file consumed by the native extension build.
//
// A run exits 0 when every resolution and gate succeeded, 2 when mutually
// exclusive directives were requested (nothing was probed), and 1 for any
// other abort. The single fatal cause is printed to stderr.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	toolprobe "github.com/contriboss/toolchain-probe-go"
)

// Set at build time via ldflags.
var version = "dev"

var (
	flagProfile       string
	flagFixtures      string
	flagHarness       []string
	flagOut           string
	flagPrefix        string
	flagSeed          []string
	flagWithBLAS      string
	flagBuildBLAS     bool
	flagBuildOpenBLAS bool
	flagWithLAPACK    string
	flagBuildLAPACK   bool
	flagQuiet         bool
)

var rootCmd = &cobra.Command{
	Use:           "toolprobe",
	Short:         "Empirically determine a working native-extension build configuration",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigure(cmd)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagProfile, "profile", "", "YAML profile file with seed and directive defaults")
	f.StringVar(&flagFixtures, "fixtures", "fixtures", "directory containing probe fixtures")
	f.StringSliceVar(&flagHarness, "harness", nil, "fixture interpreter invocation (default sh)")
	f.StringVar(&flagOut, "out", "Make.inc", "path of the generated configuration file")
	f.StringVar(&flagPrefix, "prefix", "", "installation prefix seeded as PREFIX")
	f.StringArrayVar(&flagSeed, "seed", nil, "extra seed variable as NAME=VALUE (repeatable)")
	f.StringVar(&flagWithBLAS, "with-blas", "", "linker spec of an externally supplied BLAS")
	f.BoolVar(&flagBuildBLAS, "build-blas", false, "build the reference BLAS from source")
	f.BoolVar(&flagBuildOpenBLAS, "build-openblas", false, "build OpenBLAS from source")
	f.StringVar(&flagWithLAPACK, "with-lapack", "", "linker spec of an externally supplied LAPACK")
	f.BoolVar(&flagBuildLAPACK, "build-lapack", false, "build the reference LAPACK from source")
	f.BoolVar(&flagQuiet, "quiet", false, "suppress per-step progress lines")
}

func runConfigure(cmd *cobra.Command) error {
	profile := &toolprobe.Profile{}
	if flagProfile != "" {
		loaded, err := toolprobe.LoadProfile(flagProfile)
		if err != nil {
			return err
		}
		profile = loaded
	}

	directives := mergeDirectives(cmd, profile)

	seed := toolprobe.DetectSeed(os.LookupEnv)
	for name, value := range profile.Seed {
		seed.Set(name, value)
	}
	if flagPrefix != "" {
		seed.Set("PREFIX", flagPrefix)
	}
	for _, kv := range flagSeed {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --seed %q, want NAME=VALUE", kv)
		}
		seed.Set(name, value)
	}

	steps, err := toolprobe.DefaultScript(directives)
	if err != nil {
		return err
	}

	harness := harnessFromConfig(profile)
	if err := harness.Check(); err != nil {
		return err
	}

	env := toolprobe.NewEnvironment()
	if err := seed.Apply(env); err != nil {
		return err
	}

	ctrl := toolprobe.NewController(harness, env, steps)
	if !flagQuiet {
		ctrl.SetProgress(cmd.OutOrStdout())
	}

	result, err := ctrl.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := flagOut
	if !cmd.Flags().Changed("out") && profile.Output != "" {
		out = profile.Output
	}
	if err := toolprobe.WriteConfigFile(out, result); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", out)
	}
	return nil
}

// mergeDirectives layers CLI directive flags over the profile's.
func mergeDirectives(cmd *cobra.Command, profile *toolprobe.Profile) toolprobe.Directives {
	d := profile.ToDirectives()
	flags := cmd.Flags()
	if flags.Changed("with-blas") {
		d.BLASLib = flagWithBLAS
	}
	if flags.Changed("build-blas") {
		d.BuildBLAS = flagBuildBLAS
	}
	if flags.Changed("build-openblas") {
		d.BuildOpenBLAS = flagBuildOpenBLAS
	}
	if flags.Changed("with-lapack") {
		d.LAPACKLib = flagWithLAPACK
	}
	if flags.Changed("build-lapack") {
		d.BuildLAPACK = flagBuildLAPACK
	}
	return d
}

func harnessFromConfig(profile *toolprobe.Profile) *toolprobe.ExecHarness {
	fixtures := flagFixtures
	if fixtures == "fixtures" && profile.Harness.Fixtures != "" {
		fixtures = profile.Harness.Fixtures
	}
	harness := toolprobe.NewExecHarness(fixtures)
	if len(flagHarness) > 0 {
		harness.Command = flagHarness
	} else if len(profile.Harness.Command) > 0 {
		harness.Command = profile.Harness.Command
	}
	return harness
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "toolprobe:", err)

		var conflict *toolprobe.ConflictError
		if errors.As(err, &conflict) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
