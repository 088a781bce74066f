package toolprobe

// Directives are the user's explicit requests about the numeric libraries.
//
// An explicit external library and a build-from-source request for the same
// library are mutually exclusive; so are the two build-from-source flavors.
// Conflicts are rejected before any probing begins rather than silently
// prioritizing one request over the other.
type Directives struct {
	// BLASLib is the linker specification for an externally supplied BLAS
	// (for example "-L/opt/lib -lopenblas"). Empty means probe for one.
	BLASLib string

	// BuildBLAS requests building the reference BLAS from source.
	BuildBLAS bool

	// BuildOpenBLAS requests building OpenBLAS from source.
	BuildOpenBLAS bool

	// LAPACKLib is the linker specification for an external LAPACK.
	LAPACKLib string

	// BuildLAPACK requests building the reference LAPACK from source.
	BuildLAPACK bool
}

// Validate rejects mutually exclusive directive combinations.
func (d Directives) Validate() error {
	if d.BuildBLAS && d.BuildOpenBLAS {
		return &ConflictError{Directives: []string{"build-blas", "build-openblas"}}
	}
	if d.BLASLib != "" && d.BuildBLAS {
		return &ConflictError{Directives: []string{"with-blas", "build-blas"}}
	}
	if d.BLASLib != "" && d.BuildOpenBLAS {
		return &ConflictError{Directives: []string{"with-blas", "build-openblas"}}
	}
	if d.LAPACKLib != "" && d.BuildLAPACK {
		return &ConflictError{Directives: []string{"with-lapack", "build-lapack"}}
	}
	// An external LAPACK cannot be verified against a BLAS that does not
	// exist until build time.
	if d.LAPACKLib != "" && (d.BuildBLAS || d.BuildOpenBLAS) {
		return &ConflictError{Directives: []string{"with-lapack", "build-blas/build-openblas"}}
	}
	return nil
}

// buildsBLAS reports whether BLAS comes from a source build rather than an
// external or probed library.
func (d Directives) buildsBLAS() bool {
	return d.BuildBLAS || d.BuildOpenBLAS
}

// DefaultScript assembles the fixed, hand-ordered sequence of resolutions
// and gates for one configuration pass.
//
// The order is load-bearing. Compiler discovery comes first because nearly
// every later probe compiles something with $CC; flag selection follows
// because link probes combine $CFLAGS_BITS with their own flags; the
// Fortran block precedes the numeric libraries because BLAS and LAPACK link
// probes need $FLIBS; the auxiliary utilities come last because nothing
// else reads them. Each step declares its read-set so a reordering is
// caught by ValidateStepOrder instead of by a confusing probe failure.
//
// Directive conflicts are detected here, before any probing.
func DefaultScript(d Directives) ([]Step, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	steps := []Step{
		// C compiler discovery and capability.
		{
			Name:       "CC",
			Kind:       StepSelect,
			Candidates: []string{"gcc", "clang", "cc", "icc"},
			Probe:      "cc_version",
			Hint:       "no working C compiler found; install gcc or clang, or set CC",
		},
		{
			Name:  "CC_WORKS",
			Kind:  StepGate,
			Reads: []string{"CC"},
			Probe: "cc_compile",
			Hint:  "the selected C compiler cannot compile a minimal program",
		},
		{
			Name:       "CFLAGS_BITS",
			Kind:       StepSelect,
			When:       `TARGET_BITS == "64"`,
			Reads:      []string{"CC", "TARGET_BITS"},
			Candidates: []string{"-m64", ""},
			Probe:      "cc_bitwidth",
			Hint:       "cannot build 64-bit objects with the selected compiler",
		},
		{
			Name:       "CFLAGS_BITS",
			Kind:       StepSelect,
			When:       `TARGET_BITS != "64"`,
			Reads:      []string{"CC", "TARGET_BITS"},
			Candidates: []string{"-m32", ""},
			Probe:      "cc_bitwidth",
			Hint:       "cannot build 32-bit objects with the selected compiler",
		},
		{
			Name:       "CFLAGS_OPT",
			Kind:       StepSelect,
			Reads:      []string{"CC", "CFLAGS_BITS"},
			Candidates: []string{"-O2 -fno-strict-aliasing", "-O2", "-O", ""},
			Probe:      "cc_optimize",
			Hint:       "no usable optimization flags; the compiler rejected even plain compilation",
		},
		{
			Name:       "CFLAGS_FLOAT",
			Kind:       StepSelect,
			Reads:      []string{"CC", "CFLAGS_BITS"},
			Candidates: []string{"-ffloat-store", ""},
			Probe:      "cc_float",
			Hint:       "cannot select floating point conservation flags",
		},
		{
			Name:       "CFLAGS_THREADS",
			Kind:       StepSelect,
			Reads:      []string{"CC"},
			Candidates: []string{"-pthread", "-lpthread", ""},
			Probe:      "cc_threads",
			Hint:       "cannot link a threaded test program",
		},
		{
			Name:  "STACK_LOCAL",
			Kind:  StepGate,
			Reads: []string{"CC", "CFLAGS_OPT"},
			Probe: "cc_stack_local",
			Hint:  "the compiler rejects stack-local variable-length arrays; upgrade the compiler",
		},

		// Binutils.
		{
			Name:       "AR",
			Kind:       StepSelect,
			Candidates: []string{"ar"},
			Probe:      "ar_archive",
			Hint:       "the ar archiver is required to build static libraries",
		},
		{
			Name:       "RANLIB",
			Kind:       StepSelect,
			Reads:      []string{"AR"},
			Candidates: []string{"ranlib", "true"},
			Probe:      "ranlib_index",
			Hint:       "neither ranlib nor a no-op substitute works on this system",
		},
		{
			Name:       "LD",
			Kind:       StepSelect,
			Reads:      []string{"CC"},
			Candidates: []string{"ld", "ld.lld", "ld.gold"},
			Probe:      "ld_link",
			Hint:       "no working linker found",
		},

		// Link modes.
		{
			Name:       "SHARED_FLAGS",
			Kind:       StepSelect,
			Reads:      []string{"CC", "CFLAGS_BITS"},
			Candidates: []string{"-shared -fPIC", "-shared", "-dynamiclib"},
			Probe:      "cc_shared",
			Hint:       "the compiler cannot produce a shared library",
		},
		{
			Name:       "STATIC_FLAGS",
			Kind:       StepSelect,
			Reads:      []string{"CC"},
			Candidates: []string{"-static-libgcc", ""},
			Probe:      "cc_static",
			Hint:       "cannot select static link flags",
		},
		{
			Name:       "EXE_SUFFIX",
			Kind:       StepSet,
			When:       `MINGW == "yes"`,
			Reads:      []string{"MINGW"},
			Candidates: []string{".exe"},
		},
		{
			Name:       "EXE_SUFFIX",
			Kind:       StepSet,
			When:       `MINGW != "yes"`,
			Reads:      []string{"MINGW"},
			Candidates: []string{""},
		},
		{
			Name:       "DEPEND_FLAG",
			Kind:       StepSelect,
			Reads:      []string{"CC"},
			Candidates: []string{"-MM", "-M"},
			Probe:      "cc_makedepend",
			Hint:       "the compiler cannot emit Makefile dependency lists",
		},

		// Fortran.
		{
			Name:       "FC",
			Kind:       StepSelect,
			Candidates: []string{"gfortran", "flang", "g77", "f77"},
			Probe:      "fc_version",
			Hint:       "no working Fortran compiler found; install gfortran or set FC",
		},
		{
			Name:  "FC_WORKS",
			Kind:  StepGate,
			Reads: []string{"FC"},
			Probe: "fc_compile",
			Hint:  "the selected Fortran compiler cannot compile a minimal program",
		},
		{
			Name:       "FLIBS",
			Kind:       StepSelect,
			Reads:      []string{"CC", "FC"},
			Candidates: []string{"-lgfortran", "-lg2c", ""},
			Probe:      "fc_interop",
			Hint:       "cannot link Fortran objects from C; check the Fortran runtime libraries",
		},
		{
			Name:       "F_MANGLING",
			Kind:       StepSelect,
			Reads:      []string{"CC", "FC", "FLIBS"},
			Candidates: []string{"-DADD_", "-DNOCHANGE", "-DUPCASE"},
			Probe:      "fc_mangling",
			Hint:       "cannot determine the Fortran symbol naming convention",
		},
	}

	steps = append(steps, blasSteps(d)...)
	steps = append(steps, lapackSteps(d)...)

	steps = append(steps,
		// Auxiliary utilities for fetching and patching library sources.
		Step{
			Name:       "PATCH_TOOL",
			Kind:       StepSelect,
			Candidates: []string{"patch", "gpatch"},
			Probe:      "patch_apply",
			Hint:       "the patch utility is required to apply source fixes",
		},
		Step{
			Name:       "FETCH_TOOL",
			Kind:       StepSelect,
			Candidates: []string{"curl", "wget", "fetch"},
			Probe:      "fetch_file",
			Hint:       "a download tool (curl or wget) is required to fetch library sources",
		},
		Step{
			Name:       "CHECKSUM_TOOL",
			Kind:       StepSelect,
			Candidates: []string{"sha256sum", "shasum", "openssl"},
			Probe:      "checksum_file",
			Hint:       "a checksum tool is required to verify downloaded sources",
		},
	)

	return steps, nil
}

func blasSteps(d Directives) []Step {
	switch {
	case d.BLASLib != "":
		return []Step{
			{
				Name:       "BLAS_LIBS",
				Kind:       StepSelect,
				Reads:      []string{"CC", "FLIBS"},
				Candidates: []string{d.BLASLib},
				Probe:      "blas_link",
				Hint:       "the supplied BLAS does not link; check the library path and flags",
			},
			{Name: "BLAS_BUILD", Kind: StepSet, Candidates: []string{"no"}},
		}
	case d.BuildOpenBLAS:
		return []Step{
			{Name: "BLAS_BUILD", Kind: StepSet, Candidates: []string{"openblas"}},
		}
	case d.BuildBLAS:
		return []Step{
			{Name: "BLAS_BUILD", Kind: StepSet, Candidates: []string{"reference"}},
		}
	default:
		// Probe the usual suspects; the empty candidate records "nothing
		// found" and switches BLAS to a source build.
		return []Step{
			{
				Name:       "BLAS_LIBS",
				Kind:       StepSelect,
				Reads:      []string{"CC", "FLIBS"},
				Candidates: []string{"-lopenblas", "-lblas", ""},
				Probe:      "blas_link",
				Hint:       "cannot even record the absence of a system BLAS",
			},
			{
				Name:       "BLAS_BUILD",
				Kind:       StepSet,
				When:       `BLAS_LIBS == ""`,
				Reads:      []string{"BLAS_LIBS"},
				Candidates: []string{"reference"},
			},
			{
				Name:       "BLAS_BUILD",
				Kind:       StepSet,
				When:       `BLAS_LIBS != ""`,
				Reads:      []string{"BLAS_LIBS"},
				Candidates: []string{"no"},
			},
		}
	}
}

func lapackSteps(d Directives) []Step {
	if d.buildsBLAS() {
		// A source-built BLAS always brings its own LAPACK; probing an
		// external one against a library that does not exist yet would be
		// meaningless.
		return []Step{
			{Name: "LAPACK_BUILD", Kind: StepSet, Candidates: []string{"reference"}},
		}
	}
	if d.BuildLAPACK {
		return []Step{
			{Name: "LAPACK_BUILD", Kind: StepSet, Candidates: []string{"reference"}},
		}
	}
	if d.LAPACKLib != "" {
		return []Step{
			{
				Name:       "LAPACK_LIBS",
				Kind:       StepSelect,
				Reads:      []string{"CC", "FLIBS", "BLAS_LIBS"},
				Candidates: []string{d.LAPACKLib},
				Probe:      "lapack_link",
				Hint:       "the supplied LAPACK does not link; check the library path and flags",
			},
			{Name: "LAPACK_BUILD", Kind: StepSet, Candidates: []string{"no"}},
		}
	}
	return []Step{
		{
			Name:       "LAPACK_LIBS",
			Kind:       StepSelect,
			Reads:      []string{"CC", "FLIBS", "BLAS_LIBS"},
			Candidates: []string{"-llapack", ""},
			Probe:      "lapack_link",
			Hint:       "cannot even record the absence of a system LAPACK",
		},
		{
			Name:       "LAPACK_BUILD",
			Kind:       StepSet,
			When:       `LAPACK_LIBS == ""`,
			Reads:      []string{"LAPACK_LIBS"},
			Candidates: []string{"reference"},
		},
		{
			Name:       "LAPACK_BUILD",
			Kind:       StepSet,
			When:       `LAPACK_LIBS != ""`,
			Reads:      []string{"LAPACK_LIBS"},
			Candidates: []string{"no"},
		},
	}
}
