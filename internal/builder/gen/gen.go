package gen

// Dispatch carries the delegate build contract for one build type: where
// the sources live, where the outputs go, and whether sources are
// duplicated into the output tree (they never are).
type Dispatch struct {
	// SourceDir is the root of the source tree, one level above the
	// directory holding the manifest.
	SourceDir string
	// VariantDir is the per-build output directory, build/<build type>.
	VariantDir string
	// DuplicateSources is kept explicit in the contract; benv always
	// builds in place and leaves it false.
	DuplicateSources bool
	// Toolset is the compiler toolset version requested by the build
	// type, empty for the default.
	Toolset string
}

// Runner executes (or generates files for) the delegated build step.
type Runner interface {
	SetToolchain(cc, cxx string)
	AddTarget(name, basedir string, sources, dependencies []string, isLib bool, cflags, ldflags, arflags []string)
	Generate() string
	BuildFile() string
	Invoke(d Dispatch) error
}
