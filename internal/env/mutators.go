package env

// A Mutator derives a purpose-specific environment from a base one.
// Every mutator clones the base and stamps its own suffix, so two
// variants of the same build type never collide on object or target
// names in the delegate build.
type Mutator struct {
	Name   string
	suffix string
	apply  func(e *Environment, p Platform)
}

func (m Mutator) Suffix() string { return m.suffix }

// Apply returns a derived copy of base; base itself is never modified.
func (m Mutator) Apply(base *Environment, p Platform) *Environment {
	derived := base.Clone()
	derived.Suffix = m.suffix
	m.apply(derived, p)
	return derived
}

var (
	// WarnOnExceptions compiles exception-related diagnostics as
	// warnings instead of errors.
	WarnOnExceptions = Mutator{
		Name:   "warn-on-exceptions",
		suffix: "_ex_warn",
		apply: func(e *Environment, p Platform) {
			if p == Windows {
				e.RemoveCCFlag("-WX")
			} else {
				e.RemoveCCFlag("-Werror")
			}
		},
	}

	// AllowExceptions enables C++ exception support, which the base
	// environments disable.
	AllowExceptions = Mutator{
		Name:   "allow-exceptions",
		suffix: "_ex",
		apply: func(e *Environment, p Platform) {
			if p == Windows {
				e.RemoveDefine("_HAS_EXCEPTIONS=0")
				e.RemoveCCFlag("-EHs-c-")
				e.AppendCCFlags("-EHsc")
				e.AppendDefines("_HAS_EXCEPTIONS=1")
			} else {
				e.RemoveCCFlag("-fno-exceptions")
			}
		},
	}

	// LessOptimized strips the optimization flags from an optimized
	// environment; a no-op on debug environments.
	LessOptimized = Mutator{
		Name:   "less-optimized",
		suffix: "_less_optimized",
		apply: func(e *Environment, p Platform) {
			if p == Windows {
				e.RemoveCCFlag("-O2")
				e.RemoveCCFlag("-GL")
				e.RemoveLinkFlag("-LTCG")
				e.RemoveARFlag("-LTCG")
			} else {
				e.RemoveCCFlag("-O2")
			}
		},
	}

	// WithThreads enables threading support. MSVC needs nothing beyond
	// the runtime already selected by the base environments.
	WithThreads = Mutator{
		Name:   "with-threads",
		suffix: "_with_threads",
		apply: func(e *Environment, p Platform) {
			if p != Windows {
				e.AppendCCFlags("-pthread")
				e.AppendLinkFlags("-pthread")
			}
		},
	}

	// NoRTTI disables run-time type information.
	NoRTTI = Mutator{
		Name:   "no-rtti",
		suffix: "_no_rtti",
		apply: func(e *Environment, p Platform) {
			if p == Windows {
				e.AppendCCFlags("-GR-")
			} else {
				e.AppendCCFlags("-fno-rtti")
				e.AppendDefines("GTEST_HAS_RTTI=0")
			}
		},
	}

	// UseOwnTuple forces the framework's bundled tr1::tuple
	// implementation instead of the compiler's.
	UseOwnTuple = Mutator{
		Name:   "use-own-tuple",
		suffix: "_use_own_tuple",
		apply: func(e *Environment, p Platform) {
			e.AppendDefines("GTEST_USE_OWN_TR1_TUPLE=1")
		},
	}
)

// Mutators returns every named mutator.
func Mutators() []Mutator {
	return []Mutator{
		WarnOnExceptions,
		AllowExceptions,
		LessOptimized,
		WithThreads,
		NoRTTI,
		UseOwnTuple,
	}
}

// MutatorByName looks up a mutator by the name manifests use.
func MutatorByName(name string) (Mutator, bool) {
	for _, m := range Mutators() {
		if m.Name == name {
			return m, true
		}
	}
	return Mutator{}, false
}
