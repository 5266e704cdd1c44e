package env

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestMutatorsNeverTouchBase(t *testing.T) {
	for _, p := range []Platform{Windows, Mac, POSIX} {
		for _, name := range BuildTypes(p, true) {
			base := mustEnv(t, name)
			snapshot := base.Clone()

			for _, m := range Mutators() {
				derived := m.Apply(base, p)
				assert.NotSame(t, base, derived)
				if diff := cmp.Diff(snapshot, base); diff != "" {
					t.Errorf("mutator %s modified its base %s environment:\n%s", m.Name, name, diff)
				}
			}
		}
	}
}

func TestMutatorSuffixesUnique(t *testing.T) {
	seen := make(map[string]string)
	for _, m := range Mutators() {
		assert.NotEmpty(t, m.Suffix(), "mutator %s has no suffix", m.Name)
		if prev, dup := seen[m.Suffix()]; dup {
			t.Errorf("mutators %s and %s share suffix %q", prev, m.Name, m.Suffix())
		}
		seen[m.Suffix()] = m.Name
	}
}

func TestWarnOnExceptions(t *testing.T) {
	win := WarnOnExceptions.Apply(mustEnv(t, "win-dbg"), Windows)
	assert.NotContains(t, win.CCFlags, "-WX")

	posix := WarnOnExceptions.Apply(mustEnv(t, "dbg"), POSIX)
	assert.NotContains(t, posix.CCFlags, "-Werror")
	assert.Contains(t, posix.CCFlags, "-Wall")
}

func TestAllowExceptions(t *testing.T) {
	win := AllowExceptions.Apply(mustEnv(t, "win-dbg"), Windows)
	assert.NotContains(t, win.Defines, "_HAS_EXCEPTIONS=0")
	assert.NotContains(t, win.CCFlags, "-EHs-c-")
	assert.Contains(t, win.CCFlags, "-EHsc")
	assert.Contains(t, win.Defines, "_HAS_EXCEPTIONS=1")

	posix := AllowExceptions.Apply(mustEnv(t, "dbg"), POSIX)
	assert.NotContains(t, posix.CCFlags, "-fno-exceptions")
}

func TestLessOptimized(t *testing.T) {
	win := LessOptimized.Apply(mustEnv(t, "win-opt"), Windows)
	assert.NotContains(t, win.CCFlags, "-O2")
	assert.NotContains(t, win.CCFlags, "-GL")
	assert.NotContains(t, win.LinkFlags, "-LTCG")
	assert.NotContains(t, win.ARFlags, "-LTCG")

	posix := LessOptimized.Apply(mustEnv(t, "opt"), POSIX)
	assert.NotContains(t, posix.CCFlags, "-O2")
	assert.Contains(t, posix.Defines, "NDEBUG")
}

func TestWithThreads(t *testing.T) {
	posix := WithThreads.Apply(mustEnv(t, "dbg"), POSIX)
	assert.Contains(t, posix.CCFlags, "-pthread")
	assert.Contains(t, posix.LinkFlags, "-pthread")

	// MSVC runtime is already thread-capable
	win := WithThreads.Apply(mustEnv(t, "win-dbg"), Windows)
	assert.NotContains(t, win.CCFlags, "-pthread")
}

func TestNoRTTI(t *testing.T) {
	win := NoRTTI.Apply(mustEnv(t, "win-dbg"), Windows)
	assert.Contains(t, win.CCFlags, "-GR-")

	posix := NoRTTI.Apply(mustEnv(t, "dbg"), POSIX)
	assert.Contains(t, posix.CCFlags, "-fno-rtti")
	assert.Contains(t, posix.Defines, "GTEST_HAS_RTTI=0")
}

func TestUseOwnTuple(t *testing.T) {
	for _, p := range []Platform{Windows, Mac, POSIX} {
		derived := UseOwnTuple.Apply(mustEnv(t, DebugType(p)), p)
		assert.Contains(t, derived.Defines, "GTEST_USE_OWN_TR1_TUPLE=1")
	}
}
