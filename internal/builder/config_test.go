package builder

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestConfig(t *testing.T, manifest string) *Config {
	t.Helper()
	cfg, err := ParseConfig(strings.NewReader(manifest), NewConfigEnv(t.TempDir()))
	require.NoError(t, err)
	return cfg
}

func TestParseConfigSections(t *testing.T) {
	cfg := parseTestConfig(t, `[package]
name = "greet"
description = "a tiny library"
authors = ["someone"]

[target]
lib = true
sources = ["src/**.cc"]
headers = ["include/**.h"]
links = ["m"]
variants = ["no-rtti"]

[samples]
sources = ["samples/**.cc"]

[dependencies]
tuple = "gh:someone/tuple"
`)

	assert.Equal(t, "greet", cfg.Package.Name)
	assert.True(t, cfg.Target.Lib)
	assert.Equal(t, []string{"src/**.cc"}, cfg.Target.Sources)
	assert.Equal(t, []string{"include/**.h"}, cfg.Target.Headers)
	assert.Equal(t, []string{"no-rtti"}, cfg.Target.Variants)
	assert.Equal(t, []string{"samples/**.cc"}, cfg.Samples.Sources)
	assert.Equal(t, map[string]string{"tuple": "gh:someone/tuple"}, cfg.Dependencies)
}

func TestParseConfigConditionalSection(t *testing.T) {
	manifest := fmt.Sprintf(`[package]
name = "greet"

[target]
sources = ["src/**.cc"]
cflags = ["-fvisibility=hidden"]

[target.'target_os == %q']
cflags = ["-DMATCHED"]

[target.'target_os == "plan9.from.outer.space"']
cflags = ["-DNOT_MATCHED"]
`, runtime.GOOS)

	cfg := parseTestConfig(t, manifest)

	// matched conditionals append, unmatched ones vanish
	assert.Contains(t, cfg.Target.Cflags, "-fvisibility=hidden")
	assert.Contains(t, cfg.Target.Cflags, "-DMATCHED")
	assert.NotContains(t, cfg.Target.Cflags, "-DNOT_MATCHED")
}

func TestParseConfigExpressionExpansion(t *testing.T) {
	cfg := parseTestConfig(t, `[package]
name = "greet"
description = "built for {{ target_os }}/{{ target_arch }}"
`)

	assert.Equal(t, fmt.Sprintf("built for %s/%s", runtime.GOOS, runtime.GOARCH), cfg.Package.Description)
}

func TestParseConfigBadExpression(t *testing.T) {
	_, err := ParseConfig(strings.NewReader(`[package]
name = "greet"
description = "{{ nonsense( }}"
`), NewConfigEnv(t.TempDir()))
	assert.Error(t, err)
}

func TestRunBuildScript(t *testing.T) {
	env := NewConfigEnv(t.TempDir())

	ok := parseTestConfig(t, `[package]
name = "greet"
build = "target_os != ''"
`)
	assert.NoError(t, ok.RunBuildScript(env))

	failing := parseTestConfig(t, `[package]
name = "greet"
build = "target_os == 'plan9.from.outer.space'"
`)
	assert.Error(t, failing.RunBuildScript(env))
}

func TestOverlay(t *testing.T) {
	dst := TargetSection{
		Sources: []string{"a.cc"},
		Defines: map[string]string{"A": "1"},
	}
	src := TargetSection{
		Lib:     true,
		Sources: []string{"b.cc"},
		Defines: map[string]string{"B": "2"},
	}

	overlay(&dst, src)
	assert.True(t, dst.Lib)
	assert.Equal(t, []string{"a.cc", "b.cc"}, dst.Sources)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, dst.Defines)
}

func TestParseConfigConditionalDependencies(t *testing.T) {
	manifest := fmt.Sprintf(`[package]
name = "greet"

[dependencies]
tuple = "gh:someone/tuple"

[dependencies.'target_os == %q']
threads = "gh:someone/threads"
`, runtime.GOOS)

	cfg := parseTestConfig(t, manifest)
	assert.Equal(t, map[string]string{
		"tuple":   "gh:someone/tuple",
		"threads": "gh:someone/threads",
	}, cfg.Dependencies)
}
