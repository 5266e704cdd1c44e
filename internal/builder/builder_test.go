package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benv-build/benv/internal/builder/gen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	name    string
	isLib   bool
	sources []string
	deps    []string
	cflags  []string
	ldflags []string
}

// fakeRunner records what the builder asks the delegate to do
type fakeRunner struct {
	targets    []fakeTarget
	dispatches []gen.Dispatch
}

func (f *fakeRunner) SetToolchain(cc, cxx string) {}

func (f *fakeRunner) AddTarget(name, basedir string, sources, dependencies []string, isLib bool, cflags, ldflags, arflags []string) {
	f.targets = append(f.targets, fakeTarget{
		name:    name,
		isLib:   isLib,
		sources: sources,
		deps:    dependencies,
		cflags:  cflags,
		ldflags: ldflags,
	})
}

func (f *fakeRunner) Generate() string  { return "" }
func (f *fakeRunner) BuildFile() string { return "fake_build_state.json" }

func (f *fakeRunner) Invoke(d gen.Dispatch) error {
	f.dispatches = append(f.dispatches, d)
	return nil
}

// scaffold writes a minimal project: sources at the root, manifest one
// level below in benv/
func scaffold(t *testing.T, manifest string) (root, benvDir string) {
	t.Helper()
	root = t.TempDir()
	benvDir = filepath.Join(root, "benv")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.MkdirAll(benvDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.c"), []byte("int main(void) { return 0; }\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(benvDir, ManifestFilename), []byte(manifest), 0644))
	return root, benvDir
}

const basicManifest = `[package]
name = "hello"

[target]
sources = ["src/**.c"]
`

func newTestBuilder(t *testing.T, benvDir string) (*Builder, *fakeRunner) {
	t.Helper()
	b, err := NewBuilderInDirectory(benvDir)
	require.NoError(t, err)

	fake := &fakeRunner{}
	b.newRunner = func(generator string, jobs int) gen.Runner { return fake }
	return b, fake
}

func TestBuildSingleTypeDispatchesOnce(t *testing.T) {
	root, benvDir := scaffold(t, basicManifest)
	b, fake := newTestBuilder(t, benvDir)

	err := b.Build(Options{BuildTypes: []string{"dbg"}, Generator: GeneratorNative})
	require.NoError(t, err)

	require.Len(t, fake.dispatches, 1)
	d := fake.dispatches[0]
	assert.Equal(t, filepath.Join(benvDir, "build", "dbg"), d.VariantDir)
	assert.Equal(t, root, d.SourceDir)
	assert.False(t, d.DuplicateSources)
	assert.Empty(t, d.Toolset)

	// the variant dir exists after the build
	stat, err := os.Stat(d.VariantDir)
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestBuildMultipleTypesDispatchesEach(t *testing.T) {
	_, benvDir := scaffold(t, basicManifest)
	b, fake := newTestBuilder(t, benvDir)

	err := b.Build(Options{BuildTypes: []string{"dbg", "opt"}, Generator: GeneratorNative})
	require.NoError(t, err)

	require.Len(t, fake.dispatches, 2)
	assert.Equal(t, filepath.Join(benvDir, "build", "dbg"), fake.dispatches[0].VariantDir)
	assert.Equal(t, filepath.Join(benvDir, "build", "opt"), fake.dispatches[1].VariantDir)
	assert.NotEqual(t, fake.dispatches[0].VariantDir, fake.dispatches[1].VariantDir)
}

func TestBuildUnknownTypeFails(t *testing.T) {
	_, benvDir := scaffold(t, basicManifest)
	b, fake := newTestBuilder(t, benvDir)

	err := b.Build(Options{BuildTypes: []string{"turbo"}, Generator: GeneratorNative})
	assert.Error(t, err)
	assert.Empty(t, fake.dispatches)
}

func TestBuildMainTarget(t *testing.T) {
	root, benvDir := scaffold(t, basicManifest)
	b, fake := newTestBuilder(t, benvDir)

	require.NoError(t, b.Build(Options{BuildTypes: []string{"dbg"}, Generator: GeneratorNative}))

	require.Len(t, fake.targets, 1)
	target := fake.targets[0]
	assert.Equal(t, artifactName("hello", false), target.name)
	assert.False(t, target.isLib)
	assert.Equal(t, []string{filepath.Join(root, "src", "main.c")}, target.sources)
	assert.Contains(t, target.cflags, "-g")
	assert.Contains(t, target.cflags, "-DDEBUG")
}

func TestBuildManifestExtras(t *testing.T) {
	_, benvDir := scaffold(t, `[package]
name = "hello"

[target]
sources = ["src/**.c"]
cflags = ["-fPIC"]
links = ["m"]

[target.defines]
HELLO_STATIC = ""
HELLO_VERSION = "3"
`)
	b, fake := newTestBuilder(t, benvDir)

	require.NoError(t, b.Build(Options{BuildTypes: []string{"opt"}, Generator: GeneratorNative}))

	require.Len(t, fake.targets, 1)
	target := fake.targets[0]
	assert.Contains(t, target.cflags, "-fPIC")
	assert.Contains(t, target.cflags, "-DHELLO_STATIC")
	assert.Contains(t, target.cflags, "-DHELLO_VERSION=3")
	assert.Contains(t, target.cflags, "-DNDEBUG")
	assert.Contains(t, target.ldflags, "-lm")
}

func TestBuildSamples(t *testing.T) {
	root, benvDir := scaffold(t, `[package]
name = "greet"

[target]
lib = true
sources = ["src/**.c"]

[samples]
sources = ["samples/**.c"]
`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "samples"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "samples", "sample1.c"), []byte("int main(void) { return 0; }\n"), 0644))

	b, fake := newTestBuilder(t, benvDir)
	require.NoError(t, b.Build(Options{BuildTypes: []string{"dbg"}, Samples: true, Generator: GeneratorNative}))

	require.Len(t, fake.targets, 2)
	lib := fake.targets[0]
	sample := fake.targets[1]

	assert.Equal(t, artifactName("greet", true), lib.name)
	assert.True(t, lib.isLib)

	assert.Equal(t, artifactName("sample1", false), sample.name)
	assert.False(t, sample.isLib)
	assert.Equal(t, []string{lib.name}, sample.deps)
}

func TestBuildSamplesDisabledByDefault(t *testing.T) {
	root, benvDir := scaffold(t, `[package]
name = "greet"

[target]
lib = true
sources = ["src/**.c"]

[samples]
sources = ["samples/**.c"]
`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "samples"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "samples", "sample1.c"), []byte("int main(void) { return 0; }\n"), 0644))

	b, fake := newTestBuilder(t, benvDir)
	require.NoError(t, b.Build(Options{BuildTypes: []string{"dbg"}, Generator: GeneratorNative}))

	require.Len(t, fake.targets, 1)
}

func TestBuildVariants(t *testing.T) {
	_, benvDir := scaffold(t, `[package]
name = "greet"

[target]
lib = true
sources = ["src/**.c"]
variants = ["use-own-tuple"]
`)
	b, fake := newTestBuilder(t, benvDir)
	require.NoError(t, b.Build(Options{BuildTypes: []string{"dbg"}, Generator: GeneratorNative}))

	require.Len(t, fake.targets, 2)
	base := fake.targets[0]
	variant := fake.targets[1]

	assert.Equal(t, artifactName("greet", true), base.name)
	assert.Equal(t, artifactName("greet_use_own_tuple", true), variant.name)
	assert.NotContains(t, base.cflags, "-DGTEST_USE_OWN_TR1_TUPLE=1")
	assert.Contains(t, variant.cflags, "-DGTEST_USE_OWN_TR1_TUPLE=1")
}

func TestBuildUnknownVariantFails(t *testing.T) {
	_, benvDir := scaffold(t, `[package]
name = "greet"

[target]
lib = true
sources = ["src/**.c"]
variants = ["mystery"]
`)
	b, _ := newTestBuilder(t, benvDir)
	err := b.Build(Options{BuildTypes: []string{"dbg"}, Generator: GeneratorNative})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}
