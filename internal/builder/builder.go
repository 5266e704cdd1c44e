package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"

	"github.com/benv-build/benv/internal/builder/gen"
	"github.com/benv-build/benv/internal/env"
	"github.com/benv-build/benv/internal/msg"
	"github.com/bmatcuk/doublestar/v4"
)

const (
	// ManifestFilename is the name of the per-package manifest.
	ManifestFilename = "Benv.toml"
	// BuildDirPrefix is the fixed prefix of all per-build output
	// directories; build type X goes to <prefix>/X.
	BuildDirPrefix = "build"
)

const (
	GeneratorNative = "native"
	GeneratorNinja  = "ninja"
)

// Options are the user-facing build options.
type Options struct {
	// BuildTypes is the multi-select BUILD option; every entry gets its
	// own delegate invocation and output directory.
	BuildTypes []string
	// Samples additionally builds one executable per sample source.
	Samples   bool
	Generator string
	Jobs      int
}

type runnerFactory func(generator string, jobs int) gen.Runner

func createRunner(generator string, jobs int) gen.Runner {
	switch generator {
	case GeneratorNinja:
		return &gen.NinjaRunner{}
	case GeneratorNative:
		return gen.NewNativeRunner(jobs)
	default:
		panic("createRunner: unreachable")
	}
}

// depPackage is a fetched dependency and its parsed manifest
type depPackage struct {
	name string
	path string
	cfg  *Config
}

type Builder struct {
	cfg     *Config
	basedir string // directory holding the manifest
	srcdir  string // source root, one level above basedir
	env     ConfigEnv

	newRunner runnerFactory
}

func NewBuilderInDirectory(path string) (*Builder, error) {
	var err error
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	cfgEnv := NewConfigEnv(path)
	cfg, err := ParseConfigFromFile(filepath.Join(path, ManifestFilename), cfgEnv)
	if err != nil {
		return nil, err
	}

	return &Builder{
		cfg:       cfg,
		basedir:   path,
		srcdir:    filepath.Dir(path),
		env:       cfgEnv,
		newRunner: createRunner,
	}, nil
}

// artifactName returns the platform artifact name for a target
func artifactName(name string, isLib bool) string {
	if isLib {
		if runtime.GOOS == "windows" {
			return name + ".lib"
		}
		return "lib" + name + ".a"
	}
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// collectFiles expands doublestar patterns relative to root. With
// dirsOnly, matched files are collapsed to their parent directories
// (used for header include paths).
func collectFiles(root string, patterns []string, dirsOnly bool) ([]string, error) {
	var files []string
	var dirset map[string]struct{}
	if dirsOnly {
		dirset = map[string]struct{}{}
	}
	fsys := os.DirFS(root)

	var globparams []doublestar.GlobOption
	if !dirsOnly {
		globparams = append(globparams, doublestar.WithFilesOnly())
	}

	for _, pat := range patterns {
		if filepath.IsAbs(pat) {
			files = append(files, filepath.Clean(pat))
			continue
		}
		matches, err := doublestar.Glob(fsys, pat, globparams...)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			absPath, err := filepath.Abs(filepath.Join(root, match))
			if err != nil {
				return nil, fmt.Errorf("while globbing directory %s: %w", match, err)
			}
			if dirsOnly {
				if stat, err := os.Stat(absPath); err == nil && !stat.IsDir() {
					dirset[filepath.Dir(filepath.Clean(absPath))] = struct{}{}
				} else {
					dirset[absPath] = struct{}{}
				}
			} else {
				files = append(files, filepath.Clean(absPath))
			}
		}
	}

	if dirsOnly {
		for dir := range dirset {
			files = append(files, dir)
		}
		sort.Strings(files)
	}

	return files, nil
}

// fetchDeps materializes every [dependencies] entry into build/_deps and
// parses its manifest
func (b *Builder) fetchDeps(depsDir string) ([]*depPackage, error) {
	names := make([]string, 0, len(b.cfg.Dependencies))
	for name := range b.cfg.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var deps []*depPackage
	for _, name := range names {
		depPath := filepath.Join(depsDir, name)

		stat, err := os.Stat(depPath)
		if os.IsNotExist(err) || (err == nil && !stat.IsDir()) {
			if err := os.MkdirAll(depPath, 0755); err != nil && !os.IsExist(err) {
				return nil, err
			}
			if err := fetchDependency(b.cfg.Dependencies[name], depPath); err != nil {
				return nil, fmt.Errorf("failed to fetch dependency %q: %w", name, err)
			}
		}

		depEnv := NewConfigEnv(depPath)
		depCfg, err := ParseConfigFromFile(filepath.Join(depPath, ManifestFilename), depEnv)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config for dependency %q: %w", name, err)
		}
		if depCfg.Package.Name != name {
			msg.Warn("dependency %q has a mismatched package name: %q", name, depCfg.Package.Name)
		}
		if !depCfg.Target.Lib {
			return nil, fmt.Errorf("package %q depends on %q, which is not a library (target.lib = false)", b.cfg.Package.Name, name)
		}

		deps = append(deps, &depPackage{name: name, path: depPath, cfg: depCfg})
	}
	return deps, nil
}

// flatten renders an environment (plus manifest extras) into the flag
// lists the delegate runner understands
func flatten(e *env.Environment, includeDirs []string, links []string) (cflags, ldflags, arflags []string) {
	cflags = slices.Clone(e.CCFlags)
	cflags = append(cflags, e.CXXFlags...)
	for _, d := range e.Defines {
		cflags = append(cflags, "-D"+d)
	}
	for _, dir := range includeDirs {
		cflags = append(cflags, "-I"+dir)
	}

	ldflags = slices.Clone(e.LinkFlags)
	for _, lib := range links {
		ldflags = append(ldflags, "-l"+lib)
	}

	arflags = slices.Clone(e.ARFlags)
	return cflags, ldflags, arflags
}

// Build runs one delegate build per selected build type, each into its
// own output directory under BuildDirPrefix.
func (b *Builder) Build(opts Options) error {
	buildDir := filepath.Join(b.basedir, BuildDirPrefix)
	depsDir := filepath.Join(buildDir, "_deps")
	if err := os.MkdirAll(depsDir, 0755); err != nil {
		return err
	}

	deps, err := b.fetchDeps(depsDir)
	if err != nil {
		return err
	}

	if err := b.cfg.RunBuildScript(b.env); err != nil {
		return err
	}

	for _, buildType := range opts.BuildTypes {
		e, err := env.ForBuildType(buildType)
		if err != nil {
			return err
		}

		variantDir := filepath.Join(buildDir, buildType)
		if err := b.dispatch(e, variantDir, deps, opts); err != nil {
			return fmt.Errorf("build type %s: %w", buildType, err)
		}
	}

	return nil
}

// dispatch performs a single delegate invocation for one build type
func (b *Builder) dispatch(e *env.Environment, variantDir string, deps []*depPackage, opts Options) error {
	r := b.newRunner(opts.Generator, opts.Jobs)
	tc := selectToolchain(e.Toolset)
	r.SetToolchain(tc.cc, tc.cxx)

	// manifest extras on top of the platform tables
	e.AppendCCFlags(b.cfg.Target.Cflags...)
	defineNames := make([]string, 0, len(b.cfg.Target.Defines))
	for name := range b.cfg.Target.Defines {
		defineNames = append(defineNames, name)
	}
	sort.Strings(defineNames)
	for _, name := range defineNames {
		if v := b.cfg.Target.Defines[name]; v != "" {
			e.AppendDefines(name + "=" + v)
		} else {
			e.AppendDefines(name)
		}
	}

	sources, err := collectFiles(b.srcdir, b.cfg.Target.Sources, false)
	if err != nil {
		return fmt.Errorf("failed to collect sources for %s: %w", b.cfg.Package.Name, err)
	}
	includeDirs, err := collectFiles(b.srcdir, b.cfg.Target.Headers, true)
	if err != nil {
		return fmt.Errorf("failed to collect headers for %s: %w", b.cfg.Package.Name, err)
	}

	// dependency libraries build with the same environment
	var depOutputs []string
	for _, dep := range deps {
		depSources, err := collectFiles(dep.path, dep.cfg.Target.Sources, false)
		if err != nil {
			return fmt.Errorf("failed to collect sources for dependency %q: %w", dep.name, err)
		}
		depIncludes, err := collectFiles(dep.path, dep.cfg.Target.Headers, true)
		if err != nil {
			return fmt.Errorf("failed to collect headers for dependency %q: %w", dep.name, err)
		}
		includeDirs = append(includeDirs, depIncludes...)

		depEnv := e.Clone()
		depEnv.AppendCCFlags(dep.cfg.Target.Cflags...)
		depCflags, depLdflags, depArflags := flatten(depEnv, depIncludes, dep.cfg.Target.Links)

		out := artifactName(dep.name, true)
		depOutputs = append(depOutputs, out)
		r.AddTarget(out, dep.path, depSources, nil, true, depCflags, depLdflags, depArflags)
	}

	cflags, ldflags, arflags := flatten(e, includeDirs, b.cfg.Target.Links)

	mainOut := artifactName(b.cfg.Package.Name, b.cfg.Target.Lib)
	r.AddTarget(mainOut, b.srcdir, sources, depOutputs, b.cfg.Target.Lib, cflags, ldflags, arflags)

	// extra library variants derived through named mutators
	for _, variant := range b.cfg.Target.Variants {
		m, ok := env.MutatorByName(variant)
		if !ok {
			return fmt.Errorf("unknown environment variant %q", variant)
		}
		ve := m.Apply(e, env.Current())
		vcflags, vldflags, varflags := flatten(ve, includeDirs, b.cfg.Target.Links)
		r.AddTarget(artifactName(b.cfg.Package.Name+ve.Suffix, b.cfg.Target.Lib), b.srcdir,
			sources, depOutputs, b.cfg.Target.Lib, vcflags, vldflags, varflags)
	}

	if opts.Samples {
		if err := b.addSamples(r, mainOut, depOutputs, cflags, ldflags, arflags); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(variantDir, 0755); err != nil {
		return err
	}

	if out := r.Generate(); out != "" {
		buildFile := filepath.Join(variantDir, r.BuildFile())
		if err := os.WriteFile(buildFile, []byte(out), 0644); err != nil {
			return err
		}
	}

	return r.Invoke(gen.Dispatch{
		SourceDir:        b.srcdir,
		VariantDir:       variantDir,
		DuplicateSources: false,
		Toolset:          e.Toolset,
	})
}

// addSamples registers one executable target per matched sample source
func (b *Builder) addSamples(r gen.Runner, mainOut string, depOutputs []string, cflags, ldflags, arflags []string) error {
	sampleSources, err := collectFiles(b.srcdir, b.cfg.Samples.Sources, false)
	if err != nil {
		return fmt.Errorf("failed to collect samples for %s: %w", b.cfg.Package.Name, err)
	}

	var sampleDeps []string
	if b.cfg.Target.Lib {
		sampleDeps = append(slices.Clone(depOutputs), mainOut)
	} else {
		sampleDeps = depOutputs
	}

	for _, src := range sampleSources {
		base := filepath.Base(src)
		stem := base[:len(base)-len(filepath.Ext(base))]
		r.AddTarget(artifactName(stem, false), b.srcdir, []string{src}, sampleDeps, false, cflags, ldflags, arflags)
	}
	return nil
}
