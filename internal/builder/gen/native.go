package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/benv-build/benv/internal/msg"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// NativeRunner performs the delegated build itself, compiling and
// linking in parallel with content-hash incrementality.
type NativeRunner struct {
	cc, cxx string
	targets map[string]buildUnit
	jobs    int
}

func NewNativeRunner(jobs int) *NativeRunner {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return &NativeRunner{
		targets: make(map[string]buildUnit),
		jobs:    jobs,
	}
}

func (g *NativeRunner) SetToolchain(cc, cxx string) {
	g.cc, g.cxx = cc, cxx
}

func (g *NativeRunner) BuildFile() string {
	return "benv_build_state.json"
}

func (g *NativeRunner) Generate() string {
	return "" // no build file needed
}

// AddTarget adds a library or executable to the build
func (g *NativeRunner) AddTarget(name, basedir string, sources, dependencies []string, isLib bool, cflags, ldflags, arflags []string) {
	unit := buildUnit{
		name:         name,
		isLib:        isLib,
		dependencies: dependencies,
		cflags:       cflags,
		ldflags:      ldflags,
		arflags:      arflags,
	}

	for _, src := range sources {
		rel, err := filepath.Rel(basedir, src)
		if err != nil {
			msg.Warn("source file %s is outside of source directory %s", src, basedir)
			rel = filepath.Base(src)
		}
		unit.sources = append(unit.sources, sourceFile{
			src:   src,
			obj:   filepath.Join("BenvFiles", name+".dir", rel+".obj"),
			isCxx: isCxx(src),
		})
	}

	g.targets[name] = unit
}

// stateFile records what each target was last built from; every
// successful run gets a fresh run id
type stateFile struct {
	RunID   string                 `json:"run_id,omitempty"`
	Targets map[string]targetState `json:"targets,omitempty"`
}

type targetState struct {
	Sources map[string]string `json:"sources,omitempty"` // source file -> digest
	Deps    map[string]string `json:"deps,omitempty"`    // dependency artifact -> digest
	Cflags  []string          `json:"cflags,omitempty"`
	Ldflags []string          `json:"ldflags,omitempty"`
}

// compileStep is one compiler invocation
type compileStep struct {
	compiler string
	src, obj string
	flags    []string
}

// linkStep is one link or archive invocation
type linkStep struct {
	name    string
	driver  string
	out     string
	inputs  []string
	flags   []string
	archive bool
}

// buildRun is the state of a single Invoke
type buildRun struct {
	r          *NativeRunner
	variantDir string
	prev       stateFile
	digests    map[string]string
}

// Invoke performs the actual build inside the variant directory
func (g *NativeRunner) Invoke(d Dispatch) error {
	run := &buildRun{
		r:          g,
		variantDir: d.VariantDir,
		digests:    make(map[string]string),
	}
	run.loadState()

	order, err := g.buildOrder()
	if err != nil {
		return err
	}

	compiles, links, err := run.plan(order)
	if err != nil {
		return fmt.Errorf("build planning failed: %w", err)
	}
	if len(compiles) == 0 && len(links) == 0 {
		fmt.Println("benv: no work to do.")
		return nil
	}

	if err := parallel(g.jobs, compiles, compileStep.run); err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}
	if err := parallel(g.jobs, links, linkStep.run); err != nil {
		return fmt.Errorf("linking failed: %w", err)
	}

	run.saveState(links)
	return nil
}

// buildOrder sorts target names so dependencies come before their
// dependents
func (g *NativeRunner) buildOrder() ([]string, error) {
	names := slices.Sorted(maps.Keys(g.targets))

	const (
		unvisited = iota
		visiting
		visited
	)
	mark := make(map[string]int, len(names))
	order := make([]string, 0, len(names))

	var visit func(name string) error
	visit = func(name string) error {
		switch mark[name] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("dependency cycle through target %q", name)
		}
		mark[name] = visiting

		deps := slices.Clone(g.targets[name].dependencies)
		slices.Sort(deps)
		for _, dep := range deps {
			if _, ok := g.targets[dep]; !ok {
				return fmt.Errorf("target %q depends on unknown target %q", name, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		mark[name] = visited
		order = append(order, name)
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// plan walks the targets in build order and collects the compile and
// link steps that are actually necessary
func (run *buildRun) plan(order []string) ([]compileStep, []linkStep, error) {
	var compiles []compileStep
	var links []linkStep
	rebuilt := make(map[string]bool)

	for _, name := range order {
		target := run.r.targets[name]

		steps, err := run.staleSources(target)
		if err != nil {
			return nil, nil, err
		}
		compiles = append(compiles, steps...)

		relink := len(steps) > 0
		if !relink {
			relink, err = run.needsRelink(target, rebuilt)
			if err != nil {
				return nil, nil, err
			}
		}
		if relink {
			rebuilt[name] = true
			links = append(links, run.linkStep(target))
		}
	}

	return compiles, links, nil
}

// staleSources returns a compile step for every source whose object is
// missing or whose content changed since the recorded build
func (run *buildRun) staleSources(target buildUnit) ([]compileStep, error) {
	prev, known := run.prev.Targets[target.name]

	var steps []compileStep
	for _, src := range target.sources {
		obj := filepath.Join(run.variantDir, src.obj)

		stale := !known
		if !stale {
			if _, err := os.Stat(obj); err != nil {
				stale = true
			}
		}
		if !stale {
			sum, err := run.digest(src.src)
			if err != nil {
				return nil, fmt.Errorf("could not check status of %s: %w", src.src, err)
			}
			stale = prev.Sources[src.src] != sum
		}
		if !stale {
			continue
		}

		compiler := run.r.cc
		if src.isCxx {
			compiler = run.r.cxx
		}
		steps = append(steps, compileStep{compiler: compiler, src: src.src, obj: obj, flags: target.cflags})
	}

	return steps, nil
}

// needsRelink decides whether a target with no recompiled sources still
// has to relink: missing output, changed flags, or a touched dependency
func (run *buildRun) needsRelink(target buildUnit, rebuilt map[string]bool) (bool, error) {
	if _, err := os.Stat(filepath.Join(run.variantDir, target.name)); err != nil {
		return true, nil
	}

	prev, ok := run.prev.Targets[target.name]
	if !ok {
		return true, nil
	}
	if !slices.Equal(prev.Cflags, target.cflags) || !slices.Equal(prev.Ldflags, target.ldflags) {
		return true, nil
	}

	for _, dep := range target.dependencies {
		if rebuilt[dep] {
			return true, nil
		}
		sum, err := run.digest(filepath.Join(run.variantDir, dep))
		if err != nil {
			if os.IsNotExist(err) {
				return true, nil
			}
			return false, fmt.Errorf("failed to hash dependency %s: %w", dep, err)
		}
		if prev.Deps[dep] != sum {
			return true, nil
		}
	}

	return false, nil
}

func (run *buildRun) linkStep(target buildUnit) linkStep {
	inputs := make([]string, 0, len(target.sources)+len(target.dependencies))
	for _, src := range target.sources {
		inputs = append(inputs, filepath.Join(run.variantDir, src.obj))
	}

	if target.isLib {
		return linkStep{
			name:    target.name,
			out:     filepath.Join(run.variantDir, target.name),
			inputs:  inputs,
			flags:   target.arflags,
			archive: true,
		}
	}

	for _, dep := range target.dependencies {
		inputs = append(inputs, filepath.Join(run.variantDir, dep))
	}

	driver := run.r.cc
	if run.r.usesCxx(target.name) {
		driver = run.r.cxx
	}
	return linkStep{
		name:   target.name,
		driver: driver,
		out:    filepath.Join(run.variantDir, target.name),
		inputs: inputs,
		flags:  target.ldflags,
	}
}

// usesCxx reports whether a target or anything it links in has C++
// sources
func (g *NativeRunner) usesCxx(name string) bool {
	target, ok := g.targets[name]
	if !ok {
		return false
	}
	for _, src := range target.sources {
		if src.isCxx {
			return true
		}
	}
	for _, dep := range target.dependencies {
		if g.usesCxx(dep) {
			return true
		}
	}
	return false
}

func (s compileStep) run() error {
	if err := os.MkdirAll(filepath.Dir(s.obj), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	fmt.Printf("CC %s\n", s.src)
	args := append(slices.Clone(s.flags), "-c", s.src, "-o", s.obj)
	return runTool(s.compiler, args)
}

func (s linkStep) run() error {
	if s.archive {
		fmt.Printf("AR %s\n", s.out)
		return runTool("ar", append([]string{"rcs", s.out}, s.inputs...))
	}

	fmt.Printf("LINK %s\n", s.out)
	args := append([]string{"-o", s.out}, s.inputs...)
	args = append(args, s.flags...)
	return runTool(s.driver, args)
}

func runTool(tool string, args []string) error {
	cmd := exec.Command(tool, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// parallel runs steps through a bounded worker pool
func parallel[S any](limit int, steps []S, run func(S) error) error {
	if len(steps) == 0 {
		return nil
	}

	eg := new(errgroup.Group)
	eg.SetLimit(limit)
	for _, step := range steps {
		eg.Go(func() error { return run(step) })
	}
	return eg.Wait()
}

func (run *buildRun) statePath() string {
	return filepath.Join(run.variantDir, run.r.BuildFile())
}

func (run *buildRun) loadState() {
	data, err := os.ReadFile(run.statePath())
	if err != nil {
		if !os.IsNotExist(err) {
			msg.Warn("failed to load build state: %v", err)
		}
		return
	}
	if err := json.Unmarshal(data, &run.prev); err != nil {
		msg.Warn("failed to parse build state: %v", err)
		run.prev = stateFile{}
	}
}

// saveState carries forward the untouched targets and re-records the
// relinked ones under a fresh run id
func (run *buildRun) saveState(relinked []linkStep) {
	next := stateFile{
		RunID:   uuid.NewString(),
		Targets: make(map[string]targetState, len(run.r.targets)),
	}
	maps.Copy(next.Targets, run.prev.Targets)

	// artifact digests memoized before the relink are stale now
	for _, step := range relinked {
		delete(run.digests, step.out)
	}

	for _, step := range relinked {
		target, ok := run.r.targets[step.name]
		if !ok {
			continue
		}
		rec, err := run.record(target)
		if err != nil {
			msg.Warn("failed to update build state for target %s: %v", step.name, err)
			continue
		}
		next.Targets[step.name] = rec
	}

	data, err := json.MarshalIndent(next, "", "  ")
	if err == nil {
		err = os.WriteFile(run.statePath(), data, 0644)
	}
	if err != nil {
		msg.Warn("failed to save build state: %v", err)
	}
}

func (run *buildRun) record(target buildUnit) (targetState, error) {
	rec := targetState{
		Sources: make(map[string]string, len(target.sources)),
		Deps:    make(map[string]string, len(target.dependencies)),
		Cflags:  slices.Clone(target.cflags),
		Ldflags: slices.Clone(target.ldflags),
	}

	for _, src := range target.sources {
		sum, err := run.digest(src.src)
		if err != nil {
			return rec, fmt.Errorf("failed to hash source file %s: %w", src.src, err)
		}
		rec.Sources[src.src] = sum
	}

	for _, dep := range target.dependencies {
		sum, err := run.digest(filepath.Join(run.variantDir, dep))
		if err != nil {
			msg.Warn("could not hash dependency %s for state update: %v", dep, err)
			continue
		}
		rec.Deps[dep] = sum
	}

	return rec, nil
}

// digest returns the sha256 of a file, memoized per run
func (run *buildRun) digest(path string) (string, error) {
	if sum, ok := run.digests[path]; ok {
		return sum, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	sum := hex.EncodeToString(h.Sum(nil))
	run.digests[path] = sum
	return sum, nil
}
