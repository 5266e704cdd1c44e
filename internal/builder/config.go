package builder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pelletier/go-toml/v2"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Config is a parsed Benv.toml manifest.
type Config struct {
	Package      PackageSection    `toml:"package"`
	Target       TargetSection     `toml:"target"`
	Samples      SamplesSection    `toml:"samples"`
	Dependencies map[string]string `toml:"dependencies"`
}

// PackageSection defines the [package] section
type PackageSection struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Authors     []string `toml:"authors"`
	Build       string   `toml:"build"`
}

// TargetSection defines the [target(.*)] section. Variants names
// environment mutators to build extra library variants with.
type TargetSection struct {
	Lib      bool              `toml:"lib"`
	Sources  []string          `toml:"sources"`
	Headers  []string          `toml:"headers"`
	Defines  map[string]string `toml:"defines"`
	Links    []string          `toml:"links"`
	Cflags   []string          `toml:"cflags"`
	Variants []string          `toml:"variants"`
}

// SamplesSection defines the [samples(.*)] section; each matched source
// becomes its own executable.
type SamplesSection struct {
	Sources []string `toml:"sources"`
}

// overlay merges src into dst: slices append, maps overlay key by key,
// bools or, anything else overwrites when src holds a non-zero value.
func overlay[T any](dst *T, src T) {
	overlayValue(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src))
}

func overlayValue(dst, src reflect.Value) {
	switch dst.Kind() {
	case reflect.Struct:
		for i := range dst.NumField() {
			if dst.Field(i).CanSet() {
				overlayValue(dst.Field(i), src.Field(i))
			}
		}
	case reflect.Slice:
		if !src.IsNil() {
			dst.Set(reflect.AppendSlice(dst, src))
		}
	case reflect.Map:
		if src.IsNil() {
			return
		}
		if dst.IsNil() {
			dst.Set(reflect.MakeMap(dst.Type()))
		}
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(iter.Key(), iter.Value())
		}
	case reflect.Bool:
		dst.SetBool(dst.Bool() || src.Bool())
	default:
		if !src.IsZero() {
			dst.Set(src)
		}
	}
}

// reparse round-trips a raw TOML table into a typed section
func reparse[T any](table any, out *T) error {
	raw, err := toml.Marshal(table)
	if err != nil {
		return err
	}
	return toml.Unmarshal(raw, out)
}

// guardedTable is a sub-table behind a boolean condition, e.g.
// [target.'target_os == "linux"']
type guardedTable struct {
	cond  string
	prog  *vm.Program
	table map[string]any
}

// decodeSection fills dst from the named table of the raw document.
// Sub-tables whose key compiles as an expression over the config
// environment are applied only when the expression evaluates true.
func decodeSection[T any](doc map[string]any, name string, dst *T, env ConfigEnv) error {
	raw, ok := doc[name]
	if !ok {
		return nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("[%s] is not a table", name)
	}

	plain := make(map[string]any, len(table))
	var guarded []guardedTable

	for key, val := range table {
		if sub, isTable := val.(map[string]any); isTable {
			if prog, err := expr.Compile(key, expr.Env(env)); err == nil {
				guarded = append(guarded, guardedTable{cond: key, prog: prog, table: sub})
				continue
			}
		}
		plain[key] = val
	}

	if len(plain) > 0 {
		if err := reparse(plain, dst); err != nil {
			return fmt.Errorf("parse [%s]: %w", name, err)
		}
	}

	for _, g := range guarded {
		out, err := expr.Run(g.prog, env)
		if err != nil {
			return fmt.Errorf("condition %q in [%s]: %w", g.cond, name, err)
		}
		if on, ok := out.(bool); !ok || !on {
			continue
		}

		var section T
		if err := reparse(g.table, &section); err != nil {
			return fmt.Errorf("parse [%s.%q]: %w", name, g.cond, err)
		}
		overlay(dst, section)
	}

	return nil
}

// evalExpr compiles and runs one expression against the config
// environment
func evalExpr(code string, env ConfigEnv) (any, error) {
	prog, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		return nil, err
	}
	return expr.Run(prog, env)
}

var exprPattern = regexp.MustCompile(`\{\{(.+?)\}\}`)

// interpolate evaluates every {{ ... }} expression inside s
func interpolate(s string, env ConfigEnv) (string, error) {
	var evalErr error
	out := exprPattern.ReplaceAllStringFunc(s, func(m string) string {
		if evalErr != nil {
			return m
		}
		code := strings.TrimSpace(m[2 : len(m)-2])
		res, err := evalExpr(code, env)
		if err != nil {
			evalErr = fmt.Errorf("expression %q: %w", code, err)
			return m
		}
		return fmt.Sprint(res)
	})
	return out, evalErr
}

// interpolateTree expands expressions in every string of the parsed
// document, in place
func interpolateTree(node any, env ConfigEnv) (any, error) {
	switch v := node.(type) {
	case string:
		return interpolate(v, env)
	case []any:
		for i := range v {
			out, err := interpolateTree(v[i], env)
			if err != nil {
				return nil, err
			}
			v[i] = out
		}
	case map[string]any:
		for key := range v {
			out, err := interpolateTree(v[key], env)
			if err != nil {
				return nil, err
			}
			v[key] = out
		}
	}
	return node, nil
}

func ParseConfig(rdr io.Reader, env ConfigEnv) (*Config, error) {
	var doc map[string]any
	if err := toml.NewDecoder(rdr).Decode(&doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}

	if _, err := interpolateTree(doc, env); err != nil {
		return nil, fmt.Errorf("manifest expressions: %w", err)
	}

	cfg := new(Config)
	if err := decodeSection(doc, "package", &cfg.Package, env); err != nil {
		return nil, err
	}
	if err := decodeSection(doc, "target", &cfg.Target, env); err != nil {
		return nil, err
	}
	if err := decodeSection(doc, "samples", &cfg.Samples, env); err != nil {
		return nil, err
	}
	if err := decodeSection(doc, "dependencies", &cfg.Dependencies, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseConfigFromFile parses and validates a config file from a filepath
func ParseConfigFromFile(path string, env ConfigEnv) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseConfig(bufio.NewReader(f), env)
}

// RunBuildScript runs the [package] build expression, if any.
func (cfg Config) RunBuildScript(env ConfigEnv) error {
	script := cfg.Package.Build
	if script == "" {
		return nil
	}

	out, err := evalExpr(script, env)
	if err != nil {
		return fmt.Errorf("build script of package %q: %w", cfg.Package.Name, err)
	}
	if ok, _ := out.(bool); !ok {
		return fmt.Errorf("build script of package %q did not succeed\n%s", cfg.Package.Name, script)
	}

	return nil
}

// ConfigEnv is the expression environment visible to manifests.
type ConfigEnv struct {
	TargetOS   string            `expr:"target_os"`
	TargetArch string            `expr:"target_arch"`
	Environ    map[string]string `expr:"environ"`
	basedir    string
}

func NewConfigEnv(basedir string) ConfigEnv {
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			environ[name] = value
		}
	}

	return ConfigEnv{
		TargetOS:   runtime.GOOS,
		TargetArch: runtime.GOARCH,
		Environ:    environ,
		basedir:    basedir,
	}
}

// Patch applies a diff-match-patch text patch to a file in the package
// directory; returns whether anything was applied.
func (env ConfigEnv) Patch(path, patchText string) bool {
	fullPath := filepath.Join(env.basedir, path)
	before, err := os.ReadFile(fullPath)
	if err != nil {
		panic(err)
	}

	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(patchText)
	if err != nil {
		panic(err)
	}

	after, applied := dmp.PatchApply(patches, string(before))
	if !slices.Contains(applied, true) {
		return false
	}

	if err := os.WriteFile(fullPath, []byte(after), 0644); err != nil {
		panic(err)
	}
	return true
}

func (env ConfigEnv) ReadFile(path string) (string, error) {
	full := filepath.Clean(filepath.Join(env.basedir, path))
	if !strings.HasPrefix(full, filepath.Clean(env.basedir)) {
		panic(fmt.Sprintf("path %q escapes the package directory", path))
	}

	data, err := os.ReadFile(full)
	if err != nil {
		panic(err)
	}
	return string(data), nil
}
