package gen

import (
	"fmt"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/benv-build/benv/internal/msg"
)

// NinjaRunner writes a build.ninja into the variant directory and lets
// ninja do the work.
type NinjaRunner struct {
	cc, cxx string
	targets map[string]buildUnit
}

func (g *NinjaRunner) SetToolchain(cc, cxx string) {
	g.cc, g.cxx = cc, cxx
}

func (g *NinjaRunner) BuildFile() string { return "build.ninja" }

var ninjaPathEscaper = strings.NewReplacer(":", "$:", " ", "$ ")

func quote(s string) string { return ninjaPathEscaper.Replace(s) }

// AddTarget adds a library or executable to the build
func (g *NinjaRunner) AddTarget(name, basedir string, sources, dependencies []string, isLib bool, cflags, ldflags, arflags []string) {
	if g.targets == nil {
		g.targets = make(map[string]buildUnit)
	}

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
			obj:   quote(filepath.ToSlash(filepath.Join("BenvFiles", name+".dir", rel))) + ".obj",
			isCxx: isCxx(src),
		})
	}

	g.targets[name] = unit
}

const ninjaRules = `ninja_required_version = 1.1

rule cc
  command = $cc $cflags -c $in -o $out
  description = CC $out

rule cxx
  command = $cxx $cflags -c $in -o $out
  description = CXX $out

rule link
  command = $cc $ldflags -o $out $in
  description = LINK $out

rule ar
  command = ar rcs $out $in
  description = AR $out

`

func (g *NinjaRunner) Generate() string {
	// stable target order so the file does not churn between runs
	names := slices.Sorted(maps.Keys(g.targets))

	var b strings.Builder
	b.WriteString(ninjaRules)
	fmt.Fprintf(&b, "cc = %s\ncxx = %s\n\n", g.cc, g.cxx)

	// compile edges, with per-target flags
	for _, name := range names {
		target := g.targets[name]
		for _, src := range target.sources {
			rule := "cc"
			if src.isCxx {
				rule = "cxx"
			}
			fmt.Fprintf(&b, "build %s: %s %s\n", src.obj, rule, quote(src.src))
			fmt.Fprintf(&b, "  cflags = %s\n", strings.Join(target.cflags, " "))
		}
	}
	b.WriteByte('\n')

	// link and archive edges
	for _, name := range names {
		target := g.targets[name]

		inputs := make([]string, 0, len(target.sources)+len(target.dependencies))
		for _, src := range target.sources {
			inputs = append(inputs, src.obj)
		}
		inputs = append(inputs, target.dependencies...)

		rule := "link"
		if target.isLib {
			rule = "ar"
		}
		fmt.Fprintf(&b, "build %s: %s %s\n", target.name, rule, strings.Join(inputs, " "))
		if !target.isLib {
			fmt.Fprintf(&b, "  ldflags = %s\n", strings.Join(target.ldflags, " "))
		}
	}

	return b.String()
}

func (g *NinjaRunner) Invoke(d Dispatch) error {
	cmd := exec.Command("ninja", "-C", d.VariantDir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
