// Package env assembles per-platform compiler/linker flag bundles
// ("environments") for the supported build types and derives purposeful
// variants of them through named mutators.
package env

import (
	"fmt"
	"slices"
)

// Environment is a named bundle of preprocessor definitions and
// compiler/linker/archiver flags used to build one variant.
type Environment struct {
	// Name is the build type this environment was created for, e.g. "win-dbg".
	Name string
	// Suffix distinguishes a derived environment from its base and from
	// every other derived environment. Empty for base environments.
	Suffix string
	// Toolset overrides the default compiler toolset version. Only
	// meaningful for the numbered Windows build types.
	Toolset string

	Defines   []string // NAME or NAME=VALUE
	CCFlags   []string // passed to both C and C++ compiles
	CXXFlags  []string // C++ only
	LinkFlags []string
	ARFlags   []string
}

// Clone returns a deep copy that can be modified without affecting e.
func (e *Environment) Clone() *Environment {
	clone := *e
	clone.Defines = slices.Clone(e.Defines)
	clone.CCFlags = slices.Clone(e.CCFlags)
	clone.CXXFlags = slices.Clone(e.CXXFlags)
	clone.LinkFlags = slices.Clone(e.LinkFlags)
	clone.ARFlags = slices.Clone(e.ARFlags)
	return &clone
}

func (e *Environment) AppendDefines(defines ...string) { e.Defines = append(e.Defines, defines...) }
func (e *Environment) AppendCCFlags(flags ...string)   { e.CCFlags = append(e.CCFlags, flags...) }
func (e *Environment) AppendCXXFlags(flags ...string)  { e.CXXFlags = append(e.CXXFlags, flags...) }
func (e *Environment) AppendLinkFlags(flags ...string) { e.LinkFlags = append(e.LinkFlags, flags...) }
func (e *Environment) AppendARFlags(flags ...string)   { e.ARFlags = append(e.ARFlags, flags...) }

// remove deletes every occurrence of value; removing an absent value is a no-op
func remove(list []string, value string) []string {
	return slices.DeleteFunc(list, func(s string) bool { return s == value })
}

func (e *Environment) RemoveDefine(define string) { e.Defines = remove(e.Defines, define) }
func (e *Environment) RemoveCCFlag(flag string)   { e.CCFlags = remove(e.CCFlags, flag) }
func (e *Environment) RemoveLinkFlag(flag string) { e.LinkFlags = remove(e.LinkFlags, flag) }
func (e *Environment) RemoveARFlag(flag string)   { e.ARFlags = remove(e.ARFlags, flag) }

// FullName returns the environment name with the mutator suffix, if any.
func (e *Environment) FullName() string {
	return e.Name + e.Suffix
}

// ForBuildType constructs the concrete environment for one of the
// recognized build type names.
func ForBuildType(name string) (*Environment, error) {
	switch name {
	case "win-dbg":
		return windowsDebug(name, ""), nil
	case "win-opt":
		return windowsOptimized(name, ""), nil
	case "win-dbg8":
		return windowsDebug(name, legacyToolsetVersion), nil
	case "win-opt8":
		return windowsOptimized(name, legacyToolsetVersion), nil
	case "mac-dbg", "dbg":
		return posixDebug(name), nil
	case "mac-opt", "opt":
		return posixOptimized(name), nil
	}
	return nil, fmt.Errorf("unknown build type %q", name)
}
