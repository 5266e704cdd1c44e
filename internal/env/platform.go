package env

import "runtime"

// Platform selects which build-type table and flag tables apply.
// Anything that is not Windows or Mac is assumed to be a POSIX system
// with a GCC-compatible toolchain.
type Platform int

const (
	POSIX Platform = iota
	Windows
	Mac
)

func (p Platform) String() string {
	switch p {
	case Windows:
		return "windows"
	case Mac:
		return "mac"
	default:
		return "posix"
	}
}

// Current returns the platform benv is running on.
func Current() Platform {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin":
		return Mac
	default:
		return POSIX
	}
}

// BuildTypes returns the recognized build type names for a platform, in
// order. On Windows, multiToolset additionally exposes the numbered
// build types for the secondary toolset.
func BuildTypes(p Platform, multiToolset bool) []string {
	switch p {
	case Windows:
		if multiToolset {
			return []string{"win-dbg8", "win-opt8", "win-dbg", "win-opt"}
		}
		return []string{"win-dbg", "win-opt"}
	case Mac:
		return []string{"mac-dbg", "mac-opt"}
	default:
		return []string{"dbg", "opt"}
	}
}

// DebugType returns the platform's debug build type, the default BUILD
// selection.
func DebugType(p Platform) string {
	switch p {
	case Windows:
		return "win-dbg"
	case Mac:
		return "mac-dbg"
	default:
		return "dbg"
	}
}
