package env

// Toolset describes an installed compiler toolset (a Visual Studio
// instance on Windows).
type Toolset struct {
	Name    string
	Version string
	Path    string
}

// legacyToolsetVersion is the secondary toolset targeted by the
// numbered Windows build types (win-dbg8, win-opt8).
const legacyToolsetVersion = "8.0"

// MultiToolset reports whether more than one toolset is installed, in
// which case the numbered Windows build types become available.
func MultiToolset() bool {
	return len(DetectToolsets()) > 1
}
