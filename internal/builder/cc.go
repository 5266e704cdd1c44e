package builder

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/benv-build/benv/internal/env"
	"github.com/benv-build/benv/internal/msg"
)

// toolchain is the compiler pair one build runs with
type toolchain struct {
	cc  string
	cxx string
}

var (
	ccCandidates  = []string{"clang", "gcc", "icx", "icc", "tcc", "cl"}
	cxxCandidates = []string{"clang++", "g++", "clang", "gcc", "icpx", "icx", "icpc", "icc", "cl"}
)

// selectToolchain resolves the compilers for a build. A build type that
// pins a toolset version uses the compiler driver of the matching
// installation; otherwise CC/CXX win, then the candidate lists are
// probed in order.
func selectToolchain(toolsetVersion string) toolchain {
	if toolsetVersion != "" {
		if tc, ok := pinnedToolchain(toolsetVersion); ok {
			return tc
		}
		msg.Warn("no installed toolset matches version %s, using the default compilers", toolsetVersion)
	}

	return toolchain{
		cc:  resolveCompiler(os.Getenv("CC"), os.Getenv("CXX"), ccCandidates),
		cxx: resolveCompiler(os.Getenv("CXX"), os.Getenv("CC"), cxxCandidates),
	}
}

// pinnedToolchain looks for an installed toolset whose version starts
// with the requested one and uses its compiler driver for both languages
func pinnedToolchain(version string) (toolchain, bool) {
	for _, t := range env.DetectToolsets() {
		if strings.HasPrefix(t.Version, version) {
			cl := filepath.Join(t.Path, "VC", "bin", "cl.exe")
			return toolchain{cc: cl, cxx: cl}, true
		}
	}
	return toolchain{}, false
}

func resolveCompiler(preferred, alternate string, candidates []string) string {
	if preferred != "" {
		return preferred
	}
	if alternate != "" {
		return alternate
	}

	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
