package gen

import (
	"path/filepath"
	"strings"
)

// sourceFile is a single source file and its object file path inside the
// variant directory
type sourceFile struct {
	src   string
	obj   string
	isCxx bool
}

// buildUnit is one unit to be built (a library or an executable)
type buildUnit struct {
	name         string
	isLib        bool
	sources      []sourceFile
	dependencies []string
	cflags       []string
	ldflags      []string
	arflags      []string
}

var cxxExtensions = map[string]bool{
	".cc":  true,
	".cpp": true,
	".cxx": true,
	".c++": true,
}

func isCxx(path string) bool {
	return cxxExtensions[strings.ToLower(filepath.Ext(path))]
}
