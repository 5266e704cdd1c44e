package env

import "slices"

// GCC flag tables, shared by Mac and generic POSIX. Exceptions are
// disabled by default (-fno-exceptions); the allow-exceptions mutator
// removes that flag. Debug and optimized differ only by -g+DEBUG vs
// -O2+NDEBUG.
var posixCommonCCFlags = []string{
	"-Wall",
	"-Wshadow",
	"-Werror",
	"-fno-exceptions",
}

func posixCommon(name string) *Environment {
	return &Environment{
		Name:    name,
		CCFlags: slices.Clone(posixCommonCCFlags),
	}
}

func posixDebug(name string) *Environment {
	e := posixCommon(name)
	e.AppendCCFlags("-g")
	e.AppendDefines("DEBUG")
	return e
}

func posixOptimized(name string) *Environment {
	e := posixCommon(name)
	e.AppendCCFlags("-O2")
	e.AppendDefines("NDEBUG")
	return e
}
