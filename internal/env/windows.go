package env

import "slices"

// MSVC flag tables. Exceptions are disabled by default (_HAS_EXCEPTIONS=0,
// -EHs-c-); the allow-exceptions mutator turns them back on.
var (
	windowsCommonDefines = []string{
		"WIN32",
		"_WIN32",
		"STRICT",
		"WIN32_LEAN_AND_MEAN",
		"_HAS_EXCEPTIONS=0",
	}
	windowsCommonCCFlags = []string{
		"-nologo",
		"-GS",
		"-W4",
		"-WX",
		"-Zi",
		"-J",
		"-EHs-c-",
	}
)

func windowsCommon(name, toolset string) *Environment {
	return &Environment{
		Name:    name,
		Toolset: toolset,
		Defines: slices.Clone(windowsCommonDefines),
		CCFlags: slices.Clone(windowsCommonCCFlags),
	}
}

func windowsDebug(name, toolset string) *Environment {
	e := windowsCommon(name, toolset)
	e.AppendDefines("DEBUG", "_DEBUG")
	e.AppendCCFlags("-Od", "-MDd", "-Z7", "-RTCs", "-RTCu")
	e.AppendLinkFlags("-DEBUG")
	return e
}

func windowsOptimized(name, toolset string) *Environment {
	e := windowsCommon(name, toolset)
	e.AppendDefines("NDEBUG", "_NDEBUG")
	e.AppendCCFlags("-O2", "-MD", "-GL")
	e.AppendLinkFlags("-LTCG")
	e.AppendARFlags("-LTCG")
	return e
}
