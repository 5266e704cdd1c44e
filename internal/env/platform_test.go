package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTypes(t *testing.T) {
	assert.Equal(t, []string{"win-dbg", "win-opt"}, BuildTypes(Windows, false))
	assert.Equal(t, []string{"win-dbg8", "win-opt8", "win-dbg", "win-opt"}, BuildTypes(Windows, true))
	assert.Equal(t, []string{"mac-dbg", "mac-opt"}, BuildTypes(Mac, false))
	assert.Equal(t, []string{"dbg", "opt"}, BuildTypes(POSIX, false))

	// multi-toolset only matters on windows
	assert.Equal(t, []string{"mac-dbg", "mac-opt"}, BuildTypes(Mac, true))
	assert.Equal(t, []string{"dbg", "opt"}, BuildTypes(POSIX, true))
}

func TestDebugType(t *testing.T) {
	assert.Equal(t, "win-dbg", DebugType(Windows))
	assert.Equal(t, "mac-dbg", DebugType(Mac))
	assert.Equal(t, "dbg", DebugType(POSIX))
}

func TestForBuildTypeCoversAllNames(t *testing.T) {
	for _, p := range []Platform{Windows, Mac, POSIX} {
		for _, name := range BuildTypes(p, true) {
			e, err := ForBuildType(name)
			assert.NoError(t, err)
			assert.Equal(t, name, e.Name)
			assert.Empty(t, e.Suffix)
		}
	}
}

func TestForBuildTypeUnknown(t *testing.T) {
	_, err := ForBuildType("win-fastdebug")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "win-fastdebug")
}
