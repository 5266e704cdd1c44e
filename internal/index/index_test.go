package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIndex(t *testing.T) {
	idx, err := ParseIndex(strings.NewReader(`{"tuple": "libs/tuple"}`), "/tmp/index")
	require.NoError(t, err)
	assert.True(t, idx.HasDep("tuple"))
	assert.False(t, idx.HasDep("regex"))
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	idx := &Index{}
	idx.SetDep("tuple", "libs/tuple")
	idx.SetDep("regex", "libs/regex")
	require.NoError(t, idx.Save(dir))

	loaded, err := ParseIndexInPath(dir)
	require.NoError(t, err)
	assert.Equal(t, idx.Deps, loaded.Deps)
}

func TestRemoveDep(t *testing.T) {
	idx := &Index{}
	assert.False(t, idx.RemoveDep("tuple"))

	idx.SetDep("tuple", "libs/tuple")
	assert.True(t, idx.RemoveDep("tuple"))
	assert.False(t, idx.HasDep("tuple"))
}

func TestCopy(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "libs", "tuple"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "libs", "tuple", "Benv.toml"), []byte("[package]\nname = \"tuple\"\n"), 0644))

	idx := &Index{basePath: base}
	idx.SetDep("tuple", filepath.Join("libs", "tuple"))

	dest := t.TempDir()
	require.NoError(t, idx.Copy(dest, "tuple"))
	_, err := os.Stat(filepath.Join(dest, "Benv.toml"))
	assert.NoError(t, err)

	assert.Error(t, idx.Copy(dest, "regex"))
}
