package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDepSource(t *testing.T) {
	cases := []struct {
		in               string
		url, branch, rev string
	}{
		{"https://example.com/a/b", "https://example.com/a/b.git", "", ""},
		{"https://example.com/a/b.git", "https://example.com/a/b.git", "", ""},
		{"https://example.com/a/b@dev", "https://example.com/a/b.git", "dev", ""},
		{"https://example.com/a/b@dev#12345abc", "https://example.com/a/b.git", "dev", "12345abc"},
		{"https://example.com/a/b#v1.0", "https://example.com/a/b.git", "", "v1.0"},
	}

	for _, c := range cases {
		src := parseDepSource(c.in)
		assert.Equal(t, c.url, src.url, c.in)
		assert.Equal(t, c.branch, src.branch, c.in)
		assert.Equal(t, c.rev, src.rev, c.in)
	}
}

func TestFetchDependencyEmptyFails(t *testing.T) {
	assert.Error(t, fetchDependency("", t.TempDir()))
}

func TestFetchDependencyLocalDir(t *testing.T) {
	from := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(from, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(from, ManifestFilename), []byte("[package]\nname = \"tuple\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(from, "src", "tuple.c"), []byte("int tuple;\n"), 0644))

	to := t.TempDir()
	require.NoError(t, fetchDependency(from, to))

	copied, err := os.ReadFile(filepath.Join(to, "src", "tuple.c"))
	require.NoError(t, err)
	assert.Equal(t, "int tuple;\n", string(copied))
}
