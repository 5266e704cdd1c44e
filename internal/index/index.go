// Package index maintains the mapping from dependency names to source
// locations, backed by a git-synced global index plus local overrides.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/benv-build/benv/internal/msg"
	"github.com/fatih/color"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
)

const (
	IndexFilename = "benv_index.json"
	indexRepoURL  = "https://github.com/benv-build/index.git"
	indexBranch   = "main"
)

// Index maps dependency names to directories inside a checkout of the
// index repository.
type Index struct {
	// on windows: %LocalAppData%/benv/index
	// on linux: ~/.cache/benv/index
	basePath string
	Deps     map[string]string
}

func ParseIndex(rdr io.Reader, basePath string) (*Index, error) {
	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, err
	}

	idx := &Index{basePath: basePath}
	if err := json.Unmarshal(data, &idx.Deps); err != nil {
		return nil, err
	}
	return idx, nil
}

func ParseIndexInPath(basePath string) (*Index, error) {
	f, err := os.Open(filepath.Join(basePath, IndexFilename))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseIndex(f, basePath)
}

func (idx Index) Save(basePath string) error {
	data, err := json.MarshalIndent(idx.Deps, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(basePath, IndexFilename), data, 0644)
}

// FetchIndex clones the index repository into basePath, or pulls when a
// checkout is already there
func FetchIndex(basePath string) (*Index, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, err
	}

	var err error
	if _, statErr := os.Stat(filepath.Join(basePath, ".git")); os.IsNotExist(statErr) {
		err = cloneIndex(basePath)
	} else {
		err = pullIndex(basePath)
	}
	if err != nil {
		return nil, err
	}

	return ParseIndexInPath(basePath)
}

func cloneIndex(basePath string) error {
	fmt.Printf("  %s benv index\n", color.HiGreenString("Fetching"))
	_, err := git.PlainClone(basePath, &git.CloneOptions{
		URL:           indexRepoURL,
		ReferenceName: plumbing.NewBranchReferenceName(indexBranch),
		SingleBranch:  true,
		Depth:         1,
		Progress:      &msg.IndentWriter{Indent: "    ", W: os.Stdout},
	})
	return err
}

func pullIndex(basePath string) error {
	repo, err := git.PlainOpen(basePath)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}

	err = wt.Pull(&git.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(indexBranch),
		SingleBranch:  true,
		Depth:         1,
		Progress:      &msg.IndentWriter{Indent: "    ", W: os.Stdout},
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

func globalIndexPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "benv", "index"), nil
}

var loadGlobal = sync.OnceValues(func() (*Index, error) {
	base, err := globalIndexPath()
	if err != nil {
		return nil, err
	}
	if idx, err := ParseIndexInPath(base); err == nil {
		return idx, nil
	}
	return FetchIndex(base)
})

// GetIndexAnyhow returns the global index, fetching it on first use.
func GetIndexAnyhow() (*Index, error) {
	return loadGlobal()
}

func UpdateGlobalIndex() (*Index, error) {
	base, err := globalIndexPath()
	if err != nil {
		return nil, err
	}
	return FetchIndex(base)
}

// Copy materializes the named dependency's files into destPath
func (idx Index) Copy(destPath, name string) error {
	rel, ok := idx.Deps[name]
	if !ok {
		return fmt.Errorf("dependency %q not found in index", name)
	}
	return os.CopyFS(destPath, os.DirFS(filepath.Join(idx.basePath, rel)))
}

func (idx *Index) SetDep(name, path string) {
	if idx.Deps == nil {
		idx.Deps = make(map[string]string)
	}
	idx.Deps[name] = path
}

func (idx *Index) HasDep(name string) bool {
	_, ok := idx.Deps[name]
	return ok
}

func (idx *Index) RemoveDep(name string) bool {
	if !idx.HasDep(name) {
		return false
	}
	delete(idx.Deps, name)
	return true
}
