package builder

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/benv-build/benv/internal/index"
	"github.com/benv-build/benv/internal/msg"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
)

var depShortcuts = map[string]string{
	"gh:": "https://github.com/",
	"gl:": "https://gitlab.com/",
	"bb:": "https://bitbucket.org/",
	"sr:": "https://sr.ht/",
	"cb:": "https://codeberg.org/",
}

const gitPrefix = "git:"

var errIllegalDep = errors.New("empty or illegal dependency string")

// fetchDependency materializes a dependency source into toWhere. The
// source is a `git:` URL, a forge shortcut (`gh:user/repo`), a local
// path, or a bare name resolved through the dependency index.
func fetchDependency(dep string, toWhere string) error {
	if dep == "" {
		return errIllegalDep
	}

	// git:https://example.com/some/lib.git
	if rest, ok := strings.CutPrefix(dep, gitPrefix); ok {
		return cloneGitRepo(rest, toWhere)
	}

	// gh:someone/somelib
	for shortcut, baseURL := range depShortcuts {
		if rest, ok := strings.CutPrefix(dep, shortcut); ok {
			return cloneGitRepo(baseURL+rest, toWhere)
		}
	}

	// a local path
	if stat, err := os.Stat(dep); err == nil && stat.IsDir() {
		return copyDirWithProgress(toWhere, dep)
	}

	// last resort: the index
	idx, err := index.GetIndexAnyhow()
	if err != nil {
		return fmt.Errorf("dependency %q is not a URL or path, and the index is unavailable: %w", dep, err)
	}
	return idx.Copy(toWhere, dep)
}

// copyDirWithProgress mirrors src into dst, streaming file contents
// through a progress bar sized by the total byte count
func copyDirWithProgress(dst, src string) error {
	fsys := os.DirFS(src)

	var total int64
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return err
	}

	pb := msg.NewProgress(total, os.Stdout)
	defer pb.Done()

	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		in, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := os.Create(target)
		if err != nil {
			return err
		}
		defer out.Close()

		_, err = io.Copy(out, io.TeeReader(in, pb))
		return err
	})
}

// depSource is a parsed dependency location:
// someone/something@feature-branch#12345abc
type depSource struct {
	url    string
	branch string
	rev    string
}

func parseDepSource(raw string) depSource {
	var src depSource

	base, rev, _ := strings.Cut(raw, "#")
	src.rev = rev

	url, branch, _ := strings.Cut(base, "@")
	src.branch = branch

	if !strings.HasSuffix(url, ".git") {
		url += ".git"
	}
	src.url = url

	return src
}

// cloneGitRepo clones a Git remote into the specified directory
func cloneGitRepo(rawURL, toWhere string) error {
	src := parseDepSource(rawURL)

	opts := git.CloneOptions{
		URL:               src.url,
		Progress:          &msg.IndentWriter{Indent: "    ", W: os.Stdout},
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}
	if src.branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(src.branch)
		opts.SingleBranch = true
	}
	if src.rev == "" {
		opts.Depth = 1 // shallow clone of the latest commit
	}

	repo, err := git.PlainClone(toWhere, &opts)
	if err != nil {
		return err
	}
	if src.rev == "" {
		return nil
	}
	return checkoutRevision(repo, src.rev)
}

func checkoutRevision(repo *git.Repository, rev string) error {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return fmt.Errorf("could not resolve revision `%s`: %w", rev, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("could not get worktree: %w", err)
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true})
}
