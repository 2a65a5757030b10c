package quill

import (
	"errors"
	"fmt"
	"path"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitSource reads <name>.ql files from one commit of a git repository,
// optionally below a subdirectory. Reads never touch the worktree, so the
// module set is pinned to the resolved commit.
type GitSource struct {
	tree   *object.Tree
	dir    string
	commit plumbing.Hash
}

// NewGitSource pins revision (a branch, tag or commit hash; "" means HEAD)
// of repo.
func NewGitSource(repo *git.Repository, revision, dir string) (*GitSource, error) {
	if strings.TrimSpace(revision) == "" {
		revision = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("resolve revision %s: %w", revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("load tree of %s: %w", hash, err)
	}
	dir = strings.Trim(path.Clean("/"+dir), "/")
	return &GitSource{tree: tree, dir: dir, commit: *hash}, nil
}

// OpenGitSource opens the repository at repoPath and pins revision.
func OpenGitSource(repoPath, revision, dir string) (*GitSource, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository %s: %w", repoPath, err)
	}
	return NewGitSource(repo, revision, dir)
}

// Commit is the hash the source is pinned to.
func (s *GitSource) Commit() string { return s.commit.String() }

func (s *GitSource) Load(name string) (string, error) {
	file := moduleFile(name)
	if s.dir != "" {
		file = path.Join(s.dir, file)
	}
	f, err := s.tree.File(file)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, object.ErrDirectoryNotFound) || errors.Is(err, object.ErrEntryNotFound) {
			return "", fmt.Errorf("%w: %s", ErrModuleNotFound, name)
		}
		return "", fmt.Errorf("reading %s at %s: %w", file, s.commit, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return "", fmt.Errorf("reading %s at %s: %w", file, s.commit, err)
	}
	return contents, nil
}
