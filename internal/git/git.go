package git

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is an open repository with a worktree.
type Repo struct {
	repo     *git.Repository
	worktree *git.Worktree
	root     string
}

// Open opens the repository containing root, searching parent directories
// for the .git directory the way the git CLI does.
func Open(root string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", root, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("repository at %s has no worktree: %w", root, err)
	}
	return &Repo{
		repo:     repo,
		worktree: worktree,
		root:     worktree.Filesystem.Root(),
	}, nil
}

// Root returns the worktree root directory.
func (r *Repo) Root() string {
	return r.root
}

// Branch returns the name of the currently checked out branch.
func (r *Repo) Branch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", errors.New("repository is in detached HEAD state")
	}
	return head.Name().Short(), nil
}

// Stage adds the given repository-relative paths to the index, skipping
// any that do not exist in the worktree. It returns the paths actually
// staged, in argument order.
func (r *Repo) Stage(paths ...string) ([]string, error) {
	var staged []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(r.root, p)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return staged, fmt.Errorf("stat %s: %w", p, err)
		}
		if _, err := r.worktree.Add(filepath.ToSlash(p)); err != nil {
			return staged, fmt.Errorf("stage %s: %w", p, err)
		}
		staged = append(staged, p)
	}
	return staged, nil
}

// StagedFile is one path with staged changes and its porcelain status code
// (A added, M modified, D deleted).
type StagedFile struct {
	Path string
	Code string
}

// StagedPaths returns the files with changes staged in the index, sorted by
// path.
func (r *Repo) StagedPaths() ([]StagedFile, error) {
	status, err := r.worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("read worktree status: %w", err)
	}
	var files []StagedFile
	for path, st := range status {
		if st.Staging != git.Untracked && st.Staging != git.Unmodified {
			files = append(files, StagedFile{Path: path, Code: string(rune(st.Staging))})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Commit records the staged changes with msg, taking author and committer
// from git configuration. Committing with a clean index is an error.
func (r *Repo) Commit(msg string) (string, error) {
	who, err := r.identity()
	if err != nil {
		return "", err
	}
	hash, err := r.worktree.Commit(msg, &git.CommitOptions{
		Author:    who,
		Committer: who,
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return hash.String(), nil
}

// HeadContent returns the content of path at HEAD. The found flag is false
// when the file does not exist in the HEAD tree, which is not an error.
func (r *Repo) HeadContent(path string) (content string, found bool, err error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", false, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return "", false, fmt.Errorf("load HEAD commit: %w", err)
	}
	file, err := commit.File(filepath.ToSlash(path))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load %s at HEAD: %w", path, err)
	}
	content, err = file.Contents()
	if err != nil {
		return "", false, fmt.Errorf("read %s at HEAD: %w", path, err)
	}
	return content, true, nil
}

// WorkingContent returns the current worktree content of path. The found
// flag is false when the file does not exist.
func (r *Repo) WorkingContent(path string) (content string, found bool, err error) {
	data, err := os.ReadFile(filepath.Join(r.root, path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), true, nil
}

func (r *Repo) identity() (*object.Signature, error) {
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return nil, fmt.Errorf("read git config: %w", err)
	}
	if cfg.User.Name == "" || cfg.User.Email == "" {
		return nil, errors.New("git user.name and user.email must be set to commit")
	}
	return &object.Signature{
		Name:  cfg.User.Name,
		Email: cfg.User.Email,
		When:  time.Now(),
	}, nil
}
