package git

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gitutil/trim/internal/silog"
)

// OpenOptions configures the behavior of [Open].
type OpenOptions struct {
	// Log specifies the logger to use for messages.
	// If nil, messages are discarded.
	Log *silog.Logger

	exec execer
}

// Open opens the repository at the given directory.
// If dir is empty, the current working directory is used.
func Open(ctx context.Context, dir string, opts OpenOptions) (*Repository, error) {
	if opts.exec == nil {
		opts.exec = _realExec
	}
	if opts.Log == nil {
		opts.Log = silog.New(io.Discard, nil)
	}

	out, err := newGitCmd(ctx, opts.Log,
		"rev-parse",
		"--show-toplevel",
		"--absolute-git-dir",
	).Dir(dir).OutputString(opts.exec)
	if err != nil {
		return nil, fmt.Errorf("not a Git repository: %w", err)
	}

	root, gitDir, ok := strings.Cut(out, "\n")
	if !ok {
		return nil, fmt.Errorf("unexpected output from git rev-parse: %q", out)
	}

	return newRepository(root, gitDir, opts.Log, opts.exec), nil
}

// Repository is a handle to a Git repository, backed by shelling out
// to the git CLI. All of its methods are safe for concurrent use:
// a Repository holds no mutable state of its own, only the process
// plumbing needed to run git commands against a fixed root.
type Repository struct {
	root   string
	gitDir string

	log  *silog.Logger
	exec execer
}

func newRepository(root, gitDir string, log *silog.Logger, exec execer) *Repository {
	return &Repository{
		root:   root,
		gitDir: gitDir,
		log:    log,
		exec:   exec,
	}
}

// Root returns the absolute path to the repository's working tree.
func (r *Repository) Root() string { return r.root }

// GitDir returns the absolute path to the repository's Git directory
// (usually "<root>/.git").
func (r *Repository) GitDir() string { return r.gitDir }

// gitCmd returns a gitCmd that will run
// with the repository's root as the working directory.
func (r *Repository) gitCmd(ctx context.Context, args ...string) *gitCmd {
	return newGitCmd(ctx, r.log, args...).Dir(r.root)
}
