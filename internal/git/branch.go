package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

// LocalBranches lists the local branches in the repository.
func (r *Repository) LocalBranches(ctx context.Context) ([]string, error) {
	cmd := r.gitCmd(ctx, "branch", "--list")
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("git branch: %w", err)
	}

	if err := cmd.Start(r.exec); err != nil {
		return nil, fmt.Errorf("start git branch: %w", err)
	}

	var branches []string
	scan := bufio.NewScanner(out)
	for scan.Scan() {
		line := bytes.TrimSpace(scan.Bytes())
		if len(line) == 0 {
			continue
		}

		switch line[0] {
		case '(':
			continue // (HEAD detached at ...)
		case '*', '+':
			// Current branch, or checked out in another worktree.
			branches = append(branches, string(bytes.TrimSpace(line[1:])))
		default:
			branches = append(branches, string(line))
		}
	}

	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	if err := cmd.Wait(r.exec); err != nil {
		return nil, fmt.Errorf("git branch: %w", err)
	}

	return branches, nil
}

// CurrentBranch reports the current branch name.
// It returns [ErrDetachedHead] if the repository is in detached HEAD state.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	name, err := r.gitCmd(ctx, "branch", "--show-current").OutputString(r.exec)
	if err != nil {
		return "", fmt.Errorf("git branch --show-current: %w", err)
	}
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return "", ErrDetachedHead
	}
	return name, nil
}

// DetachHead detaches HEAD from the current branch while staying at the
// same commit, or at commitish if given.
func (r *Repository) DetachHead(ctx context.Context, commitish string) error {
	args := []string{"checkout", "--detach"}
	if commitish != "" {
		args = append(args, commitish)
	}
	if err := r.gitCmd(ctx, args...).Run(r.exec); err != nil {
		return fmt.Errorf("git checkout --detach: %w", err)
	}
	return nil
}

// BranchDeleteOptions specifies options for deleting a local branch.
type BranchDeleteOptions struct {
	// Force deletes the branch even if it isn't fully merged
	// into its upstream or HEAD.
	Force bool
}

// DeleteBranch deletes a local branch.
func (r *Repository) DeleteBranch(ctx context.Context, branch string, opts BranchDeleteOptions) error {
	args := []string{"branch", "--delete"}
	if opts.Force {
		args = append(args, "--force")
	}
	if err := r.gitCmd(ctx, append(args, branch)...).Run(r.exec); err != nil {
		return fmt.Errorf("git branch --delete: %w", err)
	}
	return nil
}

// BranchUpstream reports the upstream ref of a local branch, in the form
// "remote/branch". It returns [ErrNotExist] if the branch has no upstream
// configured.
func (r *Repository) BranchUpstream(ctx context.Context, branch string) (string, error) {
	return r.branchAbbrevRef(ctx, branch+"@{upstream}")
}

// BranchPushTarget reports the push target of a local branch, in the form
// "remote/branch". This is usually the same as its upstream, but may
// differ in a triangular workflow (fetch from one remote, push to
// another). It returns [ErrNotExist] if no push target can be resolved.
func (r *Repository) BranchPushTarget(ctx context.Context, branch string) (string, error) {
	return r.branchAbbrevRef(ctx, branch+"@{push}")
}

func (r *Repository) branchAbbrevRef(ctx context.Context, revision string) (string, error) {
	ref, err := r.gitCmd(ctx,
		"rev-parse",
		"--abbrev-ref",
		"--verify",
		"--quiet",
		"--end-of-options",
		revision,
	).OutputString(r.exec)
	if err != nil {
		return "", ErrNotExist
	}
	return ref, nil
}
