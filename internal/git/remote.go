package git

import (
	"bufio"
	"context"
	"fmt"
	"iter"
	"strings"
)

// ListRemotes returns the names of remotes configured for the repository.
func (r *Repository) ListRemotes(ctx context.Context) ([]string, error) {
	cmd := r.gitCmd(ctx, "remote")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe stdout: %w", err)
	}

	if err := cmd.Start(r.exec); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	var remotes []string
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		remotes = append(remotes, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	if err := cmd.Wait(r.exec); err != nil {
		return nil, fmt.Errorf("git remote: %w", err)
	}

	return remotes, nil
}

// RemoteDefaultBranch reports the default branch of a remote,
// as recorded in its "refs/remotes/<remote>/HEAD" symref.
// It returns [ErrNotExist] if the symref is missing or broken.
func (r *Repository) RemoteDefaultBranch(ctx context.Context, remote string) (string, error) {
	ref, err := r.gitCmd(
		ctx, "symbolic-ref", "--short", "--quiet", "refs/remotes/"+remote+"/HEAD",
	).OutputString(r.exec)
	if err != nil {
		return "", ErrNotExist
	}

	ref = strings.TrimPrefix(ref, remote+"/")
	return ref, nil
}

// RemoteRef is a reference observed in a remote Git repository.
type RemoteRef struct {
	// Name is the full name of the reference, e.g. "refs/heads/main".
	Name string

	// Hash is the object the reference points to.
	Hash Hash
}

// ListRemoteRefs lists references in a remote's local tracking namespace,
// i.e. the refs Git already fetched under "refs/remotes/<remote>/".
func (r *Repository) ListRemoteRefs(ctx context.Context, remote string) iter.Seq2[RemoteRef, error] {
	pattern := "refs/remotes/" + remote + "/"
	args := []string{"for-each-ref", "--format=%(objectname)\t%(refname)", pattern}

	return func(yield func(RemoteRef, error) bool) {
		cmd := r.gitCmd(ctx, args...)
		out, err := cmd.StdoutPipe()
		if err != nil {
			yield(RemoteRef{}, fmt.Errorf("pipe stdout: %w", err))
			return
		}

		if err := cmd.Start(r.exec); err != nil {
			yield(RemoteRef{}, fmt.Errorf("start: %w", err))
			return
		}
		var finished bool
		defer func() {
			if !finished {
				_ = cmd.Kill(r.exec)
			}
		}()

		scanner := bufio.NewScanner(out)
		for scanner.Scan() {
			line := scanner.Text()
			oid, ref, ok := strings.Cut(line, "\t")
			if !ok {
				r.log.Warnf("skipping malformed for-each-ref line: %q", line)
				continue
			}

			// for-each-ref includes the remote's own HEAD symref;
			// exclude it since it doesn't name a branch.
			if strings.HasSuffix(ref, "/HEAD") {
				continue
			}

			if !yield(RemoteRef{Name: ref, Hash: Hash(oid)}, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(RemoteRef{}, fmt.Errorf("scan: %w", err))
			return
		}

		if err := cmd.Wait(r.exec); err != nil {
			yield(RemoteRef{}, fmt.Errorf("git for-each-ref: %w", err))
			return
		}

		finished = true
	}
}

// UpdatePrune runs "git remote update --prune", fetching from every
// configured remote and removing remote-tracking refs whose upstream
// branch is gone.
func (r *Repository) UpdatePrune(ctx context.Context) error {
	if err := r.gitCmd(ctx, "remote", "update", "--prune").Run(r.exec); err != nil {
		return fmt.Errorf("git remote update --prune: %w", err)
	}
	return nil
}

// DeleteRemoteRefs deletes one or more branches from a remote repository
// in a single push, using one ":<branch>" refspec per branch.
func (r *Repository) DeleteRemoteRefs(ctx context.Context, remote string, branches ...string) error {
	if len(branches) == 0 {
		return nil
	}

	args := make([]string, 0, len(branches)+2)
	args = append(args, "push", remote)
	for _, branch := range branches {
		args = append(args, ":refs/heads/"+branch)
	}

	if err := r.gitCmd(ctx, args...).Run(r.exec); err != nil {
		return fmt.Errorf("git push %s (delete): %w", remote, err)
	}
	return nil
}
