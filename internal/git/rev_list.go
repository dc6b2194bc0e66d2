package git

import (
	"bufio"
	"context"
	"errors"
	"fmt"
)

// RevList iterates over commit hashes in a repository.
//
// Use it like a bufio.Scanner:
//
//	revs, err := repo.ListCommits(ctx, tip, base)
//	for revs.Next() {
//		hash := revs.Hash()
//	}
//	if err := revs.Err(); err != nil { ... }
type RevList struct {
	cmd  *gitCmd
	out  *bufio.Scanner
	err  error
	exec execer
}

// Next reports whether there is another commit in the list.
func (r *RevList) Next() bool {
	if r.out.Scan() {
		return true
	}

	if err := r.out.Err(); err != nil {
		r.err = r.cmd.Kill(r.exec)
		return false
	}

	r.err = r.cmd.Wait(r.exec)
	return false
}

// Hash returns the commit hash at the current position.
// Next must have been called and returned true before this.
func (r *RevList) Hash() Hash {
	return Hash(r.out.Text())
}

// Err returns errors encountered while iterating
// or waiting for the command to exit.
func (r *RevList) Err() error {
	return errors.Join(r.err, r.out.Err())
}

// ListCommits lists commits reachable from start but not from stop,
// i.e. "git rev-list start --not stop". Used to walk a branch tip's
// history up to (but not including) a base.
func (r *Repository) ListCommits(ctx context.Context, start, stop Hash) (*RevList, error) {
	cmd := r.gitCmd(ctx, "rev-list", string(start), "--not", string(stop))
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe stdout: %w", err)
	}

	if err := cmd.Start(r.exec); err != nil {
		return nil, fmt.Errorf("start git rev-list: %w", err)
	}

	return &RevList{
		cmd:  cmd,
		out:  bufio.NewScanner(out),
		exec: r.exec,
	}, nil
}

// CommitsBetween lists, as a slice, the commits reachable from tip but
// not from base. It's a convenience wrapper around ListCommits for
// callers that don't need streaming.
func (r *Repository) CommitsBetween(ctx context.Context, tip, base Hash) ([]Hash, error) {
	revs, err := r.ListCommits(ctx, tip, base)
	if err != nil {
		return nil, err
	}

	var hashes []Hash
	for revs.Next() {
		hashes = append(hashes, revs.Hash())
	}
	if err := revs.Err(); err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	return hashes, nil
}
