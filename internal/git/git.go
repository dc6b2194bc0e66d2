// Package git provides access to the Git CLI with a Git library-like
// interface.
//
// All shell-to-Git interactions used by git-trim go through this package.
// It is not a general-purpose Git library: only the plumbing needed to
// snapshot refs, walk ancestry, compute patch-ids, and mutate branches is
// exposed.
package git

import "errors"

// ErrNotExist is returned when a Git object or ref does not exist.
var ErrNotExist = errors.New("does not exist")

// ErrDetachedHead indicates that the repository is
// unexpectedly in detached HEAD state.
var ErrDetachedHead = errors.New("in detached HEAD state")
