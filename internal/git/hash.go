package git

import (
	"context"
	"fmt"
	"log/slog"
)

// Hash is a Git object ID, usually the 40-character hex SHA-1
// (or 64-character SHA-256) of a commit, tree, or blob.
type Hash string

// ZeroHash is the all-zero hash Git uses to represent the absence
// of an object, e.g. as the old value of a ref being created.
const ZeroHash Hash = "0000000000000000000000000000000000000000"

// String returns the hash as a plain string.
func (h Hash) String() string { return string(h) }

// LogValue reports how the hash should be rendered in structured logs:
// its short form, to keep log lines readable.
func (h Hash) LogValue() slog.Value {
	return slog.StringValue(h.Short())
}

// Short reports the abbreviated form of the hash.
func (h Hash) Short() string {
	if len(h) < 7 {
		return string(h)
	}
	return string(h[:7])
}

// IsZero reports whether the hash is the zero hash.
// Abbreviated all-zero hashes also report true.
func (h Hash) IsZero() bool {
	if h == "" {
		return false
	}
	for _, b := range h {
		if b != '0' {
			return false
		}
	}
	return true
}

// PeelToCommit resolves the given commit-ish to the hash of the commit
// it refers to. It returns [ErrNotExist] if the object does not exist.
func (r *Repository) PeelToCommit(ctx context.Context, ref string) (Hash, error) {
	return r.revParse(ctx, ref+"^{commit}")
}

// MergeBase reports the best common ancestor of a and b.
func (r *Repository) MergeBase(ctx context.Context, a, b Hash) (Hash, error) {
	s, err := r.gitCmd(ctx, "merge-base", string(a), string(b)).OutputString(r.exec)
	if err != nil {
		return "", fmt.Errorf("merge-base: %w", err)
	}
	return Hash(s), nil
}

// IsAncestor reports whether a is an ancestor of (or equal to) b.
func (r *Repository) IsAncestor(ctx context.Context, a, b Hash) bool {
	return r.gitCmd(ctx,
		"merge-base", "--is-ancestor", string(a), string(b),
	).Run(r.exec) == nil
}

func (r *Repository) revParse(ctx context.Context, ref string) (Hash, error) {
	out, err := r.gitCmd(ctx, "rev-parse",
		"--verify",         // fail if the object does not exist
		"--quiet",          // no output if object does not exist
		"--end-of-options", // prevent ref from being treated as a flag
		ref,
	).OutputString(r.exec)
	if err != nil {
		return "", ErrNotExist
	}
	return Hash(out), nil
}
