package git

import (
	"context"
	"fmt"
)

// DeleteRefOptions configures [Repository.DeleteRef].
type DeleteRefOptions struct {
	// OldHash, if set, requires that the ref currently points to this
	// hash; the deletion is rejected otherwise, guarding against
	// deleting a ref that moved since it was last observed.
	OldHash Hash
}

// DeleteRef removes a single ref from the repository's local ref
// database, e.g. "refs/remotes/origin/feature" for a stale
// remote-tracking branch.
func (r *Repository) DeleteRef(ctx context.Context, ref string, opts DeleteRefOptions) error {
	args := []string{"update-ref", "-d", ref}
	if opts.OldHash != "" {
		args = append(args, string(opts.OldHash))
	}
	if err := r.gitCmd(ctx, args...).Run(r.exec); err != nil {
		return fmt.Errorf("git update-ref -d %s: %w", ref, err)
	}
	return nil
}
