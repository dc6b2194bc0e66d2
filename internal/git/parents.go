package git

import (
	"context"
	"fmt"
	"strings"
)

// CommitParents lists the parent hashes of a commit, in parent order.
// A merge commit has two or more; a root commit has none.
func (r *Repository) CommitParents(ctx context.Context, commit Hash) ([]Hash, error) {
	out, err := r.gitCmd(ctx, "rev-list", "--parents", "-n", "1", string(commit)).OutputString(r.exec)
	if err != nil {
		return nil, fmt.Errorf("git rev-list --parents: %w", err)
	}

	fields := strings.Fields(out)
	if len(fields) == 0 {
		return nil, ErrNotExist
	}

	parents := make([]Hash, 0, len(fields)-1)
	for _, f := range fields[1:] {
		parents = append(parents, Hash(f))
	}
	return parents, nil
}
