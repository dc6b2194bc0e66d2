package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

// PatchID is the stable patch identifier Git computes for a diff,
// via "git patch-id --stable". Two commits that introduce the same
// textual change (as when one is a squash of the other) share a PatchID
// even though their tree and commit hashes differ.
type PatchID string

// CommitPatchID computes the patch-id of the diff introduced by a single
// commit, i.e. the diff between commit and its first parent.
//
// It returns [ErrNotExist] if the commit introduces no change (e.g. an
// empty commit). A commit with no parent (e.g. a root commit) has no
// single-parent diff to identify, and yields the git diff-tree error.
func (r *Repository) CommitPatchID(ctx context.Context, commit Hash) (PatchID, error) {
	return r.diffPatchID(ctx, string(commit)+"^", string(commit))
}

// RangePatchID computes the combined patch-id of every commit reachable
// from tip but not from base, i.e. the diff a squash-merge of that range
// would introduce against base.
func (r *Repository) RangePatchID(ctx context.Context, tip, base Hash) (PatchID, error) {
	return r.diffPatchID(ctx, string(base), string(tip))
}

func (r *Repository) diffPatchID(ctx context.Context, from, to string) (PatchID, error) {
	diffCmd := r.gitCmd(ctx, "diff-tree", "-p", "--no-color", "--full-index", from, to)
	diffOut, err := diffCmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("pipe diff-tree stdout: %w", err)
	}

	if err := diffCmd.Start(r.exec); err != nil {
		return "", fmt.Errorf("start git diff-tree: %w", err)
	}

	patchIDCmd := r.gitCmd(ctx, "patch-id", "--stable")
	patchIDCmd.Stdin(diffOut)
	out, err := patchIDCmd.Output(r.exec)
	if err != nil {
		_ = diffCmd.Kill(r.exec)
		return "", fmt.Errorf("git patch-id: %w", err)
	}

	if werr := diffCmd.Wait(r.exec); werr != nil {
		return "", fmt.Errorf("git diff-tree: %w", werr)
	}

	id, ok := firstField(out)
	if !ok {
		// No output means an empty diff (e.g. an empty commit).
		return "", ErrNotExist
	}
	return PatchID(id), nil
}

func firstField(out []byte) (string, bool) {
	scan := bufio.NewScanner(bytes.NewReader(out))
	if !scan.Scan() {
		return "", false
	}
	fields := strings.Fields(scan.Text())
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}
