// Package mergeoracle answers, for a pair of commit tips, whether one's
// content is already integrated into the other, under any of the three
// commonly used integration styles: ancestor (fast-forward/rebase),
// merge-commit, and squash.
package mergeoracle

import (
	"context"

	"github.com/gitutil/trim/internal/git"
)

// GitRepository is the subset of git.Repository's API the detectors need.
type GitRepository interface {
	IsAncestor(ctx context.Context, a, b git.Hash) bool
	MergeBase(ctx context.Context, a, b git.Hash) (git.Hash, error)
	CommitsBetween(ctx context.Context, tip, base git.Hash) ([]git.Hash, error)
	CommitParents(ctx context.Context, commit git.Hash) ([]git.Hash, error)
	CommitPatchID(ctx context.Context, commit git.Hash) (git.PatchID, error)
}

var _ GitRepository = (*git.Repository)(nil)

// Detector answers whether tip's content is already present in base.
// Implementations may return a non-nil error for object-missing or other
// repository read failures; callers treat an error the same as "not
// merged" (per the source's conservative-on-error rule) but still
// surface it for logging.
type Detector interface {
	IsMerged(ctx context.Context, repo GitRepository, tip, base git.Hash) (bool, error)
}

// ancestorDetector implements the classic merge / fast-forward test:
// tip is merged into base if it's an ancestor of (or equal to) base.
type ancestorDetector struct{}

func (ancestorDetector) IsMerged(ctx context.Context, repo GitRepository, tip, base git.Hash) (bool, error) {
	return repo.IsAncestor(ctx, tip, base), nil
}

// mergeCommitDetector catches non-fast-forward merges: it walks base's
// ancestry from the merge-base of (tip, base) upward, and for every
// merge commit on that walk, tests whether tip is an ancestor of one of
// its parents. This finds the case where tip's history was rewritten
// onto a merge commit's second parent.
type mergeCommitDetector struct{}

func (mergeCommitDetector) IsMerged(ctx context.Context, repo GitRepository, tip, base git.Hash) (bool, error) {
	mergeBase, err := repo.MergeBase(ctx, tip, base)
	if err != nil {
		return false, &ObjectError{Op: "merge-base", Err: err}
	}

	commits, err := repo.CommitsBetween(ctx, base, mergeBase)
	if err != nil {
		return false, &ObjectError{Op: "walk base ancestry", Err: err}
	}

	for _, c := range commits {
		parents, err := repo.CommitParents(ctx, c)
		if err != nil {
			return false, &ObjectError{Op: "read commit parents", Err: err}
		}
		if len(parents) < 2 {
			continue // not a merge commit
		}
		for _, p := range parents {
			if repo.IsAncestor(ctx, tip, p) {
				return true, nil
			}
		}
	}
	return false, nil
}

// squashDetector catches squash merges: it compares the patch-id
// multiset of every commit on merge-base(tip,base)..tip against that of
// merge-base(tip,base)..base. tip is merged if every one of its
// patch-ids appears at least once on the base side.
type squashDetector struct{}

func (squashDetector) IsMerged(ctx context.Context, repo GitRepository, tip, base git.Hash) (bool, error) {
	mergeBase, err := repo.MergeBase(ctx, tip, base)
	if err != nil {
		return false, &ObjectError{Op: "merge-base", Err: err}
	}

	tipCommits, err := repo.CommitsBetween(ctx, tip, mergeBase)
	if err != nil {
		return false, &ObjectError{Op: "walk tip range", Err: err}
	}
	if len(tipCommits) == 0 {
		// Already handled by the ancestor test; nothing to prove here.
		return true, nil
	}

	baseCommits, err := repo.CommitsBetween(ctx, base, mergeBase)
	if err != nil {
		return false, &ObjectError{Op: "walk base range", Err: err}
	}

	basePatchIDs := make(map[git.PatchID]struct{}, len(baseCommits))
	for _, c := range baseCommits {
		id, err := repo.CommitPatchID(ctx, c)
		if err != nil {
			continue // empty commit or unreadable diff; not a candidate match
		}
		basePatchIDs[id] = struct{}{}
	}

	for _, c := range tipCommits {
		id, err := repo.CommitPatchID(ctx, c)
		if err != nil {
			return false, &ObjectError{Op: "compute patch-id", Err: err}
		}
		if _, ok := basePatchIDs[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// defaultDetectors runs, in order, the cheapest tests first: ancestor,
// then merge-commit, then the expensive squash test.
var defaultDetectors = []Detector{
	ancestorDetector{},
	mergeCommitDetector{},
	squashDetector{},
}
