package classify

import (
	"context"

	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/maputil"
	"github.com/gitutil/trim/internal/mergeoracle"
	"github.com/gitutil/trim/internal/snapshot"
)

// Classification is one ref's terminal classification.
type Classification struct {
	// Tag is the ref's classification.
	Tag Tag

	// Head reports whether this ref is the branch HEAD currently points
	// to. The Planner uses this to decide whether a detach step is
	// needed; it does not itself change Tag.
	Head bool
}

// Result holds one Classification per ref in the snapshot, keyed by its
// fully-qualified ref name (e.g. "refs/heads/feature",
// "refs/remotes/origin/feature").
type Result struct {
	Refs map[string]Classification
}

// Tag returns ref's classification, or Kept if ref is unknown.
func (r *Result) Tag(ref string) Tag {
	return r.Refs[ref].Tag
}

func localRefName(name string) string              { return "refs/heads/" + name }
func remoteRefName(b snapshot.RemoteBranch) string { return b.RefName() }

// Classify computes one terminal classification per ref in snap, using
// oracle to answer merge questions. It is deterministic given snap and
// oracle's answers: it never depends on the order branches are visited in,
// nor on how many workers produced those answers.
func Classify(ctx context.Context, snap *snapshot.Snapshot, oracle *mergeoracle.Oracle) (*Result, error) {
	result := &Result{Refs: make(map[string]Classification, len(snap.Branches)+len(snap.RemoteBranches))}

	baseHashes := make([]git.Hash, 0, len(snap.BaseUpstreams))
	for _, up := range snap.BaseUpstreams {
		baseHashes = append(baseHashes, up.Hash)
	}

	// Every tip this run will ask the oracle about, against every base,
	// is known up front from the snapshot alone. Evaluating them all in
	// one EvaluateAll call lets the oracle's worker pool run the git
	// plumbing concurrently; every IsMerged call below is then a cache
	// hit instead of a fresh detector run.
	oracle.EvaluateAll(ctx, pairsToEvaluate(snap, baseHashes))

	mergedIntoAnyBase := func(tip git.Hash) bool {
		for _, base := range baseHashes {
			if oracle.IsMerged(ctx, tip, base) {
				return true
			}
		}
		return false
	}

	followedRemotes := make(map[string]bool, len(snap.Branches))

	for name, branch := range snap.Branches {
		ref := localRefName(name)
		head := snap.IsHead(name)

		if snap.IsBase(name) {
			result.Refs[ref] = Classification{Tag: Kept, Head: head}
			continue
		}

		if !branch.HasUpstream() {
			tag := Kept
			if mergedIntoAnyBase(branch.Hash) {
				tag = MergedNonTracking
			}
			result.Refs[ref] = Classification{Tag: tag, Head: head}
			continue
		}

		// The remote side of the joint classification is the branch's
		// push target where one is configured (triangular workflow);
		// the fetch upstream itself is only ever used as a base's own
		// comparison target, never as the "R" in this branch's pair.
		trackRef := branch.Upstream
		if branch.PushTarget != "" {
			trackRef = branch.PushTarget
		}
		followedRemotes[trackRef] = true

		remote, exists := snap.RemoteBranches[trackRef]
		mergedLocal := mergedIntoAnyBase(branch.Hash)
		mergedRemote := exists && mergedIntoAnyBase(remote.Hash)

		outcome := jointOutcomeOf(exists, mergedLocal, mergedRemote)
		result.Refs[ref] = Classification{Tag: outcome.Local(), Head: head}

		if exists {
			remoteTag, ok := outcome.Remote()
			if ok {
				result.Refs[remoteRefName(remote)] = Classification{Tag: remoteTag}
			}
		}
	}

	for key, remote := range snap.RemoteBranches {
		ref := remoteRefName(remote)
		if followedRemotes[key] {
			continue // already classified jointly with its local follower
		}
		if isBaseUpstream(snap, remote) {
			result.Refs[ref] = Classification{Tag: Kept}
			continue
		}

		tag := Kept
		if mergedIntoAnyBase(remote.Hash) {
			tag = MergedRemoteTracking
		}
		result.Refs[ref] = Classification{Tag: tag}
	}

	return result, nil
}

// pairsToEvaluate lists every (tip, base) pair Classify will ask the
// oracle about: every local branch's tip and every remote-tracking
// branch's tip, each against every resolved base.
func pairsToEvaluate(snap *snapshot.Snapshot, baseHashes []git.Hash) []mergeoracle.Pair {
	tips := make(map[git.Hash]bool, len(snap.Branches)+len(snap.RemoteBranches))
	for _, branch := range snap.Branches {
		tips[branch.Hash] = true
	}
	for _, remote := range snap.RemoteBranches {
		tips[remote.Hash] = true
	}

	pairs := make([]mergeoracle.Pair, 0, len(tips)*len(baseHashes))
	for _, tip := range maputil.Keys(tips) {
		for _, base := range baseHashes {
			pairs = append(pairs, mergeoracle.Pair{Tip: tip, Base: base})
		}
	}
	return pairs
}

// isBaseUpstream reports whether remote is the remote-tracking branch one
// of the resolved bases is compared against; such refs are always Kept,
// never evaluated for merge status against themselves.
func isBaseUpstream(snap *snapshot.Snapshot, remote snapshot.RemoteBranch) bool {
	for _, up := range snap.BaseUpstreams {
		if up.Remote == remote.Remote && up.Name == remote.Name {
			return true
		}
	}
	return false
}
