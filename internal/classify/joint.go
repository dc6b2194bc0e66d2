package classify

// JointOutcome is the tagged union of legal outcomes for a local branch
// that tracks a remote-tracking branch. Source treats the pair as a single
// unit to rule out asymmetric deletions (e.g. the remote side gone while
// the local still carries unmerged work); modeling it as one enum rather
// than two independently-settable Tags makes the illegal combinations
// unrepresentable instead of merely untested.
type JointOutcome int

const (
	// JointKept: local's content isn't merged into any base; both sides
	// are kept regardless of the remote side's own merge state.
	JointKept JointOutcome = iota

	// JointMerged: both local and remote-tracking tips are merged into
	// a base upstream.
	JointMerged

	// JointDiverged: local is merged into a base upstream, but its
	// remote-tracking upstream has moved and is no longer merged.
	JointDiverged

	// JointGoneMerged: the upstream-tracking ref no longer exists in the
	// snapshot (pruned), and local's content is merged into a base.
	JointGoneMerged

	// JointGoneStray: the upstream-tracking ref no longer exists in the
	// snapshot, and local's content is not merged into any base.
	JointGoneStray
)

// Local returns the Tag for the local side of this outcome.
func (j JointOutcome) Local() Tag {
	switch j {
	case JointMerged, JointGoneMerged:
		return MergedLocal
	case JointDiverged:
		return Diverged
	case JointGoneStray:
		return Stray
	default:
		return Kept
	}
}

// Remote returns the Tag for the remote-tracking side, and false if the
// remote-tracking ref no longer exists in the snapshot and so has no tag
// of its own (the JointGoneMerged/JointGoneStray cases).
func (j JointOutcome) Remote() (Tag, bool) {
	switch j {
	case JointMerged:
		return MergedRemote, true
	case JointDiverged:
		return Diverged, true
	case JointGoneMerged, JointGoneStray:
		return 0, false
	default:
		return Kept, true
	}
}

// jointOutcomeOf implements the decision table from the classifier's
// upstream branch, starting from the two questions it needs answered:
// does the remote-tracking ref still exist, and is the local tip merged
// (and, when the remote exists, is it merged too).
func jointOutcomeOf(remoteExists, mergedLocal, mergedRemote bool) JointOutcome {
	if !remoteExists {
		if mergedLocal {
			return JointGoneMerged
		}
		return JointGoneStray
	}
	switch {
	case mergedLocal && mergedRemote:
		return JointMerged
	case mergedLocal && !mergedRemote:
		return JointDiverged
	default:
		// !mergedLocal: local's own work is unaccounted for, so both
		// sides are kept even if the remote side happens to be merged.
		return JointKept
	}
}
