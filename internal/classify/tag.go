// Package classify turns a repo snapshot and a merge oracle's answers into
// one terminal classification per ref. It is a pure function of its inputs:
// given the same snapshot and the same oracle answers, it always produces
// the same result, independent of how many workers the oracle used to
// produce them.
package classify

// Tag is a ref's terminal classification.
type Tag int

const (
	// Kept means none of the other tags apply; the ref is left alone.
	Kept Tag = iota

	// MergedLocal is a local branch whose content is merged into some
	// base's upstream.
	MergedLocal

	// MergedRemote is the upstream of a tracking local branch, itself
	// merged into some base's upstream.
	MergedRemote

	// MergedRemoteTracking is a remote-tracking branch with no local
	// follower, merged into some base's upstream.
	MergedRemoteTracking

	// MergedNonTracking is a local branch with no upstream, merged into
	// some base.
	MergedNonTracking

	// Stray is a local branch that tracks an upstream that has
	// disappeared, and is not itself merged.
	Stray

	// Diverged is a local branch merged into a base upstream whose
	// remote-tracking upstream has itself diverged and is not merged.
	Diverged
)

// String renders the tag's name in kebab case. Only some of these names
// (merged-local, merged-remote, stray, diverged) are also --delete tokens.
func (t Tag) String() string {
	switch t {
	case Kept:
		return "kept"
	case MergedLocal:
		return "merged-local"
	case MergedRemote:
		return "merged-remote"
	case MergedRemoteTracking:
		return "merged-remote-tracking"
	case MergedNonTracking:
		return "merged-non-tracking"
	case Stray:
		return "stray"
	case Diverged:
		return "diverged"
	default:
		return "unknown"
	}
}
