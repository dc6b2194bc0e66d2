// Package snapshot builds a single, consistent, in-memory view of a
// repository's branches, remotes, and tracking relations, from which the
// rest of git-trim's pipeline works. Everything downstream of Build reads
// this immutable value; nothing re-queries the ref database until the
// Executor phase mutates it.
package snapshot

import "github.com/gitutil/trim/internal/git"

// LocalBranch describes a local branch and its tracking configuration.
type LocalBranch struct {
	// Name is the branch's short name, e.g. "feature".
	Name string

	// Hash is the commit the branch currently points to.
	Hash git.Hash

	// Upstream is the "remote/branch" form of the branch's fetch
	// upstream, or "" if it has none.
	Upstream string

	// PushTarget is the "remote/branch" form of the branch's push
	// target. It usually equals Upstream; in a triangular workflow
	// (fetch from one remote, push to another) it may differ. "" if
	// the branch has no resolvable push target.
	PushTarget string
}

// HasUpstream reports whether the branch has a fetch upstream configured.
func (b LocalBranch) HasUpstream() bool { return b.Upstream != "" }

// RemoteBranch describes a remote-tracking ref actually present in the
// snapshot, i.e. one Git has already fetched.
type RemoteBranch struct {
	// Remote is the name of the remote, e.g. "origin".
	Remote string

	// Name is the branch's short name under that remote, e.g. "feature".
	Name string

	// Hash is the commit the remote-tracking ref points to.
	Hash git.Hash
}

// FullName returns the branch's "remote/name" form, matching the form
// Git's "@{upstream}" and "@{push}" shorthands resolve to.
func (b RemoteBranch) FullName() string { return b.Remote + "/" + b.Name }

// RefName returns the branch's fully-qualified ref name,
// e.g. "refs/remotes/origin/feature".
func (b RemoteBranch) RefName() string { return "refs/remotes/" + b.Remote + "/" + b.Name }

// Snapshot is the consistent view of repository state the rest of the
// pipeline operates on.
type Snapshot struct {
	// HeadBranch is the name of the branch HEAD currently points to,
	// or "" if HEAD is detached.
	HeadBranch string

	// Detached reports whether HEAD is detached.
	Detached bool

	// Branches holds every local branch, keyed by short name.
	Branches map[string]LocalBranch

	// RemoteBranches holds every remote-tracking branch Git knows
	// about, keyed by its "remote/name" form.
	RemoteBranches map[string]RemoteBranch

	// Bases is the resolved, ordered set of base branch names.
	Bases []string

	// BaseUpstreams maps each base's name to the remote-tracking
	// branch it is compared against.
	BaseUpstreams map[string]RemoteBranch
}

// IsBase reports whether name is one of the resolved base branches.
func (s *Snapshot) IsBase(name string) bool {
	for _, b := range s.Bases {
		if b == name {
			return true
		}
	}
	return false
}

// IsHead reports whether name is the branch currently checked out.
func (s *Snapshot) IsHead(name string) bool {
	return !s.Detached && s.HeadBranch == name
}

// RemoteBranchFollower reports the local branch (if any) whose upstream
// is the given remote-tracking branch.
func (s *Snapshot) RemoteBranchFollower(remoteBranch string) (LocalBranch, bool) {
	for _, b := range s.Branches {
		if b.Upstream == remoteBranch {
			return b, true
		}
	}
	return LocalBranch{}, false
}
