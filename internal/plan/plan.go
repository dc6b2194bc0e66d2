package plan

import (
	"sort"
	"strings"

	"github.com/gitutil/trim/internal/filter"
	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/snapshot"
)

// Plan is the ordered sequence of mutations the Executor will apply.
type Plan struct {
	// DetachTo, if non-nil, is the commit HEAD should be detached to
	// before any deletion runs, because the checked-out branch is about
	// to be deleted.
	DetachTo *git.Hash

	// Steps runs in order: batched remote pushes first, then
	// remote-tracking cleanup, then local branch deletions — so a
	// failed push still leaves the local tracking ref in place for a
	// retry, and a failed tracking-ref cleanup still leaves the local
	// branch itself in place.
	Steps []Mutation
}

// Build turns the refs that survived Filter & Protect into a Plan.
// detachEnabled mirrors trim.detach; when the checked-out branch is
// selected for deletion and detachEnabled is true, a detach step targets
// the tip of the first resolved base, falling back to HEAD's own commit
// if no base is available.
func Build(snap *snapshot.Snapshot, selected []filter.Candidate, detachEnabled bool) *Plan {
	ordered := make([]filter.Candidate, len(selected))
	copy(ordered, selected)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Ref < ordered[j].Ref })

	p := &Plan{}

	if detachEnabled && !snap.Detached {
		for _, c := range ordered {
			if !c.Head {
				continue
			}
			to := headCommit(snap)
			if len(snap.Bases) > 0 {
				if base, ok := snap.Branches[snap.Bases[0]]; ok {
					to = base.Hash
				}
			}
			p.DetachTo = &to
			break
		}
	}

	byRemote := make(map[string][]string)
	var remotes []string
	var remoteTracking []Mutation
	var local []Mutation

	for _, c := range ordered {
		switch {
		case isLocalRef(c.Ref):
			local = append(local, DeleteLocal{Name: c.Name})
		case isRemoteRef(c.Ref):
			if _, seen := byRemote[c.Remote]; !seen {
				remotes = append(remotes, c.Remote)
			}
			byRemote[c.Remote] = append(byRemote[c.Remote], c.Name)
			remoteTracking = append(remoteTracking, DeleteRemoteTracking{Remote: c.Remote, Name: c.Name})
		}
	}

	for _, remote := range remotes {
		p.Steps = append(p.Steps, DeleteRemote{Remote: remote, Names: byRemote[remote]})
	}
	p.Steps = append(p.Steps, remoteTracking...)
	p.Steps = append(p.Steps, local...)

	return p
}

func headCommit(snap *snapshot.Snapshot) git.Hash {
	if snap.HeadBranch == "" {
		return ""
	}
	return snap.Branches[snap.HeadBranch].Hash
}

func isLocalRef(ref string) bool  { return strings.HasPrefix(ref, "refs/heads/") }
func isRemoteRef(ref string) bool { return strings.HasPrefix(ref, "refs/remotes/") }
