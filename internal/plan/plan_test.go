package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitutil/trim/internal/classify"
	"github.com/gitutil/trim/internal/filter"
	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/plan"
	"github.com/gitutil/trim/internal/snapshot"
)

func TestBuild_OrderingAndBatching(t *testing.T) {
	snap := &snapshot.Snapshot{
		Branches: map[string]snapshot.LocalBranch{
			"master": {Name: "master", Hash: "master-hash"},
		},
		Bases: []string{"master"},
	}

	selected := []filter.Candidate{
		{Ref: "refs/heads/a", Tag: classify.MergedLocal, Name: "a"},
		{Ref: "refs/remotes/origin/a", Tag: classify.MergedRemote, Name: "a", Remote: "origin"},
		{Ref: "refs/remotes/origin/b", Tag: classify.MergedRemoteTracking, Name: "b", Remote: "origin"},
	}

	p := plan.Build(snap, selected, true)
	require.Len(t, p.Steps, 4) // one batched push + 2 remote-tracking cleanups + 1 local delete

	push, ok := p.Steps[0].(plan.DeleteRemote)
	require.True(t, ok, "first step should be the batched remote push")
	assert.Equal(t, "origin", push.Remote)
	assert.ElementsMatch(t, []string{"a", "b"}, push.Names)

	// remote-tracking cleanups next
	assert.IsType(t, plan.DeleteRemoteTracking{}, p.Steps[1])
	assert.IsType(t, plan.DeleteRemoteTracking{}, p.Steps[2])

	// local deletion last
	last, ok := p.Steps[3].(plan.DeleteLocal)
	require.True(t, ok)
	assert.Equal(t, "a", last.Name)

	assert.Nil(t, p.DetachTo, "HEAD wasn't among the selected candidates")
}

func TestBuild_DetachToFirstBase(t *testing.T) {
	snap := &snapshot.Snapshot{
		HeadBranch: "feature",
		Branches: map[string]snapshot.LocalBranch{
			"master":  {Name: "master", Hash: "master-hash"},
			"feature": {Name: "feature", Hash: "feature-hash"},
		},
		Bases: []string{"master"},
	}

	selected := []filter.Candidate{
		{Ref: "refs/heads/feature", Tag: classify.MergedLocal, Name: "feature", Head: true},
	}

	p := plan.Build(snap, selected, true)
	require.NotNil(t, p.DetachTo)
	assert.Equal(t, git.Hash("master-hash"), *p.DetachTo)
}

func TestBuild_NoDetachWhenDisabled(t *testing.T) {
	snap := &snapshot.Snapshot{
		HeadBranch: "feature",
		Branches: map[string]snapshot.LocalBranch{
			"feature": {Name: "feature", Hash: "feature-hash"},
		},
		Bases: []string{},
	}

	selected := []filter.Candidate{
		{Ref: "refs/heads/feature", Tag: classify.MergedLocal, Name: "feature", Head: true},
	}

	p := plan.Build(snap, selected, false)
	assert.Nil(t, p.DetachTo)
}

func TestBuild_NoDetachWhenHeadDetached(t *testing.T) {
	snap := &snapshot.Snapshot{
		Detached: true,
		Branches: map[string]snapshot.LocalBranch{
			"feature": {Name: "feature", Hash: "feature-hash"},
		},
	}

	selected := []filter.Candidate{
		{Ref: "refs/heads/feature", Tag: classify.MergedLocal, Name: "feature"},
	}

	p := plan.Build(snap, selected, true)
	assert.Nil(t, p.DetachTo)
}

func TestMutation_RefsForDryRun(t *testing.T) {
	m := plan.DeleteRemote{Remote: "origin", Names: []string{"a", "b"}}
	assert.ElementsMatch(t, []string{"refs/remotes/origin/a", "refs/remotes/origin/b"}, m.Refs())
	assert.Equal(t, "delete-remote", m.Op())
}
