package executor_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitutil/trim/internal/executor"
	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/plan"
)

type fakeRepo struct {
	deletedBranches []string
	deletedRefs     []string
	pushedDeletes   map[string][]string
	detachedTo      string

	failBranch string // DeleteBranch fails for this name
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{pushedDeletes: make(map[string][]string)}
}

func (f *fakeRepo) DeleteBranch(_ context.Context, branch string, _ git.BranchDeleteOptions) error {
	if branch == f.failBranch {
		return errors.New("simulated failure")
	}
	f.deletedBranches = append(f.deletedBranches, branch)
	return nil
}

func (f *fakeRepo) DeleteRef(_ context.Context, ref string, _ git.DeleteRefOptions) error {
	f.deletedRefs = append(f.deletedRefs, ref)
	return nil
}

func (f *fakeRepo) DeleteRemoteRefs(_ context.Context, remote string, branches ...string) error {
	f.pushedDeletes[remote] = append(f.pushedDeletes[remote], branches...)
	return nil
}

func (f *fakeRepo) DetachHead(_ context.Context, commitish string) error {
	f.detachedTo = commitish
	return nil
}

func samplePlan() *plan.Plan {
	return &plan.Plan{
		Steps: []plan.Mutation{
			plan.DeleteRemote{Remote: "origin", Names: []string{"feature"}},
			plan.DeleteRemoteTracking{Remote: "origin", Name: "feature"},
			plan.DeleteLocal{Name: "feature"},
		},
	}
}

func TestRun_DryRunAppliesNothing(t *testing.T) {
	repo := newFakeRepo()
	var out bytes.Buffer

	result, err := executor.Run(t.Context(), repo, samplePlan(), executor.Options{
		DryRun: true,
		Stdout: &out,
	})
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Empty(t, repo.deletedBranches)
	assert.Contains(t, out.String(), "delete-local refs/heads/feature")
	assert.Contains(t, out.String(), "delete-remote refs/remotes/origin/feature")
	assert.Contains(t, out.String(), "delete-remote-tracking refs/remotes/origin/feature")
}

func TestRun_DryRunOutputSortedByRef(t *testing.T) {
	var out bytes.Buffer
	p := &plan.Plan{
		Steps: []plan.Mutation{
			plan.DeleteLocal{Name: "zzz"},
			plan.DeleteLocal{Name: "aaa"},
		},
	}

	_, err := executor.Run(t.Context(), newFakeRepo(), p, executor.Options{DryRun: true, Stdout: &out})
	require.NoError(t, err)

	lines := out.String()
	aIdx := indexOf(lines, "refs/heads/aaa")
	zIdx := indexOf(lines, "refs/heads/zzz")
	require.GreaterOrEqual(t, aIdx, 0)
	require.GreaterOrEqual(t, zIdx, 0)
	assert.Less(t, aIdx, zIdx, "aaa should sort before zzz")
}

func TestRun_AppliesSequentiallyAndDetaches(t *testing.T) {
	repo := newFakeRepo()
	to := git.Hash("masterhash")
	p := samplePlan()
	p.DetachTo = &to

	result, err := executor.Run(t.Context(), repo, p, executor.Options{})
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "masterhash", repo.detachedTo)
	assert.Equal(t, []string{"feature"}, repo.deletedBranches)
	assert.Equal(t, []string{"refs/remotes/origin/feature"}, repo.deletedRefs)
	assert.Equal(t, []string{"feature"}, repo.pushedDeletes["origin"])
}

func TestRun_ContinuesPastFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failBranch = "feature"

	result, err := executor.Run(t.Context(), repo, samplePlan(), executor.Options{})
	require.NoError(t, err)
	assert.False(t, result.Success())
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "delete-local", result.Failures[0].Op)

	// the other two steps still ran
	assert.Equal(t, []string{"refs/remotes/origin/feature"}, repo.deletedRefs)
	assert.Equal(t, []string{"feature"}, repo.pushedDeletes["origin"])
}

func TestRun_ConfirmSkippedWhenNotInteractive(t *testing.T) {
	repo := newFakeRepo()

	result, err := executor.Run(t.Context(), repo, samplePlan(), executor.Options{
		Confirm: true,
		IsTTY:   func() bool { return false },
	})
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, []string{"feature"}, repo.deletedBranches)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
