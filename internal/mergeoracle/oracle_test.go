package mergeoracle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/mergeoracle"
)

type pair struct{ a, b git.Hash }

type fakeGit struct {
	isAncestor     map[pair]bool
	mergeBase      map[pair]git.Hash
	commitsBetween map[pair][]git.Hash
	parents        map[git.Hash][]git.Hash
	patchID        map[git.Hash]git.PatchID

	ancestorCalls int
}

func (f *fakeGit) IsAncestor(_ context.Context, a, b git.Hash) bool {
	f.ancestorCalls++
	return f.isAncestor[pair{a, b}]
}

func (f *fakeGit) MergeBase(_ context.Context, a, b git.Hash) (git.Hash, error) {
	return f.mergeBase[pair{a, b}], nil
}

func (f *fakeGit) CommitsBetween(_ context.Context, tip, base git.Hash) ([]git.Hash, error) {
	return f.commitsBetween[pair{tip, base}], nil
}

func (f *fakeGit) CommitParents(_ context.Context, commit git.Hash) ([]git.Hash, error) {
	return f.parents[commit], nil
}

func (f *fakeGit) CommitPatchID(_ context.Context, commit git.Hash) (git.PatchID, error) {
	id, ok := f.patchID[commit]
	if !ok {
		return "", git.ErrNotExist
	}
	return id, nil
}

func TestOracle_Ancestor(t *testing.T) {
	repo := &fakeGit{
		isAncestor: map[pair]bool{
			{"tip", "base"}: true,
		},
	}

	o := mergeoracle.New(repo, mergeoracle.Options{})
	assert.True(t, o.IsMerged(t.Context(), "tip", "base"))
}

func TestOracle_MergeCommit(t *testing.T) {
	// base history: mergeBase -> merge(p1=side, p2=tip's rewritten home)
	repo := &fakeGit{
		isAncestor: map[pair]bool{
			{"tip", "base"}:   false,
			{"tip", "p1"}:     false,
			{"tip", "rebase"}: true,
		},
		mergeBase: map[pair]git.Hash{
			{"tip", "base"}: "mb",
		},
		commitsBetween: map[pair][]git.Hash{
			{"base", "mb"}: {"merge"},
		},
		parents: map[git.Hash][]git.Hash{
			"merge": {"p1", "rebase"},
		},
	}

	o := mergeoracle.New(repo, mergeoracle.Options{})
	assert.True(t, o.IsMerged(t.Context(), "tip", "base"))
}

func TestOracle_Squash(t *testing.T) {
	repo := &fakeGit{
		isAncestor: map[pair]bool{
			{"tip", "base"}: false,
		},
		mergeBase: map[pair]git.Hash{
			{"tip", "base"}: "mb",
		},
		commitsBetween: map[pair][]git.Hash{
			{"base", "mb"}: {"squash"},
			{"tip", "mb"}:  {"c1", "c2"},
		},
		parents: map[git.Hash][]git.Hash{
			"squash": {"mb"}, // single parent: not a merge commit
		},
		patchID: map[git.Hash]git.PatchID{
			"c1":     "p1",
			"c2":     "p2",
			"squash": "p1",
		},
	}

	o := mergeoracle.New(repo, mergeoracle.Options{})
	assert.False(t, o.IsMerged(t.Context(), "tip", "base"),
		"c2's patch-id has no match on the base side, so this should NOT be merged")
}

func TestOracle_Squash_fullMatch(t *testing.T) {
	repo := &fakeGit{
		isAncestor: map[pair]bool{
			{"tip", "base"}: false,
		},
		mergeBase: map[pair]git.Hash{
			{"tip", "base"}: "mb",
		},
		commitsBetween: map[pair][]git.Hash{
			{"base", "mb"}: {"squash1", "squash2"},
			{"tip", "mb"}:  {"c1", "c2"},
		},
		parents: map[git.Hash][]git.Hash{
			"squash1": {"mb"},
			"squash2": {"squash1"},
		},
		patchID: map[git.Hash]git.PatchID{
			"c1":      "p1",
			"c2":      "p2",
			"squash1": "p1",
			"squash2": "p2",
		},
	}

	o := mergeoracle.New(repo, mergeoracle.Options{})
	assert.True(t, o.IsMerged(t.Context(), "tip", "base"))
}

func TestOracle_NotMerged(t *testing.T) {
	repo := &fakeGit{
		mergeBase: map[pair]git.Hash{
			{"tip", "base"}: "mb",
		},
		commitsBetween: map[pair][]git.Hash{
			{"tip", "mb"}: {"tip"},
		},
		patchID: map[git.Hash]git.PatchID{
			"tip": "p-tip",
		},
	}

	o := mergeoracle.New(repo, mergeoracle.Options{})
	assert.False(t, o.IsMerged(t.Context(), "tip", "base"))
}

func TestOracle_SameHash(t *testing.T) {
	repo := &fakeGit{}
	o := mergeoracle.New(repo, mergeoracle.Options{})
	assert.True(t, o.IsMerged(t.Context(), "same", "same"))
	assert.Equal(t, 0, repo.ancestorCalls, "identical hashes should short-circuit before any detector runs")
}

func TestOracle_Cache(t *testing.T) {
	repo := &fakeGit{
		isAncestor: map[pair]bool{
			{"tip", "base"}: true,
		},
	}

	o := mergeoracle.New(repo, mergeoracle.Options{})
	assert.True(t, o.IsMerged(t.Context(), "tip", "base"))
	assert.True(t, o.IsMerged(t.Context(), "tip", "base"))
	assert.Equal(t, 1, repo.ancestorCalls, "second call should hit the cache")
}

func TestOracle_EvaluateAll(t *testing.T) {
	repo := &fakeGit{
		isAncestor: map[pair]bool{
			{"tip1", "base"}: true,
			{"tip2", "base"}: false,
		},
		mergeBase: map[pair]git.Hash{
			{"tip2", "base"}: "mb",
		},
		commitsBetween: map[pair][]git.Hash{
			{"tip2", "mb"}: {"tip2"},
		},
		patchID: map[git.Hash]git.PatchID{
			"tip2": "p-tip2",
		},
	}

	o := mergeoracle.New(repo, mergeoracle.Options{Workers: 2})
	results := o.EvaluateAll(t.Context(), []mergeoracle.Pair{
		{Tip: "tip1", Base: "base"},
		{Tip: "tip2", Base: "base"},
	})

	assert.True(t, results[mergeoracle.Pair{Tip: "tip1", Base: "base"}])
	assert.False(t, results[mergeoracle.Pair{Tip: "tip2", Base: "base"}])
}

// TestOracle_EvaluateAll_DeterministicAcrossWorkerCounts is spec
// invariant 5: classification results never depend on how many workers
// evaluated the pairs, only on the pairs and the underlying git answers.
func TestOracle_EvaluateAll_DeterministicAcrossWorkerCounts(t *testing.T) {
	pairs := []mergeoracle.Pair{
		{Tip: "tip1", Base: "base1"},
		{Tip: "tip1", Base: "base2"},
		{Tip: "tip2", Base: "base1"},
		{Tip: "tip2", Base: "base2"},
		{Tip: "tip3", Base: "base1"},
	}

	newFake := func() *fakeGit {
		return &fakeGit{
			isAncestor: map[pair]bool{
				{"tip1", "base1"}: true,
				{"tip2", "base2"}: true,
			},
			mergeBase: map[pair]git.Hash{
				{"tip1", "base2"}: "mb",
				{"tip2", "base1"}: "mb",
				{"tip3", "base1"}: "mb",
			},
		}
	}

	var want map[mergeoracle.Pair]bool
	for _, workers := range []int{1, 2, 8} {
		o := mergeoracle.New(newFake(), mergeoracle.Options{Workers: workers})
		got := o.EvaluateAll(t.Context(), pairs)
		if want == nil {
			want = got
			continue
		}
		assert.Equal(t, want, got, "worker count %d should not change any verdict", workers)
	}
}

// TestOracle_Monotonic is spec invariant 3: once tip is an ancestor of
// base, it stays an ancestor (and so stays merged) of any commit that is
// itself reachable from base — extending the base with more commits
// never un-merges a branch that was already merged into it.
func TestOracle_Monotonic(t *testing.T) {
	repo := &fakeGit{
		isAncestor: map[pair]bool{
			{"tip", "base"}:      true,
			{"tip", "base-next"}: true, // base-next descends from base
		},
	}

	o := mergeoracle.New(repo, mergeoracle.Options{})
	assert.True(t, o.IsMerged(t.Context(), "tip", "base"))
	assert.True(t, o.IsMerged(t.Context(), "tip", "base-next"),
		"extending the base must never turn a merged branch unmerged")
}
