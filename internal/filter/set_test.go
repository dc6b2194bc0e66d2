package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitutil/trim/internal/classify"
	"github.com/gitutil/trim/internal/filter"
)

func parse(t *testing.T, value string) []filter.Token {
	t.Helper()
	tokens, err := filter.ParseTokens(value)
	require.NoError(t, err)
	return tokens
}

func TestSelect_DefaultMergedOrigin(t *testing.T) {
	candidates := []filter.Candidate{
		{Ref: "refs/heads/feature", Tag: classify.MergedLocal, Name: "feature"},
		{Ref: "refs/remotes/origin/feature", Tag: classify.MergedRemote, Name: "feature", Remote: "origin"},
		{Ref: "refs/remotes/upstream/feature", Tag: classify.MergedRemote, Name: "feature", Remote: "upstream"},
		{Ref: "refs/heads/strayed", Tag: classify.Stray, Name: "strayed"},
	}

	selected := filter.Select(candidates, parse(t, "merged:origin"), nil)
	refs := refNames(selected)

	assert.Contains(t, refs, "refs/heads/feature")
	assert.Contains(t, refs, "refs/remotes/origin/feature")
	assert.NotContains(t, refs, "refs/remotes/upstream/feature", "scoped to origin only")
	assert.NotContains(t, refs, "refs/heads/strayed", "stray not enabled by default")
}

func TestSelect_BaseAlwaysExcluded(t *testing.T) {
	candidates := []filter.Candidate{
		{Ref: "refs/heads/master", Tag: classify.MergedLocal, Name: "master", Base: true},
	}
	selected := filter.Select(candidates, parse(t, "merged"), nil)
	assert.Empty(t, selected)
}

func TestSelect_ProtectedGlobExcluded(t *testing.T) {
	matcher, err := filter.CompileProtected([]string{"release/*"})
	require.NoError(t, err)

	candidates := []filter.Candidate{
		{Ref: "refs/heads/release/1.0", Tag: classify.MergedLocal, Name: "release/1.0"},
		{Ref: "refs/heads/feature", Tag: classify.MergedLocal, Name: "feature"},
	}
	selected := filter.Select(candidates, parse(t, "merged"), matcher)
	refs := refNames(selected)
	assert.NotContains(t, refs, "refs/heads/release/1.0")
	assert.Contains(t, refs, "refs/heads/feature")
}

func TestSelect_HeadStrayProtectedByDefault(t *testing.T) {
	candidates := []filter.Candidate{
		{Ref: "refs/heads/feature", Tag: classify.Stray, Name: "feature", Head: true},
	}
	selected := filter.Select(candidates, parse(t, "local"), nil)
	assert.Empty(t, selected, `"local" implies stray but doesn't explicitly grant HEAD permission`)
}

func TestSelect_HeadStrayAllowedWithExplicitToken(t *testing.T) {
	candidates := []filter.Candidate{
		{Ref: "refs/heads/feature", Tag: classify.Stray, Name: "feature", Head: true},
	}
	selected := filter.Select(candidates, parse(t, "stray"), nil)
	assert.Len(t, selected, 1)
}

func TestSelect_HeadMergedLocalNotSpeciallyProtected(t *testing.T) {
	candidates := []filter.Candidate{
		{Ref: "refs/heads/feature", Tag: classify.MergedLocal, Name: "feature", Head: true},
	}
	selected := filter.Select(candidates, parse(t, "merged"), nil)
	assert.Len(t, selected, 1, "Merged* HEAD branches are handled by the Planner's detach step, not excluded here")
}

func TestSelect_DivergedScopedToRemote(t *testing.T) {
	candidates := []filter.Candidate{
		{Ref: "refs/heads/feature", Tag: classify.Diverged, Name: "feature", Remote: "origin"},
	}

	assert.Empty(t, filter.Select(candidates, parse(t, "diverged:upstream"), nil))
	assert.Len(t, filter.Select(candidates, parse(t, "diverged:origin"), nil), 1)
	assert.Len(t, filter.Select(candidates, parse(t, "diverged"), nil), 1)
}

func refNames(candidates []filter.Candidate) []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Ref
	}
	return names
}
