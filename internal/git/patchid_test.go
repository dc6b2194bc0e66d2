package git_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/git/gittest"
	"github.com/gitutil/trim/internal/silog/silogtest"
	"github.com/gitutil/trim/internal/text"
)

func TestRepository_RangePatchID_squashMatch(t *testing.T) {
	fixture, err := gittest.LoadFixtureScript([]byte(text.Dedent(`
		as 'Test <test@example.com>'
		at '2024-09-14T15:55:40Z'

		git init
		git commit --allow-empty -m 'Initial commit'
		git branch base

		git checkout -b feature
		git add feat1.txt
		git commit -m 'Add feat1'
		git add feat2.txt
		git commit -m 'Add feat2'

		git checkout base
		git merge --squash feature
		git commit -m 'Squash merge feature'

		-- feat1.txt --
		Feature 1
		-- feat2.txt --
		Feature 2
	`)))
	require.NoError(t, err)
	t.Cleanup(fixture.Cleanup)

	repo, err := git.Open(t.Context(), fixture.Dir(), git.OpenOptions{
		Log: silogtest.New(t),
	})
	require.NoError(t, err)
	ctx := t.Context()

	featureTip, err := repo.PeelToCommit(ctx, "feature")
	require.NoError(t, err)
	mergeBase, err := repo.PeelToCommit(ctx, "feature~2")
	require.NoError(t, err)
	squashCommit, err := repo.PeelToCommit(ctx, "base")
	require.NoError(t, err)

	rangeID, err := repo.RangePatchID(ctx, featureTip, mergeBase)
	require.NoError(t, err)

	commitID, err := repo.CommitPatchID(ctx, squashCommit)
	require.NoError(t, err)

	assert.Equal(t, rangeID, commitID)
}

func TestRepository_CommitPatchID_noParent(t *testing.T) {
	fixture, err := gittest.LoadFixtureScript([]byte(text.Dedent(`
		as 'Test <test@example.com>'
		at '2024-09-14T15:55:40Z'

		git init
		git commit --allow-empty -m 'Initial commit'
	`)))
	require.NoError(t, err)
	t.Cleanup(fixture.Cleanup)

	repo, err := git.Open(t.Context(), fixture.Dir(), git.OpenOptions{
		Log: silogtest.New(t),
	})
	require.NoError(t, err)
	ctx := t.Context()

	root, err := repo.PeelToCommit(ctx, "HEAD")
	require.NoError(t, err)

	_, err = repo.CommitPatchID(ctx, root)
	require.Error(t, err)
}
