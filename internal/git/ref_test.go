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

func TestRepository_DeleteRef(t *testing.T) {
	fixture, err := gittest.LoadFixtureScript([]byte(text.Dedent(`
		as 'Test <test@example.com>'
		at '2024-09-14T15:55:40Z'

		git init
		git commit --allow-empty -m 'Initial commit'
		git update-ref refs/remotes/origin/feature HEAD
	`)))
	require.NoError(t, err)
	t.Cleanup(fixture.Cleanup)

	repo, err := git.Open(t.Context(), fixture.Dir(), git.OpenOptions{
		Log: silogtest.New(t),
	})
	require.NoError(t, err)
	ctx := t.Context()

	hash, err := repo.PeelToCommit(ctx, "refs/remotes/origin/feature")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteRef(ctx, "refs/remotes/origin/feature", git.DeleteRefOptions{
		OldHash: hash,
	}))

	_, err = repo.PeelToCommit(ctx, "refs/remotes/origin/feature")
	require.ErrorIs(t, err, git.ErrNotExist)
}

func TestRepository_DeleteRef_staleOldHash(t *testing.T) {
	fixture, err := gittest.LoadFixtureScript([]byte(text.Dedent(`
		as 'Test <test@example.com>'
		at '2024-09-14T15:55:40Z'

		git init
		git commit --allow-empty -m 'Initial commit'
		git update-ref refs/remotes/origin/feature HEAD
	`)))
	require.NoError(t, err)
	t.Cleanup(fixture.Cleanup)

	repo, err := git.Open(t.Context(), fixture.Dir(), git.OpenOptions{
		Log: silogtest.New(t),
	})
	require.NoError(t, err)
	ctx := t.Context()

	err = repo.DeleteRef(ctx, "refs/remotes/origin/feature", git.DeleteRefOptions{
		OldHash: git.Hash("0000000000000000000000000000000000000001"),
	})
	require.Error(t, err)

	hash, err := repo.PeelToCommit(ctx, "refs/remotes/origin/feature")
	require.NoError(t, err)
	assert.False(t, hash.IsZero())
}
