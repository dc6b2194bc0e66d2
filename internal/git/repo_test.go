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

func TestOpen(t *testing.T) {
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

	assert.NotEmpty(t, repo.Root())
	assert.NotEmpty(t, repo.GitDir())
}

func TestOpen_notARepository(t *testing.T) {
	_, err := git.Open(t.Context(), t.TempDir(), git.OpenOptions{
		Log: silogtest.New(t),
	})
	require.Error(t, err)
}
