package trimrun_test

import (
	"bytes"
	"context"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/sliceutil"
	"github.com/gitutil/trim/internal/trimrun"
)

// fakeRepo is a minimal in-memory stand-in implementing every interface
// trimrun.Handler needs from a repository: snapshot reading, merge
// evaluation, and ref mutation.
type fakeRepo struct {
	branches   map[string]string
	upstream   map[string]string
	pushTarget map[string]string
	head       string
	remoteRefs map[string]map[string]string // remote -> name -> hash

	ancestor map[[2]git.Hash]bool

	deletedBranches []string
	deletedRefs     []string
	pushedDeletes   map[string][]string
	detachedTo      string
}

func (f *fakeRepo) LocalBranches(context.Context) ([]string, error) {
	names := make([]string, 0, len(f.branches))
	for name := range f.branches {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeRepo) CurrentBranch(context.Context) (string, error) { return f.head, nil }

func (f *fakeRepo) BranchUpstream(_ context.Context, branch string) (string, error) {
	if u, ok := f.upstream[branch]; ok {
		return u, nil
	}
	return "", git.ErrNotExist
}

func (f *fakeRepo) BranchPushTarget(_ context.Context, branch string) (string, error) {
	if p, ok := f.pushTarget[branch]; ok {
		return p, nil
	}
	return f.BranchUpstream(context.Background(), branch)
}

func (f *fakeRepo) PeelToCommit(_ context.Context, ref string) (git.Hash, error) {
	if name, ok := cutPrefix(ref, "refs/heads/"); ok {
		if hash, ok := f.branches[name]; ok {
			return git.Hash(hash), nil
		}
	}
	return "", git.ErrNotExist
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}

func (f *fakeRepo) ListRemotes(context.Context) ([]string, error) { return []string{"origin"}, nil }

func (f *fakeRepo) RemoteDefaultBranch(_ context.Context, remote string) (string, error) {
	if remote == "origin" {
		return "main", nil
	}
	return "", git.ErrNotExist
}

func (f *fakeRepo) ListRemoteRefs(_ context.Context, remote string) iter.Seq2[git.RemoteRef, error] {
	var refs []git.RemoteRef
	for name, hash := range f.remoteRefs[remote] {
		refs = append(refs, git.RemoteRef{Name: "refs/remotes/" + remote + "/" + name, Hash: git.Hash(hash)})
	}
	return sliceutil.All2[error](refs)
}

func (f *fakeRepo) UpdatePrune(context.Context) error { return nil }

func (f *fakeRepo) IsAncestor(_ context.Context, a, b git.Hash) bool {
	return a == b || f.ancestor[[2]git.Hash{a, b}]
}

func (f *fakeRepo) MergeBase(_ context.Context, a, b git.Hash) (git.Hash, error) { return a, nil }

func (f *fakeRepo) CommitsBetween(_ context.Context, tip, base git.Hash) ([]git.Hash, error) {
	if tip == base {
		return nil, nil
	}
	return []git.Hash{tip}, nil
}

func (f *fakeRepo) CommitParents(context.Context, git.Hash) ([]git.Hash, error) { return nil, nil }

func (f *fakeRepo) CommitPatchID(_ context.Context, commit git.Hash) (git.PatchID, error) {
	return git.PatchID("patch-" + commit), nil
}

func (f *fakeRepo) DeleteBranch(_ context.Context, branch string, _ git.BranchDeleteOptions) error {
	f.deletedBranches = append(f.deletedBranches, branch)
	return nil
}

func (f *fakeRepo) DeleteRef(_ context.Context, ref string, _ git.DeleteRefOptions) error {
	f.deletedRefs = append(f.deletedRefs, ref)
	return nil
}

func (f *fakeRepo) DeleteRemoteRefs(_ context.Context, remote string, branches ...string) error {
	if f.pushedDeletes == nil {
		f.pushedDeletes = make(map[string][]string)
	}
	f.pushedDeletes[remote] = append(f.pushedDeletes[remote], branches...)
	return nil
}

func (f *fakeRepo) DetachHead(_ context.Context, commitish string) error {
	f.detachedTo = commitish
	return nil
}

type fakeStore struct{}

func (fakeStore) LastUpdate() (time.Time, bool, error) { return time.Time{}, false, nil }
func (fakeStore) SetLastUpdate(time.Time) error         { return nil }

func classicMergeRepo() *fakeRepo {
	const (
		mainHash    = git.Hash("1111111111111111111111111111111111111111")
		featureHash = git.Hash("2222222222222222222222222222222222222222")
	)
	return &fakeRepo{
		branches: map[string]string{
			"main":    string(mainHash),
			"feature": string(featureHash),
		},
		upstream: map[string]string{
			"main":    "origin/main",
			"feature": "origin/feature",
		},
		head: "main",
		remoteRefs: map[string]map[string]string{
			"origin": {
				"main":    string(mainHash),
				"feature": string(featureHash),
			},
		},
		ancestor: map[[2]git.Hash]bool{
			{featureHash, mainHash}: true,
		},
	}
}

func TestHandler_Run_DryRun_ClassicMerge(t *testing.T) {
	repo := classicMergeRepo()
	var out bytes.Buffer

	// Log is left nil; *silog.Logger is nil-safe so Run needs no stub here.
	h := &trimrun.Handler{Repository: repo, Store: fakeStore{}}

	result, err := h.Run(t.Context(), trimrun.Options{
		Delete: "merged:origin",
		Update: false,
		Detach: true,
		DryRun: true,
		Stdout: &out,
	})
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Empty(t, repo.deletedBranches, "dry run must not mutate anything")

	output := out.String()
	assert.Contains(t, output, "delete-local refs/heads/feature")
	assert.Contains(t, output, "delete-remote refs/remotes/origin/feature")
	assert.Contains(t, output, "delete-remote-tracking refs/remotes/origin/feature")
}

func TestHandler_Run_Apply_ClassicMerge(t *testing.T) {
	repo := classicMergeRepo()

	h := &trimrun.Handler{Repository: repo, Store: fakeStore{}}
	result, err := h.Run(t.Context(), trimrun.Options{
		Delete:  "merged:origin",
		Detach:  true,
		Confirm: false,
	})
	require.NoError(t, err)
	assert.True(t, result.Success())

	assert.Equal(t, []string{"feature"}, repo.deletedBranches)
	assert.Equal(t, []string{"refs/remotes/origin/feature"}, repo.deletedRefs)
	assert.Equal(t, []string{"feature"}, repo.pushedDeletes["origin"])
}

func TestHandler_Run_InvalidDeleteToken(t *testing.T) {
	repo := classicMergeRepo()
	h := &trimrun.Handler{Repository: repo, Store: fakeStore{}}

	_, err := h.Run(t.Context(), trimrun.Options{Delete: "bogus"})
	require.Error(t, err)
}

func TestHandler_Run_InvalidProtectedGlob(t *testing.T) {
	repo := classicMergeRepo()
	h := &trimrun.Handler{Repository: repo, Store: fakeStore{}}

	_, err := h.Run(t.Context(), trimrun.Options{
		Delete:    "merged:origin",
		Protected: []string{"["},
	})
	require.Error(t, err)
}
