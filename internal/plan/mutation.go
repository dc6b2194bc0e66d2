// Package plan turns a filtered set of classified refs into an ordered
// sequence of ref-mutating operations: an optional HEAD detach, followed by
// batched remote deletions, remote-tracking cleanup, and finally local
// branch deletions.
package plan

import (
	"context"
	"strings"

	"github.com/gitutil/trim/internal/git"
)

// Repository is the subset of git.Repository's API a Mutation needs to
// apply itself.
type Repository interface {
	DeleteBranch(ctx context.Context, branch string, opts git.BranchDeleteOptions) error
	DeleteRef(ctx context.Context, ref string, opts git.DeleteRefOptions) error
	DeleteRemoteRefs(ctx context.Context, remote string, branches ...string) error
	DetachHead(ctx context.Context, commitish string) error
}

// Mutation is one step of a Plan.
type Mutation interface {
	// Op is the dry-run operation name, e.g. "delete-local".
	Op() string

	// Refs lists the fully-qualified ref names this mutation affects,
	// for dry-run reporting. A batched remote deletion reports every
	// ref it covers, even though it executes as a single push.
	Refs() []string

	// Apply executes the mutation.
	Apply(ctx context.Context, repo Repository) error
}

// DeleteLocal deletes a local branch. Force is always set: git-trim's
// merge detection already proved the branch's content is integrated, even
// in cases (squash, rewritten merge commit) Git's own "is this merged"
// check can't see.
type DeleteLocal struct {
	Name string
}

func (m DeleteLocal) Op() string        { return "delete-local" }
func (m DeleteLocal) Refs() []string    { return []string{"refs/heads/" + m.Name} }
func (m DeleteLocal) Apply(ctx context.Context, repo Repository) error {
	return repo.DeleteBranch(ctx, m.Name, git.BranchDeleteOptions{Force: true})
}

// DeleteRemoteTracking removes a remote-tracking ref from the local ref
// database only; it does not touch the actual remote.
type DeleteRemoteTracking struct {
	Remote string
	Name   string
}

func (m DeleteRemoteTracking) Op() string { return "delete-remote-tracking" }
func (m DeleteRemoteTracking) Refs() []string {
	return []string{"refs/remotes/" + m.Remote + "/" + m.Name}
}
func (m DeleteRemoteTracking) Apply(ctx context.Context, repo Repository) error {
	return repo.DeleteRef(ctx, "refs/remotes/"+m.Remote+"/"+m.Name, git.DeleteRefOptions{})
}

// DeleteRemote pushes the deletion of one or more branches to a single
// remote in one batched push.
type DeleteRemote struct {
	Remote string
	Names  []string
}

func (m DeleteRemote) Op() string { return "delete-remote" }

func (m DeleteRemote) Refs() []string {
	refs := make([]string, len(m.Names))
	for i, name := range m.Names {
		refs[i] = "refs/remotes/" + m.Remote + "/" + name
	}
	return refs
}

func (m DeleteRemote) Apply(ctx context.Context, repo Repository) error {
	return repo.DeleteRemoteRefs(ctx, m.Remote, m.Names...)
}

func (m DeleteRemote) String() string {
	parts := make([]string, len(m.Names))
	for i, n := range m.Names {
		parts[i] = m.Remote + "/" + n
	}
	return "delete-remote " + strings.Join(parts, ",")
}
