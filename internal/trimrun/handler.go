// Package trimrun wires the Snapshot, Oracle, Classifier, Filter & Protect,
// Planner, and Executor stages together into the single operation the CLI
// exposes, in the teacher's handler idiom: one struct holding every
// dependency the operation needs, and one method that walks the pipeline
// end to end.
package trimrun

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gitutil/trim/internal/classify"
	"github.com/gitutil/trim/internal/executor"
	"github.com/gitutil/trim/internal/filter"
	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/mergeoracle"
	"github.com/gitutil/trim/internal/plan"
	"github.com/gitutil/trim/internal/silog"
	"github.com/gitutil/trim/internal/snapshot"
	"github.com/gitutil/trim/internal/state"
)

// GitRepository is every operation on *git.Repository the handler touches
// directly or hands down into the pipeline stages.
type GitRepository interface {
	snapshot.GitRepository
	snapshot.RemoteUpdater
	mergeoracle.GitRepository
	plan.Repository
}

var _ GitRepository = (*git.Repository)(nil)

// LastUpdateStore persists the pre-run pruning update's last-run time.
type LastUpdateStore = snapshot.LastUpdateStore

var _ LastUpdateStore = (*state.Store)(nil)

// Options configures a Handler.Run, one field per CLI flag in §6.
type Options struct {
	Bases          []string
	Protected      []string
	Delete         string
	Update         bool
	UpdateInterval time.Duration
	Confirm        bool
	Detach         bool
	DryRun         bool
	Workers        int

	// Stdout receives dry-run output. Defaults to os.Stdout.
	Stdout io.Writer
}

// Handler implements git-trim's end-to-end branch-trimming operation.
type Handler struct {
	Log        *silog.Logger   // required
	Repository GitRepository   // required
	Store      LastUpdateStore // required
}

// Run classifies the repository's branches, filters them down to the
// user's requested delete ranges, plans the resulting mutations, and
// applies (or, in dry-run mode, prints) the plan.
//
// It returns a *snapshot.ConfigError if the base set is empty or --delete
// can't be parsed, before any mutation is attempted. Any other returned
// error is a snapshot/build failure; a non-nil *executor.Result with
// Success() false means the plan was applied but one or more steps failed.
func (h *Handler) Run(ctx context.Context, opts Options) (*executor.Result, error) {
	tokens, err := filter.ParseTokens(opts.Delete)
	if err != nil {
		return nil, &snapshot.ConfigError{Reason: err.Error()}
	}

	protected, err := filter.CompileProtected(opts.Protected)
	if err != nil {
		return nil, &snapshot.ConfigError{Reason: err.Error()}
	}

	snap, err := snapshot.Build(ctx, h.Repository, h.Repository, h.Store, snapshot.Options{
		Bases:          opts.Bases,
		Update:         opts.Update,
		UpdateInterval: opts.UpdateInterval,
		Log:            h.Log,
	})
	if err != nil {
		return nil, err
	}

	oracle := mergeoracle.New(h.Repository, mergeoracle.Options{
		Workers: opts.Workers,
		Log:     h.Log,
	})

	result, err := classify.Classify(ctx, snap, oracle)
	if err != nil {
		return nil, fmt.Errorf("classify branches: %w", err)
	}

	candidates := buildCandidates(snap, result)
	selected := filter.Select(candidates, tokens, protected)

	h.Log.Debugf("%d branch(es) selected for deletion out of %d classified", len(selected), len(candidates))

	p := plan.Build(snap, selected, opts.Detach)

	return executor.Run(ctx, h.Repository, p, executor.Options{
		DryRun:  opts.DryRun,
		Confirm: opts.Confirm,
		Stdout:  opts.Stdout,
		Log:     h.Log,
	})
}

// buildCandidates turns a classify.Result into the filter.Candidate list
// Select operates on, resolving each ref's short name, owning remote (for
// remote-scoped tags), and base/HEAD status from the snapshot.
func buildCandidates(snap *snapshot.Snapshot, result *classify.Result) []filter.Candidate {
	candidates := make([]filter.Candidate, 0, len(result.Refs))

	for ref, cl := range result.Refs {
		switch {
		case strings.HasPrefix(ref, "refs/heads/"):
			name := strings.TrimPrefix(ref, "refs/heads/")
			remote := ""
			if cl.Tag == classify.Diverged {
				remote = trackingRemote(snap.Branches[name])
			}
			candidates = append(candidates, filter.Candidate{
				Ref:    ref,
				Tag:    cl.Tag,
				Remote: remote,
				Name:   name,
				Base:   snap.IsBase(name),
				Head:   cl.Head,
			})

		case strings.HasPrefix(ref, "refs/remotes/"):
			rest := strings.TrimPrefix(ref, "refs/remotes/")
			remote, name, _ := strings.Cut(rest, "/")
			candidates = append(candidates, filter.Candidate{
				Ref:    ref,
				Tag:    cl.Tag,
				Remote: remote,
				Name:   name,
			})
		}
	}

	return candidates
}

// trackingRemote returns the remote a local branch is jointly classified
// against: its push target where configured, else its fetch upstream.
// Mirrors classify.Classify's own trackRef selection.
func trackingRemote(b snapshot.LocalBranch) string {
	trackRef := b.Upstream
	if b.PushTarget != "" {
		trackRef = b.PushTarget
	}
	remote, _, _ := strings.Cut(trackRef, "/")
	return remote
}
