package snapshot

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/silog"
	"github.com/gitutil/trim/internal/sliceutil"
)

// GitRepository is the subset of git.Repository's API used to build a
// Snapshot. Declaring it here (rather than depending on *git.Repository
// directly) lets Build be unit-tested against a fake.
type GitRepository interface {
	LocalBranches(ctx context.Context) ([]string, error)
	CurrentBranch(ctx context.Context) (string, error)
	BranchUpstream(ctx context.Context, branch string) (string, error)
	BranchPushTarget(ctx context.Context, branch string) (string, error)
	PeelToCommit(ctx context.Context, ref string) (git.Hash, error)
	ListRemotes(ctx context.Context) ([]string, error)
	RemoteDefaultBranch(ctx context.Context, remote string) (string, error)
	ListRemoteRefs(ctx context.Context, remote string) iter.Seq2[git.RemoteRef, error]
}

var _ GitRepository = (*git.Repository)(nil)

// RemoteUpdater performs the pre-run pruning remote update. It is kept
// behind an interface, per the source's design note, so Build can be
// unit-tested with a no-op fake instead of shelling out to git.
type RemoteUpdater interface {
	UpdatePrune(ctx context.Context) error
}

var _ RemoteUpdater = (*git.Repository)(nil)

// LastUpdateStore persists the time of the last successful pruning
// remote update — the tool's only piece of external mutable state.
type LastUpdateStore interface {
	LastUpdate() (time.Time, bool, error)
	SetLastUpdate(time.Time) error
}

// Options configures a call to Build.
type Options struct {
	// Bases is the user-supplied list of base branch names. If empty,
	// bases are auto-discovered from each remote's HEAD symref.
	Bases []string

	// Update enables the pre-run pruning remote update.
	Update bool

	// UpdateInterval skips the pruning update if the last one
	// succeeded within this duration. Zero (or negative) means never
	// skip: an update is always attempted when Update is true.
	UpdateInterval time.Duration

	// Log receives progress and warning messages. If nil, messages
	// are discarded.
	Log *silog.Logger
}

// Build reads the repository's branches, remotes, and tracking
// configuration, and resolves the base set, producing a single
// consistent Snapshot for the rest of the pipeline to operate on.
//
// It returns a [*ConfigError] if the resolved base set is empty, and a
// [*ReadError] if repository state could not be read.
func Build(ctx context.Context, repo GitRepository, updater RemoteUpdater, store LastUpdateStore, opts Options) (*Snapshot, error) {
	log := opts.Log
	if log == nil {
		log = silog.Nop()
	}

	if opts.Update {
		if err := maybeUpdate(ctx, updater, store, opts.UpdateInterval, log); err != nil {
			return nil, err
		}
	}

	branches, err := readLocalBranches(ctx, repo)
	if err != nil {
		return nil, err
	}

	remotes, err := repo.ListRemotes(ctx)
	if err != nil {
		return nil, &ReadError{Op: "list remotes", Err: err}
	}

	remoteBranches, err := readRemoteBranches(ctx, repo, remotes)
	if err != nil {
		return nil, err
	}

	headBranch, detached, err := readHead(ctx, repo)
	if err != nil {
		return nil, err
	}

	bases, baseUpstreams, err := resolveBases(ctx, repo, branches, remoteBranches, remotes, opts.Bases, log)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		HeadBranch:     headBranch,
		Detached:       detached,
		Branches:       branches,
		RemoteBranches: remoteBranches,
		Bases:          bases,
		BaseUpstreams:  baseUpstreams,
	}, nil
}

func maybeUpdate(ctx context.Context, updater RemoteUpdater, store LastUpdateStore, interval time.Duration, log *silog.Logger) error {
	stale := true
	if interval > 0 {
		last, ok, err := store.LastUpdate()
		if err != nil {
			return &ReadError{Op: "read last-update state", Err: err}
		}
		if ok {
			stale = time.Since(last) >= interval
		}
		if !stale {
			now := time.Now()
			log.Debugf("skipping remote update: last one ran %s", humanize.RelTime(last, now, "ago", "from now"))
			return nil
		}
	}

	if err := updater.UpdatePrune(ctx); err != nil {
		log.Warnf("remote update --prune failed: %v", err)
		return nil
	}
	if err := store.SetLastUpdate(time.Now()); err != nil {
		log.Warnf("could not record last update time: %v", err)
	}
	return nil
}

func readLocalBranches(ctx context.Context, repo GitRepository) (map[string]LocalBranch, error) {
	names, err := repo.LocalBranches(ctx)
	if err != nil {
		return nil, &ReadError{Op: "list local branches", Err: err}
	}

	branches := make(map[string]LocalBranch, len(names))
	for _, name := range names {
		hash, err := repo.PeelToCommit(ctx, "refs/heads/"+name)
		if err != nil {
			return nil, &ReadError{Op: fmt.Sprintf("resolve tip of %s", name), Err: err}
		}

		upstream, err := repo.BranchUpstream(ctx, name)
		if err != nil {
			if !errors.Is(err, git.ErrNotExist) {
				return nil, &ReadError{Op: fmt.Sprintf("resolve upstream of %s", name), Err: err}
			}
			upstream = ""
		}

		pushTarget, err := repo.BranchPushTarget(ctx, name)
		if err != nil {
			if !errors.Is(err, git.ErrNotExist) {
				return nil, &ReadError{Op: fmt.Sprintf("resolve push target of %s", name), Err: err}
			}
			pushTarget = ""
		}

		branches[name] = LocalBranch{
			Name:       name,
			Hash:       hash,
			Upstream:   upstream,
			PushTarget: pushTarget,
		}
	}
	return branches, nil
}

func readRemoteBranches(ctx context.Context, repo GitRepository, remotes []string) (map[string]RemoteBranch, error) {
	remoteBranches := make(map[string]RemoteBranch)
	for _, remote := range remotes {
		refs, err := sliceutil.CollectErr(repo.ListRemoteRefs(ctx, remote))
		if err != nil {
			return nil, &ReadError{Op: fmt.Sprintf("list refs for remote %s", remote), Err: err}
		}

		for _, ref := range refs {
			name := strings.TrimPrefix(ref.Name, "refs/remotes/"+remote+"/")
			rb := RemoteBranch{Remote: remote, Name: name, Hash: ref.Hash}
			remoteBranches[rb.FullName()] = rb
		}
	}
	return remoteBranches, nil
}

func readHead(ctx context.Context, repo GitRepository) (branch string, detached bool, err error) {
	branch, err = repo.CurrentBranch(ctx)
	if err != nil {
		if errors.Is(err, git.ErrDetachedHead) {
			return "", true, nil
		}
		return "", false, &ReadError{Op: "resolve HEAD", Err: err}
	}
	return branch, false, nil
}

// resolveBases computes the ordered base set and each base's comparison
// upstream. Candidate names come from opts.Bases if given, else from each
// remote's default branch (the local branch tracking
// "refs/remotes/<remote>/HEAD"'s target).
//
// A remote whose own HEAD symref is missing is never guessed at: its
// candidate is simply skipped, consistent with the rule that bases with
// an unresolvable upstream are dropped rather than substituted.
func resolveBases(
	ctx context.Context,
	repo GitRepository,
	branches map[string]LocalBranch,
	remoteBranches map[string]RemoteBranch,
	remotes []string,
	explicit []string,
	log *silog.Logger,
) ([]string, map[string]RemoteBranch, error) {
	var candidates []string
	if len(explicit) > 0 {
		candidates = explicit
	} else {
		for _, remote := range remotes {
			def, err := repo.RemoteDefaultBranch(ctx, remote)
			if err != nil {
				if errors.Is(err, git.ErrNotExist) {
					log.Warnf("remote %q has no resolvable default branch; skipping as a base", remote)
					continue
				}
				return nil, nil, &ReadError{Op: fmt.Sprintf("resolve default branch for %s", remote), Err: err}
			}

			target := remote + "/" + def
			follower, ok := findUpstreamFollower(branches, target)
			if !ok {
				log.Warnf("no local branch tracks %s; skipping as a base", target)
				continue
			}
			candidates = append(candidates, follower.Name)
		}
	}

	var bases []string
	baseUpstreams := make(map[string]RemoteBranch)
	seen := make(map[string]bool, len(candidates))
	for _, name := range candidates {
		if seen[name] {
			continue
		}
		seen[name] = true

		lb, ok := branches[name]
		if !ok {
			log.Warnf("base %q does not exist as a local branch; dropping", name)
			continue
		}
		if !lb.HasUpstream() {
			log.Warnf("base %q has no upstream; dropping", name)
			continue
		}
		rb, ok := remoteBranches[lb.Upstream]
		if !ok {
			log.Warnf("base %q's upstream %q is unresolvable; dropping", name, lb.Upstream)
			continue
		}

		bases = append(bases, name)
		baseUpstreams[name] = rb
	}

	if len(bases) == 0 {
		return nil, nil, &ConfigError{Reason: "no usable base branches resolved"}
	}

	return bases, baseUpstreams, nil
}

func findUpstreamFollower(branches map[string]LocalBranch, upstream string) (LocalBranch, bool) {
	for _, b := range branches {
		if b.Upstream == upstream {
			return b, true
		}
	}
	return LocalBranch{}, false
}
