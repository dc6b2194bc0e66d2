package mergeoracle

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/silog"
)

// Pair identifies a (tip, base) comparison to evaluate.
type Pair struct {
	Tip  git.Hash
	Base git.Hash
}

// Options configures a new Oracle.
type Options struct {
	// Detectors overrides the default ordered list of merge tests
	// (ancestor, merge-commit, squash). Mainly for tests.
	Detectors []Detector

	// Workers caps the size of EvaluateAll's worker pool. Zero or
	// negative defaults to runtime.GOMAXPROCS(0).
	Workers int

	// Log receives warnings about object read failures encountered
	// while evaluating. If nil, messages are discarded.
	Log *silog.Logger
}

// Oracle answers whether one commit's content is already merged into
// another, memoizing answers by (tip, base) pair. It is safe for
// concurrent use: evaluation is a pure function of the repository's
// immutable object graph, so a lost race on a cache insert is harmless.
type Oracle struct {
	repo      GitRepository
	detectors []Detector
	workers   int
	log       *silog.Logger
	cache     sync.Map // Pair -> bool
}

// New builds an Oracle backed by repo.
func New(repo GitRepository, opts Options) *Oracle {
	detectors := opts.Detectors
	if detectors == nil {
		detectors = defaultDetectors
	}
	log := opts.Log
	if log == nil {
		log = silog.Nop()
	}

	return &Oracle{
		repo:      repo,
		detectors: detectors,
		workers:   opts.Workers,
		log:       log,
	}
}

// IsMerged reports whether tip's content is already integrated into
// base, running the configured detectors in order and caching the
// result. It is monotone: once true for a (tip, base) pair, it remains
// true, since base's hash changing means a different cache entry.
func (o *Oracle) IsMerged(ctx context.Context, tip, base git.Hash) bool {
	key := Pair{Tip: tip, Base: base}
	if v, ok := o.cache.Load(key); ok {
		return v.(bool)
	}

	merged := o.evaluate(ctx, tip, base)

	// Insert-on-miss is idempotent: if another goroutine raced us to
	// evaluate the same pair, whichever result lands first wins and
	// the other is simply discarded.
	actual, _ := o.cache.LoadOrStore(key, merged)
	return actual.(bool)
}

func (o *Oracle) evaluate(ctx context.Context, tip, base git.Hash) bool {
	if tip == base {
		return true
	}

	for _, d := range o.detectors {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		merged, err := d.IsMerged(ctx, o.repo, tip, base)
		if err != nil {
			o.log.Warnf("merge detector failed for %s vs %s: %v", tip.Short(), base.Short(), err)
			continue
		}
		if merged {
			return true
		}
	}
	return false
}

// EvaluateAll evaluates every pair in pairs, fanning them out across a
// bounded worker pool, and returns a map from pair to result.
//
// If ctx is canceled mid-run, pairs not yet evaluated resolve to "not
// merged" rather than blocking; every pair still gets an entry.
func (o *Oracle) EvaluateAll(ctx context.Context, pairs []Pair) map[Pair]bool {
	workers := o.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make(map[Pair]bool, len(pairs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, p := range pairs {
		g.Go(func() error {
			merged := o.IsMerged(gctx, p.Tip, p.Base)

			mu.Lock()
			results[p] = merged
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // IsMerged never returns an error; Wait only blocks for completion

	return results
}
