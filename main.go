// Command git-trim classifies a repository's local and remote-tracking
// branches against one or more base branches, then deletes the ones the
// user asked for.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"

	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/komplete"
	"github.com/gitutil/trim/internal/silog"
	"github.com/gitutil/trim/internal/trimconfig"
)

var _version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		<-sigc
		fmt.Fprintln(os.Stderr, "interrupted, finishing in-flight work; press Ctrl-C again to exit immediately")
		cancel()
	}()

	opts := []kong.Option{
		kong.Name("git-trim"),
		kong.Description("Classify and delete merged, stray, and diverged branches."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Vars{"version": _version},
	}
	if cfg, err := trimconfig.Load(ctx, git.NewConfig(git.ConfigOptions{Log: silog.Nop()})); err == nil {
		opts = append(opts, kong.Resolvers(cfg))
	}

	var cmd rootCmd
	parser, err := kong.New(&cmd, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "git-trim:", err)
		os.Exit(1)
	}

	komplete.Run(parser, komplete.WithPredictor("branches", branchPredictor(ctx)))

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	kctx.FatalIfErrorf(kctx.Run())
}

// branchPredictor lists the current repository's local branches for
// shell-completion of --bases and --protected. Any failure (not a
// repository, git not installed) yields no predictions rather than an
// error, since completion must never fail loudly.
func branchPredictor(ctx context.Context) complete.PredictFunc {
	return func(complete.Args) []string {
		repo, err := git.Open(ctx, ".", git.OpenOptions{Log: silog.Nop()})
		if err != nil {
			return nil
		}
		names, err := repo.LocalBranches(ctx)
		if err != nil {
			return nil
		}
		return names
	}
}
