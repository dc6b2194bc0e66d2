package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/alecthomas/kong"

	"github.com/gitutil/trim/internal/executor"
	"github.com/gitutil/trim/internal/git"
	"github.com/gitutil/trim/internal/komplete"
	"github.com/gitutil/trim/internal/silog"
	"github.com/gitutil/trim/internal/state"
	"github.com/gitutil/trim/internal/trimrun"
)

// rootCmd is git-trim's entire CLI grammar. Trim is the default command:
// "git-trim --bases=main" and "git-trim trim --bases=main" are equivalent.
// "complete" generates a shell completion script instead.
type rootCmd struct {
	Trim trimCmd `cmd:"" default:"1" help:"Classify and delete branches (default)."`

	Version versionFlag `help:"Print version information and quit."`

	Complete komplete.Command `cmd:"" help:"Print a shell completion script."`
}

// trimCmd runs the classify-filter-plan-apply pipeline once.
type trimCmd struct {
	Bases     []string `help:"Base branches to compare against. Defaults to each remote's HEAD symref target." config:"trim.bases" placeholder:"BRANCH,..." predictor:"branches"`
	Protected []string `help:"Glob patterns; a matching branch is always classified Kept." config:"trim.protected" placeholder:"GLOB,..." predictor:"branches"`
	Delete    string   `help:"Range tokens selecting which classified branches to delete." config:"trim.delete" default:"merged:origin"`

	Update         bool `help:"Run a pruning remote update before classifying branches." config:"trim.update" default:"true" negatable:""`
	UpdateInterval int  `name:"update-interval" help:"Skip the pre-run prune if the last one ran within this many seconds; 0 always updates." config:"trim.updateInterval" default:"5" placeholder:"SECONDS"`

	Confirm bool `help:"Prompt for confirmation before deleting anything." config:"trim.confirm" default:"true" negatable:""`
	Detach  bool `help:"Detach HEAD before deleting the branch it currently points to." config:"trim.detach" default:"true" negatable:""`

	DryRun bool `name:"dry-run" help:"Print the plan without making any changes."`

	Workers int `help:"Worker pool size for merge detection. Defaults to GIT_TRIM_PROCS, then GOMAXPROCS." config:"trim.workers" env:"GIT_TRIM_PROCS"`

	Verbose bool `short:"v" help:"Enable debug logging. Overridden by GIT_TRIM_LOG if set."`
}

// versionFlag implements kong's print-and-exit flag idiom.
type versionFlag string

func (versionFlag) Decode(*kong.DecodeContext) error { return nil }
func (versionFlag) IsBool() bool                     { return true }

func (v versionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Fprintln(app.Stdout, "git-trim", vars["version"])
	app.Exit(0)
	return nil
}

// AfterApply opens the repository, builds the logger and state store, and
// binds a *trimrun.Handler into Kong's dependency graph so Run can take it
// as a parameter.
func (cmd *trimCmd) AfterApply(kctx *kong.Context) error {
	level := silog.LevelInfo
	if cmd.Verbose {
		level = silog.LevelDebug
	}
	if s := os.Getenv("GIT_TRIM_LOG"); s != "" {
		if lvl, ok := silog.ParseLevel(s); ok {
			level = lvl
		}
	}
	log := silog.New(os.Stderr, &silog.Options{Level: level})

	return kctx.BindToProvider(func(ctx context.Context) (*trimrun.Handler, error) {
		repo, err := git.Open(ctx, ".", git.OpenOptions{Log: log})
		if err != nil {
			return nil, fmt.Errorf("open repository: %w", err)
		}

		return &trimrun.Handler{
			Log:        log,
			Repository: repo,
			Store:      state.New(repo.GitDir()),
		}, nil
	})
}

// Run executes the classify-filter-plan-apply pipeline once, using the
// *trimrun.Handler bound in AfterApply.
func (cmd *trimCmd) Run(ctx context.Context, kctx *kong.Context, handler *trimrun.Handler) error {
	workers := cmd.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	result, err := handler.Run(ctx, trimrun.Options{
		Bases:          cmd.Bases,
		Protected:      cmd.Protected,
		Delete:         cmd.Delete,
		Update:         cmd.Update,
		UpdateInterval: time.Duration(cmd.UpdateInterval) * time.Second,
		Confirm:        cmd.Confirm,
		Detach:         cmd.Detach,
		DryRun:         cmd.DryRun,
		Workers:        workers,
		Stdout:         kctx.Stdout,
	})
	if err != nil {
		return err
	}
	if !result.Success() {
		return failedStepsError(result)
	}
	return nil
}

// failedStepsError turns a partially-applied plan into a single error so
// main can map it to exit code 1 without inspecting *executor.Result
// itself.
func failedStepsError(result *executor.Result) error {
	return fmt.Errorf("%d step(s) failed; see above for details", len(result.Failures))
}
