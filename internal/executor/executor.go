// Package executor applies a plan.Plan: printing it in dry-run mode,
// confirming with the user, then running its steps sequentially and
// reporting per-step failures without aborting the rest of the run.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/gitutil/trim/internal/plan"
	"github.com/gitutil/trim/internal/silog"
)

// ErrAborted is returned when the user declines the confirmation prompt.
var ErrAborted = errors.New("aborted: confirmation declined")

// Options configures a Run.
type Options struct {
	// DryRun prints the plan and applies nothing.
	DryRun bool

	// Confirm prompts before applying anything, unless stdin isn't
	// interactive (checked via IsTTY), in which case the prompt is
	// skipped and the plan proceeds.
	Confirm bool

	// Stdout receives the dry-run listing. Defaults to os.Stdout.
	Stdout io.Writer

	// Log receives one line per ref of each applied step and one line
	// per failed step. Defaults to a no-op logger.
	Log *silog.Logger

	// IsTTY overrides the interactive-stdin check; mainly for tests.
	// Defaults to checking os.Stdin with mattn/go-isatty.
	IsTTY func() bool
}

func (o Options) isInteractive() bool {
	if o.IsTTY != nil {
		return o.IsTTY()
	}
	return isatty.IsTerminal(os.Stdin.Fd())
}

func (o Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

func (o Options) log() *silog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return silog.Nop()
}

// Result reports the outcome of applying a Plan.
type Result struct {
	Failures []*StepError
}

// Success reports whether every step succeeded.
func (r *Result) Success() bool { return len(r.Failures) == 0 }

// Run applies p against repo. In dry-run mode it prints the plan and
// returns immediately. Otherwise, unless the confirmation prompt (when
// one is shown) is declined, it detaches HEAD if the plan calls for it, then
// applies every step in order, recording failures as it goes rather than
// stopping at the first one.
func Run(ctx context.Context, repo plan.Repository, p *plan.Plan, opts Options) (*Result, error) {
	if opts.DryRun {
		printDryRun(opts.stdout(), p)
		return &Result{}, nil
	}

	if opts.Confirm && opts.isInteractive() {
		ok, err := confirm(p)
		if err != nil {
			return nil, fmt.Errorf("confirmation prompt: %w", err)
		}
		if !ok {
			return nil, ErrAborted
		}
	}

	log := opts.log()

	if p.DetachTo != nil {
		if err := repo.DetachHead(ctx, string(*p.DetachTo)); err != nil {
			return nil, fmt.Errorf("detach head: %w", err)
		}
		log.Infof("detach-head %s", *p.DetachTo)
	}

	result := &Result{}
	for _, step := range p.Steps {
		if err := step.Apply(ctx, repo); err != nil {
			stepErr := &StepError{Op: step.Op(), Refs: step.Refs(), Err: err}
			result.Failures = append(result.Failures, stepErr)
			log.Errorf("%s", stepErr)
			continue
		}
		for _, ref := range step.Refs() {
			log.Infof("%s %s", step.Op(), ref)
		}
	}
	return result, nil
}

func confirm(p *plan.Plan) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Apply %d mutation(s)?", len(p.Steps))).
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// printDryRun writes one "<op> <ref>" line per ref the plan would affect,
// stable-sorted by ref name so the output is diff-friendly and suitable
// for piping into another tool.
func printDryRun(w io.Writer, p *plan.Plan) {
	type line struct{ op, ref string }

	var lines []line
	for _, step := range p.Steps {
		for _, ref := range step.Refs() {
			lines = append(lines, line{op: step.Op(), ref: ref})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].ref < lines[j].ref })

	if p.DetachTo != nil {
		fmt.Fprintf(w, "detach-head %s\n", *p.DetachTo)
	}
	for _, l := range lines {
		fmt.Fprintf(w, "%s %s\n", l.op, l.ref)
	}
}
