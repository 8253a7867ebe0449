package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/systemstart/font-assistant/pkg/api"
	"github.com/systemstart/font-assistant/pkg/runner"
	"github.com/systemstart/font-assistant/pkg/staging"
	"github.com/systemstart/font-assistant/pkg/tools"
)

// Env is everything a run may use. It is shared by concurrent runs and must
// not be mutated once dispatching starts.
type Env struct {
	Tools    tools.Set
	Staging  *staging.Manager
	Runner   runner.Runner
	Args     *Arguments
	Timeouts api.TimeoutConfig
}

// Pipeline is the interface all operations implement.
type Pipeline interface {
	Label(u api.Unit) string
	Run(ctx context.Context, r *Run) error
}

// Stage is a state of a run.
type Stage int

const (
	StagePending Stage = iota
	StageStaging
	StageInvoking
	StageFallback
	StageFinalizing
	StageSucceeded
	StageFailed
)

var stageNames = [...]string{"pending", "staging", "invoking", "fallback", "finalizing", "succeeded", "failed"}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// Run is one execution of a pipeline over a unit of work. It is owned by the
// goroutine executing it.
type Run struct {
	ID       string
	Unit     api.Unit
	Label    string
	Stage    Stage
	Trace    []Stage
	Attempts []runner.Result
	Outcome  api.Outcome
	Started  time.Time
	Duration time.Duration

	env *Env
	log *slog.Logger
}

// Execute runs the pipeline for unit.Kind to completion. Every fault,
// including a panic, ends up in the returned run's Outcome.
func Execute(ctx context.Context, env *Env, unit api.Unit) *Run {
	r := &Run{
		ID:      uuid.NewString(),
		Unit:    unit,
		Stage:   StagePending,
		Trace:   []Stage{StagePending},
		Started: time.Now(),
		env:     env,
	}
	r.log = slog.With("run", r.ID[:8], "operation", unit.Kind)

	p, err := New(unit.Kind)
	if err != nil {
		r.finish(err)
		return r
	}

	if len(unit.Paths) == 0 {
		r.finish(api.NewError(api.ErrPathDerivation, "no input files"))
		return r
	}

	r.Label = p.Label(unit)
	r.log = r.log.With("item", r.Label)

	// Runs still queued when the batch is interrupted must not touch
	// existing outputs.
	if err := ctx.Err(); err != nil {
		r.finish(api.Wrap(api.ErrCanceled, err, "cancelled before start"))
		return r
	}

	if err := env.Tools.Require(unit.Kind, (api.Request{Paths: unit.Paths}).Extension()); err != nil {
		r.finish(err)
		return r
	}

	r.finish(safeRun(ctx, p, r))
	return r
}

func safeRun(ctx context.Context, p Pipeline, r *Run) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("pipeline panicked", "panic", rec)
			err = api.Errorf(api.ErrUnhandled, "unexpected fault: %v", rec)
		}
	}()
	return p.Run(ctx, r)
}

func (r *Run) enter(s Stage) {
	r.log.Debug("stage", "from", r.Stage, "to", s)
	r.Stage = s
	r.Trace = append(r.Trace, s)
}

func (r *Run) invoke(ctx context.Context, inv runner.Invocation) runner.Result {
	res := r.env.Runner.Run(ctx, inv)
	r.Attempts = append(r.Attempts, res)
	return res
}

func (r *Run) finish(err error) {
	r.Duration = time.Since(r.Started)

	if err == nil {
		r.enter(StageSucceeded)
		r.Outcome = api.Succeeded()
		r.log.Debug("run succeeded", "duration", r.Duration)
		return
	}

	var classified *api.Error
	if !errors.As(err, &classified) {
		err = &api.Error{Class: api.ErrUnhandled, Msg: err.Error(), Err: err}
	}
	r.enter(StageFailed)
	r.Outcome = api.Failed(err)
	r.log.Debug("run failed", "duration", r.Duration, "error", err)
}

// Report converts the finished run into what sinks display.
func (r *Run) Report() api.Report {
	return api.Report{
		RunID:     r.ID,
		Label:     r.Label,
		Operation: string(r.Unit.Kind),
		Paths:     r.Unit.Paths,
		Outcome:   r.Outcome,
		Duration:  r.Duration,
	}
}
