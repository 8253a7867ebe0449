package dispatch

import (
	"context"
	"log/slog"

	"github.com/systemstart/font-assistant/pkg/api"
	"github.com/systemstart/font-assistant/pkg/pipeline"
	"golang.org/x/sync/errgroup"
)

// Dispatcher validates drops and runs one pipeline per unit of work on a
// bounded pool of goroutines.
type Dispatcher struct {
	env     *pipeline.Env
	workers int
}

// New creates a dispatcher running at most workers pipelines at once.
func New(env *pipeline.Env, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{env: env, workers: workers}
}

// Dispatch validates req and starts its runs. The returned channel yields one
// report per unit and is closed after the last run finished. It is buffered
// for every unit, so runs never wait for the consumer.
func (d *Dispatcher) Dispatch(ctx context.Context, req api.Request) (<-chan api.Report, error) {
	if err := d.Validate(req); err != nil {
		return nil, err
	}

	units := req.Units()
	reports := make(chan api.Report, len(units))

	slog.Info("dispatching", "operation", req.Kind, "files", len(req.Paths), "runs", len(units))

	go func() {
		defer close(reports)

		var g errgroup.Group
		g.SetLimit(d.workers)
		for _, u := range units {
			g.Go(func() error {
				reports <- pipeline.Execute(ctx, d.env, u).Report()
				return nil
			})
		}
		_ = g.Wait()
	}()

	return reports, nil
}
