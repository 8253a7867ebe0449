package pipeline

import (
	"context"
	"path/filepath"

	"github.com/systemstart/font-assistant/pkg/api"
	"github.com/systemstart/font-assistant/pkg/runner"
	"github.com/systemstart/font-assistant/pkg/staging"
	"github.com/systemstart/font-assistant/pkg/tools"
)

// combinePipeline packs fonts sharing one extension into a collection beside
// the first input. UniteTTC is tried first; when it rejects the inputs as
// not TrueType, AFDKO's otf2otc builds the collection instead.
type combinePipeline struct{}

func (combinePipeline) Label(u api.Unit) string {
	return filepath.Base(CombineDestination(u.Paths[0]))
}

func (p combinePipeline) Run(ctx context.Context, r *Run) error {
	sources := r.Unit.Paths
	if (api.Request{Paths: sources}).Extension() == "" {
		return api.NewError(api.ErrInvalidRequest, "all fonts to combine must share one extension")
	}
	if _, _, _, err := splitPath(sources[0]); err != nil {
		return err
	}
	dest := CombineDestination(sources[0])

	r.enter(StageStaging)
	if err := staging.RemoveIfExists(dest); err != nil {
		return api.Wrap(api.ErrFilesystem, err, "removing previous collection")
	}

	args, err := r.env.Args.Unite(dest, sources)
	if err != nil {
		return err
	}

	r.enter(StageInvoking)
	res := r.invoke(ctx, runner.Invocation{
		Executable: r.env.Tools.Unite.Path,
		Args:       args,
		Dir:        filepath.Dir(dest),
		Timeout:    r.env.Timeouts.Collection,
	})
	if err := res.Failure(); err != nil {
		return err
	}

	if !UniteSucceeded(res) {
		if !NotTrueType(res) {
			return toolReported(res.Stderr)
		}
		if err := p.fallback(ctx, r, dest, sources, res); err != nil {
			return err
		}
	}

	r.enter(StageFinalizing)
	r.log.Debug("collection written", "path", dest)
	return nil
}

// fallback runs otf2otc through the shell from its own directory, as its
// wrapper script requires. Failure reports the primary tool's stderr.
func (combinePipeline) fallback(ctx context.Context, r *Run, dest string, sources []string, primary runner.Result) error {
	tool := r.env.Tools.Collection
	if !tool.Exists {
		return tools.Missing(tool)
	}

	args, err := r.env.Args.Collection(dest, sources)
	if err != nil {
		return err
	}

	r.enter(StageFallback)
	r.log.Info("falling back to otf2otc", "reason", notTTFToken)
	res := r.invoke(ctx, runner.Invocation{
		Executable: tool.Path,
		Args:       args,
		Dir:        filepath.Dir(tool.Path),
		Timeout:    r.env.Timeouts.Collection,
		Shell:      true,
	})
	if err := res.Failure(); err != nil {
		return err
	}
	if !CollectionSucceeded(res) {
		return toolReported(primary.Stderr)
	}
	return nil
}
