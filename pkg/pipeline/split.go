package pipeline

import (
	"context"
	"path/filepath"

	"github.com/systemstart/font-assistant/pkg/api"
	"github.com/systemstart/font-assistant/pkg/runner"
	"github.com/systemstart/font-assistant/pkg/staging"
)

// splitPipeline breaks one TTC/OTC into its fonts, written to a sibling
// directory named after the collection.
type splitPipeline struct{}

func (splitPipeline) Label(u api.Unit) string { return baseLabel(u) }

func (splitPipeline) Run(ctx context.Context, r *Run) error {
	src := r.Unit.Paths[0]
	dir, file, base, err := splitPath(src)
	if err != nil {
		return err
	}

	r.enter(StageStaging)

	outDir := SplitOutputDir(src)
	if err := staging.ResetDir(outDir); err != nil {
		return api.Wrap(api.ErrFilesystem, err, "preparing output directory")
	}

	var area *staging.Area
	target := filepath.Join(outDir, file)
	if staging.NeedsStaging(dir) {
		area, err = r.env.Staging.NewArea()
		if err != nil {
			return api.Wrap(api.ErrFilesystem, err, "preparing scratch area")
		}
		defer func() {
			if err := area.Release(); err != nil {
				r.log.Warn("failed to release scratch area", "dir", area.Dir(), "error", err)
			}
		}()

		target, err = area.Stage(src, staging.SanitizeName(base))
		if err != nil {
			return api.Wrap(api.ErrFilesystem, err, "staging source")
		}
		r.log.Debug("staged source outside dotted directory", "staged", target)
	} else if err := staging.CopyFile(src, target); err != nil {
		return api.Wrap(api.ErrFilesystem, err, "copying source")
	}

	args, err := r.env.Args.Split(target)
	if err != nil {
		return err
	}

	r.enter(StageInvoking)
	res := r.invoke(ctx, runner.Invocation{
		Executable: r.env.Tools.Unite.Path,
		Args:       args,
		Dir:        filepath.Dir(target),
		Timeout:    r.env.Timeouts.Collection,
	})

	if err := staging.RemoveIfExists(target); err != nil {
		r.log.Warn("failed to remove working copy", "path", target, "error", err)
	}

	if err := res.Failure(); err != nil {
		return err
	}
	if !SplitSucceeded(res) {
		return toolReported(res.Stderr)
	}

	r.enter(StageFinalizing)
	if area != nil {
		if err := area.Unstage(outDir); err != nil {
			return api.Wrap(api.ErrFilesystem, err, "collecting split fonts")
		}
	}
	return nil
}
