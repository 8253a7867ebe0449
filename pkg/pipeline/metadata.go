package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/systemstart/font-assistant/pkg/api"
	"github.com/systemstart/font-assistant/pkg/runner"
	"github.com/systemstart/font-assistant/pkg/staging"
)

// extractPipeline dumps a font's naming table to an XML file beside it.
type extractPipeline struct{}

func (extractPipeline) Label(u api.Unit) string { return baseLabel(u) }

func (extractPipeline) Run(ctx context.Context, r *Run) error {
	src := r.Unit.Paths[0]
	dir, _, _, err := splitPath(src)
	if err != nil {
		return err
	}
	dest := MetadataPath(src)

	r.enter(StageStaging)
	if err := staging.RemoveIfExists(dest); err != nil {
		return api.Wrap(api.ErrFilesystem, err, "removing previous metadata")
	}

	args, err := r.env.Args.Extract(src, dest)
	if err != nil {
		return err
	}

	return runMetadataTool(ctx, r, args, dir)
}

// applyPipeline writes an edited naming table back, producing a new font in
// the Modified subdirectory.
type applyPipeline struct{}

func (applyPipeline) Label(u api.Unit) string { return baseLabel(u) }

func (applyPipeline) Run(ctx context.Context, r *Run) error {
	src := r.Unit.Paths[0]
	dir, _, _, err := splitPath(src)
	if err != nil {
		return err
	}

	xml := MetadataPath(src)
	if !staging.Exists(xml) {
		return api.Errorf(api.ErrMissingPrerequisite, "%s: %s", missingXMLMsg, filepath.Base(xml))
	}

	r.enter(StageStaging)
	dest := ModifiedPath(src)
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return api.Wrap(api.ErrFilesystem, err, "creating output directory")
	}
	if err := staging.RemoveIfExists(dest); err != nil {
		return api.Wrap(api.ErrFilesystem, err, "removing previous output")
	}

	args, err := r.env.Args.Apply(xml, src, dest)
	if err != nil {
		return err
	}

	return runMetadataTool(ctx, r, args, dir)
}

// runMetadataTool invokes ttfname3. The tool is silent on success; whatever
// it prints is the error message, passed on unchanged.
func runMetadataTool(ctx context.Context, r *Run, args []string, dir string) error {
	r.enter(StageInvoking)
	res := r.invoke(ctx, runner.Invocation{
		Executable: r.env.Tools.Metadata.Path,
		Args:       args,
		Dir:        dir,
		Timeout:    r.env.Timeouts.Metadata,
	})
	if err := res.Failure(); err != nil {
		return err
	}
	if !MetadataSucceeded(res) {
		return api.NewError(api.ErrToolReported, res.Stdout)
	}

	r.enter(StageFinalizing)
	return nil
}
