package pipeline

import (
	"github.com/systemstart/font-assistant/pkg/api"
)

// New returns the Pipeline implementing kind.
func New(kind api.Kind) (Pipeline, error) {
	switch kind {
	case api.KindSplit:
		return splitPipeline{}, nil
	case api.KindCombine:
		return combinePipeline{}, nil
	case api.KindExtract:
		return extractPipeline{}, nil
	case api.KindApply:
		return applyPipeline{}, nil
	default:
		return nil, api.Errorf(api.ErrInvalidRequest, "unknown operation: %s", kind)
	}
}
