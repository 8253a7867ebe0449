package dispatch

import (
	"os"
	"strings"

	"github.com/systemstart/font-assistant/pkg/api"
)

// Validate rejects a drop before any run starts: missing files, directories,
// mixed or unsuitable file types, and operations whose tool was not found.
func (d *Dispatcher) Validate(req api.Request) error {
	if len(req.Paths) == 0 {
		return api.NewError(api.ErrInvalidRequest, "no files given")
	}

	for _, p := range req.Paths {
		info, err := os.Stat(p)
		if err != nil {
			return api.Wrap(api.ErrInvalidRequest, err, "cannot access "+p)
		}
		if info.IsDir() {
			return api.Errorf(api.ErrInvalidRequest, "drop files, not directories: %s", p)
		}
	}

	ext := req.Extension()
	if ext == "" {
		return api.NewError(api.ErrInvalidRequest, "all files must be of the same type")
	}
	if !req.Kind.Accepts(ext) {
		return api.Errorf(api.ErrInvalidRequest, "%s expects %s files, got %s",
			req.Kind, strings.Join(req.Kind.Extensions(), "/"), ext)
	}

	return d.env.Tools.Require(req.Kind, ext)
}
