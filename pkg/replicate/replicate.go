// Package replicate turns one font into a numbered series that combine
// recognizes, for building test collections.
package replicate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemstart/font-assistant/pkg/api"
	"github.com/systemstart/font-assistant/pkg/staging"
)

// DefaultCopies is the series length used when none is given.
const DefaultCopies = 6

// Replicate renames path to <name>001<ext> and copies it to <name>002<ext>
// up to <name>NNN<ext>. Only .ttf and .otf are accepted. Existing files are
// never overwritten. It returns the series in order.
func Replicate(path string, copies int) ([]string, error) {
	if copies < 1 || copies > 999 {
		return nil, api.Errorf(api.ErrInvalidRequest, "copies must be between 1 and 999, got %d", copies)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, api.Wrap(api.ErrInvalidRequest, err, "cannot access "+path)
	}
	if info.IsDir() {
		return nil, api.Errorf(api.ErrInvalidRequest, "not a file: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != api.ExtTTF && ext != api.ExtOTF {
		return nil, api.Errorf(api.ErrInvalidRequest, "only .ttf and .otf fonts can be replicated, got %s", filepath.Ext(path))
	}

	stem := strings.TrimSuffix(path, filepath.Ext(path))
	series := make([]string, copies)
	for i := range series {
		series[i] = fmt.Sprintf("%s%03d%s", stem, i+1, ext)
	}

	for _, p := range series {
		if staging.Exists(p) {
			return nil, api.Errorf(api.ErrFilesystem, "refusing to overwrite %s", p)
		}
	}

	if err := os.Rename(path, series[0]); err != nil {
		return nil, api.Wrap(api.ErrFilesystem, err, "renaming "+filepath.Base(path))
	}
	for _, p := range series[1:] {
		if err := staging.CopyFile(series[0], p); err != nil {
			return nil, api.Wrap(api.ErrFilesystem, err, "copying "+filepath.Base(p))
		}
	}

	slog.Debug("replicated font", "source", path, "copies", copies)
	return series, nil
}
