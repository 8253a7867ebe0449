package dispatch

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const globMeta = "*?[{"

// ExpandPaths turns command line arguments into absolute file paths. Plain
// paths are kept as given (validation reports missing ones); patterns such as
// fonts/**/*.ttc are expanded to the files they match, sorted. Duplicates are
// dropped, first occurrence wins.
func ExpandPaths(args []string) ([]string, error) {
	var result []string
	seen := make(map[string]bool)

	add := func(p string) error {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		if !seen[abs] {
			seen[abs] = true
			result = append(result, abs)
		}
		return nil
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, globMeta) {
			if err := add(arg); err != nil {
				return nil, err
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", arg)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if err := add(m); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}
