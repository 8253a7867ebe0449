package pipeline

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/systemstart/font-assistant/pkg/api"
)

const (
	modifiedDirName = "Modified"
	combinedSuffix  = "_combined"
)

// numberedFont matches inputs like FontABC001.ttf, whose collection is named
// after the part before the number.
var numberedFont = regexp.MustCompile(`(?i)\d{3}\.[ot]tf$`)

// CombineDestination derives the collection path from the first input:
// FontABC001.ttf becomes FontABC.ttc, FontXYZ.otf becomes
// FontXYZ_combined.ttc. The collection sits beside the input.
func CombineDestination(first string) string {
	if numberedFont.MatchString(first) {
		return first[:len(first)-len("001.ttf")] + api.ExtTTC
	}
	return strings.TrimSuffix(first, filepath.Ext(first)) + combinedSuffix + api.ExtTTC
}

// SplitOutputDir is the sibling directory named after the collection.
func SplitOutputDir(src string) string {
	dir, _, base, _ := splitPath(src)
	return filepath.Join(dir, base)
}

// MetadataPath is the XML file holding src's naming table.
func MetadataPath(src string) string {
	dir, _, base, _ := splitPath(src)
	return filepath.Join(dir, base+api.ExtXML)
}

// ModifiedPath is where apply writes the rewritten font.
func ModifiedPath(src string) string {
	dir, file, _, _ := splitPath(src)
	return filepath.Join(dir, modifiedDirName, file)
}

// splitPath returns the directory, file name and base name (without
// extension) of path.
func splitPath(path string) (dir, file, base string, err error) {
	if path == "" || strings.HasSuffix(path, string(filepath.Separator)) {
		return "", "", "", api.Errorf(api.ErrPathDerivation, "cannot derive a file name from %q", path)
	}
	dir, file = filepath.Split(path)
	dir = filepath.Clean(dir)
	base = strings.TrimSuffix(file, filepath.Ext(file))
	if file == "" || base == "" {
		return "", "", "", api.Errorf(api.ErrPathDerivation, "cannot derive a file name from %q", path)
	}
	return dir, file, base, nil
}

func baseLabel(u api.Unit) string {
	_, file, base, err := splitPath(u.Paths[0])
	if err != nil {
		return file
	}
	return base
}
