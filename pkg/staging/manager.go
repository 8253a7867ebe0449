package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const probeFilename = ".write-probe"

// Manager owns the process-wide scratch root. Reset it once at startup, then
// hand out one Area per pipeline run.
type Manager struct {
	root string
}

// NewManager returns a manager rooted at root. Nothing is touched on disk
// until Reset.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Root returns the scratch root directory.
func (m *Manager) Root() string { return m.root }

// Reset purges stale contents of the scratch root, recreates it and checks
// that it is writable. Callers treat an error as fatal.
func (m *Manager) Reset() error {
	entries, err := os.ReadDir(m.root)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading scratch root %s: %w", m.root, err)
	}

	for _, e := range entries {
		p := filepath.Join(m.root, e.Name())
		slog.Debug("removing stale scratch entry", "path", p)
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("purging scratch root: %w", err)
		}
	}

	if err := os.MkdirAll(m.root, 0o750); err != nil {
		return fmt.Errorf("creating scratch root %s: %w", m.root, err)
	}

	probe := filepath.Join(m.root, probeFilename)
	if err := os.WriteFile(probe, nil, 0o600); err != nil {
		return fmt.Errorf("scratch root %s is not writable: %w", m.root, err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("scratch root %s is not writable: %w", m.root, err)
	}

	slog.Debug("scratch root ready", "path", m.root, "purged", len(entries))
	return nil
}

// NewArea creates a uniquely named scratch subdirectory for one run.
func (m *Manager) NewArea() (*Area, error) {
	dir := filepath.Join(m.root, strings.ReplaceAll(uuid.NewString(), "-", ""))
	if err := os.Mkdir(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating scratch area: %w", err)
	}
	return &Area{dir: dir}, nil
}

// Area is a scratch subdirectory exclusively owned by one pipeline run.
type Area struct {
	dir      string
	released bool
}

// Dir returns the area's directory.
func (a *Area) Dir() string { return a.dir }

// Stage copies src into the area under name and returns the staged path.
func (a *Area) Stage(src, name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid staged name %q", name)
	}
	staged := filepath.Join(a.dir, name)
	if err := CopyFile(src, staged); err != nil {
		return "", fmt.Errorf("staging %s: %w", src, err)
	}
	return staged, nil
}

// Unstage moves every file produced in the area into outDir, replacing files
// of the same name, and removes the area.
func (a *Area) Unstage(outDir string) error {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return fmt.Errorf("reading scratch area: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		src := filepath.Join(a.dir, e.Name())
		dst := filepath.Join(outDir, e.Name())
		if err := MoveFile(src, dst); err != nil {
			return fmt.Errorf("moving %s to %s: %w", e.Name(), outDir, err)
		}
	}

	return a.Release()
}

// Release removes the area and anything left in it. Calling it again is a
// no-op.
func (a *Area) Release() error {
	if a == nil || a.released {
		return nil
	}
	if err := os.RemoveAll(a.dir); err != nil {
		return fmt.Errorf("removing scratch area: %w", err)
	}
	a.released = true
	return nil
}

// NeedsStaging reports whether the split tool would misparse a target inside
// dir. The tool's argument parser treats any dot in the directory part as the
// start of an extension.
func NeedsStaging(dir string) bool {
	return strings.Contains(dir, ".")
}

// SanitizeName strips every dot from a base name for a staged split target.
func SanitizeName(base string) string {
	return strings.ReplaceAll(base, ".", "")
}
