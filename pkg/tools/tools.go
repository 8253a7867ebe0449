package tools

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/systemstart/font-assistant/pkg/api"
)

// ID names an external tool as shown to the user.
type ID string

const (
	Unite      ID = "UniteTTC"
	Collection ID = "AFDKO"
	Metadata   ID = "ttfname3_zh"
)

// Tool is the resolved location of one external tool. Companion is only set
// for the collection-conversion pair, which is usable only when both halves
// exist.
type Tool struct {
	ID        ID
	Path      string
	Companion string
	Exists    bool
}

// Set is the tool availability resolved once at startup. It is read-only
// afterwards and safe to share between runs.
type Set struct {
	Unite      Tool
	Collection Tool
	Metadata   Tool
}

// Resolve looks every configured tool up relative to cfg.ToolsDir, falling
// back to PATH for bare names.
func Resolve(cfg *api.Config) Set {
	otf2otc, otf2otcOK := locate(cfg.ToolsDir, cfg.Tools.Otf2Otc)
	otc2otf, otc2otfOK := locate(cfg.ToolsDir, cfg.Tools.Otc2Otf)

	s := Set{
		Unite:    newTool(Unite, cfg.ToolsDir, cfg.Tools.Unite),
		Metadata: newTool(Metadata, cfg.ToolsDir, cfg.Tools.TtfName),
		Collection: Tool{
			ID:        Collection,
			Path:      otf2otc,
			Companion: otc2otf,
			Exists:    otf2otcOK && otc2otfOK,
		},
	}

	for _, t := range s.All() {
		slog.Debug("resolved tool", "tool", t.ID, "path", t.Path, "found", t.Exists)
	}
	return s
}

func newTool(id ID, dir, name string) Tool {
	p, ok := locate(dir, name)
	return Tool{ID: id, Path: p, Exists: ok}
}

func locate(dir, name string) (string, bool) {
	p := name
	if !filepath.IsAbs(p) && dir != "" {
		p = filepath.Join(dir, name)
	}
	if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
		return p, true
	}

	if !strings.ContainsRune(name, '/') && !strings.ContainsRune(name, filepath.Separator) {
		if found, err := exec.LookPath(name); err == nil {
			return found, true
		}
	}
	return p, false
}

// All returns the tools in display order.
func (s Set) All() []Tool {
	return []Tool{s.Unite, s.Collection, s.Metadata}
}

// Require checks that every tool needed to run kind on files with extension
// ext is available.
func (s Set) Require(kind api.Kind, ext string) error {
	needed := []Tool{}
	switch kind {
	case api.KindSplit:
		needed = append(needed, s.Unite)
	case api.KindCombine:
		needed = append(needed, s.Unite)
		if strings.EqualFold(ext, api.ExtOTF) {
			needed = append(needed, s.Collection)
		}
	case api.KindExtract, api.KindApply:
		needed = append(needed, s.Metadata)
	default:
		return api.Errorf(api.ErrInvalidRequest, "unknown operation %q", kind)
	}

	for _, t := range needed {
		if !t.Exists {
			return Missing(t)
		}
	}
	return nil
}

// Missing returns the error reported when t is not available.
func Missing(t Tool) error {
	return api.Errorf(api.ErrToolUnavailable, "required tool not found: %s", t.ID)
}

func (t Tool) String() string {
	state := "not found"
	if t.Exists {
		state = "found"
	}
	line := fmt.Sprintf("%-12s %-9s %s", t.ID, state, t.Path)
	if t.Companion != "" {
		line += ", " + t.Companion
	}
	return line
}
