package staging

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestManager_ResetPurgesStaleContents(t *testing.T) {
	root := filepath.Join(t.TempDir(), "scratch")
	if err := os.MkdirAll(filepath.Join(root, "stale-run"), 0o750); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, root, "left.ttf", "x")
	writeTestFile(t, filepath.Join(root, "stale-run"), "part.ttf", "x")

	m := NewManager(root)
	if err := m.Reset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty scratch root, found %d entries", len(entries))
	}
}

func TestManager_ResetCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")
	if err := NewManager(root).Reset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Fatalf("scratch root not created: %v", err)
	}
}

func TestManager_ResetFailsWhenRootIsAFile(t *testing.T) {
	root := writeTestFile(t, t.TempDir(), "scratch", "not a directory")

	if err := NewManager(root).Reset(); err == nil {
		t.Fatal("expected error when scratch root cannot be used")
	}
}

func TestManager_ResetFailsWithoutWriteAccess(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := filepath.Join(t.TempDir(), "scratch")
	if err := os.MkdirAll(root, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(root, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(root, 0o750) })

	if err := NewManager(root).Reset(); err == nil {
		t.Fatal("expected error for read-only scratch root")
	}
}

func TestManager_NewAreaIsUnique(t *testing.T) {
	m := NewManager(t.TempDir())

	seen := make(map[string]bool)
	for range 20 {
		a, err := m.NewArea()
		if err != nil {
			t.Fatal(err)
		}
		if seen[a.Dir()] {
			t.Fatalf("duplicate area %s", a.Dir())
		}
		seen[a.Dir()] = true
		if filepath.Dir(a.Dir()) != m.Root() {
			t.Errorf("area %s not under root", a.Dir())
		}
	}
}

func TestArea_StageAndUnstage(t *testing.T) {
	src := writeTestFile(t, t.TempDir(), "Font.Family.ttc", "collection")
	outDir := t.TempDir()
	writeTestFile(t, outDir, "Font1.ttf", "old")

	a, err := NewManager(t.TempDir()).NewArea()
	if err != nil {
		t.Fatal(err)
	}

	staged, err := a.Stage(src, SanitizeName("Font.Family"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(staged) != "FontFamily" {
		t.Errorf("staged name = %q", filepath.Base(staged))
	}
	content, err := os.ReadFile(staged)
	if err != nil || string(content) != "collection" {
		t.Fatalf("staged copy mismatch: %q, %v", content, err)
	}

	if err := os.Remove(staged); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, a.Dir(), "Font1.ttf", "new")
	writeTestFile(t, a.Dir(), "Font2.ttf", "new")

	if err := a.Unstage(outDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"Font1.ttf", "Font2.ttf"} {
		content, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != "new" {
			t.Errorf("%s = %q, want moved content", name, content)
		}
	}
	if _, err := os.Stat(a.Dir()); !os.IsNotExist(err) {
		t.Errorf("area should be removed after unstage, stat err = %v", err)
	}
	if err := a.Release(); err != nil {
		t.Errorf("second release should be a no-op: %v", err)
	}
}

func TestArea_StageRejectsNestedName(t *testing.T) {
	src := writeTestFile(t, t.TempDir(), "a.ttc", "x")
	a, err := NewManager(t.TempDir()).NewArea()
	if err != nil {
		t.Fatal(err)
	}
	defer a.Release()

	if _, err := a.Stage(src, filepath.Join("..", "escape")); err == nil {
		t.Fatal("expected error for name with separators")
	}
}

func TestNeedsStaging(t *testing.T) {
	tests := []struct {
		dir  string
		want bool
	}{
		{"/fonts/plain", false},
		{"/fonts/v1.2", true},
		{"/home/user/.cache", true},
	}
	for _, tt := range tests {
		if got := NeedsStaging(tt.dir); got != tt.want {
			t.Errorf("NeedsStaging(%q) = %v, want %v", tt.dir, got, tt.want)
		}
	}
}
