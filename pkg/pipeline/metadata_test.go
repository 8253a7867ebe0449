package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/systemstart/font-assistant/pkg/api"
	"github.com/systemstart/font-assistant/pkg/runner"
)

func TestExtract_SuccessOnlyWhenSilent(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		wantOK  bool
		wantMsg string
	}{
		{"silent", "", true, "done"},
		{"whitespace", " \r\n\t", true, "done"},
		{"error text", "Cannot open font file\n", false, "Cannot open font file\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := writeTestFile(t, dir, "Font.ttf", "font")
			dest := writeTestFile(t, dir, "Font.xml", "stale")

			env, fr := newTestEnv(t, func(inv runner.Invocation) runner.Result {
				if _, err := os.Stat(dest); !os.IsNotExist(err) {
					t.Error("previous xml should be deleted before the tool runs")
				}
				return runner.Result{Stdout: tt.stdout, Stderr: "ignored"}
			})

			run := execute(env, api.KindExtract, src)

			if run.Outcome.OK() != tt.wantOK {
				t.Fatalf("outcome = %+v", run.Outcome)
			}
			if run.Outcome.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", run.Outcome.Message, tt.wantMsg)
			}

			calls := fr.Calls()
			if len(calls) != 1 {
				t.Fatalf("expected one invocation, got %d", len(calls))
			}
			if want := []string{src, "-o", dest}; !slices.Equal(calls[0].Args, want) {
				t.Errorf("args = %q, want %q", calls[0].Args, want)
			}
			if calls[0].Timeout != api.DefaultMetadataTimeout {
				t.Errorf("metadata tool should be bounded, timeout = %v", calls[0].Timeout)
			}
		})
	}
}

func TestApply_MissingMetadataNeverInvokesTool(t *testing.T) {
	src := writeTestFile(t, t.TempDir(), "Font.otf", "font")
	env, fr := newTestEnv(t, func(runner.Invocation) runner.Result {
		t.Error("tool must not run without metadata")
		return runner.Result{}
	})

	run := execute(env, api.KindApply, src)

	if !errors.Is(run.Outcome.Err, api.ErrMissingPrerequisite) {
		t.Fatalf("err = %v", run.Outcome.Err)
	}
	if len(fr.Calls()) != 0 {
		t.Errorf("expected no invocations, got %d", len(fr.Calls()))
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(src), "Modified")); !os.IsNotExist(err) {
		t.Error("nothing should be created for a missing prerequisite")
	}
}

func TestApply_WritesIntoModifiedDirectory(t *testing.T) {
	dir := t.TempDir()
	src := writeTestFile(t, dir, "Font.otf", "font")
	xml := writeTestFile(t, dir, "Font.xml", "<names/>")
	dest := filepath.Join(dir, "Modified", "Font.otf")
	writeTestFile(t, filepath.Dir(dest), "Font.otf", "stale")

	env, fr := newTestEnv(t, func(inv runner.Invocation) runner.Result {
		if _, err := os.Stat(dest); !os.IsNotExist(err) {
			t.Error("previous output should be deleted before the tool runs")
		}
		return runner.Result{Stdout: "\n"}
	})

	run := execute(env, api.KindApply, src)
	if !run.Outcome.OK() {
		t.Fatalf("unexpected failure: %s", run.Outcome.Message)
	}

	calls := fr.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(calls))
	}
	if want := []string{xml, src, "-o", dest}; !slices.Equal(calls[0].Args, want) {
		t.Errorf("args = %q, want %q", calls[0].Args, want)
	}
	if MetadataPath(src) != xml || ModifiedPath(src) != dest {
		t.Errorf("derived paths disagree with the invocation: %q, %q", MetadataPath(src), ModifiedPath(src))
	}
}

func TestApply_ToolOutputIsFailure(t *testing.T) {
	dir := t.TempDir()
	src := writeTestFile(t, dir, "Font.ttf", "font")
	writeTestFile(t, dir, "Font.xml", "<names/>")

	env, _ := newTestEnv(t, func(runner.Invocation) runner.Result {
		return runner.Result{Stdout: "XML parse error at line 3"}
	})

	run := execute(env, api.KindApply, src)

	if run.Outcome.OK() {
		t.Fatal("expected failure")
	}
	if run.Outcome.Message != "XML parse error at line 3" {
		t.Errorf("message = %q", run.Outcome.Message)
	}
}
