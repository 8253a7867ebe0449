package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/systemstart/font-assistant/pkg/api"
	"github.com/systemstart/font-assistant/pkg/runner"
	"github.com/systemstart/font-assistant/pkg/staging"
	"github.com/systemstart/font-assistant/pkg/tools"
)

// fakeRunner records invocations and answers them with respond.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []runner.Invocation
	respond func(inv runner.Invocation) runner.Result
}

func (f *fakeRunner) Run(_ context.Context, inv runner.Invocation) runner.Result {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.mu.Unlock()

	res := runner.Result{}
	if f.respond != nil {
		res = f.respond(inv)
	}
	res.Invocation = inv
	if !res.StartFailed && !res.TimedOut && !res.Canceled {
		res.ExitObserved = true
	}
	return res
}

func (f *fakeRunner) Calls() []runner.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Invocation(nil), f.calls...)
}

func newTestEnv(t *testing.T, respond func(inv runner.Invocation) runner.Result) (*Env, *fakeRunner) {
	t.Helper()

	mgr := staging.NewManager(filepath.Join(t.TempDir(), "scratch"))
	if err := mgr.Reset(); err != nil {
		t.Fatal(err)
	}

	toolsDir := t.TempDir()
	fr := &fakeRunner{respond: respond}
	env := &Env{
		Tools: tools.Set{
			Unite:      tools.Tool{ID: tools.Unite, Path: filepath.Join(toolsDir, "UniteTTC"), Exists: true},
			Collection: tools.Tool{ID: tools.Collection, Path: filepath.Join(toolsDir, "afdko", "otf2otc"), Exists: true},
			Metadata:   tools.Tool{ID: tools.Metadata, Path: filepath.Join(toolsDir, "ttfname3_zh"), Exists: true},
		},
		Staging: mgr,
		Runner:  fr,
		Args:    DefaultArguments(),
		Timeouts: api.TimeoutConfig{
			Collection: api.DefaultCollectionTimeout,
			Metadata:   api.DefaultMetadataTimeout,
		},
	}
	return env, fr
}

// writeTestFile writes content to a file in dir, failing the test on error.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func execute(env *Env, kind api.Kind, paths ...string) *Run {
	return Execute(context.Background(), env, api.Unit{Kind: kind, Paths: paths})
}

var testTimeout = 15 * time.Second
