package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/systemstart/font-assistant/pkg/api"
	"github.com/systemstart/font-assistant/pkg/pipeline"
	"github.com/systemstart/font-assistant/pkg/runner"
	"github.com/systemstart/font-assistant/pkg/staging"
	"github.com/systemstart/font-assistant/pkg/tools"
)

// recordingRunner answers every invocation with respond and remembers it.
type recordingRunner struct {
	mu      sync.Mutex
	calls   []runner.Invocation
	respond func(inv runner.Invocation) runner.Result
}

func (r *recordingRunner) Run(_ context.Context, inv runner.Invocation) runner.Result {
	r.mu.Lock()
	r.calls = append(r.calls, inv)
	r.mu.Unlock()

	res := r.respond(inv)
	res.Invocation = inv
	res.ExitObserved = true
	return res
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestDispatcher(t *testing.T, workers int, respond func(inv runner.Invocation) runner.Result) (*Dispatcher, *recordingRunner, *pipeline.Env) {
	t.Helper()

	mgr := staging.NewManager(filepath.Join(t.TempDir(), "scratch"))
	if err := mgr.Reset(); err != nil {
		t.Fatal(err)
	}

	rr := &recordingRunner{respond: respond}
	env := &pipeline.Env{
		Tools: tools.Set{
			Unite:      tools.Tool{ID: tools.Unite, Path: "/opt/tools/UniteTTC", Exists: true},
			Collection: tools.Tool{ID: tools.Collection, Path: "/opt/tools/afdko/otf2otc", Exists: true},
			Metadata:   tools.Tool{ID: tools.Metadata, Path: "/opt/tools/ttfname3_zh", Exists: true},
		},
		Staging:  mgr,
		Runner:   rr,
		Args:     pipeline.DefaultArguments(),
		Timeouts: api.TimeoutConfig{Collection: api.DefaultCollectionTimeout, Metadata: api.DefaultMetadataTimeout},
	}
	return New(env, workers), rr, env
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

func collect(ch <-chan api.Report) []api.Report {
	var out []api.Report
	for r := range ch {
		out = append(out, r)
	}
	return out
}
