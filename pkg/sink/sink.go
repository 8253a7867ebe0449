// Package sink presents finished runs to the user.
package sink

import (
	"context"
	"log/slog"
	"sync"

	"github.com/systemstart/font-assistant/pkg/api"
)

// Sink receives one report per finished run. Implementations are called from
// a single goroutine.
type Sink interface {
	Report(r api.Report)
}

// Log writes reports through a slog logger: successes at info, failures at
// error level with the run's message.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a sink logging to logger, or to the default logger if nil.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Report(r api.Report) {
	attrs := []slog.Attr{
		slog.String("operation", r.Operation),
		slog.String("item", r.Label),
		slog.Duration("duration", r.Duration),
	}
	if r.RunID != "" {
		attrs = append(attrs, slog.String("run", r.RunID[:min(8, len(r.RunID))]))
	}

	msg := "done"
	if !r.Outcome.OK() {
		msg = "failed"
		attrs = append(attrs, slog.String("error", r.Outcome.Message))
	}
	l.logger.LogAttrs(context.Background(), r.Outcome.Severity(), msg, attrs...)
}

// Collector keeps every report it receives.
type Collector struct {
	mu      sync.Mutex
	reports []api.Report
}

func (c *Collector) Report(r api.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
}

// Reports returns a copy of the collected reports in arrival order.
func (c *Collector) Reports() []api.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Report(nil), c.reports...)
}

// Summary counts the outcomes seen by Drain.
type Summary struct {
	Succeeded int
	Failed    int
}

// Total is the number of runs reported.
func (s Summary) Total() int { return s.Succeeded + s.Failed }

// Drain hands every report from reports to each sink until the channel is
// closed.
func Drain(reports <-chan api.Report, sinks ...Sink) Summary {
	var s Summary
	for r := range reports {
		if r.Outcome.OK() {
			s.Succeeded++
		} else {
			s.Failed++
		}
		for _, sk := range sinks {
			sk.Report(r)
		}
	}
	return s
}
