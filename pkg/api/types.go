package api

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// Kind names one of the operations a drop can request.
type Kind string

const (
	KindSplit   Kind = "split"
	KindCombine Kind = "combine"
	KindExtract Kind = "extract"
	KindApply   Kind = "apply"

	ExtTTF = ".ttf"
	ExtOTF = ".otf"
	ExtTTC = ".ttc"
	ExtOTC = ".otc"
	ExtXML = ".xml"
)

// Kinds lists every operation in display order.
var Kinds = []Kind{KindSplit, KindCombine, KindExtract, KindApply}

var acceptedExtensions = map[Kind][]string{
	KindSplit:   {ExtTTC, ExtOTC},
	KindCombine: {ExtTTF, ExtOTF},
	KindExtract: {ExtTTF, ExtOTF},
	KindApply:   {ExtTTF, ExtOTF},
}

// ParseKind converts a command line word into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := acceptedExtensions[k]; !ok {
		return "", fmt.Errorf("unknown operation: %q", s)
	}
	return k, nil
}

// Accepts reports whether files with extension ext may be dropped for k.
// The comparison ignores case.
func (k Kind) Accepts(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range acceptedExtensions[k] {
		if e == ext {
			return true
		}
	}
	return false
}

// Extensions returns the extensions accepted by k.
func (k Kind) Extensions() []string {
	return append([]string(nil), acceptedExtensions[k]...)
}

// Request is a batch of dropped files together with the operation asked for.
type Request struct {
	Kind  Kind
	Paths []string
}

// Unit is the slice of a Request handled by one pipeline run.
type Unit struct {
	Kind  Kind
	Paths []string
}

// Units splits the request into independent units of work: the whole batch
// for combine, one file each otherwise.
func (r Request) Units() []Unit {
	if len(r.Paths) == 0 {
		return nil
	}
	if r.Kind == KindCombine {
		return []Unit{{Kind: r.Kind, Paths: append([]string(nil), r.Paths...)}}
	}
	units := make([]Unit, 0, len(r.Paths))
	for _, p := range r.Paths {
		units = append(units, Unit{Kind: r.Kind, Paths: []string{p}})
	}
	return units
}

// Extension returns the lower-cased extension shared by the request's paths,
// or an empty string when the paths disagree.
func (r Request) Extension() string {
	ext := ""
	for i, p := range r.Paths {
		e := strings.ToLower(filepath.Ext(p))
		if i == 0 {
			ext = e
			continue
		}
		if e != ext {
			return ""
		}
	}
	return ext
}

// Status is the terminal state of a pipeline run.
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
)

func (s Status) String() string {
	if s == StatusSucceeded {
		return "succeeded"
	}
	return "failed"
}

// Outcome is the result of one pipeline run: Ok, or Error with a message.
type Outcome struct {
	Status  Status
	Message string
	Err     error
}

// Succeeded returns the Ok outcome.
func Succeeded() Outcome {
	return Outcome{Status: StatusSucceeded, Message: "done"}
}

// Failed returns an Error outcome carrying err's message.
func Failed(err error) Outcome {
	if err == nil {
		err = NewError(ErrUnhandled, "unknown failure")
	}
	return Outcome{Status: StatusFailed, Message: err.Error(), Err: err}
}

// OK reports whether the run succeeded.
func (o Outcome) OK() bool { return o.Status == StatusSucceeded }

// Severity is a presentation hint for sinks.
func (o Outcome) Severity() slog.Level {
	if o.OK() {
		return slog.LevelInfo
	}
	return slog.LevelError
}

// Report is what a sink receives for every finished run.
type Report struct {
	RunID     string
	Label     string
	Operation string
	Paths     []string
	Outcome   Outcome
	Duration  time.Duration
}
