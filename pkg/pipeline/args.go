package pipeline

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/kballard/go-shellquote"
	"github.com/systemstart/font-assistant/pkg/api"
)

// Arguments renders the argument list of every tool invocation from text
// templates. A template renders to a command line which is split back into
// argv, so `arg` and `args` must be used for anything that may contain
// spaces.
type Arguments struct {
	split      *template.Template
	unite      *template.Template
	collection *template.Template
	extract    *template.Template
	apply      *template.Template
}

// argData is the template context.
type argData struct {
	Target      string
	Source      string
	Sources     []string
	Destination string
	Metadata    string
}

func funcMap() template.FuncMap {
	fm := sprig.TxtFuncMap()
	fm["arg"] = func(s string) string { return shellquote.Join(s) }
	fm["args"] = func(ss []string) string { return shellquote.Join(ss...) }
	return fm
}

// NewArguments parses the configured templates.
func NewArguments(cfg api.ArgumentsConfig) (*Arguments, error) {
	a := &Arguments{}
	templates := []struct {
		name string
		text string
		dst  **template.Template
	}{
		{"split", cfg.Split, &a.split},
		{"unite", cfg.Unite, &a.unite},
		{"collection", cfg.Collection, &a.collection},
		{"extract", cfg.Extract, &a.extract},
		{"apply", cfg.Apply, &a.apply},
	}

	for _, t := range templates {
		tmpl, err := template.New(t.name).Option("missingkey=error").Funcs(funcMap()).Parse(t.text)
		if err != nil {
			return nil, fmt.Errorf("parsing %s arguments: %w", t.name, err)
		}
		*t.dst = tmpl
	}
	return a, nil
}

// DefaultArguments returns the tool contracts the stock binaries expect.
func DefaultArguments() *Arguments {
	a, err := NewArguments(api.DefaultConfig().Arguments)
	if err != nil {
		panic(err)
	}
	return a
}

// Split renders the split tool's arguments for the working copy target.
func (a *Arguments) Split(target string) ([]string, error) {
	return render(a.split, argData{Target: target})
}

// Unite renders the unite tool's arguments: destination, then sources.
func (a *Arguments) Unite(dest string, sources []string) ([]string, error) {
	return render(a.unite, argData{Destination: dest, Sources: sources})
}

// Collection renders the otf2otc fallback's arguments.
func (a *Arguments) Collection(dest string, sources []string) ([]string, error) {
	return render(a.collection, argData{Destination: dest, Sources: sources})
}

// Extract renders the metadata tool's arguments for dumping src to dest.
func (a *Arguments) Extract(src, dest string) ([]string, error) {
	return render(a.extract, argData{Source: src, Destination: dest})
}

// Apply renders the metadata tool's arguments for writing xml into src.
func (a *Arguments) Apply(xml, src, dest string) ([]string, error) {
	return render(a.apply, argData{Metadata: xml, Source: src, Destination: dest})
}

func render(tmpl *template.Template, data argData) ([]string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, api.Wrap(api.ErrUnhandled, err, "rendering "+tmpl.Name()+" arguments")
	}
	args, err := shellquote.Split(buf.String())
	if err != nil {
		return nil, api.Wrap(api.ErrUnhandled, err, "splitting "+tmpl.Name()+" arguments")
	}
	return args, nil
}
