package runner

import "strings"

// Predicate decides from captured output whether a tool did its job.
type Predicate func(Result) bool

// StdoutContains matches when token occurs in standard output.
func StdoutContains(token string) Predicate {
	return func(r Result) bool { return strings.Contains(r.Stdout, token) }
}

// StderrContains matches when token occurs in standard error.
func StderrContains(token string) Predicate {
	return func(r Result) bool { return strings.Contains(r.Stderr, token) }
}

// StdoutBlank matches when standard output is empty or whitespace only.
func StdoutBlank(r Result) bool {
	return strings.TrimSpace(r.Stdout) == ""
}
