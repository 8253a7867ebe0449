package runner

import "strings"

// cmdExeLine builds the command line cmd.exe runs for a shell invocation.
// cmd.exe knows no backslash escapes, so every word is wrapped in plain
// double quotes and /s strips the outer pair around the whole line.
func cmdExeLine(executable string, args []string) string {
	words := make([]string, 0, len(args)+1)
	for _, w := range append([]string{executable}, args...) {
		words = append(words, `"`+w+`"`)
	}
	return `cmd /s /c "` + strings.Join(words, " ") + `"`
}
