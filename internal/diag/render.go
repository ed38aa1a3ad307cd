package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ansiColor mirrors the teacher's terminal builtins
// (internal/evaluator/builtins_term.go), which gate ANSI escapes on
// isatty.IsTerminal before ever writing one. Source-range-aware rendering
// (file/line excerpts) is an external collaborator (spec §9); this is only
// a local debug dump of the severity/code/message triple.
func ansiColor(sev Severity, enabled bool) (prefix, reset string) {
	if !enabled {
		return "", ""
	}
	if sev == Error {
		return "\x1b[31m", "\x1b[0m"
	}
	return "\x1b[33m", "\x1b[0m"
}

// Render writes every issue in sink to w, one per line, colorized if w is
// a terminal.
func Render(w io.Writer, sink *Sink) {
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	for _, issue := range sink.Issues() {
		prefix, reset := ansiColor(issue.Severity, colorize)
		r := issue.Node.Range()
		fmt.Fprintf(w, "%s%s:%d:%d: %s [%s]%s\n", prefix, issue.Severity, r.StartLine, r.StartCol, issue.Message, issue.Code, reset)
	}
}
