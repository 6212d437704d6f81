// Package diag implements the analyzer's diagnostics: nine error kinds
// rendered with source context (file:line:col header, the offending
// source line, and a caret).
//
// Nothing in this package panics or returns a Go error for a semantic
// problem; Diagnostics collects them and Unwrap() is the one place that
// turns them back into a single Go error for callers who want
// exception-style use.
package diag

import (
	"fmt"
	"strings"

	"github.com/cqasm-lang/go-cqasm/internal/ast"
)

// Kind is one of the error categories the analyzer can report.
type Kind string

const (
	Parse             Kind = "parse"
	Version           Kind = "version"
	NameResolution    Kind = "name-resolution"
	OverloadResolution Kind = "overload-resolution"
	Type              Kind = "type"
	ValueKind         Kind = "value"
	Dialect           Kind = "dialect"
	Control           Kind = "control"
	Link              Kind = "link"
	Internal          Kind = "internal"
)

// Diagnostic is a single accumulated error.
type Diagnostic struct {
	Kind    Kind
	Pos     ast.Position
	Message string
	Source  string // the full source text, for rendering a caret; may be empty
}

// Format renders "file:line:col: message", plus the offending source
// line and a caret when Source/Pos are available.
func (d Diagnostic) Format() string {
	var sb strings.Builder
	if d.Pos.File != "" || d.Pos.Line != 0 {
		sb.WriteString(d.Pos.String())
		sb.WriteString(": ")
	}
	sb.WriteString(d.Message)

	if line := sourceLine(d.Source, d.Pos.Line); line != "" {
		sb.WriteString("\n    ")
		sb.WriteString(line)
		sb.WriteString("\n    ")
		if d.Pos.Column > 0 {
			sb.WriteString(strings.Repeat(" ", d.Pos.Column-1))
		}
		sb.WriteString("^")
	}
	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func (d Diagnostic) String() string { return d.Format() }

// Diagnostics is the accumulated error list an AnalysisResult carries:
// analysis succeeded iff this is empty.
type Diagnostics []Diagnostic

// Add appends a new diagnostic.
func (d *Diagnostics) Add(kind Kind, pos ast.Position, source, format string, args ...any) {
	*d = append(*d, Diagnostic{Kind: kind, Pos: pos, Source: source, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any diagnostic was accumulated.
func (d Diagnostics) HasErrors() bool { return len(d) > 0 }

// Strings renders every diagnostic as "file:line:col: message", the
// shape AnalysisResult.errors takes.
func (d Diagnostics) Strings() []string {
	out := make([]string, len(d))
	for i, diagnostic := range d {
		out[i] = diagnostic.Format()
	}
	return out
}

// AnalysisFailed is the sentinel error returned by Unwrap.
type AnalysisFailed struct {
	Diagnostics Diagnostics
}

func (e *AnalysisFailed) Error() string { return "cqasm analysis failed" }

// Unwrap prints every diagnostic to out and returns a single
// *AnalysisFailed error, a convenience for callers that want
// exception-style control flow instead of inspecting Diagnostics.
func (d Diagnostics) Unwrap(out func(string)) error {
	if !d.HasErrors() {
		return nil
	}
	for _, s := range d.Strings() {
		out(s)
	}
	return &AnalysisFailed{Diagnostics: d}
}
