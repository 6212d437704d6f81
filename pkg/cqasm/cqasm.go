// Package cqasm is the public facade over the analyzer internals: a
// small functional-options constructor plus a handful of top-level
// convenience methods, with all the real work living in
// internal/analyzer, internal/builtins and internal/evaluator.
package cqasm

import (
	"fmt"

	"github.com/cqasm-lang/go-cqasm/internal/analyzer"
	"github.com/cqasm-lang/go-cqasm/internal/ast"
	"github.com/cqasm-lang/go-cqasm/internal/diag"
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
)

// Parser turns source text into an AST. Lexing/parsing of cQASM source is
// an external concern this module does not implement; a caller supplies
// one via WithParser so AnalyzeString and AnalyzeFile have something to
// drive.
type Parser interface {
	Parse(source, filename string) (*ast.Program, []string, error)
}

// AnalysisResult is what analysis produces: the semantic program (if
// analysis got far enough to build one), every accumulated diagnostic as
// both structured Diagnostics and their rendered plain-string form, and
// the filename used in diagnostic prefixes. Filename is carried
// separately from the diagnostics themselves because a caller that
// supplied source directly (not via AnalyzeFile) may still want to know
// what name was attributed to it.
type AnalysisResult struct {
	Filename    string
	Program     *semantic.Program
	Diagnostics diag.Diagnostics
}

// Errors renders every diagnostic as "file:line:col: message".
func (r AnalysisResult) Errors() []string { return r.Diagnostics.Strings() }

// Success reports whether analysis produced no diagnostics.
func (r AnalysisResult) Success() bool { return !r.Diagnostics.HasErrors() }

// Unwrap prints every diagnostic to out and returns a single error.
func (r AnalysisResult) Unwrap(out func(string)) error { return r.Diagnostics.Unwrap(out) }

// Analyzer is the public entry point: an api-version-scoped configuration
// of default constants/functions/instructions/error-models, plus an
// optional Parser for the AnalyzeString/AnalyzeFile convenience methods.
// Mirrors the bare-constructor-plus-opt-in-registration shape of
// analyzer.Analyzer; this facade additionally bundles "register
// everything default" behind New unless told otherwise, since that's
// the common case for a library consumer (as opposed to the internal
// constructor, which stays bare for callers who want fine control,
// e.g. fuzzing just the expression grammar).
type Analyzer struct {
	inner        *analyzer.Analyzer
	parser       Parser
	skipDefaults bool
}

// Option configures a new Analyzer.
type Option func(*Analyzer)

// WithParser attaches the Parser used by AnalyzeString/AnalyzeFile.
func WithParser(p Parser) Option {
	return func(a *Analyzer) { a.parser = p }
}

// WithoutDefaults skips RegisterDefault{Constants,Functions,Instructions,
// ErrorModels}, leaving the returned Analyzer's tables empty -- for a
// caller that wants to register a custom library from scratch.
func WithoutDefaults() Option {
	return func(a *Analyzer) { a.skipDefaults = true }
}

// New constructs an Analyzer for the given api version (e.g. "3.0").
func New(apiVersion string, opts ...Option) (*Analyzer, error) {
	inner, err := analyzer.New(apiVersion)
	if err != nil {
		return nil, fmt.Errorf("cqasm: %w", err)
	}
	a := &Analyzer{inner: inner}
	for _, opt := range opts {
		opt(a)
	}
	if !a.skipDefaults {
		inner.RegisterDefaultConstants()
		inner.RegisterDefaultFunctions()
		inner.RegisterDefaultInstructions()
		inner.RegisterDefaultErrorModels()
	}
	return a, nil
}

// Analyze runs the statement-analysis and driver pipeline over an
// already-parsed AST.
func (a *Analyzer) Analyze(prog *ast.Program, filename, source string) AnalysisResult {
	res := a.inner.Analyze(prog, filename, source)
	return AnalysisResult{Filename: filename, Program: res.Program, Diagnostics: res.Diagnostics}
}

// AnalyzeString parses source with the configured Parser and analyzes
// the result, merging parse errors into the same Diagnostics field.
func (a *Analyzer) AnalyzeString(source, filename string) (AnalysisResult, error) {
	if a.parser == nil {
		return AnalysisResult{}, fmt.Errorf("cqasm: no Parser configured; pass cqasm.WithParser(...) to New")
	}
	prog, parseErrs, err := a.parser.Parse(source, filename)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("cqasm: parse %s: %w", filename, err)
	}
	if len(parseErrs) > 0 {
		var diags diag.Diagnostics
		for _, msg := range parseErrs {
			diags.Add(diag.Parse, ast.Position{File: filename}, source, "%s", msg)
		}
		return AnalysisResult{Filename: filename, Diagnostics: diags}, nil
	}
	return a.Analyze(prog, filename, source), nil
}

// AnalyzeFile reads path and delegates to AnalyzeString, using path as
// the diagnostic filename when none is otherwise available.
func (a *Analyzer) AnalyzeFile(readFile func(string) (string, error), path string) (AnalysisResult, error) {
	source, err := readFile(path)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("cqasm: read %s: %w", path, err)
	}
	return a.AnalyzeString(source, path)
}
