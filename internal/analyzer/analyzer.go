// Package analyzer implements the statement analyzer and the analyzer
// driver: together they turn an ast.Program into a semantic.Program plus
// accumulated diagnostics. The Analyzer is a bare constructor taking
// only an api_version, with RegisterDefault* left as separate opt-in
// calls.
package analyzer

import (
	"math"

	"github.com/cqasm-lang/go-cqasm/internal/ast"
	"github.com/cqasm-lang/go-cqasm/internal/builtins"
	"github.com/cqasm-lang/go-cqasm/internal/diag"
	"github.com/cqasm-lang/go-cqasm/internal/evaluator"
	"github.com/cqasm-lang/go-cqasm/internal/resolver"
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
	"github.com/cqasm-lang/go-cqasm/internal/tree"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

// Analyzer holds the per-instance configuration: the requested api
// version (which also selects the v1.x/v3.x dialect generation) and the
// symbol tables default-library registration fills. Nothing here is
// mutated by Analyze; the scope stack used during analysis is local to
// each call: analyzer state is configuration, and Analyze mutates the
// scope stack internally but leaves the analyzer logically unchanged
// on return.
type Analyzer struct {
	APIVersion   types.Version
	V1x          bool
	Functions    *resolver.FunctionTable
	Instructions *resolver.InstructionTable
	ErrorModels  *resolver.ErrorModelTable
	constants    map[string]semantic.Value
}

// New constructs an Analyzer for the given api version string (e.g.
// "3.0"), registering nothing by default -- RegisterDefault* are
// separate, optional calls.
func New(apiVersion string) (*Analyzer, error) {
	v, err := types.ParseVersion(apiVersion)
	if err != nil {
		return nil, err
	}
	v1x := v[0] == 1
	return &Analyzer{
		APIVersion:   v,
		V1x:          v1x,
		Functions:    resolver.NewFunctionTable(v1x),
		Instructions: resolver.NewInstructionTable(v1x),
		ErrorModels:  resolver.NewErrorModelTable(),
		constants:    make(map[string]semantic.Value),
	}, nil
}

// RegisterDefaultConstants adds the standard named constants (pi, eu, im,
// true, false, and the x/y/z axis names) to the set installed into every
// analysis's global scope.
func (a *Analyzer) RegisterDefaultConstants() {
	a.constants["true"] = semantic.ConstBool{Value: true}
	a.constants["false"] = semantic.ConstBool{Value: false}
	a.constants["pi"] = semantic.ConstReal{Value: math.Pi}
	a.constants["eu"] = semantic.ConstReal{Value: math.E}
	a.constants["im"] = semantic.ConstComplex{Value: types.Complex{Im: 1}}
	a.constants["x"] = semantic.ConstAxis{Value: types.AxisX}
	a.constants["y"] = semantic.ConstAxis{Value: types.AxisY}
	a.constants["z"] = semantic.ConstAxis{Value: types.AxisZ}
}

// RegisterDefaultFunctions populates the function table with the
// standard library of builtin functions and operators.
func (a *Analyzer) RegisterDefaultFunctions() {
	builtins.RegisterDefaultFunctions(a.Functions)
}

// RegisterDefaultInstructions populates the instruction table with the
// default gate set for this Analyzer's dialect generation.
func (a *Analyzer) RegisterDefaultInstructions() {
	builtins.RegisterDefaultInstructions(a.Instructions, !a.V1x)
}

// RegisterDefaultErrorModels populates the error-model table.
func (a *Analyzer) RegisterDefaultErrorModels() {
	builtins.RegisterDefaultErrorModels(a.ErrorModels)
}

// Result is what Analyze produces: a (possibly partial) Program plus
// every accumulated Diagnostic. The analysis is a failure iff
// len(Diagnostics) > 0, regardless of whether Program is non-nil.
type Result struct {
	Program     *semantic.Program
	Diagnostics diag.Diagnostics
}

// Analyze runs the full statement-analysis and driver pipeline over prog.
// filename and source are used only to decorate diagnostics; source may
// be empty if unavailable (diagnostics then omit the caret-annotated
// source line).
func (a *Analyzer) Analyze(prog *ast.Program, filename, source string) Result {
	sess := &session{
		a:      a,
		diags:  &diag.Diagnostics{},
		source: source,
		scope:  resolver.NewStack(),
	}
	sess.eval = &evaluator.Evaluator{Scope: sess.scope, Functions: a.Functions, Diags: sess.diags, Source: source}

	program := &semantic.Program{APIVersion: a.APIVersion}

	version, ok := sess.checkVersion(prog.Version)
	if !ok {
		return Result{Program: program, Diagnostics: *sess.diags}
	}
	program.Version = version
	sess.version = version
	sess.eval.NumQubits = 0

	numQubits := int64(0)
	if prog.NumQubits != nil {
		n, ok := sess.eval.RequireConstInt(prog.NumQubits)
		if !ok {
			sess.errf(diag.ValueKind, prog.Position, "num_qubits must be a constant integer")
		} else if n < 1 {
			sess.errf(diag.ValueKind, prog.Position, "num_qubits must be >= 1, got %d", n)
		} else {
			numQubits = n
		}
	}
	program.NumQubits = numQubits
	sess.eval.NumQubits = numQubits

	// The default constants get their own outermost scope, so the global
	// scope harvested below holds only the program's own mappings.
	sess.scope.Push(false)
	for name, v := range a.constants {
		sess.scope.Current().Mappings.Add(name, v)
	}
	sess.scope.Push(false)

	for _, stmt := range prog.Statements {
		sess.analyzeTopLevel(stmt)
	}
	sess.closeSubcircuit()

	global := sess.scope.Pop()
	sess.scope.Pop()
	for _, m := range global.Mappings.Entries() {
		program.Mappings.Add(m)
	}
	for _, v := range global.Variables {
		program.Variables.Add(v)
	}
	if sess.errorModelSet {
		program.ErrorModel.Set(sess.errorModel)
	}

	sess.resolveGotos(program)

	for _, sc := range sess.subcircuits {
		program.Subcircuits.Add(sc)
	}

	return Result{Program: program, Diagnostics: *sess.diags}
}

// checkVersion validates the program's declared version against the
// Analyzer's api_version.
func (s *session) checkVersion(v ast.VersionHeader) (types.Version, bool) {
	for _, c := range v.Components {
		if c < 0 {
			s.errf(diag.Version, v.Position, "version component %d is negative", c)
			return nil, false
		}
	}
	if len(v.Components) == 0 {
		s.errf(diag.Version, v.Position, "missing version header")
		return nil, false
	}
	declared := types.Version(v.Components)
	if declared.Compare(s.a.APIVersion) > 0 {
		s.errf(diag.Version, v.Position, "program version %s exceeds configured api version %s", declared, s.a.APIVersion)
		return declared, false
	}
	return declared, true
}

// pendingGoto is a queued forward-reference awaiting the full subcircuit
// list, resolved in a goto-link-resolution post-pass.
type pendingGoto struct {
	target string
	pos    ast.Position
	link   *tree.Link[semantic.Subcircuit]
}

// session is the mutable per-Analyze state: the scope stack, the
// diagnostics sink, the subcircuit list under construction, and the
// queue of not-yet-resolved gotos.
type session struct {
	a       *Analyzer
	diags   *diag.Diagnostics
	source  string
	version types.Version
	scope   *resolver.Stack
	eval    *evaluator.Evaluator
	current *semantic.Subcircuit

	subcircuits   []*semantic.Subcircuit
	byName        map[string]*semantic.Subcircuit
	pendingGotos  []pendingGoto
	errorModel    semantic.ErrorModel
	errorModelSet bool
}

func (s *session) errf(kind diag.Kind, pos ast.Position, format string, args ...any) {
	s.diags.Add(kind, pos, s.source, format, args...)
}

// structured reports whether the program's dialect uses the >=1.2
// structured-block grammar (if/while/for/goto/set) rather than the
// flat bundle-sequence grammar of <=1.1.
func (s *session) structured(version types.Version) bool {
	if s.a.V1x {
		return version.Compare(types.NewVersion(1, 2)) >= 0
	}
	return true // v3.x is always structured.
}

// ensureSubcircuit lazily creates an implicit default subcircuit the
// first time a bundle/statement appears before any explicit `subcircuit`
// declaration, treating the whole program as one subcircuit when none
// is declared.
func (s *session) ensureSubcircuit(version types.Version) *semantic.Subcircuit {
	if s.current != nil {
		return s.current
	}
	sc := &semantic.Subcircuit{Name: "default", Iterations: 1}
	if s.structured(version) {
		sc.Block.Set(semantic.Block{})
	}
	s.current = sc
	s.registerSubcircuit(sc)
	return sc
}

func (s *session) registerSubcircuit(sc *semantic.Subcircuit) {
	if s.byName == nil {
		s.byName = make(map[string]*semantic.Subcircuit)
	}
	if _, dup := s.byName[sc.Name]; dup {
		s.errf(diag.Control, ast.Position{}, "duplicate subcircuit name %q", sc.Name)
		return
	}
	s.byName[sc.Name] = sc
	s.subcircuits = append(s.subcircuits, sc)
}

func (s *session) closeSubcircuit() {
	s.current = nil
}

// resolveGotos runs after the full subcircuit list is known: it binds
// every queued goto target or diagnoses an unresolved Link.
func (s *session) resolveGotos(program *semantic.Program) {
	for _, g := range s.pendingGotos {
		target, ok := s.byName[g.target]
		if !ok {
			s.errf(diag.Link, g.pos, "goto target %q does not name a subcircuit", g.target)
			continue
		}
		g.link.Resolve(target)
	}
}
