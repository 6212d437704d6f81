package analyzer

import (
	"errors"

	"github.com/cqasm-lang/go-cqasm/internal/ast"
	"github.com/cqasm-lang/go-cqasm/internal/diag"
	"github.com/cqasm-lang/go-cqasm/internal/overload"
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
	"github.com/cqasm-lang/go-cqasm/internal/tree"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

// typeByName resolves a Variables declaration's type name to a Type; all
// nine primitive spellings are accepted regardless of dialect.
var typeByName = map[string]types.Type{
	"qubit":   types.Qubit(),
	"bit":     types.Bit(),
	"int":     types.Int().AsAssignable(),
	"bool":    types.Bool().AsAssignable(),
	"real":    types.Real().AsAssignable(),
	"complex": types.Complex_().AsAssignable(),
	"axis":    types.Axis_().AsAssignable(),
	"string":  types.String().AsAssignable(),
	"json":    types.Json().AsAssignable(),
}

// analyzeTopLevel dispatches one top-level Program statement. Top-level
// statements share the single global Scope pushed by Analyze; only
// SubcircuitDecl changes which Subcircuit subsequent Bundles attach to.
func (s *session) analyzeTopLevel(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.Mapping:
		s.analyzeMapping(n)
	case *ast.VariablesDecl:
		s.analyzeVariablesDecl(n)
	case *ast.SubcircuitDecl:
		s.analyzeSubcircuitDecl(n)
	case *ast.ErrorModelDecl:
		s.analyzeErrorModelDecl(n)
	case *ast.Bundle:
		s.analyzeBundle(n)
	case *ast.IfElse:
		if !s.requireStructured(n.Position, "if/elif/else") {
			return
		}
		if st, ok := s.analyzeIfElse(n); ok {
			s.emitBlockStatement(st)
		}
	case *ast.ForLoop:
		if !s.requireStructured(n.Position, "for") {
			return
		}
		if st, ok := s.analyzeForLoop(n); ok {
			s.emitBlockStatement(st)
		}
	case *ast.ForeachLoop:
		if !s.requireStructured(n.Position, "foreach") {
			return
		}
		if st, ok := s.analyzeForeachLoop(n); ok {
			s.emitBlockStatement(st)
		}
	case *ast.WhileLoop:
		if !s.requireStructured(n.Position, "while") {
			return
		}
		if st, ok := s.analyzeWhileLoop(n); ok {
			s.emitBlockStatement(st)
		}
	case *ast.RepeatUntilLoop:
		if !s.requireStructured(n.Position, "repeat/until") {
			return
		}
		if st, ok := s.analyzeRepeatUntilLoop(n); ok {
			s.emitBlockStatement(st)
		}
	case *ast.Break:
		s.analyzeBreak(n)
	case *ast.Continue:
		s.analyzeContinue(n)
	default:
		s.errf(diag.Internal, stmt.Pos(), "unhandled statement node %T", stmt)
	}
}

func (s *session) requireStructured(pos ast.Position, feature string) bool {
	if !s.structured(s.version) {
		s.errf(diag.Dialect, pos, "%s requires dialect >= 1.2", feature)
		return false
	}
	return true
}

func (s *session) analyzeMapping(n *ast.Mapping) {
	v, ok := s.eval.Eval(n.Expr)
	if !ok {
		return
	}
	s.scope.Current().Mappings.Add(n.Name, v)
}

func (s *session) analyzeVariablesDecl(n *ast.VariablesDecl) {
	typ, ok := typeByName[n.TypeName]
	if !ok {
		s.errf(diag.Type, n.Position, "unknown type name %q", n.TypeName)
		return
	}
	for _, name := range n.Names {
		v := &semantic.Variable{Name: name, Type: typ}
		if !s.scope.Current().DeclareVariable(v) {
			s.errf(diag.ValueKind, n.Position, "duplicate variable declaration %q", name)
		}
	}
}

func (s *session) analyzeSubcircuitDecl(n *ast.SubcircuitDecl) {
	s.closeSubcircuit()
	iterations := int64(1)
	if n.Iterations != nil {
		it, ok := s.eval.RequireConstInt(n.Iterations)
		if !ok {
			s.errf(diag.ValueKind, n.Position, "subcircuit iteration count must be a constant integer")
		} else if it < 1 {
			s.errf(diag.ValueKind, n.Position, "subcircuit iteration count must be >= 1, got %d", it)
		} else {
			iterations = it
		}
	}
	sc := &semantic.Subcircuit{Name: n.Name, Iterations: iterations}
	if s.structured(s.version) {
		sc.Block.Set(semantic.Block{})
	}
	s.current = sc
	s.registerSubcircuit(sc)
}

// analyzeErrorModelDecl resolves `error_model name(args...)` against the
// ErrorModelTable; legal at most once per program (original_source's
// analyze_error_model is likewise a one-shot setter on the Analyzer).
func (s *session) analyzeErrorModelDecl(n *ast.ErrorModelDecl) {
	if s.errorModelSet {
		s.errf(diag.Control, n.Position, "error_model may only be declared once per program")
		return
	}
	args := make([]semantic.Value, 0, len(n.Args))
	ok := true
	for _, argExpr := range n.Args {
		v, argOK := s.eval.Eval(argExpr)
		if !argOK {
			ok = false
			continue
		}
		args = append(args, v)
	}
	if !ok {
		return
	}
	em, err := s.a.ErrorModels.Resolve(n.Name, args)
	if err != nil {
		s.reportResolutionError(n.Position, "error model", n.Name, err)
		return
	}
	s.errorModel = em
	s.errorModelSet = true
}

// emitBlockStatement appends a structured Statement to the current
// subcircuit's Block (dialect >= 1.2 only; callers already checked).
func (s *session) emitBlockStatement(st semantic.Statement) {
	sc := s.ensureSubcircuit(s.version)
	blk, _ := sc.Block.Get()
	blk.Statements.Add(st)
	sc.Block.Set(blk)
}

func (s *session) analyzeBreak(n *ast.Break) {
	if !s.scope.InsideLoop() {
		s.errf(diag.Control, n.Position, "break outside a loop")
		return
	}
	if s.structured(s.version) {
		st := &semantic.Break{}
		st.SetAnnotations(s.evalAnnotations(n.Annotations))
		s.emitBlockStatement(st)
	}
}

func (s *session) analyzeContinue(n *ast.Continue) {
	if !s.scope.InsideLoop() {
		s.errf(diag.Control, n.Position, "continue outside a loop")
		return
	}
	if s.structured(s.version) {
		st := &semantic.Continue{}
		st.SetAnnotations(s.evalAnnotations(n.Annotations))
		s.emitBlockStatement(st)
	}
}

func (s *session) evalAnnotations(anns []ast.Annotation) []semantic.AnnotationData {
	if len(anns) == 0 {
		return nil
	}
	out := make([]semantic.AnnotationData, 0, len(anns))
	for _, a := range anns {
		var operands tree.Any[semantic.Value]
		for _, opExpr := range a.Operands {
			v, ok := s.eval.Eval(opExpr)
			if !ok {
				continue
			}
			operands.Add(v)
		}
		out = append(out, semantic.AnnotationData{Interface: a.Interface, Operation: a.Operation, Operands: operands})
	}
	return out
}

// analyzeBody pushes a child scope (inheriting insideLoop) and analyzes
// each statement directly into its Block, per the Scope.Block design
// note: nested blocks append in place through the pushed scope's pointer
// rather than needing a get-modify-set round trip.
func (s *session) analyzeBody(stmts []ast.Statement, insideLoop bool) semantic.Block {
	scope := s.scope.Push(insideLoop)
	scope.Block = &semantic.Block{}
	for _, stmt := range stmts {
		s.analyzeNestedStatement(stmt, scope.Block)
	}
	block := *scope.Block
	s.scope.Pop()
	return block
}

// analyzeNestedStatement is analyzeTopLevel's counterpart for statements
// inside a structured body: Mapping/VariablesDecl behave identically, but
// control-flow/bundle/break/continue append into the given sink block
// instead of the enclosing subcircuit, and SubcircuitDecl is illegal here.
func (s *session) analyzeNestedStatement(stmt ast.Statement, sink *semantic.Block) {
	switch n := stmt.(type) {
	case *ast.Mapping:
		s.analyzeMapping(n)
	case *ast.VariablesDecl:
		s.analyzeVariablesDecl(n)
	case *ast.SubcircuitDecl:
		s.errf(diag.Control, n.Position, "subcircuit declarations may not appear inside a block")
	case *ast.Bundle:
		if st, ok := s.analyzeBundleExt(n); ok {
			sink.Statements.Add(st)
		}
	case *ast.IfElse:
		if st, ok := s.analyzeIfElse(n); ok {
			sink.Statements.Add(st)
		}
	case *ast.ForLoop:
		if st, ok := s.analyzeForLoop(n); ok {
			sink.Statements.Add(st)
		}
	case *ast.ForeachLoop:
		if st, ok := s.analyzeForeachLoop(n); ok {
			sink.Statements.Add(st)
		}
	case *ast.WhileLoop:
		if st, ok := s.analyzeWhileLoop(n); ok {
			sink.Statements.Add(st)
		}
	case *ast.RepeatUntilLoop:
		if st, ok := s.analyzeRepeatUntilLoop(n); ok {
			sink.Statements.Add(st)
		}
	case *ast.Break:
		if !s.scope.InsideLoop() {
			s.errf(diag.Control, n.Position, "break outside a loop")
			return
		}
		st := &semantic.Break{}
		st.SetAnnotations(s.evalAnnotations(n.Annotations))
		sink.Statements.Add(st)
	case *ast.Continue:
		if !s.scope.InsideLoop() {
			s.errf(diag.Control, n.Position, "continue outside a loop")
			return
		}
		st := &semantic.Continue{}
		st.SetAnnotations(s.evalAnnotations(n.Annotations))
		sink.Statements.Add(st)
	default:
		s.errf(diag.Internal, stmt.Pos(), "unhandled nested statement node %T", stmt)
	}
}

func (s *session) analyzeIfElse(n *ast.IfElse) (semantic.Statement, bool) {
	branches := make([]semantic.IfElseBranch, 0, len(n.Branches))
	ok := true
	for _, b := range n.Branches {
		cond, condOK := s.eval.RequireBool(b.Cond)
		if !condOK {
			ok = false
			continue
		}
		body := s.analyzeBody(b.Body, false)
		branches = append(branches, semantic.IfElseBranch{Condition: cond, Body: body})
	}
	if !ok {
		return nil, false
	}
	st := &semantic.IfElse{Branches: branches}
	if n.Else != nil {
		st.Else.Set(s.analyzeBody(n.Else, false))
	}
	st.SetAnnotations(s.evalAnnotations(n.Annotations))
	return st, true
}

func (s *session) analyzeForLoop(n *ast.ForLoop) (semantic.Statement, bool) {
	scope := s.scope.Push(true)
	scope.Block = &semantic.Block{}

	var init, update *semantic.SetInstruction
	ok := true
	if n.Init != nil {
		if i, iOK := s.buildSetInstruction(n.Init); iOK {
			init = i
		} else {
			ok = false
		}
	}
	cond, condOK := s.eval.RequireBool(n.Cond)
	if !condOK {
		ok = false
	}
	if n.Update != nil {
		if u, uOK := s.buildSetInstruction(n.Update); uOK {
			update = u
		} else {
			ok = false
		}
	}
	for _, stmt := range n.Body {
		s.analyzeNestedStatement(stmt, scope.Block)
	}
	body := *scope.Block
	s.scope.Pop()
	if !ok {
		return nil, false
	}
	st := &semantic.ForLoop{Condition: cond, Body: body}
	if init != nil {
		st.Init = tree.NewMaybe[semantic.InstructionBase](init)
	}
	if update != nil {
		st.Update = tree.NewMaybe[semantic.InstructionBase](update)
	}
	st.SetAnnotations(s.evalAnnotations(n.Annotations))
	return st, true
}

func (s *session) analyzeForeachLoop(n *ast.ForeachLoop) (semantic.Statement, bool) {
	v, ok := s.scope.LookupVariable(n.Var)
	if !ok {
		s.errf(diag.NameResolution, n.Position, "undefined variable %q", n.Var)
		return nil, false
	}
	if v.Type.Kind != types.KindInt || !v.Type.Assignable {
		s.errf(diag.Type, n.Position, "foreach variable %q must be an assignable int", n.Var)
		return nil, false
	}
	from, fromOK := s.eval.RequireConstInt(n.From)
	to, toOK := s.eval.RequireConstInt(n.To)
	if !fromOK || !toOK {
		return nil, false
	}
	body := s.analyzeBody(n.Body, true)
	st := &semantic.ForeachLoop{Variable: tree.NewResolvedLink(v), From: from, To: to, Body: body}
	st.SetAnnotations(s.evalAnnotations(n.Annotations))
	return st, true
}

func (s *session) analyzeWhileLoop(n *ast.WhileLoop) (semantic.Statement, bool) {
	cond, ok := s.eval.RequireBool(n.Cond)
	if !ok {
		return nil, false
	}
	body := s.analyzeBody(n.Body, true)
	st := &semantic.WhileLoop{Condition: cond, Body: body}
	st.SetAnnotations(s.evalAnnotations(n.Annotations))
	return st, true
}

func (s *session) analyzeRepeatUntilLoop(n *ast.RepeatUntilLoop) (semantic.Statement, bool) {
	body := s.analyzeBody(n.Body, true)
	cond, ok := s.eval.RequireBool(n.Cond)
	if !ok {
		return nil, false
	}
	st := &semantic.RepeatUntilLoop{Body: body, Condition: cond}
	st.SetAnnotations(s.evalAnnotations(n.Annotations))
	return st, true
}

// analyzeBundle handles a top-level flat Bundle: dialects >= 1.2 fold it
// into a BundleExt statement in the current subcircuit's Block, dialects
// <= 1.1 append a plain Bundle to the subcircuit's Bundles sequence --
// exactly one of which is ever populated per Subcircuit.
func (s *session) analyzeBundle(n *ast.Bundle) {
	instrs, ok := s.analyzeInstructionList(n.Instructions, n.Position)
	if !ok {
		return
	}
	if s.structured(s.version) {
		s.emitBlockStatement(&semantic.BundleExt{Instructions: tree.NewMany(instrs...)})
		return
	}
	sc := s.ensureSubcircuit(s.version)
	sc.Bundles.Add(semantic.Bundle{Instructions: tree.NewMany(instrs...)})
}

func (s *session) analyzeBundleExt(n *ast.Bundle) (semantic.Statement, bool) {
	instrs, ok := s.analyzeInstructionList(n.Instructions, n.Position)
	if !ok {
		return nil, false
	}
	return &semantic.BundleExt{Instructions: tree.NewMany(instrs...)}, true
}

func (s *session) analyzeInstructionList(list []*ast.Instruction, pos ast.Position) ([]semantic.InstructionBase, bool) {
	out := make([]semantic.InstructionBase, 0, len(list))
	ok := true
	for _, instr := range list {
		ib, iOK := s.analyzeInstruction(instr)
		if !iOK {
			ok = false
			continue
		}
		out = append(out, ib)
	}
	if !ok {
		return nil, false
	}
	s.checkBundleOverlap(out, pos)
	return out, true
}

// checkBundleOverlap enforces that no qubit index may be touched by
// more than one instruction within the same bundle, since bundle
// members execute in the same cycle.
func (s *session) checkBundleOverlap(instrs []semantic.InstructionBase, pos ast.Position) {
	seen := make(map[int]bool)
	for _, ib := range instrs {
		instr, ok := ib.(*semantic.Instruction)
		if !ok {
			continue
		}
		for _, operand := range instr.Operands.Items() {
			qref, ok := operand.(semantic.QubitRef)
			if !ok {
				continue
			}
			for _, idx := range qref.Indices {
				if seen[idx] {
					s.errf(diag.ValueKind, pos, "qubit %d is operated on by more than one instruction in the same bundle", idx)
					continue
				}
				seen[idx] = true
			}
		}
	}
}

// analyzeInstruction resolves one ast.Instruction into an
// InstructionBase: `set` and `goto` are handled specially (dialect >=
// 1.2 only), everything else resolves through the InstructionTable.
func (s *session) analyzeInstruction(instr *ast.Instruction) (semantic.InstructionBase, bool) {
	if instr.Cond != nil && !s.requireStructured(instr.Position, "cond?") {
		return nil, false
	}

	var inst semantic.InstructionBase
	switch instr.Name {
	case "set":
		if !s.requireStructured(instr.Position, "set") {
			return nil, false
		}
		set, ok := s.buildSetInstruction(instr)
		if !ok {
			return nil, false
		}
		inst = set

	case "goto":
		if !s.requireStructured(instr.Position, "goto") {
			return nil, false
		}
		if len(instr.Operands) != 1 {
			s.errf(diag.ValueKind, instr.Position, "goto takes exactly one target")
			return nil, false
		}
		ident, ok := instr.Operands[0].(*ast.Identifier)
		if !ok {
			s.errf(diag.ValueKind, instr.Position, "goto target must be a subcircuit name")
			return nil, false
		}
		gi := &semantic.GotoInstruction{Target: tree.NewUnresolvedLink[semantic.Subcircuit](ident.Name)}
		s.pendingGotos = append(s.pendingGotos, pendingGoto{target: ident.Name, pos: instr.Position, link: &gi.Target})
		inst = gi

	default:
		args := make([]semantic.Value, 0, len(instr.Operands))
		ok := true
		for _, opExpr := range instr.Operands {
			v, argOK := s.eval.Eval(opExpr)
			if !argOK {
				ok = false
				continue
			}
			args = append(args, v)
		}
		if !ok {
			return nil, false
		}
		resolved, err := s.a.Instructions.Resolve(instr.Name, args)
		if err != nil {
			s.reportResolutionError(instr.Position, "instruction", instr.Name, err)
			return nil, false
		}
		inst = resolved
	}

	inst.SetAnnotations(s.evalAnnotations(instr.Annotations))
	if instr.Cond != nil {
		condVal, ok := s.eval.RequireBool(instr.Cond)
		if !ok {
			return nil, false
		}
		inst.SetCondition(condVal)
	}
	return inst, true
}

// buildSetInstruction implements the `set lhs = rhs` instruction shared
// by the standalone `set` statement and a for-loop's init/update clause.
func (s *session) buildSetInstruction(instr *ast.Instruction) (*semantic.SetInstruction, bool) {
	if len(instr.Operands) != 2 {
		s.errf(diag.ValueKind, instr.Position, "set takes exactly two operands (lhs, rhs)")
		return nil, false
	}
	lhs, lhsOK := s.eval.Eval(instr.Operands[0])
	rhs, rhsOK := s.eval.Eval(instr.Operands[1])
	if !lhsOK || !rhsOK {
		return nil, false
	}
	if !lhs.Type().Assignable {
		s.errf(diag.Type, instr.Position, "left-hand side of set is not assignable")
		return nil, false
	}
	promoted, ok := semantic.Promote(rhs, lhs.Type())
	if !ok {
		s.errf(diag.Type, instr.Position, "cannot assign %s to a variable of type %s", rhs.Type(), lhs.Type())
		return nil, false
	}
	return &semantic.SetInstruction{Lhs: lhs, Rhs: promoted}, true
}

// reportResolutionError turns an overload.NameResolutionError/ResolutionError
// into a Diagnostic; kindLabel names what's being resolved ("instruction",
// "error model") for the message text.
func (s *session) reportResolutionError(pos ast.Position, kindLabel, name string, err error) {
	var nameErr *overload.NameResolutionError
	if errors.As(err, &nameErr) {
		s.errf(diag.NameResolution, pos, "undefined %s %q", kindLabel, name)
		return
	}
	var resErr *overload.ResolutionError
	if errors.As(err, &resErr) {
		s.errf(diag.OverloadResolution, pos, "no overload of %s %q matches argument types %s",
			kindLabel, name, typeTupleString(resErr.ArgTypes))
		return
	}
	s.errf(diag.Internal, pos, "%s", err)
}

func typeTupleString(ts []types.Type) string {
	s := "("
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s + ")"
}
