// Package evaluator implements the expression evaluator: it turns an
// ast.Expression into a semantic.Value, folding to a Const* variant
// whenever every operand is itself constant and otherwise preserving the
// call as an unfolded semantic.FunctionCall. Grounded on the v1x/v3x
// analyzer's expression-visiting methods, with the per-operator visitor
// dispatch collapsed into one switch over ast's two tagged-union node
// types (see internal/ast's doc comment).
package evaluator

import (
	"errors"
	"math"

	"github.com/cqasm-lang/go-cqasm/internal/ast"
	"github.com/cqasm-lang/go-cqasm/internal/diag"
	"github.com/cqasm-lang/go-cqasm/internal/overload"
	"github.com/cqasm-lang/go-cqasm/internal/resolver"
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
	"github.com/cqasm-lang/go-cqasm/internal/tree"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

// Evaluator turns ast.Expression nodes into semantic.Value nodes. It
// holds no state of its own beyond what's passed in, so the statement
// analyzer constructs one per Program and reuses it across every
// expression in that program.
type Evaluator struct {
	Scope     *resolver.Stack
	Functions *resolver.FunctionTable
	NumQubits int64
	Diags     *diag.Diagnostics
	Source    string
}

// Eval dispatches on the expression's concrete type. The bool return is
// false once a diagnostic has already been recorded for this
// subexpression (or one of its children); callers should treat the
// accompanying Value as not meaningful in that case, not merely absent.
func (e *Evaluator) Eval(expr ast.Expression) (semantic.Value, bool) {
	switch n := expr.(type) {
	case *ast.IntegerLiteral:
		return semantic.ConstInt{Value: n.Value}, true

	case *ast.FloatLiteral:
		if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
			e.err(diag.Type, n.Position, "real literal %g is not finite", n.Value)
			return nil, false
		}
		return semantic.ConstReal{Value: n.Value}, true

	case *ast.StringLiteral:
		return semantic.ConstString{Value: n.Value}, true

	case *ast.JsonLiteral:
		return semantic.ConstJson{Value: n.Value}, true

	case *ast.MatrixLiteral:
		return e.evalMatrix(n)

	case *ast.Identifier:
		return e.evalIdentifier(n)

	case *ast.IndexExpr:
		return e.evalIndex(n)

	case *ast.FunctionCall:
		return e.evalCall(n.Position, n.Name, n.Args)

	case *ast.UnaryExpr:
		return e.evalCall(n.Position, n.Op.CanonicalName(), []ast.Expression{n.Operand})

	case *ast.BinaryExpr:
		return e.evalCall(n.Position, n.Op.CanonicalName(), []ast.Expression{n.Left, n.Right})

	case *ast.TernaryExpr:
		return e.evalTernary(n)

	default:
		e.err(diag.Internal, expr.Pos(), "unhandled expression node %T", expr)
		return nil, false
	}
}

// RequireConstInt evaluates expr and requires it fold to a compile-time
// integer, e.g. a subcircuit's iteration count or a for-loop bound.
func (e *Evaluator) RequireConstInt(expr ast.Expression) (int64, bool) {
	v, ok := e.Eval(expr)
	if !ok {
		return 0, false
	}
	promoted, ok := semantic.Promote(v, types.Int())
	if !ok {
		e.err(diag.Type, expr.Pos(), "expected a constant integer, got %s", v.Type())
		return 0, false
	}
	i, ok := promoted.(semantic.ConstInt)
	if !ok {
		e.err(diag.Type, expr.Pos(), "expected a compile-time constant integer")
		return 0, false
	}
	return i.Value, true
}

// RequireBool evaluates expr and requires it be bool-typed (not
// necessarily constant), e.g. a while/if condition.
func (e *Evaluator) RequireBool(expr ast.Expression) (semantic.Value, bool) {
	v, ok := e.Eval(expr)
	if !ok {
		return nil, false
	}
	promoted, ok := semantic.Promote(v, types.Bool())
	if !ok {
		e.err(diag.Type, expr.Pos(), "expected bool, got %s", v.Type())
		return nil, false
	}
	return promoted, true
}

// RequireConstBool evaluates expr and requires a compile-time bool
// constant, for a guard that must be foldable at compile time. Ternary
// and statement conditions use RequireBool, which also accepts a
// non-constant bool.
func (e *Evaluator) RequireConstBool(expr ast.Expression) (bool, bool) {
	v, ok := e.RequireBool(expr)
	if !ok {
		return false, false
	}
	b, ok := v.(semantic.ConstBool)
	if !ok {
		return false, false // not constant; caller falls back to non-folding path
	}
	return b.Value, true
}

func (e *Evaluator) evalMatrix(n *ast.MatrixLiteral) (semantic.Value, bool) {
	if len(n.Rows) == 0 {
		e.err(diag.Type, n.Position, "matrix literal has no rows")
		return nil, false
	}
	cols := len(n.Rows[0])
	rowsComplex := make([][]types.Complex, len(n.Rows))
	rowsReal := make([][]float64, len(n.Rows))
	isComplex := false
	ok := true
	for i, row := range n.Rows {
		if len(row) != cols {
			e.err(diag.Type, n.Position, "matrix rows have unequal length (%d vs %d)", len(row), cols)
			ok = false
			continue
		}
		rowsComplex[i] = make([]types.Complex, cols)
		rowsReal[i] = make([]float64, cols)
		for j, elemExpr := range row {
			v, elemOK := e.Eval(elemExpr)
			if !elemOK {
				ok = false
				continue
			}
			switch val := v.(type) {
			case semantic.ConstInt:
				rowsReal[i][j] = float64(val.Value)
				rowsComplex[i][j] = types.Complex{Re: float64(val.Value)}
			case semantic.ConstReal:
				rowsReal[i][j] = val.Value
				rowsComplex[i][j] = types.Complex{Re: val.Value}
			case semantic.ConstComplex:
				isComplex = true
				rowsComplex[i][j] = val.Value
			default:
				e.err(diag.Type, elemExpr.Pos(), "matrix element must be a numeric constant, got %s", v.Type())
				ok = false
			}
		}
	}
	if !ok {
		return nil, false
	}
	if isComplex {
		m, err := types.NewCMatrix(rowsComplex)
		if err != nil {
			e.err(diag.Type, n.Position, "%s", err)
			return nil, false
		}
		return semantic.ConstComplexMatrix{Value: m}, true
	}
	m, err := types.NewRMatrix(rowsReal)
	if err != nil {
		e.err(diag.Type, n.Position, "%s", err)
		return nil, false
	}
	return semantic.ConstRealMatrix{Value: m}, true
}

func (e *Evaluator) evalIdentifier(n *ast.Identifier) (semantic.Value, bool) {
	if mapped, ok := e.Scope.LookupMapping(n.Name); ok {
		return mapped, true
	}
	if v, ok := e.Scope.LookupVariable(n.Name); ok {
		return semantic.VariableRef{Variable: tree.NewResolvedLink(v)}, true
	}
	switch n.Name {
	case "q":
		return semantic.QubitRef{Indices: e.fullRegister()}, true
	case "b":
		return semantic.BitRef{Indices: e.fullRegister()}, true
	}
	e.err(diag.NameResolution, n.Position, "undefined name %q", n.Name)
	return nil, false
}

// fullRegister builds the index list the bare `q`/`b` identifier expands
// to: a v1.x instruction operand of bare `q` applies to every qubit in
// parallel.
func (e *Evaluator) fullRegister() []int {
	idx := make([]int, e.NumQubits)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (e *Evaluator) evalIndex(n *ast.IndexExpr) (semantic.Value, bool) {
	base, ok := e.Eval(n.Base)
	if !ok {
		return nil, false
	}

	var domain []int
	var rebuild func([]int) semantic.Value
	switch v := base.(type) {
	case semantic.QubitRef:
		domain = v.Indices
		rebuild = func(idx []int) semantic.Value { return semantic.QubitRef{Indices: idx} }
	case semantic.BitRef:
		domain = v.Indices
		rebuild = func(idx []int) semantic.Value { return semantic.BitRef{Indices: idx} }
	default:
		e.err(diag.Type, n.Position, "cannot index into a value of type %s", base.Type())
		return nil, false
	}

	selected := make([]int, 0, len(n.Indices))
	ok = true
	for _, idxExpr := range n.Indices {
		i, idxOK := e.RequireConstInt(idxExpr)
		if !idxOK {
			ok = false
			continue
		}
		if i < 0 || int(i) >= len(domain) {
			e.err(diag.ValueKind, idxExpr.Pos(), "index %d out of range [0,%d)", i, len(domain))
			ok = false
			continue
		}
		selected = append(selected, domain[i])
	}
	if !ok {
		return nil, false
	}
	return rebuild(selected), true
}

func (e *Evaluator) evalCall(pos ast.Position, name string, argExprs []ast.Expression) (semantic.Value, bool) {
	args := make([]semantic.Value, 0, len(argExprs))
	ok := true
	for _, ae := range argExprs {
		v, argOK := e.Eval(ae)
		if !argOK {
			ok = false
			continue
		}
		args = append(args, v)
	}
	if !ok {
		return nil, false
	}

	ov, promoted, err := e.Functions.Resolve(name, args)
	if err != nil {
		e.reportResolutionError(pos, name, err)
		return nil, false
	}

	allConst := true
	for _, a := range promoted {
		if !a.IsConstant() {
			allConst = false
			break
		}
	}
	if !allConst {
		return semantic.FunctionCall{Name: name, Args: tree.NewAny(promoted...), ReturnType: ov.ReturnType}, true
	}

	result, callErr := ov.Call(promoted)
	if callErr != nil {
		e.err(diag.ValueKind, pos, "%s", callErr)
		return nil, false
	}
	return result, true
}

func (e *Evaluator) evalTernary(n *ast.TernaryExpr) (semantic.Value, bool) {
	condVal, ok := e.RequireBool(n.Cond)
	if !ok {
		return nil, false
	}
	thenVal, thenOK := e.Eval(n.Then)
	elseVal, elseOK := e.Eval(n.Else)
	if !thenOK || !elseOK {
		return nil, false
	}
	if cond, isConst := condVal.(semantic.ConstBool); isConst {
		if cond.Value {
			return thenVal, true
		}
		return elseVal, true
	}
	// Non-constant condition: defer via the synthetic "operator?:" entry
	// every function table registers three-wide (bool, T, T) -> T.
	ov, promoted, err := e.Functions.Resolve("operator?:", []semantic.Value{condVal, thenVal, elseVal})
	if err != nil {
		e.reportResolutionError(n.Position, "operator?:", err)
		return nil, false
	}
	return semantic.FunctionCall{Name: "operator?:", Args: tree.NewAny(promoted...), ReturnType: ov.ReturnType}, true
}

func (e *Evaluator) reportResolutionError(pos ast.Position, name string, err error) {
	var nameErr *overload.NameResolutionError
	if errors.As(err, &nameErr) {
		e.err(diag.NameResolution, pos, "undefined function or operator %q", name)
		return
	}
	var resErr *overload.ResolutionError
	if errors.As(err, &resErr) {
		e.err(diag.OverloadResolution, pos, "no overload of %q matches argument types %s",
			name, typeTupleString(resErr.ArgTypes))
		return
	}
	e.err(diag.Internal, pos, "%s", err)
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

func (e *Evaluator) err(kind diag.Kind, pos ast.Position, format string, args ...any) {
	e.Diags.Add(kind, pos, e.Source, format, args...)
}
