package evaluator

import (
	"math"
	"testing"

	"github.com/cqasm-lang/go-cqasm/internal/ast"
	"github.com/cqasm-lang/go-cqasm/internal/builtins"
	"github.com/cqasm-lang/go-cqasm/internal/diag"
	"github.com/cqasm-lang/go-cqasm/internal/resolver"
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
)

func newEvaluator(numQubits int64) *Evaluator {
	ft := resolver.NewFunctionTable(false)
	builtins.RegisterDefaultFunctions(ft)
	return &Evaluator{
		Scope:     resolver.NewStack(),
		Functions: ft,
		NumQubits: numQubits,
		Diags:     &diag.Diagnostics{},
	}
}

func TestEvalIntegerLiteral(t *testing.T) {
	e := newEvaluator(0)
	v, ok := e.Eval(&ast.IntegerLiteral{Value: 7})
	if !ok {
		t.Fatalf("Eval failed: %v", e.Diags.Strings())
	}
	if got := v.(semantic.ConstInt).Value; got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestEvalRejectsNonFiniteFloat(t *testing.T) {
	e := newEvaluator(0)
	_, ok := e.Eval(&ast.FloatLiteral{Value: math.NaN()})
	if ok {
		t.Fatalf("expected NaN float literal to be rejected")
	}
	if !e.Diags.HasErrors() {
		t.Errorf("expected a diagnostic to be recorded")
	}
}

func TestEvalBareQExpandsToFullRegister(t *testing.T) {
	e := newEvaluator(3)
	v, ok := e.Eval(&ast.Identifier{Name: "q"})
	if !ok {
		t.Fatalf("Eval failed: %v", e.Diags.Strings())
	}
	qr, ok := v.(semantic.QubitRef)
	if !ok || len(qr.Indices) != 3 {
		t.Errorf("expected QubitRef with 3 indices, got %#v", v)
	}
}

func TestEvalIndexExprSelectsFromQubitRegister(t *testing.T) {
	e := newEvaluator(4)
	expr := &ast.IndexExpr{
		Base:    &ast.Identifier{Name: "q"},
		Indices: []ast.Expression{&ast.IntegerLiteral{Value: 2}},
	}
	v, ok := e.Eval(expr)
	if !ok {
		t.Fatalf("Eval failed: %v", e.Diags.Strings())
	}
	qr, ok := v.(semantic.QubitRef)
	if !ok || len(qr.Indices) != 1 || qr.Indices[0] != 2 {
		t.Errorf("expected QubitRef{[2]}, got %#v", v)
	}
}

func TestEvalIndexOutOfRange(t *testing.T) {
	e := newEvaluator(2)
	expr := &ast.IndexExpr{
		Base:    &ast.Identifier{Name: "q"},
		Indices: []ast.Expression{&ast.IntegerLiteral{Value: 5}},
	}
	if _, ok := e.Eval(expr); ok {
		t.Fatalf("expected out-of-range index to fail")
	}
}

func TestEvalBinaryExprFoldsConstants(t *testing.T) {
	e := newEvaluator(0)
	expr := &ast.BinaryExpr{
		Op:    ast.BinAdd,
		Left:  &ast.IntegerLiteral{Value: 2},
		Right: &ast.IntegerLiteral{Value: 3},
	}
	v, ok := e.Eval(expr)
	if !ok {
		t.Fatalf("Eval failed: %v", e.Diags.Strings())
	}
	if got := v.(semantic.ConstInt).Value; got != 5 {
		t.Errorf("got %d, want 5", got)
	}
}

func TestEvalUndefinedIdentifier(t *testing.T) {
	e := newEvaluator(0)
	if _, ok := e.Eval(&ast.Identifier{Name: "nope"}); ok {
		t.Fatalf("expected undefined identifier to fail")
	}
	if len(*e.Diags) != 1 || (*e.Diags)[0].Kind != diag.NameResolution {
		t.Errorf("expected one NameResolution diagnostic, got %v", e.Diags.Strings())
	}
}

func TestEvalTernaryConstantCondition(t *testing.T) {
	e := newEvaluator(0)
	expr := &ast.TernaryExpr{
		Cond: &ast.Identifier{Name: "true"},
		Then: &ast.IntegerLiteral{Value: 1},
		Else: &ast.IntegerLiteral{Value: 2},
	}
	e.Scope.Push(false)
	e.Scope.Current().Mappings.Add("true", semantic.ConstBool{Value: true})

	v, ok := e.Eval(expr)
	if !ok {
		t.Fatalf("Eval failed: %v", e.Diags.Strings())
	}
	if got := v.(semantic.ConstInt).Value; got != 1 {
		t.Errorf("got %d, want 1 (then-branch)", got)
	}
}

func TestRequireConstIntRejectsNonConstant(t *testing.T) {
	e := newEvaluator(0)
	if _, ok := e.RequireConstInt(&ast.StringLiteral{Value: "x"}); ok {
		t.Fatalf("expected a string literal to fail RequireConstInt")
	}
}
