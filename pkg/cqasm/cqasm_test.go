package cqasm

import (
	"testing"

	"github.com/cqasm-lang/go-cqasm/internal/ast"
)

func qubit(i int64) ast.Expression {
	return &ast.IndexExpr{
		Base:    &ast.Identifier{Name: "q"},
		Indices: []ast.Expression{&ast.IntegerLiteral{Value: i}},
	}
}

func TestAnalyzeSimpleProgram(t *testing.T) {
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{3, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 2},
		Statements: []ast.Statement{
			&ast.Bundle{Instructions: []*ast.Instruction{
				{Name: "H", Operands: []ast.Expression{qubit(0)}},
			}},
			&ast.Bundle{Instructions: []*ast.Instruction{
				{Name: "X", Operands: []ast.Expression{qubit(1)}},
			}},
		},
	}

	a, err := New("3.0")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := a.Analyze(prog, "test.cq3", "")
	if !result.Success() {
		t.Fatalf("analysis failed: %v", result.Errors())
	}
	if result.Program == nil {
		t.Fatalf("expected a non-nil semantic Program")
	}
}

func TestAnalyzeUndefinedInstruction(t *testing.T) {
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{3, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 1},
		Statements: []ast.Statement{
			&ast.Bundle{Instructions: []*ast.Instruction{
				{Name: "not_a_real_gate", Operands: []ast.Expression{qubit(0)}},
			}},
		},
	}

	a, err := New("3.0")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := a.Analyze(prog, "test.cq3", "")
	if result.Success() {
		t.Fatalf("expected analysis to fail for an undefined instruction")
	}
	if len(result.Errors()) == 0 {
		t.Fatalf("expected at least one diagnostic")
	}
}

func TestNewRejectsBadVersion(t *testing.T) {
	if _, err := New("not-a-version"); err == nil {
		t.Fatalf("expected New to reject a malformed api version")
	}
}

func TestAnalyzeStringWithoutParserFails(t *testing.T) {
	a, err := New("3.0")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.AnalyzeString("version 3.0;", "inline"); err == nil {
		t.Fatalf("expected AnalyzeString to fail without a configured Parser")
	}
}
