package analyzer

import (
	"testing"

	"github.com/cqasm-lang/go-cqasm/internal/ast"
)

func newTestAnalyzer(t *testing.T, apiVersion string) *Analyzer {
	t.Helper()
	a, err := New(apiVersion)
	if err != nil {
		t.Fatalf("New(%q): %v", apiVersion, err)
	}
	a.RegisterDefaultConstants()
	a.RegisterDefaultFunctions()
	a.RegisterDefaultInstructions()
	a.RegisterDefaultErrorModels()
	return a
}

func qubit(i int64) ast.Expression {
	return &ast.IndexExpr{
		Base:    &ast.Identifier{Name: "q"},
		Indices: []ast.Expression{&ast.IntegerLiteral{Value: i}},
	}
}

func TestAnalyzeRejectsMissingVersion(t *testing.T) {
	a := newTestAnalyzer(t, "3.0")
	prog := &ast.Program{NumQubits: &ast.IntegerLiteral{Value: 1}}
	result := a.Analyze(prog, "t.cq3", "")
	if !result.Diagnostics.HasErrors() {
		t.Fatalf("expected a missing-version diagnostic")
	}
}

func TestAnalyzeRejectsVersionAboveConfigured(t *testing.T) {
	a := newTestAnalyzer(t, "3.0")
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{4, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 1},
	}
	result := a.Analyze(prog, "t.cq3", "")
	if !result.Diagnostics.HasErrors() {
		t.Fatalf("expected program version 4.0 to exceed configured api version 3.0")
	}
}

func TestAnalyzeRejectsZeroQubits(t *testing.T) {
	a := newTestAnalyzer(t, "3.0")
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{3, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 0},
	}
	result := a.Analyze(prog, "t.cq3", "")
	if !result.Diagnostics.HasErrors() {
		t.Fatalf("expected num_qubits == 0 to be rejected")
	}
}

func TestAnalyzeMappingAndBundle(t *testing.T) {
	a := newTestAnalyzer(t, "3.0")
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{3, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 1},
		Statements: []ast.Statement{
			&ast.Mapping{Name: "q0", Expr: qubit(0)},
			&ast.Bundle{Instructions: []*ast.Instruction{
				{Name: "H", Operands: []ast.Expression{&ast.Identifier{Name: "q0"}}},
			}},
		},
	}
	result := a.Analyze(prog, "t.cq3", "")
	if result.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", result.Diagnostics.Strings())
	}
	if len(result.Program.Mappings.Items()) != 1 {
		t.Errorf("expected one mapping, got %d", len(result.Program.Mappings.Items()))
	}
}

func TestAnalyzeDuplicateVariableDeclaration(t *testing.T) {
	a := newTestAnalyzer(t, "3.0")
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{3, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 1},
		Statements: []ast.Statement{
			&ast.VariablesDecl{Names: []string{"x"}, TypeName: "int"},
			&ast.VariablesDecl{Names: []string{"x"}, TypeName: "int"},
		},
	}
	result := a.Analyze(prog, "t.cq3", "")
	if !result.Diagnostics.HasErrors() {
		t.Fatalf("expected duplicate variable declaration to be rejected")
	}
}

func TestAnalyzeUnknownTypeName(t *testing.T) {
	a := newTestAnalyzer(t, "3.0")
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{3, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 1},
		Statements: []ast.Statement{
			&ast.VariablesDecl{Names: []string{"x"}, TypeName: "wat"},
		},
	}
	result := a.Analyze(prog, "t.cq3", "")
	if !result.Diagnostics.HasErrors() {
		t.Fatalf("expected an unknown type name to be rejected")
	}
}

func TestAnalyzeBundleOverlapRejected(t *testing.T) {
	a := newTestAnalyzer(t, "3.0")
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{3, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 2},
		Statements: []ast.Statement{
			&ast.Bundle{Instructions: []*ast.Instruction{
				{Name: "H", Operands: []ast.Expression{qubit(0)}},
				{Name: "X", Operands: []ast.Expression{qubit(0)}},
			}},
		},
	}
	result := a.Analyze(prog, "t.cq3", "")
	if !result.Diagnostics.HasErrors() {
		t.Fatalf("expected two instructions touching qubit 0 in the same bundle to be rejected")
	}
}

func TestAnalyzeStructuredControlRequiresDialect1_2(t *testing.T) {
	a := newTestAnalyzer(t, "1.0")
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{1, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 1},
		Statements: []ast.Statement{
			&ast.IfElse{Branches: []ast.IfBranch{
				{Cond: &ast.Identifier{Name: "true"}, Body: []ast.Statement{&ast.Break{}}},
			}},
		},
	}
	result := a.Analyze(prog, "t.cq1", "")
	if !result.Diagnostics.HasErrors() {
		t.Fatalf("expected if/else to require dialect >= 1.2 under v1.x")
	}
}

func TestAnalyzeBreakOutsideLoopRejected(t *testing.T) {
	a := newTestAnalyzer(t, "3.0")
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{3, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 1},
		Statements: []ast.Statement{
			&ast.Break{},
		},
	}
	result := a.Analyze(prog, "t.cq3", "")
	if !result.Diagnostics.HasErrors() {
		t.Fatalf("expected a top-level break (outside any loop) to be rejected")
	}
}

func TestAnalyzeSubcircuitWithInvalidIterationCount(t *testing.T) {
	a := newTestAnalyzer(t, "3.0")
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{3, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 1},
		Statements: []ast.Statement{
			&ast.SubcircuitDecl{Name: "main", Iterations: &ast.IntegerLiteral{Value: 0}},
		},
	}
	result := a.Analyze(prog, "t.cq3", "")
	if !result.Diagnostics.HasErrors() {
		t.Fatalf("expected a subcircuit with iterations == 0 to be rejected")
	}
}

func TestAnalyzeGotoUndefinedSubcircuit(t *testing.T) {
	a := newTestAnalyzer(t, "1.2")
	prog := &ast.Program{
		Version:   ast.VersionHeader{Components: []int{1, 2}},
		NumQubits: &ast.IntegerLiteral{Value: 1},
		Statements: []ast.Statement{
			&ast.Bundle{Instructions: []*ast.Instruction{
				{Name: "goto", Operands: []ast.Expression{&ast.Identifier{Name: "nowhere"}}},
			}},
		},
	}
	result := a.Analyze(prog, "t.cq1", "")
	if !result.Diagnostics.HasErrors() {
		t.Fatalf("expected goto to an undeclared subcircuit to be rejected")
	}
}
