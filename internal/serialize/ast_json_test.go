package serialize

import (
	"encoding/json"
	"testing"

	"github.com/cqasm-lang/go-cqasm/internal/ast"
)

func TestASTJSONRoundTrip(t *testing.T) {
	prog := &ast.Program{
		Version: ast.VersionHeader{Components: []int{3, 0}},
		NumQubits: &ast.IntegerLiteral{Value: 5},
		Statements: []ast.Statement{
			&ast.VariablesDecl{Names: []string{"a", "b"}, TypeName: "int"},
			&ast.Mapping{Name: "q0", Expr: &ast.IndexExpr{
				Base:    &ast.Identifier{Name: "q"},
				Indices: []ast.Expression{&ast.IntegerLiteral{Value: 0}},
			}},
			&ast.SubcircuitDecl{Name: "main", Iterations: &ast.IntegerLiteral{Value: 3}},
			&ast.Bundle{Instructions: []*ast.Instruction{
				{Name: "h", Operands: []ast.Expression{&ast.Identifier{Name: "q0"}}},
			}},
			&ast.IfElse{
				Branches: []ast.IfBranch{
					{Cond: &ast.BinaryExpr{Op: ast.BinEq, Left: &ast.Identifier{Name: "a"}, Right: &ast.IntegerLiteral{Value: 1}},
						Body: []ast.Statement{&ast.Break{}}},
				},
				Else: []ast.Statement{&ast.Continue{}},
			},
			&ast.ForeachLoop{Var: "i", From: &ast.IntegerLiteral{Value: 0}, To: &ast.IntegerLiteral{Value: 9},
				Body: []ast.Statement{&ast.Bundle{}}},
			&ast.ErrorModelDecl{Name: "depolarizing", Args: []ast.Expression{&ast.FloatLiteral{Value: 0.1}}},
		},
	}

	data, err := json.Marshal(ASTProgramTree(prog))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := DecodeASTJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Version.Components[0] != 3 || decoded.Version.Components[1] != 0 {
		t.Errorf("version mismatch: got %v", decoded.Version.Components)
	}
	nq, ok := decoded.NumQubits.(*ast.IntegerLiteral)
	if !ok || nq.Value != 5 {
		t.Errorf("numQubits mismatch: got %#v", decoded.NumQubits)
	}
	if len(decoded.Statements) != len(prog.Statements) {
		t.Fatalf("statement count mismatch: got %d want %d", len(decoded.Statements), len(prog.Statements))
	}

	decl, ok := decoded.Statements[0].(*ast.VariablesDecl)
	if !ok || decl.TypeName != "int" || len(decl.Names) != 2 {
		t.Errorf("VariablesDecl mismatch: got %#v", decoded.Statements[0])
	}

	mapping, ok := decoded.Statements[1].(*ast.Mapping)
	if !ok || mapping.Name != "q0" {
		t.Errorf("Mapping mismatch: got %#v", decoded.Statements[1])
	}
	idx, ok := mapping.Expr.(*ast.IndexExpr)
	if !ok || len(idx.Indices) != 1 {
		t.Errorf("Mapping.Expr mismatch: got %#v", mapping.Expr)
	}

	sc, ok := decoded.Statements[2].(*ast.SubcircuitDecl)
	if !ok || sc.Name != "main" {
		t.Errorf("SubcircuitDecl mismatch: got %#v", decoded.Statements[2])
	}

	bundle, ok := decoded.Statements[3].(*ast.Bundle)
	if !ok || len(bundle.Instructions) != 1 || bundle.Instructions[0].Name != "h" {
		t.Errorf("Bundle mismatch: got %#v", decoded.Statements[3])
	}

	ifElse, ok := decoded.Statements[4].(*ast.IfElse)
	if !ok || len(ifElse.Branches) != 1 || len(ifElse.Else) != 1 {
		t.Errorf("IfElse mismatch: got %#v", decoded.Statements[4])
	}
	if _, ok := ifElse.Branches[0].Cond.(*ast.BinaryExpr); !ok {
		t.Errorf("IfElse condition mismatch: got %#v", ifElse.Branches[0].Cond)
	}

	foreach, ok := decoded.Statements[5].(*ast.ForeachLoop)
	if !ok || foreach.Var != "i" {
		t.Errorf("ForeachLoop mismatch: got %#v", decoded.Statements[5])
	}

	em, ok := decoded.Statements[6].(*ast.ErrorModelDecl)
	if !ok || em.Name != "depolarizing" || len(em.Args) != 1 {
		t.Errorf("ErrorModelDecl mismatch: got %#v", decoded.Statements[6])
	}
}
