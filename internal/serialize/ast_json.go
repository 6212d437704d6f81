package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/cqasm-lang/go-cqasm/internal/ast"
)

// ASTProgramTree projects an *ast.Program into the same generic "@t"
// tagged tree shape as ProgramTree, so an already-built AST can be
// exchanged as JSON between an external parser and this module's
// analyzer without this module implementing any cQASM grammar of its
// own -- lexing and parsing stay out of scope, but the already-parsed
// tree still needs an interchange format.
func ASTProgramTree(p *ast.Program) node {
	stmts := make([]any, 0, len(p.Statements))
	for _, s := range p.Statements {
		stmts = append(stmts, astStatementTree(s))
	}
	out := node{
		"@t":         "Program",
		"version":    p.Version.Components,
		"statements": stmts,
	}
	if p.NumQubits != nil {
		out["numQubits"] = astExprTree(p.NumQubits)
	}
	return out
}

func astExprTree(e ast.Expression) node {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return node{"@t": "IntegerLiteral", "value": n.Value}
	case *ast.FloatLiteral:
		return node{"@t": "FloatLiteral", "value": n.Value}
	case *ast.StringLiteral:
		return node{"@t": "StringLiteral", "value": n.Value}
	case *ast.JsonLiteral:
		return node{"@t": "JsonLiteral", "value": n.Value}
	case *ast.MatrixLiteral:
		rows := make([]any, len(n.Rows))
		for i, row := range n.Rows {
			cells := make([]any, len(row))
			for j, c := range row {
				cells[j] = astExprTree(c)
			}
			rows[i] = cells
		}
		return node{"@t": "MatrixLiteral", "rows": rows}
	case *ast.Identifier:
		return node{"@t": "Identifier", "name": n.Name}
	case *ast.FunctionCall:
		args := make([]any, len(n.Args))
		for i, a := range n.Args {
			args[i] = astExprTree(a)
		}
		return node{"@t": "FunctionCall", "name": n.Name, "args": args}
	case *ast.IndexExpr:
		indices := make([]any, len(n.Indices))
		for i, idx := range n.Indices {
			indices[i] = astExprTree(idx)
		}
		return node{"@t": "IndexExpr", "base": astExprTree(n.Base), "indices": indices}
	case *ast.TernaryExpr:
		return node{"@t": "TernaryExpr", "cond": astExprTree(n.Cond), "then": astExprTree(n.Then), "else": astExprTree(n.Else)}
	case *ast.UnaryExpr:
		return node{"@t": "UnaryExpr", "op": int(n.Op), "operand": astExprTree(n.Operand)}
	case *ast.BinaryExpr:
		return node{"@t": "BinaryExpr", "op": int(n.Op), "left": astExprTree(n.Left), "right": astExprTree(n.Right)}
	default:
		return node{"@t": "UnknownExpression"}
	}
}

func astInstructionTree(in *ast.Instruction) node {
	operands := make([]any, len(in.Operands))
	for i, op := range in.Operands {
		operands[i] = astExprTree(op)
	}
	out := node{"@t": "Instruction", "name": in.Name, "operands": operands}
	if in.Cond != nil {
		out["cond"] = astExprTree(in.Cond)
	}
	if len(in.Annotations) > 0 {
		out["annotations"] = astAnnotationsTree(in.Annotations)
	}
	return out
}

func astAnnotationsTree(anns []ast.Annotation) []any {
	out := make([]any, len(anns))
	for i, a := range anns {
		operands := make([]any, len(a.Operands))
		for j, op := range a.Operands {
			operands[j] = astExprTree(op)
		}
		out[i] = node{"interface": a.Interface, "operation": a.Operation, "operands": operands}
	}
	return out
}

func astStatementTree(s ast.Statement) node {
	if s == nil {
		return nil
	}
	switch n := s.(type) {
	case *ast.Mapping:
		return node{"@t": "Mapping", "name": n.Name, "expr": astExprTree(n.Expr)}
	case *ast.VariablesDecl:
		names := make([]any, len(n.Names))
		for i, name := range n.Names {
			names[i] = name
		}
		return node{"@t": "VariablesDecl", "names": names, "typeName": n.TypeName}
	case *ast.ErrorModelDecl:
		args := make([]any, len(n.Args))
		for i, a := range n.Args {
			args[i] = astExprTree(a)
		}
		return node{"@t": "ErrorModelDecl", "name": n.Name, "args": args}
	case *ast.SubcircuitDecl:
		out := node{"@t": "SubcircuitDecl", "name": n.Name}
		if n.Iterations != nil {
			out["iterations"] = astExprTree(n.Iterations)
		}
		return out
	case *ast.Bundle:
		instrs := make([]any, len(n.Instructions))
		for i, in := range n.Instructions {
			instrs[i] = astInstructionTree(in)
		}
		return node{"@t": "Bundle", "instructions": instrs}
	case *ast.IfElse:
		branches := make([]any, len(n.Branches))
		for i, b := range n.Branches {
			branches[i] = node{"cond": astExprTree(b.Cond), "body": astStatementsTree(b.Body)}
		}
		out := node{"@t": "IfElse", "branches": branches}
		if n.Else != nil {
			out["else"] = astStatementsTree(n.Else)
		}
		return out
	case *ast.ForLoop:
		out := node{"@t": "ForLoop", "cond": astExprTree(n.Cond), "body": astStatementsTree(n.Body)}
		if n.Init != nil {
			out["init"] = astInstructionTree(n.Init)
		}
		if n.Update != nil {
			out["update"] = astInstructionTree(n.Update)
		}
		return out
	case *ast.ForeachLoop:
		return node{"@t": "ForeachLoop", "var": n.Var, "from": astExprTree(n.From), "to": astExprTree(n.To), "body": astStatementsTree(n.Body)}
	case *ast.WhileLoop:
		return node{"@t": "WhileLoop", "cond": astExprTree(n.Cond), "body": astStatementsTree(n.Body)}
	case *ast.RepeatUntilLoop:
		return node{"@t": "RepeatUntilLoop", "cond": astExprTree(n.Cond), "body": astStatementsTree(n.Body)}
	case *ast.Break:
		return node{"@t": "Break"}
	case *ast.Continue:
		return node{"@t": "Continue"}
	default:
		return node{"@t": "UnknownStatement"}
	}
}

func astStatementsTree(stmts []ast.Statement) []any {
	out := make([]any, len(stmts))
	for i, s := range stmts {
		out[i] = astStatementTree(s)
	}
	return out
}

// DecodeASTJSON reverses ASTProgramTree: it turns the JSON interchange
// form produced by an external parser back into an *ast.Program. Source
// positions are not part of the interchange format here (a parser that
// wants positions attaches them before encoding; this round trip is used
// for test fixtures and the CLI's demo input, where exact columns don't
// matter).
func DecodeASTJSON(data []byte) (*ast.Program, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("serialize: decode AST JSON: %w", err)
	}
	return decodeASTProgram(raw)
}

func decodeASTProgram(m map[string]any) (*ast.Program, error) {
	components, err := intSlice(m["version"])
	if err != nil {
		return nil, fmt.Errorf("serialize: program version: %w", err)
	}
	prog := &ast.Program{Version: ast.VersionHeader{Components: components}}
	if nq, ok := m["numQubits"]; ok && nq != nil {
		expr, err := decodeExpr(nq)
		if err != nil {
			return nil, err
		}
		prog.NumQubits = expr
	}
	stmts, err := decodeStatementList(m["statements"])
	if err != nil {
		return nil, err
	}
	prog.Statements = stmts
	return prog, nil
}

func intSlice(v any) ([]int, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a number array, got %T", v)
	}
	out := make([]int, len(list))
	for i, x := range list {
		n, ok := x.(float64)
		if !ok {
			return nil, fmt.Errorf("expected a number at index %d, got %T", i, x)
		}
		out[i] = int(n)
	}
	return out, nil
}

func asMap(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", v)
	}
	return m, nil
}

func tag(m map[string]any) string {
	t, _ := m["@t"].(string)
	return t
}

func decodeExpr(v any) (ast.Expression, error) {
	if v == nil {
		return nil, nil
	}
	m, err := asMap(v)
	if err != nil {
		return nil, err
	}
	switch tag(m) {
	case "IntegerLiteral":
		return &ast.IntegerLiteral{Value: int64(m["value"].(float64))}, nil
	case "FloatLiteral":
		return &ast.FloatLiteral{Value: m["value"].(float64)}, nil
	case "StringLiteral":
		return &ast.StringLiteral{Value: m["value"].(string)}, nil
	case "JsonLiteral":
		return &ast.JsonLiteral{Value: m["value"].(string)}, nil
	case "MatrixLiteral":
		rowsRaw, _ := m["rows"].([]any)
		rows := make([][]ast.Expression, len(rowsRaw))
		for i, r := range rowsRaw {
			cellsRaw, _ := r.([]any)
			cells := make([]ast.Expression, len(cellsRaw))
			for j, c := range cellsRaw {
				cells[j], err = decodeExpr(c)
				if err != nil {
					return nil, err
				}
			}
			rows[i] = cells
		}
		return &ast.MatrixLiteral{Rows: rows}, nil
	case "Identifier":
		return &ast.Identifier{Name: m["name"].(string)}, nil
	case "FunctionCall":
		args, err := decodeExprList(m["args"])
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Name: m["name"].(string), Args: args}, nil
	case "IndexExpr":
		base, err := decodeExpr(m["base"])
		if err != nil {
			return nil, err
		}
		indices, err := decodeExprList(m["indices"])
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{Base: base, Indices: indices}, nil
	case "TernaryExpr":
		cond, err := decodeExpr(m["cond"])
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(m["then"])
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(m["else"])
		if err != nil {
			return nil, err
		}
		return &ast.TernaryExpr{Cond: cond, Then: then, Else: els}, nil
	case "UnaryExpr":
		operand, err := decodeExpr(m["operand"])
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.UnaryOperator(int(m["op"].(float64))), Operand: operand}, nil
	case "BinaryExpr":
		left, err := decodeExpr(m["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(m["right"])
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: ast.BinaryOperator(int(m["op"].(float64))), Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("serialize: unknown expression tag %q", tag(m))
	}
}

func decodeExprList(v any) ([]ast.Expression, error) {
	list, _ := v.([]any)
	out := make([]ast.Expression, len(list))
	for i, x := range list {
		e, err := decodeExpr(x)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeAnnotations(v any) ([]ast.Annotation, error) {
	list, _ := v.([]any)
	out := make([]ast.Annotation, len(list))
	for i, x := range list {
		m, err := asMap(x)
		if err != nil {
			return nil, err
		}
		operands, err := decodeExprList(m["operands"])
		if err != nil {
			return nil, err
		}
		iface, _ := m["interface"].(string)
		op, _ := m["operation"].(string)
		out[i] = ast.Annotation{Interface: iface, Operation: op, Operands: operands}
	}
	return out, nil
}

func decodeInstruction(v any) (*ast.Instruction, error) {
	if v == nil {
		return nil, nil
	}
	m, err := asMap(v)
	if err != nil {
		return nil, err
	}
	operands, err := decodeExprList(m["operands"])
	if err != nil {
		return nil, err
	}
	instr := &ast.Instruction{Name: m["name"].(string), Operands: operands}
	if cond, ok := m["cond"]; ok {
		instr.Cond, err = decodeExpr(cond)
		if err != nil {
			return nil, err
		}
	}
	if anns, ok := m["annotations"]; ok {
		instr.Annotations, err = decodeAnnotations(anns)
		if err != nil {
			return nil, err
		}
	}
	return instr, nil
}

func decodeStatementList(v any) ([]ast.Statement, error) {
	list, _ := v.([]any)
	out := make([]ast.Statement, len(list))
	for i, x := range list {
		s, err := decodeStatement(x)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func decodeStatement(v any) (ast.Statement, error) {
	m, err := asMap(v)
	if err != nil {
		return nil, err
	}
	switch tag(m) {
	case "Mapping":
		expr, err := decodeExpr(m["expr"])
		if err != nil {
			return nil, err
		}
		return &ast.Mapping{Name: m["name"].(string), Expr: expr}, nil
	case "VariablesDecl":
		namesRaw, _ := m["names"].([]any)
		names := make([]string, len(namesRaw))
		for i, n := range namesRaw {
			names[i] = n.(string)
		}
		return &ast.VariablesDecl{Names: names, TypeName: m["typeName"].(string)}, nil
	case "ErrorModelDecl":
		args, err := decodeExprList(m["args"])
		if err != nil {
			return nil, err
		}
		return &ast.ErrorModelDecl{Name: m["name"].(string), Args: args}, nil
	case "SubcircuitDecl":
		decl := &ast.SubcircuitDecl{Name: m["name"].(string)}
		if it, ok := m["iterations"]; ok {
			decl.Iterations, err = decodeExpr(it)
			if err != nil {
				return nil, err
			}
		}
		return decl, nil
	case "Bundle":
		instrsRaw, _ := m["instructions"].([]any)
		instrs := make([]*ast.Instruction, len(instrsRaw))
		for i, in := range instrsRaw {
			instrs[i], err = decodeInstruction(in)
			if err != nil {
				return nil, err
			}
		}
		return &ast.Bundle{Instructions: instrs}, nil
	case "IfElse":
		branchesRaw, _ := m["branches"].([]any)
		branches := make([]ast.IfBranch, len(branchesRaw))
		for i, b := range branchesRaw {
			bm, err := asMap(b)
			if err != nil {
				return nil, err
			}
			cond, err := decodeExpr(bm["cond"])
			if err != nil {
				return nil, err
			}
			body, err := decodeStatementList(bm["body"])
			if err != nil {
				return nil, err
			}
			branches[i] = ast.IfBranch{Cond: cond, Body: body}
		}
		stmt := &ast.IfElse{Branches: branches}
		if els, ok := m["else"]; ok {
			stmt.Else, err = decodeStatementList(els)
			if err != nil {
				return nil, err
			}
		}
		return stmt, nil
	case "ForLoop":
		cond, err := decodeExpr(m["cond"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatementList(m["body"])
		if err != nil {
			return nil, err
		}
		stmt := &ast.ForLoop{Cond: cond, Body: body}
		if init, ok := m["init"]; ok {
			stmt.Init, err = decodeInstruction(init)
			if err != nil {
				return nil, err
			}
		}
		if upd, ok := m["update"]; ok {
			stmt.Update, err = decodeInstruction(upd)
			if err != nil {
				return nil, err
			}
		}
		return stmt, nil
	case "ForeachLoop":
		from, err := decodeExpr(m["from"])
		if err != nil {
			return nil, err
		}
		to, err := decodeExpr(m["to"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatementList(m["body"])
		if err != nil {
			return nil, err
		}
		return &ast.ForeachLoop{Var: m["var"].(string), From: from, To: to, Body: body}, nil
	case "WhileLoop":
		cond, err := decodeExpr(m["cond"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatementList(m["body"])
		if err != nil {
			return nil, err
		}
		return &ast.WhileLoop{Cond: cond, Body: body}, nil
	case "RepeatUntilLoop":
		body, err := decodeStatementList(m["body"])
		if err != nil {
			return nil, err
		}
		cond, err := decodeExpr(m["cond"])
		if err != nil {
			return nil, err
		}
		return &ast.RepeatUntilLoop{Body: body, Cond: cond}, nil
	case "Break":
		return &ast.Break{}, nil
	case "Continue":
		return &ast.Continue{}, nil
	default:
		return nil, fmt.Errorf("serialize: unknown statement tag %q", tag(m))
	}
}
