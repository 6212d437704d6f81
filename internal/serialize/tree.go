// Package serialize implements the two external-interface projections of
// an analysis result: a normative CBOR tree encoding and a JSON view
// built without a bespoke marshaler, using tidwall/gjson+sjson. Every
// semantic node is projected into a plain map/slice tree tagged with
// "@t" (the Go type name) before handing it to either encoder, so both
// encoders share one walk of the semantic tree. Link-typed fields
// (tree.Link[Variable], tree.Link[Subcircuit]) project into a numeric
// "@l" id rather than a name, so the same tree can be decoded back into
// a *semantic.Program with the original pointer identities restored.
package serialize

import (
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
	"github.com/cqasm-lang/go-cqasm/internal/tree"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

// node is the generic tagged map every semantic node projects into.
// "@t" names the concrete Go type, following the common debug-dump
// convention of prefixing a node kind before its fields.
type node = map[string]any

// encodeCtx assigns a stable integer id to every *Variable and
// *Subcircuit the Program's tree can reach, canonical declarations
// (Program.Variables/Subcircuits) first in declaration order, then any
// variable reachable only through a reference (a block-scoped Variable
// whose declaring Scope was popped and discarded, leaving no home for
// it anywhere except the VariableRef/ForeachLoop.Variable pointers that
// still hold it alive). Subcircuits never need this fallback: every
// Subcircuit the analyzer constructs is registered into
// Program.Subcircuits before analysis finishes.
type encodeCtx struct {
	variableIDs   map[*semantic.Variable]int
	subcircuitIDs map[*semantic.Subcircuit]int
	auxVariables  []*semantic.Variable
}

func newEncodeCtx(p *semantic.Program) *encodeCtx {
	ctx := &encodeCtx{
		variableIDs:   make(map[*semantic.Variable]int),
		subcircuitIDs: make(map[*semantic.Subcircuit]int),
	}
	for i, sc := range p.Subcircuits.Items() {
		ctx.subcircuitIDs[sc] = i
	}
	for i, v := range p.Variables.Items() {
		ctx.variableIDs[v] = i
	}
	next := p.Variables.Len()
	tree.Walk(tree.RecursiveVisitor{Func: func(n any) {
		v, ok := n.(*semantic.Variable)
		if !ok {
			return
		}
		if _, seen := ctx.variableIDs[v]; seen {
			return
		}
		ctx.variableIDs[v] = next
		ctx.auxVariables = append(ctx.auxVariables, v)
		next++
	}}, p)
	return ctx
}

// variableLink projects a resolved tree.Link[Variable]'s target into a
// reference node carrying only its "@l" id; the full declaration lives
// once in Program's "variables" or "auxVariables" array.
func (ctx *encodeCtx) variableLink(v *semantic.Variable) node {
	out := node{"@t": "VariableRef"}
	if id, ok := ctx.variableIDs[v]; ok {
		out["@l"] = id
	}
	return out
}

func (ctx *encodeCtx) subcircuitLink(sc *semantic.Subcircuit) node {
	out := node{}
	if id, ok := ctx.subcircuitIDs[sc]; ok {
		out["@l"] = id
	}
	return out
}

// ProgramTree projects a *semantic.Program into the generic node tree
// both EncodeCBOR and EncodeJSON serialize.
func ProgramTree(p *semantic.Program) node {
	if p == nil {
		return nil
	}
	ctx := newEncodeCtx(p)

	subcircuits := make([]any, 0, p.Subcircuits.Len())
	for _, sc := range p.Subcircuits.Items() {
		subcircuits = append(subcircuits, ctx.subcircuitTree(sc))
	}
	mappings := make([]any, 0, len(p.Mappings.Items()))
	for _, m := range p.Mappings.Items() {
		mappings = append(mappings, node{"@t": "Mapping", "name": m.Name, "value": ctx.valueTree(m.Value)})
	}
	variables := make([]any, 0, p.Variables.Len())
	for _, v := range p.Variables.Items() {
		variables = append(variables, ctx.variableDeclTree(v))
	}
	auxVariables := make([]any, 0, len(ctx.auxVariables))
	for _, v := range ctx.auxVariables {
		auxVariables = append(auxVariables, ctx.variableDeclTree(v))
	}
	out := node{
		"@t":           "Program",
		"apiVersion":   p.APIVersion.String(),
		"version":      p.Version.String(),
		"numQubits":    p.NumQubits,
		"subcircuits":  subcircuits,
		"mappings":     mappings,
		"variables":    variables,
		"auxVariables": auxVariables,
	}
	if em, ok := p.ErrorModel.Get(); ok {
		out["errorModel"] = ctx.errorModelTree(em)
	}
	return out
}

func (ctx *encodeCtx) errorModelTree(em semantic.ErrorModel) node {
	operands := make([]any, 0, len(em.Operands.Items()))
	for _, v := range em.Operands.Items() {
		operands = append(operands, ctx.valueTree(v))
	}
	return node{"@t": "ErrorModel", "name": em.Name, "operands": operands}
}

// variableDeclTree is the canonical declaration site for a Variable:
// its "@l" id plus the name/type every reference elsewhere resolves
// against.
func (ctx *encodeCtx) variableDeclTree(v *semantic.Variable) node {
	if v == nil {
		return nil
	}
	out := node{"@t": "Variable", "name": v.Name, "type": typeTree(v.Type)}
	if id, ok := ctx.variableIDs[v]; ok {
		out["@l"] = id
	}
	return out
}

func (ctx *encodeCtx) subcircuitTree(sc *semantic.Subcircuit) node {
	if sc == nil {
		return nil
	}
	out := node{"@t": "Subcircuit", "name": sc.Name, "iterations": sc.Iterations}
	if id, ok := ctx.subcircuitIDs[sc]; ok {
		out["@l"] = id
	}
	bundles := sc.Bundles.Items()
	if len(bundles) > 0 {
		list := make([]any, 0, len(bundles))
		for _, b := range bundles {
			list = append(list, ctx.bundleTree(b))
		}
		out["bundles"] = list
	}
	if blk, ok := sc.Block.Get(); ok {
		out["block"] = ctx.blockTree(blk)
	}
	return out
}

func (ctx *encodeCtx) bundleTree(b semantic.Bundle) node {
	instrs := make([]any, 0, b.Instructions.Len())
	for _, ib := range b.Instructions.Items() {
		instrs = append(instrs, ctx.instructionTree(ib))
	}
	return node{"@t": "Bundle", "instructions": instrs}
}

func (ctx *encodeCtx) blockTree(b semantic.Block) node {
	stmts := make([]any, 0, len(b.Statements.Items()))
	for _, st := range b.Statements.Items() {
		stmts = append(stmts, ctx.statementTree(st))
	}
	return node{"@t": "Block", "statements": stmts}
}

func (ctx *encodeCtx) statementTree(st semantic.Statement) node {
	if st == nil {
		return nil
	}
	var out node
	switch s := st.(type) {
	case *semantic.BundleExt:
		instrs := make([]any, 0, s.Instructions.Len())
		for _, ib := range s.Instructions.Items() {
			instrs = append(instrs, ctx.instructionTree(ib))
		}
		out = node{"@t": "BundleExt", "instructions": instrs}
	case *semantic.IfElse:
		branches := make([]any, 0, len(s.Branches))
		for _, b := range s.Branches {
			branches = append(branches, node{"@t": "IfElseBranch", "condition": ctx.valueTree(b.Condition), "body": ctx.blockTree(b.Body)})
		}
		out = node{"@t": "IfElse", "branches": branches}
		if elseBlk, ok := s.Else.Get(); ok {
			out["else"] = ctx.blockTree(elseBlk)
		}
	case *semantic.ForLoop:
		out = node{"@t": "ForLoop", "condition": ctx.valueTree(s.Condition), "body": ctx.blockTree(s.Body)}
		if init, ok := s.Init.Get(); ok {
			out["init"] = ctx.instructionTree(init)
		}
		if update, ok := s.Update.Get(); ok {
			out["update"] = ctx.instructionTree(update)
		}
	case *semantic.ForeachLoop:
		out = node{"@t": "ForeachLoop", "from": s.From, "to": s.To, "body": ctx.blockTree(s.Body)}
		if s.Variable.Resolved() {
			out["variable"] = ctx.variableLink(s.Variable.Get())
		}
	case *semantic.WhileLoop:
		out = node{"@t": "WhileLoop", "condition": ctx.valueTree(s.Condition), "body": ctx.blockTree(s.Body)}
	case *semantic.RepeatUntilLoop:
		out = node{"@t": "RepeatUntilLoop", "condition": ctx.valueTree(s.Condition), "body": ctx.blockTree(s.Body)}
	case *semantic.Break:
		out = node{"@t": "Break"}
	case *semantic.Continue:
		out = node{"@t": "Continue"}
	default:
		out = node{"@t": "UnknownStatement"}
	}
	if anns := st.Annotations(); len(anns) > 0 {
		out["annotations"] = ctx.annotationsTree(anns)
	}
	return out
}

func (ctx *encodeCtx) annotationsTree(anns []semantic.AnnotationData) []any {
	out := make([]any, 0, len(anns))
	for _, a := range anns {
		operands := make([]any, 0, len(a.Operands.Items()))
		for _, v := range a.Operands.Items() {
			operands = append(operands, ctx.valueTree(v))
		}
		out = append(out, node{"@t": "Annotation", "interface": a.Interface, "operation": a.Operation, "operands": operands})
	}
	return out
}

func (ctx *encodeCtx) instructionTree(ib semantic.InstructionBase) node {
	if ib == nil {
		return nil
	}
	var out node
	switch in := ib.(type) {
	case *semantic.Instruction:
		operands := make([]any, 0, len(in.Operands.Items()))
		for _, v := range in.Operands.Items() {
			operands = append(operands, ctx.valueTree(v))
		}
		out = node{"@t": "Instruction", "name": in.Name, "operands": operands}
	case *semantic.SetInstruction:
		out = node{"@t": "SetInstruction", "lhs": ctx.valueTree(in.Lhs), "rhs": ctx.valueTree(in.Rhs)}
	case *semantic.GotoInstruction:
		out = node{"@t": "GotoInstruction"}
		if in.Target.Resolved() {
			out["target"] = ctx.subcircuitLink(in.Target.Get())
		}
	default:
		out = node{"@t": "UnknownInstruction"}
	}
	if cond, ok := ib.GetCondition(); ok {
		out["condition"] = ctx.valueTree(cond)
	}
	if anns := ib.Annotations(); len(anns) > 0 {
		out["annotations"] = ctx.annotationsTree(anns)
	}
	return out
}

func (ctx *encodeCtx) valueTree(v semantic.Value) node {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case semantic.ConstBool:
		return node{"@t": "ConstBool", "value": val.Value}
	case semantic.ConstAxis:
		return node{"@t": "ConstAxis", "value": val.Value.String()}
	case semantic.ConstInt:
		return node{"@t": "ConstInt", "value": val.Value}
	case semantic.ConstReal:
		return node{"@t": "ConstReal", "value": val.Value}
	case semantic.ConstComplex:
		return node{"@t": "ConstComplex", "re": val.Value.Re, "im": val.Value.Im}
	case semantic.ConstString:
		return node{"@t": "ConstString", "value": val.Value}
	case semantic.ConstJson:
		return node{"@t": "ConstJson", "value": val.Value}
	case semantic.ConstRealMatrix:
		return node{"@t": "ConstRealMatrix", "rows": val.Value.Rows, "cols": val.Value.Cols, "data": floatsToAny(val.Value.Data)}
	case semantic.ConstComplexMatrix:
		return node{"@t": "ConstComplexMatrix", "rows": val.Value.Rows, "cols": val.Value.Cols, "data": complexesToAny(val.Value.Data)}
	case semantic.ConstUnitary:
		return node{"@t": "ConstUnitary", "rows": val.Value.Rows, "cols": val.Value.Cols, "data": complexesToAny(val.Value.Data)}
	case semantic.QubitRef:
		return node{"@t": "QubitRef", "indices": intsToAny(val.Indices)}
	case semantic.BitRef:
		return node{"@t": "BitRef", "indices": intsToAny(val.Indices)}
	case semantic.VariableRef:
		if !val.Variable.Resolved() {
			return node{"@t": "VariableRef"}
		}
		return ctx.variableLink(val.Variable.Get())
	case semantic.FunctionCall:
		args := make([]any, 0, len(val.Args.Items()))
		for _, a := range val.Args.Items() {
			args = append(args, ctx.valueTree(a))
		}
		return node{"@t": "FunctionCall", "name": val.Name, "args": args, "returnType": typeTree(val.ReturnType)}
	case semantic.Label:
		out := node{"@t": "Label"}
		if val.Subcircuit.Resolved() {
			out["target"] = ctx.subcircuitLink(val.Subcircuit.Get())
		}
		return out
	default:
		return node{"@t": "UnknownValue", "string": v.String()}
	}
}

func typeTree(t types.Type) node {
	return node{"@t": "Type", "kind": int(t.Kind), "assignable": t.Assignable, "rows": t.Rows, "cols": t.Cols}
}

func intsToAny(xs []int) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func floatsToAny(xs []float64) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func complexesToAny(xs []types.Complex) []any {
	out := make([]any, len(xs))
	for i, c := range xs {
		out[i] = node{"re": c.Re, "im": c.Im}
	}
	return out
}
