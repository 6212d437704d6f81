package serialize

import (
	"fmt"

	"github.com/cqasm-lang/go-cqasm/internal/semantic"
	"github.com/cqasm-lang/go-cqasm/internal/tree"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

// decoder mirrors encodeCtx on the way back in: the id -> pointer maps
// needed to turn an "@l" reference back into the same shared
// *Variable/*Subcircuit every other reference to it must also resolve
// to, so the decoded tree shares targets the way the encoded one did.
type decoder struct {
	variables   map[int]*semantic.Variable
	subcircuits map[int]*semantic.Subcircuit
}

// DecodeProgram reconstructs a *semantic.Program from the generic node
// tree produced by ProgramTree (i.e. what DecodeCBOR/a JSON unmarshal of
// EncodeJSON's "program" field yields): the decode half of the §6
// contract, the inverse of ProgramTree's walk.
func DecodeProgram(raw any) (*semantic.Program, error) {
	m, ok := asNodeMap(raw)
	if !ok {
		return nil, fmt.Errorf("serialize: expected a Program map, got %T", raw)
	}
	if t, _ := m["@t"].(string); t != "Program" {
		return nil, fmt.Errorf("serialize: expected @t %q, got %q", "Program", t)
	}

	dec := &decoder{
		variables:   make(map[int]*semantic.Variable),
		subcircuits: make(map[int]*semantic.Subcircuit),
	}

	p := &semantic.Program{}
	var err error
	if p.APIVersion, err = types.ParseVersion(asString(m["apiVersion"])); err != nil {
		return nil, fmt.Errorf("serialize: apiVersion: %w", err)
	}
	if p.Version, err = types.ParseVersion(asString(m["version"])); err != nil {
		return nil, fmt.Errorf("serialize: version: %w", err)
	}
	p.NumQubits = asInt64(m["numQubits"])

	// Pass 1: declare every Variable -- canonical (Program.Variables)
	// and auxiliary (reachable only through a reference) -- before any
	// link can name one, the same forward-reference shape
	// analyzer.resolveGotos uses for subcircuit names.
	for _, item := range asSlice(m["variables"]) {
		v, id, err := decodeVariable(item)
		if err != nil {
			return nil, err
		}
		dec.variables[id] = v
		p.Variables.Add(v)
	}
	for _, item := range asSlice(m["auxVariables"]) {
		v, id, err := decodeVariable(item)
		if err != nil {
			return nil, err
		}
		dec.variables[id] = v
	}

	// Pass 2a: allocate every Subcircuit by id (name/iterations only),
	// so a goto appearing before its target's declaration still resolves.
	scItems := asSlice(m["subcircuits"])
	scNodes := make([]map[string]any, 0, len(scItems))
	for _, item := range scItems {
		sm, ok := asNodeMap(item)
		if !ok {
			return nil, fmt.Errorf("serialize: malformed Subcircuit entry %T", item)
		}
		id, ok := asInt(sm["@l"])
		if !ok {
			return nil, fmt.Errorf("serialize: Subcircuit missing @l")
		}
		sc := &semantic.Subcircuit{Name: asString(sm["name"]), Iterations: asInt64(sm["iterations"])}
		dec.subcircuits[id] = sc
		p.Subcircuits.Add(sc)
		scNodes = append(scNodes, sm)
	}

	// Pass 2b: now that every Variable and Subcircuit a Link could name
	// exists, fill in each Subcircuit's body.
	for i, sm := range scNodes {
		sc := p.Subcircuits.At(i)
		for _, b := range asSlice(sm["bundles"]) {
			bundle, err := dec.bundleFromNode(b)
			if err != nil {
				return nil, err
			}
			sc.Bundles.Add(bundle)
		}
		if blk, ok := sm["block"]; ok {
			block, err := dec.blockFromNode(blk)
			if err != nil {
				return nil, err
			}
			sc.Block.Set(block)
		}
	}

	for _, item := range asSlice(m["mappings"]) {
		mm, ok := asNodeMap(item)
		if !ok {
			return nil, fmt.Errorf("serialize: malformed Mapping entry %T", item)
		}
		val, err := dec.valueFromNode(mm["value"])
		if err != nil {
			return nil, err
		}
		p.Mappings.Add(semantic.Mapping{Name: asString(mm["name"]), Value: val})
	}

	if em, ok := m["errorModel"]; ok {
		errorModel, err := dec.errorModelFromNode(em)
		if err != nil {
			return nil, err
		}
		p.ErrorModel.Set(errorModel)
	}

	return p, nil
}

func decodeVariable(raw any) (*semantic.Variable, int, error) {
	m, ok := asNodeMap(raw)
	if !ok {
		return nil, 0, fmt.Errorf("serialize: malformed Variable entry %T", raw)
	}
	id, ok := asInt(m["@l"])
	if !ok {
		return nil, 0, fmt.Errorf("serialize: Variable missing @l")
	}
	typ, err := typeFromNode(m["type"])
	if err != nil {
		return nil, 0, err
	}
	return &semantic.Variable{Name: asString(m["name"]), Type: typ}, id, nil
}

func (d *decoder) errorModelFromNode(raw any) (semantic.ErrorModel, error) {
	m, ok := asNodeMap(raw)
	if !ok {
		return semantic.ErrorModel{}, fmt.Errorf("serialize: malformed ErrorModel %T", raw)
	}
	operands, err := d.valuesFromNode(m["operands"])
	if err != nil {
		return semantic.ErrorModel{}, err
	}
	out := semantic.ErrorModel{Name: asString(m["name"])}
	for _, v := range operands {
		out.Operands.Add(v)
	}
	return out, nil
}

func (d *decoder) bundleFromNode(raw any) (semantic.Bundle, error) {
	m, ok := asNodeMap(raw)
	if !ok {
		return semantic.Bundle{}, fmt.Errorf("serialize: malformed Bundle %T", raw)
	}
	var out semantic.Bundle
	for _, item := range asSlice(m["instructions"]) {
		ib, err := d.instructionFromNode(item)
		if err != nil {
			return semantic.Bundle{}, err
		}
		out.Instructions.Add(ib)
	}
	return out, nil
}

func (d *decoder) blockFromNode(raw any) (semantic.Block, error) {
	m, ok := asNodeMap(raw)
	if !ok {
		return semantic.Block{}, fmt.Errorf("serialize: malformed Block %T", raw)
	}
	var out semantic.Block
	for _, item := range asSlice(m["statements"]) {
		st, err := d.statementFromNode(item)
		if err != nil {
			return semantic.Block{}, err
		}
		out.Statements.Add(st)
	}
	return out, nil
}

func (d *decoder) annotationsFromNode(raw any) ([]semantic.AnnotationData, error) {
	items := asSlice(raw)
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]semantic.AnnotationData, 0, len(items))
	for _, item := range items {
		am, ok := asNodeMap(item)
		if !ok {
			return nil, fmt.Errorf("serialize: malformed Annotation %T", item)
		}
		operands, err := d.valuesFromNode(am["operands"])
		if err != nil {
			return nil, err
		}
		a := semantic.AnnotationData{Interface: asString(am["interface"]), Operation: asString(am["operation"])}
		for _, v := range operands {
			a.Operands.Add(v)
		}
		out = append(out, a)
	}
	return out, nil
}

func (d *decoder) statementFromNode(raw any) (semantic.Statement, error) {
	m, ok := asNodeMap(raw)
	if !ok {
		return nil, fmt.Errorf("serialize: malformed Statement %T", raw)
	}
	anns, err := d.annotationsFromNode(m["annotations"])
	if err != nil {
		return nil, err
	}
	var st semantic.Statement
	switch asString(m["@t"]) {
	case "BundleExt":
		s := &semantic.BundleExt{}
		for _, item := range asSlice(m["instructions"]) {
			ib, err := d.instructionFromNode(item)
			if err != nil {
				return nil, err
			}
			s.Instructions.Add(ib)
		}
		st = s
	case "IfElse":
		s := &semantic.IfElse{}
		for _, item := range asSlice(m["branches"]) {
			bm, ok := asNodeMap(item)
			if !ok {
				return nil, fmt.Errorf("serialize: malformed IfElseBranch %T", item)
			}
			cond, err := d.valueFromNode(bm["condition"])
			if err != nil {
				return nil, err
			}
			body, err := d.blockFromNode(bm["body"])
			if err != nil {
				return nil, err
			}
			s.Branches = append(s.Branches, semantic.IfElseBranch{Condition: cond, Body: body})
		}
		if elseRaw, ok := m["else"]; ok {
			blk, err := d.blockFromNode(elseRaw)
			if err != nil {
				return nil, err
			}
			s.Else.Set(blk)
		}
		st = s
	case "ForLoop":
		s := &semantic.ForLoop{}
		cond, err := d.valueFromNode(m["condition"])
		if err != nil {
			return nil, err
		}
		s.Condition = cond
		if body, ok := m["body"]; ok {
			blk, err := d.blockFromNode(body)
			if err != nil {
				return nil, err
			}
			s.Body = blk
		}
		if initRaw, ok := m["init"]; ok {
			init, err := d.instructionFromNode(initRaw)
			if err != nil {
				return nil, err
			}
			s.Init = tree.NewMaybe(init)
		}
		if updateRaw, ok := m["update"]; ok {
			update, err := d.instructionFromNode(updateRaw)
			if err != nil {
				return nil, err
			}
			s.Update = tree.NewMaybe(update)
		}
		st = s
	case "ForeachLoop":
		s := &semantic.ForeachLoop{From: asInt64(m["from"]), To: asInt64(m["to"])}
		if body, ok := m["body"]; ok {
			blk, err := d.blockFromNode(body)
			if err != nil {
				return nil, err
			}
			s.Body = blk
		}
		if varRaw, ok := m["variable"]; ok {
			v, err := d.linkedVariable(varRaw)
			if err != nil {
				return nil, err
			}
			s.Variable = tree.NewResolvedLink(v)
		}
		st = s
	case "WhileLoop":
		s := &semantic.WhileLoop{}
		cond, err := d.valueFromNode(m["condition"])
		if err != nil {
			return nil, err
		}
		s.Condition = cond
		if body, ok := m["body"]; ok {
			blk, err := d.blockFromNode(body)
			if err != nil {
				return nil, err
			}
			s.Body = blk
		}
		st = s
	case "RepeatUntilLoop":
		s := &semantic.RepeatUntilLoop{}
		cond, err := d.valueFromNode(m["condition"])
		if err != nil {
			return nil, err
		}
		s.Condition = cond
		if body, ok := m["body"]; ok {
			blk, err := d.blockFromNode(body)
			if err != nil {
				return nil, err
			}
			s.Body = blk
		}
		st = s
	case "Break":
		st = &semantic.Break{}
	case "Continue":
		st = &semantic.Continue{}
	default:
		return nil, fmt.Errorf("serialize: unrecognized Statement @t %q", m["@t"])
	}
	if anns != nil {
		st.SetAnnotations(anns)
	}
	return st, nil
}

func (d *decoder) instructionFromNode(raw any) (semantic.InstructionBase, error) {
	m, ok := asNodeMap(raw)
	if !ok {
		return nil, fmt.Errorf("serialize: malformed InstructionBase %T", raw)
	}
	anns, err := d.annotationsFromNode(m["annotations"])
	if err != nil {
		return nil, err
	}
	var cond *semantic.Value
	if condRaw, ok := m["condition"]; ok {
		c, err := d.valueFromNode(condRaw)
		if err != nil {
			return nil, err
		}
		cond = &c
	}

	var ib semantic.InstructionBase
	switch asString(m["@t"]) {
	case "Instruction":
		operands, err := d.valuesFromNode(m["operands"])
		if err != nil {
			return nil, err
		}
		s := &semantic.Instruction{Name: asString(m["name"])}
		for _, v := range operands {
			s.Operands.Add(v)
		}
		ib = s
	case "SetInstruction":
		lhs, err := d.valueFromNode(m["lhs"])
		if err != nil {
			return nil, err
		}
		rhs, err := d.valueFromNode(m["rhs"])
		if err != nil {
			return nil, err
		}
		ib = &semantic.SetInstruction{Lhs: lhs, Rhs: rhs}
	case "GotoInstruction":
		s := &semantic.GotoInstruction{}
		if targetRaw, ok := m["target"]; ok {
			sc, err := d.linkedSubcircuit(targetRaw)
			if err != nil {
				return nil, err
			}
			s.Target = tree.NewResolvedLink(sc)
		}
		ib = s
	default:
		return nil, fmt.Errorf("serialize: unrecognized InstructionBase @t %q", m["@t"])
	}
	if cond != nil {
		ib.SetCondition(*cond)
	}
	if anns != nil {
		ib.SetAnnotations(anns)
	}
	return ib, nil
}

func (d *decoder) linkedVariable(raw any) (*semantic.Variable, error) {
	m, ok := asNodeMap(raw)
	if !ok {
		return nil, fmt.Errorf("serialize: malformed variable link %T", raw)
	}
	id, ok := asInt(m["@l"])
	if !ok {
		return nil, fmt.Errorf("serialize: variable link missing @l")
	}
	v, ok := d.variables[id]
	if !ok {
		return nil, fmt.Errorf("serialize: variable link @l %d does not name a known Variable", id)
	}
	return v, nil
}

func (d *decoder) linkedSubcircuit(raw any) (*semantic.Subcircuit, error) {
	m, ok := asNodeMap(raw)
	if !ok {
		return nil, fmt.Errorf("serialize: malformed subcircuit link %T", raw)
	}
	id, ok := asInt(m["@l"])
	if !ok {
		return nil, fmt.Errorf("serialize: subcircuit link missing @l")
	}
	sc, ok := d.subcircuits[id]
	if !ok {
		return nil, fmt.Errorf("serialize: subcircuit link @l %d does not name a known Subcircuit", id)
	}
	return sc, nil
}

func (d *decoder) valuesFromNode(raw any) ([]semantic.Value, error) {
	items := asSlice(raw)
	out := make([]semantic.Value, 0, len(items))
	for _, item := range items {
		v, err := d.valueFromNode(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *decoder) valueFromNode(raw any) (semantic.Value, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := asNodeMap(raw)
	if !ok {
		return nil, fmt.Errorf("serialize: expected a Value map, got %T", raw)
	}
	switch asString(m["@t"]) {
	case "ConstBool":
		return semantic.ConstBool{Value: asBool(m["value"])}, nil
	case "ConstAxis":
		axis, ok := types.AxisFromName(asString(m["value"]))
		if !ok {
			return nil, fmt.Errorf("serialize: unrecognized axis %q", m["value"])
		}
		return semantic.ConstAxis{Value: axis}, nil
	case "ConstInt":
		return semantic.ConstInt{Value: asInt64(m["value"])}, nil
	case "ConstReal":
		return semantic.ConstReal{Value: asFloat(m["value"])}, nil
	case "ConstComplex":
		return semantic.ConstComplex{Value: types.Complex{Re: asFloat(m["re"]), Im: asFloat(m["im"])}}, nil
	case "ConstString":
		return semantic.ConstString{Value: asString(m["value"])}, nil
	case "ConstJson":
		return semantic.ConstJson{Value: asString(m["value"])}, nil
	case "ConstRealMatrix":
		return semantic.ConstRealMatrix{Value: realMatrixFromNode(m)}, nil
	case "ConstComplexMatrix":
		return semantic.ConstComplexMatrix{Value: complexMatrixFromNode(m)}, nil
	case "ConstUnitary":
		return semantic.ConstUnitary{Value: complexMatrixFromNode(m)}, nil
	case "QubitRef":
		return semantic.QubitRef{Indices: intsFromNode(m["indices"])}, nil
	case "BitRef":
		return semantic.BitRef{Indices: intsFromNode(m["indices"])}, nil
	case "VariableRef":
		if _, present := m["@l"]; !present {
			return semantic.VariableRef{}, nil
		}
		v, err := d.linkedVariable(m)
		if err != nil {
			return nil, err
		}
		return semantic.VariableRef{Variable: tree.NewResolvedLink(v)}, nil
	case "FunctionCall":
		args, err := d.valuesFromNode(m["args"])
		if err != nil {
			return nil, err
		}
		rt, err := typeFromNode(m["returnType"])
		if err != nil {
			return nil, err
		}
		out := semantic.FunctionCall{Name: asString(m["name"]), ReturnType: rt}
		for _, a := range args {
			out.Args.Add(a)
		}
		return out, nil
	case "Label":
		if _, present := m["target"]; !present {
			return semantic.Label{}, nil
		}
		sc, err := d.linkedSubcircuit(m["target"])
		if err != nil {
			return nil, err
		}
		return semantic.Label{Subcircuit: tree.NewResolvedLink(sc)}, nil
	default:
		return nil, fmt.Errorf("serialize: unrecognized Value @t %q", m["@t"])
	}
}

func typeFromNode(raw any) (types.Type, error) {
	m, ok := asNodeMap(raw)
	if !ok {
		return types.Type{}, fmt.Errorf("serialize: malformed Type %T", raw)
	}
	kind, ok := asInt(m["kind"])
	if !ok {
		return types.Type{}, fmt.Errorf("serialize: Type missing kind")
	}
	rows, _ := asInt(m["rows"])
	cols, _ := asInt(m["cols"])
	return types.Type{Kind: types.Kind(kind), Assignable: asBool(m["assignable"]), Rows: rows, Cols: cols}, nil
}

func realMatrixFromNode(m map[string]any) types.RMatrix {
	rows, _ := asInt(m["rows"])
	cols, _ := asInt(m["cols"])
	data := asSlice(m["data"])
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = asFloat(v)
	}
	return types.RMatrix{Rows: rows, Cols: cols, Data: out}
}

func complexMatrixFromNode(m map[string]any) types.CMatrix {
	rows, _ := asInt(m["rows"])
	cols, _ := asInt(m["cols"])
	data := asSlice(m["data"])
	out := make([]types.Complex, len(data))
	for i, v := range data {
		cm, _ := asNodeMap(v)
		out[i] = types.Complex{Re: asFloat(cm["re"]), Im: asFloat(cm["im"])}
	}
	return types.CMatrix{Rows: rows, Cols: cols, Data: out}
}

func intsFromNode(raw any) []int {
	items := asSlice(raw)
	out := make([]int, len(items))
	for i, v := range items {
		n, _ := asInt(v)
		out[i] = n
	}
	return out
}

// asNodeMap normalizes a decoded map value regardless of whether the
// decoder that produced it used map[string]any (encoding/json,
// sjson/gjson) or map[interface{}]interface{} (some CBOR decode paths).
// Named distinctly from ast_json.go's asMap (which decodes the separate
// AST-JSON interchange format and reports an error instead of ok=false).
func asNodeMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = v
		}
		return out, true
	default:
		return nil, false
	}
}

// asSlice normalizes a decoded sequence value; a missing or nil field
// yields an empty slice rather than requiring every call site to check.
func asSlice(raw any) []any {
	switch s := raw.(type) {
	case []any:
		return s
	default:
		return nil
	}
}

func asString(raw any) string {
	s, _ := raw.(string)
	return s
}

func asBool(raw any) bool {
	b, _ := raw.(bool)
	return b
}

// asInt accepts any of the numeric shapes a JSON or CBOR decode can hand
// back for an integer field (float64 from encoding/json, int/int64/
// uint64 from cbor.Unmarshal).
func asInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asInt64(raw any) int64 {
	switch n := raw.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat(raw any) float64 {
	switch n := raw.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	default:
		return 0
	}
}
