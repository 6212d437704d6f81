// Package semantic defines both the Value variant and the semantic tree
// node types produced by the analyzer.
//
// The two live in one package deliberately: a VariableRef value must link
// back to the Variable that declared it, and a Label value must link to a
// Subcircuit, but Variables and Subcircuits themselves are built out of
// Values (default expressions, instruction operands, ...). Go has no
// forward declaration across packages, so rather than split Value and
// the tree node types and fight the resulting import cycle, they live
// together in one package.
package semantic

import (
	"fmt"
	"strings"

	"github.com/cqasm-lang/go-cqasm/internal/tree"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

// Value is the tagged union of typed values: constants, references to
// storage (qubits, bits, variables), deferred function calls, and
// subcircuit labels. Values are immutable -- promotion and folding always
// produce a new Value.
type Value interface {
	tree.Node[Value]

	// Type returns this value's static type.
	Type() types.Type

	// IsConstant reports whether this value is known at compile time.
	// Const* variants (which is what fully-constant FunctionCalls fold
	// to) and Label are constant; QubitRef/BitRef/VariableRef and
	// unfolded FunctionCalls are not.
	IsConstant() bool

	String() string
}

// ConstBool is a compile-time boolean constant.
type ConstBool struct{ Value bool }

func (v ConstBool) Type() types.Type    { return types.Bool() }
func (v ConstBool) IsConstant() bool    { return true }
func (v ConstBool) Clone() Value        { return v }
func (v ConstBool) String() string      { return fmt.Sprintf("%t", v.Value) }
func (v ConstBool) Equal(o Value) bool {
	other, ok := o.(ConstBool)
	return ok && other.Value == v.Value
}

// ConstAxis is a compile-time X/Y/Z axis constant.
type ConstAxis struct{ Value types.Axis }

func (v ConstAxis) Type() types.Type    { return types.Axis_() }
func (v ConstAxis) IsConstant() bool    { return true }
func (v ConstAxis) Clone() Value        { return v }
func (v ConstAxis) String() string      { return v.Value.String() }
func (v ConstAxis) Equal(o Value) bool {
	other, ok := o.(ConstAxis)
	return ok && other.Value == v.Value
}

// ConstInt is a compile-time 64-bit signed integer constant.
type ConstInt struct{ Value int64 }

func (v ConstInt) Type() types.Type    { return types.Int() }
func (v ConstInt) IsConstant() bool    { return true }
func (v ConstInt) Clone() Value        { return v }
func (v ConstInt) String() string      { return fmt.Sprintf("%d", v.Value) }
func (v ConstInt) Equal(o Value) bool {
	other, ok := o.(ConstInt)
	return ok && other.Value == v.Value
}

// ConstReal is a compile-time IEEE-754 double constant.
type ConstReal struct{ Value float64 }

func (v ConstReal) Type() types.Type    { return types.Real() }
func (v ConstReal) IsConstant() bool    { return true }
func (v ConstReal) Clone() Value        { return v }
func (v ConstReal) String() string      { return fmt.Sprintf("%g", v.Value) }
func (v ConstReal) Equal(o Value) bool {
	other, ok := o.(ConstReal)
	return ok && other.Value == v.Value
}

// ConstComplex is a compile-time complex constant.
type ConstComplex struct{ Value types.Complex }

func (v ConstComplex) Type() types.Type    { return types.Complex_() }
func (v ConstComplex) IsConstant() bool    { return true }
func (v ConstComplex) Clone() Value        { return v }
func (v ConstComplex) String() string      { return v.Value.String() }
func (v ConstComplex) Equal(o Value) bool {
	other, ok := o.(ConstComplex)
	return ok && other.Value.Equal(v.Value)
}

// ConstString is a compile-time UTF-8 string constant.
type ConstString struct{ Value string }

func (v ConstString) Type() types.Type    { return types.String() }
func (v ConstString) IsConstant() bool    { return true }
func (v ConstString) Clone() Value        { return v }
func (v ConstString) String() string      { return fmt.Sprintf("%q", v.Value) }
func (v ConstString) Equal(o Value) bool {
	other, ok := o.(ConstString)
	return ok && other.Value == v.Value
}

// ConstJson is a compile-time JSON payload. The payload is stored as its
// source text; it is validated lazily, only when a function actually
// needs to parse it.
type ConstJson struct{ Value string }

func (v ConstJson) Type() types.Type    { return types.Json() }
func (v ConstJson) IsConstant() bool    { return true }
func (v ConstJson) Clone() Value        { return v }
func (v ConstJson) String() string      { return v.Value }
func (v ConstJson) Equal(o Value) bool {
	other, ok := o.(ConstJson)
	return ok && other.Value == v.Value
}

// ConstRealMatrix is a compile-time real-matrix constant.
type ConstRealMatrix struct{ Value types.RMatrix }

func (v ConstRealMatrix) Type() types.Type { return types.RealMatrix(v.Value.Rows, v.Value.Cols) }
func (v ConstRealMatrix) IsConstant() bool { return true }
func (v ConstRealMatrix) Clone() Value     { return v }
func (v ConstRealMatrix) String() string   { return fmt.Sprintf("real_matrix%v", v.Value.Data) }
func (v ConstRealMatrix) Equal(o Value) bool {
	other, ok := o.(ConstRealMatrix)
	return ok && other.Value.Equal(v.Value)
}

// ConstComplexMatrix is a compile-time complex-matrix constant, as
// written in source before any Unitary-operand validation runs. See
// ConstUnitary for the post-validation variant.
type ConstComplexMatrix struct{ Value types.CMatrix }

func (v ConstComplexMatrix) Type() types.Type { return types.ComplexMatrix(v.Value.Rows, v.Value.Cols) }
func (v ConstComplexMatrix) IsConstant() bool { return true }
func (v ConstComplexMatrix) Clone() Value     { return v }
func (v ConstComplexMatrix) String() string   { return fmt.Sprintf("complex_matrix%v", v.Value.Data) }
func (v ConstComplexMatrix) Equal(o Value) bool {
	other, ok := o.(ConstComplexMatrix)
	return ok && other.Value.Equal(v.Value)
}

// ConstUnitary is a compile-time complex-matrix constant known to be
// square, power-of-two dimensioned, and unitary within UnitaryTolerance.
// It is produced only by Promote, which is the sole place that runs the
// dimension and Frobenius-distance checks; a plain ConstComplexMatrix
// literal never carries this type on its own.
type ConstUnitary struct{ Value types.CMatrix }

func (v ConstUnitary) Type() types.Type { return types.Unitary(v.Value.Rows) }
func (v ConstUnitary) IsConstant() bool { return true }
func (v ConstUnitary) Clone() Value     { return v }
func (v ConstUnitary) String() string   { return fmt.Sprintf("unitary%v", v.Value.Data) }
func (v ConstUnitary) Equal(o Value) bool {
	other, ok := o.(ConstUnitary)
	return ok && other.Value.Equal(v.Value)
}

// QubitRef references one or more qubits by index, e.g. q[0] or q[0,1,2].
// A multi-index QubitRef is treated as a single "set" value during
// overload resolution, not as N scalar arguments.
type QubitRef struct{ Indices []int }

func (v QubitRef) Type() types.Type { return types.Qubit() }
func (v QubitRef) IsConstant() bool { return false }
func (v QubitRef) Clone() Value {
	idx := make([]int, len(v.Indices))
	copy(idx, v.Indices)
	return QubitRef{Indices: idx}
}
func (v QubitRef) String() string {
	parts := make([]string, len(v.Indices))
	for i, idx := range v.Indices {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return fmt.Sprintf("q[%s]", strings.Join(parts, ","))
}
func (v QubitRef) Equal(o Value) bool {
	other, ok := o.(QubitRef)
	return ok && intsEqual(v.Indices, other.Indices)
}

// BitRef references one or more measurement bits by index.
type BitRef struct{ Indices []int }

func (v BitRef) Type() types.Type { return types.Bit() }
func (v BitRef) IsConstant() bool { return false }
func (v BitRef) Clone() Value {
	idx := make([]int, len(v.Indices))
	copy(idx, v.Indices)
	return BitRef{Indices: idx}
}
func (v BitRef) String() string {
	parts := make([]string, len(v.Indices))
	for i, idx := range v.Indices {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return fmt.Sprintf("b[%s]", strings.Join(parts, ","))
}
func (v BitRef) Equal(o Value) bool {
	other, ok := o.(BitRef)
	return ok && intsEqual(v.Indices, other.Indices)
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// VariableRef references a declared Variable. Its Type carries whatever
// assignable flag the Variable's own type has.
type VariableRef struct {
	Variable tree.Link[Variable]
}

func (v VariableRef) Type() types.Type { return v.Variable.Get().Type }
func (v VariableRef) IsConstant() bool { return false }
func (v VariableRef) Clone() Value     { return VariableRef{Variable: v.Variable} }
func (v VariableRef) String() string   { return fmt.Sprintf("<var %s>", v.Variable.Get().Name) }
func (v VariableRef) Equal(o Value) bool {
	other, ok := o.(VariableRef)
	if !ok || v.Variable.Resolved() != other.Variable.Resolved() {
		return false
	}
	if !v.Variable.Resolved() {
		return v.Variable.DeferredID() == other.Variable.DeferredID()
	}
	// Compared by declaration name, not pointer: two independently
	// built trees (e.g. a deserialized Program and the one it was
	// encoded from) never share a *Variable allocation, so pointer
	// identity can never hold across them even when they describe the
	// same declaration.
	return v.Variable.Get().Name == other.Variable.Get().Name
}
func (v VariableRef) VisitChildren(vis tree.Visitor) {
	if v.Variable.Resolved() {
		tree.Walk(vis, v.Variable.Get())
	}
}

// FunctionCall is a deferred call preserved in the tree because at least
// one argument was not a compile-time constant; ReturnType is the type
// chosen by overload resolution so later type-checks don't need to
// re-resolve the call.
type FunctionCall struct {
	Name       string
	Args       tree.Any[Value]
	ReturnType types.Type
}

func (v FunctionCall) Type() types.Type { return v.ReturnType }
func (v FunctionCall) IsConstant() bool { return false }
func (v FunctionCall) Clone() Value {
	return FunctionCall{Name: v.Name, Args: v.Args.Clone(), ReturnType: v.ReturnType}
}
func (v FunctionCall) String() string {
	parts := make([]string, v.Args.Len())
	for i, a := range v.Args.Items() {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", v.Name, strings.Join(parts, ", "))
}
func (v FunctionCall) Equal(o Value) bool {
	other, ok := o.(FunctionCall)
	return ok && other.Name == v.Name && other.Args.Equal(v.Args)
}
func (v FunctionCall) VisitChildren(vis tree.Visitor) {
	for _, a := range v.Args.Items() {
		tree.Walk(vis, a)
	}
}

// Label references a Subcircuit, used as the (pre-link-resolution)
// operand value of a goto instruction.
type Label struct {
	Subcircuit tree.Link[Subcircuit]
}

func (v Label) Type() types.Type { return types.Type{Kind: types.KindString} }
func (v Label) IsConstant() bool { return true }
func (v Label) Clone() Value     { return Label{Subcircuit: v.Subcircuit} }
func (v Label) String() string {
	if v.Subcircuit.Resolved() {
		return fmt.Sprintf("<label %s>", v.Subcircuit.Get().Name)
	}
	return fmt.Sprintf("<unresolved label %s>", v.Subcircuit.DeferredID())
}
func (v Label) Equal(o Value) bool {
	other, ok := o.(Label)
	if !ok {
		return false
	}
	if v.Subcircuit.Resolved() != other.Subcircuit.Resolved() {
		return false
	}
	if !v.Subcircuit.Resolved() {
		return v.Subcircuit.DeferredID() == other.Subcircuit.DeferredID()
	}
	return v.Subcircuit.Get().Name == other.Subcircuit.Get().Name
}
func (v Label) VisitChildren(vis tree.Visitor) {
	if v.Subcircuit.Resolved() {
		tree.Walk(vis, v.Subcircuit.Get())
	}
}

// Promote is the single legal way to coerce a Value to a target Type.
// It returns (value, false) on failure; the caller is responsible for
// turning that into a diagnostic.
func Promote(v Value, target types.Type) (Value, bool) {
	vt := v.Type()

	// Identity: matching kind (dimensions checked below for matrices).
	if vt.Kind == target.Kind {
		switch vt.Kind {
		case types.KindRealMatrix, types.KindComplexMatrix, types.KindUnitary:
			if !dimsCompatible(vt, target) {
				return nil, false
			}
		}
		if vref, ok := v.(VariableRef); ok {
			// A VariableRef whose stored type matches target without the
			// assignable flag is accepted.
			if vref.Variable.Get().Type.AsConst().Equal(target.AsConst()) {
				return v, true
			}
			return nil, false
		}
		return v, true
	}

	switch {
	case vt.Kind == types.KindBool && target.Kind == types.KindInt:
		b, ok := v.(ConstBool)
		if !ok {
			return nil, false
		}
		if b.Value {
			return ConstInt{Value: 1}, true
		}
		return ConstInt{Value: 0}, true

	case vt.Kind == types.KindInt && target.Kind == types.KindBool:
		i, ok := v.(ConstInt)
		if !ok || (i.Value != 0 && i.Value != 1) {
			return nil, false
		}
		return ConstBool{Value: i.Value == 1}, true

	case vt.Kind == types.KindInt && target.Kind == types.KindReal:
		switch val := v.(type) {
		case ConstInt:
			return ConstReal{Value: float64(val.Value)}, true
		default:
			return nil, false
		}

	case vt.Kind == types.KindInt && target.Kind == types.KindComplex:
		switch val := v.(type) {
		case ConstInt:
			return ConstComplex{Value: types.Complex{Re: float64(val.Value)}}, true
		default:
			return nil, false
		}

	case vt.Kind == types.KindReal && target.Kind == types.KindComplex:
		switch val := v.(type) {
		case ConstReal:
			return ConstComplex{Value: types.Complex{Re: val.Value}}, true
		default:
			return nil, false
		}

	case vt.Kind == types.KindQubit && target.Kind == types.KindQubit:
		return v, true

	case vt.Kind == types.KindBit && target.Kind == types.KindBit:
		return v, true

	case vt.Kind == types.KindComplexMatrix && target.Kind == types.KindUnitary:
		cm, ok := v.(ConstComplexMatrix)
		if !ok {
			return nil, false
		}
		return promoteToUnitary(cm.Value, target)

	case vt.Kind == types.KindRealMatrix && target.Kind == types.KindUnitary:
		rm, ok := v.(ConstRealMatrix)
		if !ok {
			return nil, false
		}
		data := make([]types.Complex, len(rm.Value.Data))
		for i, re := range rm.Value.Data {
			data[i] = types.Complex{Re: re}
		}
		return promoteToUnitary(types.CMatrix{Rows: rm.Value.Rows, Cols: rm.Value.Cols, Data: data}, target)
	}

	return nil, false
}

// promoteToUnitary validates m as a Unitary operand: square, power-of-two
// dimensioned, within UnitaryTolerance of M*M^H == I, and matching
// target's declared dimension if it isn't size-polymorphic.
func promoteToUnitary(m types.CMatrix, target types.Type) (Value, bool) {
	if m.Rows != m.Cols || !types.IsPowerOfTwo(m.Rows) {
		return nil, false
	}
	if target.Rows != 0 && target.Rows != m.Rows {
		return nil, false
	}
	if types.FrobeniusDistanceFromUnitary(m) > types.UnitaryTolerance {
		return nil, false
	}
	return ConstUnitary{Value: m}, true
}

func dimsCompatible(have, want types.Type) bool {
	rowsOK := want.Rows == 0 || want.Rows == have.Rows
	colsOK := want.Cols == 0 || want.Cols == have.Cols
	return rowsOK && colsOK
}

// TypesOf returns the static types of a Value slice, used when building
// "no overload matched (a, b, c)" diagnostics.
func TypesOf(vs []Value) []types.Type {
	out := make([]types.Type, len(vs))
	for i, v := range vs {
		out[i] = v.Type()
	}
	return out
}

// TypeTupleString renders a slice of Values' types for diagnostics, e.g.
// "(int, real)".
func TypeTupleString(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.Type().String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
