package types

import "fmt"

// Kind enumerates the primitive type variants.
type Kind int

const (
	KindQubit Kind = iota
	KindBit
	KindAxis
	KindBool
	KindInt
	KindReal
	KindComplex
	KindString
	KindJson
	KindRealMatrix
	KindComplexMatrix
	KindUnitary
)

func (k Kind) String() string {
	switch k {
	case KindQubit:
		return "qubit"
	case KindBit:
		return "bit"
	case KindAxis:
		return "axis"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindComplex:
		return "complex"
	case KindString:
		return "string"
	case KindJson:
		return "json"
	case KindRealMatrix:
		return "real_matrix"
	case KindComplexMatrix:
		return "complex_matrix"
	case KindUnitary:
		return "unitary_matrix"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type is a Kind plus the assignable flag ("this describes storage that
// can be written to") plus, for the matrix kinds, the declared
// dimensions (0 meaning "any size").
type Type struct {
	Kind       Kind
	Assignable bool
	Rows, Cols int // only meaningful for RealMatrix/ComplexMatrix/Unitary
}

func Qubit() Type   { return Type{Kind: KindQubit, Assignable: true} }
func Bit() Type     { return Type{Kind: KindBit, Assignable: true} }
func Axis_() Type   { return Type{Kind: KindAxis} }
func Bool() Type    { return Type{Kind: KindBool} }
func Int() Type     { return Type{Kind: KindInt} }
func Real() Type    { return Type{Kind: KindReal} }
func Complex_() Type { return Type{Kind: KindComplex} }
func String() Type  { return Type{Kind: KindString} }
func Json() Type    { return Type{Kind: KindJson} }

func RealMatrix(rows, cols int) Type {
	return Type{Kind: KindRealMatrix, Rows: rows, Cols: cols}
}
func ComplexMatrix(rows, cols int) Type {
	return Type{Kind: KindComplexMatrix, Rows: rows, Cols: cols}
}
func Unitary(dim int) Type {
	return Type{Kind: KindUnitary, Rows: dim, Cols: dim}
}

// AsAssignable returns a copy of t with the assignable flag set, used
// when declaring Variables (which are always storage, i.e. lvalues).
func (t Type) AsAssignable() Type {
	t.Assignable = true
	return t
}

// AsConst returns a copy of t with the assignable flag cleared.
func (t Type) AsConst() Type {
	t.Assignable = false
	return t
}

// IsMatrix reports whether t is one of the three matrix-shaped kinds.
func (t Type) IsMatrix() bool {
	switch t.Kind {
	case KindRealMatrix, KindComplexMatrix, KindUnitary:
		return true
	default:
		return false
	}
}

// SizePolymorphic reports whether a matrix type accepts any dimensions
// (encoded as 0 rows/cols).
func (t Type) SizePolymorphic() bool {
	return t.IsMatrix() && t.Rows == 0 && t.Cols == 0
}

// Equal is structural type equality: same kind, same declared dimensions.
// The assignable flag is NOT part of equality -- it is a usage-site
// property, not part of a value's intrinsic type identity, which is why
// a VariableRef promotes into a plain constant-shaped type.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.IsMatrix() {
		return t.Rows == o.Rows && t.Cols == o.Cols
	}
	return true
}

func (t Type) String() string {
	switch t.Kind {
	case KindRealMatrix, KindComplexMatrix, KindUnitary:
		if t.Rows == 0 && t.Cols == 0 {
			return fmt.Sprintf("%s[*,*]", t.Kind)
		}
		return fmt.Sprintf("%s[%d,%d]", t.Kind, t.Rows, t.Cols)
	default:
		return t.Kind.String()
	}
}

// FromSpec decodes a compact type-spec string into an ordered list of
// Types: b=bool i=int r=real c=complex a=axis s=string j=json m=RMatrix
// n=CMatrix u=Unitary Q=Qubit B=Bit. Uppercase Q/B carry the assignable
// flag on (they always name storage); an unrecognized character is a
// programmer error in a builtin registration table, so FromSpec panics
// rather than returning an error.
func FromSpec(spec string) []Type {
	out := make([]Type, 0, len(spec))
	for _, r := range spec {
		switch r {
		case 'b':
			out = append(out, Bool())
		case 'i':
			out = append(out, Int())
		case 'r':
			out = append(out, Real())
		case 'c':
			out = append(out, Complex_())
		case 'a':
			out = append(out, Axis_())
		case 's':
			out = append(out, String())
		case 'j':
			out = append(out, Json())
		case 'm':
			out = append(out, RealMatrix(0, 0))
		case 'n':
			out = append(out, ComplexMatrix(0, 0))
		case 'u':
			out = append(out, Unitary(0))
		case 'Q':
			out = append(out, Qubit())
		case 'B':
			out = append(out, Bit())
		default:
			panic(fmt.Sprintf("types: unrecognized type-spec character %q", r))
		}
	}
	return out
}
