// Package types implements the cQASM primitive value kinds, the Type
// variant describing them (with its assignable flag and the promotion
// lattice built on top in package semantic), and the compact type-spec
// mini-language used to describe parameter lists tersely in the builtin
// tables: a family of small, independently testable value kinds plus a
// closed Type sum type.
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Axis is one of the three Pauli axes used by rotation gates and the like.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// AxisFromName parses "x"/"y"/"z" (case-insensitive) into an Axis.
func AxisFromName(name string) (Axis, bool) {
	switch name {
	case "x", "X":
		return AxisX, true
	case "y", "Y":
		return AxisY, true
	case "z", "Z":
		return AxisZ, true
	default:
		return 0, false
	}
}

// Complex is a pair of IEEE-754 doubles, kept distinct from Go's builtin
// complex128 so the rest of the analyzer only ever sees this one spelling.
type Complex struct {
	Re, Im float64
}

func (c Complex) Add(o Complex) Complex { return Complex{c.Re + o.Re, c.Im + o.Im} }
func (c Complex) Sub(o Complex) Complex { return Complex{c.Re - o.Re, c.Im - o.Im} }
func (c Complex) Mul(o Complex) Complex {
	return Complex{c.Re*o.Re - c.Im*o.Im, c.Re*o.Im + c.Im*o.Re}
}
func (c Complex) Div(o Complex) (Complex, bool) {
	denom := o.Re*o.Re + o.Im*o.Im
	if denom == 0 {
		return Complex{}, false
	}
	return Complex{
		Re: (c.Re*o.Re + c.Im*o.Im) / denom,
		Im: (c.Im*o.Re - c.Re*o.Im) / denom,
	}, true
}
func (c Complex) Conj() Complex   { return Complex{c.Re, -c.Im} }
func (c Complex) Norm() float64   { return c.Re*c.Re + c.Im*c.Im }
func (c Complex) Abs() float64    { return math.Hypot(c.Re, c.Im) }
func (c Complex) Arg() float64    { return math.Atan2(c.Im, c.Re) }
func (c Complex) Equal(o Complex) bool {
	return c.Re == o.Re && c.Im == o.Im
}
func (c Complex) String() string {
	if c.Im == 0 {
		return fmt.Sprintf("%g", c.Re)
	}
	if c.Im < 0 {
		return fmt.Sprintf("%g%gi", c.Re, c.Im)
	}
	return fmt.Sprintf("%g+%gi", c.Re, c.Im)
}

// ComplexPolar builds a Complex from magnitude and angle.
func ComplexPolar(r, theta float64) Complex {
	return Complex{Re: r * math.Cos(theta), Im: r * math.Sin(theta)}
}

// Version is a non-empty, major-first ordered sequence of integers, e.g.
// "3.0" -> {3, 0} or "1.2" -> {1, 2}.
type Version []int

func NewVersion(components ...int) Version {
	if len(components) == 0 {
		panic("types: Version must have at least one component")
	}
	return Version(components)
}

// Compare returns -1, 0 or 1 comparing v to other lexicographically,
// treating a missing trailing component as 0 (so "1" == "1.0").
func (v Version) Compare(other Version) int {
	n := len(v)
	if len(other) > n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v) {
			a = v[i]
		}
		if i < len(other) {
			b = other[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (v Version) LessEq(other Version) bool { return v.Compare(other) <= 0 }

// ParseVersion parses a dot-separated version string such as "1.2" or
// "3.0" into a Version. Used both for an Analyzer's configured api_version
// and for a program's declared version header.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	out := make(Version, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("types: invalid version component %q in %q", p, s)
		}
		if n < 0 {
			return nil, fmt.Errorf("types: negative version component %d in %q", n, s)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("types: empty version string")
	}
	return out, nil
}

func (v Version) String() string {
	s := ""
	for i, c := range v {
		if i > 0 {
			s += "."
		}
		s += fmt.Sprintf("%d", c)
	}
	return s
}

// RMatrix is a rectangular, row-major matrix of real numbers.
type RMatrix struct {
	Rows, Cols int
	Data       []float64 // row-major, len == Rows*Cols
}

func NewRMatrix(rows [][]float64) (RMatrix, error) {
	if len(rows) == 0 {
		return RMatrix{}, fmt.Errorf("types: matrix literal has no rows")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			return RMatrix{}, fmt.Errorf("types: matrix rows have unequal length (%d vs %d)", len(row), cols)
		}
		data = append(data, row...)
	}
	return RMatrix{Rows: len(rows), Cols: cols, Data: data}, nil
}

func (m RMatrix) At(r, c int) float64 { return m.Data[r*m.Cols+c] }

func (m RMatrix) Equal(o RMatrix) bool {
	if m.Rows != o.Rows || m.Cols != o.Cols {
		return false
	}
	for i := range m.Data {
		if m.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

// CMatrix is a rectangular, row-major matrix of complex numbers.
type CMatrix struct {
	Rows, Cols int
	Data       []Complex
}

func NewCMatrix(rows [][]Complex) (CMatrix, error) {
	if len(rows) == 0 {
		return CMatrix{}, fmt.Errorf("types: matrix literal has no rows")
	}
	cols := len(rows[0])
	data := make([]Complex, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			return CMatrix{}, fmt.Errorf("types: matrix rows have unequal length (%d vs %d)", len(row), cols)
		}
		data = append(data, row...)
	}
	return CMatrix{Rows: len(rows), Cols: cols, Data: data}, nil
}

func (m CMatrix) At(r, c int) Complex { return m.Data[r*m.Cols+c] }

func (m CMatrix) Equal(o CMatrix) bool {
	if m.Rows != o.Rows || m.Cols != o.Cols {
		return false
	}
	for i := range m.Data {
		if !m.Data[i].Equal(o.Data[i]) {
			return false
		}
	}
	return true
}

// IsPowerOfTwo reports whether n is a positive power of two, used when
// checking a Unitary operand's dimension.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// FrobeniusDistanceFromUnitary computes ||M*M^H - I||_F for a square
// complex matrix, used to check unitarity within tolerance.
func FrobeniusDistanceFromUnitary(m CMatrix) float64 {
	n := m.Rows
	sumSq := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var acc Complex
			for k := 0; k < n; k++ {
				acc = acc.Add(m.At(i, k).Mul(m.At(j, k).Conj()))
			}
			expected := 0.0
			if i == j {
				expected = 1.0
			}
			d := acc.Sub(Complex{Re: expected})
			sumSq += d.Norm()
		}
	}
	return math.Sqrt(sumSq)
}

// UnitaryTolerance is the Frobenius-norm tolerance a Unitary operand must
// fall within to be accepted.
const UnitaryTolerance = 1e-6
