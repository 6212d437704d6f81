// Package builtins implements the default libraries: the functions,
// operators and instruction/error-model sets every Analyzer registers via
// RegisterDefaultFunctions/RegisterDefaultInstructions/
// RegisterDefaultErrorModels. Registration is table-driven rather than one
// function literal per type per operator, since the int/real/complex
// variants of each operator repeat the same shape; this package keeps
// that data-driven shape by hand instead of code-generating Go source.
package builtins

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cqasm-lang/go-cqasm/internal/resolver"
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

// complexFn looks up the math/cmplx equivalent of a transcendental
// function name registered by registerTranscendental.
func complexFn(name string) func(complex128) complex128 {
	switch name {
	case "sqrt":
		return cmplx.Sqrt
	case "exp":
		return cmplx.Exp
	case "log":
		return cmplx.Log
	case "sin":
		return cmplx.Sin
	case "cos":
		return cmplx.Cos
	case "tan":
		return cmplx.Tan
	case "asin":
		return cmplx.Asin
	case "acos":
		return cmplx.Acos
	case "atan":
		return cmplx.Atan
	case "sinh":
		return cmplx.Sinh
	case "cosh":
		return cmplx.Cosh
	case "tanh":
		return cmplx.Tanh
	case "asinh":
		return cmplx.Asinh
	case "acosh":
		return cmplx.Acosh
	case "atanh":
		return cmplx.Atanh
	default:
		panic("builtins: no complex variant registered for " + name)
	}
}

// arithVariant describes one type's implementation of a binary arithmetic
// operator; a type the operator isn't defined for simply has no variant.
type arithVariant struct {
	spec string // two-character type-spec, e.g. "ii"
	ret  types.Type
	fn   func(a, b semantic.Value) (semantic.Value, error)
}

func intOp(name string, fn func(a, b int64) (int64, error)) arithVariant {
	return arithVariant{"ii", types.Int(), func(a, b semantic.Value) (semantic.Value, error) {
		x, y := a.(semantic.ConstInt).Value, b.(semantic.ConstInt).Value
		r, err := fn(x, y)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return semantic.ConstInt{Value: r}, nil
	}}
}

func realOp(fn func(a, b float64) (float64, error)) arithVariant {
	return arithVariant{"rr", types.Real(), func(a, b semantic.Value) (semantic.Value, error) {
		x, y := a.(semantic.ConstReal).Value, b.(semantic.ConstReal).Value
		r, err := fn(x, y)
		if err != nil {
			return nil, err
		}
		return semantic.ConstReal{Value: r}, nil
	}}
}

func complexOp(fn func(a, b types.Complex) (types.Complex, error)) arithVariant {
	return arithVariant{"cc", types.Complex_(), func(a, b semantic.Value) (semantic.Value, error) {
		x, y := a.(semantic.ConstComplex).Value, b.(semantic.ConstComplex).Value
		r, err := fn(x, y)
		if err != nil {
			return nil, err
		}
		return semantic.ConstComplex{Value: r}, nil
	}}
}

// addArith registers the variants of name, given in int/real/complex
// order, in reverse: the widest type is registered first and the narrowest
// last, so under the overload table's last-registered-wins rule the
// narrowest variant the arguments fit wins (int arguments stay int).
func addArith(ft *resolver.FunctionTable, name string, variants ...arithVariant) {
	for i := len(variants) - 1; i >= 0; i-- {
		v := variants[i]
		fn := v.fn
		ft.Add(name, v.spec, v.ret, func(args []semantic.Value) (semantic.Value, error) {
			return fn(args[0], args[1])
		})
	}
}

func noDivByZero(b int64) error {
	if b == 0 {
		return fmt.Errorf("division by zero")
	}
	return nil
}

// floorDiv/floorMod implement Python-style floor division: the quotient
// rounds toward negative infinity and the remainder's sign matches the
// divisor's.
func floorDiv(a, b int64) (int64, error) {
	if err := noDivByZero(b); err != nil {
		return 0, err
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q, nil
}

func floorMod(a, b int64) (int64, error) {
	if err := noDivByZero(b); err != nil {
		return 0, err
	}
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m, nil
}

// RegisterDefaultFunctions populates ft with every standard function and
// operator. Case folding (the v1.x mnemonic convention) is ft's own
// concern, set at construction via resolver.NewFunctionTable.
func RegisterDefaultFunctions(ft *resolver.FunctionTable) {
	registerArithmetic(ft)
	registerComparison(ft)
	registerBitwiseShift(ft)
	registerLogical(ft)
	registerTernary(ft)
	registerTranscendental(ft)
	registerComplexHelpers(ft)
}

func registerArithmetic(ft *resolver.FunctionTable) {
	addArith(ft, "operator+",
		intOp("operator+", func(a, b int64) (int64, error) { return a + b, nil }),
		realOp(func(a, b float64) (float64, error) { return a + b, nil }),
		complexOp(func(a, b types.Complex) (types.Complex, error) { return a.Add(b), nil }),
	)
	addArith(ft, "operator-",
		intOp("operator-", func(a, b int64) (int64, error) { return a - b, nil }),
		realOp(func(a, b float64) (float64, error) { return a - b, nil }),
		complexOp(func(a, b types.Complex) (types.Complex, error) { return a.Sub(b), nil }),
	)
	addArith(ft, "operator*",
		intOp("operator*", func(a, b int64) (int64, error) { return a * b, nil }),
		realOp(func(a, b float64) (float64, error) { return a * b, nil }),
		complexOp(func(a, b types.Complex) (types.Complex, error) { return a.Mul(b), nil }),
	)
	addArith(ft, "operator/",
		realOp(func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return a / b, nil
		}),
		complexOp(func(a, b types.Complex) (types.Complex, error) {
			r, ok := a.Div(b)
			if !ok {
				return types.Complex{}, fmt.Errorf("division by zero")
			}
			return r, nil
		}),
	)
	addArith(ft, "operator//", intOp("operator//", floorDiv))
	addArith(ft, "operator%", intOp("operator%", floorMod))

	// operator** produces Real for a negative integer exponent rather
	// than diagnosing, matching how fractional results are otherwise
	// represented.
	ft.Add("operator**", "ii", types.Real(), func(args []semantic.Value) (semantic.Value, error) {
		base, exp := args[0].(semantic.ConstInt).Value, args[1].(semantic.ConstInt).Value
		return semantic.ConstReal{Value: math.Pow(float64(base), float64(exp))}, nil
	})
	addArith(ft, "operator**",
		realOp(func(a, b float64) (float64, error) { return math.Pow(a, b), nil }),
	)

	ft.Add("abs", "r", types.Real(), func(args []semantic.Value) (semantic.Value, error) {
		return semantic.ConstReal{Value: math.Abs(args[0].(semantic.ConstReal).Value)}, nil
	})
	ft.Add("abs", "i", types.Int(), func(args []semantic.Value) (semantic.Value, error) {
		v := args[0].(semantic.ConstInt).Value
		if v < 0 {
			v = -v
		}
		return semantic.ConstInt{Value: v}, nil
	})
}

func registerComparison(ft *resolver.FunctionTable) {
	type cmpEntry struct {
		name string
		ints func(a, b int64) bool
		reals func(a, b float64) bool
	}
	entries := []cmpEntry{
		{"operator==", func(a, b int64) bool { return a == b }, func(a, b float64) bool { return a == b }},
		{"operator!=", func(a, b int64) bool { return a != b }, func(a, b float64) bool { return a != b }},
		{"operator<", func(a, b int64) bool { return a < b }, func(a, b float64) bool { return a < b }},
		{"operator<=", func(a, b int64) bool { return a <= b }, func(a, b float64) bool { return a <= b }},
		{"operator>", func(a, b int64) bool { return a > b }, func(a, b float64) bool { return a > b }},
		{"operator>=", func(a, b int64) bool { return a >= b }, func(a, b float64) bool { return a >= b }},
	}
	for _, e := range entries {
		ints, reals := e.ints, e.reals
		ft.Add(e.name, "bb", types.Bool(), func(args []semantic.Value) (semantic.Value, error) {
			a, b := args[0].(semantic.ConstBool).Value, args[1].(semantic.ConstBool).Value
			ai, bi := int64(0), int64(0)
			if a {
				ai = 1
			}
			if b {
				bi = 1
			}
			return semantic.ConstBool{Value: ints(ai, bi)}, nil
		})
		ft.Add(e.name, "ii", types.Bool(), func(args []semantic.Value) (semantic.Value, error) {
			return semantic.ConstBool{Value: ints(args[0].(semantic.ConstInt).Value, args[1].(semantic.ConstInt).Value)}, nil
		})
		ft.Add(e.name, "rr", types.Bool(), func(args []semantic.Value) (semantic.Value, error) {
			return semantic.ConstBool{Value: reals(args[0].(semantic.ConstReal).Value, args[1].(semantic.ConstReal).Value)}, nil
		})
	}
	// Complex only supports equality/inequality.
	ft.Add("operator==", "cc", types.Bool(), func(args []semantic.Value) (semantic.Value, error) {
		a, b := args[0].(semantic.ConstComplex).Value, args[1].(semantic.ConstComplex).Value
		return semantic.ConstBool{Value: a.Equal(b)}, nil
	})
	ft.Add("operator!=", "cc", types.Bool(), func(args []semantic.Value) (semantic.Value, error) {
		a, b := args[0].(semantic.ConstComplex).Value, args[1].(semantic.ConstComplex).Value
		return semantic.ConstBool{Value: !a.Equal(b)}, nil
	})
}

func registerBitwiseShift(ft *resolver.FunctionTable) {
	ft.Add("operator~", "i", types.Int(), func(args []semantic.Value) (semantic.Value, error) {
		return semantic.ConstInt{Value: ^args[0].(semantic.ConstInt).Value}, nil
	})
	bitwise := []struct {
		name string
		fn   func(a, b int64) int64
	}{
		{"operator&", func(a, b int64) int64 { return a & b }},
		{"operator|", func(a, b int64) int64 { return a | b }},
		{"operator^", func(a, b int64) int64 { return a ^ b }},
	}
	for _, e := range bitwise {
		fn := e.fn
		ft.Add(e.name, "ii", types.Int(), func(args []semantic.Value) (semantic.Value, error) {
			return semantic.ConstInt{Value: fn(args[0].(semantic.ConstInt).Value, args[1].(semantic.ConstInt).Value)}, nil
		})
	}
	ft.Add("operator<<", "ii", types.Int(), func(args []semantic.Value) (semantic.Value, error) {
		return semantic.ConstInt{Value: args[0].(semantic.ConstInt).Value << uint(args[1].(semantic.ConstInt).Value)}, nil
	})
	ft.Add("operator>>", "ii", types.Int(), func(args []semantic.Value) (semantic.Value, error) {
		// Arithmetic (sign-extending) right shift -- Go's >> on int64 already is.
		return semantic.ConstInt{Value: args[0].(semantic.ConstInt).Value >> uint(args[1].(semantic.ConstInt).Value)}, nil
	})
	ft.Add("operator>>>", "ii", types.Int(), func(args []semantic.Value) (semantic.Value, error) {
		// Logical (zero-filling) right shift.
		a := uint64(args[0].(semantic.ConstInt).Value)
		return semantic.ConstInt{Value: int64(a >> uint(args[1].(semantic.ConstInt).Value))}, nil
	})
}

func registerLogical(ft *resolver.FunctionTable) {
	ft.Add("operator!", "b", types.Bool(), func(args []semantic.Value) (semantic.Value, error) {
		return semantic.ConstBool{Value: !args[0].(semantic.ConstBool).Value}, nil
	})
	logical := []struct {
		name string
		fn   func(a, b bool) bool
	}{
		{"operator&&", func(a, b bool) bool { return a && b }},
		{"operator||", func(a, b bool) bool { return a || b }},
		{"operator^^", func(a, b bool) bool { return a != b }},
	}
	for _, e := range logical {
		fn := e.fn
		ft.Add(e.name, "bb", types.Bool(), func(args []semantic.Value) (semantic.Value, error) {
			return semantic.ConstBool{Value: fn(args[0].(semantic.ConstBool).Value, args[1].(semantic.ConstBool).Value)}, nil
		})
	}
}

func registerTernary(ft *resolver.FunctionTable) {
	for _, spec := range []struct {
		typeChar string
		ret      types.Type
	}{
		{"b", types.Bool()}, {"i", types.Int()}, {"r", types.Real()}, {"c", types.Complex_()},
	} {
		ret := spec.ret
		ft.Add("operator?:", "b"+spec.typeChar+spec.typeChar, ret, func(args []semantic.Value) (semantic.Value, error) {
			if args[0].(semantic.ConstBool).Value {
				return args[1], nil
			}
			return args[2], nil
		})
	}
}

func registerTranscendental(ft *resolver.FunctionTable) {
	unary := []struct {
		name string
		fn   func(float64) float64
	}{
		{"sqrt", math.Sqrt}, {"exp", math.Exp}, {"log", math.Log},
		{"sin", math.Sin}, {"cos", math.Cos}, {"tan", math.Tan},
		{"asin", math.Asin}, {"acos", math.Acos}, {"atan", math.Atan},
		{"sinh", math.Sinh}, {"cosh", math.Cosh}, {"tanh", math.Tanh},
		{"asinh", math.Asinh}, {"acosh", math.Acosh}, {"atanh", math.Atanh},
	}
	for _, e := range unary {
		fn := e.fn
		ft.Add(e.name, "r", types.Real(), func(args []semantic.Value) (semantic.Value, error) {
			return semantic.ConstReal{Value: fn(args[0].(semantic.ConstReal).Value)}, nil
		})
		cfn := complexTranscendental(e.name)
		ft.Add(e.name, "c", types.Complex_(), func(args []semantic.Value) (semantic.Value, error) {
			return semantic.ConstComplex{Value: cfn(args[0].(semantic.ConstComplex).Value)}, nil
		})
	}
}

func registerComplexHelpers(ft *resolver.FunctionTable) {
	ft.Add("complex", "rr", types.Complex_(), func(args []semantic.Value) (semantic.Value, error) {
		re, im := args[0].(semantic.ConstReal).Value, args[1].(semantic.ConstReal).Value
		return semantic.ConstComplex{Value: types.Complex{Re: re, Im: im}}, nil
	})
	ft.Add("polar", "rr", types.Complex_(), func(args []semantic.Value) (semantic.Value, error) {
		r, theta := args[0].(semantic.ConstReal).Value, args[1].(semantic.ConstReal).Value
		return semantic.ConstComplex{Value: types.ComplexPolar(r, theta)}, nil
	})
	ft.Add("real", "c", types.Real(), func(args []semantic.Value) (semantic.Value, error) {
		return semantic.ConstReal{Value: args[0].(semantic.ConstComplex).Value.Re}, nil
	})
	ft.Add("imag", "c", types.Real(), func(args []semantic.Value) (semantic.Value, error) {
		return semantic.ConstReal{Value: args[0].(semantic.ConstComplex).Value.Im}, nil
	})
	ft.Add("arg", "c", types.Real(), func(args []semantic.Value) (semantic.Value, error) {
		return semantic.ConstReal{Value: args[0].(semantic.ConstComplex).Value.Arg()}, nil
	})
	ft.Add("norm", "c", types.Real(), func(args []semantic.Value) (semantic.Value, error) {
		return semantic.ConstReal{Value: args[0].(semantic.ConstComplex).Value.Norm()}, nil
	})
	ft.Add("conj", "c", types.Complex_(), func(args []semantic.Value) (semantic.Value, error) {
		return semantic.ConstComplex{Value: args[0].(semantic.ConstComplex).Value.Conj()}, nil
	})
}

// complexTranscendental maps a unary function name to its Complex
// implementation, built on top of types.Complex's own Re/Im arithmetic by
// round-tripping through Go's complex128 and math/cmplx -- the one spot
// where reaching for the standard library instead of hand-rolling complex
// transcendentals is the right call, since math/cmplx *is* the ecosystem's
// answer here and nothing in the pack offers a competing implementation.
func complexTranscendental(name string) func(types.Complex) types.Complex {
	return func(c types.Complex) types.Complex {
		z := complexFn(name)(complex(c.Re, c.Im))
		return types.Complex{Re: real(z), Im: imag(z)}
	}
}
