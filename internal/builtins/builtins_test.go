package builtins

import (
	"testing"

	"github.com/cqasm-lang/go-cqasm/internal/resolver"
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
)

func TestRegisterDefaultFunctionsArithmeticAndFloorDivision(t *testing.T) {
	ft := resolver.NewFunctionTable(false)
	RegisterDefaultFunctions(ft)

	sum, err := ft.Call("operator+", []semantic.Value{semantic.ConstInt{Value: 2}, semantic.ConstInt{Value: 3}})
	if err != nil {
		t.Fatalf("operator+: %v", err)
	}
	if got := sum.(semantic.ConstInt).Value; got != 5 {
		t.Errorf("operator+: got %d, want 5", got)
	}

	div, err := ft.Call("operator//", []semantic.Value{semantic.ConstInt{Value: -7}, semantic.ConstInt{Value: 2}})
	if err != nil {
		t.Fatalf("operator//: %v", err)
	}
	if got := div.(semantic.ConstInt).Value; got != -4 {
		t.Errorf("floor division -7//2: got %d, want -4", got)
	}

	if _, err := ft.Call("operator/", []semantic.Value{semantic.ConstInt{Value: 1}, semantic.ConstInt{Value: 0}}); err == nil {
		t.Errorf("expected division by zero to fail")
	}
}

func TestRegisterDefaultFunctionsAbsPicksOverloadByType(t *testing.T) {
	ft := resolver.NewFunctionTable(false)
	RegisterDefaultFunctions(ft)

	v, err := ft.Call("abs", []semantic.Value{semantic.ConstInt{Value: -5}})
	if err != nil {
		t.Fatalf("abs(int): %v", err)
	}
	if got := v.(semantic.ConstInt).Value; got != 5 {
		t.Errorf("abs(-5): got %d, want 5", got)
	}

	v, err = ft.Call("abs", []semantic.Value{semantic.ConstReal{Value: -2.5}})
	if err != nil {
		t.Fatalf("abs(real): %v", err)
	}
	if got := v.(semantic.ConstReal).Value; got != 2.5 {
		t.Errorf("abs(-2.5): got %v, want 2.5", got)
	}
}

func TestRegisterDefaultInstructionsV1xIsCaseInsensitive(t *testing.T) {
	it := resolver.NewInstructionTable(true)
	RegisterDefaultInstructions(it, false)

	if _, err := it.Resolve("H", []semantic.Value{semantic.QubitRef{Indices: []int{0}}}); err != nil {
		t.Errorf("v1.x mnemonics should resolve case-insensitively: %v", err)
	}
	if _, err := it.Resolve("CNOT", []semantic.Value{
		semantic.QubitRef{Indices: []int{0}}, semantic.QubitRef{Indices: []int{1}},
	}); err != nil {
		t.Errorf("cnot: %v", err)
	}
}

func TestRegisterDefaultInstructionsV3xUsesCapitalizedNames(t *testing.T) {
	it := resolver.NewInstructionTable(false)
	RegisterDefaultInstructions(it, true)

	if _, err := it.Resolve("H", []semantic.Value{semantic.QubitRef{Indices: []int{0}}}); err != nil {
		t.Errorf("v3.x gate set should register %q: %v", "H", err)
	}
	if _, err := it.Resolve("h", []semantic.Value{semantic.QubitRef{Indices: []int{0}}}); err == nil {
		t.Errorf("v3.x table is case-sensitive, lowercase %q should not resolve", "h")
	}
}

func TestRegisterDefaultErrorModels(t *testing.T) {
	emt := resolver.NewErrorModelTable()
	RegisterDefaultErrorModels(emt)

	em, err := emt.Resolve("depolarizing_channel", []semantic.Value{semantic.ConstReal{Value: 0.01}})
	if err != nil {
		t.Fatalf("Resolve(1-arg overload): %v", err)
	}
	if em.Name != "depolarizing_channel" {
		t.Errorf("Name: got %q", em.Name)
	}

	if _, err := emt.Resolve("depolarizing_channel", []semantic.Value{
		semantic.ConstReal{Value: 1}, semantic.ConstReal{Value: 2}, semantic.ConstReal{Value: 3},
	}); err != nil {
		t.Errorf("Resolve(3-arg overload): %v", err)
	}
}
