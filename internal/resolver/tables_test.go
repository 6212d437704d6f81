package resolver

import (
	"errors"
	"testing"

	"github.com/cqasm-lang/go-cqasm/internal/overload"
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

func TestInstructionTableResolve(t *testing.T) {
	it := NewInstructionTable(false)
	it.Add("h", "Q")

	inst, err := it.Resolve("h", []semantic.Value{semantic.QubitRef{Indices: []int{0}}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if inst.Name != "h" {
		t.Errorf("Name: got %q", inst.Name)
	}
}

func TestInstructionTableUnknownName(t *testing.T) {
	it := NewInstructionTable(false)
	it.Add("h", "Q")

	_, err := it.Resolve("H", []semantic.Value{semantic.QubitRef{Indices: []int{0}}})
	var nameErr *overload.NameResolutionError
	if !errors.As(err, &nameErr) {
		t.Fatalf("case-sensitive table should reject %q, got %v", "H", err)
	}
}

func TestInstructionTableCaseInsensitive(t *testing.T) {
	it := NewInstructionTable(true)
	it.Add("H", "Q")

	if _, err := it.Resolve("h", []semantic.Value{semantic.QubitRef{Indices: []int{0}}}); err != nil {
		t.Fatalf("case-insensitive table should resolve %q against %q: %v", "h", "H", err)
	}
}

func TestFunctionTableCallInvokesImplementation(t *testing.T) {
	ft := NewFunctionTable(false)
	ft.Add("double", "i", types.Int(), func(args []semantic.Value) (semantic.Value, error) {
		return semantic.ConstInt{Value: 2 * args[0].(semantic.ConstInt).Value}, nil
	})

	v, err := ft.Call("double", []semantic.Value{semantic.ConstInt{Value: 21}})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := v.(semantic.ConstInt).Value; got != 42 {
		t.Errorf("Call result: got %d, want 42", got)
	}
}

func TestErrorModelTableResolve(t *testing.T) {
	emt := NewErrorModelTable()
	emt.Add("depolarizing", "r")

	em, err := emt.Resolve("depolarizing", []semantic.Value{semantic.ConstReal{Value: 0.1}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if em.Name != "depolarizing" {
		t.Errorf("Name: got %q", em.Name)
	}
}
