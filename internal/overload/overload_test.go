package overload

import (
	"errors"
	"testing"

	"github.com/cqasm-lang/go-cqasm/internal/types"
)

// argVal is a minimal Typed implementation for exercising the resolver
// without depending on internal/semantic.
type argVal struct {
	t types.Type
}

func (v argVal) Type() types.Type { return v.t }

// exactPromote only "promotes" a value into a target of the identical kind,
// i.e. no int->real widening; enough to exercise overload selection.
func exactPromote(v argVal, target types.Type) (argVal, bool) {
	if v.t.Kind != target.Kind {
		return argVal{}, false
	}
	return v, true
}

func TestResolverPicksLastMatchingOverload(t *testing.T) {
	r := NewResolver[string](exactPromote)
	r.Add("general", []types.Type{types.Int()})
	r.Add("specific", []types.Type{types.Int()})

	tag, _, err := r.Resolve([]argVal{{t: types.Int()}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tag != "specific" {
		t.Errorf("expected the later-registered overload to win, got %q", tag)
	}
}

func TestResolverNoMatch(t *testing.T) {
	r := NewResolver[string](exactPromote)
	r.Add("intOnly", []types.Type{types.Int()})

	_, _, err := r.Resolve([]argVal{{t: types.Real()}})
	if err == nil {
		t.Fatalf("expected a ResolutionError")
	}
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Errorf("expected *ResolutionError, got %T", err)
	}
}

func TestResolverArityMismatch(t *testing.T) {
	r := NewResolver[string](exactPromote)
	r.Add("binary", []types.Type{types.Int(), types.Int()})

	if _, _, err := r.Resolve([]argVal{{t: types.Int()}}); err == nil {
		t.Fatalf("expected arity mismatch to fail resolution")
	}
}

func TestNameTableUnknownName(t *testing.T) {
	nt := NewNameTable[string](exactPromote)
	nt.Add("h", "H", []types.Type{types.Qubit()})

	_, _, err := nt.Resolve("x", []argVal{{t: types.Qubit()}})
	var nameErr *NameResolutionError
	if !errors.As(err, &nameErr) {
		t.Fatalf("expected *NameResolutionError for unregistered name, got %v", err)
	}
}

func TestNameTableResolvesRegisteredName(t *testing.T) {
	nt := NewNameTable[string](exactPromote)
	nt.Add("h", "H", []types.Type{types.Qubit()})

	tag, _, err := nt.Resolve("h", []argVal{{t: types.Qubit()}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tag != "H" {
		t.Errorf("tag: got %q", tag)
	}
}

func TestNameTablePreservesRegistrationOrder(t *testing.T) {
	nt := NewNameTable[string](exactPromote)
	nt.Add("z", "Z", []types.Type{types.Qubit()})
	nt.Add("a", "A", []types.Type{types.Qubit()})

	names := nt.Names()
	if len(names) != 2 || names[0] != "z" || names[1] != "a" {
		t.Errorf("Names: got %v, want [z a] in registration order", names)
	}
}

func TestResolverEmpty(t *testing.T) {
	r := NewResolver[string](exactPromote)
	if !r.Empty() {
		t.Fatalf("fresh resolver should be Empty")
	}
	r.Add("x", []types.Type{types.Int()})
	if r.Empty() {
		t.Fatalf("resolver with a registered overload should not be Empty")
	}
}
