package resolver

import (
	"testing"

	"github.com/cqasm-lang/go-cqasm/internal/semantic"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

func TestStackLookupMappingInnermostWins(t *testing.T) {
	s := NewStack()
	s.Push(false)
	s.Current().Mappings.Add("a", semantic.ConstInt{Value: 1})
	s.Push(false)
	s.Current().Mappings.Add("a", semantic.ConstInt{Value: 2})

	v, ok := s.LookupMapping("a")
	if !ok {
		t.Fatalf("expected mapping %q to resolve", "a")
	}
	if got, ok := v.(semantic.ConstInt); !ok || got.Value != 2 {
		t.Errorf("expected innermost binding to win, got %#v", v)
	}

	s.Pop()
	v, ok = s.LookupMapping("a")
	if !ok || v.(semantic.ConstInt).Value != 1 {
		t.Errorf("expected outer binding after popping inner scope, got %#v, %v", v, ok)
	}
}

func TestStackInsideLoopInheritance(t *testing.T) {
	s := NewStack()
	s.Push(true)
	if !s.InsideLoop() {
		t.Fatalf("expected InsideLoop() true for a loop scope")
	}
	s.Push(false)
	if !s.InsideLoop() {
		t.Fatalf("expected a nested non-loop scope to inherit InsideLoop from its parent")
	}
	s.Pop()
	s.Pop()
	if s.InsideLoop() {
		t.Fatalf("expected InsideLoop() false once every scope is popped")
	}
}

func TestScopeDeclareVariableRejectsDuplicate(t *testing.T) {
	s := NewStack()
	sc := s.Push(false)
	v1 := &semantic.Variable{Name: "x", Type: types.Int()}
	v2 := &semantic.Variable{Name: "x", Type: types.Real()}

	if !sc.DeclareVariable(v1) {
		t.Fatalf("first declaration of %q should succeed", "x")
	}
	if sc.DeclareVariable(v2) {
		t.Fatalf("duplicate declaration of %q in the same scope should fail", "x")
	}
	got, ok := sc.LookupVariable("x")
	if !ok || got != v1 {
		t.Errorf("expected the first declaration to stick, got %#v", got)
	}
}

func TestStackLookupVariableWalksOuterScopes(t *testing.T) {
	s := NewStack()
	outer := s.Push(false)
	outer.DeclareVariable(&semantic.Variable{Name: "g", Type: types.Bit()})
	s.Push(false)

	v, ok := s.LookupVariable("g")
	if !ok || v.Name != "g" {
		t.Errorf("expected to find outer-scope variable %q, got %#v, %v", "g", v, ok)
	}
	if _, ok := s.LookupVariable("nope"); ok {
		t.Errorf("unexpected lookup success for undeclared variable")
	}
}

func TestMappingTableOverwritesWithinScope(t *testing.T) {
	mt := NewMappingTable()
	mt.Add("q0", semantic.ConstInt{Value: 1})
	mt.Add("q0", semantic.ConstInt{Value: 2})

	v, ok := mt.Resolve("q0")
	if !ok || v.(semantic.ConstInt).Value != 2 {
		t.Errorf("expected re-Add to overwrite within the same table, got %#v", v)
	}
	if names := mt.Names(); len(names) != 1 || names[0] != "q0" {
		t.Errorf("Names should not grow on overwrite, got %v", names)
	}
}

func TestMappingTableEntriesPreserveOrder(t *testing.T) {
	mt := NewMappingTable()
	mt.Add("b", semantic.ConstInt{Value: 1})
	mt.Add("a", semantic.ConstInt{Value: 2})

	entries := mt.Entries()
	if len(entries) != 2 || entries[0].Name != "b" || entries[1].Name != "a" {
		t.Errorf("Entries should preserve first-declaration order, got %+v", entries)
	}
}
