package tree

import "testing"

// leaf is the minimal Node[T] implementation used to exercise the
// container types without pulling in ast or semantic.
type leaf struct{ v int }

func (l leaf) Clone() leaf          { return leaf{v: l.v} }
func (l leaf) Equal(other leaf) bool { return l.v == other.v }

func TestOne(t *testing.T) {
	var o One[leaf]
	if !o.Empty() {
		t.Fatalf("zero-value One should be empty")
	}
	if o.CheckComplete() == nil {
		t.Fatalf("CheckComplete should fail on an empty One")
	}
	o.Set(leaf{v: 1})
	if o.Empty() {
		t.Fatalf("One should not be empty after Set")
	}
	if o.Get().v != 1 {
		t.Fatalf("Get: got %v", o.Get())
	}
	clone := o.Clone()
	if !o.Equal(clone) {
		t.Fatalf("clone should be equal to original")
	}
}

func TestOneGetPanicsWhenEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic calling Get on an empty One")
		}
	}()
	var o One[leaf]
	o.Get()
}

func TestMaybe(t *testing.T) {
	var m Maybe[leaf]
	if m.Present() {
		t.Fatalf("zero-value Maybe should not be present")
	}
	if _, ok := m.Get(); ok {
		t.Fatalf("Get should report false when absent")
	}
	m.Set(leaf{v: 2})
	if v, ok := m.Get(); !ok || v.v != 2 {
		t.Fatalf("Get after Set: got %v, %v", v, ok)
	}
	m.Clear()
	if m.Present() {
		t.Fatalf("Present should be false after Clear")
	}
}

func TestAny(t *testing.T) {
	var a Any[leaf]
	if a.Len() != 0 {
		t.Fatalf("zero-value Any should be empty")
	}
	a.Add(leaf{v: 1})
	a.Add(leaf{v: 2})
	if a.Len() != 2 || a.At(1).v != 2 {
		t.Fatalf("Add/At: got %v", a.Items())
	}
	clone := a.Clone()
	if !a.Equal(clone) {
		t.Fatalf("clone should equal original")
	}
	clone.Add(leaf{v: 3})
	if a.Equal(clone) {
		t.Fatalf("mutating clone should not affect original's equality")
	}
}

func TestMany(t *testing.T) {
	m := NewMany(leaf{v: 1})
	if err := m.CheckComplete(); err != nil {
		t.Fatalf("CheckComplete should pass with one element: %v", err)
	}
	var empty Many[leaf]
	if empty.CheckComplete() == nil {
		t.Fatalf("CheckComplete should fail on an empty Many")
	}
	m.Add(leaf{v: 2})
	if m.Len() != 2 {
		t.Fatalf("Add: got len %d", m.Len())
	}
}

func TestLink(t *testing.T) {
	l := NewUnresolvedLink[leaf]("target-id")
	if l.Resolved() {
		t.Fatalf("unresolved link should report Resolved() == false")
	}
	if l.DeferredID() != "target-id" {
		t.Fatalf("DeferredID: got %q", l.DeferredID())
	}
	target := &leaf{v: 42}
	l.Resolve(target)
	if !l.Resolved() {
		t.Fatalf("link should be resolved after Resolve")
	}
	if l.Get() != target {
		t.Fatalf("Get should return the resolved target")
	}
}

func TestLinkGetPanicsWhenUnresolved(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic calling Get on an unresolved Link")
		}
	}()
	l := NewUnresolvedLink[leaf]("x")
	l.Get()
}

func TestOptLink(t *testing.T) {
	var absent OptLink[leaf]
	if absent.Present() {
		t.Fatalf("zero-value OptLink should not be present")
	}
	target := &leaf{v: 7}
	present := NewOptLink(target)
	if !present.Present() {
		t.Fatalf("NewOptLink should be present")
	}
	if !present.Resolved() || present.Get() != target {
		t.Fatalf("NewOptLink should wrap an already-resolved Link")
	}
}
