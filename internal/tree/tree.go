// Package tree implements the generic ownership containers shared by the
// AST and semantic tree: One, Maybe, Any, Many, Link and OptLink. Both
// trees are built from the same few container shapes, following the
// teacher's habit (internal/ast, internal/semantic) of factoring shared
// node plumbing into one small package that every node type embeds or
// wraps rather than re-implementing.
package tree

import "fmt"

// Node is implemented by every payload type storable in a substrate
// container. Equal must ignore any attached source-location annotation;
// Clone must produce a fully independent deep copy.
type Node[T any] interface {
	Clone() T
	Equal(other T) bool
}

// One owns exactly one child node. It starts out empty during bottom-up
// construction and must be filled in before CheckComplete passes.
type One[T Node[T]] struct {
	value *T
}

// NewOne wraps a value in a completed One.
func NewOne[T Node[T]](v T) One[T] {
	return One[T]{value: &v}
}

// Empty reports whether the container has not yet been assigned a value.
func (o One[T]) Empty() bool { return o.value == nil }

// Get returns the contained value. It panics if the container is empty;
// callers must check CheckComplete (or Empty) first, exactly as the
// teacher's optional-field accessors assume a prior nil check.
func (o One[T]) Get() T {
	if o.value == nil {
		panic("tree: One.Get called on an empty container")
	}
	return *o.value
}

// Set assigns the contained value, completing the container.
func (o *One[T]) Set(v T) { o.value = &v }

// CheckComplete returns an error if the container was never filled in.
func (o One[T]) CheckComplete() error {
	if o.value == nil {
		return fmt.Errorf("tree: incomplete One<%T>", *new(T))
	}
	return nil
}

// Clone deep-copies the contained value, if any.
func (o One[T]) Clone() One[T] {
	if o.value == nil {
		return One[T]{}
	}
	v := (*o.value).Clone()
	return One[T]{value: &v}
}

// Copy shallow-copies the container: a fresh backing pointer holding the
// same value, without calling Clone() on it. Distinct from Clone, which
// recurses into the payload; Copy is for a caller that wants to replace
// its own container without disturbing a value shared elsewhere.
func (o One[T]) Copy() One[T] {
	if o.value == nil {
		return One[T]{}
	}
	v := *o.value
	return One[T]{value: &v}
}

// Equal compares contained values structurally, ignoring annotations.
func (o One[T]) Equal(other One[T]) bool {
	if o.value == nil || other.value == nil {
		return o.value == nil && other.value == nil
	}
	return (*o.value).Equal(*other.value)
}

// Maybe owns zero or one child node.
type Maybe[T Node[T]] struct {
	value *T
}

// NewMaybe wraps a present value.
func NewMaybe[T Node[T]](v T) Maybe[T] { return Maybe[T]{value: &v} }

// Present reports whether a value is held.
func (m Maybe[T]) Present() bool { return m.value != nil }

// Get returns the contained value and whether it was present.
func (m Maybe[T]) Get() (T, bool) {
	if m.value == nil {
		var zero T
		return zero, false
	}
	return *m.value, true
}

// Set assigns a value.
func (m *Maybe[T]) Set(v T) { m.value = &v }

// Clear empties the container.
func (m *Maybe[T]) Clear() { m.value = nil }

// Clone deep-copies the contained value, if any.
func (m Maybe[T]) Clone() Maybe[T] {
	if m.value == nil {
		return Maybe[T]{}
	}
	v := (*m.value).Clone()
	return Maybe[T]{value: &v}
}

// Copy shallow-copies the container; see One.Copy for the Clone/Copy
// distinction.
func (m Maybe[T]) Copy() Maybe[T] {
	if m.value == nil {
		return Maybe[T]{}
	}
	v := *m.value
	return Maybe[T]{value: &v}
}

// Equal compares contained values structurally, ignoring annotations.
func (m Maybe[T]) Equal(other Maybe[T]) bool {
	if m.value == nil || other.value == nil {
		return m.value == nil && other.value == nil
	}
	return (*m.value).Equal(*other.value)
}

// Any owns an ordered sequence of zero or more child nodes.
type Any[T Node[T]] struct {
	items []T
}

// NewAny builds an Any from a slice, taking ownership of it.
func NewAny[T Node[T]](items ...T) Any[T] { return Any[T]{items: items} }

// Len returns the number of items.
func (a Any[T]) Len() int { return len(a.items) }

// At returns the item at index i.
func (a Any[T]) At(i int) T { return a.items[i] }

// Items returns the underlying slice for iteration; callers must not
// mutate it in place.
func (a Any[T]) Items() []T { return a.items }

// Add appends an item.
func (a *Any[T]) Add(v T) { a.items = append(a.items, v) }

// Clone deep-copies every item.
func (a Any[T]) Clone() Any[T] {
	out := make([]T, len(a.items))
	for i, v := range a.items {
		out[i] = v.Clone()
	}
	return Any[T]{items: out}
}

// Copy shallow-copies the container: a fresh backing slice holding the
// same items, without calling Clone() on any of them.
func (a Any[T]) Copy() Any[T] {
	out := make([]T, len(a.items))
	copy(out, a.items)
	return Any[T]{items: out}
}

// Equal compares item-by-item, ignoring annotations.
func (a Any[T]) Equal(other Any[T]) bool {
	if len(a.items) != len(other.items) {
		return false
	}
	for i := range a.items {
		if !a.items[i].Equal(other.items[i]) {
			return false
		}
	}
	return true
}

// Many owns an ordered sequence of one or more child nodes.
type Many[T Node[T]] struct {
	items []T
}

// NewMany builds a Many from a non-empty slice.
func NewMany[T Node[T]](items ...T) Many[T] { return Many[T]{items: items} }

// Len returns the number of items.
func (m Many[T]) Len() int { return len(m.items) }

// At returns the item at index i.
func (m Many[T]) At(i int) T { return m.items[i] }

// Items returns the underlying slice for iteration.
func (m Many[T]) Items() []T { return m.items }

// Add appends an item.
func (m *Many[T]) Add(v T) { m.items = append(m.items, v) }

// CheckComplete fails if the container is still empty.
func (m Many[T]) CheckComplete() error {
	if len(m.items) == 0 {
		return fmt.Errorf("tree: empty Many<%T>, at least one element required", *new(T))
	}
	return nil
}

// Clone deep-copies every item.
func (m Many[T]) Clone() Many[T] {
	out := make([]T, len(m.items))
	for i, v := range m.items {
		out[i] = v.Clone()
	}
	return Many[T]{items: out}
}

// Copy shallow-copies the container: a fresh backing slice holding the
// same items, without calling Clone() on any of them.
func (m Many[T]) Copy() Many[T] {
	out := make([]T, len(m.items))
	copy(out, m.items)
	return Many[T]{items: out}
}

// Equal compares item-by-item, ignoring annotations.
func (m Many[T]) Equal(other Many[T]) bool {
	if len(m.items) != len(other.items) {
		return false
	}
	for i := range m.items {
		if !m.items[i].Equal(other.items[i]) {
			return false
		}
	}
	return true
}

// Link is a non-owning reference to a node owned elsewhere in the same
// tree (e.g. a GotoInstruction's target Subcircuit). It may start out
// unresolved, carrying only the deferred identifier used to look it up
// once the whole tree has been built.
type Link[T any] struct {
	target     *T
	deferredID string
}

// NewUnresolvedLink creates a Link that still needs to be resolved against
// an identifier (e.g. a subcircuit name seen before its declaration).
func NewUnresolvedLink[T any](id string) Link[T] {
	return Link[T]{deferredID: id}
}

// NewResolvedLink creates a Link that already points at its target.
func NewResolvedLink[T any](target *T) Link[T] {
	return Link[T]{target: target}
}

// Resolved reports whether the link has been bound to a concrete target.
func (l Link[T]) Resolved() bool { return l.target != nil }

// DeferredID returns the identifier used to resolve this link, valid only
// while Resolved() is false.
func (l Link[T]) DeferredID() string { return l.deferredID }

// Get returns the linked target. Panics if unresolved.
func (l Link[T]) Get() *T {
	if l.target == nil {
		panic(fmt.Sprintf("tree: dangling Link<%T> (unresolved id %q)", *new(T), l.deferredID))
	}
	return l.target
}

// Resolve binds the link to a concrete target.
func (l *Link[T]) Resolve(target *T) {
	l.target = target
	l.deferredID = ""
}

// OptLink is a Link that may legitimately have no target at all (as
// opposed to merely being unresolved so far).
type OptLink[T any] struct {
	Link[T]
	present bool
}

// NewOptLink wraps a present, resolved optional link.
func NewOptLink[T any](target *T) OptLink[T] {
	return OptLink[T]{Link: NewResolvedLink(target), present: true}
}

// Present reports whether this optional link carries anything at all.
func (l OptLink[T]) Present() bool { return l.present }

// Visitor is called once per node Walk encounters, in declaration
// order. Returning false skips that node's children without stopping
// the walk overall -- the same contract as go/ast's Visitor.
type Visitor interface {
	Visit(node any) bool
}

// Visitable is implemented by a node type that knows its own child
// fields. Walk uses it for the double-dispatch half of visit(visitor):
// the node decides how to walk itself, the Visitor decides what to do
// with what it finds; VisitChildren implementations call Walk on each
// child in the order the fields are declared.
type Visitable interface {
	VisitChildren(v Visitor)
}

// Walk visits root and, if the Visitor asked to continue, descends into
// its children via VisitChildren. A node with no VisitChildren method
// (a leaf, e.g. a scalar constant) is simply visited with no descent.
func Walk(v Visitor, root any) {
	if root == nil || !v.Visit(root) {
		return
	}
	if vis, ok := root.(Visitable); ok {
		vis.VisitChildren(v)
	}
}

// RecursiveVisitor adapts a plain callback into a Visitor that always
// descends -- the shape most reachability and collection passes want,
// as opposed to a Visitor that prunes some subtrees.
type RecursiveVisitor struct {
	Func func(node any)
}

func (r RecursiveVisitor) Visit(node any) bool {
	r.Func(node)
	return true
}

// FindReachable walks root with a RecursiveVisitor and returns the set
// of nodes for which match succeeds, keyed by whatever identity match
// extracts (a pointer, for the usual case of collecting every distinct
// *Variable or *Subcircuit a tree can reach).
func FindReachable[T comparable](root any, match func(node any) (T, bool)) map[T]bool {
	found := make(map[T]bool)
	Walk(RecursiveVisitor{Func: func(n any) {
		if key, ok := match(n); ok {
			found[key] = true
		}
	}}, root)
	return found
}
