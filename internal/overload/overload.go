// Package overload implements the generic name/overload resolution engine
// shared by functions, instructions and error models: a case-sensitive
// table of name -> overload list, resolved by iterating registrations in
// reverse so that later, more specific overloads win on ambiguity.
package overload

import (
	"fmt"

	"github.com/cqasm-lang/go-cqasm/internal/types"
)

// NameResolutionError is returned when no overload list is registered
// under the requested name at all.
type NameResolutionError struct {
	Name string
}

func (e *NameResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve name %q", e.Name)
}

// ResolutionError is returned when a name is known but no registered
// overload's parameter types admit the given argument list.
type ResolutionError struct {
	Name    string
	ArgTypes []types.Type
}

func (e *ResolutionError) Error() string {
	parts := "("
	for i, t := range e.ArgTypes {
		if i > 0 {
			parts += ", "
		}
		parts += t.String()
	}
	parts += ")"
	return fmt.Sprintf("failed to resolve overload for %s with argument pack %s", e.Name, parts)
}

// Typed is the one capability the resolver needs from the caller's value
// representation: its static type, used to build "no overload matched
// (int, real)"-shaped diagnostics. semantic.Value satisfies this directly.
type Typed interface {
	Type() types.Type
}

// Promoter is supplied by the caller and must coerce arg to target,
// returning (value, false) when no such coercion exists. V is whatever
// argument/value representation the caller's domain uses (e.g.
// semantic.Value); the resolver package itself is otherwise agnostic to it.
type Promoter[V Typed] func(arg V, target types.Type) (V, bool)

// entry is one possible overload for a name: a tag identifying which
// concrete implementation/descriptor it resolves to, plus its expected
// parameter types.
type entry[Tag any] struct {
	tag        Tag
	paramTypes []types.Type
}

// Resolver resolves overloads of a single name. Tag identifies which
// concrete overload matched (e.g. a function implementation, an
// instruction descriptor, or an error-model descriptor); V is the
// argument/value representation threaded through promotion.
type Resolver[Tag any, V Typed] struct {
	overloads []entry[Tag]
	promote   Promoter[V]
}

// NewResolver builds a Resolver using promote to test/coerce arguments
// against each candidate overload's declared parameter types.
func NewResolver[Tag any, V Typed](promote Promoter[V]) *Resolver[Tag, V] {
	return &Resolver[Tag, V]{promote: promote}
}

// Add registers a possible overload. Ambiguous overloads are silently
// resolved by using the last one added, so more specific overloads
// should always be added after more general ones.
func (r *Resolver[Tag, V]) Add(tag Tag, paramTypes []types.Type) {
	r.overloads = append(r.overloads, entry[Tag]{tag: tag, paramTypes: paramTypes})
}

// Resolve tries every registered overload in reverse insertion order and
// returns the tag and promoted arguments of the first one whose
// parameter types all admit the given args.
func (r *Resolver[Tag, V]) Resolve(args []V) (Tag, []V, error) {
	var zero Tag
	for i := len(r.overloads) - 1; i >= 0; i-- {
		ov := r.overloads[i]
		if len(ov.paramTypes) != len(args) {
			continue
		}
		promoted := make([]V, len(args))
		ok := true
		for j, arg := range args {
			p, promotedOK := r.promote(arg, ov.paramTypes[j])
			if !promotedOK {
				ok = false
				break
			}
			promoted[j] = p
		}
		if ok {
			return ov.tag, promoted, nil
		}
	}
	return zero, nil, &ResolutionError{ArgTypes: argTypesOf(args)}
}

func argTypesOf[V Typed](args []V) []types.Type {
	out := make([]types.Type, len(args))
	for i, a := range args {
		out[i] = a.Type()
	}
	return out
}

// Empty reports whether no overloads have been registered at all (used
// by NameTable to distinguish "name unknown" from "name known, no match").
func (r *Resolver[Tag, V]) Empty() bool { return len(r.overloads) == 0 }

// NameTable is a table of overloaded names, case-sensitive by
// construction; a case-insensitive wrapper is obtained by folding case at
// both Add and Resolve call sites, which is exactly what
// internal/resolver's v1.x tables do via golang.org/x/text/cases instead
// of a naive ToLower.
type NameTable[Tag any, V Typed] struct {
	promote Promoter[V]
	byName  map[string]*Resolver[Tag, V]
	// order preserves first-registration order of names, purely so
	// diagnostics and dumps are deterministic regardless of Go's
	// randomized map iteration.
	order []string
}

// NewNameTable builds an empty table using promote for every name's
// Resolver.
func NewNameTable[Tag any, V Typed](promote Promoter[V]) *NameTable[Tag, V] {
	return &NameTable[Tag, V]{promote: promote, byName: make(map[string]*Resolver[Tag, V])}
}

// Add registers an overload for name, creating its Resolver on first use.
func (t *NameTable[Tag, V]) Add(name string, tag Tag, paramTypes []types.Type) {
	r, ok := t.byName[name]
	if !ok {
		r = NewResolver[Tag, V](t.promote)
		t.byName[name] = r
		t.order = append(t.order, name)
	}
	r.Add(tag, paramTypes)
}

// Names returns every registered name in first-registration order.
func (t *NameTable[Tag, V]) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Resolve looks up name and resolves it against args.
func (t *NameTable[Tag, V]) Resolve(name string, args []V) (Tag, []V, error) {
	var zero Tag
	r, ok := t.byName[name]
	if !ok {
		return zero, nil, &NameResolutionError{Name: name}
	}
	tag, promoted, err := r.Resolve(args)
	if err != nil {
		return zero, nil, &ResolutionError{Name: name, ArgTypes: argTypesOf(args)}
	}
	return tag, promoted, nil
}
