package resolver

import "github.com/cqasm-lang/go-cqasm/internal/semantic"

// Scope is one entry of the scope stack: its own
// mappings, the variables declared directly in it (for harvesting into
// Program.Variables on pop), the Block being built (dialect >= 1.2
// only; nil otherwise), and the inside-loop flag that legalizes
// break/continue.
type Scope struct {
	Mappings   *MappingTable
	Variables  []*semantic.Variable
	varByName  map[string]*semantic.Variable
	Block      *semantic.Block
	InsideLoop bool
}

func newScope(insideLoop bool) *Scope {
	return &Scope{
		Mappings:   NewMappingTable(),
		varByName:  make(map[string]*semantic.Variable),
		InsideLoop: insideLoop,
	}
}

// DeclareVariable adds v to this scope. Returns false if a variable by
// that name is already declared directly in this scope.
func (s *Scope) DeclareVariable(v *semantic.Variable) bool {
	if _, exists := s.varByName[v.Name]; exists {
		return false
	}
	s.varByName[v.Name] = v
	s.Variables = append(s.Variables, v)
	return true
}

// LookupVariable finds a variable declared directly in this scope.
func (s *Scope) LookupVariable(name string) (*semantic.Variable, bool) {
	v, ok := s.varByName[name]
	return v, ok
}

// Stack is the scope stack: a LIFO list of Scopes, innermost last.
// Leaving the scope stack empty once analysis finishes is the caller's
// responsibility to enforce via matched Push/Pop pairs.
type Stack struct {
	scopes []*Scope
}

// NewStack returns an empty stack.
func NewStack() *Stack { return &Stack{} }

// Push starts a new scope. If insideLoop is true the new scope (and
// everything pushed under it, until explicitly overridden again) is
// eligible for break/continue; otherwise it inherits the current top
// scope's flag, so an `if` body nested inside a `while` body still
// counts as "inside a loop" too.
func (s *Stack) Push(insideLoop bool) *Scope {
	inherited := insideLoop || (len(s.scopes) > 0 && s.scopes[len(s.scopes)-1].InsideLoop)
	sc := newScope(inherited)
	s.scopes = append(s.scopes, sc)
	return sc
}

// Pop removes and returns the innermost scope.
func (s *Stack) Pop() *Scope {
	n := len(s.scopes)
	sc := s.scopes[n-1]
	s.scopes = s.scopes[:n-1]
	return sc
}

// Len reports how many scopes are currently pushed.
func (s *Stack) Len() int { return len(s.scopes) }

// Current returns the innermost scope.
func (s *Stack) Current() *Scope { return s.scopes[len(s.scopes)-1] }

// Global returns the outermost (global) scope.
func (s *Stack) Global() *Scope { return s.scopes[0] }

// InsideLoop reports whether break/continue are currently legal.
func (s *Stack) InsideLoop() bool {
	if len(s.scopes) == 0 {
		return false
	}
	return s.Current().InsideLoop
}

// LookupMapping walks from innermost to outermost scope, returning the
// first hit: the innermost scope's mapping wins.
func (s *Stack) LookupMapping(name string) (semantic.Value, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i].Mappings.Resolve(name); ok {
			return v, true
		}
	}
	return nil, false
}

// LookupVariable walks from innermost to outermost scope.
func (s *Stack) LookupVariable(name string) (*semantic.Variable, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i].LookupVariable(name); ok {
			return v, true
		}
	}
	return nil, false
}
