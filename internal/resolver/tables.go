// Package resolver implements the scoped symbol environment: MappingTable,
// FunctionTable, InstructionTable and ErrorModelTable, each a thin wrapper
// around internal/overload's generic resolver bound to semantic.Value and
// semantic.Promote, plus the Scope stack used by the statement analyzer.
// The underlying overload tables are case-sensitive; FunctionTable and
// InstructionTable fold names first when built case-insensitive (v1.x).
package resolver

import (
	"golang.org/x/text/cases"

	"github.com/cqasm-lang/go-cqasm/internal/overload"
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
	"github.com/cqasm-lang/go-cqasm/internal/tree"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

// foldCaser implements a case-insensitive wrapper obtained by folding case
// at both registration and lookup; it uses Unicode case folding rather
// than strings.ToLower so registered names normalize correctly outside
// ASCII, used by the v1.x dialect tables (cQASM 1.x mnemonics are
// matched case-insensitively).
var foldCaser = cases.Fold()

func fold(name string, caseInsensitive bool) string {
	if !caseInsensitive {
		return name
	}
	return foldCaser.String(name)
}

// promote adapts semantic.Promote to overload.Promoter[semantic.Value].
func promote(v semantic.Value, target types.Type) (semantic.Value, bool) {
	return semantic.Promote(v, target)
}

// FunctionImpl is a function usable in cQASM constant expressions: given
// fully-resolved (already-promoted) argument values, it returns a Value.
// The expression evaluator only calls this when every argument is
// constant; otherwise the call is preserved as a semantic.FunctionCall
// carrying the overload's ReturnType instead.
type FunctionImpl func(args []semantic.Value) (semantic.Value, error)

// FunctionOverload pairs an implementation with the return type overload
// resolution chose for it, so a deferred (non-constant) call can be
// rebuilt into a semantic.FunctionCall without invoking Call.
type FunctionOverload struct {
	ReturnType types.Type
	Call       FunctionImpl
}

// FunctionTable holds every overload of every constant-propagation
// function and operator ("operator+" etc canonical names live here too).
type FunctionTable struct {
	table           *overload.NameTable[FunctionOverload, semantic.Value]
	caseInsensitive bool
}

// NewFunctionTable builds an empty table. caseInsensitive should be true
// for the v1.x dialect and false for v3.x, matching the two language
// generations' identifier matching rules.
func NewFunctionTable(caseInsensitive bool) *FunctionTable {
	return &FunctionTable{table: overload.NewNameTable[FunctionOverload](promote), caseInsensitive: caseInsensitive}
}

// Add registers a function overload. paramSpec is the compact type-spec
// mini-language (e.g. "ii" for two ints); returnType is the type overload
// resolution reports for this overload regardless of whether the call
// ultimately folds.
func (t *FunctionTable) Add(name, paramSpec string, returnType types.Type, impl FunctionImpl) {
	t.table.Add(fold(name, t.caseInsensitive), FunctionOverload{ReturnType: returnType, Call: impl}, types.FromSpec(paramSpec))
}

// Resolve finds the matching overload and promotes args against it
// without invoking the implementation, for callers (the evaluator) that
// need to decide whether to fold or defer first.
func (t *FunctionTable) Resolve(name string, args []semantic.Value) (FunctionOverload, []semantic.Value, error) {
	return t.table.Resolve(fold(name, t.caseInsensitive), args)
}

// Call resolves and invokes name(args). Returns an error wrapping
// overload.NameResolutionError / overload.ResolutionError on failure.
func (t *FunctionTable) Call(name string, args []semantic.Value) (semantic.Value, error) {
	ov, promoted, err := t.table.Resolve(fold(name, t.caseInsensitive), args)
	if err != nil {
		return nil, err
	}
	return ov.Call(promoted)
}

// InstructionTable holds every registered instruction (gate) signature.
type InstructionTable struct {
	table           *overload.NameTable[*semantic.InstructionDescriptor, semantic.Value]
	caseInsensitive bool
}

func NewInstructionTable(caseInsensitive bool) *InstructionTable {
	return &InstructionTable{table: overload.NewNameTable[*semantic.InstructionDescriptor](promote), caseInsensitive: caseInsensitive}
}

// Add registers an instruction type, e.g. Add("cnot", "QQ").
func (t *InstructionTable) Add(name, paramSpec string) {
	t.table.Add(fold(name, t.caseInsensitive), &semantic.InstructionDescriptor{
		Name:       name,
		ParamTypes: types.FromSpec(paramSpec),
	}, types.FromSpec(paramSpec))
}

// Resolve returns a bound *semantic.Instruction with operands promoted;
// the caller (the statement analyzer) still has to fill in Condition and
// Annotations.
func (t *InstructionTable) Resolve(name string, args []semantic.Value) (*semantic.Instruction, error) {
	desc, promoted, err := t.table.Resolve(fold(name, t.caseInsensitive), args)
	if err != nil {
		return nil, err
	}
	return &semantic.Instruction{Name: name, Descriptor: desc, Operands: tree.NewAny(promoted...)}, nil
}

// ErrorModelTable holds every registered error-model signature.
type ErrorModelTable struct {
	table *overload.NameTable[*semantic.ErrorModelDescriptor, semantic.Value]
}

func NewErrorModelTable() *ErrorModelTable {
	return &ErrorModelTable{table: overload.NewNameTable[*semantic.ErrorModelDescriptor](promote)}
}

func (t *ErrorModelTable) Add(name, paramSpec string) {
	t.table.Add(name, &semantic.ErrorModelDescriptor{Name: name, ParamTypes: types.FromSpec(paramSpec)}, types.FromSpec(paramSpec))
}

// Resolve returns a bound semantic.ErrorModel; annotation data and line
// information still need to be set by the caller.
func (t *ErrorModelTable) Resolve(name string, args []semantic.Value) (semantic.ErrorModel, error) {
	desc, promoted, err := t.table.Resolve(name, args)
	if err != nil {
		return semantic.ErrorModel{}, err
	}
	return semantic.ErrorModel{Descriptor: desc, Name: name, Operands: tree.NewAny(promoted...)}, nil
}

// mappingEntry holds a mapping's resolved Value; the declaring AST
// Mapping's position is not stored.
type mappingEntry struct {
	value semantic.Value
}

// MappingTable holds the mappings declared within a single scope. Adding
// a name that already exists in THIS table overwrites it -- later
// mappings shadow earlier ones; shadowing across scopes is the Scope
// stack's job, overwriting within one scope is this table's.
type MappingTable struct {
	entries map[string]mappingEntry
	order   []string
}

func NewMappingTable() *MappingTable {
	return &MappingTable{entries: make(map[string]mappingEntry)}
}

func (t *MappingTable) Add(name string, value semantic.Value) {
	if _, exists := t.entries[name]; !exists {
		t.order = append(t.order, name)
	}
	t.entries[name] = mappingEntry{value: value}
}

func (t *MappingTable) Resolve(name string) (semantic.Value, bool) {
	e, ok := t.entries[name]
	return e.value, ok
}

// Names returns every mapping name in first-declaration order.
func (t *MappingTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Entries returns every (name, value) pair in first-declaration order, as
// semantic.Mapping nodes ready to populate Program.Mappings.
func (t *MappingTable) Entries() []semantic.Mapping {
	out := make([]semantic.Mapping, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, semantic.Mapping{Name: name, Value: t.entries[name].value})
	}
	return out
}
