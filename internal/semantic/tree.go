package semantic

import (
	"github.com/cqasm-lang/go-cqasm/internal/tree"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

// Program is the root of the semantic tree.
type Program struct {
	Version     types.Version
	NumQubits   int64
	ErrorModel  tree.Maybe[ErrorModel]
	Subcircuits tree.Any[*Subcircuit]
	Mappings    tree.Any[Mapping]
	Variables   tree.Any[*Variable]
	APIVersion  types.Version
}

func (p *Program) Clone() *Program {
	c := &Program{
		Version:     append(types.Version{}, p.Version...),
		NumQubits:   p.NumQubits,
		ErrorModel:  p.ErrorModel.Clone(),
		Subcircuits: p.Subcircuits.Clone(),
		Mappings:    p.Mappings.Clone(),
		Variables:   p.Variables.Clone(),
		APIVersion:  append(types.Version{}, p.APIVersion...),
	}
	return c
}

// VisitChildren descends into every field capable of holding a node, in
// declaration order: ErrorModel, then Subcircuits, then Mappings, then
// Variables. This is the walk tree.FindReachable uses to collect every
// *Variable and *Subcircuit the tree can reach, including ones that
// never made it into Subcircuits/Variables (an only-referenced Variable
// declared in a block scope that has since been popped).
func (p *Program) VisitChildren(v tree.Visitor) {
	if em, ok := p.ErrorModel.Get(); ok {
		tree.Walk(v, em)
	}
	for _, sc := range p.Subcircuits.Items() {
		tree.Walk(v, sc)
	}
	for _, m := range p.Mappings.Items() {
		tree.Walk(v, m)
	}
	for _, vr := range p.Variables.Items() {
		tree.Walk(v, vr)
	}
}

func (p *Program) Equal(o *Program) bool {
	if o == nil {
		return p == nil
	}
	return p.Version.Compare(o.Version) == 0 &&
		p.NumQubits == o.NumQubits &&
		p.ErrorModel.Equal(o.ErrorModel) &&
		p.Subcircuits.Equal(o.Subcircuits) &&
		p.Mappings.Equal(o.Mappings) &&
		p.Variables.Equal(o.Variables) &&
		p.APIVersion.Compare(o.APIVersion) == 0
}

// ErrorModel is the resolved error-model declaration (if any), bound to
// an ErrorModelDescriptor by the ErrorModelTable.
type ErrorModel struct {
	Descriptor *ErrorModelDescriptor
	Name       string
	Operands   tree.Any[Value]
}

func (e ErrorModel) Clone() ErrorModel {
	return ErrorModel{Descriptor: e.Descriptor, Name: e.Name, Operands: e.Operands.Clone()}
}
func (e ErrorModel) Equal(o ErrorModel) bool {
	return e.Name == o.Name && e.Operands.Equal(o.Operands)
}
func (e ErrorModel) VisitChildren(v tree.Visitor) {
	for _, val := range e.Operands.Items() {
		tree.Walk(v, val)
	}
}

// ErrorModelDescriptor is the tag type registered into the ErrorModelTable
// (overload.Resolver's T parameter), analogous to Instruction below.
type ErrorModelDescriptor struct {
	Name       string
	ParamTypes []types.Type
}

// Subcircuit is a named, optionally-iterated block of code. Dialects
// <=1.1 store a flat Bundles sequence; dialects >=1.2 store exactly one
// structured Block. Exactly one of the two is used, selected by the
// analyzer according to the active dialect.
//
// Subcircuits are always referenced through *Subcircuit, both from the
// owning Program.Subcircuits container and from every GotoInstruction /
// Label Link that points at one: a Link stores a raw pointer into the
// tree, so the container holding the canonical copy
// must store pointers too, or a later append could reallocate the
// backing array out from under an existing Link.
type Subcircuit struct {
	Name       string
	Iterations int64
	Bundles    tree.Any[Bundle]  // dialect <= 1.1
	Block      tree.Maybe[Block] // dialect >= 1.2
}

func (s *Subcircuit) Clone() *Subcircuit {
	return &Subcircuit{
		Name:       s.Name,
		Iterations: s.Iterations,
		Bundles:    s.Bundles.Clone(),
		Block:      s.Block.Clone(),
	}
}
func (s *Subcircuit) Equal(o *Subcircuit) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Name == o.Name && s.Iterations == o.Iterations &&
		s.Bundles.Equal(o.Bundles) && s.Block.Equal(o.Block)
}
func (s *Subcircuit) VisitChildren(v tree.Visitor) {
	for _, b := range s.Bundles.Items() {
		tree.Walk(v, b)
	}
	if blk, ok := s.Block.Get(); ok {
		tree.Walk(v, blk)
	}
}

// Bundle is a dialect<=1.1 group of instructions issued in the same
// cycle. It holds InstructionBase rather than the bare Instruction type
// so the same container shape serves BundleExt (dialect>=1.2); the
// statement analyzer's dialect gating guarantees a dialect<=1.1 Bundle
// is only ever populated with *Instruction values, since `set` and
// `goto` are rejected for those dialects before a
// SetInstruction/GotoInstruction could ever be constructed.
type Bundle struct {
	Instructions tree.Many[InstructionBase]
}

func (b Bundle) Clone() Bundle { return Bundle{Instructions: b.Instructions.Clone()} }
func (b Bundle) Equal(o Bundle) bool {
	return b.Instructions.Equal(o.Instructions)
}
func (b Bundle) VisitChildren(v tree.Visitor) {
	for _, ib := range b.Instructions.Items() {
		tree.Walk(v, ib)
	}
}

// Block is a dialect>=1.2 sequence of structured Statements.
type Block struct {
	Statements tree.Any[Statement]
}

func (b Block) Clone() Block { return Block{Statements: b.Statements.Clone()} }
func (b Block) Equal(o Block) bool {
	return b.Statements.Equal(o.Statements)
}
func (b Block) VisitChildren(v tree.Visitor) {
	for _, st := range b.Statements.Items() {
		tree.Walk(v, st)
	}
}

// Statement is the sum type of dialect>=1.2 block contents.
type Statement interface {
	tree.Node[Statement]
	statementNode()
	Annotations() []AnnotationData
	SetAnnotations([]AnnotationData)
}

// baseStatement factors the annotation list shared by every Statement
// variant into one embedded struct, rather than repeating it on each.
type baseStatement struct {
	Annot []AnnotationData
}

func (b baseStatement) Annotations() []AnnotationData { return b.Annot }

// SetAnnotations assigns the statement's annotation list. Promoted onto
// every concrete Statement type below so the statement analyzer (a
// different package) can set annotations after construction without a
// bespoke setter per node type.
func (b *baseStatement) SetAnnotations(a []AnnotationData) { b.Annot = a }

func cloneAnnotations(a []AnnotationData) []AnnotationData {
	out := make([]AnnotationData, len(a))
	copy(out, a)
	return out
}

// visitAnnotations walks every annotation's operands, the one place an
// AnnotationData can hold a node (e.g. a VariableRef passed as an
// annotation argument) that FindReachable must not miss.
func visitAnnotations(v tree.Visitor, anns []AnnotationData) {
	for _, a := range anns {
		for _, val := range a.Operands.Items() {
			tree.Walk(v, val)
		}
	}
}

func annotationsEqual(a, b []AnnotationData) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// BundleExt is a dialect>=1.2 Statement wrapping a group of
// InstructionBase nodes issued in the same cycle.
type BundleExt struct {
	baseStatement
	Instructions tree.Many[InstructionBase]
}

func (s *BundleExt) statementNode() {}
func (s *BundleExt) Clone() Statement {
	return &BundleExt{baseStatement{cloneAnnotations(s.Annot)}, s.Instructions.Clone()}
}
func (s *BundleExt) Equal(o Statement) bool {
	other, ok := o.(*BundleExt)
	return ok && s.Instructions.Equal(other.Instructions) && annotationsEqual(s.Annot, other.Annot)
}
func (s *BundleExt) VisitChildren(v tree.Visitor) {
	visitAnnotations(v, s.Annot)
	for _, ib := range s.Instructions.Items() {
		tree.Walk(v, ib)
	}
}

// IfElseBranch is one `if cond { body }` / `elif cond { body }` arm.
type IfElseBranch struct {
	Condition Value
	Body      Block
}

func (b IfElseBranch) Clone() IfElseBranch {
	return IfElseBranch{Condition: b.Condition.Clone(), Body: b.Body.Clone()}
}
func (b IfElseBranch) Equal(o IfElseBranch) bool {
	return b.Condition.Equal(o.Condition) && b.Body.Equal(o.Body)
}
func (b IfElseBranch) VisitChildren(v tree.Visitor) {
	tree.Walk(v, b.Condition)
	tree.Walk(v, b.Body)
}

// IfElse is a structured if/elif/else statement.
type IfElse struct {
	baseStatement
	Branches []IfElseBranch
	Else     tree.Maybe[Block]
}

func (s *IfElse) statementNode() {}
func (s *IfElse) Clone() Statement {
	branches := make([]IfElseBranch, len(s.Branches))
	for i, b := range s.Branches {
		branches[i] = b.Clone()
	}
	return &IfElse{baseStatement{cloneAnnotations(s.Annot)}, branches, s.Else.Clone()}
}
func (s *IfElse) Equal(o Statement) bool {
	other, ok := o.(*IfElse)
	if !ok || len(s.Branches) != len(other.Branches) || !s.Else.Equal(other.Else) {
		return false
	}
	for i := range s.Branches {
		if !s.Branches[i].Equal(other.Branches[i]) {
			return false
		}
	}
	return annotationsEqual(s.Annot, other.Annot)
}
func (s *IfElse) VisitChildren(v tree.Visitor) {
	visitAnnotations(v, s.Annot)
	for _, b := range s.Branches {
		tree.Walk(v, b)
	}
	if blk, ok := s.Else.Get(); ok {
		tree.Walk(v, blk)
	}
}

// ForLoop is a C-style `for (init; cond; update) { body }` statement.
type ForLoop struct {
	baseStatement
	Init      tree.Maybe[InstructionBase] // SetInstruction
	Condition Value
	Update    tree.Maybe[InstructionBase] // SetInstruction
	Body      Block
}

func (s *ForLoop) statementNode() {}
func (s *ForLoop) Clone() Statement {
	return &ForLoop{
		baseStatement{cloneAnnotations(s.Annot)},
		s.Init.Clone(), s.Condition.Clone(), s.Update.Clone(), s.Body.Clone(),
	}
}
func (s *ForLoop) Equal(o Statement) bool {
	other, ok := o.(*ForLoop)
	return ok && s.Init.Equal(other.Init) && s.Condition.Equal(other.Condition) &&
		s.Update.Equal(other.Update) && s.Body.Equal(other.Body) && annotationsEqual(s.Annot, other.Annot)
}
func (s *ForLoop) VisitChildren(v tree.Visitor) {
	visitAnnotations(v, s.Annot)
	if init, ok := s.Init.Get(); ok {
		tree.Walk(v, init)
	}
	tree.Walk(v, s.Condition)
	if upd, ok := s.Update.Get(); ok {
		tree.Walk(v, upd)
	}
	tree.Walk(v, s.Body)
}

// ForeachLoop iterates an integer Variable from From to To inclusive.
type ForeachLoop struct {
	baseStatement
	Variable tree.Link[Variable]
	From, To int64
	Body     Block
}

func (s *ForeachLoop) statementNode() {}
func (s *ForeachLoop) Clone() Statement {
	return &ForeachLoop{baseStatement{cloneAnnotations(s.Annot)}, s.Variable, s.From, s.To, s.Body.Clone()}
}
func (s *ForeachLoop) Equal(o Statement) bool {
	other, ok := o.(*ForeachLoop)
	if !ok || s.Variable.Resolved() != other.Variable.Resolved() {
		return false
	}
	sameVar := s.Variable.DeferredID() == other.Variable.DeferredID()
	if s.Variable.Resolved() {
		sameVar = s.Variable.Get().Name == other.Variable.Get().Name
	}
	return sameVar && s.From == other.From && s.To == other.To &&
		s.Body.Equal(other.Body) && annotationsEqual(s.Annot, other.Annot)
}
func (s *ForeachLoop) VisitChildren(v tree.Visitor) {
	visitAnnotations(v, s.Annot)
	if s.Variable.Resolved() {
		tree.Walk(v, s.Variable.Get())
	}
	tree.Walk(v, s.Body)
}

// WhileLoop is a pre-test loop.
type WhileLoop struct {
	baseStatement
	Condition Value
	Body      Block
}

func (s *WhileLoop) statementNode() {}
func (s *WhileLoop) Clone() Statement {
	return &WhileLoop{baseStatement{cloneAnnotations(s.Annot)}, s.Condition.Clone(), s.Body.Clone()}
}
func (s *WhileLoop) Equal(o Statement) bool {
	other, ok := o.(*WhileLoop)
	return ok && s.Condition.Equal(other.Condition) && s.Body.Equal(other.Body) && annotationsEqual(s.Annot, other.Annot)
}
func (s *WhileLoop) VisitChildren(v tree.Visitor) {
	visitAnnotations(v, s.Annot)
	tree.Walk(v, s.Condition)
	tree.Walk(v, s.Body)
}

// RepeatUntilLoop is a post-test loop.
type RepeatUntilLoop struct {
	baseStatement
	Body      Block
	Condition Value
}

func (s *RepeatUntilLoop) statementNode() {}
func (s *RepeatUntilLoop) Clone() Statement {
	return &RepeatUntilLoop{baseStatement{cloneAnnotations(s.Annot)}, s.Body.Clone(), s.Condition.Clone()}
}
func (s *RepeatUntilLoop) Equal(o Statement) bool {
	other, ok := o.(*RepeatUntilLoop)
	return ok && s.Body.Equal(other.Body) && s.Condition.Equal(other.Condition) && annotationsEqual(s.Annot, other.Annot)
}
func (s *RepeatUntilLoop) VisitChildren(v tree.Visitor) {
	visitAnnotations(v, s.Annot)
	tree.Walk(v, s.Body)
	tree.Walk(v, s.Condition)
}

// Break is a loop-exit statement; legal only inside a loop body.
type Break struct{ baseStatement }

func (s *Break) statementNode()       {}
func (s *Break) Clone() Statement     { return &Break{baseStatement{cloneAnnotations(s.Annot)}} }
func (s *Break) Equal(o Statement) bool {
	other, ok := o.(*Break)
	return ok && annotationsEqual(s.Annot, other.Annot)
}

// Continue is a loop-continuation statement; legal only inside a loop body.
type Continue struct{ baseStatement }

func (s *Continue) statementNode()       {}
func (s *Continue) Clone() Statement     { return &Continue{baseStatement{cloneAnnotations(s.Annot)}} }
func (s *Continue) Equal(o Statement) bool {
	other, ok := o.(*Continue)
	return ok && annotationsEqual(s.Annot, other.Annot)
}

// InstructionBase is the sum type of things a bundle can contain: a
// resolved gate Instruction, a SetInstruction, or a GotoInstruction.
type InstructionBase interface {
	tree.Node[InstructionBase]
	instructionBaseNode()
	Annotations() []AnnotationData
	SetAnnotations([]AnnotationData)
	SetCondition(Value)
	GetCondition() (Value, bool)
}

type baseInstruction struct {
	Condition *Value
	Annot     []AnnotationData
}

func (b *baseInstruction) Annotations() []AnnotationData { return b.Annot }
func (b *baseInstruction) SetCondition(v Value)          { b.Condition = &v }
func (b *baseInstruction) GetCondition() (Value, bool) {
	if b.Condition == nil {
		return nil, false
	}
	return *b.Condition, true
}

// SetAnnotations assigns the instruction's annotation list; see
// baseStatement.SetAnnotations for why this is a setter rather than a
// constructor parameter.
func (b *baseInstruction) SetAnnotations(a []AnnotationData) { b.Annot = a }

func cloneCondition(c *Value) *Value {
	if c == nil {
		return nil
	}
	v := (*c).Clone()
	return &v
}

func conditionsEqual(a, b *Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return (*a).Equal(*b)
}

// Instruction is a resolved gate/operation call: a bound Instruction
// descriptor, the matched name, and the promoted operand values.
type Instruction struct {
	baseInstruction
	Descriptor *InstructionDescriptor
	Name       string
	Operands   tree.Any[Value]
}

func (s *Instruction) instructionBaseNode() {}
func (s *Instruction) Clone() InstructionBase {
	return &Instruction{
		baseInstruction{cloneCondition(s.Condition), cloneAnnotations(s.Annot)},
		s.Descriptor, s.Name, s.Operands.Clone(),
	}
}
func (s *Instruction) Equal(o InstructionBase) bool {
	other, ok := o.(*Instruction)
	return ok && s.Name == other.Name && s.Operands.Equal(other.Operands) &&
		conditionsEqual(s.Condition, other.Condition) && annotationsEqual(s.Annot, other.Annot)
}
func (s *Instruction) VisitChildren(v tree.Visitor) {
	if cond, ok := s.GetCondition(); ok {
		tree.Walk(v, cond)
	}
	visitAnnotations(v, s.Annot)
	for _, val := range s.Operands.Items() {
		tree.Walk(v, val)
	}
}

// InstructionDescriptor is the tag type registered into the
// InstructionTable: a case-sensitively matched name plus its expected
// parameter types.
type InstructionDescriptor struct {
	Name       string
	ParamTypes []types.Type
}

// SetInstruction assigns rhs to the assignable lvalue lhs (the `set`
// instruction and C-for loop init/update).
type SetInstruction struct {
	baseInstruction
	Lhs, Rhs Value
}

func (s *SetInstruction) instructionBaseNode() {}
func (s *SetInstruction) Clone() InstructionBase {
	return &SetInstruction{
		baseInstruction{cloneCondition(s.Condition), cloneAnnotations(s.Annot)},
		s.Lhs.Clone(), s.Rhs.Clone(),
	}
}
func (s *SetInstruction) Equal(o InstructionBase) bool {
	other, ok := o.(*SetInstruction)
	return ok && s.Lhs.Equal(other.Lhs) && s.Rhs.Equal(other.Rhs) &&
		conditionsEqual(s.Condition, other.Condition) && annotationsEqual(s.Annot, other.Annot)
}
func (s *SetInstruction) VisitChildren(v tree.Visitor) {
	if cond, ok := s.GetCondition(); ok {
		tree.Walk(v, cond)
	}
	visitAnnotations(v, s.Annot)
	tree.Walk(v, s.Lhs)
	tree.Walk(v, s.Rhs)
}

// GotoInstruction transfers control to another Subcircuit.
type GotoInstruction struct {
	baseInstruction
	Target tree.Link[Subcircuit]
}

func (s *GotoInstruction) instructionBaseNode() {}
func (s *GotoInstruction) Clone() InstructionBase {
	return &GotoInstruction{baseInstruction{cloneCondition(s.Condition), cloneAnnotations(s.Annot)}, s.Target}
}
func (s *GotoInstruction) Equal(o InstructionBase) bool {
	other, ok := o.(*GotoInstruction)
	if !ok || s.Target.Resolved() != other.Target.Resolved() {
		return false
	}
	if !s.Target.Resolved() {
		return s.Target.DeferredID() == other.Target.DeferredID()
	}
	return s.Target.Get().Name == other.Target.Get().Name &&
		conditionsEqual(s.Condition, other.Condition) && annotationsEqual(s.Annot, other.Annot)
}
func (s *GotoInstruction) VisitChildren(v tree.Visitor) {
	if cond, ok := s.GetCondition(); ok {
		tree.Walk(v, cond)
	}
	visitAnnotations(v, s.Annot)
	if s.Target.Resolved() {
		tree.Walk(v, s.Target.Get())
	}
}

// Variable is named, typed storage. Variables are created once, at
// declaration time, and never mutated afterwards;
// later assignments become SetInstruction nodes referencing a VariableRef.
// Variable is always referenced through *Variable for the same link-
// stability reason as *Subcircuit above (ForeachLoop.Variable and every
// VariableRef hold a pointer into Program.Variables / the declaring
// Scope's variable list).
type Variable struct {
	Name string
	Type types.Type
}

func (v *Variable) Clone() *Variable { c := *v; return &c }
func (v *Variable) Equal(o *Variable) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.Name == o.Name && v.Type.Equal(o.Type)
}

// Mapping is a user-defined alias binding an identifier to a fully
// evaluated value expression; it names no storage.
type Mapping struct {
	Name  string
	Value Value
}

func (m Mapping) Clone() Mapping       { return Mapping{Name: m.Name, Value: m.Value.Clone()} }
func (m Mapping) Equal(o Mapping) bool { return m.Name == o.Name && m.Value.Equal(o.Value) }
func (m Mapping) VisitChildren(v tree.Visitor) {
	tree.Walk(v, m.Value)
}

// AnnotationData is the semantic form of an AST annotation: the
// interface/operation name pair plus fully evaluated operand Values.
type AnnotationData struct {
	Interface string
	Operation string
	Operands  tree.Any[Value]
}

func (a AnnotationData) Equal(o AnnotationData) bool {
	return a.Interface == o.Interface && a.Operation == o.Operation && a.Operands.Equal(o.Operands)
}
