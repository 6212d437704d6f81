package serialize

import (
	"testing"

	"github.com/cqasm-lang/go-cqasm/internal/ast"
	"github.com/cqasm-lang/go-cqasm/internal/diag"
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
	"github.com/cqasm-lang/go-cqasm/internal/tree"
	"github.com/cqasm-lang/go-cqasm/internal/types"
)

func sampleProgram() *semantic.Program {
	p := &semantic.Program{
		Version:    types.NewVersion(3, 0),
		NumQubits:  2,
		APIVersion: types.NewVersion(3, 0),
	}
	p.Mappings.Add(semantic.Mapping{Name: "q0", Value: semantic.ConstInt{Value: 0}})
	return p
}

// richProgram exercises the parts sampleProgram leaves untouched: a
// canonical Variable referenced by a VariableRef operand, a goto between
// two Subcircuits, a ConstUnitary operand, and -- the case the "@l"
// link scheme exists for -- a ForeachLoop variable declared nowhere in
// Program.Variables, reachable only through the loop's own Link.
func richProgram() *semantic.Program {
	p := &semantic.Program{
		Version:    types.NewVersion(3, 0),
		NumQubits:  4,
		APIVersion: types.NewVersion(3, 0),
	}

	x := &semantic.Variable{Name: "x", Type: types.Int()}
	p.Variables.Add(x)

	main := &semantic.Subcircuit{Name: "main"}
	loop := &semantic.Subcircuit{Name: "loop"}
	p.Subcircuits.Add(main)
	p.Subcircuits.Add(loop)

	var gotoBundle semantic.Bundle
	gotoBundle.Instructions.Add(&semantic.GotoInstruction{Target: tree.NewResolvedLink(loop)})
	main.Bundles.Add(gotoBundle)

	unitary := semantic.ConstUnitary{Value: types.CMatrix{
		Rows: 2, Cols: 2,
		Data: []types.Complex{{Re: 1}, {}, {}, {Re: 1}},
	}}
	var gateBundle semantic.Bundle
	gateBundle.Instructions.Add(&semantic.Instruction{
		Name:     "apply",
		Operands: tree.NewAny[semantic.Value](semantic.VariableRef{Variable: tree.NewResolvedLink(x)}, unitary),
	})
	main.Bundles.Add(gateBundle)

	i := &semantic.Variable{Name: "i", Type: types.Int()}
	var body semantic.Block
	body.Statements.Add(&semantic.BundleExt{})
	foreach := &semantic.ForeachLoop{
		Variable: tree.NewResolvedLink(i),
		From:     0,
		To:       9,
		Body:     body,
	}
	var loopBlock semantic.Block
	loopBlock.Statements.Add(foreach)
	loop.Block.Set(loopBlock)

	return p
}

func TestEncodeCBORRoundTrip(t *testing.T) {
	data, err := EncodeCBOR(sampleProgram())
	if err != nil {
		t.Fatalf("EncodeCBOR: %v", err)
	}
	decoded, err := DecodeCBOR(data)
	if err != nil {
		t.Fatalf("DecodeCBOR: %v", err)
	}
	m, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("expected a decoded map, got %T", decoded)
	}
	if m["@t"] != "Program" {
		t.Errorf(`expected "@t" == "Program", got %v`, m["@t"])
	}
}

func TestCBORProgramRoundTrip(t *testing.T) {
	for name, p := range map[string]*semantic.Program{"sample": sampleProgram(), "rich": richProgram()} {
		t.Run(name, func(t *testing.T) {
			data, err := EncodeCBOR(p)
			if err != nil {
				t.Fatalf("EncodeCBOR: %v", err)
			}
			got, err := DecodeCBORProgram(data)
			if err != nil {
				t.Fatalf("DecodeCBORProgram: %v", err)
			}
			if !got.Equal(p) {
				t.Errorf("decoded Program is not Equal to the original:\n got:  %+v\n want: %+v", got, p)
			}
		})
	}
}

func TestJSONProgramRoundTrip(t *testing.T) {
	for name, p := range map[string]*semantic.Program{"sample": sampleProgram(), "rich": richProgram()} {
		t.Run(name, func(t *testing.T) {
			data, err := EncodeJSON(name+".cq3", diag.Diagnostics{}, p)
			if err != nil {
				t.Fatalf("EncodeJSON: %v", err)
			}
			got, err := DecodeJSONProgram(data)
			if err != nil {
				t.Fatalf("DecodeJSONProgram: %v", err)
			}
			if !got.Equal(p) {
				t.Errorf("decoded Program is not Equal to the original:\n got:  %+v\n want: %+v", got, p)
			}
		})
	}
}

func TestEncodeJSONEnvelope(t *testing.T) {
	diags := diag.Diagnostics{}
	diags.Add(diag.NameResolution, ast.Position{File: "test.cq3", Line: 1, Column: 1}, "", "boom")

	data, err := EncodeJSON("test.cq3", diags, sampleProgram())
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}

	if got := Query(data, "filename").String(); got != "test.cq3" {
		t.Errorf("filename: got %q", got)
	}
	if got := Query(data, "errors.0").String(); got == "" {
		t.Errorf("expected a non-empty error string at errors.0")
	}
	if got := Query(data, "program.@t").String(); got != "Program" {
		t.Errorf("program.@t: got %q", got)
	}
	if got := Query(data, "program.numQubits").Int(); got != 2 {
		t.Errorf("program.numQubits: got %d, want 2", got)
	}
}

func TestEncodeJSONOmitsProgramWhenNil(t *testing.T) {
	data, err := EncodeJSON("broken.cq3", diag.Diagnostics{}, nil)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	if Query(data, "program").Exists() {
		t.Errorf("expected no program field when p is nil")
	}
}
