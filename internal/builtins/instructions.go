package builtins

import "github.com/cqasm-lang/go-cqasm/internal/resolver"

// instructionSpec is one registered gate signature: name plus its
// compact type-spec parameter list.
type instructionSpec struct {
	name string
	spec string
}

// v1Instructions is the default v1.x gate set: single-, two- and
// three-qubit gates, measurement, state preparation and display.
var v1Instructions = []instructionSpec{
	{"i", "Q"}, {"h", "Q"}, {"x", "Q"}, {"y", "Q"}, {"z", "Q"},
	{"x90", "Q"}, {"mx90", "Q"}, {"y90", "Q"}, {"my90", "Q"},
	{"s", "Q"}, {"sdag", "Q"}, {"t", "Q"}, {"tdag", "Q"},
	{"rx", "Qr"}, {"ry", "Qr"}, {"rz", "Qr"},
	{"cnot", "QQ"}, {"cz", "QQ"}, {"swap", "QQ"},
	{"toffoli", "QQQ"},
	{"measure", "Q"}, {"measure_z", "Q"}, {"prep_z", "Q"},
	{"display", ""},
}

// v3Instructions is the default v3.x gate set: the same physical gates
// plus the unitary/matrix-parametrized generalizations v3.x introduces.
var v3Instructions = []instructionSpec{
	{"I", "Q"}, {"H", "Q"}, {"X", "Q"}, {"Y", "Q"}, {"Z", "Q"},
	{"S", "Q"}, {"Sdag", "Q"}, {"T", "Q"}, {"Tdag", "Q"},
	{"Rx", "Qr"}, {"Ry", "Qr"}, {"Rz", "Qr"},
	{"CNOT", "QQ"}, {"CZ", "QQ"}, {"SWAP", "QQ"},
	{"Toffoli", "QQQ"},
	{"unitary", "Qu"}, {"unitary2", "QQu"},
	{"measure", "Q"}, {"reset", "Q"},
}

// RegisterDefaultInstructions populates it with the default gate set for
// one dialect generation. v1x selects the lowercase legacy mnemonic set
// (matched case-insensitively by it); v3x selects the capitalized set.
func RegisterDefaultInstructions(it *resolver.InstructionTable, v3x bool) {
	set := v1Instructions
	if v3x {
		set = v3Instructions
	}
	for _, s := range set {
		it.Add(s.name, s.spec)
	}
}
