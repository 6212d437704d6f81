package serialize

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/cqasm-lang/go-cqasm/internal/semantic"
)

// DecodeCBORProgram reverses EncodeCBOR all the way back into a
// *semantic.Program, restoring the pointer identities every Link relied
// on before encoding: deserialize(serialize(p)).Equal(p) holds for any
// Program this round-trips.
func DecodeCBORProgram(data []byte) (*semantic.Program, error) {
	raw, err := DecodeCBOR(data)
	if err != nil {
		return nil, err
	}
	return DecodeProgram(raw)
}

// EncodeCBOR is the binary interchange encoding: a deterministic CBOR
// map tree tagged with "@t" per node, built by ProgramTree and handed
// straight to fxamacker/cbor rather than a bespoke writer.
func EncodeCBOR(p *semantic.Program) ([]byte, error) {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		return nil, err
	}
	return mode.Marshal(ProgramTree(p))
}

// DecodeCBOR reverses EncodeCBOR into the same generic node tree
// (map[string]any / []any), for a caller that wants to inspect an
// encoded result without rebuilding the semantic types.
func DecodeCBOR(data []byte) (any, error) {
	mode, err := cbor.DecOptions{DefaultMapType: reflect.TypeOf(map[string]any(nil))}.DecMode()
	if err != nil {
		return nil, err
	}
	var out any
	if err := mode.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
