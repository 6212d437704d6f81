package serialize

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cqasm-lang/go-cqasm/internal/diag"
	"github.com/cqasm-lang/go-cqasm/internal/semantic"
)

// EncodeJSON builds the JSON projection of an analysis result:
// filename, the plain-string diagnostics, and the program tree (when
// present), composed with sjson.SetRawBytes rather than a struct with
// json tags -- the envelope is assembled field-by-field the way a
// caller would patch an existing document, not declared up front.
func EncodeJSON(filename string, diags diag.Diagnostics, p *semantic.Program) ([]byte, error) {
	doc := []byte("{}")
	var err error
	doc, err = sjson.SetBytes(doc, "filename", filename)
	if err != nil {
		return nil, err
	}

	errs, err := json.Marshal(diags.Strings())
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetRawBytes(doc, "errors", errs)
	if err != nil {
		return nil, err
	}

	if p != nil {
		progJSON, err := json.Marshal(ProgramTree(p))
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "program", progJSON)
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Query runs a gjson path expression against an encoded result,
// e.g. Query(data, "program.subcircuits.0.name"), for callers that want
// to pick one field out of a result without unmarshaling the whole tree.
func Query(data []byte, path string) gjson.Result {
	return gjson.GetBytes(data, path)
}

// DecodeJSONProgram extracts the "program" field from an EncodeJSON
// envelope and reconstructs it into a *semantic.Program. Returns
// (nil, nil) if the envelope carries no program field, matching
// EncodeJSON's own omission of that field for a nil Program.
func DecodeJSONProgram(data []byte) (*semantic.Program, error) {
	result := gjson.GetBytes(data, "program")
	if !result.Exists() {
		return nil, nil
	}
	var raw any
	if err := json.Unmarshal([]byte(result.Raw), &raw); err != nil {
		return nil, err
	}
	return DecodeProgram(raw)
}
