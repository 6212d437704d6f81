package cqasm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cqasm-lang/go-cqasm/internal/serialize"
)

// TestAnalyzeFixtures runs every AST-JSON fixture under testdata/fixtures
// through the same decode-analyze-encode pipeline cmd/cqasm-analyze drives,
// and snapshots the resulting diagnostics plus (when analysis succeeds) the
// encoded semantic tree. Fixtures that are expected to fail analysis (like
// undeclared_goto) simply snapshot a non-empty diagnostics list and stop.
func TestAnalyzeFixtures(t *testing.T) {
	fixtures := []struct {
		name       string
		file       string
		apiVersion string
	}{
		{name: "BellPair", file: "bell_pair.json", apiVersion: "3.0"},
		{name: "UnitaryGate", file: "unitary_gate.json", apiVersion: "3.0"},
		{name: "UndeclaredGoto", file: "undeclared_goto.json", apiVersion: "3.0"},
	}

	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			path := filepath.Join("..", "..", "testdata", "fixtures", fx.file)
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("reading %s: %v", path, err)
			}

			prog, err := serialize.DecodeASTJSON(data)
			if err != nil {
				t.Fatalf("decoding %s: %v", path, err)
			}

			analyzer, err := New(fx.apiVersion)
			if err != nil {
				t.Fatalf("cqasm.New(%q): %v", fx.apiVersion, err)
			}

			result := analyzer.Analyze(prog, fx.file, "")
			snaps.MatchSnapshot(t, "diagnostics", result.Errors())

			if !result.Success() {
				return
			}
			treeJSON, err := serialize.EncodeJSON(fx.file, result.Diagnostics, result.Program)
			if err != nil {
				t.Fatalf("EncodeJSON: %v", err)
			}
			snaps.MatchSnapshot(t, "tree", string(treeJSON))
		})
	}
}

// TestMain lets go-snaps clean up snapshot entries left behind by fixtures
// that were renamed or removed, per the package's documented usage.
func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}
