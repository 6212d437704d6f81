// Command cqasm-analyze runs the semantic analyzer over an already-parsed
// cQASM AST and reports diagnostics plus the resulting semantic tree. It
// deliberately never lexes or parses cQASM source text itself; its input
// is the JSON AST interchange format internal/serialize produces, which
// an external parser front-end is expected to emit.
package main

import (
	"fmt"
	"os"

	"github.com/cqasm-lang/go-cqasm/cmd/cqasm-analyze/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
