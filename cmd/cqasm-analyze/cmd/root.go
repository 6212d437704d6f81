package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cqasm-analyze",
	Short: "Semantic analyzer for cQASM programs",
	Long: `cqasm-analyze runs the cQASM semantic analyzer over an already-parsed
AST, resolving overloads, types and scopes, and reports diagnostics plus
the resulting semantic tree.

It does not lex or parse cQASM source text: "analyze" takes an AST as
JSON (see internal/serialize), the form an external front-end emits
after parsing a .cq/.cq3 file.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("api-version", "", "cQASM API version to analyze against (overrides .cqasmrc.yaml)")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
