package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cqasm-lang/go-cqasm/internal/serialize"
	"github.com/cqasm-lang/go-cqasm/pkg/cqasm"
)

var (
	analyzeAPIVersion string
	analyzeFormat     string
	analyzeOutPath    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ast.json]",
	Short: "Analyze an AST-JSON file and report diagnostics",
	Long: `analyze reads an AST already encoded in internal/serialize's JSON
interchange format (not cQASM source text -- this tool has no lexer or
parser of its own), runs the semantic analyzer over it, and prints
diagnostics to stderr.

If no file is given, the AST is read from stdin. The resulting semantic
tree is written to stdout (or --out) as JSON or CBOR.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeAPIVersion, "api-version", "", "cQASM API version, e.g. 3.0 (default from .cqasmrc.yaml, falls back to 3.0)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "output format: json or cbor (default from .cqasmrc.yaml, falls back to json)")
	analyzeCmd.Flags().StringVarP(&analyzeOutPath, "out", "o", "", "write the semantic tree here instead of stdout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	rc, err := loadRC()
	if err != nil {
		return fmt.Errorf("reading %s: %w", rcFileName, err)
	}

	apiVersion := analyzeAPIVersion
	if apiVersion == "" {
		apiVersion = rc.APIVersion
	}
	if apiVersion == "" {
		apiVersion = "3.0"
	}

	format := analyzeFormat
	if format == "" {
		format = rc.Format
	}
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "cbor" {
		return fmt.Errorf("unsupported --format %q (want json or cbor)", format)
	}

	filename := "<stdin>"
	var data []byte
	if len(args) > 0 {
		filename = args[0]
		data, err = os.ReadFile(filename)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("reading AST: %w", err)
	}

	prog, err := serialize.DecodeASTJSON(data)
	if err != nil {
		return fmt.Errorf("decoding AST: %w", err)
	}

	analyzer, err := cqasm.New(apiVersion)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	result := analyzer.Analyze(prog, filename, "")
	result.Unwrap(func(line string) { fmt.Fprintln(os.Stderr, line) })

	out, err := encodeResult(format, result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	if analyzeOutPath != "" {
		if err := os.WriteFile(analyzeOutPath, out, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", analyzeOutPath, err)
		}
	} else {
		os.Stdout.Write(out)
		if format == "json" {
			fmt.Println()
		}
	}

	if !result.Success() {
		os.Exit(1)
	}
	return nil
}

func encodeResult(format string, result cqasm.AnalysisResult) ([]byte, error) {
	switch format {
	case "cbor":
		if result.Program == nil {
			return nil, fmt.Errorf("no semantic tree produced; analysis failed before a Program could be built")
		}
		return serialize.EncodeCBOR(result.Program)
	default:
		return serialize.EncodeJSON(result.Filename, result.Diagnostics, result.Program)
	}
}
