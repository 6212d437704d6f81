package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cqasm-lang/go-cqasm/internal/serialize"
)

var (
	dumpFromCBOR bool
	dumpQuery    string
)

var dumpCmd = &cobra.Command{
	Use:   "dump [result.json]",
	Short: "Pretty-print or query an encoded analysis result",
	Long: `dump reads a result previously written by "analyze" (JSON by default,
or CBOR with --cbor) and either pretty-prints it or, with --query,
extracts one field using a gjson path expression such as
"program.subcircuits.0.name".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().BoolVar(&dumpFromCBOR, "cbor", false, "input is CBOR, not JSON")
	dumpCmd.Flags().StringVar(&dumpQuery, "query", "", "gjson path to extract instead of dumping the whole document")
}

func runDump(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if dumpFromCBOR {
		tree, err := serialize.DecodeCBOR(data)
		if err != nil {
			return fmt.Errorf("decoding CBOR: %w", err)
		}
		data, err = json.Marshal(tree)
		if err != nil {
			return fmt.Errorf("re-encoding as JSON: %w", err)
		}
	}

	if dumpQuery != "" {
		res := serialize.Query(data, dumpQuery)
		fmt.Println(res.String())
		return nil
	}

	var pretty map[string]any
	if err := json.Unmarshal(data, &pretty); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
