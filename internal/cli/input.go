package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// inputOptions selects where SPARQL text is read from.
type inputOptions struct {
	Expr string
}

func (o *inputOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Expr, "expr", "e", "", "SPARQL text to read instead of a file")
}

// read returns the --expr text, the named file, or standard input when the
// file is missing or "-".
func (o *inputOptions) read(cmd *cobra.Command, args []string) (string, error) {
	if o.Expr != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("--expr and a file argument are mutually exclusive")
		}
		return o.Expr, nil
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}
