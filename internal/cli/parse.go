package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/sparqlir/internal/config"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/parser"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	inputOptions
	Indent bool
	Query  bool
	Update bool
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the algebra of a query or update",
		Long: `Parse a SPARQL query or update and print its algebra.

The input is read from the file argument, --expr, or standard input. Without
--query or --update the kind of request is detected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.Indent, "indent", false, "print one operator per line")
	cmd.Flags().BoolVar(&opts.Query, "query", false, "parse as a query")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "parse as an update")
	cmd.MarkFlagsMutuallyExclusive("query", "update")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	text, err := opts.read(cmd, args)
	if err != nil {
		return err
	}

	cfg := GetConfig(cmd.Context())
	parserOpts := cfg.Parser.Options()
	parserOpts.Logger = config.GetLogger(cmd.Context())

	p := parser.NewParser(text, parserOpts)
	var node algebra.Node
	switch {
	case opts.Query:
		node, err = p.ParseQuery()
	case opts.Update:
		node, err = p.ParseUpdate()
	default:
		node, err = p.Parse()
	}
	if err != nil {
		return err
	}

	out := algebra.SSE(node)
	if opts.Indent {
		out = algebra.Indent(node)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
