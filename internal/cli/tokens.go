package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aleksaelezovic/sparqlir/pkg/sparql/lexer"
)

// TokensOptions holds flags for the tokens command.
type TokensOptions struct {
	inputOptions
	Format string
}

type tokenRecord struct {
	Line  int    `yaml:"line"`
	Kind  string `yaml:"kind"`
	Value string `yaml:"value"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	opts := &TokensOptions{}

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream of SPARQL text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd, args, opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (text|yaml)")

	return cmd
}

func runTokens(cmd *cobra.Command, args []string, opts *TokensOptions) error {
	if opts.Format != "text" && opts.Format != "yaml" {
		return fmt.Errorf("invalid format %q: must be text or yaml", opts.Format)
	}
	text, err := opts.read(cmd, args)
	if err != nil {
		return err
	}

	tokens, err := lexer.New(text).All()
	if err != nil {
		return err
	}
	records := make([]tokenRecord, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == lexer.EOF {
			continue
		}
		records = append(records, tokenRecord{Line: tok.Line, Kind: kindLabel(tok), Value: tok.Value})
	}

	out := cmd.OutOrStdout()
	if opts.Format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Line, r.Kind, r.Value)
	}
	return tw.Flush()
}

// kindLabel names the terminal class; keywords and punctuation have no
// class of their own.
func kindLabel(tok lexer.Token) string {
	if tok.Kind != lexer.None {
		return tok.Kind.String()
	}
	if c := tok.Value[0]; c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
		return "keyword"
	}
	return "punct"
}
