// Package cli provides the sparqlir command line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/sparqlir/internal/config"
)

// Version is set at build time.
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
}

type configKey struct{}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sparqlir",
		Short: "Translate SPARQL to algebra",
		Long: `sparqlir parses SPARQL 1.1 and 1.2 queries and updates and prints
their algebra as S-expressions.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return err
			}
			if opts.Verbose {
				cfg.Log.Level = "debug"
			}

			logger := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = context.WithValue(ctx, configKey{}, cfg)
			cmd.SetContext(config.WithLogger(ctx, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.String("log-format", "", "log format (text|json)")
	flags.String("catalog", "", "catalog directory (empty for in-memory)")
	flags.Bool("resolve-iris", true, "resolve relative IRIs against the base")
	flags.Bool("validate", false, "validate IRIs, language tags and prefixed names")
	flags.Bool("all-vars", false, "project all variables for SELECT *")
	flags.String("anon-base", "", "label prefix for generated blank nodes")
	flags.String("base", "", "base IRI")

	cmd.AddCommand(NewParseCommand())
	cmd.AddCommand(NewTokensCommand())
	cmd.AddCommand(NewCatalogCommand())
	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the configuration loaded by the root command.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	cfg, err := config.Load("", nil)
	if err != nil {
		return &config.Config{}
	}
	return cfg
}
