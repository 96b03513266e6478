package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aleksaelezovic/sparqlir/internal/catalog"
	"github.com/aleksaelezovic/sparqlir/internal/config"
	"github.com/aleksaelezovic/sparqlir/internal/storage"
)

// ValidFormats defines the output formats of catalog commands.
var ValidFormats = []string{"text", "yaml", "json"}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage stored translations",
		Long: `Store translations under a name and reuse them.

The catalog lives in the directory given by --catalog or catalog.path. Without
one it is kept in memory for the duration of the command.`,
	}

	cmd.AddCommand(newCatalogPutCommand())
	cmd.AddCommand(newCatalogGetCommand())
	cmd.AddCommand(newCatalogListCommand())
	cmd.AddCommand(newCatalogRemoveCommand())

	return cmd
}

// openCatalog opens the configured catalog. The returned function closes
// its storage.
func openCatalog(ctx context.Context) (*catalog.Catalog, func(), error) {
	cfg := GetConfig(ctx)
	logger := config.GetLogger(ctx)
	st, err := storage.OpenBadger(cfg.Catalog.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			logger.Warn("closing catalog", "error", err)
		}
	}
	return catalog.New(st, logger), closeFn, nil
}

func newCatalogPutCommand() *cobra.Command {
	var input inputOptions
	var format string

	cmd := &cobra.Command{
		Use:   "put NAME [file]",
		Short: "Translate and store a query or update",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			text, err := input.read(cmd, args[1:])
			if err != nil {
				return err
			}
			c, closeFn, err := openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			opts := GetConfig(cmd.Context()).Parser.Options()
			opts.Logger = config.GetLogger(cmd.Context())
			entry, err := c.Put(args[0], text, opts)
			if err != nil {
				return err
			}
			return writeEntry(cmd.OutOrStdout(), entry, format)
		},
	}

	input.addFlags(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|yaml|json)")
	return cmd
}

func newCatalogGetCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Show a stored translation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			c, closeFn, err := openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			entry, err := c.Get(args[0])
			if err != nil {
				return err
			}
			return writeEntry(cmd.OutOrStdout(), entry, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (text|yaml|json)")
	return cmd
}

func newCatalogListCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored translations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			c, closeFn, err := openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			entries, err := c.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				return encodeYAML(out, entries)
			case "json":
				return encodeJSON(out, entries)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Kind, e.Created.Format(time.RFC3339), e.Fingerprint[:12])
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (text|yaml|json)")
	return cmd
}

func newCatalogRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"delete"},
		Short:   "Remove a stored translation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return c.Delete(args[0])
		},
	}
}

func checkFormat(format string) error {
	for _, f := range ValidFormats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
}

func writeEntry(w io.Writer, e *catalog.Entry, format string) error {
	switch format {
	case "yaml":
		return encodeYAML(w, e)
	case "json":
		return encodeJSON(w, e)
	}
	_, err := fmt.Fprintln(w, e.Algebra)
	return err
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
