package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/sparqlir/internal/config"
	"github.com/aleksaelezovic/sparqlir/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve translations over HTTP",
		Long: `Start an HTTP server translating SPARQL to algebra.

Endpoints:
  POST /algebra           query or update as body or form field
  GET  /algebra?query=    query or update as URL parameter
  GET  /catalog/          list stored translations
  GET  /catalog/{name}    show a stored translation
  PUT  /catalog/{name}    translate and store the body
  DELETE /catalog/{name}  remove a stored translation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)
			logger := config.GetLogger(ctx)

			c, closeFn, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			srv := server.New(server.Config{
				Catalog:      c,
				Options:      cfg.Parser.Options(),
				Addr:         cfg.Server.Addr,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				Logger:       logger,
			})
			if err := srv.Serve(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().Int64("max-body-bytes", 0, "largest accepted request body")

	return cmd
}
