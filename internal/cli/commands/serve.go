package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/querymind-labs/querymind/internal/config"
	"github.com/querymind-labs/querymind/internal/engine"
	"github.com/querymind-labs/querymind/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the query engine HTTP API server.

The server exposes database upload, schema discovery, document ingestion
and natural language query endpoints. Previously ingested documents are
reloaded into the vector index at startup.`,
		Example: `  # Serve on the configured port
  querymind serve

  # Serve on a specific port and watch a directory for documents
  querymind serve --port 9000 --watch-dir ./docs`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := currentConfig()
			logger := config.GetLogger(cmd.Context())

			if noWatch {
				cfg.WatchDir = ""
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if version, err := store.GetMigrationVersion(); err == nil {
				logger.Info("state store ready", "path", cfg.StatePath, "migration_version", version)
			}

			proc, err := newProcessor(cmd, cfg, store)
			if err != nil {
				return err
			}

			eng := engine.New(logger, engine.Options{
				Timeout: cfg.QueryTimeout(),
				MaxRows: cfg.MaxRows,
			})
			defer func() { _ = eng.Close() }()

			srv := server.New(server.Deps{
				Config:    cfg,
				Engine:    eng,
				Processor: proc,
				Store:     store,
				Logger:    logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Serve(ctx)
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable document directory watching")
	return cmd
}
