// Package commands implements the querymind subcommands.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/querymind-labs/querymind/internal/config"
	"github.com/querymind-labs/querymind/internal/document"
	"github.com/querymind-labs/querymind/internal/embed"
	"github.com/querymind-labs/querymind/internal/state"
	"github.com/querymind-labs/querymind/internal/vector"
	"github.com/spf13/cobra"
)

// currentConfig returns the configuration loaded by the root command,
// falling back to defaults when commands run standalone (tests).
func currentConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Host:                config.DefaultHost,
		Port:                config.DefaultPort,
		StatePath:           config.DefaultStatePath,
		DataDir:             config.DefaultDataDir,
		QueryTimeoutSeconds: config.DefaultQueryTimeoutSeconds,
		MaxRows:             config.DefaultMaxRows,
		MaxUploadMB:         config.DefaultMaxUploadMB,
		EmbeddingDim:        config.DefaultEmbeddingDim,
	}
}

// openStore opens (and migrates) the state database named in cfg.
func openStore(cfg *config.Config) (*state.SQLiteStore, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// newProcessor builds a document processor over the store with the
// vector index rebuilt from stored chunks.
func newProcessor(cmd *cobra.Command, cfg *config.Config, store *state.SQLiteStore) (*document.Processor, error) {
	embedder := embed.NewHashingEmbedder(cfg.EmbeddingDim)
	index := vector.New(embedder.Dimension())
	logger := config.GetLogger(cmd.Context())

	proc := document.NewProcessor(store, embedder, index, logger)
	if err := proc.RebuildIndex(); err != nil {
		return nil, err
	}
	return proc, nil
}
