package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/querymind-labs/querymind/internal/document"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest documents into the search index",
		Long: `Extract, chunk and embed documents so they become searchable.

Supported formats: ` + strings.Join(document.SupportedFormats(), ", ") + `.
Files that fail to process are reported but do not abort the batch.`,
		Example: `  querymind ingest handbook.md payroll.csv
  querymind ingest docs/*.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := currentConfig()

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			proc, err := newProcessor(cmd, cfg, store)
			if err != nil {
				return err
			}

			files := make([]document.File, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				files = append(files, document.File{Name: path, Data: data})
			}

			results := proc.ProcessFiles(cmd.Context(), files)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"File", "Status", "Chunks", "Error"})

			failed := 0
			for _, res := range results {
				t.AppendRow(table.Row{res.Name, res.Status, res.Chunks, res.Error})
				if res.Status != "completed" {
					failed++
				}
			}
			t.Render()

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to ingest", failed, len(results))
			}
			return nil
		},
	}
	return cmd
}
