package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var (
		topK   int
		format string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantically search ingested documents",
		Example: `  querymind search "vacation policy"
  querymind search "salary reviews" --top-k 10 --format json`,
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

			query := strings.Join(args, " ")
			results, err := proc.Search(query, topK)
			if err != nil {
				return err
			}

			if format == "json" {
				return renderJSON(cmd.OutOrStdout(), results)
			}

			w := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(w, "No matches found. Ingest documents first with 'querymind ingest'.")
				return nil
			}
			for _, res := range results {
				fmt.Fprintf(w, "%d. %s (chunk %d, similarity %.3f)\n", res.Rank, res.Document, res.ChunkSeq, res.Similarity)
				fmt.Fprintf(w, "   %s\n\n", snippet(res.Content, 200))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "Number of results to return")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

// snippet truncates content to at most n runes on a word boundary.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
