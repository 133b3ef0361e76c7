package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/querymind-labs/querymind/internal/config"
	"github.com/querymind-labs/querymind/internal/engine"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format  string
	ShowSQL bool
	REPL    bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <database> [question]",
		Short: "Ask a database a question in natural language",
		Long: `Translate a natural language question to SQL against the given
SQLite database and run it.

When invoked without a question, enters interactive REPL mode.`,
		Example: `  # One-shot question
  querymind query company.db "how many employees do we have"

  # Show the generated SQL alongside the results
  querymind query company.db "average salary by department" --sql

  # Output as JSON
  querymind query company.db "top 5 salaries" --format json

  # Interactive mode
  querymind query company.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().BoolVar(&opts.ShowSQL, "sql", false, "Print the generated SQL before the results")
	cmd.Flags().BoolVar(&opts.REPL, "repl", false, "Enter interactive mode")
	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cfg := currentConfig()
	logger := config.GetLogger(cmd.Context())

	eng := engine.New(logger, engine.Options{
		Timeout: cfg.QueryTimeout(),
		MaxRows: cfg.MaxRows,
	})
	defer func() { _ = eng.Close() }()

	if _, err := eng.Connect(cmd.Context(), args[0]); err != nil {
		return err
	}

	if len(args) < 2 || opts.REPL {
		return runQueryREPL(cmd, eng, opts)
	}

	question := strings.Join(args[1:], " ")
	return executeAndRender(cmd, eng, question, opts)
}

func executeAndRender(cmd *cobra.Command, eng *engine.Engine, question string, opts *QueryOptions) error {
	result, err := eng.Execute(cmd.Context(), question)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.ShowSQL {
		fmt.Fprintf(w, "SQL: %s\n", result.SQL)
		fmt.Fprintf(w, "Confidence: %.0f%%\n\n", result.Confidence*100)
	}

	if err := renderRows(w, result.Columns, result.Rows, opts.Format); err != nil {
		return err
	}
	if result.Truncated {
		fmt.Fprintln(w, "(results truncated)")
	}
	return nil
}
