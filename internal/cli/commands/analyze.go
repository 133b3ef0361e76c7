package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/querymind-labs/querymind/internal/config"
	"github.com/querymind-labs/querymind/internal/schema"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "analyze <database>",
		Short: "Discover and print the schema of a SQLite database",
		Long: `Analyze a SQLite database without assuming anything about its
schema: tables, columns, primary and foreign keys, row counts, sample
data and inferred purposes.`,
		Example: `  querymind analyze company.db
  querymind analyze company.db --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := config.GetLogger(cmd.Context())

			disc, err := schema.Open(args[0], logger)
			if err != nil {
				return err
			}
			defer func() { _ = disc.Close() }()

			info, err := disc.Analyze(cmd.Context())
			if err != nil {
				return err
			}

			if format == "json" {
				return renderJSON(cmd.OutOrStdout(), info)
			}
			return renderSchemaInfo(cmd, info)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json")
	return cmd
}

func renderSchemaInfo(cmd *cobra.Command, info *schema.Info) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Database: %s (%d tables, %d rows, %.2f MB)\n\n",
		info.DatabaseType,
		info.Statistics.TotalTables,
		info.Statistics.TotalRows,
		info.Statistics.DatabaseSizeMB)

	names := make([]string, 0, len(info.Tables))
	for name := range info.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tbl := info.Tables[name]
		fmt.Fprintf(w, "Table: %s", name)
		if tbl.Purpose != "" {
			fmt.Fprintf(w, " (%s)", tbl.Purpose)
		}
		fmt.Fprintf(w, " - %d rows\n", tbl.RowCount)

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Column", "Type", "Nullable", "Key", "Purpose"})

		for _, col := range tbl.Columns {
			nullable := "YES"
			if col.NotNull {
				nullable = "NO"
			}
			key := keyMarker(col, tbl)
			t.AppendRow(table.Row{col.Name, col.Type, nullable, key, tbl.ColumnPurposes[col.Name]})
		}
		t.Render()

		if rels := info.Relationships[name]; len(rels) > 0 {
			fmt.Fprintln(w, "References:")
			for _, rel := range rels {
				fmt.Fprintf(w, "  %s.%s -> %s.%s\n", name, rel.LocalColumn, rel.RemoteTable, rel.RemoteColumn)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func keyMarker(col schema.Column, tbl *schema.Table) string {
	var marks []string
	if col.PrimaryKey {
		marks = append(marks, "PK")
	}
	for _, fk := range tbl.ForeignKeys {
		if fk.Column == col.Name {
			marks = append(marks, "FK")
			break
		}
	}
	return strings.Join(marks, ",")
}
