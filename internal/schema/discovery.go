package schema

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// sampleRowLimit bounds how many rows are fetched per table for previews.
const sampleRowLimit = 3

// Discovery analyzes a single SQLite database file.
type Discovery struct {
	path   string
	db     *sql.DB
	logger *slog.Logger
}

// Open opens the database at path for introspection.
// The file must already exist; Discovery never creates databases.
func Open(path string, logger *slog.Logger) (*Discovery, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database file not found: %s", path)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Discovery{path: path, db: db, logger: logger}, nil
}

// Close closes the underlying connection.
func (d *Discovery) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// DB exposes the underlying connection for query execution.
func (d *Discovery) DB() *sql.DB {
	return d.db
}

// Path returns the database file path.
func (d *Discovery) Path() string {
	return d.path
}

// Analyze discovers the full schema: tables, relationships, naming
// patterns and statistics. No table or column names are assumed.
func (d *Discovery) Analyze(ctx context.Context) (*Info, error) {
	if d.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	tables, err := d.listTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	d.logger.Debug("discovered tables", slog.Int("count", len(tables)))

	info := &Info{
		Tables:        make(map[string]*Table, len(tables)),
		Relationships: make(map[string][]Relationship, len(tables)),
		NamingPattern: DefaultPatterns(),
		DatabaseType:  "sqlite",
	}

	for _, name := range tables {
		t, err := d.analyzeTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze table %s: %w", name, err)
		}
		t.Purpose = DetectTablePurpose(name)
		info.Tables[name] = t

		rels := make([]Relationship, 0, len(t.ForeignKeys))
		for _, fk := range t.ForeignKeys {
			rels = append(rels, Relationship{
				Type:         "foreign_key",
				LocalColumn:  fk.Column,
				RemoteTable:  fk.ReferencedTable,
				RemoteColumn: fk.ReferencedColumn,
				Strength:     "strong",
			})
		}
		info.Relationships[name] = rels
	}

	info.Statistics = d.collectStatistics(tables, info.Tables)

	d.logger.Info("schema analysis complete",
		slog.String("database", d.path),
		slog.Int("tables", len(tables)))

	return info, nil
}

// listTables returns user table names, excluding SQLite internals.
func (d *Discovery) listTables(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// analyzeTable inspects one table's structure and content summary.
func (d *Discovery) analyzeTable(ctx context.Context, name string) (*Table, error) {
	t := &Table{
		ColumnPurposes: make(map[string]string),
	}

	cols, err := d.tableColumns(ctx, name)
	if err != nil {
		return nil, err
	}
	t.Columns = cols
	for _, c := range cols {
		if c.PrimaryKey {
			t.PrimaryKeys = append(t.PrimaryKeys, c.Name)
		}
		t.ColumnPurposes[c.Name] = DetectColumnPurpose(c.Name, c.Type)
	}

	fks, err := d.foreignKeys(ctx, name)
	if err != nil {
		return nil, err
	}
	t.ForeignKeys = fks

	// Sample data and row count are best-effort: a corrupt or virtual
	// table should not sink the whole analysis.
	sample, err := d.sampleRows(ctx, name)
	if err != nil {
		d.logger.Warn("could not fetch sample data", slog.String("table", name), slog.Any("error", err))
	} else {
		t.SampleData = sample
	}

	count, err := d.rowCount(ctx, name)
	if err != nil {
		d.logger.Warn("could not count rows", slog.String("table", name), slog.Any("error", err))
	} else {
		t.RowCount = count
	}

	return t, nil
}

func (d *Discovery) tableColumns(ctx context.Context, name string) ([]Column, error) {
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(name)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cols []Column
	for rows.Next() {
		var (
			cid     int
			col     Column
			notNull int
			pk      int
			dflt    sql.NullString
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		col.NotNull = notNull != 0
		col.PrimaryKey = pk != 0
		if dflt.Valid {
			v := dflt.String
			col.DefaultValue = &v
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (d *Discovery) foreignKeys(ctx context.Context, name string) ([]ForeignKey, error) {
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(name)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var fks []ForeignKey
	for rows.Next() {
		var (
			id, seq               int
			table, from           string
			to                    sql.NullString
			onUpdate, onDelete, m string
		)
		if err := rows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &m); err != nil {
			return nil, err
		}
		fk := ForeignKey{Column: from, ReferencedTable: table}
		if to.Valid {
			fk.ReferencedColumn = to.String
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (d *Discovery) sampleRows(ctx context.Context, name string) ([]map[string]any, error) {
	rows, err := d.db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(name), sampleRowLimit))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[c] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *Discovery) rowCount(ctx context.Context, name string) (int64, error) {
	var count int64
	err := d.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(name))).Scan(&count)
	return count, err
}

// collectStatistics aggregates table sizes and the file size on disk.
func (d *Discovery) collectStatistics(names []string, tables map[string]*Table) Statistics {
	stats := Statistics{
		TotalTables: len(names),
		TableSizes:  make(map[string]int64, len(names)),
	}
	for _, name := range names {
		if t, ok := tables[name]; ok {
			stats.TotalRows += t.RowCount
			stats.TableSizes[name] = t.RowCount
		}
	}
	if fi, err := os.Stat(d.path); err == nil {
		mb := float64(fi.Size()) / (1024 * 1024)
		stats.DatabaseSizeMB = float64(int(mb*100+0.5)) / 100
	}
	return stats
}

// quoteIdent quotes an identifier for safe interpolation into SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
