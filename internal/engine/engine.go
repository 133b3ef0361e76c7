// Package engine orchestrates schema discovery, natural language query
// translation and SQL execution against a connected SQLite database.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/querymind-labs/querymind/internal/nlsql"
	"github.com/querymind-labs/querymind/internal/schema"
)

// Defaults for query execution limits.
const (
	DefaultTimeout = 30 * time.Second
	DefaultMaxRows = 1000
)

// Options tune query execution.
type Options struct {
	Timeout time.Duration
	MaxRows int
}

// QueryResult is the outcome of executing a natural language query.
type QueryResult struct {
	Query      string           `json:"query"`
	SQL        string           `json:"sql"`
	QueryType  schema.QueryType `json:"query_type"`
	Confidence float64          `json:"confidence"`
	Columns    []string         `json:"columns"`
	Rows       []map[string]any `json:"rows"`
	RowCount   int              `json:"row_count"`
	Truncated  bool             `json:"truncated"`
	ElapsedMS  int64            `json:"elapsed_ms"`
}

// Validation reports whether a natural language query can be answered.
type Validation struct {
	Valid      bool     `json:"valid"`
	SQL        string   `json:"sql,omitempty"`
	Confidence float64  `json:"confidence"`
	Issues     []string `json:"issues,omitempty"`
}

// Engine holds the connection to the current database and its analyzed
// schema. Safe for concurrent use.
type Engine struct {
	logger  *slog.Logger
	timeout time.Duration
	maxRows int

	mu   sync.RWMutex
	disc *schema.Discovery
	info *schema.Info
}

// New creates an engine with the given execution options.
func New(logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	return &Engine{logger: logger, timeout: opts.Timeout, maxRows: opts.MaxRows}
}

// Connect opens the SQLite database at path, analyzes its schema and
// makes it the engine's current database. Any previous connection is
// closed.
func (e *Engine) Connect(ctx context.Context, path string) (*schema.Info, error) {
	disc, err := schema.Open(path, e.logger)
	if err != nil {
		return nil, err
	}

	info, err := disc.Analyze(ctx)
	if err != nil {
		disc.Close()
		return nil, fmt.Errorf("failed to analyze schema: %w", err)
	}

	e.mu.Lock()
	old := e.disc
	e.disc = disc
	e.info = info
	e.mu.Unlock()

	if old != nil {
		old.Close()
	}

	e.logger.Info("database connected", "path", path, "tables", len(info.Tables))
	return info, nil
}

// Info returns the cached schema of the current database, or nil when
// not connected.
func (e *Engine) Info() *schema.Info {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.info
}

// Path returns the file path of the current database, or "" when not
// connected.
func (e *Engine) Path() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.disc == nil {
		return ""
	}
	return e.disc.Path()
}

// Connected reports whether a database is attached.
func (e *Engine) Connected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.disc != nil
}

// Close releases the current database connection.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disc == nil {
		return nil
	}
	err := e.disc.Close()
	e.disc = nil
	e.info = nil
	return err
}

// MapQuery maps a natural language query onto the current schema.
func (e *Engine) MapQuery(query string) (*schema.Mapping, error) {
	info := e.Info()
	if info == nil {
		return nil, fmt.Errorf("no database connected")
	}
	return schema.MapQuery(query, info), nil
}

// Explain translates a query without running it.
func (e *Engine) Explain(query string) (*nlsql.Explanation, error) {
	mapping, err := e.MapQuery(query)
	if err != nil {
		return nil, err
	}
	return nlsql.Explain(query, mapping, nlsql.Generate(query, mapping)), nil
}

// Validate checks whether a query can be answered against the schema.
func (e *Engine) Validate(query string) (*Validation, error) {
	mapping, err := e.MapQuery(query)
	if err != nil {
		return nil, err
	}

	v := &Validation{Confidence: mapping.Confidence}
	if len(mapping.SuggestedTables) == 0 {
		v.Issues = append(v.Issues, "no matching tables found for this query")
		return v, nil
	}
	if len(mapping.SuggestedColumns) == 0 {
		v.Issues = append(v.Issues, "no matching columns found; results may be broad")
	}

	v.SQL = nlsql.Generate(query, mapping)
	if v.SQL == "" {
		v.Issues = append(v.Issues, "could not generate SQL for this query")
		return v, nil
	}
	v.Valid = true
	return v, nil
}

// Suggestions proposes example queries for the current schema.
func (e *Engine) Suggestions() []nlsql.Suggestion {
	return nlsql.Suggestions(e.Info())
}

// Execute translates a natural language query to SQL and runs it.
func (e *Engine) Execute(ctx context.Context, query string) (*QueryResult, error) {
	e.mu.RLock()
	disc := e.disc
	info := e.info
	e.mu.RUnlock()
	if disc == nil {
		return nil, fmt.Errorf("no database connected")
	}

	mapping := schema.MapQuery(query, info)
	if len(mapping.SuggestedTables) == 0 {
		return nil, fmt.Errorf("could not match query %q to any table", query)
	}

	sqlText := nlsql.Generate(query, mapping)
	if sqlText == "" {
		return nil, fmt.Errorf("could not generate SQL for query %q", query)
	}

	result, err := e.ExecuteSQL(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	result.Query = query
	result.QueryType = mapping.QueryType
	result.Confidence = mapping.Confidence
	return result, nil
}

// ExecuteSQL runs a read-only statement against the current database.
// Only SELECT (and WITH ... SELECT) statements are accepted.
func (e *Engine) ExecuteSQL(ctx context.Context, sqlText string) (*QueryResult, error) {
	e.mu.RLock()
	disc := e.disc
	e.mu.RUnlock()
	if disc == nil {
		return nil, fmt.Errorf("no database connected")
	}
	if err := checkReadOnly(sqlText); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	columns, rows, truncated, err := QueryRows(ctx, disc.DB(), sqlText, e.maxRows)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	elapsed := time.Since(start)

	e.logger.Debug("sql executed", "rows", len(rows), "truncated", truncated, "elapsed", elapsed)
	return &QueryResult{
		SQL:       sqlText,
		Columns:   columns,
		Rows:      rows,
		RowCount:  len(rows),
		Truncated: truncated,
		ElapsedMS: elapsed.Milliseconds(),
	}, nil
}

// QueryRows runs sqlText and collects at most maxRows rows as column
// name to value maps. Byte slices are converted to strings so results
// serialize cleanly.
func QueryRows(ctx context.Context, db *sql.DB, sqlText string, maxRows int) ([]string, []map[string]any, bool, error) {
	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, false, err
	}

	var out []map[string]any
	truncated := false
	for rows.Next() {
		if maxRows > 0 && len(out) >= maxRows {
			truncated = true
			break
		}

		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, false, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, err
	}
	return columns, out, truncated, nil
}

// checkReadOnly rejects anything but a single SELECT statement.
func checkReadOnly(sqlText string) error {
	trimmed := strings.TrimSpace(sqlText)
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("only SELECT statements are allowed")
	}
	if i := strings.Index(trimmed, ";"); i >= 0 && strings.TrimSpace(trimmed[i+1:]) != "" {
		return fmt.Errorf("multiple statements are not allowed")
	}
	return nil
}
