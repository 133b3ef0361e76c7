// Package nlsql turns a natural-language query plus a schema mapping into
// an executable SQL SELECT statement. Generation is template-driven and
// deliberately conservative: only SELECT statements are ever produced.
package nlsql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/querymind-labs/querymind/internal/schema"
)

// defaultRankingLimit applies when a ranking query gives no explicit count.
const defaultRankingLimit = 10

var (
	yearPattern   = regexp.MustCompile(`(20\d{2})`)
	limitPattern  = regexp.MustCompile(`(?:top|bottom)\s+(\d+)`)
	salaryPattern = regexp.MustCompile(`salary[\s><=]+([,\d]+)`)
)

// sqlParts accumulates the clauses of the statement under construction.
type sqlParts struct {
	selectCols []string
	from       string
	joins      []string
	where      []string
	groupBy    []string
	orderBy    []string
	limit      int
}

// Generate builds a SQL query from the natural-language query and its
// schema mapping. Returns the empty string when no relevant table exists.
func Generate(query string, m *schema.Mapping) string {
	if m == nil || len(m.SuggestedTables) == 0 {
		return ""
	}

	q := strings.ToLower(query)
	primary := m.SuggestedTables[0].TableName
	columns := m.SuggestedColumns[primary]

	parts := sqlParts{from: primary}

	switch m.QueryType {
	case schema.QueryTypeCount:
		parts.selectCols = []string{"COUNT(*) as count"}

	case schema.QueryTypeAggregation:
		if numeric := numericColumns(columns); len(numeric) > 0 {
			parts.selectCols = []string{fmt.Sprintf("AVG(%s) as average_%s", numeric[0], numeric[0])}
		} else {
			parts.selectCols = []string{"COUNT(*) as count"}
		}

	case schema.QueryTypeSum:
		if numeric := numericColumns(columns); len(numeric) > 0 {
			parts.selectCols = []string{fmt.Sprintf("SUM(%s) as total_%s", numeric[0], numeric[0])}
		} else {
			parts.selectCols = []string{"*"}
		}

	case schema.QueryTypeRanking:
		parts.selectCols = relevantColumns(columns)
		numeric := numericColumns(columns)
		if len(numeric) > 0 {
			if containsAny(q, []string{"highest", "max", "top"}) {
				parts.orderBy = []string{numeric[0] + " DESC"}
			} else if containsAny(q, []string{"lowest", "min", "bottom"}) {
				parts.orderBy = []string{numeric[0] + " ASC"}
			}
		}
		if containsAny(q, []string{"top", "bottom"}) {
			parts.limit = extractLimit(q)
		}

	case schema.QueryTypeGrouping:
		if groupCols := groupingColumns(q, columns); len(groupCols) > 0 {
			parts.selectCols = append(append([]string{}, groupCols...), "COUNT(*) as count")
			parts.groupBy = groupCols
		} else {
			parts.selectCols = []string{"*"}
		}

	default:
		parts.selectCols = relevantColumns(columns)
	}

	parts.where = whereConditions(q, columns)

	if len(m.SuggestedTables) > 1 {
		parts.joins = joinClauses(m.SuggestedTables)
	}

	return buildSQL(parts)
}

// numericColumns returns column names suitable for aggregation, most
// relevant first.
func numericColumns(columns []schema.ColumnMatch) []string {
	var out []string
	for _, col := range columns {
		typ := strings.ToLower(col.DataType)
		if containsAny(typ, []string{"int", "numeric", "decimal", "float", "real"}) || col.Purpose == "monetary" {
			out = append(out, col.ColumnName)
		}
	}
	return out
}

// relevantColumns picks up to five of the most relevant columns, falling
// back to * when nothing matched.
func relevantColumns(columns []schema.ColumnMatch) []string {
	if len(columns) == 0 {
		return []string{"*"}
	}
	n := len(columns)
	if n > 5 {
		n = 5
	}
	out := make([]string, 0, n)
	for _, col := range columns[:n] {
		out = append(out, col.ColumnName)
	}
	return out
}

// groupingColumns finds columns to GROUP BY based on grouping vocabulary
// in the query.
func groupingColumns(query string, columns []schema.ColumnMatch) []string {
	groupSynonyms := [][]string{
		{"department", "dept", "division", "unit"},
		{"role", "position", "title", "job"},
		{"status", "state", "active"},
		{"category", "type", "kind"},
		{"location", "city", "state", "country"},
	}

	var out []string
	for _, synonyms := range groupSynonyms {
		if !containsAny(query, synonyms) {
			continue
		}
		for _, col := range columns {
			if containsAny(strings.ToLower(col.ColumnName), synonyms) {
				out = append(out, col.ColumnName)
				break
			}
		}
	}
	return out
}

// whereConditions extracts filter conditions from the query text.
func whereConditions(query string, columns []schema.ColumnMatch) []string {
	var conditions []string

	// A four-digit year filters the first date-like column.
	if match := yearPattern.FindStringSubmatch(query); match != nil {
		for _, col := range columns {
			if strings.Contains(col.Purpose, "date") {
				conditions = append(conditions,
					fmt.Sprintf("strftime('%%Y', %s) = '%s'", col.ColumnName, match[1]))
				break
			}
		}
	}

	if strings.Contains(query, "active") {
		for _, col := range columns {
			if strings.Contains(strings.ToLower(col.ColumnName), "status") {
				conditions = append(conditions, fmt.Sprintf("%s = 'active'", col.ColumnName))
				break
			}
		}
	}

	if match := salaryPattern.FindStringSubmatch(query); match != nil {
		amount := strings.ReplaceAll(match[1], ",", "")
		for _, col := range columns {
			if !strings.Contains(strings.ToLower(col.ColumnName), "salary") {
				continue
			}
			if containsAny(query, []string{">", "above", "more than"}) {
				conditions = append(conditions, fmt.Sprintf("%s > %s", col.ColumnName, amount))
			} else if containsAny(query, []string{"<", "below", "less than"}) {
				conditions = append(conditions, fmt.Sprintf("%s < %s", col.ColumnName, amount))
			}
			break
		}
	}

	return conditions
}

// joinClauses builds LEFT JOINs for the known employee/department shape.
// More exotic multi-table queries fall back to the primary table alone.
func joinClauses(tables []schema.TableMatch) []string {
	primary := tables[0].TableName
	var joins []string
	for _, t := range tables[1:] {
		secondary := t.TableName
		switch {
		case strings.Contains(strings.ToLower(secondary), "department") &&
			strings.Contains(strings.ToLower(primary), "employee"):
			joins = append(joins, fmt.Sprintf(
				"LEFT JOIN %s ON %s.department_id = %s.id", secondary, primary, secondary))
		case strings.Contains(strings.ToLower(secondary), "employee") &&
			strings.Contains(strings.ToLower(primary), "department"):
			joins = append(joins, fmt.Sprintf(
				"LEFT JOIN %s ON %s.id = %s.department_id", secondary, primary, secondary))
		}
	}
	return joins
}

// extractLimit parses "top N"/"bottom N", defaulting when no number given.
func extractLimit(query string) int {
	if match := limitPattern.FindStringSubmatch(query); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			return n
		}
	}
	return defaultRankingLimit
}

// buildSQL assembles the final statement.
func buildSQL(p sqlParts) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(p.selectCols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(p.from)

	if len(p.joins) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(p.joins, " "))
	}
	if len(p.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(p.where, " AND "))
	}
	if len(p.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(p.groupBy, ", "))
	}
	if len(p.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(p.orderBy, ", "))
	}
	if p.limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(p.limit))
	}

	return b.String()
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
