package nlsql

import (
	"fmt"
	"strings"

	"github.com/querymind-labs/querymind/internal/schema"
)

// Explanation describes how a natural-language query was interpreted
// without executing anything.
type Explanation struct {
	OriginalQuery    string                          `json:"original_query"`
	QueryType        schema.QueryType                `json:"query_type"`
	Confidence       float64                         `json:"confidence"`
	SuggestedTables  []schema.TableMatch             `json:"suggested_tables"`
	SuggestedColumns map[string][]schema.ColumnMatch `json:"suggested_columns"`
	GeneratedSQL     string                          `json:"generated_sql"`
	SQLHints         []string                        `json:"sql_hints"`
	ExplanationText  string                          `json:"explanation_text"`
}

// Explain builds an Explanation for the query from its mapping and the
// SQL that would be generated.
func Explain(query string, m *schema.Mapping, generatedSQL string) *Explanation {
	return &Explanation{
		OriginalQuery:    query,
		QueryType:        m.QueryType,
		Confidence:       m.Confidence,
		SuggestedTables:  m.SuggestedTables,
		SuggestedColumns: m.SuggestedColumns,
		GeneratedSQL:     generatedSQL,
		SQLHints:         m.SQLHints,
		ExplanationText:  explanationText(query, m, generatedSQL),
	}
}

// explanationText renders a human-readable account of the interpretation.
func explanationText(query string, m *schema.Mapping, sql string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I interpreted your query '%s' as a %s operation. ", query, m.QueryType)

	if len(m.SuggestedTables) > 0 {
		n := len(m.SuggestedTables)
		if n > 2 {
			n = 2
		}
		names := make([]string, 0, n)
		for _, t := range m.SuggestedTables[:n] {
			names = append(names, t.TableName)
		}
		fmt.Fprintf(&b, "I found these relevant tables: %s. ", strings.Join(names, ", "))
	}

	if sql != "" {
		fmt.Fprintf(&b, "This was converted to the SQL query: %s", sql)
	} else {
		b.WriteString("I couldn't generate a suitable SQL query for this request.")
	}

	fmt.Fprintf(&b, " Confidence level: %.1f%%", m.Confidence*100)
	return b.String()
}
