package schema

import (
	"sort"
	"strings"
)

// Relevance thresholds below which a table or column is not suggested.
const (
	tableRelevanceThreshold  = 0.2
	columnRelevanceThreshold = 0.1
)

// MapQuery maps a natural-language query onto the discovered schema,
// scoring tables and columns by relevance and classifying the query.
func MapQuery(query string, info *Info) *Mapping {
	m := &Mapping{
		SuggestedColumns: make(map[string][]ColumnMatch),
		QueryType:        ClassifyQuery(query),
	}
	if info == nil {
		return m
	}

	q := strings.ToLower(query)

	for name, table := range info.Tables {
		rel := tableRelevance(q, name, table, info.NamingPattern)
		if rel > tableRelevanceThreshold {
			m.SuggestedTables = append(m.SuggestedTables, TableMatch{
				TableName: name,
				Relevance: rel,
				Purpose:   table.Purpose,
			})
		}
	}
	sort.Slice(m.SuggestedTables, func(i, j int) bool {
		if m.SuggestedTables[i].Relevance != m.SuggestedTables[j].Relevance {
			return m.SuggestedTables[i].Relevance > m.SuggestedTables[j].Relevance
		}
		return m.SuggestedTables[i].TableName < m.SuggestedTables[j].TableName
	})

	for _, tm := range m.SuggestedTables {
		table := info.Tables[tm.TableName]
		var matches []ColumnMatch
		for _, col := range table.Columns {
			rel := columnRelevance(q, col, table.ColumnPurposes[col.Name], info.NamingPattern)
			if rel > columnRelevanceThreshold {
				matches = append(matches, ColumnMatch{
					ColumnName: col.Name,
					Relevance:  rel,
					Purpose:    table.ColumnPurposes[col.Name],
					DataType:   col.Type,
				})
			}
		}
		sort.Slice(matches, func(i, j int) bool {
			if matches[i].Relevance != matches[j].Relevance {
				return matches[i].Relevance > matches[j].Relevance
			}
			return matches[i].ColumnName < matches[j].ColumnName
		})
		m.SuggestedColumns[tm.TableName] = matches
	}

	m.SQLHints = sqlHints(m)
	m.Confidence = mappingConfidence(m)
	return m
}

// ClassifyQuery determines the query type from keyword patterns.
func ClassifyQuery(query string) QueryType {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, []string{"count", "how many", "number of", "total"}):
		return QueryTypeCount
	case containsAny(q, []string{"average", "avg", "mean"}):
		return QueryTypeAggregation
	case containsAny(q, []string{"highest", "lowest", "top", "bottom", "max", "min"}):
		return QueryTypeRanking
	case containsAny(q, []string{"sum", "total amount", "sum of"}):
		return QueryTypeSum
	case containsAny(q, []string{"group by", "by department", "by role", "grouped by"}):
		return QueryTypeGrouping
	case containsAny(q, []string{"list", "show", "display", "get", "find", "all"}):
		return QueryTypeSelection
	default:
		return QueryTypeGeneral
	}
}

// tableRelevance scores how strongly the query refers to the given table.
func tableRelevance(query, tableName string, table *Table, patterns Patterns) float64 {
	var rel float64
	name := strings.ToLower(tableName)

	if strings.Contains(query, name) {
		rel += 0.8
	}

	// A synonym hit counts once per synonym group.
	for canonical, synonyms := range patterns.TableSynonyms {
		if name != canonical && !stringIn(name, synonyms) {
			continue
		}
		for _, syn := range synonyms {
			if strings.Contains(query, syn) {
				rel += 0.7
				break
			}
		}
	}

	if table.Purpose != "" && strings.Contains(query, table.Purpose) {
		rel += 0.6
	}

	columnMatches := 0
	for _, col := range table.Columns {
		if strings.Contains(query, strings.ToLower(col.Name)) {
			columnMatches++
			rel += 0.2
		}
	}
	if columnMatches > 2 {
		rel += 0.3
	}

	return clamp01(rel)
}

// columnRelevance scores how strongly the query refers to the given column.
func columnRelevance(query string, col Column, purpose string, patterns Patterns) float64 {
	var rel float64
	name := strings.ToLower(col.Name)
	typ := strings.ToLower(col.Type)

	if strings.Contains(query, name) {
		rel += 0.8
	}

	for canonical, synonyms := range patterns.ColumnSynonyms {
		if name != canonical && !stringIn(name, synonyms) {
			continue
		}
		for _, syn := range synonyms {
			if strings.Contains(query, syn) {
				rel += 0.7
				break
			}
		}
	}

	if purpose != "" && strings.Contains(query, purpose) {
		rel += 0.5
	}

	// Type affinity: a salary question favors numeric columns, and so on.
	if strings.Contains(query, "salary") && stringIn(typ, []string{"decimal", "numeric", "integer"}) {
		rel += 0.3
	}
	if strings.Contains(query, "name") && stringIn(typ, []string{"varchar", "text", "char"}) {
		rel += 0.3
	}
	if strings.Contains(query, "date") && strings.Contains(typ, "date") {
		rel += 0.3
	}

	return clamp01(rel)
}

// sqlHints suggests SQL constructs matching the classified query type.
func sqlHints(m *Mapping) []string {
	var hints []string
	switch m.QueryType {
	case QueryTypeCount:
		hints = append(hints, "Use SELECT COUNT(*) or COUNT(column_name)")
	case QueryTypeAggregation:
		hints = append(hints, "Use AVG() function")
	case QueryTypeRanking:
		hints = append(hints, "Use ORDER BY with LIMIT")
	case QueryTypeSum:
		hints = append(hints, "Use SUM() function")
	case QueryTypeGrouping:
		hints = append(hints, "Use GROUP BY clause")
	case QueryTypeSelection:
		hints = append(hints, "Use SELECT with WHERE conditions")
	}
	if len(m.SuggestedTables) > 1 {
		hints = append(hints, "Consider JOINing tables using foreign key relationships")
	}
	return hints
}

// mappingConfidence combines table relevance, column coverage and query
// type certainty into a single score in [0,1].
func mappingConfidence(m *Mapping) float64 {
	if len(m.SuggestedTables) == 0 {
		return 0
	}

	var totalRel float64
	for _, t := range m.SuggestedTables {
		totalRel += t.Relevance
	}
	avgTableRel := totalRel / float64(len(m.SuggestedTables))

	tablesWithColumns := 0
	for _, cols := range m.SuggestedColumns {
		if len(cols) > 0 {
			tablesWithColumns++
		}
	}
	columnCoverage := float64(tablesWithColumns) / float64(len(m.SuggestedTables))

	typeConfidence := 0.4
	if m.QueryType != QueryTypeGeneral {
		typeConfidence = 0.8
	}

	return clamp01(avgTableRel*0.4 + columnCoverage*0.3 + typeConfidence*0.3)
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

func stringIn(s string, list []string) bool {
	for _, v := range list {
		if s == v {
			return true
		}
	}
	return false
}
