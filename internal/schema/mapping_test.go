package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInfo() *Info {
	return &Info{
		Tables: map[string]*Table{
			"employees": {
				Columns: []Column{
					{Name: "id", Type: "INTEGER", PrimaryKey: true},
					{Name: "first_name", Type: "TEXT"},
					{Name: "last_name", Type: "TEXT"},
					{Name: "salary", Type: "DECIMAL"},
					{Name: "department_id", Type: "INTEGER"},
					{Name: "hire_date", Type: "DATE"},
				},
				ColumnPurposes: map[string]string{
					"id":            "identifier",
					"first_name":    "name",
					"last_name":     "name",
					"salary":        "monetary",
					"department_id": "identifier",
					"hire_date":     "datetime",
				},
				Purpose:  "employees",
				RowCount: 50,
			},
			"departments": {
				Columns: []Column{
					{Name: "id", Type: "INTEGER", PrimaryKey: true},
					{Name: "name", Type: "TEXT"},
				},
				ColumnPurposes: map[string]string{
					"id":   "identifier",
					"name": "name",
				},
				Purpose:  "departments",
				RowCount: 5,
			},
		},
		NamingPattern: DefaultPatterns(),
		DatabaseType:  "sqlite",
	}
}

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		query    string
		expected QueryType
	}{
		{"How many employees are there?", QueryTypeCount},
		{"What is the average salary?", QueryTypeAggregation},
		{"Show top 5 highest paid employees", QueryTypeRanking},
		{"sum of all salaries", QueryTypeSum},
		{"employees by department", QueryTypeGrouping},
		{"list employees", QueryTypeSelection},
		{"what happened yesterday", QueryTypeGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyQuery(tt.query))
		})
	}
}

func TestMapQuery_FindsRelevantTable(t *testing.T) {
	info := testInfo()

	m := MapQuery("How many employees are there?", info)

	require.NotEmpty(t, m.SuggestedTables)
	assert.Equal(t, "employees", m.SuggestedTables[0].TableName)
	assert.Equal(t, QueryTypeCount, m.QueryType)
	assert.Greater(t, m.Confidence, 0.0)
	assert.LessOrEqual(t, m.Confidence, 1.0)
}

func TestMapQuery_ColumnRelevance(t *testing.T) {
	info := testInfo()

	m := MapQuery("show the salary of employees", info)

	require.NotEmpty(t, m.SuggestedTables)
	cols := m.SuggestedColumns["employees"]
	require.NotEmpty(t, cols)
	assert.Equal(t, "salary", cols[0].ColumnName)
}

func TestMapQuery_NoMatch(t *testing.T) {
	info := testInfo()

	m := MapQuery("quasar flux capacitor readings", info)

	assert.Empty(t, m.SuggestedTables)
	assert.Zero(t, m.Confidence)
}

func TestMapQuery_MultiTableHint(t *testing.T) {
	info := testInfo()

	m := MapQuery("list employees and departments", info)

	require.GreaterOrEqual(t, len(m.SuggestedTables), 2)
	assert.Contains(t, m.SQLHints, "Consider JOINing tables using foreign key relationships")
}

func TestMapQuery_NilInfo(t *testing.T) {
	m := MapQuery("anything", nil)
	assert.Empty(t, m.SuggestedTables)
	assert.Zero(t, m.Confidence)
}

func TestMappingConfidence_Bounds(t *testing.T) {
	info := testInfo()
	queries := []string{
		"How many employees are there?",
		"average salary by department",
		"show everything",
		"departments",
	}
	for _, q := range queries {
		m := MapQuery(q, info)
		assert.GreaterOrEqual(t, m.Confidence, 0.0, q)
		assert.LessOrEqual(t, m.Confidence, 1.0, q)
		for _, tm := range m.SuggestedTables {
			assert.LessOrEqual(t, tm.Relevance, 1.0, q)
		}
	}
}
