// Package schema provides automatic SQLite schema discovery and
// natural-language-to-schema mapping. Nothing about the database is
// assumed up front: tables, columns, relationships and their likely
// purposes are inferred from metadata and naming alone.
package schema

// Column describes a single table column as reported by PRAGMA table_info.
type Column struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	NotNull      bool    `json:"not_null"`
	DefaultValue *string `json:"default_value"`
	PrimaryKey   bool    `json:"primary_key"`
}

// ForeignKey describes an outgoing foreign key reference.
type ForeignKey struct {
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// Table holds the discovered structure and content summary of one table.
type Table struct {
	Columns        []Column          `json:"columns"`
	PrimaryKeys    []string          `json:"primary_keys"`
	ForeignKeys    []ForeignKey      `json:"foreign_keys"`
	SampleData     []map[string]any  `json:"sample_data"`
	RowCount       int64             `json:"row_count"`
	ColumnPurposes map[string]string `json:"column_purposes"`
	Purpose        string            `json:"purpose"`
}

// Relationship is a foreign-key edge between two tables.
type Relationship struct {
	Type         string `json:"type"`
	LocalColumn  string `json:"local_column"`
	RemoteTable  string `json:"remote_table"`
	RemoteColumn string `json:"remote_column"`
	Strength     string `json:"relationship_strength"`
}

// Statistics summarizes database size and row counts.
type Statistics struct {
	TotalTables    int              `json:"total_tables"`
	TotalRows      int64            `json:"total_rows"`
	TableSizes     map[string]int64 `json:"table_sizes"`
	DatabaseSizeMB float64          `json:"database_size_mb"`
}

// Patterns maps natural-language vocabulary onto schema vocabulary.
type Patterns struct {
	ColumnSynonyms map[string][]string `json:"column_synonyms"`
	TableSynonyms  map[string][]string `json:"table_synonyms"`
	QueryPatterns  map[string][]string `json:"query_patterns"`
}

// Info is the complete result of analyzing a database.
type Info struct {
	Tables        map[string]*Table         `json:"tables"`
	Relationships map[string][]Relationship `json:"relationships"`
	Statistics    Statistics                `json:"statistics"`
	NamingPattern Patterns                  `json:"naming_patterns"`
	DatabaseType  string                    `json:"database_type"`
}

// QueryType classifies what kind of answer a natural-language query wants.
type QueryType string

// Known query types, from most to least specific.
const (
	QueryTypeCount       QueryType = "count"
	QueryTypeAggregation QueryType = "aggregation"
	QueryTypeRanking     QueryType = "ranking"
	QueryTypeSum         QueryType = "sum"
	QueryTypeGrouping    QueryType = "grouping"
	QueryTypeSelection   QueryType = "selection"
	QueryTypeGeneral     QueryType = "general"
)

// TableMatch scores a table's relevance to a natural-language query.
type TableMatch struct {
	TableName string  `json:"table_name"`
	Relevance float64 `json:"relevance"`
	Purpose   string  `json:"purpose"`
}

// ColumnMatch scores a column's relevance to a natural-language query.
type ColumnMatch struct {
	ColumnName string  `json:"column_name"`
	Relevance  float64 `json:"relevance"`
	Purpose    string  `json:"purpose"`
	DataType   string  `json:"data_type"`
}

// Mapping is the bridge between a natural-language query and the schema:
// which tables and columns it likely refers to, what kind of query it is,
// and how confident the mapper is overall.
type Mapping struct {
	SuggestedTables  []TableMatch             `json:"suggested_tables"`
	SuggestedColumns map[string][]ColumnMatch `json:"suggested_columns"`
	QueryType        QueryType                `json:"query_type"`
	Confidence       float64                  `json:"confidence"`
	SQLHints         []string                 `json:"sql_hints"`
}
