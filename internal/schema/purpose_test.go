package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectTablePurpose(t *testing.T) {
	tests := []struct {
		table    string
		expected string
	}{
		{"employees", "employees"},
		{"emp_records", "employees"},
		{"staff", "employees"},
		{"departments", "departments"},
		{"dept", "departments"},
		{"salaries", "compensation"},
		{"payroll_2024", "compensation"},
		{"projects", "projects"},
		{"job_titles", "projects"}, // "job" matches projects before roles
		{"documents", "documents"},
		{"orders", "transactions"},
		{"products", "products"},
		{"customers", "customers"},
		{"widget_xyz", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectTablePurpose(tt.table))
		})
	}
}

func TestDetectColumnPurpose(t *testing.T) {
	tests := []struct {
		name     string
		col      string
		typ      string
		expected string
	}{
		{"id suffix", "employee_id", "INTEGER", "identifier"},
		{"plain id", "id", "INTEGER", "identifier"},
		{"first name", "first_name", "TEXT", "name"},
		{"email", "email", "TEXT", "email"},
		{"phone", "phone_number", "TEXT", "phone"},
		{"hire date", "hire_date", "DATE", "datetime"},
		{"salary", "salary", "DECIMAL(10,2)", "monetary"},
		{"city", "city", "TEXT", "location"},
		{"status", "status", "TEXT", "category"},
		{"text fallback", "notes", "VARCHAR(255)", "text"},
		{"numeric fallback", "score", "REAL", "numeric"},
		{"bool fallback", "flag", "BOOLEAN", "boolean"},
		{"unknown", "xyz", "BLOB", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectColumnPurpose(tt.col, tt.typ))
		})
	}
}
