package nlsql

import (
	"sort"

	"github.com/querymind-labs/querymind/internal/schema"
)

// maxSuggestions caps the number of sample queries returned.
const maxSuggestions = 10

// Suggestion is a sample query a user might ask of this database.
type Suggestion struct {
	Query    string `json:"query"`
	Category string `json:"category"`
}

// Suggestions proposes sample queries based on the discovered table
// purposes, plus a few generic ones.
func Suggestions(info *schema.Info) []Suggestion {
	var out []Suggestion
	if info == nil {
		return out
	}

	// Iterate purposes in table-name order for deterministic output.
	names := make([]string, 0, len(info.Tables))
	for name := range info.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]bool)
	for _, name := range names {
		purpose := info.Tables[name].Purpose
		if seen[purpose] {
			continue
		}
		seen[purpose] = true

		switch purpose {
		case "employees":
			out = append(out,
				Suggestion{Query: "How many employees are there?", Category: "Count"},
				Suggestion{Query: "Show all employees hired in 2024", Category: "Filter"},
				Suggestion{Query: "List employees by department", Category: "Group"},
			)
		case "departments":
			out = append(out,
				Suggestion{Query: "List all departments", Category: "List"},
				Suggestion{Query: "Show departments with more than 10 employees", Category: "Filter"},
			)
		case "compensation":
			out = append(out,
				Suggestion{Query: "What is the average salary?", Category: "Aggregation"},
				Suggestion{Query: "Show top 5 highest paid employees", Category: "Ranking"},
			)
		}
	}

	out = append(out,
		Suggestion{Query: "Show me recent data", Category: "Recent"},
		Suggestion{Query: "Find records with high values", Category: "Filter"},
		Suggestion{Query: "Group data by categories", Category: "Group"},
	)

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
