package schema

import "strings"

// tablePurposes maps a detected purpose to the name fragments that imply it.
// Order matters: the first matching purpose wins.
var tablePurposes = []struct {
	purpose  string
	keywords []string
}{
	{"employees", []string{"employee", "emp", "staff", "personnel", "worker", "user", "person"}},
	{"departments", []string{"department", "dept", "division", "unit", "team", "group"}},
	{"compensation", []string{"salar", "compensation", "pay", "wage", "payroll", "earning"}},
	{"projects", []string{"project", "assignment", "task", "work", "job"}},
	{"roles", []string{"role", "position", "job", "title", "designation"}},
	{"documents", []string{"document", "doc", "file", "attachment", "record"}},
	{"transactions", []string{"order", "purchase", "sale", "transaction"}},
	{"products", []string{"product", "item", "inventory", "stock"}},
	{"customers", []string{"customer", "client", "contact"}},
}

// DetectTablePurpose guesses what a table is for from its name alone.
// Returns "unknown" when no pattern matches.
func DetectTablePurpose(tableName string) string {
	name := strings.ToLower(tableName)
	for _, p := range tablePurposes {
		if containsAny(name, p.keywords) {
			return p.purpose
		}
	}
	return "unknown"
}

// DetectColumnPurpose guesses a column's role from its name, falling back
// to its declared type.
func DetectColumnPurpose(columnName, columnType string) string {
	name := strings.ToLower(columnName)
	typ := strings.ToLower(columnType)

	switch {
	case containsAny(name, []string{"id", "key"}) || strings.HasSuffix(name, "_id"):
		return "identifier"
	case containsAny(name, []string{"name", "title", "label", "fname", "lname", "first_name", "last_name"}):
		return "name"
	case containsAny(name, []string{"email", "mail", "e_mail"}):
		return "email"
	case containsAny(name, []string{"phone", "tel", "mobile", "contact"}):
		return "phone"
	case containsAny(name, []string{"date", "time", "created", "updated", "modified", "timestamp"}):
		return "datetime"
	case containsAny(name, []string{"salary", "wage", "pay", "compensation", "amount", "price", "cost"}):
		return "monetary"
	case containsAny(name, []string{"address", "location", "city", "state", "country", "zip", "postal"}):
		return "location"
	case containsAny(name, []string{"status", "state", "category", "type", "kind"}):
		return "category"
	}

	// Fall back to type affinity.
	switch {
	case containsAny(typ, []string{"varchar", "text", "char", "string"}):
		return "text"
	case containsAny(typ, []string{"int", "integer", "numeric", "decimal", "float", "real", "double"}):
		return "numeric"
	case containsAny(typ, []string{"date", "time", "timestamp", "datetime"}):
		return "datetime"
	case containsAny(typ, []string{"bool", "boolean"}):
		return "boolean"
	}

	return "unknown"
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
