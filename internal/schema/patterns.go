package schema

// DefaultPatterns returns the built-in vocabulary used to bridge
// natural-language terms and schema identifiers. The maps are keyed by
// canonical names; values are the synonyms a user is likely to type.
func DefaultPatterns() Patterns {
	return Patterns{
		ColumnSynonyms: map[string][]string{
			"employee_id": {"emp_id", "staff_id", "worker_id", "personnel_id", "user_id"},
			"first_name":  {"fname", "given_name", "forename", "name"},
			"last_name":   {"lname", "surname", "family_name"},
			"full_name":   {"name", "employee_name", "person_name"},
			"salary":      {"wage", "pay", "compensation", "income", "earnings"},
			"department":  {"dept", "division", "unit", "section", "team"},
			"hire_date":   {"start_date", "join_date", "employment_date", "hired"},
			"email":       {"email_address", "mail", "e_mail", "contact_email"},
			"phone":       {"phone_number", "telephone", "mobile", "contact_number"},
			"address":     {"location", "street_address", "home_address"},
			"position":    {"job_title", "role", "designation", "title"},
			"manager":     {"supervisor", "boss", "lead", "manager_id"},
			"status":      {"state", "condition", "active", "inactive"},
		},
		TableSynonyms: map[string][]string{
			"employees":   {"employee", "emp", "staff", "personnel", "worker", "people"},
			"departments": {"department", "dept", "division", "unit", "team"},
			"salaries":    {"salary", "compensation", "pay", "wage", "payroll"},
			"projects":    {"project", "assignment", "task", "work"},
			"orders":      {"order", "purchase", "sale", "transaction"},
			"customers":   {"customer", "client", "contact", "user"},
			"products":    {"product", "item", "inventory", "stock"},
		},
		QueryPatterns: map[string][]string{
			"count":   {"how many", "number of", "count of", "total"},
			"average": {"average", "avg", "mean"},
			"maximum": {"highest", "max", "maximum", "top", "largest"},
			"minimum": {"lowest", "min", "minimum", "bottom", "smallest"},
			"list":    {"show", "display", "list", "get", "find", "all"},
			"filter":  {"where", "with", "having", "that have"},
			"group":   {"by department", "by role", "group by", "grouped by"},
		},
	}
}
