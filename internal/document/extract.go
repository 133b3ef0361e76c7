// Package document turns uploaded files into embedded, searchable chunks.
package document

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"gopkg.in/yaml.v3"
)

// csvSampleRows caps how many data rows are rendered into text.
const csvSampleRows = 20

// Extracted is the text content pulled out of an uploaded file.
type Extracted struct {
	Format   string
	Text     string
	Metadata map[string]string
}

// supportedFormats maps file extensions to canonical format names.
var supportedFormats = map[string]string{
	".txt":  "txt",
	".md":   "md",
	".csv":  "csv",
	".html": "html",
	".htm":  "html",
}

// SupportedFormats lists accepted file extensions, sorted.
func SupportedFormats() []string {
	exts := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// FormatFor returns the canonical format for a filename, or an error for
// unsupported extensions.
func FormatFor(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	format, ok := supportedFormats[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q (supported: %s)", ext, strings.Join(SupportedFormats(), ", "))
	}
	return format, nil
}

// Extract converts a file's raw bytes into plain text suitable for
// chunking. Markdown frontmatter becomes metadata; HTML is converted to
// markdown so headings survive as structure.
func Extract(name string, data []byte) (*Extracted, error) {
	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}

	ex := &Extracted{Format: format, Text: string(data)}
	switch format {
	case "md":
		ex.Text, ex.Metadata = stripFrontmatter(ex.Text)
	case "html":
		md, err := htmltomarkdown.ConvertString(ex.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to convert html: %w", err)
		}
		ex.Text = md
	case "csv":
		rendered, err := renderCSV(ex.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		ex.Text = rendered
	}

	ex.Text = strings.TrimSpace(ex.Text)
	if ex.Text == "" {
		return nil, fmt.Errorf("file %s has no extractable text", name)
	}
	return ex, nil
}

// renderCSV turns tabular data into searchable text: a summary header,
// the column list and up to csvSampleRows labeled rows.
func renderCSV(text string) (string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	columns := records[0]
	rows := records[1:]

	var sb strings.Builder
	fmt.Fprintf(&sb, "CSV Data: %d rows, %d columns\n", len(rows), len(columns))
	fmt.Fprintf(&sb, "Columns: %s\n\n", strings.Join(columns, ", "))

	sample := len(rows)
	if sample > csvSampleRows {
		sample = csvSampleRows
	}
	for i := 0; i < sample; i++ {
		pairs := make([]string, 0, len(columns))
		for j, col := range columns {
			value := ""
			if j < len(rows[i]) {
				value = rows[i][j]
			}
			pairs = append(pairs, fmt.Sprintf("%s: %s", col, value))
		}
		fmt.Fprintf(&sb, "Row %d: %s\n", i+1, strings.Join(pairs, " | "))
	}
	return sb.String(), nil
}

// stripFrontmatter removes a leading YAML frontmatter block and returns
// its scalar fields as metadata. Malformed frontmatter is left in place.
func stripFrontmatter(text string) (string, map[string]string) {
	if !strings.HasPrefix(text, "---\n") && !strings.HasPrefix(text, "---\r\n") {
		return text, nil
	}

	rest := text[strings.Index(text, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return text, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &raw); err != nil {
		return text, nil
	}

	meta := make(map[string]string, len(raw))
	for k, v := range raw {
		meta[k] = fmt.Sprintf("%v", v)
	}

	body := rest[end+len("\n---"):]
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	return body, meta
}
