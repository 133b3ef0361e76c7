package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PlainText(t *testing.T) {
	ex, err := Extract("notes.txt", []byte("  hello world  \n"))
	require.NoError(t, err)
	assert.Equal(t, "txt", ex.Format)
	assert.Equal(t, "hello world", ex.Text)
	assert.Nil(t, ex.Metadata)
}

func TestExtract_MarkdownFrontmatter(t *testing.T) {
	src := "---\ntitle: Employee Handbook\nversion: 2\n---\n# Benefits\nAll employees receive benefits."
	ex, err := Extract("handbook.md", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "md", ex.Format)
	assert.Equal(t, "Employee Handbook", ex.Metadata["title"])
	assert.Equal(t, "2", ex.Metadata["version"])
	assert.NotContains(t, ex.Text, "title:")
	assert.Contains(t, ex.Text, "# Benefits")
}

func TestExtract_MarkdownMalformedFrontmatter(t *testing.T) {
	src := "---\n:not yaml at all ][\n---\nbody"
	ex, err := Extract("broken.md", []byte(src))
	require.NoError(t, err)
	// Malformed frontmatter stays part of the text.
	assert.Contains(t, ex.Text, "not yaml")
	assert.Nil(t, ex.Metadata)
}

func TestExtract_HTML(t *testing.T) {
	src := "<html><body><h1>Policies</h1><p>Remote work is allowed.</p></body></html>"
	ex, err := Extract("policies.html", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "html", ex.Format)
	assert.Contains(t, ex.Text, "# Policies")
	assert.Contains(t, ex.Text, "Remote work is allowed.")
	assert.NotContains(t, ex.Text, "<p>")
}

func TestExtract_CSV(t *testing.T) {
	src := "name,salary\nAda,95000\nBrent,72000\n"
	ex, err := Extract("payroll.csv", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "csv", ex.Format)
	assert.Contains(t, ex.Text, "CSV Data: 2 rows, 2 columns")
	assert.Contains(t, ex.Text, "Columns: name, salary")
	assert.Contains(t, ex.Text, "Row 1: name: Ada | salary: 95000")
	assert.Contains(t, ex.Text, "Row 2: name: Brent | salary: 72000")
}

func TestExtract_CSVMalformed(t *testing.T) {
	_, err := Extract("bad.csv", []byte("a,\"b\nno closing quote"))
	assert.ErrorContains(t, err, "failed to parse csv")
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	_, err := Extract("report.pdf", []byte("%PDF-1.4"))
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestExtract_EmptyFile(t *testing.T) {
	_, err := Extract("empty.txt", []byte("   \n\t"))
	assert.ErrorContains(t, err, "no extractable text")
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	assert.Contains(t, formats, ".txt")
	assert.Contains(t, formats, ".md")
	assert.Contains(t, formats, ".csv")
	assert.Contains(t, formats, ".html")
}
