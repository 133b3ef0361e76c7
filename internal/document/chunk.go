package document

import "strings"

// Chunk is one embeddable slice of extracted text.
type Chunk struct {
	Type    string
	Content string
}

// Chunking budgets in characters. Sections in structured text get more
// room than free-form paragraphs; the sentence splitter is the fallback
// when a single block overruns its budget.
const (
	maxStructuredChunk = 700
	maxPlainChunk      = 600
	maxSentenceChunk   = 500
	csvRowsPerChunk    = 15
)

// Split divides extracted text into chunks. Markdown keeps heading
// sections together; CSV keeps the header with every row group; plain
// text packs paragraphs.
func Split(ex *Extracted) []Chunk {
	switch ex.Format {
	case "csv":
		return splitCSV(ex.Text)
	case "md", "html":
		return splitStructured(ex.Text)
	default:
		return splitPlain(ex.Text)
	}
}

// splitCSV emits the header with each group of rows so every chunk is
// interpretable on its own.
func splitCSV(text string) []Chunk {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return nil
	}
	header := lines[0]
	rows := lines[1:]
	if len(rows) == 0 {
		return []Chunk{{Type: "csv", Content: header}}
	}

	var chunks []Chunk
	for start := 0; start < len(rows); start += csvRowsPerChunk {
		end := start + csvRowsPerChunk
		if end > len(rows) {
			end = len(rows)
		}
		content := header + "\n" + strings.Join(rows[start:end], "\n")
		chunks = append(chunks, Chunk{Type: "csv", Content: content})
	}
	return chunks
}

// splitStructured groups markdown content by heading, packing adjacent
// sections until the structured budget is hit.
func splitStructured(text string) []Chunk {
	sections := headingSections(text)

	var chunks []Chunk
	var buf strings.Builder
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			chunks = append(chunks, Chunk{Type: "structured", Content: s})
		}
		buf.Reset()
	}

	for _, sec := range sections {
		if len(sec) > maxStructuredChunk {
			flush()
			for _, s := range splitSentences(sec, maxSentenceChunk) {
				chunks = append(chunks, Chunk{Type: "structured", Content: s})
			}
			continue
		}
		if buf.Len() > 0 && buf.Len()+len(sec)+2 > maxStructuredChunk {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(sec)
	}
	flush()
	return chunks
}

// splitPlain packs blank-line separated paragraphs into chunks.
func splitPlain(text string) []Chunk {
	paragraphs := splitParagraphs(text)

	var chunks []Chunk
	var buf strings.Builder
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			chunks = append(chunks, Chunk{Type: "plain", Content: s})
		}
		buf.Reset()
	}

	for _, p := range paragraphs {
		if len(p) > maxPlainChunk {
			flush()
			for _, s := range splitSentences(p, maxSentenceChunk) {
				chunks = append(chunks, Chunk{Type: "sentence", Content: s})
			}
			continue
		}
		if buf.Len() > 0 && buf.Len()+len(p)+2 > maxPlainChunk {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(p)
	}
	flush()
	return chunks
}

// headingSections splits markdown into blocks starting at each heading.
// Text before the first heading forms its own block.
func headingSections(text string) []string {
	var sections []string
	var buf strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") && buf.Len() > 0 {
			sections = append(sections, strings.TrimSpace(buf.String()))
			buf.Reset()
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	if s := strings.TrimSpace(buf.String()); s != "" {
		sections = append(sections, s)
	}
	return sections
}

// splitSentences packs sentence-terminated fragments into pieces no
// larger than budget. A single oversized sentence is emitted whole.
func splitSentences(text string, budget int) []string {
	var sentences []string
	var sb strings.Builder
	for _, r := range text {
		sb.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(sb.String()); s != "" {
				sentences = append(sentences, s)
			}
			sb.Reset()
		}
	}
	if s := strings.TrimSpace(sb.String()); s != "" {
		sentences = append(sentences, s)
	}

	var out []string
	var buf strings.Builder
	for _, s := range sentences {
		if buf.Len() > 0 && buf.Len()+len(s)+1 > budget {
			out = append(out, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(s)
	}
	if buf.Len() > 0 {
		out = append(out, buf.String())
	}
	return out
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
