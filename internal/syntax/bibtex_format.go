package syntax

import (
	"fmt"
	"strings"
)

// BibtexFormattingOptions controls how FormatEntry lays out an entry.
type BibtexFormattingOptions struct {
	LineLength   int
	TabSize      int
	InsertSpaces bool
}

// DefaultLineLength is used when the client does not configure one.
const DefaultLineLength = 120

func (o BibtexFormattingOptions) indent() string {
	if o.InsertSpaces {
		size := o.TabSize
		if size <= 0 {
			size = 4
		}
		return strings.Repeat(" ", size)
	}
	return "\t"
}

// FormatEntry renders an entry in canonical form: lowercase type, one field
// per line, values wrapped in braces and broken at the configured line
// length.
func FormatEntry(entry *BibtexEntry, options BibtexFormattingOptions) string {
	lineLength := options.LineLength
	if lineLength <= 0 {
		lineLength = DefaultLineLength
	}
	indent := options.indent()

	var sb strings.Builder
	sb.WriteString(strings.ToLower(entry.Type.Text))
	sb.WriteByte('{')
	sb.WriteString(entry.Key.Text)
	sb.WriteString(",\n")
	for _, field := range entry.Fields {
		sb.WriteString(indent)
		sb.WriteString(strings.ToLower(field.Name.Text))
		sb.WriteString(" = ")
		writeFieldValue(&sb, field.Value, len(indent)+len(field.Name.Text)+3, lineLength, indent)
		sb.WriteString(",\n")
	}
	sb.WriteByte('}')
	return sb.String()
}

func writeFieldValue(sb *strings.Builder, value string, column, lineLength int, indent string) {
	sb.WriteByte('{')
	column++
	words := strings.Fields(value)
	for i, word := range words {
		if i > 0 {
			if column+1+len(word) > lineLength {
				sb.WriteByte('\n')
				sb.WriteString(indent)
				sb.WriteString(indent)
				column = 2 * len(indent)
			} else {
				sb.WriteByte(' ')
				column++
			}
		}
		sb.WriteString(word)
		column += len(word)
	}
	sb.WriteByte('}')
}

// RenderCitation produces a short markdown rendering of a bibliography
// entry, used for citation hover and completion-item resolution.
func RenderCitation(entry *BibtexEntry) (string, bool) {
	if entry.IsComment() {
		return "", false
	}
	var parts []string
	if author, ok := entry.Field("author"); ok {
		parts = append(parts, author)
	}
	if title, ok := entry.Field("title"); ok {
		parts = append(parts, fmt.Sprintf("*%s*", title))
	}
	if journal, ok := entry.Field("journal"); ok {
		parts = append(parts, journal)
	} else if booktitle, ok := entry.Field("booktitle"); ok {
		parts = append(parts, booktitle)
	}
	if year, ok := entry.Field("year"); ok {
		parts = append(parts, year)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ". "), true
}
