package lsp

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/syntax"
)

var bibtexEntryTypes = []string{
	"article", "book", "booklet", "conference", "inbook", "incollection",
	"inproceedings", "manual", "mastersthesis", "misc", "phdthesis",
	"proceedings", "techreport", "unpublished", "string", "preamble",
	"comment",
}

var bibtexFieldNames = []string{
	"abstract", "address", "author", "booktitle", "chapter", "doi",
	"edition", "editor", "howpublished", "institution", "isbn", "issn",
	"journal", "keywords", "month", "note", "number", "organization",
	"pages", "publisher", "school", "series", "title", "url", "volume",
	"year",
}

// completeBibtexCommands contributes command completion inside BibTeX
// documents. Fields frequently carry math and formatting commands, so the
// same component-backed command set applies.
func completeBibtexCommands(ctx context.Context, req *completionRequest) []protocol.CompletionItem {
	if req.Document().BibtexTree() == nil {
		return nil
	}
	edit, ok := commandContext(req.Document(), req.Params.Position)
	if !ok {
		return nil
	}
	return componentCommandItems(req, edit)
}

// completeEntryTypes contributes entry types when the cursor follows an @
// sign in a BibTeX document.
func completeEntryTypes(ctx context.Context, req *completionRequest) []protocol.CompletionItem {
	doc := req.Document()
	tree := doc.BibtexTree()
	if tree == nil {
		return nil
	}
	edit, ok := entryTypeContext(doc.Text, req.Params.Position)
	if !ok {
		return nil
	}

	items := make([]protocol.CompletionItem, 0, len(bibtexEntryTypes))
	for _, name := range bibtexEntryTypes {
		items = append(items, protocol.CompletionItem{
			Label:    name,
			Kind:     completionKind(protocol.CompletionItemKindKeyword),
			TextEdit: &protocol.TextEdit{Range: edit, NewText: name},
			Data:     itemData{Kind: itemKindEntryType, Name: name},
		})
	}
	return items
}

// entryTypeContext reports the replace range of the entry type the cursor
// sits in: the word following an @ sign, without the @ itself.
func entryTypeContext(text string, pos protocol.Position) (protocol.Range, bool) {
	lines := splitLines(text)
	if int(pos.Line) >= len(lines) {
		return protocol.Range{}, false
	}
	line := []rune(lines[pos.Line])
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isCommandLetter(line[start-1]) {
		start--
	}
	if start == 0 || line[start-1] != '@' {
		return protocol.Range{}, false
	}
	end := col
	for end < len(line) && isCommandLetter(line[end]) {
		end++
	}
	return protocol.Range{
		Start: protocol.Position{Line: pos.Line, Character: protocol.UInteger(start)},
		End:   protocol.Position{Line: pos.Line, Character: protocol.UInteger(end)},
	}, true
}

// completeFieldNames contributes field names inside a BibTeX entry body.
func completeFieldNames(ctx context.Context, req *completionRequest) []protocol.CompletionItem {
	doc := req.Document()
	tree := doc.BibtexTree()
	if tree == nil {
		return nil
	}
	pos := req.Params.Position

	inside := false
	for i := range tree.Entries {
		entry := &tree.Entries[i]
		if entry.IsComment() {
			continue
		}
		// The field position is past the entry's opening line, where the
		// type and key live.
		if syntax.RangeContains(entry.Range, pos) && pos.Line > entry.Range.Start.Line {
			inside = true
			break
		}
	}
	if !inside {
		return nil
	}
	edit, ok := fieldNameContext(doc.Text, pos)
	if !ok {
		return nil
	}

	items := make([]protocol.CompletionItem, 0, len(bibtexFieldNames))
	for _, name := range bibtexFieldNames {
		items = append(items, protocol.CompletionItem{
			Label:    name,
			Kind:     completionKind(protocol.CompletionItemKindField),
			TextEdit: &protocol.TextEdit{Range: edit, NewText: name},
			Data:     itemData{Kind: itemKindFieldName, Name: name},
		})
	}
	return items
}

// fieldNameContext reports the replace range of a field name being typed:
// a word at the start of its line's content, before any = sign.
func fieldNameContext(text string, pos protocol.Position) (protocol.Range, bool) {
	lines := splitLines(text)
	if int(pos.Line) >= len(lines) {
		return protocol.Range{}, false
	}
	line := []rune(lines[pos.Line])
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isCommandLetter(line[start-1]) {
		start--
	}
	// Nothing but whitespace may precede the word; past an = sign the
	// cursor is in a field value.
	for i := 0; i < start; i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return protocol.Range{}, false
		}
	}
	end := col
	for end < len(line) && isCommandLetter(line[end]) {
		end++
	}
	return protocol.Range{
		Start: protocol.Position{Line: pos.Line, Character: protocol.UInteger(start)},
		End:   protocol.Position{Line: pos.Line, Character: protocol.UInteger(end)},
	}, true
}
