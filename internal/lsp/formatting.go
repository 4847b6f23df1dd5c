package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/syntax"
)

// Formatting handles the textDocument/formatting request. Only BibTeX
// documents are formatted; LaTeX formatting is left to dedicated tools.
func Formatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	req, err := makeRequest(params.TextDocument.URI, *params)
	if err != nil {
		return nil, err
	}
	tree := req.Document().BibtexTree()
	if tree == nil {
		return nil, nil
	}

	// The options arrive as a JSON object; numbers decode as float64.
	tabSize := 4
	if v, ok := params.Options[protocol.FormattingOptionTabSize].(float64); ok {
		tabSize = int(v)
	}
	insertSpaces := false
	if v, ok := params.Options[protocol.FormattingOptionInsertSpaces].(bool); ok {
		insertSpaces = v
	}

	options := syntax.BibtexFormattingOptions{
		LineLength:   req.Options.BibTeX.Formatting.LineLength,
		TabSize:      tabSize,
		InsertSpaces: insertSpaces,
	}

	var edits []protocol.TextEdit
	for i := range tree.Entries {
		entry := &tree.Entries[i]
		if entry.IsComment() {
			continue
		}
		formatted := syntax.FormatEntry(entry, options)
		edits = append(edits, protocol.TextEdit{
			Range:   entry.Range,
			NewText: formatted,
		})
	}
	return edits, nil
}
