package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/server"
	"texls/internal/syntax"
)

func TestFormattingBibtexDocument(t *testing.T) {
	srv := server.New()
	SetServer(srv)
	defer SetServer(nil)

	uri := "file:///refs.bib"
	srv.Workspace().Open(uri, `@ARTICLE{foo, Author={Bar Baz}}`, syntax.LanguageBibtex, srv.Options())

	edits, err := Formatting(nil, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Options: protocol.FormattingOptions{
			protocol.FormattingOptionTabSize:      float64(2),
			protocol.FormattingOptionInsertSpaces: true,
		},
	})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "@article{foo,\n  author = {Bar Baz},\n}", edits[0].NewText)
	assert.Equal(t, position(0, 0), edits[0].Range.Start)
}

func TestFormattingLatexDocument(t *testing.T) {
	srv := server.New()
	SetServer(srv)
	defer SetServer(nil)

	uri := "file:///main.tex"
	srv.Workspace().Open(uri, `\documentclass{article}`, syntax.LanguageLatex, srv.Options())

	edits, err := Formatting(nil, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Options:      protocol.FormattingOptions{},
	})
	require.NoError(t, err)
	assert.Nil(t, edits)
}

func TestFormattingUnknownDocument(t *testing.T) {
	SetServer(server.New())
	defer SetServer(nil)

	_, err := Formatting(nil, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///ghost.bib"},
		Options:      protocol.FormattingOptions{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document")
}
