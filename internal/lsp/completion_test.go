package lsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/feature"
)

func position(line, character int) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(character),
	}
}

func itemLabels(items []protocol.CompletionItem) []string {
	var labels []string
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	return labels
}

func editRange(line1, char1, line2, char2 int) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(line1), Character: protocol.UInteger(char1)},
		End:   protocol.Position{Line: protocol.UInteger(line2), Character: protocol.UInteger(char2)},
	}
}

// textEditRange unwraps the item's main edit; the protocol field also
// admits InsertReplaceEdit, which this server never produces.
func textEditRange(t *testing.T, item protocol.CompletionItem) protocol.Range {
	t.Helper()
	edit, ok := item.TextEdit.(*protocol.TextEdit)
	require.True(t, ok)
	return edit.Range
}

func TestCompleteBibtexCommands(t *testing.T) {
	req := feature.NewTester().
		File("main.bib", "@article{foo, bar=\n\\}").
		Main("main.bib").
		Position(1, 1).
		CompletionRequest()

	items := completeBibtexCommands(context.Background(), req)
	require.NotEmpty(t, items)
	// The replace range covers the command token without its backslash.
	for _, item := range items {
		assert.Equal(t, editRange(1, 1, 1, 2), textEditRange(t, item))
	}
}

func TestCompleteBibtexCommandsAtBackslash(t *testing.T) {
	req := feature.NewTester().
		File("main.bib", "@article{foo, bar=\n\\}").
		Main("main.bib").
		Position(1, 0).
		CompletionRequest()

	assert.Empty(t, completeBibtexCommands(context.Background(), req))
}

func TestCompleteLatexCommands(t *testing.T) {
	req := feature.NewTester().
		File("main.tex", "\\usepackage{amsmath}\n\\alp").
		Main("main.tex").
		Position(1, 4).
		CompletionRequest()

	items := completeLatexCommands(context.Background(), req)
	labels := itemLabels(items)
	// Kernel commands are always offered.
	assert.Contains(t, labels, "section")
	// amsmath contributes because the document imports it.
	assert.Contains(t, labels, "boldsymbol")

	for _, item := range items {
		assert.Equal(t, editRange(1, 1, 1, 4), textEditRange(t, item))
	}
}

func TestCompleteLatexCommandsWithoutImport(t *testing.T) {
	req := feature.NewTester().
		File("main.tex", `\alp`).
		Main("main.tex").
		Position(0, 4).
		CompletionRequest()

	labels := itemLabels(completeLatexCommands(context.Background(), req))
	assert.Contains(t, labels, "section")
	assert.NotContains(t, labels, "boldsymbol")
}

func TestCompleteUserCommands(t *testing.T) {
	req := feature.NewTester().
		File("main.tex", "\\newcommand{\\vectorsum}{x}\n\\vec").
		Main("main.tex").
		Position(1, 4).
		CompletionRequest()

	labels := itemLabels(completeLatexCommands(context.Background(), req))
	assert.Contains(t, labels, "vectorsum")
}

func TestCompleteEnvironments(t *testing.T) {
	req := feature.NewTester().
		File("main.tex", `\begin{ali`).
		Main("main.tex").
		Position(0, 10).
		CompletionRequest()

	items := completeEnvironments(context.Background(), req)
	labels := itemLabels(items)
	assert.Contains(t, labels, "itemize")
	for _, item := range items {
		assert.Equal(t, editRange(0, 7, 0, 10), textEditRange(t, item))
	}
}

func TestCompleteEnvironmentsFromImports(t *testing.T) {
	req := feature.NewTester().
		File("main.tex", "\\usepackage{amsmath}\n\\begin{").
		Main("main.tex").
		Position(1, 7).
		CompletionRequest()

	labels := itemLabels(completeEnvironments(context.Background(), req))
	assert.Contains(t, labels, "align")
}

func TestCompleteCitations(t *testing.T) {
	req := feature.NewTester().
		File("main.tex", "\\addbibresource{refs.bib}\n\\cite{").
		File("refs.bib", "@article{knuth1984, title={X}}\n@book{lamport1994, title={Y}}").
		Main("main.tex").
		Position(1, 6).
		CompletionRequest()

	items := completeCitations(context.Background(), req)
	assert.ElementsMatch(t, []string{"knuth1984", "lamport1994"}, itemLabels(items))
}

func TestCompleteCitationsOutsideCiteCommand(t *testing.T) {
	req := feature.NewTester().
		File("main.tex", "\\addbibresource{refs.bib}\n\\section{").
		File("refs.bib", "@article{knuth1984, title={X}}").
		Main("main.tex").
		Position(1, 9).
		CompletionRequest()

	assert.Empty(t, completeCitations(context.Background(), req))
}

func TestCompleteLabelReferences(t *testing.T) {
	req := feature.NewTester().
		File("main.tex", "\\label{sec:intro}\n\\ref{").
		Main("main.tex").
		Position(1, 5).
		CompletionRequest()

	labels := itemLabels(completeLabelReferences(context.Background(), req))
	assert.Equal(t, []string{"sec:intro"}, labels)
}

func TestCompleteImports(t *testing.T) {
	req := feature.NewTester().
		File("main.tex", `\usepackage{amsm`).
		Main("main.tex").
		Position(0, 16).
		CompletionRequest()

	items := completeImports(context.Background(), req)
	labels := itemLabels(items)
	assert.Contains(t, labels, "amsmath")
	assert.NotContains(t, labels, "article")
}

func TestCompleteImportsClasses(t *testing.T) {
	req := feature.NewTester().
		File("main.tex", `\documentclass{art`).
		Main("main.tex").
		Position(0, 18).
		CompletionRequest()

	labels := itemLabels(completeImports(context.Background(), req))
	assert.Contains(t, labels, "article")
	assert.NotContains(t, labels, "amsmath")
}

func TestCompleteEntryTypes(t *testing.T) {
	req := feature.NewTester().
		File("main.bib", `@art`).
		Main("main.bib").
		Position(0, 4).
		CompletionRequest()

	items := completeEntryTypes(context.Background(), req)
	labels := itemLabels(items)
	assert.Contains(t, labels, "article")
	for _, item := range items {
		assert.Equal(t, editRange(0, 1, 0, 4), textEditRange(t, item))
	}
}

func TestCompleteFieldNames(t *testing.T) {
	req := feature.NewTester().
		File("main.bib", "@article{foo,\n  ti").
		Main("main.bib").
		Position(1, 4).
		CompletionRequest()

	items := completeFieldNames(context.Background(), req)
	labels := itemLabels(items)
	assert.Contains(t, labels, "title")
	for _, item := range items {
		assert.Equal(t, editRange(1, 2, 1, 4), textEditRange(t, item))
	}
}

func TestCompleteFieldNamesOutsideEntry(t *testing.T) {
	req := feature.NewTester().
		File("main.bib", "@article{foo, title={X}}\nstray").
		Main("main.bib").
		Position(1, 3).
		CompletionRequest()

	assert.Empty(t, completeFieldNames(context.Background(), req))
}

func TestFindArgumentContext(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		line    int
		char    int
		command string
		prefix  string
	}{
		{"empty group", `\cite{`, 0, 6, "cite", ""},
		{"partial prefix", `\cite{knu`, 0, 9, "cite", "knu"},
		{"second element", `\cite{a, b`, 0, 10, "cite", "b"},
		{"optional group", `\usepackage[utf8]{inpu`, 0, 22, "usepackage", "inpu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arg := findArgumentContext(tt.text, position(tt.line, tt.char))
			require.NotNil(t, arg)
			assert.Equal(t, tt.command, arg.Command)
			assert.Equal(t, tt.prefix, arg.Prefix)
		})
	}
}

func TestFindArgumentContextMisses(t *testing.T) {
	tests := []struct {
		name string
		text string
		char int
	}{
		{"plain text", "hello world", 5},
		{"after closed group", `\cite{a} `, 9},
		{"inside command name", `\cite{`, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, findArgumentContext(tt.text, position(0, tt.char)))
		})
	}
}

func TestCompletionResolvePackage(t *testing.T) {
	item := &protocol.CompletionItem{
		Label: "amsmath",
		Data:  map[string]any{"kind": "package", "name": "amsmath"},
	}

	resolved, err := CompletionResolve(nil, item)
	require.NoError(t, err)
	require.NotNil(t, resolved.Documentation)
	content, ok := resolved.Documentation.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Contains(t, content.Value, "amsmath.sty")
}

func TestCompletionResolveMalformedData(t *testing.T) {
	items := []*protocol.CompletionItem{
		{Label: "a"},
		{Label: "b", Data: "garbage"},
		{Label: "c", Data: map[string]any{"unexpected": true}},
	}
	for _, item := range items {
		resolved, err := CompletionResolve(nil, item)
		require.NoError(t, err)
		assert.Nil(t, resolved.Documentation)
	}
}
