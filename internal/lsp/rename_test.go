package lsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/feature"
)

func TestRenameLabel(t *testing.T) {
	tester := feature.NewTester().
		File("main.tex", "\\begin{document}\\input{chapter}\\label{sec:a}\\end{document}").
		File("chapter.tex", `\ref{sec:a}`).
		Main("chapter.tex").
		Position(0, 7).
		NewName("sec:b")

	edit := renameLabel(context.Background(), tester.RenameRequest())
	require.NotNil(t, edit)
	require.Len(t, edit.Changes, 2)
	for _, edits := range edit.Changes {
		for _, textEdit := range edits {
			assert.Equal(t, "sec:b", textEdit.NewText)
		}
	}
}

func TestRenameCitation(t *testing.T) {
	tester := feature.NewTester().
		File("main.tex", "\\addbibresource{refs.bib}\n\\cite{knuth1984}").
		File("refs.bib", "@article{knuth1984, title={X}}").
		Main("main.tex").
		Position(1, 8).
		NewName("knuth84")

	edit := renameCitation(context.Background(), tester.RenameRequest())
	require.NotNil(t, edit)
	// Both the citation and the entry key change.
	require.Len(t, edit.Changes, 2)
	assert.Len(t, edit.Changes[tester.URI("main.tex")], 1)
	assert.Len(t, edit.Changes[tester.URI("refs.bib")], 1)
}

func TestRenameCommand(t *testing.T) {
	tester := feature.NewTester().
		File("main.tex", "\\foo\n\\foo{x}").
		Main("main.tex").
		Position(0, 2).
		NewName("bar")

	edit := renameCommand(context.Background(), tester.RenameRequest())
	require.NotNil(t, edit)
	edits := edit.Changes[tester.URI("main.tex")]
	require.Len(t, edits, 2)
	for _, textEdit := range edits {
		assert.Equal(t, `\bar`, textEdit.NewText)
	}
}

func TestRenameCommandRejectsBeginEnd(t *testing.T) {
	tester := feature.NewTester().
		File("main.tex", `\begin{align}\end{align}`).
		Main("main.tex").
		Position(0, 2).
		NewName("anything")

	assert.Nil(t, renameCommand(context.Background(), tester.RenameRequest()))
}

func TestRenameEnvironment(t *testing.T) {
	tester := feature.NewTester().
		File("main.tex", "\\begin{align}\nx\n\\end{align}").
		Main("main.tex").
		Position(0, 9).
		NewName("gather")

	edit := renameEnvironment(context.Background(), tester.RenameRequest())
	require.NotNil(t, edit)
	edits := edit.Changes[tester.URI("main.tex")]
	require.Len(t, edits, 2)
	assert.Equal(t, "gather", edits[0].NewText)
	assert.Equal(t, "gather", edits[1].NewText)
}

func TestRenameTokenRange(t *testing.T) {
	tester := feature.NewTester().
		File("main.tex", `\label{sec:a}`).
		Main("main.tex").
		Position(0, 9)

	rng, ok := renameTokenRange(tester.RenameRequest())
	require.True(t, ok)
	assert.Equal(t, protocol.UInteger(7), rng.Start.Character)
	assert.Equal(t, protocol.UInteger(12), rng.End.Character)
}

func TestRenameTokenRangeNothing(t *testing.T) {
	tester := feature.NewTester().
		File("main.tex", "plain text").
		Main("main.tex").
		Position(0, 3)

	_, ok := renameTokenRange(tester.RenameRequest())
	assert.False(t, ok)
}
