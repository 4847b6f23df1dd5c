package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const knuthEntry = `@article{knuth1984,
  author = {Donald E. Knuth},
  title = {Literate Programming},
  year = 1984
}`

func TestParseBibtexEntry(t *testing.T) {
	tree := ParseBibtex(knuthEntry)

	require.Len(t, tree.Entries, 1)
	entry := tree.Entries[0]
	assert.Equal(t, "@article", entry.Type.Text)
	assert.Equal(t, makeRange(0, 0, 0, 8), entry.Type.Range)
	assert.Equal(t, "knuth1984", entry.Key.Text)
	assert.Equal(t, makeRange(0, 9, 0, 18), entry.Key.Range)
	assert.Equal(t, makeRange(0, 0, 4, 1), entry.Range)
	assert.Empty(t, tree.Errors)

	require.Len(t, entry.Fields, 3)
	author, ok := entry.Field("AUTHOR")
	require.True(t, ok)
	assert.Equal(t, "Donald E. Knuth", author)
	year, ok := entry.Field("year")
	require.True(t, ok)
	assert.Equal(t, "1984", year)
	_, ok = entry.Field("missing")
	assert.False(t, ok)
}

func TestParseBibtexMultipleEntries(t *testing.T) {
	tree := ParseBibtex("@book{a, title={A}}\n@misc{b, title={B}}")

	require.Len(t, tree.Entries, 2)
	assert.NotNil(t, tree.EntryByKey("a"))
	assert.NotNil(t, tree.EntryByKey("b"))
	assert.Nil(t, tree.EntryByKey("c"))

	// Each entry ends just past its own closing brace; the first must not
	// bleed into the second's line.
	assert.Equal(t, makeRange(0, 0, 0, 19), tree.Entries[0].Range)
	assert.Equal(t, makeRange(1, 0, 1, 19), tree.Entries[1].Range)
}

func TestParseBibtexComment(t *testing.T) {
	tree := ParseBibtex(`@comment{this is ignored}`)

	require.Len(t, tree.Entries, 1)
	assert.True(t, tree.Entries[0].IsComment())
	assert.Empty(t, tree.Errors)
}

func TestParseBibtexMissingBrace(t *testing.T) {
	tree := ParseBibtex(`@article knuth`)

	require.Len(t, tree.Entries, 1)
	require.Len(t, tree.Errors, 1)
	assert.Contains(t, tree.Errors[0].Message, "expected '{'")
}

func TestParseBibtexMissingKey(t *testing.T) {
	tree := ParseBibtex(`@article{, title={X}}`)

	require.Len(t, tree.Errors, 1)
	assert.Contains(t, tree.Errors[0].Message, "citation key")
}

func TestParseBibtexCommandMidEdit(t *testing.T) {
	// A backslash typed into a field produces a command token even though
	// the entry is no longer well formed.
	tree := ParseBibtex("@article{foo, bar=\n\\}")

	require.Len(t, tree.Entries, 1)
	assert.Equal(t, "foo", tree.Entries[0].Key.Text)

	require.Len(t, tree.Commands, 1)
	assert.Equal(t, "}", tree.Commands[0].Text)
	assert.Equal(t, makeRange(1, 0, 1, 2), tree.Commands[0].Range)

	require.Len(t, tree.Errors, 1)
	assert.Contains(t, tree.Errors[0].Message, "unterminated")
}

func TestParseBibtexCommandInField(t *testing.T) {
	tree := ParseBibtex(`@article{a, title = {On \LaTeX{} quality}}`)

	require.Len(t, tree.Commands, 1)
	assert.Equal(t, "LaTeX", tree.Commands[0].Text)

	cmd := tree.CommandAt(position(0, 26))
	require.NotNil(t, cmd)
	assert.Equal(t, "LaTeX", cmd.Text)
}

func TestParseBibtexEmptyLeadingLines(t *testing.T) {
	tree := ParseBibtex("\n\n@misc{x}")

	require.Len(t, tree.Entries, 1)
	assert.Equal(t, "@misc", tree.Entries[0].Type.Text)
	assert.Equal(t, makeRange(2, 0, 2, 5), tree.Entries[0].Type.Range)
}
