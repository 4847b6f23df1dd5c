package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntry(t *testing.T) {
	tree := ParseBibtex(`@Article{knuth1984,author={Donald E. Knuth},title={Literate Programming},year=1984}`)
	require.Len(t, tree.Entries, 1)

	got := FormatEntry(&tree.Entries[0], BibtexFormattingOptions{})

	want := "@article{knuth1984,\n" +
		"\tauthor = {Donald E. Knuth},\n" +
		"\ttitle = {Literate Programming},\n" +
		"\tyear = {1984},\n" +
		"}"
	assert.Equal(t, want, got)
}

func TestFormatEntrySpaces(t *testing.T) {
	tree := ParseBibtex(`@misc{a,note={x}}`)
	require.Len(t, tree.Entries, 1)

	got := FormatEntry(&tree.Entries[0], BibtexFormattingOptions{TabSize: 2, InsertSpaces: true})
	assert.Contains(t, got, "\n  note = {x},\n")
}

func TestFormatEntryWrapsLongValues(t *testing.T) {
	value := strings.Repeat("word ", 30)
	tree := ParseBibtex("@misc{a,note={" + value + "}}")
	require.Len(t, tree.Entries, 1)

	got := FormatEntry(&tree.Entries[0], BibtexFormattingOptions{LineLength: 40})
	lines := strings.Split(got, "\n")
	assert.Greater(t, len(lines), 3)
	for _, line := range lines {
		// Words never start past the limit; only closing punctuation may
		// trail beyond it.
		assert.LessOrEqual(t, len(line), 42)
	}
}

func TestRenderCitation(t *testing.T) {
	tree := ParseBibtex(`@article{a, author={Knuth}, title={Literate Programming}, journal={CSTR}, year={1984}}`)
	require.Len(t, tree.Entries, 1)

	text, ok := RenderCitation(&tree.Entries[0])
	require.True(t, ok)
	assert.Equal(t, "Knuth. *Literate Programming*. CSTR. 1984", text)
}

func TestRenderCitationEmpty(t *testing.T) {
	tree := ParseBibtex(`@misc{empty}`)
	require.Len(t, tree.Entries, 1)

	_, ok := RenderCitation(&tree.Entries[0])
	assert.False(t, ok)
}
