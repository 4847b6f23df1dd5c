package component

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texls/internal/config"
	"texls/internal/syntax"
	"texls/internal/workspace"
)

func latexDocument(t *testing.T, text string) *workspace.Document {
	t.Helper()
	return workspace.NewDocument(workspace.DocumentParams{
		URI:      workspace.PathToURI(filepath.Join("/tmp/texls-test", "main.tex")),
		Text:     text,
		Language: syntax.LanguageLatex,
		Options:  config.Default(),
	})
}

func TestLoad(t *testing.T) {
	db := Load()
	require.NotNil(t, db)
	assert.NotEmpty(t, db.Components)
	// Load is idempotent and returns the same instance.
	assert.Same(t, db, Load())
}

func TestKernel(t *testing.T) {
	kernel := Load().Kernel()
	require.NotNil(t, kernel)
	assert.Empty(t, kernel.FileNames)
	assert.NotEmpty(t, kernel.Commands)
}

func TestFind(t *testing.T) {
	db := Load()
	comp := db.Find("amsmath.sty")
	require.NotNil(t, comp)
	assert.Contains(t, comp.FileNames, "amsmath.sty")

	assert.Nil(t, db.Find("no-such-package.sty"))
}

func TestRelatedAlwaysContainsKernel(t *testing.T) {
	db := Load()
	related := db.Related(nil)
	require.NotEmpty(t, related)
	assert.Empty(t, related[0].FileNames)
}

func TestRelatedClosure(t *testing.T) {
	db := Load()
	doc := latexDocument(t, `\usepackage{amsmath}`)

	related := db.Related([]*workspace.Document{doc})

	names := make(map[string]bool)
	for _, comp := range related {
		names[comp.Name()] = true
	}
	assert.True(t, names["amsmath.sty"])
	// amsmath pulls in the packages it loads itself.
	for _, ref := range db.Find("amsmath.sty").References {
		assert.True(t, names[ref], "missing referenced component %s", ref)
	}
}

func TestRelatedDeduplicates(t *testing.T) {
	db := Load()
	a := latexDocument(t, `\usepackage{amsmath}`)
	b := latexDocument(t, `\usepackage{amsmath,graphicx}`)

	related := db.Related([]*workspace.Document{a, b})

	seen := make(map[string]int)
	for _, comp := range related {
		seen[comp.Name()]++
	}
	for name, count := range seen {
		assert.Equal(t, 1, count, "component %s appears %d times", name, count)
	}
}

func TestRelatedIgnoresUnknown(t *testing.T) {
	db := Load()
	doc := latexDocument(t, `\usepackage{definitely-not-a-package}`)

	related := db.Related([]*workspace.Document{doc})
	// Only the kernel remains.
	require.Len(t, related, 1)
	assert.Empty(t, related[0].FileNames)
}

func TestDocumentation(t *testing.T) {
	db := Load()

	text, ok := db.Documentation("amsmath")
	require.True(t, ok)
	assert.Contains(t, text, "amsmath.sty")

	_, ok = db.Documentation("definitely-not-a-package")
	assert.False(t, ok)
}
