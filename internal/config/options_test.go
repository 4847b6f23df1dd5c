package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDefault(t *testing.T) {
	options := Default()

	assert.Equal(t, "latexmk", options.LaTeX.Build.Executable)
	assert.Contains(t, options.LaTeX.Build.Args, "-synctex=1")
	assert.False(t, options.LaTeX.Build.OnSave)
	assert.False(t, options.LaTeX.Lint.OnChange)
	assert.Equal(t, 120, options.BibTeX.Formatting.LineLength)
}

func TestParse(t *testing.T) {
	var settings any
	require.NoError(t, json.Unmarshal([]byte(`{
		"latex": {
			"rootDirectory": "/src/thesis",
			"build": {"executable": "tectonic", "args": ["-X", "compile"], "onSave": true},
			"lint": {"onChange": true}
		},
		"bibtex": {"formatting": {"lineLength": 80}}
	}`), &settings))

	options := Parse(settings)
	assert.Equal(t, "/src/thesis", options.LaTeX.RootDirectory)
	assert.Equal(t, "tectonic", options.LaTeX.Build.Executable)
	assert.Equal(t, []string{"-X", "compile"}, options.LaTeX.Build.Args)
	assert.True(t, options.LaTeX.Build.OnSave)
	assert.True(t, options.LaTeX.Lint.OnChange)
	assert.False(t, options.LaTeX.Lint.OnSave)
	assert.Equal(t, 80, options.BibTeX.Formatting.LineLength)
}

func TestParsePartial(t *testing.T) {
	var settings any
	require.NoError(t, json.Unmarshal([]byte(`{"latex": {"build": {"onSave": true}}}`), &settings))

	options := Parse(settings)
	assert.True(t, options.LaTeX.Build.OnSave)
	// Everything else keeps its default.
	assert.Equal(t, "latexmk", options.LaTeX.Build.Executable)
	assert.Equal(t, 120, options.BibTeX.Formatting.LineLength)
}

func TestParseGarbage(t *testing.T) {
	options := Parse("not an object")
	assert.Equal(t, Default(), options)

	options = Parse(nil)
	assert.Equal(t, Default(), options)
}

// clientCapabilities builds capabilities from raw JSON; the protocol types
// nest anonymous structs that cannot be named in literals.
func clientCapabilities(t *testing.T, raw string) *protocol.ClientCapabilities {
	t.Helper()
	var capabilities protocol.ClientCapabilities
	require.NoError(t, json.Unmarshal([]byte(raw), &capabilities))
	return &capabilities
}

func TestSelectStrategy(t *testing.T) {
	push := Select(clientCapabilities(t, `{"workspace": {"didChangeConfiguration": {}}}`))
	_, isPush := push.(*pushStrategy)
	assert.True(t, isPush)

	static := Select(clientCapabilities(t, `{}`))
	_, isStatic := static.(*staticStrategy)
	assert.True(t, isStatic)

	_, isStatic = Select(nil).(*staticStrategy)
	assert.True(t, isStatic)
}

func TestPushStrategySet(t *testing.T) {
	strategy := Select(clientCapabilities(t, `{"workspace": {"didChangeConfiguration": {}}}`))

	var settings any
	require.NoError(t, json.Unmarshal([]byte(`{"latex": {"lint": {"onSave": true}}}`), &settings))
	strategy.Set(settings)
	assert.True(t, strategy.Get().LaTeX.Lint.OnSave)
}

func TestStaticStrategyIgnoresSet(t *testing.T) {
	strategy := Select(nil)
	strategy.Set(map[string]any{"latex": map[string]any{"lint": map[string]any{"onSave": true}}})
	assert.False(t, strategy.Get().LaTeX.Lint.OnSave)
}
