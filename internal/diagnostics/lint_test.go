package diagnostics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestParseChktexOutput(t *testing.T) {
	out := bytes.NewBufferString(
		"3:9:1:Warning:24:Delete this space to maintain correct pagereferences.\n" +
			"7:1:4:Error:36:You should put a space in front of parenthesis.\n" +
			"garbage line\n")

	items := parseChktexOutput(out)

	require.Len(t, items, 2)

	// chktex counts from one, the protocol from zero.
	assert.Equal(t, protocol.UInteger(2), items[0].Range.Start.Line)
	assert.Equal(t, protocol.UInteger(8), items[0].Range.Start.Character)
	assert.Equal(t, protocol.UInteger(9), items[0].Range.End.Character)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *items[0].Severity)
	assert.Equal(t, "chktex", *items[0].Source)
	assert.Equal(t, "24", items[0].Code.Value)
	assert.Equal(t, "Delete this space to maintain correct pagereferences.", items[0].Message)

	assert.Equal(t, protocol.DiagnosticSeverityError, *items[1].Severity)
	assert.Equal(t, protocol.UInteger(6), items[1].Range.Start.Line)
	assert.Equal(t, protocol.UInteger(0), items[1].Range.Start.Character)
	assert.Equal(t, protocol.UInteger(4), items[1].Range.End.Character)
}

func TestParseChktexOutputEmpty(t *testing.T) {
	assert.Empty(t, parseChktexOutput(bytes.NewBuffer(nil)))
}
