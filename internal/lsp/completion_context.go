package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/syntax"
	"texls/internal/workspace"
)

// commandContext reports the text-replacement range for command completion:
// the current command token without its backslash. There is no context when
// the cursor sits exactly on the backslash; typing has to have moved past
// it.
func commandContext(doc *workspace.Document, pos protocol.Position) (protocol.Range, bool) {
	var token *syntax.Token
	if tree := doc.LatexTree(); tree != nil {
		token = tree.CommandAt(pos)
	} else if tree := doc.BibtexTree(); tree != nil {
		token = tree.CommandAt(pos)
	}
	if token == nil || pos.Character == token.Range.Start.Character {
		return protocol.Range{}, false
	}
	edit := token.Range
	edit.Start.Character++
	return edit, true
}

// argumentContext describes the argument group the cursor sits in.
type argumentContext struct {
	Command string         // the enclosing command, without backslash
	Prefix  string         // argument text before the cursor
	Range   protocol.Range // replace range of the current argument element
}

// findArgumentContext scans the cursor's line backwards for an enclosing
// \command{...} group. Scanning text instead of the tree keeps completion
// working inside empty or unterminated groups, which is exactly where it
// is needed most.
func findArgumentContext(text string, pos protocol.Position) *argumentContext {
	lines := splitLines(text)
	if int(pos.Line) >= len(lines) {
		return nil
	}
	line := []rune(lines[pos.Line])
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk left to the start of the current argument element.
	start := col
	for start > 0 {
		ch := line[start-1]
		if ch == '{' || ch == ',' {
			break
		}
		if ch == '}' || ch == '\\' {
			return nil
		}
		start--
	}
	if start == 0 {
		return nil
	}

	// Find the opening brace, skipping earlier elements of the group.
	brace := start - 1
	for brace >= 0 && line[brace] != '{' {
		if line[brace] == '}' || line[brace] == '\\' {
			return nil
		}
		brace--
	}
	if brace < 0 {
		return nil
	}

	// Skip an optional [...] group between command and argument.
	i := brace - 1
	if i >= 0 && line[i] == ']' {
		for i >= 0 && line[i] != '[' {
			i--
		}
		i--
	}

	// Read the command name ending at i.
	end := i + 1
	for i >= 0 && isCommandLetter(line[i]) {
		i--
	}
	if i < 0 || line[i] != '\\' || end == i+1 {
		return nil
	}

	// Trim leading whitespace of the element for the replace range.
	for start < col && (line[start] == ' ' || line[start] == '\t') {
		start++
	}

	return &argumentContext{
		Command: string(line[i+1 : end]),
		Prefix:  string(line[start:col]),
		Range: protocol.Range{
			Start: protocol.Position{Line: pos.Line, Character: protocol.UInteger(start)},
			End:   pos,
		},
	}
}

func isCommandLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	return append(lines, text[start:])
}
