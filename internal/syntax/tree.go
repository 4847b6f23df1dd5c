package syntax

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Tree is the parsed representation of a document. The concrete type is
// *LatexTree or *BibtexTree depending on the document's language.
type Tree interface {
	Language() Language
}

// Token is a piece of source text with its position.
type Token struct {
	Text  string
	Range protocol.Range
}

// RangeContains reports whether pos lies within r. Both endpoints count:
// hover and completion positions sit on token boundaries.
func RangeContains(r protocol.Range, pos protocol.Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

func makeRange(startLine, startChar, endLine, endChar int) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(startLine), Character: protocol.UInteger(startChar)},
		End:   protocol.Position{Line: protocol.UInteger(endLine), Character: protocol.UInteger(endChar)},
	}
}
