package syntax

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// BibtexField is a field assignment inside an entry.
type BibtexField struct {
	Name  Token
	Value string
}

// BibtexEntry is a single @type{key, ...} declaration.
type BibtexEntry struct {
	Type   Token // includes the leading @
	Key    Token
	Fields []BibtexField
	Range  protocol.Range
}

// Field returns the value of the named field, case-insensitively.
func (e *BibtexEntry) Field(name string) (string, bool) {
	for _, field := range e.Fields {
		if strings.EqualFold(field.Name.Text, name) {
			return field.Value, true
		}
	}
	return "", false
}

// IsComment reports whether the entry is a @comment declaration.
func (e *BibtexEntry) IsComment() bool {
	return strings.EqualFold(e.Type.Text, "@comment")
}

// SyntaxError is a recoverable scan error with its location.
type SyntaxError struct {
	Message string
	Range   protocol.Range
}

// BibtexTree is the parsed representation of a BibTeX document.
type BibtexTree struct {
	Entries  []BibtexEntry
	Commands []Token
	Errors   []SyntaxError
}

func (t *BibtexTree) Language() Language { return LanguageBibtex }

// CommandAt returns the command token containing pos, if any.
func (t *BibtexTree) CommandAt(pos protocol.Position) *Token {
	for i := range t.Commands {
		if RangeContains(t.Commands[i].Range, pos) {
			return &t.Commands[i]
		}
	}
	return nil
}

// EntryByKey returns the entry with the given citation key, if any.
func (t *BibtexTree) EntryByKey(key string) *BibtexEntry {
	for i := range t.Entries {
		if t.Entries[i].Key.Text == key {
			return &t.Entries[i]
		}
	}
	return nil
}

// ParseBibtex scans a BibTeX document. The scanner tolerates unterminated
// entries so that completion keeps working mid-edit; structural problems are
// collected as syntax errors instead of aborting.
func ParseBibtex(text string) *BibtexTree {
	s := &bibtexScanner{lines: splitRunes(text)}
	for s.line < len(s.lines) && s.col >= len(s.lines[s.line]) {
		s.line++
	}
	return s.scan()
}

type bibtexScanner struct {
	lines [][]rune
	line  int
	col   int
	tree  BibtexTree
}

func splitRunes(text string) [][]rune {
	raw := strings.Split(text, "\n")
	lines := make([][]rune, len(raw))
	for i, l := range raw {
		lines[i] = []rune(l)
	}
	return lines
}

func (s *bibtexScanner) scan() *BibtexTree {
	for !s.eof() {
		switch s.peek() {
		case '@':
			s.scanEntry()
		case '\\':
			s.scanCommand()
		default:
			s.next()
		}
	}
	return &s.tree
}

func (s *bibtexScanner) scanEntry() {
	startLine, startCol := s.line, s.col
	s.next() // @
	for !s.eof() && s.line == startLine && isLetter(s.peek()) {
		s.next()
	}
	typeEnd := s.endOn(startLine)
	entry := BibtexEntry{
		Type: Token{
			Text:  string(s.lines[startLine][startCol:typeEnd]),
			Range: makeRange(startLine, startCol, startLine, typeEnd),
		},
	}
	s.skipSpace()
	if s.eof() || s.peek() != '{' {
		s.tree.Errors = append(s.tree.Errors, SyntaxError{
			Message: "expected '{' after entry type",
			Range:   entry.Type.Range,
		})
		s.tree.Entries = append(s.tree.Entries, entry)
		return
	}
	s.next() // {
	s.skipSpace()

	keyLine, keyCol := s.line, s.col
	for !s.eof() && s.line == keyLine && !isKeyTerminator(s.peek()) {
		s.next()
	}
	keyEnd := s.endOn(keyLine)
	entry.Key = Token{
		Text:  strings.TrimSpace(string(s.lines[keyLine][keyCol:keyEnd])),
		Range: makeRange(keyLine, keyCol, keyLine, keyEnd),
	}
	if entry.Key.Text == "" && !entry.IsComment() {
		s.tree.Errors = append(s.tree.Errors, SyntaxError{
			Message: "entry is missing its citation key",
			Range:   entry.Type.Range,
		})
	}

	// The closing brace position is captured before next() advances; next()
	// can hop to the following line and must not leak into the range.
	endLine, endCol := s.line, s.col
	depth := 1
	for !s.eof() && depth > 0 {
		switch s.peek() {
		case '{':
			depth++
			s.next()
		case '}':
			depth--
			endLine, endCol = s.line, s.col+1
			s.next()
		case ',':
			s.next()
			s.skipSpace()
			if !s.eof() && depth == 1 && isLetter(s.peek()) {
				s.scanField(&entry)
			}
		case '\\':
			s.scanCommand()
		default:
			s.next()
		}
	}
	if depth > 0 {
		s.tree.Errors = append(s.tree.Errors, SyntaxError{
			Message: "unterminated entry",
			Range:   entry.Type.Range,
		})
		last := len(s.lines) - 1
		endLine, endCol = last, len(s.lines[last])
	}
	entry.Range = makeRange(startLine, startCol, endLine, endCol)
	s.tree.Entries = append(s.tree.Entries, entry)
}

func (s *bibtexScanner) scanField(entry *BibtexEntry) {
	nameLine, nameCol := s.line, s.col
	for !s.eof() && s.line == nameLine && (isLetter(s.peek()) || s.peek() == '-') {
		s.next()
	}
	nameEnd := s.endOn(nameLine)
	name := Token{
		Text:  string(s.lines[nameLine][nameCol:nameEnd]),
		Range: makeRange(nameLine, nameCol, nameLine, nameEnd),
	}
	s.skipSpace()
	if s.eof() || s.peek() != '=' {
		return
	}
	s.next() // =
	s.skipSpace()

	var value strings.Builder
	depth := 0
	for !s.eof() {
		ch := s.peek()
		if depth == 0 && (ch == ',' || ch == '}') {
			break
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
		case '\\':
			s.scanCommand()
			continue
		default:
			value.WriteRune(ch)
		}
		s.next()
	}
	entry.Fields = append(entry.Fields, BibtexField{
		Name:  name,
		Value: strings.TrimSpace(value.String()),
	})
}

func (s *bibtexScanner) scanCommand() {
	startLine, startCol := s.line, s.col
	s.next() // backslash
	if !s.eof() && s.line == startLine {
		if isLetter(s.peek()) {
			for !s.eof() && s.line == startLine && isLetter(s.peek()) {
				s.next()
			}
		} else {
			s.next()
		}
	}
	end := s.endOn(startLine)
	s.tree.Commands = append(s.tree.Commands, Token{
		Text:  string(s.lines[startLine][startCol+1 : end]),
		Range: makeRange(startLine, startCol, startLine, end),
	})
}

// endOn returns the current column if the scanner is still on the given
// line, otherwise the line's length. Token slices never cross lines.
func (s *bibtexScanner) endOn(line int) int {
	if s.line == line {
		return s.col
	}
	return len(s.lines[line])
}

func (s *bibtexScanner) eof() bool {
	return s.line >= len(s.lines)
}

func (s *bibtexScanner) peek() rune {
	return s.lines[s.line][s.col]
}

func (s *bibtexScanner) next() {
	s.col++
	for s.line < len(s.lines) && s.col >= len(s.lines[s.line]) {
		s.line++
		s.col = 0
	}
}

func (s *bibtexScanner) skipSpace() {
	for !s.eof() && (s.peek() == ' ' || s.peek() == '\t') {
		s.next()
	}
}

func isKeyTerminator(ch rune) bool {
	return ch == ',' || ch == '}' || ch == ' ' || ch == '\t'
}
