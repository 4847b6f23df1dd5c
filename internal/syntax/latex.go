package syntax

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// IncludeKind classifies an include-like directive by the kind of file it
// references.
type IncludeKind int

const (
	IncludeLatex IncludeKind = iota
	IncludeBibliography
	IncludePackage
	IncludeClass
)

// Extensions returns the candidate file extensions tried when resolving a
// path of this kind that has no extension of its own.
func (k IncludeKind) Extensions() []string {
	switch k {
	case IncludeBibliography:
		return []string{".bib"}
	case IncludePackage:
		return []string{".sty"}
	case IncludeClass:
		return []string{".cls"}
	default:
		return []string{".tex"}
	}
}

// LatexInclude is a single include/import/bibliography directive. One
// directive may reference several comma-separated paths.
type LatexInclude struct {
	Command Token
	Kind    IncludeKind
	Paths   []Token
}

// LabelKind distinguishes label definitions from label references.
type LabelKind int

const (
	LabelDefinition LabelKind = iota
	LabelReference
)

// LatexLabel is a \label or \ref-style directive.
type LatexLabel struct {
	Kind LabelKind
	Name Token
}

// LatexEnvironment is a matched \begin/\end pair. Begin and End cover the
// environment name tokens inside the braces.
type LatexEnvironment struct {
	Begin Token
	End   Token
}

// LatexSection is a sectioning command with its title.
type LatexSection struct {
	Level int
	Text  string
	Range protocol.Range
}

// LatexTree is the parsed representation of a LaTeX document.
type LatexTree struct {
	Commands     []Token
	Environments []LatexEnvironment
	Includes     []LatexInclude
	Components   []string
	Citations    []Token
	Labels       []LatexLabel
	Sections     []LatexSection
	UserCommands []string
	UserEnvs     []string
	IsStandalone bool
}

func (t *LatexTree) Language() Language { return LanguageLatex }

// CommandAt returns the command token containing pos, if any.
func (t *LatexTree) CommandAt(pos protocol.Position) *Token {
	for i := range t.Commands {
		if RangeContains(t.Commands[i].Range, pos) {
			return &t.Commands[i]
		}
	}
	return nil
}

// EnvironmentAt returns the environment whose begin or end name token
// contains pos, if any.
func (t *LatexTree) EnvironmentAt(pos protocol.Position) *LatexEnvironment {
	for i := range t.Environments {
		env := &t.Environments[i]
		if RangeContains(env.Begin.Range, pos) || RangeContains(env.End.Range, pos) {
			return env
		}
	}
	return nil
}

var includeKinds = map[string]IncludeKind{
	"include":         IncludeLatex,
	"input":           IncludeLatex,
	"subfile":         IncludeLatex,
	"subfileinclude":  IncludeLatex,
	"bibliography":    IncludeBibliography,
	"addbibresource":  IncludeBibliography,
	"usepackage":      IncludePackage,
	"RequirePackage":  IncludePackage,
	"documentclass":   IncludeClass,
	"LoadClass":       IncludeClass,
	"LoadClassWithOptions": IncludeClass,
}

var sectionLevels = map[string]int{
	"part":          0,
	"chapter":       1,
	"section":       2,
	"subsection":    3,
	"subsubsection": 4,
	"paragraph":     5,
	"subparagraph":  6,
}

var citationCommands = map[string]bool{
	"cite": true, "citet": true, "citep": true, "citeauthor": true,
	"citeyear": true, "nocite": true, "autocite": true, "textcite": true,
	"parencite": true, "footcite": true,
}

var labelReferenceCommands = map[string]bool{
	"ref": true, "eqref": true, "autoref": true, "pageref": true,
	"cref": true, "Cref": true, "vref": true,
}

// ParseLatex scans a LaTeX document. The scanner is line oriented: brace
// groups spanning lines contribute no tokens, which matches how the
// directives of interest are written in practice.
func ParseLatex(text string) *LatexTree {
	tree := &LatexTree{}
	var openEnvs []Token

	lines := strings.Split(text, "\n")
	for lineNo, rawLine := range lines {
		line := []rune(rawLine)
		col := 0
		for col < len(line) {
			ch := line[col]
			switch {
			case ch == '%':
				col = len(line)
			case ch == '\\':
				name, end := scanCommandName(line, col)
				cmd := Token{Text: name, Range: makeRange(lineNo, col, lineNo, end)}
				tree.Commands = append(tree.Commands, cmd)
				col = tree.handleCommand(cmd, line, lineNo, end, &openEnvs)
			default:
				col++
			}
		}
	}
	return tree
}

// handleCommand consumes the argument groups of known commands and returns
// the column to resume scanning from.
func (t *LatexTree) handleCommand(cmd Token, line []rune, lineNo, col int, openEnvs *[]Token) int {
	name := cmd.Text
	switch {
	case name == "begin" || name == "end":
		tok, next, ok := scanGroupToken(line, lineNo, col)
		if !ok {
			return col
		}
		if name == "begin" {
			*openEnvs = append(*openEnvs, tok)
			if tok.Text == "document" {
				t.IsStandalone = true
			}
		} else if n := len(*openEnvs); n > 0 {
			t.Environments = append(t.Environments, LatexEnvironment{Begin: (*openEnvs)[n-1], End: tok})
			*openEnvs = (*openEnvs)[:n-1]
		}
		return next

	case isIncludeCommand(name):
		kind := includeKinds[name]
		// Options in brackets precede the path group for usepackage and
		// documentclass.
		col = skipBracketGroup(line, col)
		paths, next, ok := scanGroupList(line, lineNo, col)
		if !ok {
			return col
		}
		t.Includes = append(t.Includes, LatexInclude{Command: cmd, Kind: kind, Paths: paths})
		for _, path := range paths {
			switch kind {
			case IncludePackage:
				t.Components = append(t.Components, path.Text+".sty")
			case IncludeClass:
				t.Components = append(t.Components, path.Text+".cls")
			}
		}
		return next

	case citationCommands[name]:
		col = skipBracketGroup(line, col)
		keys, next, ok := scanGroupList(line, lineNo, col)
		if !ok {
			return col
		}
		t.Citations = append(t.Citations, keys...)
		return next

	case name == "label":
		tok, next, ok := scanGroupToken(line, lineNo, col)
		if !ok {
			return col
		}
		t.Labels = append(t.Labels, LatexLabel{Kind: LabelDefinition, Name: tok})
		return next

	case labelReferenceCommands[name]:
		names, next, ok := scanGroupList(line, lineNo, col)
		if !ok {
			return col
		}
		for _, tok := range names {
			t.Labels = append(t.Labels, LatexLabel{Kind: LabelReference, Name: tok})
		}
		return next

	case name == "newcommand" || name == "renewcommand" || name == "providecommand" || name == "DeclareMathOperator":
		tok, next, ok := scanGroupToken(line, lineNo, col)
		if !ok {
			return col
		}
		t.UserCommands = append(t.UserCommands, strings.TrimPrefix(tok.Text, "\\"))
		return next

	case name == "newenvironment" || name == "newtheorem":
		tok, next, ok := scanGroupToken(line, lineNo, col)
		if !ok {
			return col
		}
		t.UserEnvs = append(t.UserEnvs, tok.Text)
		return next

	default:
		if level, ok := sectionLevels[name]; ok {
			col = skipBracketGroup(line, col)
			tok, next, ok := scanGroupToken(line, lineNo, col)
			if !ok {
				return col
			}
			rng := cmd.Range
			rng.End = tok.Range.End
			rng.End.Character++ // closing brace
			t.Sections = append(t.Sections, LatexSection{Level: level, Text: tok.Text, Range: rng})
			return next
		}
		return col
	}
}

// scanCommandName reads the command name following the backslash at col.
// A run of ASCII letters forms the name; otherwise the single next rune
// does (escaped character control sequences such as \%).
func scanCommandName(line []rune, col int) (string, int) {
	i := col + 1
	for i < len(line) && isLetter(line[i]) {
		i++
	}
	if i == col+1 && i < len(line) {
		i++ // single-character command
	}
	return string(line[col+1 : i]), i
}

// scanGroupToken reads one {...} group starting at or after col and returns
// its trimmed content as a single token.
func scanGroupToken(line []rune, lineNo, col int) (Token, int, bool) {
	toks, next, ok := scanGroupList(line, lineNo, col)
	if !ok || len(toks) != 1 {
		return Token{}, col, false
	}
	return toks[0], next, true
}

// scanGroupList reads one {...} group and splits its content on commas,
// producing a token per element with its exact source range.
func scanGroupList(line []rune, lineNo, col int) ([]Token, int, bool) {
	for col < len(line) && (line[col] == ' ' || line[col] == '\t') {
		col++
	}
	if col >= len(line) || line[col] != '{' {
		return nil, col, false
	}
	depth := 1
	end := col + 1
	for end < len(line) && depth > 0 {
		switch line[end] {
		case '{':
			depth++
		case '}':
			depth--
		}
		end++
	}
	if depth != 0 {
		return nil, col, false
	}
	content := line[col+1 : end-1]

	var toks []Token
	flush := func(from, to int) {
		for from < to && (content[from] == ' ' || content[from] == '\t') {
			from++
		}
		for to > from && (content[to-1] == ' ' || content[to-1] == '\t') {
			to--
		}
		if from == to {
			return
		}
		toks = append(toks, Token{
			Text:  string(content[from:to]),
			Range: makeRange(lineNo, col+1+from, lineNo, col+1+to),
		})
	}
	start := 0
	for i, ch := range content {
		if ch == ',' {
			flush(start, i)
			start = i + 1
		}
	}
	flush(start, len(content))
	return toks, end, true
}

// skipBracketGroup advances past an optional [...] group.
func skipBracketGroup(line []rune, col int) int {
	i := col
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	if i >= len(line) || line[i] != '[' {
		return col
	}
	for i < len(line) && line[i] != ']' {
		i++
	}
	if i < len(line) {
		i++
	}
	return i
}

func isIncludeCommand(name string) bool {
	_, ok := includeKinds[name]
	return ok
}

// IncludeCommandKind reports the include kind of a command name, if the
// command is an include-like directive.
func IncludeCommandKind(name string) (IncludeKind, bool) {
	kind, ok := includeKinds[name]
	return kind, ok
}

// IsCitationCommand reports whether the command cites bibliography keys.
func IsCitationCommand(name string) bool {
	return citationCommands[name]
}

// IsLabelReferenceCommand reports whether the command references a label.
func IsLabelReferenceCommand(name string) bool {
	return labelReferenceCommands[name]
}

func isLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
