// Package syntax provides the LaTeX and BibTeX scanners used by the
// workspace to derive include edges, symbols and completion context.
package syntax

import (
	"path/filepath"
	"strings"
)

// Language identifies the markup dialect of a document.
type Language int

const (
	LanguageLatex Language = iota
	LanguageBibtex
)

func (l Language) String() string {
	switch l {
	case LanguageLatex:
		return "latex"
	case LanguageBibtex:
		return "bibtex"
	default:
		return "unknown"
	}
}

// LanguageByExtension maps a file extension (with or without leading dot)
// to a Language. The second result is false for unrecognized extensions.
func LanguageByExtension(ext string) (Language, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "tex", "sty", "cls", "def", "lco", "aux":
		return LanguageLatex, true
	case "bib":
		return LanguageBibtex, true
	default:
		return 0, false
	}
}

// LanguageByLanguageID maps an LSP language identifier to a Language.
func LanguageByLanguageID(id string) (Language, bool) {
	switch id {
	case "latex", "tex":
		return LanguageLatex, true
	case "bibtex", "bib":
		return LanguageBibtex, true
	default:
		return 0, false
	}
}

// LanguageByPath determines the Language from a file path.
func LanguageByPath(path string) (Language, bool) {
	return LanguageByExtension(filepath.Ext(path))
}
