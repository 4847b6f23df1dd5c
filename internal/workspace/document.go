// Package workspace provides the immutable snapshot store of all loaded
// documents and the include-graph resolution built on top of it.
package workspace

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/config"
	"texls/internal/syntax"
)

// ResolvedInclude is one include directive of a document together with the
// candidate file paths its raw path may refer to.
type ResolvedInclude struct {
	Range   protocol.Range
	Kind    syntax.IncludeKind
	Raw     string
	Targets []string
}

// Document is an immutable point-in-time view of one file. Text changes
// produce a new Document value with a freshly parsed tree; the old value
// stays valid for readers holding the previous snapshot.
type Document struct {
	URI      string
	Path     string // empty for non-file URIs
	Text     string
	Language syntax.Language
	Tree     syntax.Tree
	Modified time.Time
	Includes []ResolvedInclude
}

// DocumentParams carries everything needed to construct a Document.
type DocumentParams struct {
	URI      string
	Text     string
	Language syntax.Language
	Options  *config.Options
}

// NewDocument parses the given text and resolves its include directives.
func NewDocument(params DocumentParams) *Document {
	doc := &Document{
		URI:      params.URI,
		Text:     params.Text,
		Language: params.Language,
		Modified: time.Now(),
	}
	if path, err := URIToPath(params.URI); err == nil {
		doc.Path = path
	}

	switch params.Language {
	case syntax.LanguageBibtex:
		doc.Tree = syntax.ParseBibtex(params.Text)
	default:
		tree := syntax.ParseLatex(params.Text)
		doc.Tree = tree
		doc.Includes = resolveIncludes(doc.Path, tree, params.Options)
	}
	return doc
}

// LoadDocument reads a file from disk and parses it. I/O failures are
// returned wrapped so callers can distinguish them from lookup failures.
func LoadDocument(path string, options *config.Options) (*Document, error) {
	language, ok := syntax.LanguageByPath(path)
	if !ok {
		return nil, errors.Errorf("unrecognized file type: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}

	doc := NewDocument(DocumentParams{
		URI:      PathToURI(path),
		Text:     string(data),
		Language: language,
		Options:  options,
	})
	doc.Modified = info.ModTime()
	return doc, nil
}

// LatexTree returns the document's tree as a LaTeX tree, or nil.
func (doc *Document) LatexTree() *syntax.LatexTree {
	tree, _ := doc.Tree.(*syntax.LatexTree)
	return tree
}

// BibtexTree returns the document's tree as a BibTeX tree, or nil.
func (doc *Document) BibtexTree() *syntax.BibtexTree {
	tree, _ := doc.Tree.(*syntax.BibtexTree)
	return tree
}

// IsStandalone reports whether the document can be compiled on its own.
func (doc *Document) IsStandalone() bool {
	tree := doc.LatexTree()
	return tree != nil && tree.IsStandalone
}

// resolveIncludes expands every include directive of a LaTeX tree into
// candidate absolute paths, relative to the including document's directory
// and the configured root directory.
func resolveIncludes(path string, tree *syntax.LatexTree, options *config.Options) []ResolvedInclude {
	if path == "" {
		return nil
	}
	baseDirs := []string{filepath.Dir(path)}
	if options != nil && options.LaTeX.RootDirectory != "" {
		baseDirs = append(baseDirs, options.LaTeX.RootDirectory)
	}

	var resolved []ResolvedInclude
	for _, include := range tree.Includes {
		if include.Kind == syntax.IncludePackage || include.Kind == syntax.IncludeClass {
			// Packages and classes live in the TeX distribution, not in
			// the workspace.
			continue
		}
		for _, raw := range include.Paths {
			item := ResolvedInclude{Range: raw.Range, Kind: include.Kind, Raw: raw.Text}
			for _, base := range baseDirs {
				target := filepath.Join(base, filepath.FromSlash(raw.Text))
				if filepath.Ext(raw.Text) != "" {
					item.Targets = append(item.Targets, target)
					continue
				}
				for _, ext := range include.Kind.Extensions() {
					item.Targets = append(item.Targets, target+ext)
				}
			}
			resolved = append(resolved, item)
		}
	}
	return resolved
}
