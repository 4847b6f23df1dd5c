package lsp

import (
	"context"
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/component"
	"texls/internal/feature"
	"texls/internal/syntax"
)

type hoverRequest = feature.Request[protocol.HoverParams]
type hoverFunc = feature.ProviderFunc[protocol.HoverParams, *protocol.Hover]

// hoverProvider runs the hover sources in order and keeps the first match.
var hoverProvider = feature.Choice(
	hoverFunc(hoverCitation),
	hoverFunc(hoverComponent),
	hoverFunc(hoverEntryType),
	hoverFunc(hoverIncludeTarget),
)

// Hover handles the textDocument/hover request.
func Hover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	req, err := makeRequest(params.TextDocument.URI, *params)
	if err != nil {
		return nil, err
	}
	return hoverProvider.Execute(context.Background(), req), nil
}

// hoverCitation renders the referenced bibliography entry. It fires both on
// citation keys in LaTeX documents and on entry keys in BibTeX documents.
func hoverCitation(ctx context.Context, req *hoverRequest) *protocol.Hover {
	doc := req.Document()
	pos := req.Params.Position

	var key string
	var keyRange protocol.Range
	if tree := doc.LatexTree(); tree != nil {
		for _, citation := range tree.Citations {
			if syntax.RangeContains(citation.Range, pos) {
				key, keyRange = citation.Text, citation.Range
				break
			}
		}
	} else if tree := doc.BibtexTree(); tree != nil {
		for i := range tree.Entries {
			entry := &tree.Entries[i]
			if !entry.IsComment() && syntax.RangeContains(entry.Key.Range, pos) {
				key, keyRange = entry.Key.Text, entry.Key.Range
				break
			}
		}
	}
	if key == "" {
		return nil
	}

	for _, related := range req.Related() {
		tree := related.BibtexTree()
		if tree == nil {
			continue
		}
		entry := tree.EntryByKey(key)
		if entry == nil {
			continue
		}
		if text, ok := syntax.RenderCitation(entry); ok {
			return markdownHover(text, keyRange)
		}
	}
	return nil
}

// hoverComponent describes the package or class under the cursor.
func hoverComponent(ctx context.Context, req *hoverRequest) *protocol.Hover {
	tree := req.Document().LatexTree()
	if tree == nil {
		return nil
	}
	pos := req.Params.Position

	for _, include := range tree.Includes {
		if include.Kind != syntax.IncludePackage && include.Kind != syntax.IncludeClass {
			continue
		}
		for _, path := range include.Paths {
			if !syntax.RangeContains(path.Range, pos) {
				continue
			}
			if text, ok := component.Load().Documentation(path.Text); ok {
				return markdownHover(text, path.Range)
			}
			return nil
		}
	}
	return nil
}

var entryTypeDocs = map[string]string{
	"article":       "An article from a journal or magazine.",
	"book":          "A book with an explicit publisher.",
	"booklet":       "A work that is printed and bound, but without a named publisher or sponsoring institution.",
	"conference":    "The same as `inproceedings`.",
	"inbook":        "A part of a book, such as a chapter or a page range.",
	"incollection":  "A part of a book having its own title.",
	"inproceedings": "An article in a conference proceedings.",
	"manual":        "Technical documentation.",
	"mastersthesis": "A master's thesis.",
	"misc":          "Use this type when nothing else fits.",
	"phdthesis":     "A PhD thesis.",
	"proceedings":   "The proceedings of a conference.",
	"techreport":    "A report published by a school or other institution.",
	"unpublished":   "A document having an author and title, but not formally published.",
	"string":        "Defines an abbreviation usable in later entries.",
	"preamble":      "Emits its argument into the generated bibliography.",
	"comment":       "Ignored by BibTeX.",
}

// hoverEntryType explains the entry type under the cursor in a BibTeX
// document.
func hoverEntryType(ctx context.Context, req *hoverRequest) *protocol.Hover {
	tree := req.Document().BibtexTree()
	if tree == nil {
		return nil
	}
	pos := req.Params.Position

	for i := range tree.Entries {
		entry := &tree.Entries[i]
		if !syntax.RangeContains(entry.Type.Range, pos) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(entry.Type.Text, "@"))
		if text, ok := entryTypeDocs[name]; ok {
			return markdownHover(fmt.Sprintf("**@%s**\n\n%s", name, text), entry.Type.Range)
		}
		return nil
	}
	return nil
}

// hoverIncludeTarget shows which file an include directive resolves to.
func hoverIncludeTarget(ctx context.Context, req *hoverRequest) *protocol.Hover {
	doc := req.Document()
	pos := req.Params.Position

	for _, include := range doc.Includes {
		if !syntax.RangeContains(include.Range, pos) {
			continue
		}
		for _, target := range include.Targets {
			if req.Snapshot().FindByPath(target) != nil {
				return markdownHover(fmt.Sprintf("`%s`", target), include.Range)
			}
		}
		return nil
	}
	return nil
}

func markdownHover(text string, rng protocol.Range) *protocol.Hover {
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
		Range: &rng,
	}
}
