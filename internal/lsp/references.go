package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/feature"
	"texls/internal/syntax"
)

type referencesRequest = feature.Request[protocol.ReferenceParams]
type referencesFunc = feature.ProviderFunc[protocol.ReferenceParams, []protocol.Location]

var referencesProvider = feature.Concat(
	referencesFunc(referenceLabels),
	referencesFunc(referenceCitations),
)

// References handles the textDocument/references request.
func References(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	req, err := makeRequest(params.TextDocument.URI, *params)
	if err != nil {
		return nil, err
	}
	return referencesProvider.Execute(context.Background(), req), nil
}

// referenceLabels finds every use of the label under the cursor across
// related documents. Definitions are included only when the client asks.
func referenceLabels(ctx context.Context, req *referencesRequest) []protocol.Location {
	tree := req.Document().LatexTree()
	if tree == nil {
		return nil
	}
	pos := req.Params.Position

	var name string
	for _, label := range tree.Labels {
		if syntax.RangeContains(label.Name.Range, pos) {
			name = label.Name.Text
			break
		}
	}
	if name == "" {
		return nil
	}

	var locations []protocol.Location
	for _, doc := range req.Related() {
		docTree := doc.LatexTree()
		if docTree == nil {
			continue
		}
		for _, label := range docTree.Labels {
			if label.Name.Text != name {
				continue
			}
			if label.Kind == syntax.LabelDefinition && !req.Params.Context.IncludeDeclaration {
				continue
			}
			locations = append(locations, protocol.Location{URI: doc.URI, Range: label.Name.Range})
		}
	}
	return locations
}

// referenceCitations finds every citation of the key under the cursor. The
// cursor may sit on a citation in a LaTeX document or on the entry itself
// in a BibTeX document; the entry counts as the declaration.
func referenceCitations(ctx context.Context, req *referencesRequest) []protocol.Location {
	doc := req.Document()
	pos := req.Params.Position

	var key string
	if tree := doc.LatexTree(); tree != nil {
		for _, citation := range tree.Citations {
			if syntax.RangeContains(citation.Range, pos) {
				key = citation.Text
				break
			}
		}
	} else if tree := doc.BibtexTree(); tree != nil {
		for i := range tree.Entries {
			entry := &tree.Entries[i]
			if !entry.IsComment() && syntax.RangeContains(entry.Key.Range, pos) {
				key = entry.Key.Text
				break
			}
		}
	}
	if key == "" {
		return nil
	}

	var locations []protocol.Location
	for _, related := range req.Related() {
		if tree := related.LatexTree(); tree != nil {
			for _, citation := range tree.Citations {
				if citation.Text == key {
					locations = append(locations, protocol.Location{URI: related.URI, Range: citation.Range})
				}
			}
		}
		if tree := related.BibtexTree(); tree != nil && req.Params.Context.IncludeDeclaration {
			if entry := tree.EntryByKey(key); entry != nil {
				locations = append(locations, protocol.Location{URI: related.URI, Range: entry.Key.Range})
			}
		}
	}
	return locations
}
