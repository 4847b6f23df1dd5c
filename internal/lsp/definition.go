package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/feature"
	"texls/internal/syntax"
)

type definitionRequest = feature.Request[protocol.DefinitionParams]
type definitionFunc = feature.ProviderFunc[protocol.DefinitionParams, *protocol.Location]

var definitionProvider = feature.Choice(
	definitionFunc(defineCitation),
	definitionFunc(defineLabel),
	definitionFunc(defineInclude),
)

// Definition handles the textDocument/definition request.
func Definition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	req, err := makeRequest(params.TextDocument.URI, *params)
	if err != nil {
		return nil, err
	}
	if location := definitionProvider.Execute(context.Background(), req); location != nil {
		return location, nil
	}
	return nil, nil
}

// defineCitation jumps from a citation key to the bibliography entry that
// defines it.
func defineCitation(ctx context.Context, req *definitionRequest) *protocol.Location {
	tree := req.Document().LatexTree()
	if tree == nil {
		return nil
	}
	pos := req.Params.Position

	for _, citation := range tree.Citations {
		if !syntax.RangeContains(citation.Range, pos) {
			continue
		}
		for _, related := range req.Related() {
			bib := related.BibtexTree()
			if bib == nil {
				continue
			}
			if entry := bib.EntryByKey(citation.Text); entry != nil {
				return &protocol.Location{URI: related.URI, Range: entry.Key.Range}
			}
		}
		return nil
	}
	return nil
}

// defineLabel jumps from a label reference to its definition, wherever in
// the project it lives.
func defineLabel(ctx context.Context, req *definitionRequest) *protocol.Location {
	tree := req.Document().LatexTree()
	if tree == nil {
		return nil
	}
	pos := req.Params.Position

	for _, label := range tree.Labels {
		if label.Kind != syntax.LabelReference || !syntax.RangeContains(label.Name.Range, pos) {
			continue
		}
		for _, related := range req.Related() {
			relatedTree := related.LatexTree()
			if relatedTree == nil {
				continue
			}
			for _, candidate := range relatedTree.Labels {
				if candidate.Kind == syntax.LabelDefinition && candidate.Name.Text == label.Name.Text {
					return &protocol.Location{URI: related.URI, Range: candidate.Name.Range}
				}
			}
		}
		return nil
	}
	return nil
}

// defineInclude jumps from an include directive to the first target loaded
// in the workspace.
func defineInclude(ctx context.Context, req *definitionRequest) *protocol.Location {
	doc := req.Document()
	pos := req.Params.Position

	for _, include := range doc.Includes {
		if !syntax.RangeContains(include.Range, pos) {
			continue
		}
		for _, target := range include.Targets {
			if found := req.Snapshot().FindByPath(target); found != nil {
				return &protocol.Location{URI: found.URI}
			}
		}
		return nil
	}
	return nil
}
