package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/feature"
	"texls/internal/syntax"
)

type highlightRequest = feature.Request[protocol.DocumentHighlightParams]
type highlightFunc = feature.ProviderFunc[protocol.DocumentHighlightParams, []protocol.DocumentHighlight]

var highlightProvider = feature.Concat(
	highlightFunc(highlightLabels),
)

// DocumentHighlight handles the textDocument/documentHighlight request.
func DocumentHighlight(ctx *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	req, err := makeRequest(params.TextDocument.URI, *params)
	if err != nil {
		return nil, err
	}
	return highlightProvider.Execute(context.Background(), req), nil
}

// highlightLabels marks every occurrence of the label under the cursor in
// the current document: definitions as write, references as read.
func highlightLabels(ctx context.Context, req *highlightRequest) []protocol.DocumentHighlight {
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

	var highlights []protocol.DocumentHighlight
	for _, label := range tree.Labels {
		if label.Name.Text != name {
			continue
		}
		kind := protocol.DocumentHighlightKindRead
		if label.Kind == syntax.LabelDefinition {
			kind = protocol.DocumentHighlightKindWrite
		}
		highlights = append(highlights, protocol.DocumentHighlight{
			Range: label.Name.Range,
			Kind:  &kind,
		})
	}
	return highlights
}
