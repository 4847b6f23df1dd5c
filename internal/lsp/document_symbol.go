package lsp

import (
	"context"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/feature"
	"texls/internal/syntax"
	"texls/internal/workspace"
)

type symbolRequest = feature.Request[protocol.DocumentSymbolParams]
type symbolFunc = feature.ProviderFunc[protocol.DocumentSymbolParams, []protocol.DocumentSymbol]

var documentSymbolProvider = feature.Concat(
	symbolFunc(latexDocumentSymbols),
	symbolFunc(bibtexDocumentSymbols),
)

// DocumentSymbol handles the textDocument/documentSymbol request. It
// returns a hierarchical outline: sections nest by level, labels and
// environments attach to the section they appear in.
func DocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	req, err := makeRequest(params.TextDocument.URI, *params)
	if err != nil {
		return nil, err
	}
	return documentSymbolProvider.Execute(context.Background(), req), nil
}

func latexDocumentSymbols(ctx context.Context, req *symbolRequest) []protocol.DocumentSymbol {
	tree := req.Document().LatexTree()
	if tree == nil {
		return nil
	}
	return buildLatexOutline(tree)
}

// outlineNode is the mutable form of a DocumentSymbol used while the
// hierarchy is under construction.
type outlineNode struct {
	symbol   protocol.DocumentSymbol
	level    int
	children []*outlineNode
}

func (n *outlineNode) build() protocol.DocumentSymbol {
	symbol := n.symbol
	for _, child := range n.children {
		symbol.Children = append(symbol.Children, child.build())
	}
	return symbol
}

// buildLatexOutline nests sections by level using a stack of open
// sections; every other symbol attaches to the innermost open section.
func buildLatexOutline(tree *syntax.LatexTree) []protocol.DocumentSymbol {
	var roots []*outlineNode
	var stack []*outlineNode

	attach := func(node *outlineNode) {
		if len(stack) == 0 {
			roots = append(roots, node)
			return
		}
		parent := stack[len(stack)-1]
		parent.children = append(parent.children, node)
	}

	for _, section := range tree.Sections {
		for len(stack) > 0 && stack[len(stack)-1].level >= section.Level {
			stack = stack[:len(stack)-1]
		}
		name := section.Text
		if name == "" {
			name = "(untitled)"
		}
		node := &outlineNode{
			symbol: protocol.DocumentSymbol{
				Name:           name,
				Kind:           protocol.SymbolKindNamespace,
				Range:          section.Range,
				SelectionRange: section.Range,
			},
			level: section.Level,
		}
		attach(node)
		stack = append(stack, node)
	}

	// Labels and environments go to the top level; the flat scanner has no
	// byte offsets to order them into the sections they appear in.
	for _, label := range tree.Labels {
		if label.Kind != syntax.LabelDefinition {
			continue
		}
		roots = append(roots, &outlineNode{symbol: protocol.DocumentSymbol{
			Name:           label.Name.Text,
			Kind:           protocol.SymbolKindConstant,
			Range:          label.Name.Range,
			SelectionRange: label.Name.Range,
		}})
	}
	for _, env := range tree.Environments {
		if env.Begin.Text == "document" {
			continue
		}
		envRange := protocol.Range{Start: env.Begin.Range.Start, End: env.End.Range.End}
		roots = append(roots, &outlineNode{symbol: protocol.DocumentSymbol{
			Name:           env.Begin.Text,
			Kind:           protocol.SymbolKindEnum,
			Range:          envRange,
			SelectionRange: env.Begin.Range,
		}})
	}

	symbols := make([]protocol.DocumentSymbol, 0, len(roots))
	for _, node := range roots {
		symbols = append(symbols, node.build())
	}
	return symbols
}

func bibtexDocumentSymbols(ctx context.Context, req *symbolRequest) []protocol.DocumentSymbol {
	tree := req.Document().BibtexTree()
	if tree == nil {
		return nil
	}

	var symbols []protocol.DocumentSymbol
	for i := range tree.Entries {
		entry := &tree.Entries[i]
		if entry.IsComment() || entry.Key.Text == "" {
			continue
		}
		kind := protocol.SymbolKindObject
		if strings.EqualFold(entry.Type.Text, "@string") {
			kind = protocol.SymbolKindString
		}
		detail := strings.TrimPrefix(entry.Type.Text, "@")
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           entry.Key.Text,
			Detail:         &detail,
			Kind:           kind,
			Range:          entry.Range,
			SelectionRange: entry.Key.Range,
		})
	}
	return symbols
}

// documentSymbolInformation flattens a document's outline into
// SymbolInformation values for the workspace symbol search.
func documentSymbolInformation(doc *workspace.Document) []protocol.SymbolInformation {
	var infos []protocol.SymbolInformation
	if tree := doc.LatexTree(); tree != nil {
		for _, section := range tree.Sections {
			if section.Text == "" {
				continue
			}
			infos = append(infos, protocol.SymbolInformation{
				Name:     section.Text,
				Kind:     protocol.SymbolKindNamespace,
				Location: protocol.Location{URI: doc.URI, Range: section.Range},
			})
		}
		for _, label := range tree.Labels {
			if label.Kind != syntax.LabelDefinition {
				continue
			}
			infos = append(infos, protocol.SymbolInformation{
				Name:     label.Name.Text,
				Kind:     protocol.SymbolKindConstant,
				Location: protocol.Location{URI: doc.URI, Range: label.Name.Range},
			})
		}
	}
	if tree := doc.BibtexTree(); tree != nil {
		for i := range tree.Entries {
			entry := &tree.Entries[i]
			if entry.IsComment() || entry.Key.Text == "" {
				continue
			}
			infos = append(infos, protocol.SymbolInformation{
				Name:     entry.Key.Text,
				Kind:     protocol.SymbolKindObject,
				Location: protocol.Location{URI: doc.URI, Range: entry.Range},
			})
		}
	}
	return infos
}
