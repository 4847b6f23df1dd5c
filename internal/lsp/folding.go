package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/feature"
)

type foldingRequest = feature.Request[protocol.FoldingRangeParams]
type foldingFunc = feature.ProviderFunc[protocol.FoldingRangeParams, []protocol.FoldingRange]

var foldingProvider = feature.Concat(
	foldingFunc(foldEnvironments),
	foldingFunc(foldSections),
	foldingFunc(foldEntries),
)

// FoldingRange handles the textDocument/foldingRange request.
func FoldingRange(ctx *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	req, err := makeRequest(params.TextDocument.URI, *params)
	if err != nil {
		return nil, err
	}
	return foldingProvider.Execute(context.Background(), req), nil
}

// foldEnvironments folds each \begin/\end pair spanning multiple lines.
func foldEnvironments(ctx context.Context, req *foldingRequest) []protocol.FoldingRange {
	tree := req.Document().LatexTree()
	if tree == nil {
		return nil
	}

	var ranges []protocol.FoldingRange
	for _, env := range tree.Environments {
		start := env.Begin.Range.Start.Line
		end := env.End.Range.End.Line
		if end <= start {
			continue
		}
		ranges = append(ranges, protocol.FoldingRange{
			StartLine: start,
			EndLine:   end,
		})
	}
	return ranges
}

// foldSections folds from each section heading to the next heading of the
// same or a higher level, or to the end of the document.
func foldSections(ctx context.Context, req *foldingRequest) []protocol.FoldingRange {
	tree := req.Document().LatexTree()
	if tree == nil {
		return nil
	}
	lastLine := protocol.UInteger(len(splitLines(req.Document().Text)) - 1)

	var ranges []protocol.FoldingRange
	for i, section := range tree.Sections {
		end := lastLine
		for _, next := range tree.Sections[i+1:] {
			if next.Level <= section.Level {
				if next.Range.Start.Line > 0 {
					end = next.Range.Start.Line - 1
				}
				break
			}
		}
		if end <= section.Range.Start.Line {
			continue
		}
		ranges = append(ranges, protocol.FoldingRange{
			StartLine: section.Range.Start.Line,
			EndLine:   end,
		})
	}
	return ranges
}

// foldEntries folds multi-line BibTeX entries.
func foldEntries(ctx context.Context, req *foldingRequest) []protocol.FoldingRange {
	tree := req.Document().BibtexTree()
	if tree == nil {
		return nil
	}

	var ranges []protocol.FoldingRange
	for i := range tree.Entries {
		entry := &tree.Entries[i]
		if entry.Range.End.Line <= entry.Range.Start.Line {
			continue
		}
		ranges = append(ranges, protocol.FoldingRange{
			StartLine: entry.Range.Start.Line,
			EndLine:   entry.Range.End.Line,
		})
	}
	return ranges
}
