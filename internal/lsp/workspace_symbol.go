package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/workspace"
)

const maxWorkspaceSymbols = 500

// WorkspaceSymbol handles the workspace/symbol request. It scans every
// loaded document for sections, labels and bibliography entries matching
// the query.
func WorkspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	srv := serverInstance
	if srv == nil {
		return nil, nil
	}
	return collectWorkspaceSymbols(srv.Workspace().Get(), params.Query), nil
}

// collectWorkspaceSymbols matches symbols case-insensitively by substring;
// an empty query matches everything.
func collectWorkspaceSymbols(snapshot *workspace.Snapshot, query string) []protocol.SymbolInformation {
	query = strings.ToLower(query)

	var results []protocol.SymbolInformation
	for _, doc := range snapshot.Documents {
		for _, info := range documentSymbolInformation(doc) {
			if query != "" && !strings.Contains(strings.ToLower(info.Name), query) {
				continue
			}
			results = append(results, info)
			if len(results) >= maxWorkspaceSymbols {
				return results
			}
		}
	}
	return results
}
