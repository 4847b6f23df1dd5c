package lsp

import (
	"context"
	"os"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/feature"
	"texls/internal/workspace"
)

type linkRequest = feature.Request[protocol.DocumentLinkParams]
type linkFunc = feature.ProviderFunc[protocol.DocumentLinkParams, []protocol.DocumentLink]

var documentLinkProvider = feature.Concat(
	linkFunc(linkIncludes),
)

// DocumentLink handles the textDocument/documentLink request.
func DocumentLink(ctx *glsp.Context, params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	req, err := makeRequest(params.TextDocument.URI, *params)
	if err != nil {
		return nil, err
	}
	return documentLinkProvider.Execute(context.Background(), req), nil
}

// linkIncludes turns every resolvable include directive into a clickable
// link. Loaded documents win; otherwise the first target that exists on
// disk is used.
func linkIncludes(ctx context.Context, req *linkRequest) []protocol.DocumentLink {
	var links []protocol.DocumentLink
	for _, include := range req.Document().Includes {
		target := resolveLinkTarget(req, include)
		if target == "" {
			continue
		}
		links = append(links, protocol.DocumentLink{
			Range:  include.Range,
			Target: strPtr(target),
		})
	}
	return links
}

func resolveLinkTarget(req *linkRequest, include workspace.ResolvedInclude) string {
	for _, target := range include.Targets {
		if doc := req.Snapshot().FindByPath(target); doc != nil {
			return doc.URI
		}
	}
	for _, target := range include.Targets {
		if _, err := os.Stat(target); err == nil {
			return workspace.PathToURI(target)
		}
	}
	return ""
}
