package lsp

import (
	"context"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/build"
)

// BuildParams is the request payload of textDocument/build.
type BuildParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	// WorkDoneToken lets the client cancel the build through
	// window/workDoneProgress/cancel.
	WorkDoneToken *protocol.ProgressToken `json:"workDoneToken,omitempty"`
}

// Build handles the textDocument/build request: it compiles the effective
// root of the given document and reports the outcome.
func Build(ctx *glsp.Context, params *BuildParams) (*build.Result, error) {
	srv := serverInstance
	if srv == nil {
		return &build.Result{Status: build.StatusError}, nil
	}

	options := srv.Options()
	snapshot := srv.Workspace().Get()
	doc := snapshot.Find(params.TextDocument.URI)
	if doc == nil {
		return &build.Result{Status: build.StatusError}, nil
	}
	root := doc
	if parent := snapshot.FindParent(doc.URI, options); parent != nil && parent.Path != "" {
		root = parent
	}
	if root.Path == "" {
		return &build.Result{Status: build.StatusFailure}, nil
	}

	token := ""
	if params.WorkDoneToken != nil {
		token = progressTokenString(*params.WorkDoneToken)
	}
	result := srv.Builds().Build(context.Background(), root.Path, token, options)
	return &result, nil
}

// ForwardSearch handles the textDocument/forwardSearch request: it asks
// the configured previewer to show the output location corresponding to
// the given source position.
func ForwardSearch(ctx *glsp.Context, params *protocol.TextDocumentPositionParams) (*build.SearchResult, error) {
	srv := serverInstance
	if srv == nil {
		return &build.SearchResult{Status: build.SearchError}, nil
	}

	options := srv.Options()
	snapshot := srv.Workspace().Get()
	doc := snapshot.Find(params.TextDocument.URI)
	if doc == nil || doc.Path == "" {
		return &build.SearchResult{Status: build.SearchError}, nil
	}
	parent := doc
	if root := snapshot.FindParent(doc.URI, options); root != nil && root.Path != "" {
		parent = root
	}

	result := build.ForwardSearch(context.Background(), doc.Path, parent.Path, int(params.Position.Line), options)
	return &result, nil
}

// progressTokenString normalizes a progress token to the string form used
// as the build manager's cancellation key.
func progressTokenString(token protocol.ProgressToken) string {
	if token.Value == nil {
		return ""
	}
	switch value := token.Value.(type) {
	case string:
		return value
	default:
		return fmt.Sprintf("%v", value)
	}
}
