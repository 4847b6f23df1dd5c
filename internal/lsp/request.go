package lsp

import (
	"github.com/pkg/errors"

	"texls/internal/feature"
)

// makeRequest assembles the immutable feature request for one client
// message: the current snapshot, the resolved document view, the client's
// capabilities and the active options. An unknown URI is a request-level
// error; it never touches workspace state.
func makeRequest[P any](uri string, params P) (*feature.Request[P], error) {
	srv := serverInstance
	if srv == nil {
		return nil, errors.New("server instance not available")
	}

	snapshot := srv.Workspace().Get()
	doc := snapshot.Find(uri)
	if doc == nil {
		return nil, errors.Errorf("unknown document: %s", uri)
	}

	options := srv.Options()
	return &feature.Request[P]{
		Params:       params,
		View:         feature.NewDocumentView(snapshot, doc, options),
		Capabilities: srv.ClientCapabilities(),
		Options:      options,
	}, nil
}
