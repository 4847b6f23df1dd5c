package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/action"
)

const serverName = "texls"

var serverVersion = "0.1.0"

// Initialize handles the initialize request: it records the client's
// capabilities, selects the configuration strategy and advertises the
// server's capabilities.
func Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if srv := serverInstance; srv != nil {
		srv.SetClientCapabilities(&params.Capabilities)
	}

	trueVal := true
	falseVal := false
	changeKind := protocol.TextDocumentSyncKindFull

	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &changeKind,
			Save: &protocol.SaveOptions{
				IncludeText: &falseVal,
			},
		},

		HoverProvider:      &trueVal,
		DefinitionProvider: &trueVal,
		ReferencesProvider: &trueVal,

		DocumentHighlightProvider: &trueVal,
		DocumentSymbolProvider:    &trueVal,
		WorkspaceSymbolProvider:   &trueVal,

		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"\\", "{", "}", "@", "/", " "},
			ResolveProvider:   &trueVal,
		},

		DocumentLinkProvider: &protocol.DocumentLinkOptions{
			ResolveProvider: &falseVal,
		},

		DocumentFormattingProvider: &trueVal,

		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: &trueVal,
		},

		FoldingRangeProvider: &trueVal,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &serverVersion,
		},
	}, nil
}

// Initialized handles the initialized notification. The startup work runs
// through the action queue so it is sequenced with everything else the
// after-phase processes.
func Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	srv := serverInstance
	if srv == nil {
		return nil
	}
	srv.Actions().Push(action.RegisterCapabilities{})
	srv.Actions().Push(action.PublishDiagnostics{})
	srv.Actions().Push(action.LoadDistribution{})
	srv.Actions().Push(action.LoadConfiguration{})
	return nil
}

// Shutdown marks the server as shutting down and aborts in-flight builds.
func Shutdown(ctx *glsp.Context) error {
	if srv := serverInstance; srv != nil {
		srv.SetShuttingDown()
	}
	return nil
}

// Exit handles the exit notification.
func Exit(ctx *glsp.Context) error {
	return nil
}
