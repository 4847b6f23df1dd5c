// Package lsp implements the protocol handlers and the feature providers
// they execute.
package lsp

import (
	"encoding/json"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/server"
)

var log = commonlog.GetLogger("texls.lsp")

// serverInstance holds the server state shared by all handlers. It is set
// once from main before the transport starts.
var serverInstance *server.Server

// SetServer sets the server instance for handlers to access.
func SetServer(srv *server.Server) {
	serverInstance = srv
}

// Custom request methods not covered by the protocol handler.
const (
	MethodBuild         = "textDocument/build"
	MethodForwardSearch = "textDocument/forwardSearch"
)

// Handler dispatches client messages. Standard methods go through the
// generated protocol handler; build and forward search are handled here.
// Every message is wrapped in the before/after workspace-maintenance
// phases.
type Handler struct {
	protocol protocol.Handler
}

// NewHandler builds the dispatch table.
func NewHandler() *Handler {
	h := &Handler{}
	h.protocol = protocol.Handler{
		Initialize:  Initialize,
		Initialized: Initialized,
		Shutdown:    Shutdown,
		Exit:        Exit,
		SetTrace: func(ctx *glsp.Context, params *protocol.SetTraceParams) error {
			return nil
		},

		TextDocumentDidOpen:   DidOpen,
		TextDocumentDidChange: DidChange,
		TextDocumentDidSave:   DidSave,
		TextDocumentDidClose:  DidClose,

		TextDocumentCompletion:        Completion,
		CompletionItemResolve:         CompletionResolve,
		TextDocumentHover:             Hover,
		TextDocumentDefinition:        Definition,
		TextDocumentReferences:        References,
		TextDocumentDocumentHighlight: DocumentHighlight,
		TextDocumentDocumentSymbol:    DocumentSymbol,
		WorkspaceSymbol:               WorkspaceSymbol,
		TextDocumentDocumentLink:      DocumentLink,
		TextDocumentRename:            Rename,
		TextDocumentPrepareRename:     PrepareRename,
		TextDocumentFoldingRange:      FoldingRange,
		TextDocumentFormatting:        Formatting,

		WorkspaceDidChangeConfiguration: DidChangeConfiguration,
		WindowWorkDoneProgressCancel:    WorkDoneProgressCancel,
	}
	return h
}

// Handle implements glsp.Handler. The before phase reconciles the
// workspace, the after phase drains the action queue; both run for every
// message, including unsupported ones, so the workspace converges even
// when a client sends methods we ignore.
func (h *Handler) Handle(ctx *glsp.Context) (any, bool, bool, error) {
	srv := serverInstance
	if srv == nil {
		return h.protocol.Handle(ctx)
	}

	// A build blocks until the build tool exits, which can take minutes. It
	// runs outside the pipeline's critical section so that a concurrent
	// window/workDoneProgress/cancel message can still be dispatched and
	// abort it; only the workspace reconciliation is serialized.
	if ctx.Method == MethodBuild {
		var params BuildParams
		if err := json.Unmarshal(ctx.Params, &params); err != nil {
			return nil, true, false, err
		}
		if _, err := server.Execute(srv, ctx, func() (any, error) { return nil, nil }); err != nil {
			return nil, true, true, err
		}
		result, err := Build(ctx, &params)
		return result, true, true, err
	}

	type handled struct {
		result      any
		validMethod bool
		validParams bool
	}
	result, err := server.Execute(srv, ctx, func() (handled, error) {
		switch ctx.Method {
		case MethodForwardSearch:
			result, validParams, err := handleForwardSearch(ctx)
			return handled{result, true, validParams}, err
		default:
			result, validMethod, validParams, err := h.protocol.Handle(ctx)
			return handled{result, validMethod, validParams}, err
		}
	})
	return result.result, result.validMethod, result.validParams, err
}

func handleForwardSearch(ctx *glsp.Context) (any, bool, error) {
	var params protocol.TextDocumentPositionParams
	if err := json.Unmarshal(ctx.Params, &params); err != nil {
		return nil, false, err
	}
	result, err := ForwardSearch(ctx, &params)
	return result, true, err
}
