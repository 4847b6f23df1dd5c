package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/action"
	"texls/internal/syntax"
)

// DidOpen installs the opened document and queues root detection, a lint
// run and a diagnostics publish.
func DidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv := serverInstance
	if srv == nil {
		log.Warning("server instance not available in DidOpen")
		return nil
	}

	uri := params.TextDocument.URI
	language, ok := syntax.LanguageByLanguageID(params.TextDocument.LanguageID)
	if !ok {
		if language, ok = syntax.LanguageByPath(uri); !ok {
			log.Debugf("ignoring document with unsupported language: %s", uri)
			return nil
		}
	}

	log.Debugf("document opened: %s (%s, %d bytes)", uri, language, len(params.TextDocument.Text))
	srv.Workspace().Open(uri, params.TextDocument.Text, language, srv.Options())

	srv.Actions().Push(action.DetectRoot{URI: uri})
	srv.Actions().Push(action.RunLinter{URI: uri, Reason: action.LintOnSave})
	srv.Actions().Push(action.PublishDiagnostics{})
	return nil
}

// DidChange replaces the document's text. Sync is full-text: the last
// change event carries the complete document.
func DidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	srv := serverInstance
	if srv == nil {
		log.Warning("server instance not available in DidChange")
		return nil
	}

	uri := params.TextDocument.URI
	for _, change := range params.ContentChanges {
		var text string
		switch change := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			text = change.Text
		case protocol.TextDocumentContentChangeEventWhole:
			text = change.Text
		default:
			continue
		}
		if _, err := srv.Workspace().Update(uri, text, srv.Options()); err != nil {
			log.Warningf("change for unknown document %s", uri)
			return nil
		}
	}

	srv.Actions().Push(action.RunLinter{URI: uri, Reason: action.LintOnChange})
	srv.Actions().Push(action.PublishDiagnostics{})
	return nil
}

// DidSave queues a lint run, a diagnostics publish and a build trigger.
func DidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	srv := serverInstance
	if srv == nil {
		return nil
	}

	uri := params.TextDocument.URI
	srv.Actions().Push(action.RunLinter{URI: uri, Reason: action.LintOnSave})
	srv.Actions().Push(action.PublishDiagnostics{})
	srv.Actions().Push(action.Build{URI: uri})
	return nil
}

// DidClose is deliberately a no-op: closed documents stay in the snapshot
// because other documents may still include them.
func DidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}
