package feature

import (
	"path/filepath"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/config"
	"texls/internal/syntax"
	"texls/internal/workspace"
)

// Tester builds in-memory workspaces for provider tests. Files are
// addressed by bare names; they are given URIs under a fixed directory so
// include edges between them resolve as on disk.
type Tester struct {
	main     string
	files    []testerFile
	position protocol.Position
	newName  string
	options  *config.Options
}

type testerFile struct {
	name string
	text string
}

const testerDir = "/tmp/texls-test"

// NewTester returns an empty tester with default options.
func NewTester() *Tester {
	return &Tester{options: config.Default()}
}

// File adds a file to the workspace under construction.
func (t *Tester) File(name, text string) *Tester {
	t.files = append(t.files, testerFile{name: name, text: text})
	return t
}

// Main marks the file the request targets.
func (t *Tester) Main(name string) *Tester {
	t.main = name
	return t
}

// Position sets the request position.
func (t *Tester) Position(line, character int) *Tester {
	t.position = protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(character),
	}
	return t
}

// NewName sets the rename target name.
func (t *Tester) NewName(name string) *Tester {
	t.newName = name
	return t
}

// Options replaces the default options.
func (t *Tester) Options(options *config.Options) *Tester {
	t.options = options
	return t
}

// URI returns the URI a file name is registered under.
func (t *Tester) URI(name string) string {
	return workspace.PathToURI(filepath.Join(testerDir, name))
}

// View assembles the snapshot and resolves the main document's view.
func (t *Tester) View() DocumentView {
	manager := workspace.NewManager()
	for _, file := range t.files {
		language, ok := syntax.LanguageByPath(file.name)
		if !ok {
			language = syntax.LanguageLatex
		}
		manager.Open(t.URI(file.name), file.text, language, t.options)
	}
	snapshot := manager.Get()
	current := snapshot.Find(t.URI(t.main))
	if current == nil {
		panic("tester: main file was not added")
	}
	return NewDocumentView(snapshot, current, t.options)
}

func (t *Tester) request() (DocumentView, protocol.TextDocumentPositionParams) {
	view := t.View()
	params := protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: t.URI(t.main)},
		Position:     t.position,
	}
	return view, params
}

// PositionRequest builds a request for position-based features.
func (t *Tester) PositionRequest() *Request[protocol.TextDocumentPositionParams] {
	view, params := t.request()
	return &Request[protocol.TextDocumentPositionParams]{
		Params:       params,
		View:         view,
		Capabilities: &protocol.ClientCapabilities{},
		Options:      t.options,
	}
}

// CompletionRequest builds a request for completion providers.
func (t *Tester) CompletionRequest() *Request[protocol.CompletionParams] {
	view, params := t.request()
	return &Request[protocol.CompletionParams]{
		Params:       protocol.CompletionParams{TextDocumentPositionParams: params},
		View:         view,
		Capabilities: &protocol.ClientCapabilities{},
		Options:      t.options,
	}
}

// RenameRequest builds a request for rename providers.
func (t *Tester) RenameRequest() *Request[protocol.RenameParams] {
	view, params := t.request()
	return &Request[protocol.RenameParams]{
		Params: protocol.RenameParams{
			TextDocumentPositionParams: params,
			NewName:                    t.newName,
		},
		View:         view,
		Capabilities: &protocol.ClientCapabilities{},
		Options:      t.options,
	}
}

// MakeRequest builds a request with explicit params, for features whose
// parameter type carries more than a position.
func MakeRequest[P any](t *Tester, params P) *Request[P] {
	return &Request[P]{
		Params:       params,
		View:         t.View(),
		Capabilities: &protocol.ClientCapabilities{},
		Options:      t.options,
	}
}

// DocumentRequest builds a request for whole-document features.
func (t *Tester) DocumentRequest() *Request[protocol.TextDocumentIdentifier] {
	view, params := t.request()
	return &Request[protocol.TextDocumentIdentifier]{
		Params:       params.TextDocument,
		View:         view,
		Capabilities: &protocol.ClientCapabilities{},
		Options:      t.options,
	}
}
