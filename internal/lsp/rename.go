package lsp

import (
	"context"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/feature"
	"texls/internal/syntax"
)

type renameRequest = feature.Request[protocol.RenameParams]
type renameFunc = feature.ProviderFunc[protocol.RenameParams, *protocol.WorkspaceEdit]

var renameProvider = feature.Choice(
	renameFunc(renameCommand),
	renameFunc(renameEnvironment),
	renameFunc(renameLabel),
	renameFunc(renameCitation),
)

// Rename handles the textDocument/rename request.
func Rename(ctx *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	req, err := makeRequest(params.TextDocument.URI, *params)
	if err != nil {
		return nil, err
	}
	return renameProvider.Execute(context.Background(), req), nil
}

// PrepareRename handles the textDocument/prepareRename request. It
// reports the range of the renameable token under the cursor, or nothing
// when rename is not applicable there.
func PrepareRename(ctx *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	req, err := makeRequest(params.TextDocument.URI, protocol.RenameParams{
		TextDocumentPositionParams: params.TextDocumentPositionParams,
	})
	if err != nil {
		return nil, err
	}
	if rng, ok := renameTokenRange(req); ok {
		return rng, nil
	}
	return nil, nil
}

// renameTokenRange finds the token a rename at the request position would
// operate on.
func renameTokenRange(req *renameRequest) (protocol.Range, bool) {
	doc := req.Document()
	pos := req.Params.Position

	if tree := doc.LatexTree(); tree != nil {
		for _, label := range tree.Labels {
			if syntax.RangeContains(label.Name.Range, pos) {
				return label.Name.Range, true
			}
		}
		for _, citation := range tree.Citations {
			if syntax.RangeContains(citation.Range, pos) {
				return citation.Range, true
			}
		}
		if env := tree.EnvironmentAt(pos); env != nil {
			if syntax.RangeContains(env.Begin.Range, pos) {
				return env.Begin.Range, true
			}
			return env.End.Range, true
		}
		if cmd := tree.CommandAt(pos); cmd != nil {
			return cmd.Range, true
		}
	}
	if tree := doc.BibtexTree(); tree != nil {
		for i := range tree.Entries {
			entry := &tree.Entries[i]
			if !entry.IsComment() && syntax.RangeContains(entry.Key.Range, pos) {
				return entry.Key.Range, true
			}
		}
		if cmd := tree.CommandAt(pos); cmd != nil {
			return cmd.Range, true
		}
	}
	return protocol.Range{}, false
}

// renameCommand renames every occurrence of the command under the cursor
// across related documents. The replacement keeps the backslash regardless
// of how the client spells the new name.
func renameCommand(ctx context.Context, req *renameRequest) *protocol.WorkspaceEdit {
	doc := req.Document()
	pos := req.Params.Position

	var name string
	if tree := doc.LatexTree(); tree != nil {
		if cmd := tree.CommandAt(pos); cmd != nil {
			name = cmd.Text
		}
	} else if tree := doc.BibtexTree(); tree != nil {
		if cmd := tree.CommandAt(pos); cmd != nil {
			name = cmd.Text
		}
	}
	// Renaming \begin or \end itself would corrupt every environment.
	if name == "" || name == "begin" || name == "end" {
		return nil
	}
	newText := "\\" + strings.TrimPrefix(req.Params.NewName, "\\")

	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
	for _, related := range req.Related() {
		var commands []syntax.Token
		if tree := related.LatexTree(); tree != nil {
			commands = tree.Commands
		} else if tree := related.BibtexTree(); tree != nil {
			commands = tree.Commands
		}
		for _, cmd := range commands {
			if cmd.Text == name {
				changes[related.URI] = append(changes[related.URI], protocol.TextEdit{
					Range:   cmd.Range,
					NewText: newText,
				})
			}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return &protocol.WorkspaceEdit{Changes: changes}
}

// renameEnvironment renames the matched \begin/\end pair under the cursor.
func renameEnvironment(ctx context.Context, req *renameRequest) *protocol.WorkspaceEdit {
	tree := req.Document().LatexTree()
	if tree == nil {
		return nil
	}
	env := tree.EnvironmentAt(req.Params.Position)
	if env == nil {
		return nil
	}

	uri := req.Document().URI
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{
			uri: {
				{Range: env.Begin.Range, NewText: req.Params.NewName},
				{Range: env.End.Range, NewText: req.Params.NewName},
			},
		},
	}
}

// renameLabel renames a label and all of its references across related
// documents.
func renameLabel(ctx context.Context, req *renameRequest) *protocol.WorkspaceEdit {
	tree := req.Document().LatexTree()
	if tree == nil {
		return nil
	}
	pos := req.Params.Position

	var name string
	for _, label := range tree.Labels {
		if syntax.RangeContains(label.Name.Range, pos) {
			name = label.Name.Text
			break
		}
	}
	if name == "" {
		return nil
	}

	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
	for _, related := range req.Related() {
		relatedTree := related.LatexTree()
		if relatedTree == nil {
			continue
		}
		for _, label := range relatedTree.Labels {
			if label.Name.Text == name {
				changes[related.URI] = append(changes[related.URI], protocol.TextEdit{
					Range:   label.Name.Range,
					NewText: req.Params.NewName,
				})
			}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return &protocol.WorkspaceEdit{Changes: changes}
}

// renameCitation renames a bibliography key: the entry itself and every
// citation of it.
func renameCitation(ctx context.Context, req *renameRequest) *protocol.WorkspaceEdit {
	doc := req.Document()
	pos := req.Params.Position

	var key string
	if tree := doc.LatexTree(); tree != nil {
		for _, citation := range tree.Citations {
			if syntax.RangeContains(citation.Range, pos) {
				key = citation.Text
				break
			}
		}
	} else if tree := doc.BibtexTree(); tree != nil {
		for i := range tree.Entries {
			entry := &tree.Entries[i]
			if !entry.IsComment() && syntax.RangeContains(entry.Key.Range, pos) {
				key = entry.Key.Text
				break
			}
		}
	}
	if key == "" {
		return nil
	}

	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
	for _, related := range req.Related() {
		if tree := related.LatexTree(); tree != nil {
			for _, citation := range tree.Citations {
				if citation.Text == key {
					changes[related.URI] = append(changes[related.URI], protocol.TextEdit{
						Range:   citation.Range,
						NewText: req.Params.NewName,
					})
				}
			}
		}
		if tree := related.BibtexTree(); tree != nil {
			if entry := tree.EntryByKey(key); entry != nil {
				changes[related.URI] = append(changes[related.URI], protocol.TextEdit{
					Range:   entry.Key.Range,
					NewText: req.Params.NewName,
				})
			}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return &protocol.WorkspaceEdit{Changes: changes}
}
