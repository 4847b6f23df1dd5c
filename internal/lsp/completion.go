package lsp

import (
	"context"
	"encoding/json"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/component"
	"texls/internal/feature"
	"texls/internal/syntax"
)

// maxCompletionItems caps the list size so huge component databases do not
// flood slow clients.
const maxCompletionItems = 200

// itemData is the payload attached to completion items that support lazy
// resolution. It round-trips through JSON, so resolve decodes it back from
// whatever the client echoes.
type itemData struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`
	Key  string `json:"key,omitempty"`
}

const (
	itemKindCommand     = "command"
	itemKindEnvironment = "environment"
	itemKindCitation    = "citation"
	itemKindPackage     = "package"
	itemKindClass       = "class"
	itemKindFile        = "file"
	itemKindEntryType   = "entryType"
	itemKindFieldName   = "fieldName"
	itemKindLabel       = "label"
)

type completionFunc = feature.ProviderFunc[protocol.CompletionParams, []protocol.CompletionItem]

// completionProvider is the full completion surface: every provider runs
// for every request, contributes nothing when the cursor is outside its
// context, and the outputs are concatenated in registration order.
var completionProvider = feature.Concat(
	completionFunc(completeLatexCommands),
	completionFunc(completeEnvironments),
	completionFunc(completeCitations),
	completionFunc(completeLabelReferences),
	completionFunc(completeIncludePaths),
	completionFunc(completeImports),
	completionFunc(completeBibtexCommands),
	completionFunc(completeEntryTypes),
	completionFunc(completeFieldNames),
)

// Completion handles the textDocument/completion request.
func Completion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	req, err := makeRequest(params.TextDocument.URI, *params)
	if err != nil {
		return nil, err
	}

	items := completionProvider.Execute(context.Background(), req)
	incomplete := false
	if len(items) > maxCompletionItems {
		items = items[:maxCompletionItems]
		incomplete = true
	}
	if items == nil {
		items = []protocol.CompletionItem{}
	}
	return &protocol.CompletionList{IsIncomplete: incomplete, Items: items}, nil
}

// CompletionResolve handles the completionItem/resolve request. Items
// without a recognizable data payload come back unchanged; resolve never
// fails the request over a stale or malformed payload.
func CompletionResolve(ctx *glsp.Context, item *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	data, ok := decodeItemData(item.Data)
	if !ok {
		return item, nil
	}

	switch data.Kind {
	case itemKindPackage, itemKindClass:
		if text, found := component.Load().Documentation(data.Name); found {
			item.Documentation = protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: text,
			}
		}

	case itemKindCitation:
		srv := serverInstance
		if srv == nil {
			return item, nil
		}
		doc := srv.Workspace().Get().Find(data.URI)
		if doc == nil {
			return item, nil
		}
		tree := doc.BibtexTree()
		if tree == nil {
			return item, nil
		}
		entry := tree.EntryByKey(data.Key)
		if entry == nil {
			return item, nil
		}
		if text, found := syntax.RenderCitation(entry); found {
			item.Documentation = protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: text,
			}
		}
	}
	return item, nil
}

// decodeItemData recovers the payload attached by the completion
// providers. Clients echo Data as generic JSON, so it is re-marshalled
// into the typed form.
func decodeItemData(data any) (itemData, bool) {
	if data == nil {
		return itemData{}, false
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return itemData{}, false
	}
	var decoded itemData
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.Kind == "" {
		return itemData{}, false
	}
	return decoded, true
}

func completionKind(kind protocol.CompletionItemKind) *protocol.CompletionItemKind {
	return &kind
}

func strPtr(s string) *string {
	return &s
}
