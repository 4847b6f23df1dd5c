// Package feature provides the generic request and provider framework every
// language feature is composed from.
package feature

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/config"
	"texls/internal/workspace"
)

// DocumentView bundles a document with its analysis context: the snapshot
// it came from and every document related to it through include edges.
type DocumentView struct {
	Snapshot *workspace.Snapshot
	Current  *workspace.Document
	Related  []*workspace.Document
}

// NewDocumentView resolves the related set for the given document.
func NewDocumentView(snapshot *workspace.Snapshot, current *workspace.Document, options *config.Options) DocumentView {
	return DocumentView{
		Snapshot: snapshot,
		Current:  current,
		Related:  snapshot.Relations(current.URI, options),
	}
}

// Request is the immutable bundle handed to every provider invoked for one
// client message: the typed parameters, the resolved document view, the
// client's capabilities and the active configuration.
type Request[P any] struct {
	Params       P
	View         DocumentView
	Capabilities *protocol.ClientCapabilities
	Options      *config.Options
}

// Document returns the document the request targets.
func (r *Request[P]) Document() *workspace.Document {
	return r.View.Current
}

// Related returns the documents related to the request's document.
func (r *Request[P]) Related() []*workspace.Document {
	return r.View.Related
}

// Snapshot returns the workspace snapshot the request was built against.
func (r *Request[P]) Snapshot() *workspace.Snapshot {
	return r.View.Snapshot
}

// Provider is one pluggable analysis: given a request it produces its
// output. Providers never fail; a provider with nothing to contribute
// returns an empty output.
type Provider[P, O any] interface {
	Execute(ctx context.Context, req *Request[P]) O
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc[P, O any] func(ctx context.Context, req *Request[P]) O

func (f ProviderFunc[P, O]) Execute(ctx context.Context, req *Request[P]) O {
	return f(ctx, req)
}

type concatProvider[P, O any] struct {
	providers []Provider[P, []O]
}

// Concat composes list providers by concatenation: every provider runs
// against the same request, in registration order, and the outputs are
// appended in that order.
func Concat[P, O any](providers ...Provider[P, []O]) Provider[P, []O] {
	return &concatProvider[P, O]{providers: providers}
}

func (p *concatProvider[P, O]) Execute(ctx context.Context, req *Request[P]) []O {
	var items []O
	for _, provider := range p.providers {
		items = append(items, provider.Execute(ctx, req)...)
	}
	return items
}

type choiceProvider[P, O any] struct {
	providers []Provider[P, *O]
}

// Choice composes optional providers by first match: providers run in
// registration order and the first non-nil result wins, short-circuiting
// the rest.
func Choice[P, O any](providers ...Provider[P, *O]) Provider[P, *O] {
	return &choiceProvider[P, O]{providers: providers}
}

func (p *choiceProvider[P, O]) Execute(ctx context.Context, req *Request[P]) *O {
	for _, provider := range p.providers {
		if item := provider.Execute(ctx, req); item != nil {
			return item
		}
	}
	return nil
}
