// Package diagnostics collects per-document diagnostics from the available
// sources and merges them for publication.
package diagnostics

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/workspace"
)

// Manager keeps the latest diagnostics per source and URI. Sources update
// independently; Get merges them in a stable order.
type Manager struct {
	mu     sync.Mutex
	syntax map[string][]protocol.Diagnostic
	lint   map[string][]protocol.Diagnostic
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{
		syntax: make(map[string][]protocol.Diagnostic),
		lint:   make(map[string][]protocol.Diagnostic),
	}
}

// Update recomputes the syntax diagnostics for a document from its tree.
func (m *Manager) Update(doc *workspace.Document) {
	var items []protocol.Diagnostic
	if tree := doc.BibtexTree(); tree != nil {
		for _, err := range tree.Errors {
			severity := protocol.DiagnosticSeverityError
			source := "bibtex"
			items = append(items, protocol.Diagnostic{
				Range:    err.Range,
				Severity: &severity,
				Source:   &source,
				Message:  err.Message,
			})
		}
	}
	m.mu.Lock()
	m.syntax[doc.URI] = items
	m.mu.Unlock()
}

// UpdateLint replaces the lint diagnostics for a URI.
func (m *Manager) UpdateLint(uri string, items []protocol.Diagnostic) {
	m.mu.Lock()
	m.lint[uri] = items
	m.mu.Unlock()
}

// Get returns the merged diagnostics for a document: syntax first, then
// lint findings.
func (m *Manager) Get(doc *workspace.Document) []protocol.Diagnostic {
	m.mu.Lock()
	defer m.mu.Unlock()

	merged := make([]protocol.Diagnostic, 0, len(m.syntax[doc.URI])+len(m.lint[doc.URI]))
	merged = append(merged, m.syntax[doc.URI]...)
	merged = append(merged, m.lint[doc.URI]...)
	return merged
}
