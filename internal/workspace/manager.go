package workspace

import (
	"sync"

	"github.com/pkg/errors"

	"texls/internal/config"
	"texls/internal/syntax"
)

// Manager owns the process-wide current snapshot. All mutations go through
// it: each one builds a new snapshot and swaps it in atomically, so readers
// holding the previous snapshot are never disturbed.
type Manager struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewManager creates a manager with an empty snapshot.
func NewManager() *Manager {
	return &Manager{snapshot: NewSnapshot()}
}

// Get returns the current snapshot. The returned value is immutable.
func (m *Manager) Get() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Open parses text delivered by the client and installs the document.
func (m *Manager) Open(uri, text string, language syntax.Language, options *config.Options) *Document {
	doc := NewDocument(DocumentParams{
		URI:      uri,
		Text:     text,
		Language: language,
		Options:  options,
	})
	m.install(doc)
	return doc
}

// Update replaces the text of a loaded document, producing a new Document
// value with a fresh tree. Unknown URIs are an error.
func (m *Manager) Update(uri, text string, options *config.Options) (*Document, error) {
	current := m.Get().Find(uri)
	if current == nil {
		return nil, errors.Errorf("unknown document: %s", uri)
	}
	doc := NewDocument(DocumentParams{
		URI:      uri,
		Text:     text,
		Language: current.Language,
		Options:  options,
	})
	m.install(doc)
	return doc, nil
}

// Load reads a file from disk and installs it. A failed load leaves the
// current snapshot untouched.
func (m *Manager) Load(path string, options *config.Options) (*Document, error) {
	doc, err := LoadDocument(path, options)
	if err != nil {
		return nil, err
	}
	m.install(doc)
	return doc, nil
}

func (m *Manager) install(doc *Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = m.snapshot.push(doc)
}
