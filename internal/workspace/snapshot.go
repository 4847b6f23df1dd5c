package workspace

import (
	"texls/internal/config"
)

// Snapshot is an immutable ordered collection of documents, valid at one
// instant. Mutations produce a new Snapshot; readers keep a self-consistent
// view for as long as they hold one.
type Snapshot struct {
	Documents []*Document
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Find returns the document with the given URI, if loaded. Absence is not
// an error; callers decide how to react.
func (s *Snapshot) Find(uri string) *Document {
	for _, doc := range s.Documents {
		if doc.URI == uri {
			return doc
		}
	}
	return nil
}

// FindByPath returns the document backed by the given file path, if loaded.
func (s *Snapshot) FindByPath(path string) *Document {
	for _, doc := range s.Documents {
		if doc.Path != "" && doc.Path == path {
			return doc
		}
	}
	return nil
}

// push returns a new snapshot with doc added, replacing any document that
// shares its URI. Order of the remaining documents is preserved.
func (s *Snapshot) push(doc *Document) *Snapshot {
	next := &Snapshot{Documents: make([]*Document, 0, len(s.Documents)+1)}
	replaced := false
	for _, existing := range s.Documents {
		if existing.URI == doc.URI {
			next.Documents = append(next.Documents, doc)
			replaced = true
		} else {
			next.Documents = append(next.Documents, existing)
		}
	}
	if !replaced {
		next.Documents = append(next.Documents, doc)
	}
	return next
}

// linked reports whether either document includes the other.
func (s *Snapshot) linked(a, b *Document) bool {
	return s.includes(a, b) || s.includes(b, a)
}

// includes reports whether parent directly includes child.
func (s *Snapshot) includes(parent, child *Document) bool {
	for _, include := range parent.Includes {
		for _, target := range include.Targets {
			if child.Path != "" && child.Path == target {
				return true
			}
			if PathToURI(target) == child.URI {
				return true
			}
		}
	}
	return false
}

// Relations computes the set of documents reachable from uri by following
// include edges in both directions. Traversal is breadth first with a
// visited set keyed by URI, so cyclic include graphs terminate and the
// result order is discovery order.
func (s *Snapshot) Relations(uri string, options *config.Options) []*Document {
	start := s.Find(uri)
	if start == nil {
		return nil
	}

	visited := map[string]bool{start.URI: true}
	result := []*Document{start}
	queue := []*Document{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, candidate := range s.Documents {
			if visited[candidate.URI] || !s.linked(current, candidate) {
				continue
			}
			visited[candidate.URI] = true
			result = append(result, candidate)
			queue = append(queue, candidate)
		}
	}
	return result
}

// FindParent returns the outermost document that transitively includes uri,
// or nil if no loaded document does. When several top-level ancestors
// exist, standalone documents win, then snapshot order decides.
func (s *Snapshot) FindParent(uri string, options *config.Options) *Document {
	target := s.Find(uri)
	if target == nil {
		return nil
	}

	var ancestors []*Document
	for _, doc := range s.Documents {
		if doc.URI != uri && s.reaches(doc, target) {
			ancestors = append(ancestors, doc)
		}
	}

	var outermost []*Document
	for _, candidate := range ancestors {
		included := false
		for _, other := range ancestors {
			if other != candidate && s.reaches(other, candidate) {
				included = true
				break
			}
		}
		if !included {
			outermost = append(outermost, candidate)
		}
	}

	for _, doc := range outermost {
		if doc.IsStandalone() {
			return doc
		}
	}
	if len(outermost) > 0 {
		return outermost[0]
	}
	return nil
}

// reaches reports whether to is reachable from from by forward include
// edges only. Guarded by a visited set; cycles terminate.
func (s *Snapshot) reaches(from, to *Document) bool {
	visited := map[string]bool{from.URI: true}
	queue := []*Document{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, candidate := range s.Documents {
			if visited[candidate.URI] || !s.includes(current, candidate) {
				continue
			}
			if candidate.URI == to.URI {
				return true
			}
			visited[candidate.URI] = true
			queue = append(queue, candidate)
		}
	}
	return false
}

// UnresolvedIncludes returns the candidate file paths referenced by include
// edges that do not correspond to any loaded document. Already-loaded
// documents never reappear here, which bounds fixpoint child discovery.
func (s *Snapshot) UnresolvedIncludes(options *config.Options) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, doc := range s.Documents {
		for _, include := range doc.Includes {
			resolved := false
			for _, target := range include.Targets {
				if s.FindByPath(target) != nil {
					resolved = true
					break
				}
			}
			if resolved {
				continue
			}
			for _, target := range include.Targets {
				if !seen[target] {
					seen[target] = true
					paths = append(paths, target)
				}
			}
		}
	}
	return paths
}
