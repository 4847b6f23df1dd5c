// Package component provides the static metadata database describing the
// commands and environments contributed by packages and classes.
package component

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"texls/internal/workspace"
)

// Argument is a named argument of a command.
type Argument struct {
	Name string `json:"name"`
}

// Command is a command contributed by a component, without its backslash.
type Command struct {
	Name      string     `json:"name"`
	Arguments []Argument `json:"arguments,omitempty"`
}

// Component describes one package or class: the file names it is known
// under, the components it loads in turn, and what it contributes.
type Component struct {
	FileNames    []string  `json:"fileNames"`
	References   []string  `json:"references"`
	Commands     []Command `json:"commands"`
	Environments []string  `json:"environments"`
}

// Name returns the component's primary file name, or an empty string for
// the kernel.
func (c *Component) Name() string {
	if len(c.FileNames) == 0 {
		return ""
	}
	return c.FileNames[0]
}

// Database is the full component database. It is read-only after Load and
// shared by reference.
type Database struct {
	Components []Component `json:"components"`
}

//go:embed components.json
var componentsJSON []byte

var (
	database     *Database
	loadDatabase sync.Once
)

// Load parses the embedded database. It is called explicitly during startup
// so that initialization order is deterministic; later calls return the
// same instance.
func Load() *Database {
	loadDatabase.Do(func() {
		db := &Database{}
		if err := json.Unmarshal(componentsJSON, db); err != nil {
			// The payload is embedded at build time; failing to decode it
			// is a build defect, not a runtime condition.
			panic(fmt.Sprintf("component database is corrupt: %v", err))
		}
		database = db
	})
	return database
}

// Find resolves a file name such as "amsmath.sty" to its component.
func (db *Database) Find(name string) *Component {
	for i := range db.Components {
		for _, fileName := range db.Components[i].FileNames {
			if fileName == name {
				return &db.Components[i]
			}
		}
	}
	return nil
}

// Kernel returns the unique component with no file names. It is implicitly
// active in every document.
func (db *Database) Kernel() *Component {
	for i := range db.Components {
		if len(db.Components[i].FileNames) == 0 {
			return &db.Components[i]
		}
	}
	panic("component database has no kernel")
}

// Related computes the transitive closure of components imported by the
// given documents: the kernel, every component a document declares, and
// everything those components reference. Unknown names contribute nothing.
// The result keeps first-seen order and never contains two components with
// the same file-name set.
func (db *Database) Related(documents []*workspace.Document) []*Component {
	start := []*Component{db.Kernel()}
	for _, doc := range documents {
		tree := doc.LatexTree()
		if tree == nil {
			continue
		}
		for _, name := range tree.Components {
			if comp := db.Find(name); comp != nil {
				start = append(start, comp)
			}
		}
	}

	var all []*Component
	seen := make(map[string]bool)
	var add func(comp *Component)
	add = func(comp *Component) {
		key := strings.Join(comp.FileNames, "\x00")
		if seen[key] {
			return
		}
		seen[key] = true
		all = append(all, comp)
		for _, ref := range comp.References {
			if next := db.Find(ref); next != nil {
				add(next)
			}
		}
	}
	for _, comp := range start {
		add(comp)
	}
	return all
}

// Documentation returns a short markdown description of a package or class,
// if the database knows it.
func (db *Database) Documentation(name string) (string, bool) {
	var comp *Component
	if c := db.Find(name + ".sty"); c != nil {
		comp = c
	} else if c := db.Find(name + ".cls"); c != nil {
		comp = c
	} else if c := db.Find(name); c != nil {
		comp = c
	}
	if comp == nil {
		return "", false
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "`%s`", comp.Name())
	if len(comp.Commands) > 0 {
		fmt.Fprintf(&sb, " provides %d commands", len(comp.Commands))
	}
	if len(comp.Environments) > 0 {
		if len(comp.Commands) > 0 {
			sb.WriteString(" and")
		} else {
			sb.WriteString(" provides")
		}
		fmt.Fprintf(&sb, " %d environments", len(comp.Environments))
	}
	sb.WriteString(".")
	if len(comp.References) > 0 {
		fmt.Fprintf(&sb, "\n\nLoads: %s", strings.Join(comp.References, ", "))
	}
	return sb.String(), true
}
