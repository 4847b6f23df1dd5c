// Package distro detects and loads the external TeX distribution.
package distro

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("texls.distro")

// Kind identifies the detected distribution family.
type Kind int

const (
	KindUnknown Kind = iota
	KindTexlive
	KindMiktex
)

func (k Kind) String() string {
	switch k {
	case KindTexlive:
		return "TeX Live"
	case KindMiktex:
		return "MiKTeX"
	default:
		return "Unknown"
	}
}

// Load errors reported to the user as one-time warnings.
var (
	ErrKpsewhichNotFound   = errors.New("kpsewhich could not be executed")
	ErrCorruptFileDatabase = errors.New("the file database is corrupt")
)

// Distribution is the capability interface over the external toolchain.
// The concrete variant is selected once at startup by Detect.
type Distribution interface {
	Kind() Kind

	// Load resolves the distribution's file name database. It is invoked
	// asynchronously after initialization.
	Load(ctx context.Context) error

	// HasPackage reports whether the distribution ships the given file.
	HasPackage(name string) bool
}

// Detect probes the PATH for a supported distribution.
func Detect() Distribution {
	if _, err := exec.LookPath("miktex"); err == nil {
		return &kpsewhichDistribution{kind: KindMiktex}
	}
	if _, err := exec.LookPath("kpsewhich"); err == nil {
		return &kpsewhichDistribution{kind: KindTexlive}
	}
	return &unknownDistribution{}
}

// kpsewhichDistribution resolves files through the kpsewhich tool shared by
// TeX Live and MiKTeX.
type kpsewhichDistribution struct {
	kind  Kind
	mu    sync.RWMutex
	files map[string]bool
}

func (d *kpsewhichDistribution) Kind() Kind {
	return d.kind
}

func (d *kpsewhichDistribution) Load(ctx context.Context) error {
	root, err := exec.CommandContext(ctx, "kpsewhich", "-var-value", "TEXMFDIST").Output()
	if err != nil {
		return ErrKpsewhichNotFound
	}
	dbPath := filepath.Join(strings.TrimSpace(string(root)), "ls-R")

	out, err := os.ReadFile(dbPath)
	if err != nil {
		return ErrCorruptFileDatabase
	}

	files := parseFileDatabase(out)
	if len(files) == 0 {
		return ErrCorruptFileDatabase
	}

	d.mu.Lock()
	d.files = files
	d.mu.Unlock()
	log.Infof("loaded file database with %d entries", len(files))
	return nil
}

// parseFileDatabase reads the ls-R format: comment lines start with '%',
// directory headers end with ':', everything else is a file name.
func parseFileDatabase(data []byte) map[string]bool {
	files := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasSuffix(line, ":") || strings.HasPrefix(line, "%") {
			continue
		}
		files[line] = true
	}
	return files
}

func (d *kpsewhichDistribution) HasPackage(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.files[name]
}

// unknownDistribution is the degraded variant used when no toolchain is on
// the PATH. Features that need the distribution return empty results.
type unknownDistribution struct{}

func (d *unknownDistribution) Kind() Kind { return KindUnknown }

func (d *unknownDistribution) Load(ctx context.Context) error { return ErrKpsewhichNotFound }

func (d *unknownDistribution) HasPackage(name string) bool { return false }
