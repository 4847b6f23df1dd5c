// Package build runs the external build tool for the effective root of a
// document and tracks in-flight builds by cancellation token.
package build

import (
	"context"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"texls/internal/config"
)

var log = commonlog.GetLogger("texls.build")

// Status is the outcome reported to the client.
type Status int

const (
	StatusSuccess Status = iota
	StatusError
	StatusFailure
	StatusCancelled
)

// Result is the response payload of a build request.
type Result struct {
	Status Status `json:"status"`
}

// Manager executes builds one at a time per token and supports aborting an
// in-flight build through its token.
type Manager struct {
	mu      sync.Mutex
	running map[string]context.CancelFunc
}

// NewManager returns a manager with no builds in flight.
func NewManager() *Manager {
	return &Manager{running: make(map[string]context.CancelFunc)}
}

// Build compiles the document at path with the configured executable and
// blocks until the build finishes. The token identifies the build while it
// runs; clients that supplied a progress token can abort it via Cancel,
// builds without one get a generated token and run to completion.
func (m *Manager) Build(ctx context.Context, path, token string, options *config.Options) Result {
	buildCtx, cancel := context.WithCancel(ctx)
	if token == "" {
		token = uuid.NewString()
	}

	m.mu.Lock()
	m.running[token] = cancel
	m.mu.Unlock()
	defer func() {
		cancel()
		m.mu.Lock()
		delete(m.running, token)
		m.mu.Unlock()
	}()

	build := options.LaTeX.Build
	args := append([]string{}, build.Args...)
	if build.OutputDirectory != "" {
		args = append(args, "-outdir="+build.OutputDirectory)
	}
	args = append(args, filepath.Base(path))

	cmd := exec.CommandContext(buildCtx, build.Executable, args...)
	cmd.Dir = filepath.Dir(path)

	log.Infof("building %s with %s", path, build.Executable)
	err := cmd.Run()
	switch {
	case buildCtx.Err() == context.Canceled:
		return Result{Status: StatusCancelled}
	case err != nil:
		if _, ok := err.(*exec.ExitError); ok {
			return Result{Status: StatusError}
		}
		log.Warningf("build tool could not be started: %v", err)
		return Result{Status: StatusFailure}
	default:
		return Result{Status: StatusSuccess}
	}
}

// Cancel aborts the build identified by token, if it is still running.
func (m *Manager) Cancel(token string) {
	m.mu.Lock()
	cancel, ok := m.running[token]
	m.mu.Unlock()
	if ok {
		cancel()
	}
}

// CancelAll aborts every in-flight build. Used at shutdown.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, cancel := range m.running {
		cancel()
		delete(m.running, token)
	}
}
