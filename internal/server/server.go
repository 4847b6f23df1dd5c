// Package server provides the core server state and the before/after
// orchestration that brackets every client message.
package server

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/action"
	"texls/internal/build"
	"texls/internal/component"
	"texls/internal/config"
	"texls/internal/diagnostics"
	"texls/internal/distro"
	"texls/internal/syntax"
	"texls/internal/workspace"
)

var log = commonlog.GetLogger("texls.server")

// Server holds the state of the language server.
type Server struct {
	workspace   *workspace.Manager
	actions     *action.Queue
	components  *component.Database
	diagnostics *diagnostics.Manager
	builds      *build.Manager
	distro      distro.Distribution

	// pipeline serializes the before/handler/after sequence per message.
	pipeline sync.Mutex

	mu                 sync.RWMutex
	configStrategy     config.Strategy
	clientCapabilities *protocol.ClientCapabilities
	shuttingDown       bool
}

// New creates the server. The component database is loaded here, during
// startup sequencing, so initialization order stays deterministic.
func New() *Server {
	return &Server{
		workspace:   workspace.NewManager(),
		actions:     action.NewQueue(),
		components:  component.Load(),
		diagnostics: diagnostics.NewManager(),
		builds:      build.NewManager(),
		distro:      distro.Detect(),
	}
}

// Workspace returns the snapshot store.
func (s *Server) Workspace() *workspace.Manager {
	return s.workspace
}

// Actions returns the deferred-action queue.
func (s *Server) Actions() *action.Queue {
	return s.actions
}

// Components returns the static component database.
func (s *Server) Components() *component.Database {
	return s.components
}

// Diagnostics returns the diagnostics manager.
func (s *Server) Diagnostics() *diagnostics.Manager {
	return s.diagnostics
}

// Builds returns the build manager.
func (s *Server) Builds() *build.Manager {
	return s.builds
}

// Distro returns the detected TeX distribution.
func (s *Server) Distro() distro.Distribution {
	return s.distro
}

// Options returns the active configuration.
func (s *Server) Options() *config.Options {
	s.mu.RLock()
	strategy := s.configStrategy
	s.mu.RUnlock()
	if strategy == nil {
		return config.Default()
	}
	return strategy.Get()
}

// SetClientCapabilities records the capabilities from the initialize
// request and selects the configuration strategy for the session.
func (s *Server) SetClientCapabilities(capabilities *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientCapabilities = capabilities
	s.configStrategy = config.Select(capabilities)
}

// ClientCapabilities returns the capabilities recorded at initialization.
func (s *Server) ClientCapabilities() *protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientCapabilities
}

// IsShuttingDown returns true once shutdown has been requested.
func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuttingDown
}

// SetShuttingDown marks the server as shutting down.
func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	s.shuttingDown = true
	s.mu.Unlock()
	s.builds.CancelAll()
}

// Execute brackets a handler with the workspace-maintenance phases. Client
// messages run strictly serially: the whole before/handler/after sequence
// of one message completes before the next begins, so no feature
// computation ever observes a snapshot mutation.
func Execute[T any](s *Server, glspCtx *glsp.Context, handler func() (T, error)) (T, error) {
	s.pipeline.Lock()
	defer s.pipeline.Unlock()

	s.BeforeMessage()
	result, err := handler()
	s.AfterMessage(glspCtx)
	return result, err
}

// BeforeMessage reconciles the workspace with the filesystem: it discovers
// newly referenced child documents to a fixpoint and reloads stale
// file-backed documents.
func (s *Server) BeforeMessage() {
	s.detectChildren()
	s.reloadStale()
}

// detectChildren repeatedly loads every unresolved include path that
// exists on disk, stopping when a full pass loads nothing new. Loaded
// documents never reappear as unresolved, so cyclic include graphs
// terminate.
func (s *Server) detectChildren() {
	options := s.Options()
	for {
		changed := false
		for _, path := range s.workspace.Get().UnresolvedIncludes(options) {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if _, err := s.workspace.Load(path, options); err != nil {
				log.Debugf("failed to load child document %s: %v", path, err)
			} else {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

// reloadStale reloads every file-backed document whose on-disk timestamp
// is newer than the loaded one. I/O errors are logged and skipped; a
// document that cannot be re-read keeps its previous state.
func (s *Server) reloadStale() {
	options := s.Options()
	for _, doc := range s.workspace.Get().Documents {
		if doc.Path == "" {
			continue
		}
		info, err := os.Stat(doc.Path)
		if err != nil {
			log.Debugf("failed to stat %s: %v", doc.Path, err)
			continue
		}
		if info.ModTime().After(doc.Modified) {
			if _, err := s.workspace.Load(doc.Path, options); err != nil {
				log.Warningf("failed to reload %s: %v", doc.Path, err)
			}
		}
	}
}

// AfterMessage drains the action queue to exhaustion. A dispatched action
// may enqueue further actions; those are processed before this returns.
func (s *Server) AfterMessage(glspCtx *glsp.Context) {
	for {
		batch := s.actions.Take()
		if len(batch) == 0 {
			return
		}
		for _, act := range batch {
			s.dispatch(glspCtx, act)
		}
	}
}

func (s *Server) dispatch(glspCtx *glsp.Context, act action.Action) {
	switch act := act.(type) {
	case action.RegisterCapabilities:
		s.registerCapabilities()
	case action.LoadDistribution:
		s.loadDistribution(glspCtx)
	case action.LoadConfiguration:
		s.loadConfiguration()
	case action.UpdateConfiguration:
		s.updateConfiguration(act.Settings)
	case action.DetectRoot:
		s.DetectRoot(act.URI)
	case action.PublishDiagnostics:
		s.publishDiagnostics(glspCtx)
	case action.RunLinter:
		s.runLinter(act.URI, act.Reason)
	case action.Build:
		s.buildOnSave(act.URI)
	case action.CancelBuild:
		s.builds.Cancel(act.Token)
	}
}

// registerCapabilities performs the one-time configuration negotiation:
// the strategy variant was fixed at initialize; this records the outcome.
func (s *Server) registerCapabilities() {
	capabilities := s.ClientCapabilities()
	switch {
	case config.HasPullSupport(capabilities):
		log.Info("client supports configuration pull")
	case config.HasPushSupport(capabilities):
		log.Info("client pushes configuration changes")
	default:
		log.Notice("client sends no configuration; running on defaults")
	}
}

// loadDistribution resolves the toolchain and reports an unusable one to
// the user as a single warning. Features degrade rather than fail.
func (s *Server) loadDistribution(glspCtx *glsp.Context) {
	log.Infof("detected TeX distribution: %s", s.distro.Kind())
	if s.distro.Kind() == distro.KindUnknown {
		s.showMessage(glspCtx, protocol.MessageTypeWarning,
			"Your TeX distribution could not be detected. "+
				"Please make sure that it is in your PATH.")
		return
	}
	if err := s.distro.Load(context.Background()); err != nil {
		message := "The file database of your TeX distribution seems to be corrupt. " +
			"Please rebuild it and try again."
		if err == distro.ErrKpsewhichNotFound {
			message = "An error occurred while executing `kpsewhich`. " +
				"Please make sure that your distribution is in your PATH."
		}
		s.showMessage(glspCtx, protocol.MessageTypeWarning, message)
	}
}

// loadConfiguration reloads every file-backed document against the current
// options, so include resolution picks up changed directories.
func (s *Server) loadConfiguration() {
	options := s.Options()
	for _, doc := range s.workspace.Get().Documents {
		if doc.Path == "" {
			continue
		}
		if _, err := s.workspace.Load(doc.Path, options); err != nil {
			log.Debugf("failed to reload %s: %v", doc.Path, err)
		}
	}
}

func (s *Server) updateConfiguration(settings any) {
	s.mu.RLock()
	strategy := s.configStrategy
	s.mu.RUnlock()
	if strategy != nil {
		strategy.Set(settings)
	}
	s.actions.Push(action.LoadConfiguration{})
}

// DetectRoot walks ancestor directories upward from uri's path. At each
// level, if no loaded document includes uri yet, every sibling document of
// a recognized language at that level is loaded, then the check repeats.
// The walk stops at the first level with an including document or at the
// filesystem root; each level is visited exactly once.
func (s *Server) DetectRoot(uri string) {
	options := s.Options()
	path, err := workspace.URIToPath(uri)
	if err != nil {
		return
	}
	if options.LaTeX.RootDirectory != "" {
		s.loadSiblings(options.LaTeX.RootDirectory, options)
		return
	}

	dir := filepath.Dir(path)
	for {
		if s.workspace.Get().FindParent(uri, options) != nil {
			return
		}
		s.loadSiblings(dir, options)

		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// loadSiblings loads every not-yet-loaded document of a recognized
// language directly inside dir. I/O failures are logged and skipped.
func (s *Server) loadSiblings(dir string, options *config.Options) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debugf("failed to read directory %s: %v", dir, err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, ok := syntax.LanguageByPath(path); !ok {
			continue
		}
		if s.workspace.Get().FindByPath(path) != nil {
			continue
		}
		if _, err := s.workspace.Load(path, options); err != nil {
			log.Debugf("failed to load sibling %s: %v", path, err)
		}
	}
}

// publishDiagnostics recomputes and emits the diagnostic set for every
// loaded document.
func (s *Server) publishDiagnostics(glspCtx *glsp.Context) {
	if glspCtx == nil || glspCtx.Notify == nil {
		return
	}
	for _, doc := range s.workspace.Get().Documents {
		s.diagnostics.Update(doc)
		glspCtx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         doc.URI,
			Diagnostics: s.diagnostics.Get(doc),
		})
	}
}

// runLinter lints uri when the configuration enables the trigger.
func (s *Server) runLinter(uri string, reason action.LintReason) {
	options := s.Options()
	shouldLint := false
	switch reason {
	case action.LintOnChange:
		shouldLint = options.LaTeX.Lint.OnChange
	case action.LintOnSave:
		shouldLint = options.LaTeX.Lint.OnSave
	}
	if !shouldLint {
		return
	}

	doc := s.workspace.Get().Find(uri)
	if doc == nil || doc.Language != syntax.LanguageLatex {
		return
	}
	s.diagnostics.UpdateLint(uri, diagnostics.Lint(context.Background(), doc.Text))
	s.actions.Push(action.PublishDiagnostics{})
}

// buildOnSave triggers a build for uri's effective root when builds on
// save are enabled.
func (s *Server) buildOnSave(uri string) {
	options := s.Options()
	if !options.LaTeX.Build.OnSave {
		return
	}
	snapshot := s.workspace.Get()
	doc := snapshot.Find(uri)
	if doc == nil {
		return
	}
	if parent := snapshot.FindParent(uri, options); parent != nil {
		doc = parent
	}
	if doc.Path == "" {
		return
	}
	// The save notification has no response to produce; running the build
	// tool inside the pipeline would block every later message, including
	// the cancel, until it exits.
	path := doc.Path
	go s.builds.Build(context.Background(), path, "", options)
}

func (s *Server) showMessage(glspCtx *glsp.Context, typ protocol.MessageType, message string) {
	if glspCtx == nil || glspCtx.Notify == nil {
		log.Warning(message)
		return
	}
	glspCtx.Notify(protocol.ServerWindowShowMessage, &protocol.ShowMessageParams{
		Type:    typ,
		Message: message,
	})
}
