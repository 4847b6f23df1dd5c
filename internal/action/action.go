// Package action defines the deferred side effects queued during message
// handling and drained by the after-phase of the pipeline.
package action

import (
	"sync"
)

// LintReason says what triggered a lint run; configuration decides whether
// each trigger actually lints.
type LintReason int

const (
	LintOnChange LintReason = iota
	LintOnSave
)

// Action is a tagged value describing one deferred side effect. The closed
// set of variants below is dispatched by type switch in the after-phase.
type Action interface {
	isAction()
}

// RegisterCapabilities performs the one-time configuration negotiation.
type RegisterCapabilities struct{}

// LoadDistribution resolves the external TeX toolchain.
type LoadDistribution struct{}

// LoadConfiguration re-fetches configuration and reloads every open
// file-backed document against it.
type LoadConfiguration struct{}

// UpdateConfiguration applies client-pushed settings.
type UpdateConfiguration struct {
	Settings any
}

// DetectRoot walks ancestor directories of URI looking for a document that
// includes it.
type DetectRoot struct {
	URI string
}

// PublishDiagnostics recomputes and emits diagnostics for every document.
type PublishDiagnostics struct{}

// RunLinter conditionally lints URI, depending on the reason and the
// configured lint triggers.
type RunLinter struct {
	URI    string
	Reason LintReason
}

// Build triggers a build for URI's effective root.
type Build struct {
	URI string
}

// CancelBuild aborts the in-flight build identified by Token.
type CancelBuild struct {
	Token string
}

func (RegisterCapabilities) isAction() {}
func (LoadDistribution) isAction()     {}
func (LoadConfiguration) isAction()    {}
func (UpdateConfiguration) isAction()  {}
func (DetectRoot) isAction()           {}
func (PublishDiagnostics) isAction()   {}
func (RunLinter) isAction()            {}
func (Build) isAction()                {}
func (CancelBuild) isAction()          {}

// Queue is a process-wide FIFO of pending actions. Producers push from the
// handler phase and from action dispatch itself; the after-phase drains it
// to exhaustion.
type Queue struct {
	mu      sync.Mutex
	pending []Action
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an action.
func (q *Queue) Push(action Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, action)
}

// Take removes and returns all currently pending actions in FIFO order.
// Actions pushed while the caller processes the returned batch are picked
// up by the next Take; drain loops call Take until it returns nothing.
func (q *Queue) Take() []Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	taken := q.pending
	q.pending = nil
	return taken
}
