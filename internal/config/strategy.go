package config

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Strategy abstracts how configuration reaches the server. The variant is
// selected once at initialization from the client's capabilities: clients
// that push settings through workspace/didChangeConfiguration get a caching
// strategy, all others run on defaults for the whole session.
type Strategy interface {
	// Get returns the current options. The returned value is immutable;
	// a configuration change installs a new value.
	Get() *Options

	// Set applies a settings payload pushed by the client.
	Set(settings any)
}

// Select picks the strategy variant for the given client capabilities.
func Select(capabilities *protocol.ClientCapabilities) Strategy {
	if HasPushSupport(capabilities) {
		return &pushStrategy{options: Default()}
	}
	return &staticStrategy{options: Default()}
}

// HasPullSupport reports whether the client answers workspace/configuration
// requests.
func HasPullSupport(capabilities *protocol.ClientCapabilities) bool {
	return capabilities != nil &&
		capabilities.Workspace != nil &&
		capabilities.Workspace.Configuration != nil &&
		*capabilities.Workspace.Configuration
}

// HasPushSupport reports whether the client sends didChangeConfiguration
// notifications.
func HasPushSupport(capabilities *protocol.ClientCapabilities) bool {
	return capabilities != nil &&
		capabilities.Workspace != nil &&
		capabilities.Workspace.DidChangeConfiguration != nil
}

// pushStrategy caches the settings most recently pushed by the client.
type pushStrategy struct {
	mu      sync.RWMutex
	options *Options
}

func (s *pushStrategy) Get() *Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options
}

func (s *pushStrategy) Set(settings any) {
	parsed := Parse(settings)
	s.mu.Lock()
	s.options = parsed
	s.mu.Unlock()
}

// staticStrategy serves defaults for clients that never send configuration.
type staticStrategy struct {
	options *Options
}

func (s *staticStrategy) Get() *Options {
	return s.options
}

func (s *staticStrategy) Set(settings any) {}
