package runtime

import (
	"sync"

	"price-pact/contract"
)

// Registry maps an account id to the currently active connection handle
// for that account, independent of room membership. Registering again
// overwrites the previous handle: last connection wins, which is what
// makes reconnection work without an explicit logout.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]contract.EventSink)}
}

func (r *Registry) Register(account string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[account] = sink
}

// Drop removes the account's handle, but only when sink is still the
// registered one. A disconnect racing a reconnect must not tear down
// the fresh connection.
func (r *Registry) Drop(account string, sink contract.EventSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.sessions[account]
	if !ok || current != sink {
		return false
	}
	delete(r.sessions, account)
	return true
}

func (r *Registry) Lookup(account string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[account]
	return sink, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
