package lsp

import (
	"sort"
	"sync"

	"quill/internal/diagnostic"
)

// Registry tracks the language servers connected during this session,
// keyed by their session ServerID. Lookups of departed servers fail as
// "not found"; callers treat that as the server having legitimately
// disappeared.
type Registry struct {
	mu      sync.RWMutex
	clients map[diagnostic.ServerID]DiagnosticClient
	nextID  diagnostic.ServerID
}

// NewRegistry creates an empty server registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[diagnostic.ServerID]DiagnosticClient),
	}
}

// AllocID hands out the next session-unique server identity. IDs are never
// reused within a session.
func (r *Registry) AllocID() diagnostic.ServerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return r.nextID
}

// Add registers a connected client under its ID.
func (r *Registry) Add(client DiagnosticClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.ID()] = client
}

// Get retrieves a client by ID.
func (r *Registry) Get(id diagnostic.ServerID) (DiagnosticClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[id]
	return client, ok
}

// Remove drops a client, typically after its connection closed.
func (r *Registry) Remove(id diagnostic.ServerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

// All returns the registered clients ordered by ID.
func (r *Registry) All() []DiagnosticClient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]DiagnosticClient, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID() < clients[j].ID() })
	return clients
}
