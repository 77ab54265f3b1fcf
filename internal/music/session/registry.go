package session

import "sync"

// Factory builds a session for a guild on first use.
type Factory func(guildID string) *Session

// Registry holds the live sessions keyed by guild ID. It replaces any
// ambient singleton state: handlers receive it through the bot.
type Registry struct {
	mu       sync.RWMutex
	factory  Factory
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:  factory,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the guild's session, creating it on demand.
func (r *Registry) GetOrCreate(guildID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[guildID]; ok {
		return s
	}
	s := r.factory(guildID)
	r.sessions[guildID] = s
	return s
}

// Get returns the guild's session if one exists.
func (r *Registry) Get(guildID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[guildID]
	return s, ok
}

// Remove discards the guild's session.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, guildID)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ForEach visits a snapshot of the live sessions.
func (r *Registry) ForEach(fn func(guildID string, s *Session)) {
	r.mu.RLock()
	snapshot := make(map[string]*Session, len(r.sessions))
	for id, s := range r.sessions {
		snapshot[id] = s
	}
	r.mu.RUnlock()

	for id, s := range snapshot {
		fn(id, s)
	}
}
