package verify

import "sync"

// Registry maps decision message IDs to their live sessions so component
// interactions can be routed back. Sessions are shared-nothing; only the map
// itself needs the lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session under its decision message ID.
func (r *Registry) Add(messageID string, session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[messageID] = session
}

// Get returns the session owning the decision message, if any.
func (r *Registry) Get(messageID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[messageID]
	return session, ok
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions that reached a terminal state and returns how many were
// removed. Their timeout has already fired, so the entries are dead weight.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for messageID, session := range r.sessions {
		if session.Resolved() {
			delete(r.sessions, messageID)
			removed++
		}
	}
	return removed
}
