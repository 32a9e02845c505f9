package session

import "sync"

// Registry owns every live session, keyed by (bot, interlocutor). Sessions
// are created on first contact and live for the process lifetime; eviction
// is the embedding application's concern.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func key(botID, interlocutor string) string {
	return botID + "\x00" + interlocutor
}

// Get returns the session for (botID, interlocutor), creating it on first
// contact. The second return value reports whether it already existed.
func (r *Registry) Get(botID, interlocutor string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(botID, interlocutor)
	if s, ok := r.sessions[k]; ok {
		return s, true
	}
	s := NewSession(botID, interlocutor)
	r.sessions[k] = s
	return s, false
}
