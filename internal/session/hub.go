package session

import (
	"sync"
	"time"
)

// Hub tracks the live sessions the server currently owns (one per open
// stream connection), so the reaper can close the ones that went idle.
type Hub struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[*Session]struct{})}
}

// Register adds a session to the hub.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s] = struct{}{}
}

// Unregister removes a session from the hub. Safe to call for a
// session that was never registered.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s)
}

// Len reports how many sessions are currently live.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Reap closes and drops every session idle for longer than ttl.
// Returns how many sessions were closed.
func (h *Hub) Reap(ttl time.Duration) int {
	h.mu.Lock()
	var stale []*Session
	for s := range h.sessions {
		if s.IdleFor() > ttl {
			stale = append(stale, s)
			delete(h.sessions, s)
		}
	}
	h.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// CloseAll tears down every live session, used at shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[*Session]struct{})
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
