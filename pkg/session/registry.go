// Package session keeps the per-browser dashboard state: one installation wizard and one config
// editor for each visitor, discarded after a period of inactivity.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runic/mailman/pkg/editor"
	"github.com/runic/mailman/pkg/wizard"
)

// Session is the state owned by one browser.
type Session struct {
	ID     string
	Wizard *wizard.Wizard
	Editor *editor.Editor

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns the time the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Factory builds the wizard and editor for a new session.
type Factory func(id string) (*wizard.Wizard, *editor.Editor)

// Registry maps session ids to sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  Factory
	limit    int // Zero for no limit.
	now      func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLimit caps the number of live sessions; opening one more drops the least recently seen.
func WithLimit(n int) Option {
	return func(r *Registry) { r.limit = n }
}

// NewRegistry returns an empty registry creating sessions with factory.
func NewRegistry(factory Factory, opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the session with id, recording its use, or false if there is no such session.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Open returns the session with id, creating a new session with a fresh id if id is unknown.
// created reports whether a new session was made.
func (r *Registry) Open(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := r.Lookup(id); ok {
			return s, false
		}
	}
	id = uuid.NewString()
	w, e := r.factory(id)
	s = &Session{ID: id, Wizard: w, Editor: e, lastSeen: r.now()}
	r.mu.Lock()
	if r.limit > 0 && len(r.sessions) >= r.limit {
		r.lockedEvictOldest()
	}
	r.sessions[id] = s
	r.mu.Unlock()
	expSessionsCreated.Add(1)
	return s, true
}

// lockedEvictOldest drops the least recently seen session.  Lock must be held.
func (r *Registry) lockedEvictOldest() {
	var oldest *Session
	for _, s := range r.sessions {
		if oldest == nil || s.LastSeen().Before(oldest.LastSeen()) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(r.sessions, oldest.ID)
		expSessionsEvicted.Add(1)
	}
}

// Remove discards the session with id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// removeIdle discards sessions not seen since cutoff, returning the number removed.
func (r *Registry) removeIdle(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
