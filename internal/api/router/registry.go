package router

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/search/session"
	"github.com/google/uuid"
)

const DefaultSessionTTL = 30 * time.Minute

// SessionFactory builds a session for a client. clientID scopes the recent
// search history; sessions of the same client share it.
type SessionFactory func(ctx context.Context, clientID string) *session.Session

type entry struct {
	session  *session.Session
	clientID string
	lastUsed time.Time
}

// Registry owns the live search sessions of the API.
type Registry struct {
	factory SessionFactory
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type RegistryOption func(r *Registry)

func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(factory SessionFactory, opts ...RegistryOption) *Registry {
	r := &Registry{
		factory:  factory,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Create(ctx context.Context, clientID string) (string, *session.Session) {
	if clientID == "" {
		clientID = "default"
	}
	s := r.factory(ctx, clientID)
	id := uuid.NewString()

	r.mu.Lock()
	r.sessions[id] = &entry{session: s, clientID: clientID, lastUsed: r.now()}
	r.mu.Unlock()

	slog.Info("Session created", "session", id, "client", clientID)
	return id, s
}

// Get returns the session and marks it as used.
func (r *Registry) Get(id string) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.session, true
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.session.Close()
		slog.Info("Session closed", "session", id)
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reap closes sessions idle for longer than the TTL and returns how many.
func (r *Registry) Reap() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var idle []*entry
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, e := range idle {
		e.session.Close()
	}
	if len(idle) > 0 {
		slog.Info("Reaped idle sessions", "count", len(idle))
	}
	return len(idle)
}

// Run reaps on every interval until ctx is done, then closes all sessions.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Reap()
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range all {
		e.session.Close()
	}
}
