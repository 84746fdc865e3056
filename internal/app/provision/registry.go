package provision

import (
	"context"
	"strings"
	"sync"

	"github.com/foodmarket/provision-backend/pkg/logger"
)

// Observer receives the view of a session after every successful operation.
type Observer interface {
	Publish(identity string, view View)
}

type sessionEntry struct {
	mu      sync.Mutex
	session *Session
	// pruned is set under mu once the entry has left the registry.
	pruned bool
}

// Registry owns one Session per staff identity and runs operations on a
// session one at a time.
type Registry struct {
	deps Dependencies
	opts Options

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	observer Observer
}

func NewRegistry(deps Dependencies, opts Options) *Registry {
	return &Registry{
		deps:     deps,
		opts:     opts,
		sessions: make(map[string]*sessionEntry),
	}
}

// SetObserver installs o. Passing nil disables publishing.
func (r *Registry) SetObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = o
}

func (r *Registry) entry(identity string) *sessionEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[identity]
	if !ok {
		e = &sessionEntry{session: NewSession(identity, r.deps, r.opts)}
		r.sessions[identity] = e
		logger.Info("Provision session created", map[string]interface{}{
			"identity": identity,
			"sessions": len(r.sessions),
		})
	}
	return e
}

// acquire returns the identity's entry locked. An entry pruned between the
// lookup and the lock is retried so work never lands on a discarded session.
func (r *Registry) acquire(identity string) *sessionEntry {
	for {
		e := r.entry(identity)
		e.mu.Lock()
		if !e.pruned {
			return e
		}
		e.mu.Unlock()
	}
}

func (r *Registry) currentObserver() Observer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.observer
}

// Do runs fn against the identity's session and returns the operation result
// together with the resulting view.
func (r *Registry) Do(ctx context.Context, identity string, fn func(s *Session) (Result, error)) (Result, View, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return Result{}, View{}, ErrNoIdentity
	}

	e := r.acquire(identity)
	res, err := fn(e.session)
	view := e.session.View(ctx)
	e.mu.Unlock()

	if err == nil {
		if o := r.currentObserver(); o != nil {
			o.Publish(identity, view)
		}
	}
	return res, view, err
}

// View returns the identity's current view, creating the session if needed.
// Nothing is published.
func (r *Registry) View(ctx context.Context, identity string) (View, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return View{}, ErrNoIdentity
	}

	e := r.acquire(identity)
	defer e.mu.Unlock()
	return e.session.View(ctx), nil
}

// PruneIdle discards sessions with no queued visitor, no cart and no open
// search. Sessions busy with an operation are skipped. Held carts live in the
// HoldStore and are not affected.
func (r *Registry) PruneIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for identity, e := range r.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.session.Idle() {
			e.pruned = true
			delete(r.sessions, identity)
			pruned++
		}
		e.mu.Unlock()
	}
	if pruned > 0 {
		logger.Info("Idle provision sessions pruned", map[string]interface{}{
			"pruned":    pruned,
			"remaining": len(r.sessions),
		})
	}
	return pruned
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
