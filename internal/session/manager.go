package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	cookieName = "rowbench"
	sidKey     = "sid"

	// idleExpiry is how long an untouched context survives before the
	// lazy sweep drops it.
	idleExpiry = 12 * time.Hour
)

// Manager resolves a browser to its server-side Context via a session
// cookie. Contexts are in-memory only; restarting the server forgets them.
type Manager struct {
	store *sessions.CookieStore

	mu       sync.Mutex
	contexts map[string]*Context
}

// NewManager creates a Manager with the given cookie-signing secret.
func NewManager(secret string) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30) // 30 days
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	return &Manager{
		store:    store,
		contexts: make(map[string]*Context),
	}
}

// Attach returns the Context for the request's session, creating the
// session and context as needed. Expired contexts are swept lazily here.
func (m *Manager) Attach(w http.ResponseWriter, r *http.Request) *Context {
	// CookieStore only errors on a tampered cookie; a fresh session is
	// the right answer either way.
	sess, _ := m.store.Get(r, cookieName)

	sid, ok := sess.Values[sidKey].(string)
	if !ok || sid == "" {
		sid = uuid.New().String()
		sess.Values[sidKey] = sid
		_ = sess.Save(r, w)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()

	ctx, ok := m.contexts[sid]
	if !ok {
		ctx = newContext()
		m.contexts[sid] = ctx
	}
	ctx.touch()
	return ctx
}

// sweepLocked drops contexts idle past expiry. Callers hold m.mu.
func (m *Manager) sweepLocked() {
	cutoff := time.Now().Add(-idleExpiry)
	for sid, ctx := range m.contexts {
		if ctx.idleSince().Before(cutoff) {
			delete(m.contexts, sid)
		}
	}
}

// InvalidateAllResults drops every session's cached result set. Called
// when the underlying data changed outside the sessions' own writes.
func (m *Manager) InvalidateAllResults() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ctx := range m.contexts {
		ctx.InvalidateResults()
	}
}

// Len reports how many live contexts the manager tracks.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contexts)
}
