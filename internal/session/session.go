// Package session holds server-side per-caller session state behind an
// opaque cookie-carried id. The state itself lives in Redis; the cookie
// only names it.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no session exists for an id.
var ErrNotFound = errors.New("session not found")

// Store persists session field maps keyed by opaque session id.
type Store interface {
	Get(ctx context.Context, sid string) (map[string]string, error)
	Set(ctx context.Context, sid string, values map[string]string) error
	Invalidate(ctx context.Context, sid string) error
}

type Config struct {
	CookieName string
	TTL        time.Duration
	// Secure marks the cookie Secure and switches SameSite to None so a
	// cross-origin frontend can carry it on state-changing calls.
	Secure bool
}

// Manager binds the store to the cookie transport.
type Manager struct {
	store Store
	cfg   Config
}

func NewManager(store Store, cfg Config) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "sid"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Manager{store: store, cfg: cfg}
}

// Load binds a Handle to one request/response pair. A missing, unknown, or
// unreadable session yields an empty handle: every Get reports absent and
// the caller is anonymous. Failures never resolve to an identity.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Handle {
	handle := &Handle{manager: m, w: w, ctx: r.Context()}
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return handle
	}
	values, err := m.store.Get(r.Context(), cookie.Value)
	if err != nil {
		return handle
	}
	handle.sid = cookie.Value
	handle.values = values
	return handle
}

// Handle is session state bound to a single request. It satisfies the
// accessor contract the identity resolver consumes.
type Handle struct {
	manager *Manager
	w       http.ResponseWriter
	ctx     context.Context
	sid     string
	values  map[string]string
}

func (h *Handle) Get(key string) (string, bool) {
	value, ok := h.values[key]
	return value, ok
}

// Start replaces any existing session with a fresh one holding values and
// sets the cookie. The old session is destroyed first so a login can never
// inherit stale identity fields.
func (h *Handle) Start(values map[string]string) error {
	h.Invalidate()
	sid := uuid.NewString()
	if err := h.manager.store.Set(h.ctx, sid, values); err != nil {
		return err
	}
	h.sid = sid
	h.values = values
	http.SetCookie(h.w, h.manager.cookie(sid, h.manager.cfg.TTL))
	return nil
}

// Invalidate destroys the session and expires the cookie. Idempotent: safe
// to call with no active session.
func (h *Handle) Invalidate() {
	if h.sid != "" {
		_ = h.manager.store.Invalidate(h.ctx, h.sid)
		h.sid = ""
	}
	h.values = nil
	http.SetCookie(h.w, h.manager.cookie("", -time.Hour))
}

func (m *Manager) cookie(value string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if m.cfg.Secure {
		cookie.SameSite = http.SameSiteNoneMode
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(ttl / time.Second)
	}
	return cookie
}
