package auth

import (
	"context"
	"strconv"
	"strings"
)

// Session field names shared with the login/registration handlers.
const (
	SessionKeyUserID    = "user_id"
	SessionKeyUserEmail = "user_email"
	SessionKeyUserRole  = "user_role"
)

// SessionAccessor is the narrow view of per-request session state this
// package consumes. Implemented by session.Handle.
type SessionAccessor interface {
	Get(key string) (string, bool)
	Start(values map[string]string) error
	Invalidate()
}

// Identity is a resolved caller. It is an input to the other guards and
// authorizes nothing by itself.
type Identity struct {
	UserID int64
	Email  string
	Role   Role
}

type sessionContextKey struct{}
type identityContextKey struct{}

// WithSession binds the request's session accessor to the context.
func WithSession(ctx context.Context, s SessionAccessor) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the session accessor bound by WithSession.
func SessionFromContext(ctx context.Context) (SessionAccessor, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(SessionAccessor)
	return s, ok
}

// IdentityFromContext returns the identity stored by the Authenticated
// guard. Absent until that guard has run and allowed the request.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}

// ResolveIdentity reads the caller's identity out of the session. A missing
// user_id means anonymous. A user_id that is not a positive integer, or a
// role that does not normalize, means the session is corrupt: it is
// invalidated on the spot and the caller stays anonymous.
func ResolveIdentity(s SessionAccessor) (Identity, bool) {
	raw, ok := s.Get(SessionKeyUserID)
	if !ok || strings.TrimSpace(raw) == "" {
		return Identity{}, false
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || userID <= 0 {
		s.Invalidate()
		return Identity{}, false
	}
	rawRole, _ := s.Get(SessionKeyUserRole)
	role, err := NormalizeRole(rawRole)
	if err != nil {
		s.Invalidate()
		return Identity{}, false
	}
	email, _ := s.Get(SessionKeyUserEmail)
	return Identity{UserID: userID, Email: email, Role: role}, true
}
