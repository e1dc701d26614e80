// Package auth is the session-based authentication and authorization core:
// role normalization, identity resolution from session state, ownership and
// enrollment checks, and the guard chain that composes them around handlers.
//
// Every ambiguous input resolves to a denial, never to implicit access.
package auth

import (
	"context"
	"net/http"
)

// Guard inspects a request and either lets it pass, optionally with an
// enriched context, or denies it with a typed Denial.
type Guard func(r *http.Request) (*http.Request, *Denial)

// Translator renders a Denial onto the response. Injected so the handler
// package owns the body encoding.
type Translator func(w http.ResponseWriter, r *http.Request, d *Denial)

// Chain wraps next with guards evaluated strictly in the order given. The
// first denial short-circuits: the handler body never runs for a denied
// request, so a refused request has no side effects.
func Chain(translate Translator, next http.Handler, guards ...Guard) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, guard := range guards {
			req, denial := guard(r)
			if denial != nil {
				translate(w, r, denial)
				return
			}
			if req != nil {
				r = req
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Authenticated resolves the caller's identity from the request session and
// stores it in the context for the guards and handler that follow.
func Authenticated() Guard {
	return func(r *http.Request) (*http.Request, *Denial) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			return nil, Deny(KindUnauthenticated, "authentication required")
		}
		identity, ok := ResolveIdentity(sess)
		if !ok {
			return nil, Deny(KindUnauthenticated, "authentication required")
		}
		ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
		return r.WithContext(ctx), nil
	}
}

// RequireRole denies authenticated callers whose normalized role is outside
// the allowed set. Must run after Authenticated.
func RequireRole(allowed ...Role) Guard {
	return func(r *http.Request) (*http.Request, *Denial) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			return nil, Deny(KindUnauthenticated, "authentication required")
		}
		for _, role := range allowed {
			if identity.Role == role {
				return nil, nil
			}
		}
		return nil, Deny(KindForbidden, "access denied: insufficient role")
	}
}
