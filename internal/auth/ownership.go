package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ErrNotFound is the sentinel ownership and enrollment loaders return when
// the addressed resource does not exist.
var ErrNotFound = errors.New("resource not found")

// Ownership configures the ownership check for one endpoint. Load is a
// concrete closure returning the stored owner id for a resource id; no
// reflective field lookup.
type Ownership struct {
	// Resource names the kind in denial messages, e.g. "course".
	Resource string
	// Param is the path segment carrying the resource id.
	Param string
	// Load returns the raw owner-id value for the resource, or ErrNotFound.
	Load func(ctx context.Context, id int64) (any, error)
}

// RequireOwner verifies that the authenticated caller owns the resource
// addressed by the request path. An existing but unowned resource is
// Forbidden even for a caller with an otherwise permitted role.
func RequireOwner(cfg Ownership) Guard {
	return func(r *http.Request) (*http.Request, *Denial) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			return nil, Deny(KindUnauthenticated, "authentication required")
		}
		id, err := ParsePathID(r.PathValue(cfg.Param))
		if err != nil {
			return nil, Deny(KindBadRequest, "invalid "+cfg.Resource+" id")
		}
		rawOwner, err := cfg.Load(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, Deny(KindNotFound, cfg.Resource+" not found")
			}
			return nil, Deny(KindServerError, "internal server error")
		}
		ownerID, err := CoerceOwnerID(rawOwner)
		if err != nil {
			// A stored owner id that is not numeric is a data integrity
			// bug, not a client mistake. Never a silent allow.
			return nil, Deny(KindServerError, "internal server error")
		}
		if ownerID != identity.UserID {
			return nil, Deny(KindForbidden, "access denied: you are not the owner of this "+cfg.Resource)
		}
		return nil, nil
	}
}

// ParsePathID parses a path identifier as a positive integer.
func ParsePathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", raw, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

// CoerceOwnerID turns a stored owner-field value into an integer user id.
// Integer column types pass through; a numeric string is parsed; anything
// else is an error the caller must treat as a server-side defect.
func CoerceOwnerID(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("owner id %q is not numeric", v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("owner id has unsupported type %T", value)
	}
}
