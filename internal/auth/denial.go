package auth

import "net/http"

// Kind classifies a denial or verification failure. Each kind has a stable
// HTTP status and error code; handlers never invent their own mapping.
type Kind int

const (
	KindUnauthenticated Kind = iota
	KindForbidden
	KindBadRequest
	KindNotFound
	KindConflict
	KindServerError
)

func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) Code() string {
	switch k {
	case KindUnauthenticated:
		return "unauthorized"
	case KindForbidden:
		return "access_denied"
	case KindBadRequest:
		return "invalid_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal_error"
	}
}

// Denial is a typed guard refusal. Message is safe to return to the client;
// internal error detail never travels through here.
type Denial struct {
	Kind    Kind
	Message string
}

func Deny(kind Kind, message string) *Denial {
	return &Denial{Kind: kind, Message: message}
}
