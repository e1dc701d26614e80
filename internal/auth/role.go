package auth

import (
	"fmt"
	"strings"
)

// Role is the normalized caller role. Only the two values below exist;
// anything else is rejected before comparison.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

// NormalizeRole canonicalizes a raw role value: trim, lower-case, validate.
// Stored rows and session fields may carry stray whitespace or mixed case,
// so every role comparison goes through here instead of trusting the raw
// string.
func NormalizeRole(raw string) (Role, error) {
	switch role := Role(strings.ToLower(strings.TrimSpace(raw))); role {
	case RoleStudent, RoleInstructor:
		return role, nil
	default:
		return "", fmt.Errorf("role must be %q or %q", RoleStudent, RoleInstructor)
	}
}
