package auth

import "testing"

func TestNormalizeRole(t *testing.T) {
	for _, raw := range []string{"student", "Student", "STUDENT", "  student  ", "\tStUdEnT\n"} {
		role, err := NormalizeRole(raw)
		if err != nil {
			t.Fatalf("NormalizeRole(%q) returned error: %v", raw, err)
		}
		if role != RoleStudent {
			t.Fatalf("NormalizeRole(%q) = %q, want %q", raw, role, RoleStudent)
		}
	}

	for _, raw := range []string{"  Instructor  ", "instructor", "INSTRUCTOR"} {
		role, err := NormalizeRole(raw)
		if err != nil {
			t.Fatalf("NormalizeRole(%q) returned error: %v", raw, err)
		}
		if role != RoleInstructor {
			t.Fatalf("NormalizeRole(%q) = %q, want %q", raw, role, RoleInstructor)
		}
	}
}

func TestNormalizeRoleIdempotent(t *testing.T) {
	role, err := NormalizeRole("  Instructor ")
	if err != nil {
		t.Fatalf("first normalize: %v", err)
	}
	again, err := NormalizeRole(string(role))
	if err != nil {
		t.Fatalf("second normalize: %v", err)
	}
	if again != role {
		t.Fatalf("normalization not idempotent: %q != %q", again, role)
	}
}

func TestNormalizeRoleRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "admin", "teacher", "students", "instructor x"} {
		if _, err := NormalizeRole(raw); err == nil {
			t.Fatalf("NormalizeRole(%q) accepted an invalid role", raw)
		}
	}
}
