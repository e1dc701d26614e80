package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func contentRequest(t *testing.T, courseID, userID, role string) *http.Request {
	t.Helper()
	sess := &fakeSession{values: map[string]string{
		SessionKeyUserID:   userID,
		SessionKeyUserRole: role,
	}}
	req := authedRequest(t, sess)
	req.SetPathValue("id", courseID)
	return req
}

func runGateChain(t *testing.T, cfg CourseAccess, req *http.Request) (*Denial, int) {
	t.Helper()
	var denial *Denial
	handlerCalls := 0
	chain := Chain(recordDenial(&denial),
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { handlerCalls++ }),
		Authenticated(),
		RequireCourseAccess(cfg),
	)
	chain.ServeHTTP(httptest.NewRecorder(), req)
	return denial, handlerCalls
}

func gateConfig(instructorID int64, enrolled bool) CourseAccess {
	return CourseAccess{
		Param: "id",
		Instructor: func(context.Context, int64) (int64, error) {
			return instructorID, nil
		},
		Enrolled: func(context.Context, int64, int64) (bool, error) {
			return enrolled, nil
		},
	}
}

func TestGateAllowsOwningInstructor(t *testing.T) {
	denial, calls := runGateChain(t, gateConfig(7, false), contentRequest(t, "1", "7", "instructor"))
	if denial != nil {
		t.Fatalf("unexpected denial: %+v", denial)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
}

func TestGateDeniesNonOwningInstructor(t *testing.T) {
	// Role alone must not bypass the gate: a foreign instructor is denied
	// exactly like an unenrolled student.
	denial, calls := runGateChain(t, gateConfig(7, true), contentRequest(t, "1", "8", "instructor"))
	if denial == nil || denial.Kind != KindForbidden {
		t.Fatalf("denial = %+v, want Forbidden", denial)
	}
	if calls != 0 {
		t.Fatal("handler ran for a non-owning instructor")
	}
}

func TestGateAllowsEnrolledStudent(t *testing.T) {
	denial, calls := runGateChain(t, gateConfig(7, true), contentRequest(t, "1", "3", "student"))
	if denial != nil {
		t.Fatalf("unexpected denial: %+v", denial)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
}

func TestGateDeniesUnenrolledStudent(t *testing.T) {
	denial, calls := runGateChain(t, gateConfig(7, false), contentRequest(t, "1", "3", "student"))
	if denial == nil || denial.Kind != KindForbidden {
		t.Fatalf("denial = %+v, want Forbidden", denial)
	}
	if calls != 0 {
		t.Fatal("handler ran for an unenrolled student")
	}
}

func TestGateNotFoundBeforeDecision(t *testing.T) {
	cfg := CourseAccess{
		Param: "id",
		Instructor: func(context.Context, int64) (int64, error) {
			return 0, ErrNotFound
		},
		Enrolled: func(context.Context, int64, int64) (bool, error) {
			t.Fatal("enrollment lookup ran for a missing course")
			return false, nil
		},
	}
	denial, _ := runGateChain(t, cfg, contentRequest(t, "1", "3", "student"))
	if denial == nil || denial.Kind != KindNotFound {
		t.Fatalf("denial = %+v, want NotFound", denial)
	}
}

func TestGateBadRequestOnNonNumericCourseID(t *testing.T) {
	denial, _ := runGateChain(t, gateConfig(7, true), contentRequest(t, "abc", "3", "student"))
	if denial == nil || denial.Kind != KindBadRequest {
		t.Fatalf("denial = %+v, want BadRequest", denial)
	}
}
