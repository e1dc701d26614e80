package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, "sess", ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	st, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	values := map[string]string{
		"user_id":    "12",
		"user_email": "a@example.com",
		"user_role":  "student",
	}
	if err := st.Set(ctx, "sid-1", values); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := st.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["user_id"] != "12" || got["user_role"] != "student" {
		t.Fatalf("got %v", got)
	}
}

func TestRedisStoreMissingSession(t *testing.T) {
	st, _ := newTestStore(t, time.Hour)
	if _, err := st.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}
}

func TestRedisStoreInvalidate(t *testing.T) {
	st, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := st.Set(ctx, "sid-1", map[string]string{"user_id": "1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Invalidate(ctx, "sid-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := st.Get(ctx, "sid-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after invalidate = %v, want ErrNotFound", err)
	}
	// Idempotent.
	if err := st.Invalidate(ctx, "sid-1"); err != nil {
		t.Fatalf("second invalidate: %v", err)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	st, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	if err := st.Set(ctx, "sid-1", map[string]string{"user_id": "1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := st.Get(ctx, "sid-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after expiry = %v, want ErrNotFound", err)
	}
}

func TestRedisStoreSetReplacesOldFields(t *testing.T) {
	st, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := st.Set(ctx, "sid-1", map[string]string{"user_id": "1", "user_email": "a@example.com"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Set(ctx, "sid-1", map[string]string{"user_id": "2"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := st.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["user_id"] != "2" {
		t.Fatalf("user_id = %q, want 2", got["user_id"])
	}
	if _, ok := got["user_email"]; ok {
		t.Fatal("stale field survived a replace")
	}
}

func TestManagerStartSetsCookieAndPersists(t *testing.T) {
	st, _ := newTestStore(t, time.Hour)
	manager := NewManager(st, Config{CookieName: "sid", TTL: time.Hour})

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	handle := manager.Load(resp, req)

	if err := handle.Start(map[string]string{"user_id": "7"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	cookies := resp.Result().Cookies()
	var sid string
	for _, cookie := range cookies {
		if cookie.Name == "sid" && cookie.Value != "" {
			sid = cookie.Value
			if !cookie.HttpOnly {
				t.Fatal("session cookie is not HttpOnly")
			}
		}
	}
	if sid == "" {
		t.Fatal("no session cookie set")
	}

	values, err := st.Get(context.Background(), sid)
	if err != nil {
		t.Fatalf("stored session missing: %v", err)
	}
	if values["user_id"] != "7" {
		t.Fatalf("stored user_id = %q", values["user_id"])
	}
}

func TestManagerLoadBindsExistingSession(t *testing.T) {
	st, _ := newTestStore(t, time.Hour)
	manager := NewManager(st, Config{CookieName: "sid", TTL: time.Hour})

	if err := st.Set(context.Background(), "known-sid", map[string]string{"user_id": "3"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "known-sid"})
	handle := manager.Load(httptest.NewRecorder(), req)

	if value, ok := handle.Get("user_id"); !ok || value != "3" {
		t.Fatalf("Get(user_id) = %q, %v", value, ok)
	}
}

func TestManagerStartRotatesSessionID(t *testing.T) {
	st, _ := newTestStore(t, time.Hour)
	manager := NewManager(st, Config{CookieName: "sid", TTL: time.Hour})

	if err := st.Set(context.Background(), "old-sid", map[string]string{"user_id": "3"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "old-sid"})
	handle := manager.Load(resp, req)

	if err := handle.Start(map[string]string{"user_id": "4"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	// The pre-login session must be gone.
	if _, err := st.Get(context.Background(), "old-sid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old session survived login: %v", err)
	}
}

func TestManagerInvalidateIdempotent(t *testing.T) {
	st, _ := newTestStore(t, time.Hour)
	manager := NewManager(st, Config{CookieName: "sid", TTL: time.Hour})

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	handle := manager.Load(resp, req)

	// No active session: must not panic or error, caller stays anonymous.
	handle.Invalidate()
	handle.Invalidate()
	if _, ok := handle.Get("user_id"); ok {
		t.Fatal("invalidated handle still returns values")
	}
}

func TestManagerSecureCookieUsesSameSiteNone(t *testing.T) {
	st, _ := newTestStore(t, time.Hour)
	manager := NewManager(st, Config{CookieName: "sid", TTL: time.Hour, Secure: true})

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	handle := manager.Load(resp, req)
	if err := handle.Start(map[string]string{"user_id": "7"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == "sid" && cookie.Value != "" {
			if !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode {
				t.Fatalf("cookie Secure=%v SameSite=%v, want Secure SameSite=None", cookie.Secure, cookie.SameSite)
			}
			return
		}
	}
	t.Fatal("no session cookie set")
}
