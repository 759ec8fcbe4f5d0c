package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ss := NewSessionStore()
	ss.now = func() time.Time { return now }

	token, err := ss.Create(Session{AccountID: "a1", Email: "sam@gym.test", Role: "member"})
	if err != nil {
		t.Fatal(err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d", len(token))
	}
	sess, ok := ss.Get(token)
	if !ok || sess.AccountID != "a1" || !sess.CreatedAt.Equal(now) {
		t.Fatalf("Get = %+v, %v", sess, ok)
	}

	sess.PasswordChangeRequired = true
	if !ss.Update(token, sess) || ss.Update("missing", sess) {
		t.Error("Update result mismatch")
	}
	if got, _ := ss.Get(token); !got.PasswordChangeRequired {
		t.Error("update not stored")
	}

	now = now.Add(SessionTTL + time.Second)
	if _, ok := ss.Get(token); ok {
		t.Error("expired session still returned")
	}
}

func TestSessionStore_SweepAndDeleteAccount(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ss := NewSessionStore()
	ss.now = func() time.Time { return now }
	old, _ := ss.Create(Session{AccountID: "a1", Role: "member"})
	now = now.Add(20 * time.Hour)
	fresh, _ := ss.Create(Session{AccountID: "a2", Role: "member"})
	other, _ := ss.Create(Session{AccountID: "a2", Role: "member"})
	now = now.Add(5 * time.Hour)

	if n := ss.Sweep(); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if _, ok := ss.Get(old); ok {
		t.Error("old session survived sweep")
	}
	if n := ss.DeleteAccount("a2"); n != 2 {
		t.Errorf("DeleteAccount removed %d, want 2", n)
	}
	if _, ok := ss.Get(fresh); ok {
		t.Error("fresh session survived DeleteAccount")
	}
	if _, ok := ss.Get(other); ok {
		t.Error("other session survived DeleteAccount")
	}
}

func TestAuth_LoadsSessionFromCookie(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create(Session{AccountID: "a1", Role: "trainer"})

	var got Session
	h := Auth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetSessionFromContext(r.Context())
	}))
	req := httptest.NewRequest("GET", "/trainer", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got.AccountID != "a1" {
		t.Errorf("session = %+v", got)
	}

	got = Session{}
	req = httptest.NewRequest("GET", "/trainer", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bogus"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got.AccountID != "" {
		t.Error("bogus token produced a session")
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := RequireRole("admin", "trainer")(ok)

	tests := []struct {
		name         string
		sess         *Session
		method       string
		accept       string
		wantStatus   int
		wantLocation string
	}{
		{name: "anonymous html", method: "GET", wantStatus: http.StatusSeeOther, wantLocation: "/login"},
		{name: "anonymous json", method: "GET", accept: "application/json", wantStatus: http.StatusUnauthorized},
		{name: "wrong role", sess: &Session{Role: "member"}, method: "GET", wantStatus: http.StatusForbidden},
		{name: "allowed", sess: &Session{Role: "trainer"}, method: "GET", wantStatus: http.StatusTeapot},
		{name: "must change password", sess: &Session{Role: "admin", PasswordChangeRequired: true}, method: "GET", wantStatus: http.StatusSeeOther, wantLocation: "/change-password"},
		{name: "must change password post passes", sess: &Session{Role: "admin", PasswordChangeRequired: true}, method: "POST", wantStatus: http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/classes", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.sess != nil {
				req = req.WithContext(ContextWithSession(req.Context(), *tt.sess))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if loc := rr.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, want %q", loc, tt.wantLocation)
			}
		})
	}
}

func TestSessionHomePath(t *testing.T) {
	for role, want := range map[string]string{"admin": "/admin", "trainer": "/trainer", "member": "/member"} {
		if got := (Session{Role: role}).HomePath(); got != want {
			t.Errorf("%s HomePath = %s, want %s", role, got, want)
		}
	}
}

func TestSessionCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "tok")
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	if SessionToken(req) != "tok" {
		t.Errorf("SessionToken = %q", SessionToken(req))
	}
	if SessionToken(httptest.NewRequest("GET", "/", nil)) != "" {
		t.Error("token without cookie")
	}

	rr = httptest.NewRecorder()
	ClearSessionCookie(rr)
	if c := rr.Result().Cookies()[0]; c.MaxAge != -1 || c.Value != "" {
		t.Errorf("cleared cookie = %+v", c)
	}
}
