package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	domainAccount "gymhub/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionTTL is how long a session stays valid after login.
const SessionTTL = 24 * time.Hour

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "gym_session"

// SecureCookies marks session cookies Secure. Set in production.
var SecureCookies bool

// Session represents an authenticated session.
type Session struct {
	AccountID              string
	Email                  string
	Name                   string
	Role                   string
	PasswordChangeRequired bool
	CreatedAt              time.Time
}

// HomePath returns the portal the session lands on after login.
func (s Session) HomePath() string {
	switch s.Role {
	case domainAccount.RoleAdmin:
		return "/admin"
	case domainAccount.RoleTrainer:
		return "/trainer"
	default:
		return "/member"
	}
}

// SessionStore is an in-memory session store keyed by random token.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Session), now: time.Now}
}

// Create stores sess under a new token and returns the token.
// PRE: sess.AccountID and sess.Role are non-empty
// POST: Session is stored with CreatedAt set to now
func (ss *SessionStore) Create(sess Session) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	sess.CreatedAt = ss.now()
	ss.mu.Lock()
	ss.sessions[token] = sess
	ss.mu.Unlock()
	return token, nil
}

// Get retrieves a session by token.
// POST: Expired sessions are removed and reported as missing
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	sess, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if ss.now().Sub(sess.CreatedAt) > SessionTTL {
		ss.Delete(token)
		return Session{}, false
	}
	return sess, true
}

// Delete removes a session by token.
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// Update replaces the session stored under token.
// POST: Returns false when token is unknown
func (ss *SessionStore) Update(token string, sess Session) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if _, ok := ss.sessions[token]; !ok {
		return false
	}
	ss.sessions[token] = sess
	return true
}

// DeleteAccount removes every session of accountID, e.g. after suspension.
func (ss *SessionStore) DeleteAccount(accountID string) int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	n := 0
	for token, sess := range ss.sessions {
		if sess.AccountID == accountID {
			delete(ss.sessions, token)
			n++
		}
	}
	return n
}

// Sweep drops expired sessions and returns how many were removed.
func (ss *SessionStore) Sweep() int {
	now := ss.now()
	ss.mu.Lock()
	defer ss.mu.Unlock()
	n := 0
	for token, sess := range ss.sessions {
		if now.Sub(sess.CreatedAt) > SessionTTL {
			delete(ss.sessions, token)
			n++
		}
	}
	return n
}

// Auth returns middleware that loads the session from the cookie into the context.
// It does not block unauthenticated requests; RequireAuth and RequireRole do that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				if sess, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), sess))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth blocks requests without a session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			denyUnauthenticated(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole blocks requests from sessions without one of roles.
// Sessions that must change their password are sent to /change-password first.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSessionFromContext(r.Context())
			if !ok {
				denyUnauthenticated(w, r)
				return
			}
			if !slices.Contains(roles, sess.Role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			if sess.PasswordChangeRequired && r.Method == http.MethodGet && !WantsJSON(r) {
				http.Redirect(w, r, "/change-password", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// WantsJSON reports whether the client asked for a JSON response.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(Session)
	return sess, ok
}

// ContextWithSession returns a context carrying sess.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// IsRole reports whether the current session has one of roles.
func IsRole(ctx context.Context, roles ...string) bool {
	sess, ok := GetSessionFromContext(ctx)
	return ok && slices.Contains(roles, sess.Role)
}

// IsAdmin reports whether the current session is an admin.
func IsAdmin(ctx context.Context) bool {
	return IsRole(ctx, domainAccount.RoleAdmin)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// SessionToken returns the session token from the request cookie, if any.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
