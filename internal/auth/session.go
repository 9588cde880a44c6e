package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lessonlab/lessonlab-be/internal/api/respond"
	"github.com/lessonlab/lessonlab-be/internal/models"
)

// CookieName carries the session token.
const CookieName = "session_id"

const sessionTTL = 24 * time.Hour

// Claims is the session payload: the public identity of one user, nothing
// more. The password hash is structurally absent.
type Claims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	jwt.RegisteredClaims
}

// Manager issues and validates session cookies. The token itself is the
// source of truth; nothing is persisted server-side, so trust rests entirely
// on the signature made with the server secret.
type Manager struct {
	secret []byte
	secure bool
}

// NewManager creates a session manager. secure controls the cookie's Secure
// attribute and should be true in production.
func NewManager(secret string, secure bool) *Manager {
	return &Manager{secret: []byte(secret), secure: secure}
}

// Issue signs a session token for the given user and sets it as an httpOnly,
// SameSite=Strict cookie on the response.
func (m *Manager) Issue(w http.ResponseWriter, user models.PublicUser) error {
	expiresAt := time.Now().Add(sessionTTL)
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	return nil
}

// Decode reads the session cookie from the request and returns the claims,
// or nil when there is no usable session. A missing cookie, a tampered or
// expired token, and a token signed with a different secret all read the
// same way: no session. Nothing escapes this boundary as an error.
func (m *Manager) Decode(r *http.Request) *Claims {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil
	}
	return claims
}

// Destroy clears the session cookie. Doing it without an active session is
// harmless.
func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

type contextKey string

const sessionKey = contextKey("sessionUser")

// RequireSession rejects the request with a 401 envelope before the handler
// runs unless a valid session is present. It proves identity only; resource
// ownership stays with the services.
func (m *Manager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := m.Decode(r)
		if claims == nil {
			respond.Error(w, http.StatusUnauthorized, "You must be logged in for this operation.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, claims)))
	})
}

// OptionalSession injects the session identity when one is present and lets
// the request through either way.
func (m *Manager) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := m.Decode(r); claims != nil {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey, claims))
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromContext returns the identity injected by the middleware.
func SessionFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(sessionKey).(*Claims)
	return claims, ok
}
