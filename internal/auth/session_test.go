package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lessonlab/lessonlab-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() models.PublicUser {
	return models.PublicUser{
		ID:        "u-1",
		Email:     "a@x.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
}

func issueCookie(t *testing.T, m *Manager, user models.PublicUser) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, user))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestIssueSetsCookieAttributes(t *testing.T) {
	m := NewManager("secret", true)
	cookie := issueCookie(t, m, testUser())

	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.NotEmpty(t, cookie.Value)
}

func TestDecodeRoundTrip(t *testing.T) {
	m := NewManager("secret", false)
	cookie := issueCookie(t, m, testUser())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	claims := m.Decode(req)
	require.NotNil(t, claims)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "Ada", claims.FirstName)
	assert.Equal(t, "Lovelace", claims.LastName)
}

func TestDecodeMissingCookie(t *testing.T) {
	m := NewManager("secret", false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, m.Decode(req))
}

func TestDecodeTamperedToken(t *testing.T) {
	m := NewManager("secret", false)
	cookie := issueCookie(t, m, testUser())
	cookie.Value += "x"

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	assert.Nil(t, m.Decode(req))
}

func TestDecodeRejectsRotatedSecret(t *testing.T) {
	old := NewManager("old-secret", false)
	cookie := issueCookie(t, old, testUser())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	rotated := NewManager("new-secret", false)
	assert.Nil(t, rotated.Decode(req))
}

func TestDecodeRejectsExpiredToken(t *testing.T) {
	m := NewManager("secret", false)
	claims := &Claims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	assert.Nil(t, m.Decode(req))
}

func TestDestroyClearsCookie(t *testing.T) {
	m := NewManager("secret", false)
	rec := httptest.NewRecorder()
	m.Destroy(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestRequireSession(t *testing.T) {
	m := NewManager("secret", false)
	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFromContext(r.Context())
	})

	// No session: 401 before the handler runs.
	rec := httptest.NewRecorder()
	m.RequireSession(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	// Valid session: identity injected into the context.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(issueCookie(t, m, testUser()))
	rec = httptest.NewRecorder()
	m.RequireSession(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u-1", seen.UserID)
}

func TestOptionalSession(t *testing.T) {
	m := NewManager("secret", false)
	var seen *Claims
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen, _ = SessionFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	m.OptionalSession(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
	assert.Nil(t, seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(issueCookie(t, m, testUser()))
	m.OptionalSession(next).ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, "u-1", seen.UserID)
}
