package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAdmin(t *testing.T) *Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	return &Admin{JWTKey: []byte("test-key"), Login: "ops", PasswordHash: string(hash)}
}

func protected() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, _ := AdminFromContext(r.Context())
		w.Write([]byte(login))
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
}

func TestLoginAndAccess(t *testing.T) {
	a := newAdmin(t)

	rec := httptest.NewRecorder()
	a.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"login":"ops","password":"s3cret!"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/tickets", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	a.Middleware(protected()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops", rec.Body.String())
}

func TestLoginRejected(t *testing.T) {
	a := newAdmin(t)
	cases := map[string]struct {
		body string
		code int
	}{
		"wrong password": {`{"login":"ops","password":"nope"}`, http.StatusUnauthorized},
		"wrong login":    {`{"login":"root","password":"s3cret!"}`, http.StatusUnauthorized},
		"empty":          {`{"login":" ","password":""}`, http.StatusBadRequest},
		"malformed":      {`{`, http.StatusBadRequest},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(c.body)))
			assert.Equal(t, c.code, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	a := newAdmin(t)
	other := &Admin{JWTKey: []byte("other-key"), Login: "ops"}
	forged, err := other.IssueToken("ops", time.Now())
	require.NoError(t, err)
	expired, err := a.IssueToken("ops", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	wrongUser, err := a.IssueToken("mallory", time.Now())
	require.NoError(t, err)

	for name, token := range map[string]string{
		"none":       "",
		"garbage":    "not-a-jwt",
		"forged":     forged,
		"expired":    expired,
		"wrong user": wrongUser,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/tickets", nil)
			if token != "" {
				req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
			}
			rec := httptest.NewRecorder()
			a.Middleware(protected()).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestDisabledAdminIsHidden(t *testing.T) {
	a := &Admin{}
	assert.False(t, a.Enabled())

	rec := httptest.NewRecorder()
	a.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	a.Middleware(protected()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/tickets", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimiterPerIP(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	h := limiter.LimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/tools/sizing/catalog", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"), "ports share the client's bucket")
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000"))
}
