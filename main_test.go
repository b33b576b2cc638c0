package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MyGens/internal/config"
	"MyGens/internal/i18n"
	"MyGens/internal/repo"
)

func testServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	r := mux.NewRouter()
	require.NoError(t, HandleList(r, cfg, repo.Noop{}))
	return CORS(cfg.CORSOrigin, r)
}

func baseConfig() *config.Config {
	return &config.Config{
		DatabaseDriver: repo.DriverNone,
		DefaultLang:    i18n.English,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		CORSOrigin:     "*",
	}
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.1:1234"
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	h := testServer(t, baseConfig())

	for _, tc := range []struct {
		method, target, body string
		want                 int
	}{
		{"GET", "/", "", http.StatusOK},
		{"GET", "/sizing-tool?method=engineering", "", http.StatusOK},
		{"GET", "/support", "", http.StatusOK},
		{"GET", "/static/style.css", "", http.StatusOK},
		{"GET", "/api/tools/sizing/catalog", "", http.StatusOK},
		{"POST", "/api/tools/sizing/calc", `{}`, http.StatusOK},
		{"POST", "/api/tools/sizing/save", `{}`, http.StatusCreated},
		{"POST", "/api/tools/sizing/batch", `{"items":[{}]}`, http.StatusOK},
		{"POST", "/api/support", `{"name":"a","email":"b","message":"c"}`, http.StatusCreated},
		{"POST", "/api/admin/login", `{"login":"a","password":"b"}`, http.StatusNotFound},
		{"GET", "/api/admin/tickets", "", http.StatusNotFound},
		{"OPTIONS", "/api/tools/sizing/calc", "", http.StatusNoContent},
	} {
		rec := do(h, tc.method, tc.target, tc.body)
		assert.Equal(t, tc.want, rec.Code, "%s %s: %s", tc.method, tc.target, rec.Body.String())
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	cfg := baseConfig()
	cfg.TokenKey = "secret"
	cfg.AdminLogin = "admin"
	cfg.AdminPasswordHash = "$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinvali"
	h := testServer(t, cfg)

	assert.Equal(t, http.StatusUnauthorized, do(h, "GET", "/api/admin/tickets", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, "POST", "/api/admin/login", `{"login":"admin","password":"x"}`).Code)
}

func TestRateLimit(t *testing.T) {
	cfg := baseConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	h := testServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(h, "GET", "/api/tools/sizing/catalog", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, "GET", "/api/tools/sizing/catalog", "").Code)
	assert.Equal(t, http.StatusOK, do(h, "GET", "/", "").Code, "pages are not limited")
}

func TestBadCatalogFile(t *testing.T) {
	cfg := baseConfig()
	cfg.CatalogFile = "does-not-exist.yaml"
	assert.Error(t, HandleList(mux.NewRouter(), cfg, repo.Noop{}))
}
