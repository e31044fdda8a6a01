package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"tunestream/core/auth"
	"tunestream/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"bearer header", "Bearer abc", "", "abc"},
		{"case insensitive scheme", "bearer  abc ", "", "abc"},
		{"wrong scheme", "Basic abc", "xyz", ""},
		{"query fallback", "", "xyz", "xyz"},
		{"nothing", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/ws/plays"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, bearerToken(req))
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	h := &APIHandler{tokens: tokens}
	token, err := tokens.GenerateToken(42, "zoe")
	require.NoError(t, err)

	var gotID int64
	var gotName string
	next := func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserIDFromContext(r.Context())
		gotName, _ = GetUsernameFromContext(r.Context())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.AuthMiddleware(next)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), gotID)
	assert.Equal(t, "zoe", gotName)

	rec = httptest.NewRecorder()
	h.AuthMiddleware(next)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	h := &APIHandler{tokens: auth.NewTokenManager("secret", time.Hour)}

	called := false
	var ok bool
	next := func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok = GetUserIDFromContext(r.Context())
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	h.OptionalAuth(next)(httptest.NewRecorder(), req)
	assert.True(t, called)
	assert.False(t, ok)
}

func TestLoggingMiddlewareKeepsRequestID(t *testing.T) {
	var seen string
	handler := loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
}

func TestRouterLogsEveryRequest(t *testing.T) {
	env := newTestEnv(t)
	count := func(route, method, status string) float64 {
		return testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(route, method, status))
	}

	tests := []struct {
		name   string
		method string
		target string
		route  string
		status int
	}{
		{"matched route uses template", http.MethodGet, "/api/tracks/1", "/api/tracks/{id:[0-9]+}", http.StatusOK},
		{"unknown path", http.MethodGet, "/no/such/page", "unmatched", http.StatusNotFound},
		{"mux method mismatch", http.MethodDelete, "/api/tracks", "unmatched", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := strconv.Itoa(tt.status)
			before := count(tt.route, tt.method, status)

			rec := env.do(t, tt.method, tt.target, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
			assert.Equal(t, before+1, count(tt.route, tt.method, status))
		})
	}
}

func TestParseExclude(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 5}, parseExclude("1, 2,x,-3,5"))
	assert.Nil(t, parseExclude(""))
}
