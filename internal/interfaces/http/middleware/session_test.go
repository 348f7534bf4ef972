package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMiddleware_AssignsAndKeepsID(t *testing.T) {
	m := NewSessionMiddleware([]byte("secret"), "molscreen_session", time.Hour, nil)

	var seen []string
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, ContextSessionID(r.Context()))
	}))

	// First request: a fresh ID and a Set-Cookie.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, seen, 1)
	assert.NotEmpty(t, seen[0])

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Second request with the cookie: same ID, no new assignment.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Len(t, seen, 2)
	assert.Equal(t, seen[0], seen[1])
}

func TestSessionMiddleware_BadCookieGetsFreshSession(t *testing.T) {
	m := NewSessionMiddleware([]byte("secret"), "molscreen_session", time.Hour, nil)

	var id string
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = ContextSessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "molscreen_session", Value: "garbage"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEmpty(t, id)
}

func TestContextSessionID_MissingReturnsEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ContextSessionID(req.Context()))
}
