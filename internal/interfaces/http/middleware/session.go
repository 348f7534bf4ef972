package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/molscreen/molscreen/internal/infrastructure/logging"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

const sessionValueID = "id"

// ContextSessionID returns the browser session ID set by SessionMiddleware,
// or "" when the middleware did not run.
func ContextSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// SessionMiddleware assigns each browser a stable opaque session ID via a
// signed cookie.  The ID keys the in-memory screening state; it carries no
// identity.
type SessionMiddleware struct {
	store      *sessions.CookieStore
	cookieName string
	log        logging.Logger
}

// NewSessionMiddleware builds the middleware.  secret signs the cookie; ttl
// bounds the cookie lifetime and should match the server-side session TTL.
func NewSessionMiddleware(secret []byte, cookieName string, ttl time.Duration, log logging.Logger) *SessionMiddleware {
	if log == nil {
		log = logging.NewNopLogger()
	}
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionMiddleware{
		store:      store,
		cookieName: cookieName,
		log:        log.Named("session"),
	}
}

// Handler ensures a session ID exists for the request and exposes it on the
// request context.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// An undecodable cookie (rotated secret) falls back to a fresh
		// session rather than an error.
		sess, _ := m.store.Get(r, m.cookieName)

		id, ok := sess.Values[sessionValueID].(string)
		if !ok || id == "" {
			id = uuid.NewString()
			sess.Values[sessionValueID] = id
			if err := m.store.Save(r, w, sess); err != nil {
				m.log.Warn("failed to save session cookie", logging.Err(err))
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionIDKey, id)))
	})
}
