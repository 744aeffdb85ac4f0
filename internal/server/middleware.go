package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
)

// SessionCookie names the cookie holding the session id.
const SessionCookie = "rollplay_session"

type sessionKey struct{}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// RequestLogger puts a request-scoped child of base on the context and logs each request once it completes.
func RequestLogger(base *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := shared.WithLogger(base, "request_id", shared.GenerateID())
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r.WithContext(shared.ContextWithLogger(r.Context(), logger)))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start).Round(time.Millisecond),
			)
		})
	}
}

// Recover turns a handler panic into a 500 error body.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				shared.LoggerFrom(r.Context()).Error("handler panic", "panic", v, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequireSession resolves the session cookie and rejects requests without a live session.
func RequireSession(store SessionStore, now func() time.Time) Middleware {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, codeNotAuthenticated, "Not authenticated", nil)
				return
			}

			session, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, shared.ErrSessionNotFound) {
					shared.LoggerFrom(r.Context()).Error("session lookup failed", "error", err)
				}
				writeError(w, http.StatusUnauthorized, codeNotAuthenticated, "Not authenticated", nil)
				return
			}
			if session.Expired(now()) {
				writeError(w, http.StatusUnauthorized, codeNotAuthenticated, "Session expired", nil)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, session)
			ctx = shared.ContextWithLogger(ctx, shared.WithLogger(shared.LoggerFrom(ctx), "session", session.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session installed by [RequireSession].
func SessionFrom(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*models.Session)
	return s, ok
}
