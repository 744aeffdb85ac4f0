package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/services"
	"github.com/desertthunder/rollplay/internal/shared"
)

// StateCookie holds the OAuth state between login and callback.
const StateCookie = "rollplay_auth_state"

const stateTTL = 10 * time.Minute

// Login redirect error codes.
const (
	loginErrAccessDenied  = "access_denied"
	loginErrStateMismatch = "state_mismatch"
	loginErrNoCode        = "no_code"
	loginErrExchange      = "token_exchange"
	loginErrUnauthorized  = "unauthorized"
)

// SessionStore persists web sessions.
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// OAuthProvider is the accounts service side of the authorization code flow.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (services.TokenGrant, error)
}

// ProfileFetcher reads the signed-in user's profile.
type ProfileFetcher interface {
	UserProfile(ctx context.Context, token string) (*services.SpotifyUser, error)
}

// AuthHandler implements login, callback and logout for the single allowed user.
type AuthHandler struct {
	provider     OAuthProvider
	profiles     ProfileFetcher
	sessions     SessionStore
	allowedEmail string
	sessionTTL   time.Duration
	secure       bool
	now          func() time.Time
}

// AuthOpts configures an [AuthHandler].
type AuthOpts struct {
	AllowedEmail string
	SessionTTL   time.Duration
	CookieSecure bool
	Now          func() time.Time
}

// NewAuthHandler creates an [AuthHandler].
func NewAuthHandler(provider OAuthProvider, profiles ProfileFetcher, sessions SessionStore, opts AuthOpts) *AuthHandler {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AuthHandler{
		provider:     provider,
		profiles:     profiles,
		sessions:     sessions,
		allowedEmail: strings.TrimSpace(opts.AllowedEmail),
		sessionTTL:   opts.SessionTTL,
		secure:       opts.CookieSecure,
		now:          opts.Now,
	}
}

// Routes returns the auth paths.
func (h *AuthHandler) Routes() []string {
	return []string{"/api/auth/login", "/api/auth/callback", "/api/auth/logout"}
}

// ServeHTTP dispatches by path and method.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/auth/login" && r.Method == http.MethodGet:
		h.login(w, r)
	case r.URL.Path == "/api/auth/callback" && r.Method == http.MethodGet:
		h.callback(w, r)
	case r.URL.Path == "/api/auth/logout" && (r.Method == http.MethodGet || r.Method == http.MethodPost):
		h.logout(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "Method not allowed", nil)
	}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state := shared.GenerateID()
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := shared.LoggerFrom(ctx)
	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		logger.Warn("authorization denied", "error", providerErr)
		h.loginRedirect(w, r, loginErrAccessDenied)
		return
	}

	cookie, err := r.Cookie(StateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		logger.Warn("oauth state mismatch", "error", shared.ErrStateMismatch)
		h.loginRedirect(w, r, loginErrStateMismatch)
		return
	}
	h.clearCookie(w, StateCookie)

	code := query.Get("code")
	if code == "" {
		h.loginRedirect(w, r, loginErrNoCode)
		return
	}

	grant, err := h.provider.Exchange(ctx, code)
	if err != nil {
		logger.Error("code exchange failed", "error", err)
		h.loginRedirect(w, r, loginErrExchange)
		return
	}

	profile, err := h.profiles.UserProfile(ctx, grant.AccessToken)
	if err != nil {
		logger.Error("profile lookup failed", "error", err)
		h.loginRedirect(w, r, loginErrExchange)
		return
	}
	if !h.allowed(profile.Email) {
		logger.Warn("sign-in refused", "error", shared.ErrUnauthorizedUser, "user", profile.ID)
		h.loginRedirect(w, r, loginErrUnauthorized)
		return
	}

	user := models.User{ID: profile.ID, Email: profile.Email, DisplayName: profile.DisplayName}
	session := models.NewSession(user, grant.Credential(), h.sessionTTL, h.now())
	if err := h.sessions.Create(ctx, session); err != nil {
		logger.Error("failed to persist session", "error", err)
		h.loginRedirect(w, r, loginErrExchange)
		return
	}

	logger.Info("signed in", "user", user.ID, "scopes", session.Credential.Scopes.String())
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil && !errors.Is(err, shared.ErrSessionNotFound) {
			shared.LoggerFrom(r.Context()).Error("failed to delete session", "error", err)
		}
	}
	h.clearCookie(w, SessionCookie)

	if r.Method == http.MethodPost {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) allowed(email string) bool {
	return h.allowedEmail != "" && strings.EqualFold(strings.TrimSpace(email), h.allowedEmail)
}

func (h *AuthHandler) loginRedirect(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(code), http.StatusFound)
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
