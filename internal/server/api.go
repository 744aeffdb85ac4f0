package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rollplay/internal/discovery"
	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
	"github.com/desertthunder/rollplay/internal/tasks"
)

// Discoverer plans and runs discovery searches.
type Discoverer interface {
	Generate(ctx context.Context, sessionID string, params discovery.Params) (*tasks.GenerateResult, error)
}

// PlaylistPublisher creates and fills playlists.
type PlaylistPublisher interface {
	Publish(ctx context.Context, progress chan<- tasks.ProgressUpdate, sessionID string, req models.PublishRequest) (*models.PublishOutcome, error)
}

// Deps holds everything the HTTP surface needs.
type Deps struct {
	Sessions     SessionStore
	Provider     OAuthProvider
	Profiles     ProfileFetcher
	Discoverer   Discoverer
	Publisher    PlaylistPublisher
	AllowedEmail string
	SessionTTL   time.Duration
	CookieSecure bool
	Logger       *log.Logger
	Now          func() time.Time
}

// NewHandler builds the routed, middleware-wrapped web API.
func NewHandler(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = shared.NewLogger(nil)
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	router := NewBasicRouter()
	router.Use(RequestLogger(d.Logger), Recover)

	router.Handler(NewAuthHandler(d.Provider, d.Profiles, d.Sessions, AuthOpts{
		AllowedEmail: d.AllowedEmail,
		SessionTTL:   d.SessionTTL,
		CookieSecure: d.CookieSecure,
		Now:          d.Now,
	}))

	api := &apiHandler{discoverer: d.Discoverer, publisher: d.Publisher}
	auth := RequireSession(d.Sessions, d.Now)

	router.Handle(http.MethodGet, "/api/health", http.HandlerFunc(api.health))
	router.Handle(http.MethodGet, "/api/moods", http.HandlerFunc(api.moods))
	router.Handle(http.MethodGet, "/api/me", auth(http.HandlerFunc(api.me)))
	router.Handle(http.MethodPost, "/api/generate", auth(http.HandlerFunc(api.generate)))
	router.Handle(http.MethodPost, "/api/playlists", auth(http.HandlerFunc(api.publish)))
	router.Handle(http.MethodPost, "/api/mood-profile", auth(http.HandlerFunc(api.moodProfile)))
	router.Handler(notFound{})

	return router
}

// notFound claims every path no other route matches.
type notFound struct{}

func (notFound) Routes() []string { return []string{"/"} }

func (notFound) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, codeNotFound, "No route for "+r.URL.Path, nil)
}

type apiHandler struct {
	discoverer Discoverer
	publisher  PlaylistPublisher
}

type meResponse struct {
	User   models.User `json:"user"`
	Scopes []string    `json:"scopes"`
}

type moodProfileRequest struct {
	Mood   string   `json:"mood"`
	Genres []string `json:"genres"`
}

func (a *apiHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *apiHandler) moods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, discovery.Moods())
}

func (a *apiHandler) me(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, meResponse{User: session.User, Scopes: session.Credential.Scopes.List()})
}

func (a *apiHandler) generate(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())

	var params discovery.Params
	if err := parseJSON(w, r, &params); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	result, err := a.discoverer.Generate(r.Context(), session.ID, params)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
	case errors.Is(err, shared.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, codeNotAuthenticated, "Not authenticated", nil)
	default:
		shared.LoggerFrom(r.Context()).Error("generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeGenerateFailed, "Failed to generate tracks", nil)
	}
}

func (a *apiHandler) publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := SessionFrom(ctx)
	logger := shared.LoggerFrom(ctx)

	var req models.PublishRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, tasks.CodeValidation, err.Error(), nil)
		return
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			logger.Debug("publish progress", "phase", update.Phase.String(), "step", update.Step, "total", update.Total, "message", update.Message)
		}
	}()

	outcome, err := a.publisher.Publish(ctx, progress, session.ID, req)
	close(progress)
	<-done

	if err != nil {
		if perr, ok := tasks.AsPublishError(err); ok {
			writeError(w, perr.Status, perr.Code, perr.Message, perr.Details)
			return
		}
		logger.Error("publish failed", "error", err)
		writeError(w, http.StatusInternalServerError, tasks.CodeCreationFailed, "Failed to create playlist", nil)
		return
	}

	status := http.StatusOK
	if outcome.Partial() {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, outcome)
}

func (a *apiHandler) moodProfile(w http.ResponseWriter, r *http.Request) {
	var req moodProfileRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}
	if strings.TrimSpace(req.Mood) == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "Mood is required", nil)
		return
	}
	mood, ok := discovery.MoodByID(req.Mood)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid mood", map[string]any{"mood": req.Mood})
		return
	}
	writeJSON(w, http.StatusOK, discovery.FallbackProfile(mood, req.Genres))
}
