package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/rollplay/internal/imaging"
	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/services"
	"github.com/desertthunder/rollplay/internal/shared"
)

// Stable error codes returned to the UI.
const (
	CodeNotAuthenticated  = "NOT_AUTHENTICATED"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInsufficientScope = "INSUFFICIENT_SCOPE_RELOGIN"
	CodeCreationFailed    = "PLAYLIST_CREATION_FAILED"
	CodeTracksAddFailed   = "TRACKS_ADD_FAILED"
)

// MissingImageScopeWarning is reported when the cover upload is skipped for lack of the upload scope.
const MissingImageScopeWarning = "Cover image skipped: the ugc-image-upload permission was not granted. Log out and sign in again to allow custom covers."

// DefaultSettleDelay is the wait between creating a playlist and writing to it.
const DefaultSettleDelay = 500 * time.Millisecond

// PublishError is a publish failure that left no playlist behind.
type PublishError struct {
	Code    string
	Status  int
	Message string
	Details map[string]any
	Err     error
}

func (e *PublishError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// PublishOpts configures a [Publisher].
type PublishOpts struct {
	SettleDelay   time.Duration   // Wait after creation; negative disables it, zero uses [DefaultSettleDelay]
	CoverImage    string          // Path of the cover asset; empty skips the upload with a warning
	CoverMaxBytes int             // Cover size ceiling (default: [imaging.DefaultMaxBytes])
	Recorder      PublishRecorder // Optional publish history
}

// Publisher creates a playlist, fills it with tracks and sets its cover.
type Publisher struct {
	api  PlaylistAPI
	auth *Authenticator
	opts PublishOpts
}

// NewPublisher creates a [Publisher].
func NewPublisher(api PlaylistAPI, auth *Authenticator, opts PublishOpts) *Publisher {
	if opts.SettleDelay == 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.CoverMaxBytes <= 0 {
		opts.CoverMaxBytes = imaging.DefaultMaxBytes
	}
	return &Publisher{api: api, auth: auth, opts: opts}
}

// Publish runs one publish attempt for the session.
//
// A returned error is always a [*PublishError] and means no playlist exists. Once the playlist has
// been created the outcome is returned with a nil error; a non-empty ErrorCode on it marks a
// partial success where adding tracks failed.
func (p *Publisher) Publish(ctx context.Context, progress chan<- ProgressUpdate, sessionID string, req models.PublishRequest) (*models.PublishOutcome, error) {
	logger := shared.LoggerFrom(ctx).With("op", "publish", "session", sessionID)

	if err := req.Validate(); err != nil {
		return nil, p.fail(ctx, sessionID, req, &PublishError{
			Code: CodeValidation, Status: http.StatusBadRequest, Message: err.Error(), Err: err,
		})
	}

	sendProgress(progress, phaseUpdate(Authenticating, "Checking session..."))
	cred, err := p.auth.Valid(ctx, sessionID)
	if err != nil {
		return nil, p.fail(ctx, sessionID, req, &PublishError{
			Code: CodeNotAuthenticated, Status: http.StatusUnauthorized,
			Message: "Session expired, please log in again", Err: err,
		})
	}

	sendProgress(progress, phaseUpdate(ScopeChecking, "Checking permissions..."))
	if !cred.Scopes.HasAny(models.PlaylistWriteScopes...) {
		return nil, p.fail(ctx, sessionID, req, &PublishError{
			Code:    CodeInsufficientScope,
			Status:  http.StatusForbidden,
			Message: "Missing permission to create playlists, please log in again",
			Details: map[string]any{"required": models.PlaylistWriteScopes, "granted": cred.Scopes.List()},
			Err:     shared.ErrInsufficientScope,
		})
	}

	sendProgress(progress, phaseUpdate(Creating, fmt.Sprintf("Creating playlist %q...", req.Name)))
	playlist, err := p.api.CreatePlaylist(ctx, cred.AccessToken, req.Name, req.DescriptionOrDefault())
	if err != nil {
		return nil, p.fail(ctx, sessionID, req, &PublishError{
			Code: CodeCreationFailed, Status: http.StatusInternalServerError,
			Message: "Failed to create playlist",
			Details: map[string]any{"upstreamStatus": services.StatusOf(err)},
			Err:     err,
		})
	}
	logger.Info("playlist created", "playlist", playlist.ID)

	outcome := &models.PublishOutcome{
		PlaylistURL: playlist.URL(),
		PlaylistID:  playlist.ID,
		Messages:    []string{fmt.Sprintf("Playlist %q created", req.Name)},
		Warnings:    []string{},
	}

	if err := sleepWithContext(ctx, p.opts.SettleDelay); err != nil {
		outcome.ErrorCode = CodeTracksAddFailed
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("Playlist created but no tracks were added: %v", err))
		p.record(ctx, sessionID, req, outcome, http.StatusMultiStatus)
		return outcome, nil
	}

	sendProgress(progress, phaseUpdate(Verifying, "Verifying playlist..."))
	if verified, err := p.api.Playlist(ctx, cred.AccessToken, playlist.ID); err != nil {
		logger.Warn("playlist verification failed", "playlist", playlist.ID, "err", err)
	} else {
		logger.Debug("playlist verified", "playlist", verified.ID, "owner", verified.Owner.ID, "public", verified.Public)
	}

	cred, added, err := p.addTracks(ctx, progress, sessionID, cred, playlist.ID, req.TrackURIs)
	if err != nil {
		logger.Error("adding tracks failed", "playlist", playlist.ID, "added", added, "err", err)
		outcome.ErrorCode = CodeTracksAddFailed
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf(
			"Playlist created but adding tracks failed after %d of %d tracks: %v", added, len(req.TrackURIs), err,
		))
		p.record(ctx, sessionID, req, outcome, http.StatusMultiStatus)
		return outcome, nil
	}
	outcome.Messages = append(outcome.Messages, fmt.Sprintf("Added %d tracks", added))

	sendProgress(progress, phaseUpdate(UploadingImage, "Uploading cover image..."))
	if warning := p.uploadCover(ctx, cred, playlist.ID); warning != "" {
		logger.Warn("cover upload skipped", "playlist", playlist.ID, "reason", warning)
		outcome.Warnings = append(outcome.Warnings, warning)
	} else {
		outcome.Messages = append(outcome.Messages, "Cover image uploaded")
	}

	sendProgress(progress, phaseUpdate(Done, "Playlist published"))
	p.record(ctx, sessionID, req, outcome, http.StatusOK)
	return outcome, nil
}

// addTracks posts uris in sequential batches. The first 401 triggers one forced refresh and a
// retry of that batch; any later failure ends the loop. It returns the credential in use and
// how many tracks were added.
func (p *Publisher) addTracks(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	sessionID string,
	cred models.Credential,
	playlistID string,
	uris []string,
) (models.Credential, int, error) {
	logger := shared.LoggerFrom(ctx)
	total := (len(uris) + services.MaxTracksPerRequest - 1) / services.MaxTracksPerRequest
	refreshed := false

	for i := range total {
		start := i * services.MaxTracksPerRequest
		batch := uris[start:min(start+services.MaxTracksPerRequest, len(uris))]

		_, err := p.api.AddTracks(ctx, cred.AccessToken, playlistID, batch)
		if err != nil && services.IsUnauthorized(err) && !refreshed {
			refreshed = true
			sendProgress(progress, refreshUpdate(i+1))
			logger.Info("access token rejected while adding tracks, forcing refresh", "batch", i+1)

			next, rerr := p.auth.ForceRefresh(ctx, sessionID, cred)
			if rerr != nil {
				return cred, start, fmt.Errorf("token refresh failed: %w", rerr)
			}
			cred = next
			_, err = p.api.AddTracks(ctx, cred.AccessToken, playlistID, batch)
		}
		if err != nil {
			return cred, start, err
		}

		sendProgress(progress, batchUpdate(i+1, total, len(batch)))
	}

	return cred, len(uris), nil
}

// uploadCover normalizes and uploads the configured cover. It returns a warning, or "" on success.
func (p *Publisher) uploadCover(ctx context.Context, cred models.Credential, playlistID string) string {
	if !cred.Scopes.Has(models.ScopeImageUpload) {
		return MissingImageScopeWarning
	}
	if p.opts.CoverImage == "" {
		return "Cover image skipped: no cover image configured"
	}

	data, err := os.ReadFile(p.opts.CoverImage)
	if err != nil {
		return fmt.Sprintf("Cover image skipped: %v", err)
	}

	res, err := imaging.Normalize(data, p.opts.CoverMaxBytes)
	if err != nil {
		return fmt.Sprintf("Cover image could not be prepared: %v", err)
	}

	if err := p.api.UploadPlaylistImage(ctx, cred.AccessToken, playlistID, res.Data); err != nil {
		return fmt.Sprintf("Cover image upload failed: %v", err)
	}
	return ""
}

func (p *Publisher) fail(ctx context.Context, sessionID string, req models.PublishRequest, perr *PublishError) error {
	shared.LoggerFrom(ctx).Warn("publish failed", "code", perr.Code, "err", perr.Err)
	p.record(ctx, sessionID, req, &models.PublishOutcome{ErrorCode: perr.Code, Warnings: []string{perr.Message}}, perr.Status)
	return perr
}

func (p *Publisher) record(ctx context.Context, sessionID string, req models.PublishRequest, outcome *models.PublishOutcome, status int) {
	if p.opts.Recorder == nil {
		return
	}

	rec := &models.PublishRecord{
		SessionID:   sessionID,
		PlaylistID:  outcome.PlaylistID,
		PlaylistURL: outcome.PlaylistURL,
		Name:        req.Name,
		TrackCount:  len(req.TrackURIs),
		Status:      status,
		ErrorCode:   outcome.ErrorCode,
		Warnings:    outcome.Warnings,
	}
	if rec.Name == "" {
		rec.Name = "(untitled)"
	}

	// ctx may already be cancelled; the record should still land.
	if err := p.opts.Recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
		shared.LoggerFrom(ctx).Warn("failed to record publish attempt", "err", err)
	}
}

// AsPublishError extracts a [*PublishError] from err.
func AsPublishError(err error) (*PublishError, bool) {
	var perr *PublishError
	ok := errors.As(err, &perr)
	return perr, ok
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("publish canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
