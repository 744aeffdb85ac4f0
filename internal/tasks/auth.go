package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
)

// Authenticator resolves a usable credential for a session.
type Authenticator struct {
	store     TokenStore
	refresher TokenRefresher
	now       func() time.Time
}

// NewAuthenticator creates an [Authenticator] backed by store and refresher.
func NewAuthenticator(store TokenStore, refresher TokenRefresher) *Authenticator {
	return &Authenticator{store: store, refresher: refresher, now: time.Now}
}

// Valid returns the session's credential, refreshing it first when the access token has expired.
//
// Every failure wraps [shared.ErrNotAuthenticated]: the session must sign in again.
func (a *Authenticator) Valid(ctx context.Context, sessionID string) (models.Credential, error) {
	cred, err := a.store.Credential(ctx, sessionID)
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err)
	}
	if !cred.Authenticated() {
		return models.Credential{}, fmt.Errorf("%w: no access token", shared.ErrNotAuthenticated)
	}
	if !cred.Expired(a.now()) {
		return cred, nil
	}

	shared.LoggerFrom(ctx).Debug("access token expired, refreshing", "session", sessionID)
	return a.refresh(ctx, sessionID, cred)
}

// ForceRefresh refreshes cred regardless of its expiry, after the provider rejected it.
func (a *Authenticator) ForceRefresh(ctx context.Context, sessionID string, cred models.Credential) (models.Credential, error) {
	return a.refresh(ctx, sessionID, cred)
}

func (a *Authenticator) refresh(ctx context.Context, sessionID string, cred models.Credential) (models.Credential, error) {
	if !cred.CanRefresh() {
		return models.Credential{}, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, shared.ErrNoRefreshToken)
	}

	grant, err := a.refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err)
	}

	now := a.now()
	next := cred.WithAccessToken(grant.AccessToken, grant.ExpiresIn(now), now)
	if grant.RefreshToken != "" {
		next.RefreshToken = grant.RefreshToken
	}
	if grant.Scope != "" {
		next.Scopes = models.ParseScopes(grant.Scope)
	}

	logger := shared.LoggerFrom(ctx)
	if err := a.store.SaveCredential(ctx, sessionID, next); err != nil {
		logger.Warn("failed to persist refreshed credential", "session", sessionID, "err", err)
	} else {
		logger.Debug("persisted refreshed credential", "session", sessionID, "expires_at", next.ExpiresAt)
	}

	return next, nil
}
