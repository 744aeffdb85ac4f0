package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultAccountsURL is the production accounts service.
const DefaultAccountsURL = "https://accounts.spotify.com"

// TokenGrant is the result of a code exchange or refresh.
//
// RefreshToken is empty when the accounts service did not rotate it.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Scope        string
}

// ExpiresIn returns the grant's lifetime measured from now, or 0 when no expiry was reported.
func (g TokenGrant) ExpiresIn(now time.Time) time.Duration {
	if g.Expiry.IsZero() {
		return 0
	}
	return g.Expiry.Sub(now)
}

// Credential converts a fresh grant into a [models.Credential].
func (g TokenGrant) Credential() models.Credential {
	return models.Credential{
		AccessToken:  g.AccessToken,
		RefreshToken: g.RefreshToken,
		ExpiresAt:    g.Expiry,
		Scopes:       models.ParseScopes(g.Scope),
	}
}

// SpotifyAuth performs the accounts service side of OAuth: authorize URL, code exchange and refresh.
//
// The client authenticates with HTTP Basic (client id and secret), as the accounts service requires.
type SpotifyAuth struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewSpotifyAuth builds an accounts client from configured credentials.
func NewSpotifyAuth(clientID, clientSecret, redirectURI, accountsURL string, client *http.Client) (*SpotifyAuth, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client id and secret are required", shared.ErrMissingCredentials)
	}
	if accountsURL == "" {
		accountsURL = DefaultAccountsURL
	}
	accountsURL = strings.TrimRight(accountsURL, "/")
	if client == nil {
		client = http.DefaultClient
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       models.LoginScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   accountsURL + "/authorize",
			TokenURL:  accountsURL + "/api/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	return &SpotifyAuth{config: config, httpClient: client}, nil
}

// AuthCodeURL returns the authorize URL the browser is redirected to for login.
func (a *SpotifyAuth) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens.
func (a *SpotifyAuth) Exchange(ctx context.Context, code string) (TokenGrant, error) {
	token, err := a.config.Exchange(a.clientContext(ctx), code)
	if err != nil {
		return TokenGrant{}, fmt.Errorf("%w: code exchange: %s", shared.ErrRefreshFailed, describeTokenError(err))
	}
	return grantFromToken(token), nil
}

// Refresh trades a refresh token for a new access token.
//
// Any non-2xx response from the token endpoint is reported as [shared.ErrRefreshFailed].
func (a *SpotifyAuth) Refresh(ctx context.Context, refreshToken string) (TokenGrant, error) {
	if refreshToken == "" {
		return TokenGrant{}, shared.ErrNoRefreshToken
	}

	source := a.config.TokenSource(a.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return TokenGrant{}, fmt.Errorf("%w: %s", shared.ErrRefreshFailed, describeTokenError(err))
	}

	grant := grantFromToken(token)
	if grant.RefreshToken == refreshToken {
		grant.RefreshToken = ""
	}
	return grant, nil
}

func (a *SpotifyAuth) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

func grantFromToken(token *oauth2.Token) TokenGrant {
	grant := TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		grant.Scope = scope
	}
	return grant
}

func describeTokenError(err error) string {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		if retrieveErr.ErrorCode != "" {
			return fmt.Sprintf("status %d: %s", retrieveErr.Response.StatusCode, retrieveErr.ErrorCode)
		}
		return fmt.Sprintf("status %d", retrieveErr.Response.StatusCode)
	}
	return err.Error()
}
