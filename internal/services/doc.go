// Package services talks to the Spotify Web API and accounts service.
//
// # Web API
//
// [SpotifyService] wraps the handful of endpoints discovery and publishing need: the current
// user's profile, track search, playlist creation and lookup, adding tracks and uploading a
// cover image. The access token is passed on every call; the service holds no credential state.
//
// # Accounts
//
// [SpotifyAuth] builds the authorize URL, exchanges authorization codes and trades refresh
// tokens for new access tokens through [oauth2], authenticating the client with HTTP Basic.
//
// # Error Handling
//
// Every non-2xx Web API response becomes an [*APIError] carrying the status code. It unwraps to
// [shared.ErrAPIRequest]; use [IsUnauthorized] to detect an expired or revoked token.
// Token endpoint failures wrap [shared.ErrRefreshFailed].
package services
