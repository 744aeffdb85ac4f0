package models

import (
	"sort"
	"strings"
	"time"
)

// Scopes the provider must grant for playlist writes and cover uploads.
const (
	ScopePlaylistModifyPublic  = "playlist-modify-public"
	ScopePlaylistModifyPrivate = "playlist-modify-private"
	ScopeImageUpload           = "ugc-image-upload"
	ScopeUserReadEmail         = "user-read-email"
	ScopeUserReadPrivate       = "user-read-private"
)

// LoginScopes is the scope list requested when signing in.
var LoginScopes = []string{
	ScopePlaylistModifyPublic,
	ScopePlaylistModifyPrivate,
	ScopeUserReadEmail,
	ScopeUserReadPrivate,
	ScopeImageUpload,
}

// PlaylistWriteScopes lists the grants of which at least one is needed to create and fill a playlist.
var PlaylistWriteScopes = []string{ScopePlaylistModifyPublic, ScopePlaylistModifyPrivate}

// ScopeSet is the set of scopes granted to a credential.
type ScopeSet map[string]struct{}

// ParseScopes splits a space separated scope grant into a set.
func ParseScopes(raw string) ScopeSet {
	set := ScopeSet{}
	for _, s := range strings.Fields(raw) {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether scope was granted.
func (s ScopeSet) Has(scope string) bool {
	_, ok := s[scope]
	return ok
}

// HasAny reports whether at least one of scopes was granted.
func (s ScopeSet) HasAny(scopes ...string) bool {
	for _, scope := range scopes {
		if s.Has(scope) {
			return true
		}
	}
	return false
}

// List returns the granted scopes sorted alphabetically.
func (s ScopeSet) List() []string {
	out := make([]string, 0, len(s))
	for scope := range s {
		out = append(out, scope)
	}
	sort.Strings(out)
	return out
}

// String renders the set in the provider's space separated form.
func (s ScopeSet) String() string {
	return strings.Join(s.List(), " ")
}

// Credential holds the provider tokens for one authenticated principal.
//
// ExpiresAt is zero when the provider did not report an expiry; such a token is never
// treated as stale by [Credential.Expired].
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scopes       ScopeSet
}

// Expired reports whether the access token must be treated as stale at now.
func (c Credential) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// CanRefresh reports whether a refresh token is available.
func (c Credential) CanRefresh() bool {
	return c.RefreshToken != ""
}

// Authenticated reports whether the credential carries an access token.
func (c Credential) Authenticated() bool {
	return c.AccessToken != ""
}

// WithAccessToken returns a copy of c with a new access token expiring expiresIn after now.
//
// The refresh token and scopes are kept unless the refresh response supplied new ones.
func (c Credential) WithAccessToken(token string, expiresIn time.Duration, now time.Time) Credential {
	next := c
	next.AccessToken = token
	if expiresIn > 0 {
		next.ExpiresAt = now.Add(expiresIn)
	} else {
		next.ExpiresAt = time.Time{}
	}
	return next
}

// ExpiresAtMillis returns the expiry as milliseconds since the epoch, or 0 when unknown.
func (c Credential) ExpiresAtMillis() int64 {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	return c.ExpiresAt.UnixMilli()
}

// ExpiryFromMillis converts a stored epoch millisecond value back into a time, 0 meaning unknown.
func ExpiryFromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
