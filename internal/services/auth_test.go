package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
	tu "github.com/desertthunder/rollplay/internal/testing"
)

func TestSpotifyAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("NewSpotifyAuth", func(t *testing.T) {
		t.Run("Missing Credentials", func(t *testing.T) {
			if _, err := NewSpotifyAuth("", "secret", "", "", nil); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Uses Basic Auth", func(t *testing.T) {
			a, err := NewSpotifyAuth("id", "secret", "http://127.0.0.1:3000/api/auth/callback", "", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if a.config.Endpoint.TokenURL != DefaultAccountsURL+"/api/token" {
				t.Errorf("unexpected token URL %s", a.config.Endpoint.TokenURL)
			}
		})
	})

	t.Run("AuthCodeURL", func(t *testing.T) {
		a, err := NewSpotifyAuth("test_client_id", "secret", "http://127.0.0.1:3000/api/auth/callback", "", nil)
		if err != nil {
			t.Fatalf("failed to create auth: %v", err)
		}

		raw := a.AuthCodeURL("test_state")
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("invalid URL: %v", err)
		}
		if !strings.HasPrefix(raw, "https://accounts.spotify.com/authorize") {
			t.Errorf("auth URL should target the accounts service, got %s", raw)
		}

		q := u.Query()
		if q.Get("client_id") != "test_client_id" || q.Get("state") != "test_state" || q.Get("response_type") != "code" {
			t.Errorf("unexpected query %s", u.RawQuery)
		}
		if q.Get("scope") != strings.Join(models.LoginScopes, " ") {
			t.Errorf("unexpected scope %q", q.Get("scope"))
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		var rotated atomic.Bool
		fake := tu.NewFakeSpotify(t, map[string]http.HandlerFunc{
			"POST /api/token": func(w http.ResponseWriter, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				if !ok || user != "id" || pass != "secret" {
					t.Errorf("expected basic auth, got %q %q %v", user, pass, ok)
				}
				if err := r.ParseForm(); err != nil {
					t.Errorf("bad form: %v", err)
					return
				}
				if r.PostForm.Get("grant_type") != "refresh_token" {
					t.Errorf("unexpected grant type %q", r.PostForm.Get("grant_type"))
				}

				switch r.PostForm.Get("refresh_token") {
				case "good":
					resp := map[string]any{
						"access_token": "fresh", "token_type": "Bearer", "expires_in": 3600,
						"scope": "playlist-modify-public ugc-image-upload",
					}
					if rotated.Load() {
						resp["refresh_token"] = "rotated"
					}
					tu.WriteJSON(w, http.StatusOK, resp)
				default:
					tu.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
				}
			},
		})

		a, err := NewSpotifyAuth("id", "secret", "", fake.URL(), nil)
		if err != nil {
			t.Fatalf("failed to create auth: %v", err)
		}

		t.Run("success", func(t *testing.T) {
			before := time.Now()
			grant, err := a.Refresh(ctx, "good")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if grant.AccessToken != "fresh" {
				t.Errorf("expected fresh token, got %s", grant.AccessToken)
			}
			if grant.RefreshToken != "" {
				t.Errorf("expected no rotated refresh token, got %s", grant.RefreshToken)
			}
			if d := grant.ExpiresIn(before); d < 59*time.Minute || d > 61*time.Minute {
				t.Errorf("expected ~1h lifetime, got %s", d)
			}
			if !grant.Credential().Scopes.Has(models.ScopeImageUpload) {
				t.Errorf("expected scope to be parsed, got %q", grant.Scope)
			}
		})

		t.Run("rotated refresh token", func(t *testing.T) {
			rotated.Store(true)
			defer rotated.Store(false)

			grant, err := a.Refresh(ctx, "good")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if grant.RefreshToken != "rotated" {
				t.Errorf("expected rotated refresh token, got %q", grant.RefreshToken)
			}
		})

		t.Run("non-2xx", func(t *testing.T) {
			_, err := a.Refresh(ctx, "revoked")
			if !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrRefreshFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), "400") {
				t.Errorf("expected status in error, got %v", err)
			}
		})

		t.Run("transport error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection reset"))}
			broken, err := NewSpotifyAuth("id", "secret", "", "http://accounts.test", client)
			if err != nil {
				t.Fatalf("failed to create auth: %v", err)
			}

			_, err = broken.Refresh(ctx, "good")
			if !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrRefreshFailed, got %v", err)
			}
			if err == nil || !strings.Contains(err.Error(), "connection reset") {
				t.Errorf("expected transport cause in error, got %v", err)
			}
		})

		t.Run("no refresh token", func(t *testing.T) {
			if _, err := a.Refresh(ctx, ""); !errors.Is(err, shared.ErrNoRefreshToken) {
				t.Errorf("expected ErrNoRefreshToken, got %v", err)
			}
		})
	})

	t.Run("Exchange", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t, map[string]http.HandlerFunc{
			"POST /api/token": func(w http.ResponseWriter, r *http.Request) {
				_ = r.ParseForm()
				if r.PostForm.Get("code") != "abc" {
					tu.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
					return
				}
				tu.WriteJSON(w, http.StatusOK, map[string]any{
					"access_token": "access", "refresh_token": "refresh", "token_type": "Bearer",
					"expires_in": 3600, "scope": "user-read-email",
				})
			},
		})

		a, err := NewSpotifyAuth("id", "secret", "http://127.0.0.1/cb", fake.URL(), nil)
		if err != nil {
			t.Fatalf("failed to create auth: %v", err)
		}

		grant, err := a.Exchange(ctx, "abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		cred := grant.Credential()
		if cred.AccessToken != "access" || cred.RefreshToken != "refresh" || cred.ExpiresAt.IsZero() {
			t.Errorf("unexpected credential %+v", cred)
		}

		if _, err := a.Exchange(ctx, "bad"); !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
	})
}
