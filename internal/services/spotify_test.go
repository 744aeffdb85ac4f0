package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/rollplay/internal/shared"
	tu "github.com/desertthunder/rollplay/internal/testing"
)

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewSpotifyService", func(t *testing.T) {
		srv := NewSpotifyService("", nil)
		if srv.baseURL != DefaultAPIURL {
			t.Errorf("expected default base URL, got %s", srv.baseURL)
		}

		srv = NewSpotifyService("http://example.test/v1/", nil)
		if srv.baseURL != "http://example.test/v1" {
			t.Errorf("expected trailing slash trimmed, got %s", srv.baseURL)
		}
	})

	t.Run("UserProfile", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t, map[string]http.HandlerFunc{
			"GET /me": func(w http.ResponseWriter, r *http.Request) {
				tu.WriteJSON(w, http.StatusOK, map[string]any{
					"id": "user-1", "email": "me@example.com", "display_name": "Me",
				})
			},
		})
		srv := NewSpotifyService(fake.URL(), nil)

		user, err := srv.UserProfile(ctx, "token-a")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "user-1" || user.Email != "me@example.com" || user.DisplayName != "Me" {
			t.Errorf("unexpected user %+v", user)
		}

		calls := fake.Calls()
		if len(calls) != 1 || calls[0].Token() != "token-a" {
			t.Errorf("expected one call with bearer token, got %+v", calls)
		}
	})

	t.Run("Missing Token", func(t *testing.T) {
		srv := NewSpotifyService("http://unused.test", nil)
		if _, err := srv.UserProfile(ctx, ""); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("SearchTracks", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t, map[string]http.HandlerFunc{
			"GET /search": func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("q") != "samba rare" || q.Get("type") != "track" || q.Get("limit") != "10" || q.Get("offset") != "20" {
					t.Errorf("unexpected query %s", r.URL.RawQuery)
				}
				tu.WriteJSON(w, http.StatusOK, map[string]any{
					"tracks": map[string]any{
						"total": 1,
						"items": []map[string]any{{
							"id":            "t1",
							"name":          "Aquarela",
							"artists":       []map[string]any{{"name": "A"}, {"name": "B"}},
							"album":         map[string]any{"name": "Album", "images": []map[string]any{{"url": "big.jpg"}, {"url": "small.jpg"}}},
							"preview_url":   nil,
							"external_urls": map[string]any{"spotify": "https://open.spotify.com/track/t1"},
							"uri":           "spotify:track:t1",
						}},
					},
				})
			},
		})
		srv := NewSpotifyService(fake.URL(), nil)

		tracks, err := srv.SearchTracks(ctx, "token", "samba rare", 10, 20)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 {
			t.Fatalf("expected one track, got %d", len(tracks))
		}

		got := tracks[0]
		if got.Artist != "A, B" {
			t.Errorf("expected joined artists, got %q", got.Artist)
		}
		if got.ImageURL != "big.jpg" {
			t.Errorf("expected first album image, got %q", got.ImageURL)
		}
		if got.PreviewURL != nil {
			t.Errorf("expected nil preview, got %v", *got.PreviewURL)
		}
		if got.URI != "spotify:track:t1" || got.ExternalURL != "https://open.spotify.com/track/t1" {
			t.Errorf("unexpected links %+v", got)
		}
	})

	t.Run("SearchTracks skips null items", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t, map[string]http.HandlerFunc{
			"GET /search": func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"tracks":{"total":4,"items":[
					null,
					{"id":"a","name":"A","uri":"spotify:track:a"},
					{"id":"","name":"local file","uri":""},
					null
				]}}`))
			},
		})
		srv := NewSpotifyService(fake.URL(), nil)

		tracks, err := srv.SearchTracks(ctx, "token", "anything", 10, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 || tracks[0].ID != "a" || tracks[0].URI != "spotify:track:a" {
			t.Errorf("expected only track a, got %+v", tracks)
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t, map[string]http.HandlerFunc{
			"POST /me/playlists": func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("bad body: %v", err)
					return
				}
				if body["name"] != "Mix" || body["description"] != "desc" || body["public"] != true {
					t.Errorf("unexpected body %v", body)
				}
				tu.WriteJSON(w, http.StatusCreated, map[string]any{
					"id":            "pl1",
					"external_urls": map[string]any{"spotify": "https://open.spotify.com/playlist/pl1"},
				})
			},
		})
		srv := NewSpotifyService(fake.URL(), nil)

		pl, err := srv.CreatePlaylist(ctx, "token", "Mix", "desc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pl.ID != "pl1" || pl.URL() != "https://open.spotify.com/playlist/pl1" {
			t.Errorf("unexpected playlist %+v", pl)
		}
		if ct := fake.Calls()[0].ContentType; ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}
	})

	t.Run("AddTracks", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t, map[string]http.HandlerFunc{
			"POST /playlists/pl1/tracks": func(w http.ResponseWriter, r *http.Request) {
				tu.WriteJSON(w, http.StatusCreated, map[string]any{"snapshot_id": "snap-1"})
			},
		})
		srv := NewSpotifyService(fake.URL(), nil)

		t.Run("returns snapshot", func(t *testing.T) {
			snap, err := srv.AddTracks(ctx, "token", "pl1", []string{"spotify:track:a", "spotify:track:b"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if snap != "snap-1" {
				t.Errorf("expected snapshot id, got %q", snap)
			}
			if body := fake.Calls()[0].Body; !strings.Contains(body, `"uris":["spotify:track:a","spotify:track:b"]`) {
				t.Errorf("unexpected body %s", body)
			}
		})

		t.Run("rejects oversize batch", func(t *testing.T) {
			uris := make([]string, MaxTracksPerRequest+1)
			for i := range uris {
				uris[i] = "spotify:track:x"
			}
			if _, err := srv.AddTracks(ctx, "token", "pl1", uris); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})

	t.Run("UploadPlaylistImage", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t, map[string]http.HandlerFunc{
			"PUT /playlists/pl1/images": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
			},
		})
		srv := NewSpotifyService(fake.URL(), nil)

		jpeg := []byte{0xFF, 0xD8, 0xFF, 0xD9}
		if err := srv.UploadPlaylistImage(ctx, "token", "pl1", jpeg); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		call := fake.Calls()[0]
		if call.ContentType != "image/jpeg" {
			t.Errorf("expected image/jpeg, got %s", call.ContentType)
		}
		if call.Body != base64.StdEncoding.EncodeToString(jpeg) {
			t.Errorf("expected base64 body, got %q", call.Body)
		}

		if err := srv.UploadPlaylistImage(ctx, "token", "pl1", nil); !errors.Is(err, shared.ErrInvalidImage) {
			t.Errorf("expected ErrInvalidImage for empty image, got %v", err)
		}
	})

	t.Run("APIError", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t, map[string]http.HandlerFunc{
			"GET /playlists/gone":        tu.Status(http.StatusNotFound),
			"POST /playlists/pl1/tracks": tu.Status(http.StatusUnauthorized),
		})
		srv := NewSpotifyService(fake.URL(), nil)

		_, err := srv.Playlist(ctx, "token", "gone")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if StatusOf(err) != http.StatusNotFound || IsUnauthorized(err) {
			t.Errorf("expected 404 status, got %d", StatusOf(err))
		}

		_, err = srv.AddTracks(ctx, "token", "pl1", []string{"spotify:track:a"})
		if !IsUnauthorized(err) {
			t.Errorf("expected unauthorized error, got %v", err)
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Endpoint != "/playlists/pl1/tracks" || apiErr.Body == "" {
			t.Errorf("expected populated APIError, got %+v", apiErr)
		}
	})

	t.Run("Transport Error", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		srv := NewSpotifyService("http://api.test/v1", client)

		_, err := srv.UserProfile(ctx, "token")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if err == nil || !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("expected transport cause in error, got %v", err)
		}
		if StatusOf(err) != 0 {
			t.Errorf("expected no status for transport error, got %d", StatusOf(err))
		}
	})

	t.Run("Unreadable Body", func(t *testing.T) {
		t.Run("success status", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: &tu.FCloser{}}
			srv := NewSpotifyService("http://api.test/v1", &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)})

			_, err := srv.UserProfile(ctx, "token")
			if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode error, got %v", err)
			}
		})

		t.Run("error status", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusBadGateway, Header: http.Header{}, Body: &tu.FCloser{}}
			srv := NewSpotifyService("http://api.test/v1", &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)})

			_, err := srv.Playlist(ctx, "token", "pl1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != http.StatusBadGateway || apiErr.Body != "" {
				t.Errorf("expected 502 with empty body, got %+v", apiErr)
			}
		})
	})

	t.Run("StatusOf non API error", func(t *testing.T) {
		if StatusOf(errors.New("boom")) != 0 || IsUnauthorized(nil) {
			t.Error("expected zero status for plain errors")
		}
	})
}
