// Spotify Web API client
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
)

const (
	// DefaultAPIURL is the production Web API base.
	DefaultAPIURL = "https://api.spotify.com/v1"

	// MaxTracksPerRequest is the provider's limit for one add-tracks call.
	MaxTracksPerRequest = 100

	// maxErrorBody caps how much of an error response is kept on [APIError].
	maxErrorBody = 512
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	PreviewURL   *string         `json:"preview_url"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// Owner is the user owning a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracks struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Owner        Owner          `json:"owner"`
	Public       bool           `json:"public"`
	Tracks       playlistTracks `json:"tracks"`
	ExternalURLs externalURLs   `json:"external_urls"`
	URI          string         `json:"uri"`
}

// URL returns the playlist's web link.
func (p SpotifyPlaylist) URL() string {
	return p.ExternalURLs.Spotify
}

type searchResponse struct {
	Tracks struct {
		Items []*SpotifyTrack `json:"items"`
		Total int             `json:"total"`
	} `json:"tracks"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type addTracksRequest struct {
	URIs []string `json:"uris"`
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

// SpotifyService is a stateless Web API client. The access token is supplied per call.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a client for the Web API at baseURL, defaulting to [DefaultAPIURL].
func NewSpotifyService(baseURL string, client *http.Client) *SpotifyService {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SpotifyService{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

// doRequest performs an authenticated JSON request to the Web API.
//
// A non-2xx status returns an [*APIError]; result is left untouched in that case.
func (s *SpotifyService) doRequest(ctx context.Context, token, method, endpoint string, body any, result any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}
	return s.send(ctx, token, method, endpoint, "application/json", payload, result)
}

func (s *SpotifyService) send(ctx context.Context, token, method, endpoint, contentType string, payload io.Reader, result any) error {
	if token == "" {
		return shared.ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context, token string) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, token, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchTracks runs one page of a track search. Null items and items without an id or uri are skipped.
func (s *SpotifyService) SearchTracks(ctx context.Context, token, query string, limit, offset int) ([]models.Track, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprint(limit))
	params.Set("offset", fmt.Sprint(offset))

	var response searchResponse
	if err := s.doRequest(ctx, token, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		if item == nil || item.ID == "" || item.URI == "" {
			continue
		}
		tracks = append(tracks, item.ToTrack())
	}
	return tracks, nil
}

// ToTrack maps a provider track into the app's [models.Track].
func (t SpotifyTrack) ToTrack() models.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	var image string
	if len(t.Album.Images) > 0 {
		image = t.Album.Images[0].URL
	}

	return models.Track{
		ID:          t.ID,
		Title:       t.Name,
		Artist:      strings.Join(artists, ", "),
		Album:       t.Album.Name,
		ImageURL:    image,
		PreviewURL:  t.PreviewURL,
		ExternalURL: t.ExternalURLs.Spotify,
		URI:         t.URI,
	}
}

// CreatePlaylist creates a public playlist owned by the current user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, token, name, description string) (*SpotifyPlaylist, error) {
	body := createPlaylistRequest{Name: name, Description: description, Public: true}

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, token, http.MethodPost, "/me/playlists", body, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// Playlist retrieves a playlist by ID.
func (s *SpotifyService) Playlist(ctx context.Context, token, playlistID string) (*SpotifyPlaylist, error) {
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddTracks appends uris to a playlist and returns the new snapshot id.
func (s *SpotifyService) AddTracks(ctx context.Context, token, playlistID string, uris []string) (string, error) {
	if len(uris) == 0 {
		return "", fmt.Errorf("%w: no track uris", shared.ErrInvalidArgument)
	}
	if len(uris) > MaxTracksPerRequest {
		return "", fmt.Errorf("%w: at most %d uris per request", shared.ErrInvalidArgument, MaxTracksPerRequest)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	var response snapshotResponse
	if err := s.doRequest(ctx, token, http.MethodPost, endpoint, addTracksRequest{URIs: uris}, &response); err != nil {
		return "", err
	}
	return response.SnapshotID, nil
}

// UploadPlaylistImage replaces a playlist's cover with the given JPEG bytes.
func (s *SpotifyService) UploadPlaylistImage(ctx context.Context, token, playlistID string, jpeg []byte) error {
	if len(jpeg) == 0 {
		return fmt.Errorf("%w: empty cover image", shared.ErrInvalidImage)
	}

	endpoint := fmt.Sprintf("/playlists/%s/images", url.PathEscape(playlistID))
	encoded := base64.StdEncoding.EncodeToString(jpeg)

	return s.send(ctx, token, http.MethodPut, endpoint, "image/jpeg", strings.NewReader(encoded), nil)
}
