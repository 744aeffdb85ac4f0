package tasks

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/services"
	"github.com/desertthunder/rollplay/internal/shared"
)

type memoryStore struct {
	mu    sync.Mutex
	creds map[string]models.Credential
	saves int
}

func newMemoryStore(sessionID string, cred models.Credential) *memoryStore {
	return &memoryStore{creds: map[string]models.Credential{sessionID: cred}}
}

func (s *memoryStore) Credential(_ context.Context, sessionID string) (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[sessionID]
	if !ok {
		return models.Credential{}, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, sessionID)
	}
	return cred, nil
}

func (s *memoryStore) SaveCredential(_ context.Context, sessionID string, cred models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[sessionID] = cred
	s.saves++
	return nil
}

type stubRefresher struct {
	grants []services.TokenGrant
	err    error
	calls  []string
}

func (r *stubRefresher) Refresh(_ context.Context, refreshToken string) (services.TokenGrant, error) {
	r.calls = append(r.calls, refreshToken)
	if r.err != nil {
		return services.TokenGrant{}, r.err
	}
	grant := r.grants[0]
	if len(r.grants) > 1 {
		r.grants = r.grants[1:]
	}
	return grant, nil
}

func freshGrant(token string) services.TokenGrant {
	return services.TokenGrant{AccessToken: token, Expiry: time.Now().Add(time.Hour)}
}

type addCall struct {
	token string
	uris  []string
}

type fakePlaylistAPI struct {
	createErr error
	verifyErr error
	uploadErr error

	// addErrs are returned by successive AddTracks calls; nil entries and calls past the end succeed.
	addErrs []error

	adds    []addCall
	uploads [][]byte
	creates int
}

func (f *fakePlaylistAPI) CreatePlaylist(_ context.Context, token, name, description string) (*services.SpotifyPlaylist, error) {
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	pl := &services.SpotifyPlaylist{ID: "pl1", Name: name, Description: description}
	pl.ExternalURLs.Spotify = "https://open.spotify.com/playlist/pl1"
	return pl, nil
}

func (f *fakePlaylistAPI) Playlist(_ context.Context, token, playlistID string) (*services.SpotifyPlaylist, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &services.SpotifyPlaylist{ID: playlistID, Public: true}, nil
}

func (f *fakePlaylistAPI) AddTracks(_ context.Context, token, playlistID string, uris []string) (string, error) {
	n := len(f.adds)
	f.adds = append(f.adds, addCall{token: token, uris: uris})
	if n < len(f.addErrs) && f.addErrs[n] != nil {
		return "", f.addErrs[n]
	}
	return fmt.Sprintf("snap-%d", n), nil
}

func (f *fakePlaylistAPI) UploadPlaylistImage(_ context.Context, token, playlistID string, jpeg []byte) error {
	f.uploads = append(f.uploads, jpeg)
	return f.uploadErr
}

func apiStatus(status int) error {
	return &services.APIError{Method: http.MethodPost, Endpoint: "/playlists/pl1/tracks", StatusCode: status}
}

type memoryRecorder struct {
	records []*models.PublishRecord
}

func (r *memoryRecorder) Record(_ context.Context, rec *models.PublishRecord) error {
	r.records = append(r.records, rec)
	return nil
}

type pagedSearcher struct {
	pages map[string][][]models.Track
	fail  map[string]int
	calls []string
}

func (s *pagedSearcher) SearchTracks(_ context.Context, token, query string, limit, offset int) ([]models.Track, error) {
	s.calls = append(s.calls, fmt.Sprintf("%s@%d", query, offset))
	page := offset / limit
	if failAt, ok := s.fail[query]; ok && failAt == page {
		return nil, apiStatus(http.StatusInternalServerError)
	}
	pages := s.pages[query]
	if page >= len(pages) {
		return nil, nil
	}
	return pages[page], nil
}

func tracks(prefix string, n int) []models.Track {
	out := make([]models.Track, n)
	for i := range out {
		id := fmt.Sprintf("%s%d", prefix, i)
		out[i] = models.Track{ID: id, Title: id, URI: "spotify:track:" + id}
	}
	return out
}
