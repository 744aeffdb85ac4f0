// package tasks implements the discovery and publishing operations behind the HTTP API.
package tasks

import (
	"context"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/services"
)

// TokenStore reads and writes the credential held by a session.
type TokenStore interface {
	Credential(ctx context.Context, sessionID string) (models.Credential, error)
	SaveCredential(ctx context.Context, sessionID string, cred models.Credential) error
}

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (services.TokenGrant, error)
}

// Searcher runs one page of catalog track search.
type Searcher interface {
	SearchTracks(ctx context.Context, token, query string, limit, offset int) ([]models.Track, error)
}

// PlaylistAPI is the subset of the Web API used to publish a playlist.
type PlaylistAPI interface {
	CreatePlaylist(ctx context.Context, token, name, description string) (*services.SpotifyPlaylist, error)
	Playlist(ctx context.Context, token, playlistID string) (*services.SpotifyPlaylist, error)
	AddTracks(ctx context.Context, token, playlistID string, uris []string) (string, error)
	UploadPlaylistImage(ctx context.Context, token, playlistID string, jpeg []byte) error
}

// PublishRecorder stores a summary of each publish attempt.
type PublishRecorder interface {
	Record(ctx context.Context, rec *models.PublishRecord) error
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
