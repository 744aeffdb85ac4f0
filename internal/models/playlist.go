package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/rollplay/internal/shared"
)

// DefaultPlaylistDescription is used when a publish request leaves the description empty.
const DefaultPlaylistDescription = "Created with RollPlay"

// PublishRequest asks for a playlist to be created and filled with TrackURIs in order.
type PublishRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TrackURIs   []string `json:"trackUris"`
}

// Validate checks the required publish fields.
func (r PublishRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if len(r.TrackURIs) == 0 {
		return fmt.Errorf("%w: trackUris must not be empty", shared.ErrInvalidInput)
	}
	for i, uri := range r.TrackURIs {
		if strings.TrimSpace(uri) == "" {
			return fmt.Errorf("%w: trackUris[%d] is blank", shared.ErrInvalidInput, i)
		}
	}
	return nil
}

// DescriptionOrDefault returns the description, falling back to [DefaultPlaylistDescription].
func (r PublishRequest) DescriptionOrDefault() string {
	if strings.TrimSpace(r.Description) == "" {
		return DefaultPlaylistDescription
	}
	return r.Description
}

// PublishOutcome is the terminal report of a publish attempt.
//
// A non-empty ErrorCode marks a partial success: the playlist exists but a later step failed.
type PublishOutcome struct {
	PlaylistURL string   `json:"playlistUrl"`
	PlaylistID  string   `json:"playlistId"`
	Messages    []string `json:"messages"`
	Warnings    []string `json:"warnings"`
	ErrorCode   string   `json:"errorCode,omitempty"`
}

// Partial reports whether the outcome is a partial success.
func (o PublishOutcome) Partial() bool {
	return o.ErrorCode != ""
}
