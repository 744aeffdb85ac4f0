package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/rollplay/internal/shared"
)

// User is the provider profile of the signed-in principal.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Session binds a cookie id to a user and their provider credential.
type Session struct {
	ID         string
	User       User
	Credential Credential
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExpiresAt  time.Time
}

// NewSession creates a session for user that lives for ttl from now.
func NewSession(user User, cred Credential, ttl time.Duration, now time.Time) *Session {
	return &Session{
		ID:         shared.GenerateID(),
		User:       user,
		Credential: cred,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

// Expired reports whether the session itself (not its access token) has lapsed.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Validate checks the fields a session must carry to be persisted.
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: session id is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(s.User.ID) == "" {
		return fmt.Errorf("%w: session user id is required", shared.ErrInvalidInput)
	}
	if !s.Credential.Authenticated() {
		return fmt.Errorf("%w: session access token is required", shared.ErrInvalidInput)
	}
	return nil
}

// PublishRecord is the stored summary of one publish attempt.
type PublishRecord struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	PlaylistID  string    `json:"playlistId,omitempty"`
	PlaylistURL string    `json:"playlistUrl,omitempty"`
	Name        string    `json:"name"`
	TrackCount  int       `json:"trackCount"`
	Status      int       `json:"status"`
	ErrorCode   string    `json:"errorCode,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
