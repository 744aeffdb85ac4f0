package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
)

const sessionColumns = `id, user_id, email, display_name, access_token, refresh_token, token_expires_at, scope, created_at, updated_at, expires_at`

// SessionRepository persists [models.Session] rows.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	s.CreatedAt = dbTime(s.CreatedAt)
	s.UpdatedAt = dbTime(s.UpdatedAt)
	s.ExpiresAt = dbTime(s.ExpiresAt)

	query := `INSERT INTO sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.User.ID, s.User.Email, s.User.DisplayName,
		s.Credential.AccessToken, s.Credential.RefreshToken, s.Credential.ExpiresAtMillis(), s.Credential.Scopes.String(),
		s.CreatedAt, s.UpdatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID. Expired sessions are returned; callers check [models.Session.Expired].
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return s, nil
}

// List returns every session, most recently updated first.
func (r *SessionRepository) List(ctx context.Context) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// Delete removes a session by ID.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return affected(result, shared.ErrSessionNotFound, id)
}

// PurgeExpired deletes sessions whose lifetime ended at or before now and returns how many were removed.
func (r *SessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, dbTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

// Credential returns the provider credential stored for a session.
func (r *SessionRepository) Credential(ctx context.Context, sessionID string) (models.Credential, error) {
	s, err := r.Get(ctx, sessionID)
	if err != nil {
		return models.Credential{}, err
	}
	return s.Credential, nil
}

// SaveCredential replaces the provider credential stored for a session.
func (r *SessionRepository) SaveCredential(ctx context.Context, sessionID string, cred models.Credential) error {
	query := `
		UPDATE sessions
		SET access_token = ?, refresh_token = ?, token_expires_at = ?, scope = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		cred.AccessToken, cred.RefreshToken, cred.ExpiresAtMillis(), cred.Scopes.String(), dbTime(time.Now()), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}
	return affected(result, shared.ErrSessionNotFound, sessionID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		s         models.Session
		expiresMS int64
		scope     string
	)

	err := row.Scan(
		&s.ID, &s.User.ID, &s.User.Email, &s.User.DisplayName,
		&s.Credential.AccessToken, &s.Credential.RefreshToken, &expiresMS, &scope,
		&s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	s.Credential.ExpiresAt = models.ExpiryFromMillis(expiresMS)
	s.Credential.Scopes = models.ParseScopes(scope)
	return &s, nil
}
