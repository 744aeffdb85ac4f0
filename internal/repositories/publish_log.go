package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
)

// PublishLogRepository records publish attempts.
type PublishLogRepository struct {
	db *sql.DB
}

// NewPublishLogRepository creates a new [PublishLogRepository] with the given database connection
func NewPublishLogRepository(db *sql.DB) *PublishLogRepository {
	return &PublishLogRepository{db: db}
}

// Record inserts rec, assigning an ID and timestamp when they are unset.
func (r *PublishLogRepository) Record(ctx context.Context, rec *models.PublishRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("%w: publish record name is required", shared.ErrInvalidInput)
	}
	if rec.ID == "" {
		rec.ID = shared.GenerateID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = dbTime(rec.CreatedAt)

	query := `
		INSERT INTO publish_log (id, session_id, playlist_id, playlist_url, name, track_count, status, error_code, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.SessionID, rec.PlaylistID, rec.PlaylistURL, rec.Name, rec.TrackCount,
		rec.Status, rec.ErrorCode, strings.Join(rec.Warnings, "\n"), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert publish record: %w", err)
	}

	return nil
}

// List returns up to limit records, newest first. A limit of 0 or less returns everything.
func (r *PublishLogRepository) List(ctx context.Context, limit int) ([]*models.PublishRecord, error) {
	query := `
		SELECT id, session_id, playlist_id, playlist_url, name, track_count, status, error_code, warnings, created_at
		FROM publish_log
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query publish log: %w", err)
	}
	defer rows.Close()

	var records []*models.PublishRecord
	for rows.Next() {
		var (
			rec      models.PublishRecord
			warnings string
		)
		err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.PlaylistID, &rec.PlaylistURL, &rec.Name, &rec.TrackCount,
			&rec.Status, &rec.ErrorCode, &warnings, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan publish record: %w", err)
		}
		if warnings != "" {
			rec.Warnings = strings.Split(warnings, "\n")
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating publish log: %w", err)
	}

	return records, nil
}
