package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// dbTime normalizes t for storage.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// affected returns an error wrapping notFound when result touched no rows.
func affected(result sql.Result, notFound error, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}
