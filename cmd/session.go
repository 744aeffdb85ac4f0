package main

import (
	"context"
	"time"

	"github.com/desertthunder/rollplay/internal/formatter"
	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/repositories"
	"github.com/urfave/cli/v3"
)

// sessionView is the JSON shape of a session; credentials are never printed.
type sessionView struct {
	ID        string      `json:"id"`
	User      models.User `json:"user"`
	Scopes    []string    `json:"scopes"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Expired   bool        `json:"expired"`
}

// SessionList prints stored sessions.
func (r *Runner) SessionList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := repositories.NewSessionRepository(db).List(ctx)
	if err != nil {
		return err
	}

	now := r.now()
	if cmd.Bool("json") {
		views := make([]sessionView, 0, len(sessions))
		for _, s := range sessions {
			views = append(views, sessionView{
				ID:        s.ID,
				User:      s.User,
				Scopes:    s.Credential.Scopes.List(),
				CreatedAt: s.CreatedAt,
				ExpiresAt: s.ExpiresAt,
				Expired:   s.Expired(now),
			})
		}
		return r.writeJSON(views, true)
	}
	return r.writePlain("%s", formatter.RenderSessions(sessions, now))
}

// SessionPurge deletes expired sessions.
func (r *Runner) SessionPurge(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := repositories.NewSessionRepository(db).PurgeExpired(ctx, r.now())
	if err != nil {
		return err
	}
	r.logger.Info("purged expired sessions", "count", n)
	return r.writePlain("✓ Removed %d expired session(s)\n", n)
}

// History prints recent publish attempts.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := repositories.NewPublishLogRepository(db).List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}
	return r.writePlain("%s", formatter.RenderHistory(records))
}
