package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/rollplay/internal/repositories"
	"github.com/desertthunder/rollplay/internal/server"
	"github.com/desertthunder/rollplay/internal/services"
	"github.com/desertthunder/rollplay/internal/shared"
	"github.com/desertthunder/rollplay/internal/tasks"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// app is the wired object graph shared by serve and the session-backed commands.
type app struct {
	sessions  *repositories.SessionRepository
	history   *repositories.PublishLogRepository
	spotify   *services.SpotifyService
	accounts  *services.SpotifyAuth
	generator *tasks.Generator
	publisher *tasks.Publisher
}

func (r *Runner) buildApp(config *shared.Config, db *sql.DB) (*app, error) {
	sp := config.Credentials.Spotify

	accounts, err := services.NewSpotifyAuth(sp.ClientID, sp.ClientSecret, sp.RedirectURI, sp.AccountsURL, r.httpClient)
	if err != nil {
		return nil, err
	}

	sessions := repositories.NewSessionRepository(db)
	history := repositories.NewPublishLogRepository(db)
	spotify := services.NewSpotifyService(sp.APIURL, r.httpClient)
	authenticator := tasks.NewAuthenticator(sessions, accounts)

	delay := config.Server.PublishDelay()
	if delay == 0 {
		delay = -1
	}

	return &app{
		sessions:  sessions,
		history:   history,
		spotify:   spotify,
		accounts:  accounts,
		generator: tasks.NewGenerator(authenticator, tasks.NewSearchAggregator(spotify, config.Server.SearchRateLimit), nil),
		publisher: tasks.NewPublisher(spotify, authenticator, tasks.PublishOpts{
			SettleDelay: delay,
			CoverImage:  config.Server.CoverImage,
			Recorder:    history,
		}),
	}, nil
}

// Serve runs the web API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := r.buildApp(config, db)
	if err != nil {
		return err
	}

	if purged, err := a.sessions.PurgeExpired(ctx, r.now()); err != nil {
		r.logger.Warn("failed to purge expired sessions", "error", err)
	} else if purged > 0 {
		r.logger.Info("purged expired sessions", "count", purged)
	}

	handler := server.NewHandler(server.Deps{
		Sessions:     a.sessions,
		Provider:     a.accounts,
		Profiles:     a.spotify,
		Discoverer:   a.generator,
		Publisher:    a.publisher,
		AllowedEmail: config.Auth.AllowedEmail,
		SessionTTL:   config.Auth.SessionTTL(),
		CookieSecure: config.Auth.CookieSecure,
		Logger:       r.logger,
		Now:          r.now,
	})

	srv := &http.Server{
		Addr:              config.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	base := "http://" + config.Server.Addr()
	r.logger.Info("listening", "addr", srv.Addr, "allowed", config.Auth.AllowedEmail)
	r.writePlain("rollplay is running at %s (sign in at %s/api/auth/login)\n", base, base)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(base + "/api/auth/login"); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
