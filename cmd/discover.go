package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/rollplay/internal/discovery"
	"github.com/desertthunder/rollplay/internal/formatter"
	"github.com/desertthunder/rollplay/internal/shared"
	"github.com/desertthunder/rollplay/internal/tasks"
	"github.com/urfave/cli/v3"
)

func discoveryParams(cmd *cli.Command, mode discovery.Mode) discovery.Params {
	return discovery.Params{
		Mode:      mode,
		Genres:    cmd.StringSlice("genre"),
		Country:   cmd.String("country"),
		Mood:      cmd.String("mood"),
		DiceFaces: cmd.Int("faces"),
		RollValue: cmd.Int("value"),
	}
}

// Roll resolves a die roll offline: faces, roll, selected genre, exotic flag and the queries that would run.
func (r *Runner) Roll(ctx context.Context, cmd *cli.Command) error {
	plan, err := discovery.Build(discoveryParams(cmd, discovery.ModeRoll), nil)
	if err != nil {
		return err
	}
	if plan.Roll == nil {
		return fmt.Errorf("%w: at least one --genre is required", shared.ErrMissingArgument)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tasks.SeedInfo{Queries: plan.SearchQueries(), Roll: tasks.NewRollSeed(plan.Roll)}, true)
	}
	return r.writePlain("%s", formatter.RenderPlan(plan))
}

// Discover runs a discovery search with a stored session's credential and prints or exports the tracks.
func (r *Runner) Discover(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
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

	params := discoveryParams(cmd, discovery.Mode(cmd.String("mode")))
	result, err := a.generator.Generate(ctx, cmd.String("session"), params)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	list := &formatter.TrackList{
		Name:        result.PlaylistName,
		Description: result.PlaylistDescription,
		Queries:     result.SeedInfo.Queries,
		Tracks:      result.Tracks,
	}

	if out := cmd.String("output"); out != "" {
		if err := formatter.WriteExport(list, format, out); err != nil {
			return err
		}
		r.logger.Info("exported tracks", "path", out, "format", format, "count", len(list.Tracks))
		return r.writePlain("✓ %d tracks written to %s\n", len(list.Tracks), out)
	}

	if format != formatter.FormatText {
		data, err := formatter.Export(list, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}
	return r.writePlain("%s", formatter.RenderTracks(list))
}
