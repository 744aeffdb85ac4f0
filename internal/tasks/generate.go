package tasks

import (
	"context"

	"github.com/desertthunder/rollplay/internal/discovery"
	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
)

// SeedInfo describes what a generated track list was searched with.
type SeedInfo struct {
	Queries      []string  `json:"queries"`
	TotalResults int       `json:"totalResults"`
	Roll         *RollSeed `json:"roll,omitempty"`
}

// RollSeed is the resolved die roll behind a roll-mode result.
type RollSeed struct {
	DiceFaces int    `json:"diceFaces"`
	RollValue int    `json:"rollValue"`
	Genre     string `json:"genre"`
	Exotic    bool   `json:"exotic"`
}

// NewRollSeed summarizes a resolved roll.
func NewRollSeed(r *discovery.RollResult) *RollSeed {
	return &RollSeed{
		DiceFaces: r.Context.DiceFaces,
		RollValue: r.Context.RollValue,
		Genre:     r.Genre,
		Exotic:    r.Exotic,
	}
}

// GenerateResult is the response to a discovery request.
type GenerateResult struct {
	Tracks              []models.Track `json:"tracks"`
	PlaylistName        string         `json:"playlistName"`
	PlaylistDescription string         `json:"playlistDescription"`
	SeedInfo            SeedInfo       `json:"seedInfo"`
}

// Generator runs discovery: plan the queries, then aggregate search results for them.
type Generator struct {
	auth       *Authenticator
	aggregator *SearchAggregator
	roll       func(faces int) int
}

// NewGenerator creates a [Generator]. A nil roll uses [discovery.Roll].
func NewGenerator(auth *Authenticator, aggregator *SearchAggregator, roll func(int) int) *Generator {
	if roll == nil {
		roll = discovery.Roll
	}
	return &Generator{auth: auth, aggregator: aggregator, roll: roll}
}

// Generate plans and runs a discovery search for the session.
//
// Invalid params wrap [shared.ErrInvalidArgument]; an unusable session wraps [shared.ErrNotAuthenticated].
func (g *Generator) Generate(ctx context.Context, sessionID string, params discovery.Params) (*GenerateResult, error) {
	plan, err := discovery.Build(params, g.roll)
	if err != nil {
		return nil, err
	}

	cred, err := g.auth.Valid(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	queries := plan.SearchQueries()
	tracks, total, err := g.aggregator.Aggregate(ctx, cred.AccessToken, queries)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Tracks:              tracks,
		PlaylistName:        plan.Name,
		PlaylistDescription: plan.Description,
		SeedInfo:            SeedInfo{Queries: queries, TotalResults: total},
	}
	if plan.Roll != nil {
		result.SeedInfo.Roll = NewRollSeed(plan.Roll)
	}

	shared.LoggerFrom(ctx).Info("discovery generated", "mode", params.Mode, "queries", len(queries), "tracks", len(tracks))
	return result, nil
}
