package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/rollplay/internal/discovery"
	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
)

func TestGenerator(t *testing.T) {
	ctx := context.Background()
	cred := models.Credential{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour)}

	t.Run("roll mode", func(t *testing.T) {
		searcher := &pagedSearcher{pages: map[string][][]models.Track{
			"C":     {tracks("c", 3)},
			"C new": {tracks("n", 2)},
		}}
		auth := NewAuthenticator(newMemoryStore("s1", cred), &stubRefresher{})
		gen := NewGenerator(auth, NewSearchAggregator(searcher, 0), nil)

		res, err := gen.Generate(ctx, "s1", discovery.Params{
			Mode: discovery.ModeRoll, Genres: []string{"A", "B", "C", "D", "E", "F"}, DiceFaces: 12, RollValue: 5,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if res.PlaylistName != "D12 (5) - C" {
			t.Errorf("unexpected name %q", res.PlaylistName)
		}
		if res.SeedInfo.TotalResults != 5 || len(res.Tracks) != 5 {
			t.Errorf("expected 5 tracks, got %d", len(res.Tracks))
		}
		if len(res.SeedInfo.Queries) != 5 || res.SeedInfo.Queries[0] != "C" {
			t.Errorf("unexpected queries %v", res.SeedInfo.Queries)
		}
		if res.SeedInfo.Roll == nil || res.SeedInfo.Roll.Genre != "C" || res.SeedInfo.Roll.Exotic {
			t.Errorf("unexpected roll seed %+v", res.SeedInfo.Roll)
		}
	})

	t.Run("total results before truncation", func(t *testing.T) {
		searcher := &pagedSearcher{pages: map[string][][]models.Track{
			"Peru music":  {tracks("a", 7), tracks("b", 7), tracks("c", 7)},
			"Peru artist": {tracks("d", 7), tracks("e", 7), tracks("f", 7)},
		}}
		auth := NewAuthenticator(newMemoryStore("s1", cred), &stubRefresher{})
		gen := NewGenerator(auth, NewSearchAggregator(searcher, 0), nil)

		res, err := gen.Generate(ctx, "s1", discovery.Params{Mode: discovery.ModeCountry, Country: "Peru"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Tracks) != MaxAggregatedTracks {
			t.Errorf("expected %d tracks, got %d", MaxAggregatedTracks, len(res.Tracks))
		}
		if res.SeedInfo.TotalResults != 42 {
			t.Errorf("expected totalResults 42, got %d", res.SeedInfo.TotalResults)
		}
	})

	t.Run("server side roll", func(t *testing.T) {
		auth := NewAuthenticator(newMemoryStore("s1", cred), &stubRefresher{})
		searcher := &pagedSearcher{pages: map[string][][]models.Track{}}
		gen := NewGenerator(auth, NewSearchAggregator(searcher, 0), func(int) int { return 3 })

		res, err := gen.Generate(ctx, "s1", discovery.Params{Mode: discovery.ModeRoll, Genres: []string{"x", "y", "z"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.SeedInfo.Roll.DiceFaces != 3 || res.SeedInfo.Roll.RollValue != 3 || res.SeedInfo.Roll.Genre != "z" {
			t.Errorf("unexpected roll %+v", res.SeedInfo.Roll)
		}
		if !res.SeedInfo.Roll.Exotic {
			t.Error("a 3 on a D3 should be exotic")
		}
	})

	t.Run("invalid params", func(t *testing.T) {
		auth := NewAuthenticator(newMemoryStore("s1", cred), &stubRefresher{})
		gen := NewGenerator(auth, NewSearchAggregator(&pagedSearcher{}, 0), nil)

		_, err := gen.Generate(ctx, "s1", discovery.Params{Mode: "nope"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		auth := NewAuthenticator(newMemoryStore("s1", cred), &stubRefresher{})
		gen := NewGenerator(auth, NewSearchAggregator(&pagedSearcher{}, 0), nil)

		_, err := gen.Generate(ctx, "missing", discovery.Params{Mode: discovery.ModeCountry, Country: "Japan"})
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
