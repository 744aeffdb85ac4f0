package discovery

import (
	"errors"
	"testing"

	"github.com/desertthunder/rollplay/internal/shared"
)

func fixedRoll(v int) func(int) int {
	return func(int) int { return v }
}

func TestBuild(t *testing.T) {
	t.Run("roll mode names the selected genre", func(t *testing.T) {
		plan, err := Build(Params{
			Mode:      ModeRoll,
			Genres:    []string{"A", "B", "C", "D", "E", "F"},
			DiceFaces: 12,
			RollValue: 5,
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if plan.Name != "D12 (5) - C" {
			t.Errorf("Name = %q", plan.Name)
		}
		if plan.Description != "Rolled a D12, got 5! Pure C vibes 🎲" {
			t.Errorf("Description = %q", plan.Description)
		}
		if plan.Roll == nil || plan.Roll.Genre != "C" {
			t.Errorf("expected roll result for C, got %+v", plan.Roll)
		}
		assertQueries(t, plan.SearchQueries(), []string{"C", "C new", "C popular", "C best", "C top"})
	})

	t.Run("roll mode derives die and rolls when omitted", func(t *testing.T) {
		plan, err := Build(Params{Mode: ModeRoll, Genres: []string{"rock", "jazz", "pop", "funk"}}, fixedRoll(6))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if plan.Roll.Context.DiceFaces != 6 || plan.Roll.Context.RollValue != 6 {
			t.Errorf("expected D6 rolling 6, got %+v", plan.Roll.Context)
		}
		if plan.Roll.Genre != "funk" {
			t.Errorf("expected funk, got %s", plan.Roll.Genre)
		}
	})

	t.Run("roll mode rejects out of range roll", func(t *testing.T) {
		_, err := Build(Params{Mode: ModeRoll, Genres: []string{"rock"}, DiceFaces: 3, RollValue: 9}, nil)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("roll mode without genres falls back", func(t *testing.T) {
		plan, err := Build(Params{Mode: ModeRoll}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plan.Name != "RollPlay Discovery" {
			t.Errorf("Name = %q", plan.Name)
		}
		assertQueries(t, plan.SearchQueries(), FallbackQueries)
	})

	t.Run("country mode", func(t *testing.T) {
		plan, err := Build(Params{Mode: ModeCountry, Country: "Brazil", Genres: []string{"samba"}}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertQueries(t, plan.SearchQueries(), []string{"Brazil music", "Brazil artist", "Brazil traditional", "Brazil samba"})
		if plan.Name != "Brazil Discovery" || plan.Description != "Musical journey through Brazil" {
			t.Errorf("unexpected naming %q / %q", plan.Name, plan.Description)
		}
	})

	t.Run("mood mode caps queries", func(t *testing.T) {
		plan, err := Build(Params{Mode: ModeMood, Mood: "relaxed", Genres: []string{"jazz"}}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(plan.Queries) != 10 {
			t.Errorf("expected 10 raw queries, got %d", len(plan.Queries))
		}
		assertQueries(t, plan.SearchQueries(), []string{"chill", "jazz chill", "relaxed", "jazz relaxed", "calm"})
		if plan.Name != "Relaxed Vibes" {
			t.Errorf("Name = %q", plan.Name)
		}
	})

	t.Run("unknown mood keeps its name but searches generically", func(t *testing.T) {
		plan, err := Build(Params{Mode: ModeMood, Mood: "spooky"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plan.Name != "spooky Vibes" {
			t.Errorf("Name = %q", plan.Name)
		}
		assertQueries(t, plan.SearchQueries(), FallbackQueries)
	})

	t.Run("unknown mode", func(t *testing.T) {
		if _, err := Build(Params{Mode: "lottery"}, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestMoods(t *testing.T) {
	if len(Moods()) != 6 {
		t.Fatalf("expected 6 moods, got %d", len(Moods()))
	}

	m, ok := MoodByID("FOCUSED")
	if !ok || m.ID != "focused" {
		t.Fatalf("expected case-insensitive lookup, got %+v %v", m, ok)
	}

	profile := FallbackProfile(m, []string{"lofi"})
	if profile.PlaylistName != "Focused lofi" {
		t.Errorf("PlaylistName = %q", profile.PlaylistName)
	}
	if len(profile.SearchKeywords) != 5 || profile.ExtraHints == nil {
		t.Errorf("unexpected profile %+v", profile)
	}

	profile.SearchKeywords[0] = "changed"
	again, _ := MoodByID("focused")
	if again.FallbackKeywords[0] == "changed" {
		t.Error("profile keywords must not alias the catalog")
	}

	if FallbackProfile(m, nil).PlaylistName != "Focused Discovery" {
		t.Error("expected Discovery suffix without genres")
	}
}
