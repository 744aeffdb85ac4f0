package discovery

import (
	"fmt"
	"strings"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
)

// Mode selects how search queries are seeded.
type Mode string

const (
	ModeRoll    Mode = "roll"
	ModeCountry Mode = "country"
	ModeMood    Mode = "mood"
)

// MaxQueries is the number of queries actually searched.
const MaxQueries = 5

const (
	defaultName        = "RollPlay Discovery"
	defaultDescription = "Discovered with RollPlay"
)

// FallbackQueries are searched when a mode produced no queries.
var FallbackQueries = []string{"popular music", "trending songs"}

// Params is a generate request as sent by the UI.
type Params struct {
	Mode      Mode     `json:"mode"`
	Genres    []string `json:"genres,omitempty"`
	Country   string   `json:"country,omitempty"`
	Mood      string   `json:"mood,omitempty"`
	RollValue int      `json:"rollValue,omitempty"`
	DiceFaces int      `json:"diceFaces,omitempty"`
}

// Plan is everything needed to run a search and name the result.
type Plan struct {
	Queries     []string
	Name        string
	Description string
	Roll        *RollResult
}

// SearchQueries returns the queries to run, capped at [MaxQueries], with the generic fallback
// when the plan produced none.
func (p Plan) SearchQueries() []string {
	if len(p.Queries) == 0 {
		return append([]string(nil), FallbackQueries...)
	}
	return append([]string(nil), p.Queries[:min(len(p.Queries), MaxQueries)]...)
}

// Build turns params into a search plan.
//
// In roll mode an omitted die is derived from the genre count and an omitted roll is rolled here.
// Modes missing their required input fall through to the generic plan.
func Build(p Params, roll func(int) int) (Plan, error) {
	if roll == nil {
		roll = Roll
	}

	genres := cleanGenres(p.Genres)
	plan := Plan{Name: defaultName, Description: defaultDescription}

	switch p.Mode {
	case ModeRoll:
		if len(genres) == 0 {
			return plan, nil
		}
		faces := p.DiceFaces
		if faces == 0 {
			faces = DiceFaces(len(genres))
		}
		value := p.RollValue
		if value == 0 {
			value = roll(faces)
		}

		rc, err := models.NewRollContext(genres, faces, value)
		if err != nil {
			return Plan{}, err
		}
		res, err := ResolveRoll(rc)
		if err != nil {
			return Plan{}, err
		}

		plan.Roll = &res
		plan.Queries = res.Queries
		plan.Name = fmt.Sprintf("D%d (%d) - %s", faces, value, strings.ToUpper(res.Genre))
		plan.Description = fmt.Sprintf("Rolled a D%d, got %d! Pure %s vibes 🎲", faces, value, res.Genre)
	case ModeCountry:
		country := strings.TrimSpace(p.Country)
		if country == "" {
			return plan, nil
		}
		plan.Queries = []string{country + " music", country + " artist", country + " traditional"}
		if len(genres) > 0 {
			plan.Queries = append(plan.Queries, country+" "+genres[0])
		}
		plan.Name = country + " Discovery"
		plan.Description = "Musical journey through " + country
	case ModeMood:
		if strings.TrimSpace(p.Mood) == "" {
			return plan, nil
		}
		mood, ok := MoodByID(p.Mood)
		plan.Name = p.Mood + " Vibes"
		plan.Description = "Mood-based discovery"
		if !ok {
			return plan, nil
		}
		for _, kw := range mood.FallbackKeywords {
			plan.Queries = append(plan.Queries, kw)
			if len(genres) > 0 {
				plan.Queries = append(plan.Queries, genres[0]+" "+kw)
			}
		}
		plan.Name = mood.Name + " Vibes"
		plan.Description = mood.Description
	case "":
		return plan, nil
	default:
		return Plan{}, fmt.Errorf("%w: unknown mode %q", shared.ErrInvalidArgument, p.Mode)
	}

	return plan, nil
}

func cleanGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
