// package discovery turns a discovery mode (dice roll, country, mood) into catalog search queries
// and a playlist name.
package discovery

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
)

// exoticThreshold is the fraction of the die above which a roll is considered exotic.
const exoticThreshold = 0.7

var (
	varietyKeywords = []string{"new", "popular", "best", "top", "trending"}
	exoticKeywords  = []string{"underground", "experimental", "rare", "unique", "obscure"}
)

// DiceFaces returns the die used for genreCount genres.
//
//	1-3 → D3, 4-6 → D6, 7-8 → D8, 9-12 → D12, otherwise D20
func DiceFaces(genreCount int) int {
	switch {
	case genreCount <= 3:
		return 3
	case genreCount <= 6:
		return 6
	case genreCount <= 8:
		return 8
	case genreCount <= 12:
		return 12
	default:
		return 20
	}
}

// Roll draws a value uniformly from [1, faces].
func Roll(faces int) int {
	if faces < 1 {
		return 1
	}
	return rand.IntN(faces) + 1
}

// SelectIndex maps a roll to the index of exactly one genre.
//
// The die's faces are split evenly across the genres; the result is clamped to the last genre.
func SelectIndex(genreCount, diceFaces, rollValue int) (int, error) {
	if genreCount <= 0 {
		return 0, fmt.Errorf("%w: cannot select from an empty genre list", shared.ErrInvalidArgument)
	}
	if diceFaces <= 0 {
		return 0, fmt.Errorf("%w: die must have at least one face", shared.ErrInvalidArgument)
	}

	facesPerGenre := float64(diceFaces) / float64(genreCount)
	idx := int(math.Floor(float64(rollValue-1) / facesPerGenre))
	return max(0, min(idx, genreCount-1)), nil
}

// SelectGenre returns the genre a roll lands on.
func SelectGenre(genres []string, diceFaces, rollValue int) (string, error) {
	idx, err := SelectIndex(len(genres), diceFaces, rollValue)
	if err != nil {
		return "", err
	}
	return genres[idx], nil
}

// IsExotic reports whether a roll is high enough to switch to the exotic keyword set.
func IsExotic(rollValue, diceFaces int) bool {
	return float64(rollValue) > float64(diceFaces)*exoticThreshold
}

// Keywords returns the keyword set used to vary query text for a roll.
func Keywords(exotic bool) []string {
	if exotic {
		return exoticKeywords
	}
	return varietyKeywords
}

// RollResult is a resolved roll: the chosen genre and the queries it seeds.
type RollResult struct {
	Context models.RollContext
	Index   int
	Genre   string
	Exotic  bool
	Queries []string
}

// ResolveRoll selects the genre for rc and builds its five search queries: the bare genre followed
// by the genre combined with the first four keywords of the chosen set.
func ResolveRoll(rc models.RollContext) (RollResult, error) {
	idx, err := SelectIndex(len(rc.Genres), rc.DiceFaces, rc.RollValue)
	if err != nil {
		return RollResult{}, err
	}

	genre := rc.Genres[idx]
	exotic := IsExotic(rc.RollValue, rc.DiceFaces)
	keywords := Keywords(exotic)

	queries := []string{genre}
	for _, kw := range keywords[:4] {
		queries = append(queries, genre+" "+kw)
	}

	return RollResult{Context: rc, Index: idx, Genre: genre, Exotic: exotic, Queries: queries}, nil
}
