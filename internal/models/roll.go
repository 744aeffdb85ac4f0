package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/rollplay/internal/shared"
)

// MaxRollGenres is the largest genre list a roll may be made over.
const MaxRollGenres = 6

// ValidDiceFaces lists the dice the roll screen offers.
var ValidDiceFaces = []int{3, 4, 6, 8, 12, 20}

// RollContext is one die roll over an ordered genre list. It is never mutated after creation.
type RollContext struct {
	Genres    []string
	DiceFaces int
	RollValue int
}

// NewRollContext validates and builds a [RollContext].
func NewRollContext(genres []string, diceFaces, rollValue int) (RollContext, error) {
	rc := RollContext{Genres: slices.Clone(genres), DiceFaces: diceFaces, RollValue: rollValue}
	if err := rc.Validate(); err != nil {
		return RollContext{}, err
	}
	return rc, nil
}

// Validate checks the genre list, the die and the roll value.
func (r RollContext) Validate() error {
	if len(r.Genres) == 0 {
		return fmt.Errorf("%w: at least one genre is required", shared.ErrInvalidArgument)
	}
	if len(r.Genres) > MaxRollGenres {
		return fmt.Errorf("%w: at most %d genres may be rolled, got %d", shared.ErrInvalidArgument, MaxRollGenres, len(r.Genres))
	}

	seen := make(map[string]struct{}, len(r.Genres))
	for _, g := range r.Genres {
		key := strings.ToLower(strings.TrimSpace(g))
		if key == "" {
			return fmt.Errorf("%w: genre names must not be blank", shared.ErrInvalidArgument)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate genre %q", shared.ErrInvalidArgument, g)
		}
		seen[key] = struct{}{}
	}

	if !slices.Contains(ValidDiceFaces, r.DiceFaces) {
		return fmt.Errorf("%w: unsupported die D%d", shared.ErrInvalidArgument, r.DiceFaces)
	}
	if r.RollValue < 1 || r.RollValue > r.DiceFaces {
		return fmt.Errorf("%w: roll %d outside [1, %d]", shared.ErrInvalidArgument, r.RollValue, r.DiceFaces)
	}
	return nil
}
