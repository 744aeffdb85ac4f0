package tasks

import (
	"context"

	"github.com/desertthunder/rollplay/internal/discovery"
	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// MaxAggregatedTracks caps the aggregated result.
	MaxAggregatedTracks = 40
	searchPageSize      = 10
	searchPages         = 3
)

// SearchAggregator runs a bounded set of paginated searches and merges the results.
type SearchAggregator struct {
	searcher Searcher
	limiter  *rate.Limiter
}

// NewSearchAggregator creates an aggregator. A positive rps limits outbound search requests per second.
func NewSearchAggregator(searcher Searcher, rps float64) *SearchAggregator {
	a := &SearchAggregator{searcher: searcher}
	if rps > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return a
}

// Aggregate searches the first [discovery.MaxQueries] queries, three pages each, and returns
// at most [MaxAggregatedTracks] tracks with no repeated id, in first-seen order. total counts
// the unique tracks collected before truncation; the last page is kept whole, so it can exceed
// the cap by up to one page.
//
// Tracks without an id or uri are dropped.
//
// With no queries the generic [discovery.FallbackQueries] are searched. A query whose page
// fails is logged and abandoned; the rest continue. Only cancellation of ctx is returned as an
// error, together with the tracks collected so far.
func (a *SearchAggregator) Aggregate(ctx context.Context, token string, queries []string) (tracks []models.Track, total int, err error) {
	logger := shared.LoggerFrom(ctx)

	if len(queries) == 0 {
		queries = discovery.FallbackQueries
	}
	queries = queries[:min(len(queries), discovery.MaxQueries)]

	seen := make(map[string]struct{})
	tracks = make([]models.Track, 0, MaxAggregatedTracks)

	for _, query := range queries {
		for page := range searchPages {
			if a.limiter != nil {
				if err := a.limiter.Wait(ctx); err != nil {
					return tracks, len(tracks), err
				}
			}

			results, err := a.searcher.SearchTracks(ctx, token, query, searchPageSize, page*searchPageSize)
			if err != nil {
				if ctx.Err() != nil {
					return tracks, len(tracks), ctx.Err()
				}
				logger.Warn("search failed, skipping query", "query", query, "offset", page*searchPageSize, "err", err)
				break
			}

			for _, t := range results {
				if t.ID == "" || t.URI == "" {
					continue
				}
				if _, dup := seen[t.ID]; dup {
					continue
				}
				seen[t.ID] = struct{}{}
				tracks = append(tracks, t)
			}

			if len(tracks) >= MaxAggregatedTracks {
				break
			}
		}

		if len(tracks) >= MaxAggregatedTracks {
			break
		}
	}

	total = len(tracks)
	if total > MaxAggregatedTracks {
		tracks = tracks[:MaxAggregatedTracks]
	}

	logger.Debug("search aggregated", "queries", len(queries), "tracks", len(tracks), "total", total)
	return tracks, total, nil
}
