package analysis

import (
	"context"
	"fmt"
	"sort"
)

// DefaultRecommendationLimit bounds the result size unless overridden.
const DefaultRecommendationLimit = 10

// maxSeedTracks caps how many seed tracks are used for similarity lookup.
const maxSeedTracks = 5

// SimilaritySource returns tracks related to the given one, with
// similarity scores. An unknown track yields an empty slice, not an error.
type SimilaritySource interface {
	SimilarTracks(ctx context.Context, trackID string) ([]ScoredTrack, error)
}

// PopularitySource returns up to limit tracks ranked by popularity.
type PopularitySource interface {
	PopularTracks(ctx context.Context, limit int) ([]Track, error)
}

// Recommender resolves recommendations from seed tracks. When no
// similarity data exists for any seed it falls back to the popularity
// ranking; the two sources are never mixed in one result.
type Recommender struct {
	Similar SimilaritySource
	Popular PopularitySource
	Limit   int
}

// Recommend looks up similarity records for up to the first five seeds,
// merges the candidates sorted by score descending (ties to the lower
// track id), and truncates to the limit.
func (r *Recommender) Recommend(ctx context.Context, seeds []string) ([]Track, error) {
	limit := r.Limit
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	if len(seeds) > maxSeedTracks {
		seeds = seeds[:maxSeedTracks]
	}

	var candidates []ScoredTrack
	for _, seed := range seeds {
		similar, err := r.Similar.SimilarTracks(ctx, seed)
		if err != nil {
			return nil, fmt.Errorf("looking up similar tracks for %q: %w", seed, err)
		}
		candidates = append(candidates, similar...)
	}

	if len(candidates) == 0 {
		popular, err := r.Popular.PopularTracks(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("looking up popular tracks: %w", err)
		}
		if len(popular) > limit {
			popular = popular[:limit]
		}
		return popular, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Track.ID < candidates[j].Track.ID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	tracks := make([]Track, len(candidates))
	for i, c := range candidates {
		tracks[i] = c.Track
	}
	return tracks, nil
}
