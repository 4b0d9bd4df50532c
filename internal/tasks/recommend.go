package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/services"
	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/samber/lo"
)

const (
	DefaultRecommendationCount = 6
	DefaultCandidateMargin     = 5
)

// RecommenderOpts configures a [Recommender]. A zero Count or nil Margin uses the default.
type RecommenderOpts struct {
	Count         int  // results per seed
	Margin        *int // extra candidates requested so seen and unresolvable ones can be skipped; 0 is honoured
	RememberShown bool // also add recommended ids to the seen-set
	Logger        *log.Logger
}

// Recommender assembles a page of similar tracks for a seed.
type Recommender struct {
	similar       services.SimilarityProvider
	count         int
	margin        int
	rememberShown bool
	logger        *log.Logger
}

// NewRecommender creates a Recommender backed by the similarity provider.
func NewRecommender(similar services.SimilarityProvider, opts RecommenderOpts) *Recommender {
	if opts.Count <= 0 {
		opts.Count = DefaultRecommendationCount
	}
	margin := DefaultCandidateMargin
	if opts.Margin != nil {
		margin = max(*opts.Margin, 0)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Recommender{
		similar:       similar,
		count:         opts.Count,
		margin:        margin,
		rememberShown: opts.RememberShown,
		logger:        shared.WithLogger(opts.Logger, "task", "recommend"),
	}
}

// Recommend returns up to Count tracks similar to seedID, none of which are in seen.
//
// The returned seen-set always has seedID added, including when an error is returned, so the caller can store it either way.
// Upstream failures discard any partial result.
func (r *Recommender) Recommend(ctx context.Context, catalog services.Catalog, seedID string, seen models.SeenSet) (*models.Recommendation, models.SeenSet, error) {
	seedID = strings.TrimSpace(seedID)
	if seedID == "" {
		return nil, seen, fmt.Errorf("%w: seed track id is required", shared.ErrInvalidInput)
	}

	seen = seen.Add(seedID)

	seed, err := catalog.Track(ctx, seedID)
	if err != nil {
		return nil, seen, apiError(err, "failed to fetch seed %s", seedID)
	}

	limit := r.count + len(seen) + r.margin
	candidates, err := r.similar.SimilarTracks(ctx, seed.Artist(), seed.Name, limit)
	if err != nil {
		return nil, seen, fmt.Errorf("failed to fetch similar tracks for %s: %w", seed.Name, err)
	}

	picked := make([]models.Track, 0, r.count)
	for _, c := range candidates {
		if len(picked) == r.count {
			break
		}

		track, err := ResolveTrack(ctx, catalog, c.Title, c.Artist)
		if err != nil {
			return nil, seen, err
		}
		if track == nil {
			r.logger.Debug("unresolved candidate", "candidate", c.String())
			continue
		}
		if seen.Contains(track.ID) || lo.ContainsBy(picked, func(t models.Track) bool { return t.ID == track.ID }) {
			continue
		}
		picked = append(picked, *track)
	}

	if r.rememberShown {
		seen = seen.Merge(lo.Map(picked, func(t models.Track, _ int) string { return t.ID })...)
	}

	r.logger.Info("recommendations", "seed", seedID, "candidates", len(candidates), "results", len(picked), "seen", len(seen))
	return &models.Recommendation{Seed: *seed, Tracks: picked}, seen, nil
}
