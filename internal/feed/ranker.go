// Package feed builds the personal community feed: it ranks a pool of
// recent reviews for one viewer and resolves the authors' display names.
package feed

import (
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/boxboxd/boxboxd/pkg/logging"
)

const (
	// TargetSize is the maximum number of posts returned by one ranking pass.
	TargetSize = 100
	// AuthorCap is the maximum number of posts per author during primary fill.
	AuthorCap = 3
	// CandidatePoolSize is how many recent posts callers should hand to Rank.
	CandidatePoolSize = 1000

	// LikeWeight is the score contributed by each like.
	LikeWeight = 5
	// RatingWeight is the score contributed by each rating point.
	RatingWeight = 3
	// RecencyWindowDays is the age after which a post gets no recency bonus.
	// A fresh post gets one point per day left in the window.
	RecencyWindowDays = 30
	// RandomWeight scales the random draw. It dominates the other terms on
	// purpose so that the feed changes on every load.
	RandomWeight = 500

	maxRating = 5
	msPerDay  = 86_400_000
)

// Post is a review as seen by the ranker.
type Post struct {
	ID        string
	AuthorID  string
	Username  string
	RaceName  string
	LikeCount int
	Rating    int
	Body      string
	CreatedAt time.Time
}

type scoredCandidate struct {
	post  Post
	score float64
}

// Ranker turns a pool of candidate posts into a bounded, author-diverse and
// shuffled feed. It holds no state between calls.
type Ranker struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewRanker creates a ranker using the wall clock.
func NewRanker() *Ranker {
	return &Ranker{
		now:    time.Now,
		logger: logging.WithComponent("feed-ranker"),
	}
}

// Rank selects and orders at most TargetSize posts from candidates for
// viewerID. The viewer's own posts, posts by excluded authors and posts with
// a blank body are dropped. Each call is seeded from the current time in
// milliseconds, so identical input yields a different feed on each call.
func (r *Ranker) Rank(candidates []Post, viewerID string, excluded map[string]struct{}) []Post {
	now := r.now()
	return r.rank(candidates, viewerID, excluded, now, NewGenerator(now.UnixMilli()))
}

func (r *Ranker) rank(candidates []Post, viewerID string, excluded map[string]struct{}, now time.Time, gen *Generator) []Post {
	eligible := r.filter(candidates, viewerID, excluded, now)

	scored := make([]scoredCandidate, len(eligible))
	for i, p := range eligible {
		scored[i] = scoredCandidate{post: p, score: Score(p, now, gen.Next())}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	result := make([]Post, 0, min(TargetSize, len(scored)))
	included := make(map[string]struct{}, cap(result))
	perAuthor := make(map[string]int)

	// Primary fill: best scores first, at most AuthorCap posts per author.
	for _, c := range scored {
		if len(result) >= TargetSize {
			break
		}
		if perAuthor[c.post.AuthorID] >= AuthorCap {
			continue
		}
		perAuthor[c.post.AuthorID]++
		included[c.post.ID] = struct{}{}
		result = append(result, c.post)
	}

	// Backfill ignores the cap so a small or concentrated pool still fills
	// the feed.
	if len(result) < TargetSize && len(result) < len(scored) {
		for _, c := range scored {
			if len(result) >= TargetSize {
				break
			}
			if _, ok := included[c.post.ID]; ok {
				continue
			}
			included[c.post.ID] = struct{}{}
			result = append(result, c.post)
		}
	}

	shuffle(result, gen)

	if len(result) > TargetSize {
		result = result[:TargetSize]
	}
	return result
}

// filter applies the eligibility rules and repairs malformed records.
func (r *Ranker) filter(candidates []Post, viewerID string, excluded map[string]struct{}, now time.Time) []Post {
	eligible := make([]Post, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))

	for _, p := range candidates {
		if p.AuthorID == viewerID {
			continue
		}
		if _, ok := excluded[p.AuthorID]; ok {
			continue
		}
		if strings.TrimSpace(p.Body) == "" {
			continue
		}
		if p.ID == "" {
			r.logger.Warn("Skipping post without id", zap.String("author_id", p.AuthorID))
			continue
		}
		if _, ok := seen[p.ID]; ok {
			r.logger.Warn("Skipping duplicate post", zap.String("post_id", p.ID))
			continue
		}
		seen[p.ID] = struct{}{}
		eligible = append(eligible, r.sanitize(p, now))
	}
	return eligible
}

// sanitize replaces missing or out-of-range fields with neutral values.
func (r *Ranker) sanitize(p Post, now time.Time) Post {
	if p.CreatedAt.IsZero() {
		r.logger.Warn("Post has no creation time, scoring as new", zap.String("post_id", p.ID))
		p.CreatedAt = now
	}
	if p.LikeCount < 0 {
		r.logger.Warn("Post has negative like count", zap.String("post_id", p.ID), zap.Int("like_count", p.LikeCount))
		p.LikeCount = 0
	}
	if p.Rating < 0 || p.Rating > maxRating {
		r.logger.Warn("Post rating out of range", zap.String("post_id", p.ID), zap.Int("rating", p.Rating))
		p.Rating = max(0, min(p.Rating, maxRating))
	}
	return p
}

// Score computes the ranking score of p at time now for a random draw in [0, 1).
func Score(p Post, now time.Time, draw float64) float64 {
	engagement := float64(p.LikeCount * LikeWeight)
	rating := float64(p.Rating * RatingWeight)
	ageDays := float64(now.UnixMilli()-p.CreatedAt.UnixMilli()) / msPerDay
	recency := math.Max(0, RecencyWindowDays-ageDays)
	random := draw * RandomWeight
	return engagement + rating + recency + random
}

// shuffle reorders posts with a comparator that flips a coin on every
// comparison. The comparator is not a consistent ordering, so this is a weak
// shuffle and not a uniform permutation; callers only rely on the order
// being very likely different between passes.
func shuffle(posts []Post, gen *Generator) {
	sort.Slice(posts, func(i, j int) bool {
		return gen.Next()-0.5 < 0
	})
}

// Rank ranks candidates with a fresh Ranker.
func Rank(candidates []Post, viewerID string, excluded map[string]struct{}) []Post {
	return NewRanker().Rank(candidates, viewerID, excluded)
}
