package feed

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boxboxd/boxboxd/pkg/logging"
	"github.com/boxboxd/boxboxd/pkg/telemetry"
)

// PostSource returns the most recent reviews with text, newest first.
type PostSource interface {
	ListFeedCandidates(ctx context.Context, limit int) ([]Post, error)
}

// BlockSource returns the ids of users hidden from userID: the ones userID
// blocked and the ones who blocked userID.
type BlockSource interface {
	ListBlockedIDs(ctx context.Context, userID string) ([]string, error)
}

// Result is a ranked feed ready for display.
type Result struct {
	Posts        []Post
	DisplayNames map[string]string
}

// Service loads personal feeds.
type Service struct {
	posts    PostSource
	blocks   BlockSource
	ranker   *Ranker
	names    *NameResolver
	poolSize int
	metrics  *metrics
	logger   *zap.Logger
}

// NewService creates a feed service. poolSize <= 0 uses CandidatePoolSize.
func NewService(posts PostSource, blocks BlockSource, names *NameResolver, poolSize int) *Service {
	if poolSize <= 0 {
		poolSize = CandidatePoolSize
	}
	return &Service{
		posts:    posts,
		blocks:   blocks,
		ranker:   NewRanker(),
		names:    names,
		poolSize: poolSize,
		metrics:  newMetrics(),
		logger:   logging.WithComponent("feed-service"),
	}
}

// LoadFeed builds the feed for viewerID. An empty viewerID is an anonymous
// viewer with no block list. Store errors are returned; display name
// failures never are.
func (s *Service) LoadFeed(ctx context.Context, viewerID string) (*Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.load")
	defer span.End()
	span.SetAttributes(attribute.String("feed.viewer", viewerID))

	candidates, err := s.posts.ListFeedCandidates(ctx, s.poolSize)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load feed candidates: %w", err)
	}

	excluded := make(map[string]struct{})
	if viewerID != "" && s.blocks != nil {
		blocked, err := s.blocks.ListBlockedIDs(ctx, viewerID)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to load blocked users: %w", err)
		}
		for _, id := range blocked {
			excluded[id] = struct{}{}
		}
	}

	start := time.Now()
	posts := s.ranker.Rank(candidates, viewerID, excluded)
	took := time.Since(start)
	s.metrics.ranked(ctx, len(posts), took)

	span.SetAttributes(
		attribute.Int("feed.candidates", len(candidates)),
		attribute.Int("feed.excluded_authors", len(excluded)),
		attribute.Int("feed.posts", len(posts)),
	)
	s.logger.Debug("Feed ranked",
		zap.String("viewer", viewerID),
		zap.Int("candidates", len(candidates)),
		zap.Int("posts", len(posts)),
		zap.Duration("took", took),
	)

	names := map[string]string{}
	if s.names != nil {
		names = s.names.Resolve(ctx, posts)
	}

	return &Result{Posts: posts, DisplayNames: names}, nil
}
