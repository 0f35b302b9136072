package feed

import (
	"context"
	"time"

	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/boxboxd/boxboxd/pkg/logging"
	"github.com/boxboxd/boxboxd/pkg/telemetry"
)

type metrics struct {
	feedsServed    otelmetric.Int64Counter
	postsRanked    otelmetric.Int64Counter
	lookupFailures otelmetric.Int64Counter
	rankDuration   otelmetric.Float64Histogram
}

func newMetrics() *metrics {
	meter := telemetry.Meter()
	logger := logging.WithComponent("feed-metrics")

	m := &metrics{}
	var err error

	if m.feedsServed, err = meter.Int64Counter("boxboxd.feed.served",
		otelmetric.WithDescription("Personal feeds returned")); err != nil {
		logger.Warn("Failed to create counter", zap.Error(err))
		m.feedsServed = noop.Int64Counter{}
	}
	if m.postsRanked, err = meter.Int64Counter("boxboxd.feed.posts_ranked",
		otelmetric.WithDescription("Posts returned by the ranker")); err != nil {
		logger.Warn("Failed to create counter", zap.Error(err))
		m.postsRanked = noop.Int64Counter{}
	}
	if m.lookupFailures, err = meter.Int64Counter("boxboxd.feed.profile_lookup_failures",
		otelmetric.WithDescription("Display name lookups that failed or timed out")); err != nil {
		logger.Warn("Failed to create counter", zap.Error(err))
		m.lookupFailures = noop.Int64Counter{}
	}
	if m.rankDuration, err = meter.Float64Histogram("boxboxd.feed.rank_duration",
		otelmetric.WithDescription("Time spent ranking one feed"),
		otelmetric.WithUnit("ms")); err != nil {
		logger.Warn("Failed to create histogram", zap.Error(err))
		m.rankDuration = noop.Float64Histogram{}
	}

	return m
}

func (m *metrics) ranked(ctx context.Context, posts int, took time.Duration) {
	m.feedsServed.Add(ctx, 1)
	m.postsRanked.Add(ctx, int64(posts))
	m.rankDuration.Record(ctx, float64(took.Microseconds())/1000)
}

func (m *metrics) lookupFailed(ctx context.Context) {
	m.lookupFailures.Add(ctx, 1)
}
