package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boxboxd/boxboxd/internal/cache"
	"github.com/boxboxd/boxboxd/pkg/logging"
)

// Defaults for display name resolution.
const (
	DefaultLookupTimeout     = 5 * time.Second
	DefaultLookupConcurrency = 16
	DefaultDisplayNameTTL    = 10 * time.Minute
)

// ProfileSource looks up a user's display name.
type ProfileSource interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// NameResolver maps author ids to display names. Lookups run concurrently
// and every failure is logged and dropped.
type NameResolver struct {
	profiles    ProfileSource
	cache       *cache.Cache
	timeout     time.Duration
	concurrency int
	ttl         time.Duration
	metrics     *metrics
	logger      *zap.Logger
}

// NameResolverOption configures a NameResolver.
type NameResolverOption func(*NameResolver)

// WithLookupTimeout bounds every single profile lookup.
func WithLookupTimeout(d time.Duration) NameResolverOption {
	return func(r *NameResolver) { r.timeout = d }
}

// WithLookupConcurrency bounds the number of lookups in flight.
func WithLookupConcurrency(n int) NameResolverOption {
	return func(r *NameResolver) { r.concurrency = n }
}

// WithNameCache caches resolved names in Redis for ttl.
func WithNameCache(c *cache.Cache, ttl time.Duration) NameResolverOption {
	return func(r *NameResolver) {
		r.cache = c
		r.ttl = ttl
	}
}

// NewNameResolver creates a resolver backed by profiles.
func NewNameResolver(profiles ProfileSource, opts ...NameResolverOption) *NameResolver {
	r := &NameResolver{
		profiles:    profiles,
		timeout:     DefaultLookupTimeout,
		concurrency: DefaultLookupConcurrency,
		ttl:         DefaultDisplayNameTTL,
		metrics:     newMetrics(),
		logger:      logging.WithComponent("feed-names"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.concurrency <= 0 {
		r.concurrency = DefaultLookupConcurrency
	}
	if r.timeout <= 0 {
		r.timeout = DefaultLookupTimeout
	}
	return r
}

// Resolve returns display names for the distinct authors of posts. Authors
// whose lookup failed, timed out or returned an empty name are absent.
func (r *NameResolver) Resolve(ctx context.Context, posts []Post) map[string]string {
	ids := distinctAuthors(posts)
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			name, ok := r.lookup(ctx, id)
			if ok {
				mu.Lock()
				names[id] = name
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return names
}

func (r *NameResolver) lookup(ctx context.Context, userID string) (string, bool) {
	key := "display_name:" + userID

	var cached string
	if err := r.cache.GetJSON(ctx, key, &cached); err == nil && cached != "" {
		return cached, true
	} else if err != nil && !errors.Is(err, cache.ErrCacheDisabled) && !errors.Is(err, cache.ErrMiss) {
		r.logger.Debug("Display name cache read failed", zap.String("user_id", userID), zap.Error(err))
	}

	name, err := r.fetch(ctx, userID)
	if err != nil {
		r.metrics.lookupFailed(ctx)
		r.logger.Warn("Failed to resolve display name", zap.String("user_id", userID), zap.Error(err))
		return "", false
	}
	if name == "" {
		return "", false
	}

	if err := r.cache.SetJSON(ctx, key, name, r.ttl); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		r.logger.Debug("Display name cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return name, true
}

type lookupResult struct {
	name string
	err  error
}

// fetch returns once the lookup finishes or the timeout expires, whichever
// comes first, even if the profile source ignores its context.
func (r *NameResolver) fetch(ctx context.Context, userID string) (string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan lookupResult, 1)
	go func() {
		name, err := r.profiles.DisplayName(lookupCtx, userID)
		done <- lookupResult{name: name, err: err}
	}()

	select {
	case res := <-done:
		return res.name, res.err
	case <-lookupCtx.Done():
		return "", lookupCtx.Err()
	}
}

func distinctAuthors(posts []Post) []string {
	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if p.AuthorID == "" {
			continue
		}
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		ids = append(ids, p.AuthorID)
	}
	return ids
}
