package feeds

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wagerlab/linehawk/pkg/league"
)

// CachedNews wraps a NewsProvider with a local rate limiter and a fixed
// TTL cache. Breaking-news items are near-real-time signals: trusted for
// the TTL, then excluded rather than trusted indefinitely. When the local
// limiter or the upstream quota refuses a fetch, the cache degrades to
// whatever unexpired items it holds and reports ErrQuotaExhausted.
type CachedNews struct {
	upstream NewsProvider
	limiter  *rate.Limiter
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	items     map[league.League][]cachedItem
	fetchedAt map[league.League]time.Time
}

type cachedItem struct {
	item     RawNews
	cachedAt time.Time
}

// NewCachedNews wraps upstream with a per-interval fetch budget and the
// given cache TTL.
func NewCachedNews(upstream NewsProvider, fetchesPerHour int, ttl time.Duration) *CachedNews {
	if fetchesPerHour <= 0 {
		fetchesPerHour = 12
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedNews{
		upstream:  upstream,
		limiter:   rate.NewLimiter(rate.Every(time.Hour/time.Duration(fetchesPerHour)), fetchesPerHour),
		ttl:       ttl,
		now:       time.Now,
		items:     make(map[league.League][]cachedItem),
		fetchedAt: make(map[league.League]time.Time),
	}
}

// News returns fresh items when the budget allows, cached unexpired items
// plus ErrQuotaExhausted when it does not.
func (c *CachedNews) News(ctx context.Context, lg league.League) ([]RawNews, error) {
	if !c.limiter.Allow() {
		return c.cached(lg), ErrQuotaExhausted
	}

	items, err := c.upstream.News(ctx, lg)
	if errors.Is(err, ErrQuotaExhausted) {
		return c.cached(lg), ErrQuotaExhausted
	}
	if err != nil {
		// Upstream failure is not quota exhaustion; serve the cache but
		// propagate the error so the caller can log it.
		return c.cached(lg), err
	}

	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	cached := make([]cachedItem, 0, len(items))
	for _, it := range items {
		cached = append(cached, cachedItem{item: it, cachedAt: now})
	}
	c.items[lg] = cached
	c.fetchedAt[lg] = now
	return items, nil
}

// cached returns unexpired items and drops the rest.
func (c *CachedNews) cached(lg league.League) []RawNews {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[lg][:0]
	var out []RawNews
	for _, ci := range c.items[lg] {
		if now.Sub(ci.cachedAt) > c.ttl {
			continue
		}
		kept = append(kept, ci)
		out = append(out, ci.item)
	}
	c.items[lg] = kept
	return out
}
