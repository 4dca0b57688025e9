package feeds

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCachedNews_ServesCacheWhenBudgetSpent(t *testing.T) {
	ctx := context.Background()
	upstream := &stubNews{items: []RawNews{{TeamName: "Green Bay Packers", Relevance: 0.9}}}
	// Budget of one fetch per hour: the first call hits upstream, the
	// second must come out of the cache.
	c := NewCachedNews(upstream, 1, time.Hour)

	items, err := c.News(ctx, "nfl")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || upstream.calls != 1 {
		t.Fatalf("first fetch: %d items, %d upstream calls", len(items), upstream.calls)
	}

	items, err = c.News(ctx, "nfl")
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("second fetch err = %v, want ErrQuotaExhausted", err)
	}
	if len(items) != 1 {
		t.Errorf("second fetch: %d items, want the cached item", len(items))
	}
	if upstream.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", upstream.calls)
	}
}

func TestCachedNews_ClampsZeroBudget(t *testing.T) {
	ctx := context.Background()
	upstream := &stubNews{items: []RawNews{{TeamName: "Chicago Bears"}}}
	c := NewCachedNews(upstream, 0, 0)

	items, err := c.News(ctx, "nfl")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || upstream.calls != 1 {
		t.Errorf("fetch with clamped budget: %d items, %d calls", len(items), upstream.calls)
	}
}

func TestCachedNews_UpstreamQuotaMapsToCache(t *testing.T) {
	ctx := context.Background()
	upstream := &stubNews{err: ErrQuotaExhausted}
	c := NewCachedNews(upstream, 60, time.Hour)

	items, err := c.News(ctx, "nfl")
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("err = %v, want ErrQuotaExhausted", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %d, want empty cache", len(items))
	}
}

func TestCachedNews_TTLExpiresItems(t *testing.T) {
	ctx := context.Background()
	upstream := &stubNews{items: []RawNews{{TeamName: "Chicago Bears"}}}
	c := NewCachedNews(upstream, 1, time.Hour)

	clock := time.Date(2025, 12, 7, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	if _, err := c.News(ctx, "nfl"); err != nil {
		t.Fatal(err)
	}

	// Within the TTL the cached item is still served.
	clock = clock.Add(30 * time.Minute)
	items, err := c.News(ctx, "nfl")
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("err = %v, want ErrQuotaExhausted", err)
	}
	if len(items) != 1 {
		t.Errorf("within TTL: %d items, want 1", len(items))
	}

	// Past the TTL the item is dropped rather than trusted stale.
	clock = clock.Add(2 * time.Hour)
	if items := c.cached("nfl"); len(items) != 0 {
		t.Errorf("past TTL: %d items, want 0", len(items))
	}
}

func TestCachedNews_UpstreamErrorServesCache(t *testing.T) {
	ctx := context.Background()
	upstream := &stubNews{items: []RawNews{{TeamName: "Dallas Cowboys"}}}
	c := NewCachedNews(upstream, 60, time.Hour)

	if _, err := c.News(ctx, "nfl"); err != nil {
		t.Fatal(err)
	}

	upstream.err = errors.New("feed timeout")
	items, err := c.News(ctx, "nfl")
	if err == nil || errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("err = %v, want the upstream error propagated", err)
	}
	if len(items) != 1 {
		t.Errorf("items = %d, want cached item served alongside the error", len(items))
	}
}
