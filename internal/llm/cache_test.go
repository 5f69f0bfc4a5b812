package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newTestCache returns a cache on a fixed clock the test can advance.
func newTestCache(cfg CacheConfig) (*ResponseCache, *time.Time) {
	c := NewResponseCache(cfg)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestCache_MissThenHit(t *testing.T) {
	c, _ := newTestCache(CacheConfig{TTL: time.Hour, Capacity: 8})
	fp := NewFingerprint(map[string]string{"topic": "addition"})

	computes := 0
	compute := func(context.Context) (json.RawMessage, error) {
		computes++
		return json.RawMessage(`{"q":"2+3"}`), nil
	}

	first, err := c.GetOrCompute(context.Background(), fp, compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.GetOrCompute(context.Background(), fp, compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if computes != 1 {
		t.Fatalf("expected 1 compute, got %d", computes)
	}
	if string(first) != string(second) {
		t.Fatalf("cached content differs: %s vs %s", first, second)
	}
}

func TestCache_TTLExpiryRecomputes(t *testing.T) {
	c, clock := newTestCache(CacheConfig{TTL: time.Hour, Capacity: 8})
	fp := NewFingerprint(map[string]string{"topic": "fractions"})

	computes := 0
	compute := func(context.Context) (json.RawMessage, error) {
		computes++
		return json.RawMessage(`{"n":1}`), nil
	}

	if _, err := c.GetOrCompute(context.Background(), fp, compute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*clock = clock.Add(2 * time.Hour)

	if _, ok := c.Lookup(fp); ok {
		t.Fatal("expected expired entry to miss")
	}
	if _, ok := c.Stale(fp); !ok {
		t.Fatal("expected expired entry to remain readable via Stale")
	}

	if _, err := c.GetOrCompute(context.Background(), fp, compute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if computes != 2 {
		t.Fatalf("expected recompute after expiry, got %d computes", computes)
	}
}

func TestCache_ComputeErrorNotCached(t *testing.T) {
	c, _ := newTestCache(CacheConfig{TTL: time.Hour, Capacity: 8})
	fp := NewFingerprint(map[string]string{"topic": "division"})

	computes := 0
	boom := errors.New("provider down")
	failing := func(context.Context) (json.RawMessage, error) {
		computes++
		return nil, boom
	}

	if _, err := c.GetOrCompute(context.Background(), fp, failing); !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if _, err := c.GetOrCompute(context.Background(), fp, failing); !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if computes != 2 {
		t.Fatalf("expected errors to bypass the cache, got %d computes", computes)
	}
	if _, ok := c.Stale(fp); ok {
		t.Fatal("expected nothing cached after compute errors")
	}
}

func TestCache_SingleflightCollapsesConcurrentMisses(t *testing.T) {
	c := NewResponseCache(CacheConfig{TTL: time.Hour, Capacity: 8})
	fp := NewFingerprint(map[string]string{"topic": "decimals"})

	var computes atomic.Int32
	compute := func(context.Context) (json.RawMessage, error) {
		computes.Add(1)
		time.Sleep(20 * time.Millisecond)
		return json.RawMessage(`{"shared":true}`), nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]json.RawMessage, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			content, err := c.GetOrCompute(context.Background(), fp, compute)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = content
		}()
	}
	wg.Wait()

	if n := computes.Load(); n != 1 {
		t.Fatalf("expected concurrent misses to share 1 compute, got %d", n)
	}
	for i, content := range results {
		if string(content) != `{"shared":true}` {
			t.Fatalf("worker %d got unexpected content: %s", i, content)
		}
	}
}

func TestCache_CapacityEvictsOldest(t *testing.T) {
	c, clock := newTestCache(CacheConfig{TTL: 24 * time.Hour, Capacity: 2})

	put := func(topic, content string) Fingerprint {
		fp := NewFingerprint(map[string]string{"topic": topic})
		_, err := c.GetOrCompute(context.Background(), fp, func(context.Context) (json.RawMessage, error) {
			return json.RawMessage(content), nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		*clock = clock.Add(time.Minute)
		return fp
	}

	first := put("counting", `{"n":1}`)
	second := put("addition", `{"n":2}`)
	third := put("subtraction", `{"n":3}`)

	if _, ok := c.Stale(first); ok {
		t.Fatal("expected oldest entry evicted")
	}
	if _, ok := c.Stale(second); !ok {
		t.Fatal("expected second entry retained")
	}
	if _, ok := c.Stale(third); !ok {
		t.Fatal("expected newest entry retained")
	}

	stats := c.Stats()
	if stats.Size != 2 {
		t.Fatalf("expected size 2, got %d", stats.Size)
	}
	if stats.Evictions != 1 {
		t.Fatalf("expected 1 eviction, got %d", stats.Evictions)
	}
}

func TestCache_StatsCounters(t *testing.T) {
	c, _ := newTestCache(CacheConfig{TTL: time.Hour, Capacity: 8})
	fp := NewFingerprint(map[string]string{"topic": "algebra"})

	if _, ok := c.Lookup(fp); ok {
		t.Fatal("expected miss on empty cache")
	}

	_, err := c.GetOrCompute(context.Background(), fp, func(context.Context) (json.RawMessage, error) {
		return json.RawMessage(`{}`), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := c.Lookup(fp); !ok {
		t.Fatal("expected hit after compute")
	}

	stats := c.Stats()
	if stats.Hits != 1 {
		t.Fatalf("expected 1 hit, got %d", stats.Hits)
	}
	// The empty-cache Lookup plus GetOrCompute's internal miss.
	if stats.Misses != 2 {
		t.Fatalf("expected 2 misses, got %d", stats.Misses)
	}
}

func TestCache_NilReceiverComputesDirectly(t *testing.T) {
	var c *ResponseCache
	fp := NewFingerprint(map[string]string{"topic": "counting"})

	computes := 0
	content, err := c.GetOrCompute(context.Background(), fp, func(context.Context) (json.RawMessage, error) {
		computes++
		return json.RawMessage(`{"direct":true}`), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(content) != `{"direct":true}` {
		t.Fatalf("unexpected content: %s", content)
	}
	if computes != 1 {
		t.Fatalf("expected direct compute, got %d", computes)
	}

	if _, ok := c.Lookup(fp); ok {
		t.Fatal("expected nil cache to miss")
	}
	if _, ok := c.Stale(fp); ok {
		t.Fatal("expected nil cache to have no stale entries")
	}
	if stats := c.Stats(); stats != (CacheStats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
