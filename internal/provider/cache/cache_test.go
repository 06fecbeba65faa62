package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockservice/internal/provider/cache"
	"stockservice/internal/stock"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 28, 12, 0, 0, 0, time.UTC)}
}

func TestCache_TTL(t *testing.T) {
	t.Parallel()

	// Arrange:
	clock := newClock()
	c := cache.New(60*time.Second, 0, clock.Now)
	rec := stock.StockRecord{CompanyCode: "AAPL", CompanyName: "Apple Inc."}

	// Act:
	c.Set("AAPL", rec)

	// Assert: hit before expiry, miss at expiry.
	got, ok := c.Get("AAPL")
	require.True(t, ok)
	require.Equal(t, rec, got)

	clock.Advance(59 * time.Second)
	_, ok = c.Get("AAPL")
	require.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("AAPL")
	require.False(t, ok)

	require.Equal(t, 1, c.Sweep())
	require.Zero(t, c.Len())
}

func TestCache_Disabled(t *testing.T) {
	t.Parallel()

	c := cache.New(0, 0, nil)
	c.Set("AAPL", stock.StockRecord{CompanyCode: "AAPL"})

	_, ok := c.Get("AAPL")
	require.False(t, ok)
	require.False(t, c.SetIfGeneration("AAPL", stock.StockRecord{}, c.Generation("AAPL")))
}

func TestCache_InvalidateBumpsGeneration(t *testing.T) {
	t.Parallel()

	// Arrange: a fetch reads the generation before a purchase lands.
	c := cache.New(time.Minute, 0, newClock().Now)
	gen := c.Generation("AAPL")

	// Act: the purchase invalidates, then the stale fetch tries to store.
	c.Invalidate("AAPL")
	stored := c.SetIfGeneration("AAPL", stock.StockRecord{CompanyCode: "AAPL"}, gen)

	// Assert:
	require.False(t, stored)
	_, ok := c.Get("AAPL")
	require.False(t, ok)

	require.True(t, c.SetIfGeneration("AAPL", stock.StockRecord{CompanyCode: "AAPL"}, c.Generation("AAPL")))
	_, ok = c.Get("AAPL")
	require.True(t, ok)
}

func TestCache_InvalidateOnlyTouchesSymbol(t *testing.T) {
	t.Parallel()

	c := cache.New(time.Minute, 0, newClock().Now)
	c.Set("AAPL", stock.StockRecord{CompanyCode: "AAPL"})
	c.Set("MSFT", stock.StockRecord{CompanyCode: "MSFT"})

	c.Invalidate("AAPL")

	_, ok := c.Get("AAPL")
	require.False(t, ok)
	_, ok = c.Get("MSFT")
	require.True(t, ok)
	require.Zero(t, c.Generation("MSFT"))
}

func TestCache_SweepForgetsGenerations(t *testing.T) {
	t.Parallel()

	// Arrange: purchases on symbols that are not cached.
	c := cache.New(time.Minute, 0, newClock().Now)
	stale := c.Generation("AAPL")
	for _, sym := range []string{"AAPL", "MSFT", "SONY"} {
		c.Invalidate(sym)
	}
	before := c.Generation("AAPL")
	c.Set("MSFT", stock.StockRecord{CompanyCode: "MSFT"})
	require.Equal(t, 3, c.Generations())

	// Act:
	c.Sweep()

	// Assert: only the cached symbol keeps its counter, and no generation
	// moved backwards.
	require.Equal(t, 1, c.Generations())
	require.GreaterOrEqual(t, c.Generation("AAPL"), before)
	require.False(t, c.SetIfGeneration("AAPL", stock.StockRecord{CompanyCode: "AAPL"}, stale))

	gen := c.Generation("AAPL")
	c.Invalidate("AAPL")
	require.Greater(t, c.Generation("AAPL"), gen)
	require.False(t, c.SetIfGeneration("AAPL", stock.StockRecord{CompanyCode: "AAPL"}, gen))
	require.True(t, c.SetIfGeneration("AAPL", stock.StockRecord{CompanyCode: "AAPL"}, c.Generation("AAPL")))
}

func TestCache_MaxItems(t *testing.T) {
	t.Parallel()

	// Arrange: an expired entry plus a full cache.
	clock := newClock()
	c := cache.New(time.Minute, 3, clock.Now)
	c.Set("OLD", stock.StockRecord{CompanyCode: "OLD"})
	clock.Advance(2 * time.Minute)
	c.Set("A", stock.StockRecord{CompanyCode: "A"})
	c.Set("B", stock.StockRecord{CompanyCode: "B"})

	// Act: one over the cap.
	c.Set("C", stock.StockRecord{CompanyCode: "C"})

	// Assert: the expired entry went first.
	require.Equal(t, 3, c.Len())
	for _, s := range []string{"A", "B", "C"} {
		_, ok := c.Get(s)
		require.Truef(t, ok, "symbol %s", s)
	}

	// Act: no expired entries left, the newest one must survive.
	c.Set("D", stock.StockRecord{CompanyCode: "D"})
	require.Equal(t, 3, c.Len())
	_, ok := c.Get("D")
	require.True(t, ok)
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.New(time.Minute, 50, nil)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 200 {
				sym := fmt.Sprintf("S%d", (i*j)%64)
				gen := c.Generation(sym)
				c.SetIfGeneration(sym, stock.StockRecord{CompanyCode: sym}, gen)
				c.Get(sym)
				if j%17 == 0 {
					c.Invalidate(sym)
				}
			}
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, c.Len(), 50)
}
