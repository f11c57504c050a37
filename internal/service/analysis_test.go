package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang-finance/config"
	"golang-finance/internal/dto"
	"golang-finance/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedEntry struct {
	analysis  dto.StockAnalysis
	expiresAt time.Time
}

// fakeCacheRepo is an in-memory stand-in for the DB-backed cache store.
type fakeCacheRepo struct {
	mu      sync.Mutex
	entries map[string]cachedEntry
	puts    int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: make(map[string]cachedEntry)}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string) (*dto.StockAnalysis, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !time.Now().Before(entry.expiresAt) {
		delete(f.entries, key)
		return nil, false, nil
	}
	analysis := entry.analysis
	return &analysis, true, nil
}

func (f *fakeCacheRepo) Put(ctx context.Context, key string, analysis *dto.StockAnalysis, prompt string, demoMode bool, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[key] = cachedEntry{analysis: *analysis, expiresAt: time.Now().Add(ttl)}
	f.puts++
	return nil
}

func (f *fakeCacheRepo) Invalidate(ctx context.Context, market, ticker string, timeframe *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if timeframe != nil {
		delete(f.entries, dto.AnalysisCacheKey(market, ticker, *timeframe))
		return nil
	}
	prefix := dto.AnalysisCachePrefix(market, ticker)
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
	return nil
}

func (f *fakeCacheRepo) SweepExpired(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeCacheRepo) Stats(ctx context.Context) (*dto.AnalysisStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dto.AnalysisStats{TotalCacheEntries: int64(len(f.entries))}, nil
}

func (f *fakeCacheRepo) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

// fakeGenerator records invocation order and overlap.
type fakeGenerator struct {
	mu        sync.Mutex
	order     []string
	active    int
	maxActive int
	fail      map[string]error
}

func (f *fakeGenerator) Generate(ctx context.Context, market, ticker, timeframe string) (*dto.StockAnalysis, string, error) {
	f.mu.Lock()
	f.order = append(f.order, ticker)
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	failErr := f.fail[ticker]
	f.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	f.mu.Lock()
	f.active--
	f.mu.Unlock()

	if failErr != nil {
		return nil, "", failErr
	}
	return GenerateMockAnalysis(ticker, market, timeframe), "", nil
}

// cancelAwareGenerator fails if the context it is handed dies before a
// short simulated generation finishes.
type cancelAwareGenerator struct {
	entered chan struct{}
}

func (g *cancelAwareGenerator) Generate(ctx context.Context, market, ticker, timeframe string) (*dto.StockAnalysis, string, error) {
	close(g.entered)
	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case <-time.After(20 * time.Millisecond):
	}
	return GenerateMockAnalysis(ticker, market, timeframe), "", nil
}

type fakeMemCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newFakeMemCache() *fakeMemCache {
	return &fakeMemCache{items: make(map[string]interface{})}
}

func (f *fakeMemCache) Set(key string, value interface{}, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
}

func (f *fakeMemCache) Get(key string) (interface{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.items[key]
	return value, ok
}

func (f *fakeMemCache) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
}

func (f *fakeMemCache) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make(map[string]interface{})
}

func serviceConfig() *config.Config {
	return &config.Config{
		Analysis: config.Analysis{
			CacheTTLHours: 1,
			BulkItemDelay: time.Millisecond,
		},
		Cache: config.Cache{DefaultExpiration: time.Minute},
	}
}

func TestGetOrCreate_MissThenHit(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	generator := &fakeGenerator{}
	svc := NewAnalysisService(serviceConfig(), logger.NewNop(), cacheRepo, generator, newFakeMemCache())

	first, err := svc.GetOrCreate(context.Background(), dto.MarketUS, "AAPL", dto.Timeframe3M)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.True(t, first.DemoMode, "no credential configured means demo mode")

	// The cache write is fire-and-forget; wait for it to land.
	require.Eventually(t, func() bool {
		return cacheRepo.putCount() == 1
	}, time.Second, 5*time.Millisecond)

	second, err := svc.GetOrCreate(context.Background(), dto.MarketUS, "AAPL", dto.Timeframe3M)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Analysis, second.Analysis)
	assert.Equal(t, 1, len(generator.order), "cache hit must not trigger generation")
}

func TestGetOrCreate_ExpiredEntryRegenerates(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	generator := &fakeGenerator{}
	svc := NewAnalysisService(serviceConfig(), logger.NewNop(), cacheRepo, generator, newFakeMemCache())

	ctx := context.Background()
	stale := GenerateMockAnalysis("AAPL", dto.MarketUS, dto.Timeframe3M)
	key := dto.AnalysisCacheKey(dto.MarketUS, "AAPL", dto.Timeframe3M)
	require.NoError(t, cacheRepo.Put(ctx, key, stale, "", true, -time.Second))

	result, err := svc.GetOrCreate(ctx, dto.MarketUS, "AAPL", dto.Timeframe3M)
	require.NoError(t, err)
	assert.False(t, result.Cached, "an elapsed TTL must read as a miss")
	assert.Equal(t, 1, len(generator.order), "the expired entry must be regenerated")

	// The fresh result replaces the stale entry.
	require.Eventually(t, func() bool {
		return cacheRepo.putCount() == 2
	}, time.Second, 5*time.Millisecond)
	_, found, err := cacheRepo.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestGetOrCreate_ZeroTTLNeverServesFromCache(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	generator := &fakeGenerator{}
	cfg := serviceConfig()
	cfg.Analysis.CacheTTLHours = 0
	svc := NewAnalysisService(cfg, logger.NewNop(), cacheRepo, generator, newFakeMemCache())

	ctx := context.Background()
	first, err := svc.GetOrCreate(ctx, dto.MarketUS, "AAPL", dto.Timeframe3M)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.Eventually(t, func() bool {
		return cacheRepo.putCount() == 1
	}, time.Second, 5*time.Millisecond)

	second, err := svc.GetOrCreate(ctx, dto.MarketUS, "AAPL", dto.Timeframe3M)
	require.NoError(t, err)
	assert.False(t, second.Cached, "a zero TTL entry expires the moment it is written")
	assert.Equal(t, 2, len(generator.order))
}

func TestGetOrCreate_CallerCancelDoesNotAbortFlight(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	generator := &cancelAwareGenerator{entered: make(chan struct{})}
	svc := NewAnalysisService(serviceConfig(), logger.NewNop(), cacheRepo, generator, newFakeMemCache())

	ctx, cancel := context.WithCancel(context.Background())
	type outcome struct {
		result *dto.AnalysisResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := svc.GetOrCreate(ctx, dto.MarketUS, "AAPL", dto.Timeframe3M)
		done <- outcome{result: result, err: err}
	}()

	// Disconnect the initiating caller mid-generation; the shared flight
	// must still complete for anyone coalesced onto it.
	<-generator.entered
	cancel()

	out := <-done
	require.NoError(t, out.err)
	require.NotNil(t, out.result)
	assert.False(t, out.result.Cached)
}

func TestGetOrCreate_GenerationFailurePropagates(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	generationErr := &GenerationError{Kind: GenerationExhausted, Err: errors.New("timeout")}
	generator := &fakeGenerator{fail: map[string]error{"AAPL": generationErr}}
	svc := NewAnalysisService(serviceConfig(), logger.NewNop(), cacheRepo, generator, newFakeMemCache())

	result, err := svc.GetOrCreate(context.Background(), dto.MarketUS, "AAPL", dto.Timeframe3M)

	assert.Nil(t, result)
	var gotErr *GenerationError
	require.ErrorAs(t, err, &gotErr)
	assert.Equal(t, GenerationExhausted, gotErr.Kind)
	assert.Equal(t, 0, cacheRepo.putCount(), "failed generations are never cached")
}

func TestGetOrCreateBulk_SequentialAndPartialFailure(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	invalidErr := &GenerationError{Kind: GenerationInvalidResponse, Err: errors.New("risk_level out of set")}
	generator := &fakeGenerator{fail: map[string]error{"GARAN": invalidErr}}
	svc := NewAnalysisService(serviceConfig(), logger.NewNop(), cacheRepo, generator, newFakeMemCache())

	items := []dto.AnalyzeStockRequest{
		{Market: dto.MarketBIST, Ticker: "THYAO", Timeframe: dto.Timeframe1M},
		{Market: dto.MarketBIST, Ticker: "GARAN", Timeframe: dto.Timeframe1M},
		{Market: dto.MarketBIST, Ticker: "ASELS", Timeframe: dto.Timeframe1M},
	}
	results := svc.GetOrCreateBulk(context.Background(), items)

	require.Len(t, results, 3, "one failure must not abort the batch")
	assert.NotNil(t, results[0].Result)
	assert.Empty(t, results[0].Error)
	assert.Nil(t, results[1].Result)
	assert.NotEmpty(t, results[1].Error)
	assert.NotNil(t, results[2].Result)

	assert.Equal(t, []string{"THYAO", "GARAN", "ASELS"}, generator.order)
	assert.Equal(t, 1, generator.maxActive, "bulk generation must be strictly sequential")
}

func TestGetOrCreateBulk_OverflowItemsRejectedNotDropped(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	generator := &fakeGenerator{}
	svc := NewAnalysisService(serviceConfig(), logger.NewNop(), cacheRepo, generator, newFakeMemCache())

	tickers := []string{"T0", "T1", "T2", "T3", "T4", "T5", "T6", "T7", "T8", "T9", "T10", "T11"}
	items := make([]dto.AnalyzeStockRequest, 0, len(tickers))
	for _, ticker := range tickers {
		items = append(items, dto.AnalyzeStockRequest{Market: dto.MarketUS, Ticker: ticker, Timeframe: dto.Timeframe1M})
	}
	results := svc.GetOrCreateBulk(context.Background(), items)

	require.Len(t, results, len(tickers), "every submitted item gets a result")
	for _, result := range results[:maxBulkItems] {
		assert.NotNil(t, result.Result)
		assert.Empty(t, result.Error)
	}
	for _, result := range results[maxBulkItems:] {
		assert.Nil(t, result.Result)
		assert.Contains(t, result.Error, "limited to 10 items")
	}
	assert.Len(t, generator.order, maxBulkItems, "overflow items never reach the generator")
}

func TestTrending_ServesOnlyCachedEntries(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	generator := &fakeGenerator{}
	svc := NewAnalysisService(serviceConfig(), logger.NewNop(), cacheRepo, generator, newFakeMemCache())

	analysis := GenerateMockAnalysis("AAPL", dto.MarketUS, dto.Timeframe3M)
	key := dto.AnalysisCacheKey(dto.MarketUS, "AAPL", dto.Timeframe3M)
	require.NoError(t, cacheRepo.Put(context.Background(), key, analysis, "", true, time.Hour))

	results, err := svc.Trending(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].Analysis.Ticker)
	assert.True(t, results[0].Cached)
	assert.Empty(t, generator.order, "trending never triggers generation")
}

func TestInvalidateCache_PrefixRemovesAllTimeframes(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	svc := NewAnalysisService(serviceConfig(), logger.NewNop(), cacheRepo, &fakeGenerator{}, newFakeMemCache())

	ctx := context.Background()
	for _, timeframe := range dto.GetTimeframeList() {
		analysis := GenerateMockAnalysis("AAPL", dto.MarketUS, timeframe)
		key := dto.AnalysisCacheKey(dto.MarketUS, "AAPL", timeframe)
		require.NoError(t, cacheRepo.Put(ctx, key, analysis, "", true, time.Hour))
	}
	other := GenerateMockAnalysis("MSFT", dto.MarketUS, dto.Timeframe3M)
	otherKey := dto.AnalysisCacheKey(dto.MarketUS, "MSFT", dto.Timeframe3M)
	require.NoError(t, cacheRepo.Put(ctx, otherKey, other, "", true, time.Hour))

	require.NoError(t, svc.InvalidateCache(ctx, dto.MarketUS, "AAPL", nil))

	for _, timeframe := range dto.GetTimeframeList() {
		_, found, err := cacheRepo.Get(ctx, dto.AnalysisCacheKey(dto.MarketUS, "AAPL", timeframe))
		require.NoError(t, err)
		assert.False(t, found)
	}
	_, found, err := cacheRepo.Get(ctx, otherKey)
	require.NoError(t, err)
	assert.True(t, found, "other tickers are untouched by prefix invalidation")
}
