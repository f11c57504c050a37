package service

import (
	"context"
	"fmt"
	"time"

	"golang-finance/config"
	"golang-finance/internal/dto"
	"golang-finance/internal/repository"
	"golang-finance/pkg/cache"
	"golang-finance/pkg/logger"
	"golang-finance/pkg/utils"

	"golang.org/x/sync/singleflight"
)

const (
	keyTrendingAnalyses = "analysis:trending"
	// Horizon used when the caller does not pick one (trending view).
	defaultTimeframe = dto.Timeframe3M

	cacheWriteTimeout = 10 * time.Second
	maxBulkItems      = 10
)

// AnalysisService is the single entry point the HTTP layer consumes for
// stock analyses: cache read, generation on miss, best-effort persistence.
type AnalysisService interface {
	GetOrCreate(ctx context.Context, market, ticker, timeframe string) (*dto.AnalysisResult, error)
	GetOrCreateBulk(ctx context.Context, items []dto.AnalyzeStockRequest) []dto.BulkAnalysisItemResult
	Trending(ctx context.Context) ([]dto.AnalysisResult, error)
	Stats(ctx context.Context) (*dto.AnalysisStats, error)
	InvalidateCache(ctx context.Context, market, ticker string, timeframe *string) error
}

type analysisService struct {
	cfg           *config.Config
	log           *logger.Logger
	cacheRepo     repository.AnalysisCacheRepository
	generator     AnalysisGenerator
	inmemoryCache cache.Cache
	flightGroup   singleflight.Group
}

func NewAnalysisService(
	cfg *config.Config,
	log *logger.Logger,
	cacheRepo repository.AnalysisCacheRepository,
	generator AnalysisGenerator,
	inmemoryCache cache.Cache,
) AnalysisService {
	return &analysisService{
		cfg:           cfg,
		log:           log,
		cacheRepo:     cacheRepo,
		generator:     generator,
		inmemoryCache: inmemoryCache,
	}
}

func (s *analysisService) GetOrCreate(ctx context.Context, market, ticker, timeframe string) (*dto.AnalysisResult, error) {
	key := dto.AnalysisCacheKey(market, ticker, timeframe)

	cached, found, err := s.cacheRepo.Get(ctx, key)
	if err != nil {
		// A broken cache read degrades to a miss; the user still gets an
		// analysis.
		s.log.WarnContext(ctx, "Analysis cache read failed, treating as miss",
			logger.StringField("cache_key", key),
			logger.ErrorField(err),
		)
	}
	if found {
		return &dto.AnalysisResult{
			Analysis: *cached,
			Cached:   true,
			DemoMode: s.cfg.DemoMode(),
		}, nil
	}

	// Concurrent misses for the same key share one upstream call. The
	// flight serves every coalesced caller, so it must not die with the
	// one that happened to start it; the generator's per-attempt timeout
	// still bounds it.
	flightCtx := context.WithoutCancel(ctx)
	generated, err, _ := s.flightGroup.Do(key, func() (interface{}, error) {
		analysis, prompt, err := s.generator.Generate(flightCtx, market, ticker, timeframe)
		if err != nil {
			return nil, err
		}
		s.writeCacheAsync(key, analysis, prompt)
		return analysis, nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.AnalysisResult{
		Analysis: *generated.(*dto.StockAnalysis),
		Cached:   false,
		DemoMode: s.cfg.DemoMode(),
	}, nil
}

// writeCacheAsync persists the analysis without keeping the caller waiting.
// Persistence is an optimization: failures are logged and swallowed.
func (s *analysisService) writeCacheAsync(key string, analysis *dto.StockAnalysis, prompt string) {
	ttl := time.Duration(s.cfg.Analysis.CacheTTLHours) * time.Hour
	demoMode := s.cfg.DemoMode()

	utils.GoSafe(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		if err := s.cacheRepo.Put(ctx, key, analysis, prompt, demoMode, ttl); err != nil {
			s.log.Warn("Best-effort analysis cache write failed",
				logger.StringField("cache_key", key),
				logger.ErrorField(err),
			)
		}
	})
}

// GetOrCreateBulk processes the triples one at a time with a fixed pause
// between items. The serialization is deliberate: it keeps a batch from
// bursting the rate-limited upstream. One item's failure never aborts the
// rest, and items past the batch limit come back rejected rather than
// silently dropped.
func (s *analysisService) GetOrCreateBulk(ctx context.Context, items []dto.AnalyzeStockRequest) []dto.BulkAnalysisItemResult {
	var overflow []dto.AnalyzeStockRequest
	if len(items) > maxBulkItems {
		overflow = items[maxBulkItems:]
		items = items[:maxBulkItems]
	}

	results := make([]dto.BulkAnalysisItemResult, 0, len(items)+len(overflow))
	for i, item := range items {
		if i > 0 {
			select {
			case <-ctx.Done():
				results = append(results, dto.BulkAnalysisItemResult{
					Market:    item.Market,
					Ticker:    item.Ticker,
					Timeframe: item.Timeframe,
					Error:     ctx.Err().Error(),
				})
				continue
			case <-time.After(s.cfg.Analysis.BulkItemDelay):
			}
		}

		itemResult := dto.BulkAnalysisItemResult{
			Market:    item.Market,
			Ticker:    item.Ticker,
			Timeframe: item.Timeframe,
		}
		result, err := s.GetOrCreate(ctx, item.Market, item.Ticker, item.Timeframe)
		if err != nil {
			itemResult.Error = err.Error()
		} else {
			itemResult.Result = result
		}
		results = append(results, itemResult)
	}

	for _, item := range overflow {
		results = append(results, dto.BulkAnalysisItemResult{
			Market:    item.Market,
			Ticker:    item.Ticker,
			Timeframe: item.Timeframe,
			Error:     fmt.Sprintf("bulk request limited to %d items", maxBulkItems),
		})
	}

	return results
}

// Trending serves the fixed ticker list from cache-only reads; it never
// triggers generation. Responses are memoized briefly in process memory.
func (s *analysisService) Trending(ctx context.Context) ([]dto.AnalysisResult, error) {
	if memoized, found := s.inmemoryCache.Get(keyTrendingAnalyses); found {
		if results, ok := memoized.([]dto.AnalysisResult); ok {
			return results, nil
		}
	}

	results := make([]dto.AnalysisResult, 0, len(dto.TrendingTickers))
	for _, ref := range dto.TrendingTickers {
		key := dto.AnalysisCacheKey(ref.Market, ref.Ticker, defaultTimeframe)
		analysis, found, err := s.cacheRepo.Get(ctx, key)
		if err != nil {
			s.log.WarnContext(ctx, "Trending cache read failed",
				logger.StringField("cache_key", key),
				logger.ErrorField(err),
			)
			continue
		}
		if !found {
			continue
		}
		results = append(results, dto.AnalysisResult{
			Analysis: *analysis,
			Cached:   true,
			DemoMode: s.cfg.DemoMode(),
		})
	}

	s.inmemoryCache.Set(keyTrendingAnalyses, results, s.cfg.Cache.DefaultExpiration)
	return results, nil
}

func (s *analysisService) Stats(ctx context.Context) (*dto.AnalysisStats, error) {
	stats, err := s.cacheRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats.DemoMode = s.cfg.DemoMode()
	stats.DatabaseConfigured = s.cfg.DB.Configured()
	return stats, nil
}

func (s *analysisService) InvalidateCache(ctx context.Context, market, ticker string, timeframe *string) error {
	s.inmemoryCache.Delete(keyTrendingAnalyses)
	return s.cacheRepo.Invalidate(ctx, market, ticker, timeframe)
}
