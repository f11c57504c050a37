package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-finance/internal/dto"
	"golang-finance/internal/model"
	"golang-finance/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalysisCacheRepository owns the two analysis tables: the append-only
// history and the live cache index. With a nil db every operation degrades
// to "always miss, write succeeds silently", which the caller cannot
// distinguish from a working-but-empty cache.
type AnalysisCacheRepository interface {
	Get(ctx context.Context, key string) (*dto.StockAnalysis, bool, error)
	Put(ctx context.Context, key string, analysis *dto.StockAnalysis, prompt string, demoMode bool, ttl time.Duration) error
	Invalidate(ctx context.Context, market, ticker string, timeframe *string) error
	SweepExpired(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*dto.AnalysisStats, error)
}

type analysisCacheRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisCacheRepository(db *gorm.DB, log *logger.Logger) AnalysisCacheRepository {
	return &analysisCacheRepository{db: db, log: log}
}

// cacheEntryExpired reports whether an entry is past its TTL. The boundary
// is inclusive: an entry expiring exactly now is already gone.
func cacheEntryExpired(now, expiresAt time.Time) bool {
	return !now.Before(expiresAt)
}

// Get looks up the index row for key and checks its expiry. An expired row
// is deleted on the read that discovers it (lazy expiry); the hourly sweep
// handles the rest.
func (r *analysisCacheRepository) Get(ctx context.Context, key string) (*dto.StockAnalysis, bool, error) {
	if r.db == nil {
		return nil, false, nil
	}

	var entry model.AnalysisCacheEntry
	err := r.db.WithContext(ctx).
		Preload("StockAnalysisAI").
		Where("cache_key = ?", key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read analysis cache entry: %w", err)
	}

	if cacheEntryExpired(time.Now(), entry.ExpiresAt) {
		if err := r.db.WithContext(ctx).Delete(&model.AnalysisCacheEntry{}, entry.ID).Error; err != nil {
			r.log.WarnContext(ctx, "Failed to remove expired cache entry",
				logger.StringField("cache_key", key),
				logger.ErrorField(err),
			)
		}
		return nil, false, nil
	}

	if entry.StockAnalysisAI == nil {
		return nil, false, fmt.Errorf("cache entry %s points at a missing analysis row", key)
	}

	var analysis dto.StockAnalysis
	if err := json.Unmarshal(entry.StockAnalysisAI.Response, &analysis); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached analysis: %w", err)
	}

	return &analysis, true, nil
}

// Put inserts one history row and upserts the index entry for key in a
// single transaction. Racing writers resolve as last-write-wins on the
// unique cache_key.
func (r *analysisCacheRepository) Put(ctx context.Context, key string, analysis *dto.StockAnalysis, prompt string, demoMode bool, ttl time.Duration) error {
	if r.db == nil {
		return nil
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	record := model.StockAnalysisAI{
		Ticker:       analysis.Ticker,
		Market:       analysis.Market,
		Timeframe:    analysis.Timeframe,
		AnalysisDate: analysis.AnalysisDate,
		Prompt:       prompt,
		Response:     payload,
		Direction:    analysis.Prediction.Direction,
		Probability:  analysis.Prediction.Probability,
		RiskLevel:    analysis.RiskLevel,
		Confidence:   analysis.Confidence,
		DemoMode:     demoMode,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create analysis history row: %w", err)
		}

		entry := model.AnalysisCacheEntry{
			CacheKey:          key,
			StockAnalysisAIID: record.ID,
			ExpiresAt:         time.Now().Add(ttl),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"stock_analysis_ai_id", "expires_at", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("failed to upsert cache entry: %w", err)
		}

		return nil
	})
}

// Invalidate deletes the single entry for the fully specified key, or every
// entry under market:ticker: when timeframe is nil.
func (r *analysisCacheRepository) Invalidate(ctx context.Context, market, ticker string, timeframe *string) error {
	if r.db == nil {
		return nil
	}

	query := r.db.WithContext(ctx)
	if timeframe != nil {
		query = query.Where("cache_key = ?", dto.AnalysisCacheKey(market, ticker, *timeframe))
	} else {
		query = query.Where("cache_key LIKE ?", dto.AnalysisCachePrefix(market, ticker)+"%")
	}

	if err := query.Delete(&model.AnalysisCacheEntry{}).Error; err != nil {
		return fmt.Errorf("failed to invalidate cache entries: %w", err)
	}
	return nil
}

// SweepExpired eagerly removes every index row whose TTL has passed.
func (r *analysisCacheRepository) SweepExpired(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, nil
	}

	db := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&model.AnalysisCacheEntry{})
	if db.Error != nil {
		return 0, fmt.Errorf("failed to sweep expired cache entries: %w", db.Error)
	}
	return db.RowsAffected, nil
}

func (r *analysisCacheRepository) Stats(ctx context.Context) (*dto.AnalysisStats, error) {
	stats := &dto.AnalysisStats{}
	if r.db == nil {
		return stats, nil
	}

	db := r.db.WithContext(ctx)
	if err := db.Model(&model.StockAnalysisAI{}).Count(&stats.TotalAnalyses).Error; err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}
	if err := db.Model(&model.AnalysisCacheEntry{}).Count(&stats.TotalCacheEntries).Error; err != nil {
		return nil, fmt.Errorf("failed to count cache entries: %w", err)
	}
	err := db.Model(&model.AnalysisCacheEntry{}).
		Where("expires_at <= ?", time.Now()).
		Count(&stats.ExpiredNotSwept).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count expired cache entries: %w", err)
	}

	return stats, nil
}
