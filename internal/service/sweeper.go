package service

import (
	"context"
	"time"

	"golang-finance/config"
	"golang-finance/internal/repository"
	"golang-finance/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CacheSweeper eagerly deletes expired cache index rows on a schedule,
// complementing the lazy delete performed on reads.
type CacheSweeper struct {
	cfg       *config.Config
	log       *logger.Logger
	cacheRepo repository.AnalysisCacheRepository
	cron      *cron.Cron
}

func NewCacheSweeper(cfg *config.Config, log *logger.Logger, cacheRepo repository.AnalysisCacheRepository) *CacheSweeper {
	return &CacheSweeper{
		cfg:       cfg,
		log:       log,
		cacheRepo: cacheRepo,
		cron:      cron.New(),
	}
}

func (s *CacheSweeper) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Analysis.SweepSchedule, s.sweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Cache sweeper started", logger.StringField("schedule", s.cfg.Analysis.SweepSchedule))
	return nil
}

func (s *CacheSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Cache sweeper stopped")
}

func (s *CacheSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.cacheRepo.SweepExpired(ctx)
	if err != nil {
		s.log.Error("Cache sweep failed", logger.ErrorField(err))
		return
	}
	if removed > 0 {
		s.log.Info("Swept expired analysis cache entries", logger.IntField("removed", int(removed)))
	}
}
