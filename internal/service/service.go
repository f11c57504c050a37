package service

import (
	"golang-finance/config"
	"golang-finance/internal/repository"
	"golang-finance/pkg/cache"
	"golang-finance/pkg/logger"
)

type Service struct {
	AnalysisService AnalysisService
	SnapshotService SnapshotService
	CacheSweeper    *CacheSweeper
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
) *Service {
	generator := NewAnalysisGenerator(cfg, log, repo.AIRepo)
	analysisService := NewAnalysisService(cfg, log, repo.AnalysisCacheRepo, generator, inmemoryCache)

	return &Service{
		AnalysisService: analysisService,
		SnapshotService: NewSnapshotService(log, repo.SnapshotRepo),
		CacheSweeper:    NewCacheSweeper(cfg, log, repo.AnalysisCacheRepo),
	}
}
