package repository

import (
	"golang-finance/config"
	"golang-finance/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	AIRepo            AIRepository
	AnalysisCacheRepo AnalysisCacheRepository
	SnapshotRepo      SnapshotRepository
}

// NewRepository wires every repository. AIRepo stays nil in demo mode; the
// generator never touches it on that path.
func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	repo := &Repository{
		AnalysisCacheRepo: NewAnalysisCacheRepository(db, log),
		SnapshotRepo:      NewSnapshotRepository(db),
	}

	if !cfg.DemoMode() {
		aiRepo, err := NewGeminiAIRepository(cfg, log)
		if err != nil {
			return nil, err
		}
		repo.AIRepo = aiRepo
	}

	return repo, nil
}
