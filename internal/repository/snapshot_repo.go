package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-finance/internal/model"

	"gorm.io/gorm"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *model.Snapshot) error
	GetByID(ctx context.Context, id uint) (*model.Snapshot, error)
	List(ctx context.Context) ([]model.Snapshot, error)
	Update(ctx context.Context, snapshot *model.Snapshot) error
	Delete(ctx context.Context, id uint) error
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (s *snapshotRepository) Create(ctx context.Context, snapshot *model.Snapshot) error {
	if s.db == nil {
		return fmt.Errorf("snapshot storage requires a configured database")
	}
	return s.db.WithContext(ctx).Create(snapshot).Error
}

func (s *snapshotRepository) GetByID(ctx context.Context, id uint) (*model.Snapshot, error) {
	if s.db == nil {
		return nil, ErrSnapshotNotFound
	}

	var snapshot model.Snapshot
	err := s.db.WithContext(ctx).
		Preload("AccountBalances").
		Preload("GoldHoldings").
		Preload("Investments").
		First(&snapshot, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return &snapshot, nil
}

func (s *snapshotRepository) List(ctx context.Context) ([]model.Snapshot, error) {
	if s.db == nil {
		return nil, nil
	}

	var snapshots []model.Snapshot
	err := s.db.WithContext(ctx).
		Preload("AccountBalances").
		Preload("GoldHoldings").
		Preload("Investments").
		Order("date DESC").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Update replaces the snapshot's child rows wholesale inside one transaction.
func (s *snapshotRepository) Update(ctx context.Context, snapshot *model.Snapshot) error {
	if s.db == nil {
		return fmt.Errorf("snapshot storage requires a configured database")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&model.AccountBalance{}, &model.GoldHolding{}, &model.Investment{},
		} {
			if err := tx.Where("snapshot_id = ?", snapshot.ID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(snapshot).Error
	})
}

func (s *snapshotRepository) Delete(ctx context.Context, id uint) error {
	if s.db == nil {
		return fmt.Errorf("snapshot storage requires a configured database")
	}

	db := s.db.WithContext(ctx).Select("AccountBalances", "GoldHoldings", "Investments").Delete(&model.Snapshot{ID: id})
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}
