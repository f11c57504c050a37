package service

import (
	"context"
	"fmt"
	"time"

	"golang-finance/internal/dto"
	"golang-finance/internal/model"
	"golang-finance/internal/repository"
	"golang-finance/pkg/logger"
)

// SnapshotService manages the dated holdings snapshots (account balances,
// gold, investments).
type SnapshotService interface {
	Create(ctx context.Context, req *dto.SnapshotRequest) (*dto.SnapshotResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.SnapshotResponse, error)
	List(ctx context.Context) ([]dto.SnapshotResponse, error)
	Update(ctx context.Context, id uint, req *dto.SnapshotRequest) (*dto.SnapshotResponse, error)
	Delete(ctx context.Context, id uint) error
}

type snapshotService struct {
	log  *logger.Logger
	repo repository.SnapshotRepository
}

func NewSnapshotService(log *logger.Logger, repo repository.SnapshotRepository) SnapshotService {
	return &snapshotService{log: log, repo: repo}
}

func (s *snapshotService) Create(ctx context.Context, req *dto.SnapshotRequest) (*dto.SnapshotResponse, error) {
	snapshot, err := toSnapshotModel(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, snapshot); err != nil {
		s.log.ErrorContext(ctx, "Failed to create snapshot", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}
	return toSnapshotResponse(snapshot), nil
}

func (s *snapshotService) GetByID(ctx context.Context, id uint) (*dto.SnapshotResponse, error) {
	snapshot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSnapshotResponse(snapshot), nil
}

func (s *snapshotService) List(ctx context.Context) ([]dto.SnapshotResponse, error) {
	snapshots, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	responses := make([]dto.SnapshotResponse, 0, len(snapshots))
	for i := range snapshots {
		responses = append(responses, *toSnapshotResponse(&snapshots[i]))
	}
	return responses, nil
}

func (s *snapshotService) Update(ctx context.Context, id uint, req *dto.SnapshotRequest) (*dto.SnapshotResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := toSnapshotModel(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, updated); err != nil {
		s.log.ErrorContext(ctx, "Failed to update snapshot", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to update snapshot: %w", err)
	}
	return toSnapshotResponse(updated), nil
}

func (s *snapshotService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func toSnapshotModel(req *dto.SnapshotRequest) (*model.Snapshot, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot date %q: %w", req.Date, err)
	}

	snapshot := &model.Snapshot{
		Date: date,
		Note: req.Note,
	}
	for _, balance := range req.AccountBalances {
		snapshot.AccountBalances = append(snapshot.AccountBalances, model.AccountBalance{
			AccountName: balance.AccountName,
			Currency:    balance.Currency,
			Amount:      balance.Amount,
		})
	}
	for _, holding := range req.GoldHoldings {
		snapshot.GoldHoldings = append(snapshot.GoldHoldings, model.GoldHolding{
			KaratType: holding.KaratType,
			Grams:     holding.Grams,
		})
	}
	for _, investment := range req.Investments {
		snapshot.Investments = append(snapshot.Investments, model.Investment{
			Market:   investment.Market,
			Symbol:   investment.Symbol,
			Quantity: investment.Quantity,
			UnitCost: investment.UnitCost,
		})
	}
	return snapshot, nil
}

func toSnapshotResponse(snapshot *model.Snapshot) *dto.SnapshotResponse {
	resp := &dto.SnapshotResponse{
		ID:        snapshot.ID,
		Date:      snapshot.Date.Format("2006-01-02"),
		Note:      snapshot.Note,
		CreatedAt: snapshot.CreatedAt,
		UpdatedAt: snapshot.UpdatedAt,
	}
	for _, balance := range snapshot.AccountBalances {
		resp.AccountBalances = append(resp.AccountBalances, dto.AccountBalanceResponse{
			ID:          balance.ID,
			AccountName: balance.AccountName,
			Currency:    balance.Currency,
			Amount:      balance.Amount,
		})
	}
	for _, holding := range snapshot.GoldHoldings {
		resp.GoldHoldings = append(resp.GoldHoldings, dto.GoldHoldingResponse{
			ID:        holding.ID,
			KaratType: holding.KaratType,
			Grams:     holding.Grams,
		})
	}
	for _, investment := range snapshot.Investments {
		resp.Investments = append(resp.Investments, dto.InvestmentResponse{
			ID:       investment.ID,
			Market:   investment.Market,
			Symbol:   investment.Symbol,
			Quantity: investment.Quantity,
			UnitCost: investment.UnitCost,
		})
	}
	return resp
}
