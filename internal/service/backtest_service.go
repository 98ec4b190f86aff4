package service

import (
	"context"
	"fmt"

	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/engine/backtest"
	"stock-advisor/internal/repository"
	"stock-advisor/pkg/logger"
)

type BacktestService interface {
	RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResult, error)
}

type backtestService struct {
	cfg  *config.Config
	log  *logger.Logger
	repo *repository.Repository
}

func NewBacktestService(cfg *config.Config, log *logger.Logger, repo *repository.Repository) *backtestService {
	return &backtestService{cfg: cfg, log: log, repo: repo}
}

// RunBacktest replays the strategy over the requested history. Request
// parameters override the configured strategy wholesale when present.
func (s *backtestService) RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResult, error) {
	params := StrategyParamsFromConfig(s.cfg.Engine)
	if req.Params != nil {
		params = *req.Params
	}

	capital := req.InitialCapital
	if capital <= 0 {
		capital = s.cfg.Engine.InitialCapital
	}

	sim, err := backtest.NewSimulator(params, capital)
	if err != nil {
		return nil, err
	}

	series, _, err := s.repo.PriceProvider.GetPriceSeries(ctx, req.Ticker, req.Range, req.Interval)
	if err != nil {
		return nil, fmt.Errorf("price data for %s: %w", req.Ticker, err)
	}

	s.log.InfoContext(ctx, "Running backtest",
		logger.StringField("ticker", req.Ticker),
		logger.IntField("bars", len(series)))

	return sim.Run(ctx, series)
}
