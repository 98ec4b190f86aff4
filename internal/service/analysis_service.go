package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/engine/backtest"
	"stock-advisor/internal/engine/decision"
	"stock-advisor/internal/engine/fundamental"
	"stock-advisor/internal/engine/indicator"
	"stock-advisor/internal/engine/risk"
	"stock-advisor/internal/model"
	"stock-advisor/internal/repository"
	"stock-advisor/pkg/logger"
	"stock-advisor/pkg/utils"
)

// varReturnWindow bounds the return history fed into the VaR estimate.
const varReturnWindow = 60

// AnalysisInput carries everything Analyze needs; only the price series is
// mandatory. Missing collaborator data narrows the recommendation instead
// of failing it.
type AnalysisInput struct {
	Series       dto.PriceSeries
	MarketPrice  float64
	Fundamentals *dto.FundamentalSnapshot
	Sentiment    dto.Float
}

type AnalysisService interface {
	Analyze(ctx context.Context, ticker string, input AnalysisInput) (*dto.AnalysisResult, error)
	AnalyzeTicker(ctx context.Context, ticker, rng, interval string) (*dto.AnalysisResult, error)
	AnalyzeMany(ctx context.Context, req dto.AnalyzeRequest) ([]dto.AnalysisResult, error)
	History(ctx context.Context, ticker string, limit int) ([]model.Analysis, error)
}

type analysisService struct {
	cfg        *config.Config
	log        *logger.Logger
	repo       *repository.Repository
	engine     *indicator.Engine
	scorer     *fundamental.Scorer
	riskMgr    *risk.Manager
	simulator  *backtest.Simulator
	aggregator *decision.Aggregator
}

func NewAnalysisService(cfg *config.Config, log *logger.Logger, repo *repository.Repository) (*analysisService, error) {
	params := StrategyParamsFromConfig(cfg.Engine)

	eng, err := indicator.NewEngine(params)
	if err != nil {
		return nil, fmt.Errorf("indicator engine: %w", err)
	}
	sim, err := backtest.NewSimulator(params, cfg.Engine.InitialCapital)
	if err != nil {
		return nil, fmt.Errorf("backtest simulator: %w", err)
	}
	riskMgr, err := risk.NewManager(riskBudgetFromConfig(cfg.Engine))
	if err != nil {
		return nil, fmt.Errorf("risk manager: %w", err)
	}
	aggregator, err := decision.NewAggregator(weightsFromConfig(cfg.Engine), thresholdsFromConfig(cfg.Engine))
	if err != nil {
		return nil, fmt.Errorf("decision aggregator: %w", err)
	}

	return &analysisService{
		cfg:        cfg,
		log:        log,
		repo:       repo,
		engine:     eng,
		scorer:     fundamental.NewScorer(),
		riskMgr:    riskMgr,
		simulator:  sim,
		aggregator: aggregator,
	}, nil
}

// Analyze runs the full pipeline over already-fetched inputs. It is
// deterministic: identical inputs always yield the identical
// recommendation.
func (s *analysisService) Analyze(ctx context.Context, ticker string, input AnalysisInput) (*dto.AnalysisResult, error) {
	if len(input.Series) == 0 {
		return nil, &dto.InsufficientDataError{Indicator: "price_series", Need: 1, Have: 0}
	}

	set, err := s.engine.Compute(input.Series)
	if err != nil {
		return nil, err
	}
	lastBar := len(input.Series) - 1
	signals := s.engine.SignalsAt(set, input.Series, lastBar)

	result := &dto.AnalysisResult{
		Ticker:     ticker,
		Indicators: set,
		Signals:    &signals,
	}

	var fundScore dto.Float
	if input.Fundamentals != nil && !input.Fundamentals.Empty() {
		score := s.scorer.Score(*input.Fundamentals)
		result.Fundamentals = input.Fundamentals
		result.FundamentalScore = &score
		fundScore = score.Composite
	}

	backtestResult, err := s.simulator.Run(ctx, input.Series)
	if err != nil {
		return nil, err
	}
	result.Backtest = backtestResult

	riskProfile := s.buildRiskProfile(ctx, ticker, input, set, backtestResult.Metrics)
	result.RiskProfile = riskProfile

	var backtestMetrics *dto.BacktestMetrics
	if backtestResult.Metrics.TotalTrades > 0 {
		backtestMetrics = &backtestResult.Metrics
	}

	result.Recommendation = s.aggregator.Decide(ticker, decision.Inputs{
		Technical:   &signals,
		Fundamental: fundScore,
		Risk:        riskProfile,
		Backtest:    backtestMetrics,
		Sentiment:   input.Sentiment,
	})
	return result, nil
}

// buildRiskProfile sizes a long trade plan at the current price. A plan
// that cannot be built (zero price, stop wider than entry) is not fatal to
// the analysis; the category is simply absent.
func (s *analysisService) buildRiskProfile(ctx context.Context, ticker string, input AnalysisInput, set *dto.IndicatorSet, metrics dto.BacktestMetrics) *dto.RiskProfile {
	entry := input.MarketPrice
	if entry <= 0 {
		if last := input.Series.LastClose(); last.Valid {
			entry = last.Value
		}
	}
	if entry <= 0 {
		return nil
	}

	params := s.engine.Params()

	// ATR-based stop preferred, percent stop when the ATR window never
	// filled.
	stop, err := risk.StopFromATR(entry, set.ATR.Last(), params.ATRMultiplier, dto.SideLong)
	if err != nil {
		stop, err = risk.StopFromPercent(entry, params.StopLossPct, dto.SideLong)
		if err != nil {
			return nil
		}
	}

	riskReward := params.TakeProfitPct / params.StopLossPct
	pos, err := s.riskMgr.BuildPosition(entry, stop, riskReward, dto.SideLong)
	if err != nil {
		s.log.WarnContext(ctx, "Could not build trade plan",
			logger.StringField("ticker", ticker),
			logger.ErrorField(err))
		return nil
	}

	kelly := s.kellyFromMetrics(metrics)
	profile := s.riskMgr.Profile(pos, kelly, recentReturns(input.Series, varReturnWindow))
	return &profile
}

// kellyFromMetrics derives the Kelly fraction from the simulated win rate
// and payoff ratio. Runs without both winners and losers cannot price the
// payoff, so the fraction stays undefined.
func (s *analysisService) kellyFromMetrics(m dto.BacktestMetrics) dto.Float {
	if !m.WinRate.Valid || !m.ProfitFactor.Valid || m.WinningTrades == 0 || m.LosingTrades == 0 {
		return dto.Undefined()
	}

	payoff := m.ProfitFactor.Value * float64(m.LosingTrades) / float64(m.WinningTrades)
	f, err := s.riskMgr.KellyFraction(m.WinRate.Value, payoff)
	if err != nil {
		return dto.Undefined()
	}
	return dto.ValidFloat(f)
}

func recentReturns(series dto.PriceSeries, window int) []float64 {
	closes := series.Closes()
	start := len(closes) - window - 1
	if start < 0 {
		start = 0
	}

	var returns []float64
	for i := start + 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	return returns
}

// AnalyzeTicker pulls all provider data and analyzes. Price history is
// mandatory; fundamentals and sentiment failures degrade the analysis and
// are logged, not returned.
func (s *analysisService) AnalyzeTicker(ctx context.Context, ticker, rng, interval string) (*dto.AnalysisResult, error) {
	series, marketPrice, err := s.repo.PriceProvider.GetPriceSeries(ctx, ticker, rng, interval)
	if err != nil {
		return nil, fmt.Errorf("price data for %s: %w", ticker, err)
	}

	input := AnalysisInput{
		Series:      series,
		MarketPrice: marketPrice,
		Sentiment:   dto.Undefined(),
	}

	if snap, err := s.repo.FundamentalsProvider.GetFundamentals(ctx, ticker); err != nil {
		s.log.WarnContext(ctx, "Fundamentals unavailable, scoring without them",
			logger.StringField("ticker", ticker),
			logger.ErrorField(err))
	} else {
		input.Fundamentals = utils.ToPointer(snap)
	}

	if s.cfg.Engine.EnableSentiment {
		if sentiment, err := s.repo.SentimentProvider.GetSentiment(ctx, ticker); err != nil {
			s.log.WarnContext(ctx, "Sentiment unavailable, scoring without it",
				logger.StringField("ticker", ticker),
				logger.ErrorField(err))
		} else {
			input.Sentiment = sentiment
		}
	}

	result, err := s.Analyze(ctx, ticker, input)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, result, input.MarketPrice); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist analysis",
			logger.StringField("ticker", ticker),
			logger.ErrorField(err))
	}
	return result, nil
}

// AnalyzeMany fans out over the tickers with a concurrency cap. A failed
// ticker is logged and dropped; the batch never fails wholesale.
func (s *analysisService) AnalyzeMany(ctx context.Context, req dto.AnalyzeRequest) ([]dto.AnalysisResult, error) {
	results := make([]*dto.AnalysisResult, len(req.Tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Watchlist.MaxConcurrency)

	for i, ticker := range req.Tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			result, err := s.AnalyzeTicker(gctx, ticker, req.Range, req.Interval)
			if err != nil {
				s.log.ErrorContext(gctx, "Ticker analysis failed",
					logger.StringField("ticker", ticker),
					logger.ErrorField(err))
				return nil
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]dto.AnalysisResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *analysisService) History(ctx context.Context, ticker string, limit int) ([]model.Analysis, error) {
	return s.repo.AnalysisRepo.GetLatest(ctx, model.GetAnalysesParam{Ticker: ticker, Limit: limit})
}

func (s *analysisService) persist(ctx context.Context, result *dto.AnalysisResult, marketPrice float64) error {
	record := &model.Analysis{
		Ticker:      result.Ticker,
		Timestamp:   time.Now().UTC(),
		MarketPrice: marketPrice,
		Action:      string(result.Recommendation.Action),
		Composite:   result.Recommendation.Composite,
		Confidence:  result.Recommendation.Confidence,
	}

	var err error
	if record.Components, err = marshalJSON(result.Recommendation.Components); err != nil {
		return err
	}
	if record.Signals, err = marshalJSON(result.Signals); err != nil {
		return err
	}
	if record.Fundamentals, err = marshalJSON(result.FundamentalScore); err != nil {
		return err
	}
	if record.RiskProfile, err = marshalJSON(result.RiskProfile); err != nil {
		return err
	}
	if result.Backtest != nil {
		// Persist the metrics only; the full trade log and equity curve are
		// large and reproducible.
		if record.Backtest, err = marshalJSON(result.Backtest.Metrics); err != nil {
			return err
		}
	}

	return s.repo.AnalysisRepo.Create(ctx, record)
}

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
