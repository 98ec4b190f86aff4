package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/model"
	"stock-advisor/internal/repository"
	"stock-advisor/pkg/logger"
)

type stubPriceProvider struct {
	series map[string]dto.PriceSeries
	price  float64
	err    error
}

func (s *stubPriceProvider) GetPriceSeries(_ context.Context, ticker, _, _ string) (dto.PriceSeries, float64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	series, ok := s.series[ticker]
	if !ok {
		return nil, 0, errors.New("no data for ticker")
	}
	return series, s.price, nil
}

type stubFundamentalsProvider struct {
	snap dto.FundamentalSnapshot
	err  error
}

func (s *stubFundamentalsProvider) GetFundamentals(context.Context, string) (dto.FundamentalSnapshot, error) {
	return s.snap, s.err
}

type stubSentimentProvider struct {
	score dto.Float
	err   error
}

func (s *stubSentimentProvider) GetSentiment(context.Context, string) (dto.Float, error) {
	return s.score, s.err
}

type stubAnalysisRepo struct {
	mu      sync.Mutex
	created []*model.Analysis
	latest  []model.Analysis
}

func (s *stubAnalysisRepo) Create(_ context.Context, analysis *model.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, analysis)
	return nil
}

func (s *stubAnalysisRepo) GetLatest(context.Context, model.GetAnalysesParam) ([]model.Analysis, error) {
	return s.latest, nil
}

func (s *stubAnalysisRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Engine.InitialCapital = 10_000
	cfg.Engine.Risk.PortfolioValue = 100_000
	cfg.Engine.EnableSentiment = true
	cfg.Watchlist.MaxConcurrency = 2
	return cfg
}

func newTestService(t *testing.T, repo *repository.Repository) *analysisService {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	svc, err := NewAnalysisService(testConfig(), log, repo)
	require.NoError(t, err)
	return svc
}

// uptrendSeries is n daily bars climbing half a point per day.
func uptrendSeries(n int) dto.PriceSeries {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(dto.PriceSeries, 0, n)
	for i := 0; i < n; i++ {
		c := 100 + 0.5*float64(i)
		series = append(series, dto.PriceBar{
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1_000,
		})
	}
	return series
}

func strongFundamentals() dto.FundamentalSnapshot {
	return dto.FundamentalSnapshot{
		PERatio:          dto.ValidFloat(10),
		PBRatio:          dto.ValidFloat(1.2),
		EVEBITDA:         dto.ValidFloat(6),
		ROE:              dto.ValidFloat(0.22),
		ROA:              dto.ValidFloat(0.12),
		GrossMargin:      dto.ValidFloat(0.55),
		OperatingMargin:  dto.ValidFloat(0.25),
		DebtToEquity:     dto.ValidFloat(0.1),
		InterestCoverage: dto.ValidFloat(15),
		RevenueGrowth:    dto.ValidFloat(0.20),
		EPSGrowth:        dto.ValidFloat(0.18),
	}
}

func TestAnalyze_UptrendLeansBullish(t *testing.T) {
	svc := newTestService(t, &repository.Repository{AnalysisRepo: &stubAnalysisRepo{}})

	snap := strongFundamentals()
	result, err := svc.Analyze(context.Background(), "AAPL", AnalysisInput{
		Series:       uptrendSeries(300),
		MarketPrice:  250,
		Fundamentals: &snap,
		Sentiment:    dto.ValidFloat(0.8),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "AAPL", result.Ticker)
	require.NotNil(t, result.Signals)
	assert.True(t, result.Signals.Available())
	require.NotNil(t, result.FundamentalScore)
	require.NotNil(t, result.RiskProfile)
	require.NotNil(t, result.Backtest)

	rec := result.Recommendation
	assert.Contains(t, []dto.Action{dto.Buy, dto.StrongBuy}, rec.Action)
	assert.Greater(t, rec.Composite, 0.2)
	assert.GreaterOrEqual(t, rec.Confidence, 0.0)
	assert.LessOrEqual(t, rec.Confidence, 1.0)
}

func TestAnalyze_EmptySeries(t *testing.T) {
	svc := newTestService(t, &repository.Repository{AnalysisRepo: &stubAnalysisRepo{}})

	_, err := svc.Analyze(context.Background(), "AAPL", AnalysisInput{Sentiment: dto.Undefined()})
	var insufficientErr *dto.InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, "price_series", insufficientErr.Indicator)
}

func TestAnalyze_Deterministic(t *testing.T) {
	svc := newTestService(t, &repository.Repository{AnalysisRepo: &stubAnalysisRepo{}})

	snap := strongFundamentals()
	input := AnalysisInput{
		Series:       uptrendSeries(300),
		MarketPrice:  250,
		Fundamentals: &snap,
		Sentiment:    dto.ValidFloat(0.4),
	}

	first, err := svc.Analyze(context.Background(), "AAPL", input)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), "AAPL", input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyzeTicker_PersistsAndDegrades(t *testing.T) {
	analysisRepo := &stubAnalysisRepo{}
	repo := &repository.Repository{
		PriceProvider:        &stubPriceProvider{series: map[string]dto.PriceSeries{"AAPL": uptrendSeries(300)}, price: 250},
		FundamentalsProvider: &stubFundamentalsProvider{err: errors.New("upstream down")},
		SentimentProvider:    &stubSentimentProvider{err: errors.New("upstream down")},
		AnalysisRepo:         analysisRepo,
	}
	svc := newTestService(t, repo)

	result, err := svc.AnalyzeTicker(context.Background(), "AAPL", "", "")
	require.NoError(t, err)
	require.NotNil(t, result)

	// Dead fundamentals and sentiment narrow the recommendation.
	assert.Nil(t, result.FundamentalScore)
	for _, comp := range result.Recommendation.Components {
		assert.NotEqual(t, "fundamental", comp.Category)
		assert.NotEqual(t, "sentiment", comp.Category)
	}

	require.Len(t, analysisRepo.created, 1)
	record := analysisRepo.created[0]
	assert.Equal(t, "AAPL", record.Ticker)
	assert.Equal(t, string(result.Recommendation.Action), record.Action)
	assert.Equal(t, 250.0, record.MarketPrice)
}

func TestAnalyzeTicker_PriceErrorIsFatal(t *testing.T) {
	repo := &repository.Repository{
		PriceProvider:        &stubPriceProvider{err: errors.New("quota exceeded")},
		FundamentalsProvider: &stubFundamentalsProvider{snap: strongFundamentals()},
		SentimentProvider:    &stubSentimentProvider{score: dto.ValidFloat(0.5)},
		AnalysisRepo:         &stubAnalysisRepo{},
	}
	svc := newTestService(t, repo)

	_, err := svc.AnalyzeTicker(context.Background(), "AAPL", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AAPL")
}

func TestAnalyzeMany_DropsFailedTickers(t *testing.T) {
	repo := &repository.Repository{
		PriceProvider:        &stubPriceProvider{series: map[string]dto.PriceSeries{"AAPL": uptrendSeries(260)}, price: 230},
		FundamentalsProvider: &stubFundamentalsProvider{snap: strongFundamentals()},
		SentimentProvider:    &stubSentimentProvider{score: dto.ValidFloat(0.3)},
		AnalysisRepo:         &stubAnalysisRepo{},
	}
	svc := newTestService(t, repo)

	results, err := svc.AnalyzeMany(context.Background(), dto.AnalyzeRequest{Tickers: []string{"AAPL", "NOPE"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].Ticker)
}

func TestHistory_PassesThrough(t *testing.T) {
	analysisRepo := &stubAnalysisRepo{latest: []model.Analysis{{Ticker: "AAPL", Action: "BUY"}}}
	svc := newTestService(t, &repository.Repository{AnalysisRepo: analysisRepo})

	analyses, err := svc.History(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, "AAPL", analyses[0].Ticker)
}
