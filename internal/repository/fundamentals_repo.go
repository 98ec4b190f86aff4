package repository

import (
	"context"
	"fmt"
	"net/http"

	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/pkg/cache"
	"stock-advisor/pkg/httpclient"
	"stock-advisor/pkg/logger"
	"stock-advisor/pkg/ratelimit"
)

type fundamentalsRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
	limiters   *ratelimit.LimiterStore
	cache      cache.Cache
}

// NewFundamentalsRepository creates the quoteSummary-endpoint ratio
// provider.
func NewFundamentalsRepository(cfg *config.Config, inmemoryCache cache.Cache, limiters *ratelimit.LimiterStore, log *logger.Logger) *fundamentalsRepository {
	return &fundamentalsRepository{
		httpClient: httpclient.New(cfg.Yahoo.QuoteBaseURL, cfg.Yahoo.Timeout, ""),
		cfg:        cfg,
		logger:     log,
		limiters:   limiters,
		cache:      inmemoryCache,
	}
}

// GetFundamentals maps the quoteSummary modules onto a snapshot. Fields
// the payload omits stay unavailable; interest coverage is never served by
// this endpoint and is always unavailable here.
func (r *fundamentalsRepository) GetFundamentals(ctx context.Context, ticker string) (dto.FundamentalSnapshot, error) {
	cacheKey := "yahoo:fundamentals:" + ticker
	if hit, found := cache.GetTyped[dto.FundamentalSnapshot](r.cache, cacheKey); found {
		return hit, nil
	}

	if err := r.limiters.GetLimiter("yahoo-quote").Wait(ctx); err != nil {
		return dto.FundamentalSnapshot{}, err
	}

	queryParams := map[string]string{
		"modules": "summaryDetail,defaultKeyStatistics,financialData",
	}

	var summaryResp dto.YahooQuoteSummaryResponse
	resp, err := r.httpClient.Get(ctx, "/"+ticker, queryParams, yahooHeaders(), &summaryResp)
	if err != nil {
		return dto.FundamentalSnapshot{}, fmt.Errorf("failed to fetch fundamentals: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Yahoo quoteSummary API returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("ticker", ticker))
		return dto.FundamentalSnapshot{}, fmt.Errorf("yahoo quoteSummary api returned status: %d", resp.StatusCode)
	}
	if summaryResp.QuoteSummary.Error != nil {
		return dto.FundamentalSnapshot{}, fmt.Errorf("yahoo quoteSummary api error: %v", summaryResp.QuoteSummary.Error)
	}
	if len(summaryResp.QuoteSummary.Result) == 0 {
		return dto.FundamentalSnapshot{}, fmt.Errorf("no fundamentals returned for symbol: %s", ticker)
	}

	result := summaryResp.QuoteSummary.Result[0]
	snap := dto.FundamentalSnapshot{
		PERatio:         result.SummaryDetail.TrailingPE.Float(),
		PBRatio:         result.DefaultKeyStatistics.PriceToBook.Float(),
		EVEBITDA:        result.DefaultKeyStatistics.EnterpriseToEbitda.Float(),
		ROE:             result.FinancialData.ReturnOnEquity.Float(),
		ROA:             result.FinancialData.ReturnOnAssets.Float(),
		GrossMargin:     result.FinancialData.GrossMargins.Float(),
		OperatingMargin: result.FinancialData.OperatingMargins.Float(),
		DebtToEquity:    scaleDebtToEquity(result.FinancialData.DebtToEquity.Float()),
		RevenueGrowth:   result.FinancialData.RevenueGrowth.Float(),
		EPSGrowth:       result.FinancialData.EarningsGrowth.Float(),
	}

	if snap.Empty() {
		return dto.FundamentalSnapshot{}, fmt.Errorf("fundamentals payload for %s carried no usable ratio", ticker)
	}

	r.cache.Set(cacheKey, snap, r.cfg.Cache.DefaultExpiration)
	return snap, nil
}

// Yahoo reports debt/equity as a percentage (e.g. 35.2), the scorer
// expects a ratio.
func scaleDebtToEquity(v dto.Float) dto.Float {
	if !v.Valid {
		return v
	}
	return dto.ValidFloat(v.Value / 100)
}
