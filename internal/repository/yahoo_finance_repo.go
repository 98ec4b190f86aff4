package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/pkg/cache"
	"stock-advisor/pkg/httpclient"
	"stock-advisor/pkg/logger"
	"stock-advisor/pkg/ratelimit"
)

// browser-ish headers; the API rejects default Go user agents
func yahooHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}
}

type yahooFinanceRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
	limiters   *ratelimit.LimiterStore
	cache      cache.Cache
}

// NewYahooFinanceRepository creates the chart-endpoint price provider.
func NewYahooFinanceRepository(cfg *config.Config, inmemoryCache cache.Cache, limiters *ratelimit.LimiterStore, log *logger.Logger) *yahooFinanceRepository {
	return &yahooFinanceRepository{
		httpClient: httpclient.New(cfg.Yahoo.ChartBaseURL, cfg.Yahoo.Timeout, ""),
		cfg:        cfg,
		logger:     log,
		limiters:   limiters,
		cache:      inmemoryCache,
	}
}

type cachedChart struct {
	series      dto.PriceSeries
	marketPrice float64
}

// GetPriceSeries fetches OHLCV history for the ticker. Bars with missing
// values are skipped; the resulting series is validated before it is
// returned or cached.
func (r *yahooFinanceRepository) GetPriceSeries(ctx context.Context, ticker, rng, interval string) (dto.PriceSeries, float64, error) {
	if rng == "" {
		rng = r.cfg.Yahoo.DefaultRange
	}
	if interval == "" {
		interval = r.cfg.Yahoo.DefaultInterval
	}

	cacheKey := fmt.Sprintf("yahoo:chart:%s:%s:%s", ticker, rng, interval)
	if hit, found := cache.GetTyped[cachedChart](r.cache, cacheKey); found {
		return hit.series, hit.marketPrice, nil
	}

	if err := r.limiters.GetLimiter("yahoo-chart").Wait(ctx); err != nil {
		return nil, 0, err
	}

	period1, period2 := rangeToUnix(rng)
	if period1 == 0 {
		return nil, 0, fmt.Errorf("invalid range: %s", rng)
	}
	queryParams := map[string]string{
		"period1":        fmt.Sprintf("%d", period1),
		"period2":        fmt.Sprintf("%d", period2),
		"interval":       interval,
		"includePrePost": "false",
		"events":         "div,split",
	}

	var chartResp dto.YahooChartResponse
	resp, err := r.httpClient.Get(ctx, "/"+ticker, queryParams, yahooHeaders(), &chartResp)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Yahoo chart API returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("ticker", ticker))
		return nil, 0, fmt.Errorf("yahoo chart api returned status: %d", resp.StatusCode)
	}
	if chartResp.Chart.Error != nil {
		return nil, 0, fmt.Errorf("yahoo chart api error: %v", chartResp.Chart.Error)
	}
	if len(chartResp.Chart.Result) == 0 {
		return nil, 0, fmt.Errorf("no chart data returned for symbol: %s", ticker)
	}

	result := chartResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, 0, fmt.Errorf("no quote data available for symbol: %s", ticker)
	}
	quote := result.Indicators.Quote[0]

	var series dto.PriceSeries
	for i, timestamp := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			continue
		}
		// Zero prices mark holes in Yahoo's data.
		if quote.Open[i] == 0 || quote.High[i] == 0 || quote.Low[i] == 0 || quote.Close[i] == 0 {
			continue
		}

		series = append(series, dto.PriceBar{
			Timestamp: time.Unix(timestamp, 0).UTC(),
			Open:      quote.Open[i],
			High:      quote.High[i],
			Low:       quote.Low[i],
			Close:     quote.Close[i],
			Volume:    quote.Volume[i],
		})
	}

	if len(series) == 0 {
		return nil, 0, fmt.Errorf("no valid OHLCV data found for symbol: %s", ticker)
	}
	if err := series.Validate(); err != nil {
		return nil, 0, fmt.Errorf("chart data for %s is unusable: %w", ticker, err)
	}

	marketPrice := result.Meta.RegularMarketPrice
	if marketPrice == 0 {
		marketPrice = series[len(series)-1].Close
	}

	r.cache.Set(cacheKey, cachedChart{series: series, marketPrice: marketPrice}, r.cfg.Cache.DefaultExpiration)
	return series, marketPrice, nil
}

func rangeToUnix(rng string) (int64, int64) {
	now := time.Now()
	switch rng {
	case "5d":
		return now.AddDate(0, 0, -5).Unix(), now.Unix()
	case "1mo":
		return now.AddDate(0, -1, 0).Unix(), now.Unix()
	case "3mo":
		return now.AddDate(0, -3, 0).Unix(), now.Unix()
	case "6mo":
		return now.AddDate(0, -6, 0).Unix(), now.Unix()
	case "1y":
		return now.AddDate(-1, 0, 0).Unix(), now.Unix()
	case "2y":
		return now.AddDate(-2, 0, 0).Unix(), now.Unix()
	case "5y":
		return now.AddDate(-5, 0, 0).Unix(), now.Unix()
	default:
		return 0, 0
	}
}
