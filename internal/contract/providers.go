package contract

import (
	"context"

	"stock-advisor/internal/dto"
)

// PriceProvider supplies validated OHLCV history plus the latest market
// price for a ticker.
type PriceProvider interface {
	GetPriceSeries(ctx context.Context, ticker, rng, interval string) (dto.PriceSeries, float64, error)
}

// FundamentalsProvider supplies a financial-ratio snapshot. Ratios the
// source cannot provide come back unavailable, not zeroed.
type FundamentalsProvider interface {
	GetFundamentals(ctx context.Context, ticker string) (dto.FundamentalSnapshot, error)
}

// SentimentProvider scores recent news coverage for a ticker in [-1,1].
// No usable coverage yields an unavailable score.
type SentimentProvider interface {
	GetSentiment(ctx context.Context, ticker string) (dto.Float, error)
}
