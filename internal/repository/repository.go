package repository

import (
	"time"

	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"stock-advisor/config"
	"stock-advisor/internal/contract"
	"stock-advisor/pkg/cache"
	"stock-advisor/pkg/logger"
	"stock-advisor/pkg/ratelimit"
)

type Repository struct {
	PriceProvider        contract.PriceProvider
	FundamentalsProvider contract.FundamentalsProvider
	SentimentProvider    contract.SentimentProvider
	AnalysisRepo         AnalysisRepository
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, db *gorm.DB, log *logger.Logger) *Repository {
	// One limiter per upstream endpoint family, all at the configured
	// per-minute budget.
	perRequest := time.Minute / time.Duration(cfg.Yahoo.MaxRequestPerMinute)
	limiters := ratelimit.NewLimiterStore(rate.Every(perRequest), 1)

	return &Repository{
		PriceProvider:        NewYahooFinanceRepository(cfg, inmemoryCache, limiters, log),
		FundamentalsProvider: NewFundamentalsRepository(cfg, inmemoryCache, limiters, log),
		SentimentProvider:    NewNewsSentimentRepository(cfg, inmemoryCache, limiters, log),
		AnalysisRepo:         NewAnalysisRepository(db),
	}
}
