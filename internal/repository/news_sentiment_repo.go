package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/pkg/cache"
	"stock-advisor/pkg/httpclient"
	"stock-advisor/pkg/logger"
	"stock-advisor/pkg/ratelimit"
)

var positiveWords = []string{
	"beat", "beats", "surge", "surges", "soar", "soars", "rally", "record",
	"upgrade", "upgraded", "growth", "profit", "gain", "gains", "strong",
	"outperform", "bullish", "buy", "raises", "jump", "jumps",
}

var negativeWords = []string{
	"miss", "misses", "plunge", "plunges", "fall", "falls", "drop", "drops",
	"downgrade", "downgraded", "loss", "losses", "weak", "lawsuit", "probe",
	"underperform", "bearish", "sell", "cuts", "slump", "recall", "warns",
}

type newsSentimentRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
	limiters   *ratelimit.LimiterStore
	cache      cache.Cache
}

// NewNewsSentimentRepository scores recent headline coverage from the
// search endpoint's news feed.
func NewNewsSentimentRepository(cfg *config.Config, inmemoryCache cache.Cache, limiters *ratelimit.LimiterStore, log *logger.Logger) *newsSentimentRepository {
	return &newsSentimentRepository{
		httpClient: httpclient.New(cfg.Yahoo.SearchBaseURL, cfg.Yahoo.Timeout, ""),
		cfg:        cfg,
		logger:     log,
		limiters:   limiters,
		cache:      inmemoryCache,
	}
}

// GetSentiment is the ratio of positive to negative headline keywords,
// bounded in [-1,1]. No news or no keyword hits yields an unavailable
// score, never a neutral zero.
func (r *newsSentimentRepository) GetSentiment(ctx context.Context, ticker string) (dto.Float, error) {
	cacheKey := "yahoo:sentiment:" + ticker
	if hit, found := cache.GetTyped[dto.Float](r.cache, cacheKey); found {
		return hit, nil
	}

	if err := r.limiters.GetLimiter("yahoo-search").Wait(ctx); err != nil {
		return dto.Undefined(), err
	}

	queryParams := map[string]string{
		"q":           ticker,
		"newsCount":   "20",
		"quotesCount": "0",
	}

	var searchResp dto.YahooSearchResponse
	resp, err := r.httpClient.Get(ctx, "", queryParams, yahooHeaders(), &searchResp)
	if err != nil {
		return dto.Undefined(), fmt.Errorf("failed to fetch news: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Yahoo search API returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("ticker", ticker))
		return dto.Undefined(), fmt.Errorf("yahoo search api returned status: %d", resp.StatusCode)
	}

	score := ScoreHeadlines(searchResp.News)
	if score.Valid {
		r.cache.Set(cacheKey, score, r.cfg.Cache.DefaultExpiration)
	}
	return score, nil
}

// ScoreHeadlines counts lexicon hits across headline text.
func ScoreHeadlines(items []dto.YahooNewsItem) dto.Float {
	var positive, negative int
	for _, item := range items {
		title := strings.ToLower(item.Title)
		for _, w := range positiveWords {
			if containsWord(title, w) {
				positive++
			}
		}
		for _, w := range negativeWords {
			if containsWord(title, w) {
				negative++
			}
		}
	}

	total := positive + negative
	if total == 0 {
		return dto.Undefined()
	}
	return dto.ValidFloat(float64(positive-negative) / float64(total))
}

// containsWord matches on word boundaries so "gains" does not also count
// embedded fragments like "bargains".
func containsWord(text, word string) bool {
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if field == word {
			return true
		}
	}
	return false
}
