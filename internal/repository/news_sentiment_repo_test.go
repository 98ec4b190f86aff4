package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stock-advisor/internal/dto"
)

func headlines(titles ...string) []dto.YahooNewsItem {
	items := make([]dto.YahooNewsItem, 0, len(titles))
	for _, title := range titles {
		items = append(items, dto.YahooNewsItem{Title: title})
	}
	return items
}

func TestScoreHeadlines(t *testing.T) {
	tests := []struct {
		name      string
		items     []dto.YahooNewsItem
		wantValid bool
		want      float64
	}{
		{
			name:      "all positive coverage",
			items:     headlines("Shares surge after earnings beat", "Analyst upgrade fuels rally"),
			wantValid: true,
			want:      1,
		},
		{
			name:      "all negative coverage",
			items:     headlines("Shares plunge after earnings miss", "Regulator opens probe"),
			wantValid: true,
			want:      -1,
		},
		{
			name:      "mixed coverage nets out",
			items:     headlines("Record growth but lawsuit looms", "Stock falls on weak guidance"),
			wantValid: true,
			want:      (2.0 - 3.0) / 5.0,
		},
		{
			name:      "no lexicon hits stays unavailable",
			items:     headlines("Company announces annual shareholder meeting"),
			wantValid: false,
		},
		{
			name:      "no news stays unavailable",
			items:     nil,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreHeadlines(tt.items)
			assert.Equal(t, tt.wantValid, got.Valid)
			if tt.wantValid {
				assert.InDelta(t, tt.want, got.Value, 1e-9)
			}
		})
	}
}

func TestContainsWord_MatchesWholeWordsOnly(t *testing.T) {
	assert.True(t, containsWord("shares gain on upgrade", "gain"))
	assert.False(t, containsWord("bargains abound this quarter", "gains"))
	assert.False(t, containsWord("selloff continues", "sell"))
}
