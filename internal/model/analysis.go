package model

import (
	"time"

	"gorm.io/datatypes"
)

// Analysis is one persisted recommendation with its supporting evidence.
// The intermediate products are stored as jsonb so historical runs can be
// rendered without recomputation.
type Analysis struct {
	ID           uint           `gorm:"primarykey"`
	Ticker       string         `gorm:"not null;index"`
	Timestamp    time.Time      `gorm:"not null;index"`
	MarketPrice  float64        `gorm:"not null"`
	Action       string         `gorm:"not null"`
	Composite    float64        `gorm:"not null"`
	Confidence   float64        `gorm:"not null"`
	Components   datatypes.JSON `gorm:"type:jsonb"`
	Signals      datatypes.JSON `gorm:"type:jsonb"`
	Fundamentals datatypes.JSON `gorm:"type:jsonb"`
	RiskProfile  datatypes.JSON `gorm:"type:jsonb"`
	Backtest     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}

type GetAnalysesParam struct {
	Ticker         string
	TimestampAfter time.Time
	Limit          int
}
