package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"stock-advisor/internal/model"
)

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *model.Analysis) error
	GetLatest(ctx context.Context, param model.GetAnalysesParam) ([]model.Analysis, error)
	DeleteOlderThan(ctx context.Context, date time.Time) (int64, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, analysis *model.Analysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *analysisRepository) GetLatest(ctx context.Context, param model.GetAnalysesParam) ([]model.Analysis, error) {
	query := r.db.WithContext(ctx).Order("timestamp DESC")

	if param.Ticker != "" {
		query = query.Where("ticker = ?", param.Ticker)
	}
	if !param.TimestampAfter.IsZero() {
		query = query.Where("timestamp >= ?", param.TimestampAfter)
	}
	if param.Limit > 0 {
		query = query.Limit(param.Limit)
	}

	var analyses []model.Analysis
	if err := query.Find(&analyses).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return analyses, nil
}

func (r *analysisRepository) DeleteOlderThan(ctx context.Context, date time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("timestamp < ?", date).Delete(&model.Analysis{})
	return result.RowsAffected, result.Error
}
