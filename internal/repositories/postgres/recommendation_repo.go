package postgres

import (
	"context"

	"github.com/skillswap/backend/internal/models"
	"gorm.io/gorm"
)

type RecommendationRepository interface {
	SaveBatch(ctx context.Context, records []models.RecommendationRecord) error
	ListByLearner(ctx context.Context, learnerID uint, limit int) ([]models.RecommendationRecord, error)
}

type recommendationRepo struct {
	db *gorm.DB
}

func NewRecommendationRepo(db *gorm.DB) RecommendationRepository {
	return &recommendationRepo{db: db}
}

func (r *recommendationRepo) SaveBatch(ctx context.Context, records []models.RecommendationRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

func (r *recommendationRepo) ListByLearner(ctx context.Context, learnerID uint, limit int) ([]models.RecommendationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.RecommendationRecord
	err := r.db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("created_at DESC, rank ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
