package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/skillswap/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MentorRatingRepository interface {
	// GetMentorRating returns (nil, nil) when the mentor has no reviews;
	// the recommendation engine treats absence as the unrated default.
	GetMentorRating(ctx context.Context, mentorID uint) (*models.MentorRating, error)
	// FoldReview incorporates one review into the mentor's rollup as a
	// single statement, safe under concurrent consumers.
	FoldReview(ctx context.Context, mentorID uint, rating float64) error
}

type mentorRatingRepo struct {
	db *gorm.DB
}

func NewMentorRatingRepo(db *gorm.DB) MentorRatingRepository {
	return &mentorRatingRepo{db: db}
}

func (r *mentorRatingRepo) GetMentorRating(ctx context.Context, mentorID uint) (*models.MentorRating, error) {
	var mr models.MentorRating
	err := r.db.WithContext(ctx).Where("mentor_id = ?", mentorID).Take(&mr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mr, nil
}

func (r *mentorRatingRepo) FoldReview(ctx context.Context, mentorID uint, rating float64) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "mentor_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"average_rating": gorm.Expr(
					"(mentor_ratings.average_rating * mentor_ratings.total_reviews + ?) / (mentor_ratings.total_reviews + 1)",
					rating),
				"total_reviews": gorm.Expr("mentor_ratings.total_reviews + 1"),
				"updated_at":    now,
			}),
		}).
		Create(&models.MentorRating{
			MentorID:      mentorID,
			AverageRating: rating,
			TotalReviews:  1,
			UpdatedAt:     now,
		}).Error
}
