package postgres

import (
	"context"
	"errors"

	"github.com/skillswap/backend/internal/models"
	"github.com/skillswap/backend/internal/utils"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	ListMentorCandidates(ctx context.Context, excludeUserID uint, skillID *uint) ([]models.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &u, err
}

// ListMentorCandidates returns all active users except the learner,
// optionally narrowed to users with a teach link for the given skill.
func (r *userRepo) ListMentorCandidates(ctx context.Context, excludeUserID uint, skillID *uint) ([]models.User, error) {
	q := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("users.id <> ? AND users.is_active = ?", excludeUserID, true)

	if skillID != nil {
		q = q.Joins("JOIN user_skills ON user_skills.user_id = users.id").
			Where("user_skills.skill_id = ? AND user_skills.skill_type IN ?", *skillID, models.RoleTeach.Aliases()).
			Distinct("users.*")
	}

	var rows []models.User
	err := q.Order("users.id ASC").Find(&rows).Error
	return rows, err
}
