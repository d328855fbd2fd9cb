package postgres

import (
	"context"
	"errors"
	"sort"

	"github.com/skillswap/backend/internal/models"
	"github.com/skillswap/backend/internal/utils"
	"gorm.io/gorm"
)

type SkillRepository interface {
	Create(ctx context.Context, s *models.Skill) error
	GetByID(ctx context.Context, id uint) (*models.Skill, error)
	GetByTitle(ctx context.Context, title string) (*models.Skill, error)
	List(ctx context.Context, offset, limit int) ([]models.Skill, error)
	ListSkills(ctx context.Context) ([]models.Skill, error)
	MentorCounts(ctx context.Context) (map[uint]int64, error)
}

type skillRepo struct {
	db *gorm.DB
}

func NewSkillRepo(db *gorm.DB) SkillRepository {
	return &skillRepo{db: db}
}

func (r *skillRepo) Create(ctx context.Context, s *models.Skill) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *skillRepo) GetByID(ctx context.Context, id uint) (*models.Skill, error) {
	var s models.Skill
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

// GetByTitle matches case-insensitively; the catalog dedupes lazily
// created entries by title.
func (r *skillRepo) GetByTitle(ctx context.Context, title string) (*models.Skill, error) {
	var s models.Skill
	err := r.db.WithContext(ctx).
		Where("LOWER(title) = LOWER(?)", title).
		Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *skillRepo) List(ctx context.Context, offset, limit int) ([]models.Skill, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Skill
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *skillRepo) ListSkills(ctx context.Context) ([]models.Skill, error) {
	var rows []models.Skill
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *skillRepo) MentorCounts(ctx context.Context) (map[uint]int64, error) {
	type row struct {
		SkillID uint
		Count   int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.UserSkill{}).
		Select("skill_id, COUNT(DISTINCT user_id) AS count").
		Where("skill_type IN ?", models.RoleTeach.Aliases()).
		Group("skill_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.SkillID] = r.Count
	}
	return counts, nil
}

type UserSkillRepository interface {
	Create(ctx context.Context, link *models.UserSkill) error
	Find(ctx context.Context, userID, skillID uint, role models.SkillRole) (*models.UserSkill, error)
	ListUserSkills(ctx context.Context, userID uint, role models.SkillRole) ([]models.UserSkill, error)
	Delete(ctx context.Context, linkID, userID uint) error
}

type userSkillRepo struct {
	db *gorm.DB
}

func NewUserSkillRepo(db *gorm.DB) UserSkillRepository {
	return &userSkillRepo{db: db}
}

func (r *userSkillRepo) Create(ctx context.Context, link *models.UserSkill) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *userSkillRepo) Find(ctx context.Context, userID, skillID uint, role models.SkillRole) (*models.UserSkill, error) {
	var link models.UserSkill
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND skill_id = ? AND skill_type IN ?", userID, skillID, role.Aliases()).
		Order("id ASC").
		Take(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &link, err
}

// ListUserSkills accepts both canonical and legacy role spellings and
// collapses duplicate alias rows for the same (user, skill) to one row,
// preferring the canonical spelling, then the lowest id.
func (r *userSkillRepo) ListUserSkills(ctx context.Context, userID uint, role models.SkillRole) ([]models.UserSkill, error) {
	var rows []models.UserSkill
	err := r.db.WithContext(ctx).
		Preload("Skill").
		Where("user_id = ? AND skill_type IN ?", userID, role.Aliases()).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return CollapseAliasLinks(rows), nil
}

func (r *userSkillRepo) Delete(ctx context.Context, linkID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", linkID, userID).
		Delete(&models.UserSkill{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// CollapseAliasLinks keeps a single row per (user, skill, canonical role).
// Canonical spellings win over legacy aliases; among equal spellings the
// lowest id wins. Rows with an unknown skill_type are dropped.
func CollapseAliasLinks(rows []models.UserSkill) []models.UserSkill {
	type key struct {
		userID  uint
		skillID uint
		role    models.SkillRole
	}
	best := make(map[key]models.UserSkill)
	order := make([]key, 0, len(rows))

	for _, row := range rows {
		role, ok := row.Role()
		if !ok {
			continue
		}
		k := key{row.UserID, row.SkillID, role}
		cur, exists := best[k]
		if !exists {
			best[k] = row
			order = append(order, k)
			continue
		}
		curCanonical := cur.SkillType == string(role)
		rowCanonical := row.SkillType == string(role)
		if (rowCanonical && !curCanonical) ||
			(rowCanonical == curCanonical && row.ID < cur.ID) {
			best[k] = row
		}
	}

	out := make([]models.UserSkill, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
