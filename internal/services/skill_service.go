package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/skillswap/backend/internal/cache"
	"github.com/skillswap/backend/internal/models"
	pgrepo "github.com/skillswap/backend/internal/repositories/postgres"
	"github.com/skillswap/backend/internal/utils"
)

type SkillWithMentorCount struct {
	Skill       models.Skill `json:"skill"`
	MentorCount int64        `json:"mentor_count"`
}

type SkillService interface {
	// EnsureSkill returns the catalog entry for a title, creating it on
	// first use. Dedupe is case-insensitive by title.
	EnsureSkill(ctx context.Context, title, description, category string) (*models.Skill, error)
	GetSkill(ctx context.Context, id uint) (*models.Skill, error)
	ListSkills(ctx context.Context, offset, limit int) ([]models.Skill, error)
	ListSkillsWithMentorCount(ctx context.Context) ([]SkillWithMentorCount, error)

	AddUserSkill(ctx context.Context, userID, skillID uint, role models.SkillRole, proficiency string, tags []string) (*models.UserSkill, error)
	RemoveUserSkill(ctx context.Context, linkID, userID uint) error
	ListUserSkills(ctx context.Context, userID uint, role models.SkillRole) ([]models.UserSkill, error)
}

type skillService struct {
	skills pgrepo.SkillRepository
	links  pgrepo.UserSkillRepository
	cache  cache.Cache
}

// NewSkillService builds the skill catalog service. cache may be nil; it
// is only used to drop stale recommendation feeds after link mutations.
func NewSkillService(skills pgrepo.SkillRepository, links pgrepo.UserSkillRepository, c cache.Cache) SkillService {
	return &skillService{skills: skills, links: links, cache: c}
}

func (s *skillService) EnsureSkill(ctx context.Context, title, description, category string) (*models.Skill, error) {
	const op = "SkillService.EnsureSkill"

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}

	existing, err := s.skills.GetByTitle(ctx, title)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to look up skill", err)
	}

	skill := &models.Skill{
		Title:       title,
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.skills.Create(ctx, skill); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create skill", err)
	}
	return skill, nil
}

func (s *skillService) GetSkill(ctx context.Context, id uint) (*models.Skill, error) {
	const op = "SkillService.GetSkill"

	skill, err := s.skills.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "skill not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get skill", err)
	}
	return skill, nil
}

func (s *skillService) ListSkills(ctx context.Context, offset, limit int) ([]models.Skill, error) {
	const op = "SkillService.ListSkills"

	rows, err := s.skills.List(ctx, offset, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list skills", err)
	}
	return rows, nil
}

func (s *skillService) ListSkillsWithMentorCount(ctx context.Context) ([]SkillWithMentorCount, error) {
	const op = "SkillService.ListSkillsWithMentorCount"

	skills, err := s.skills.ListSkills(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list skills", err)
	}
	counts, err := s.skills.MentorCounts(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count mentors", err)
	}

	out := make([]SkillWithMentorCount, len(skills))
	for i, sk := range skills {
		out[i] = SkillWithMentorCount{Skill: sk, MentorCount: counts[sk.ID]}
	}
	return out, nil
}

// AddUserSkill is idempotent per (user, skill, canonical role): an
// existing link, under either spelling, is returned instead of duplicated.
func (s *skillService) AddUserSkill(ctx context.Context, userID, skillID uint, role models.SkillRole, proficiency string, tags []string) (*models.UserSkill, error) {
	const op = "SkillService.AddUserSkill"

	if userID == 0 || skillID == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and skill_id are required", nil)
	}
	canonical, ok := models.CanonicalRole(string(role))
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "role must be teach or learn", nil)
	}
	role = canonical
	if _, err := s.skills.GetByID(ctx, skillID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "skill not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get skill", err)
	}

	existing, err := s.links.Find(ctx, userID, skillID, role)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to look up user skill", err)
	}

	link := &models.UserSkill{
		UserID:      userID,
		SkillID:     skillID,
		SkillType:   string(role),
		Proficiency: proficiency,
		Tags:        tags,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create user skill", err)
	}
	s.invalidateRecommendations(ctx, userID)
	return link, nil
}

func (s *skillService) RemoveUserSkill(ctx context.Context, linkID, userID uint) error {
	const op = "SkillService.RemoveUserSkill"

	if err := s.links.Delete(ctx, linkID, userID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "user skill not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete user skill", err)
	}
	s.invalidateRecommendations(ctx, userID)
	return nil
}

func (s *skillService) ListUserSkills(ctx context.Context, userID uint, role models.SkillRole) ([]models.UserSkill, error) {
	const op = "SkillService.ListUserSkills"

	canonical, ok := models.CanonicalRole(string(role))
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "role must be teach or learn", nil)
	}
	rows, err := s.links.ListUserSkills(ctx, userID, canonical)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list user skills", err)
	}
	return rows, nil
}

// invalidateRecommendations drops the user's cached feed after a link
// mutation. Best effort: a stale feed expires by TTL anyway.
func (s *skillService) invalidateRecommendations(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, cache.RecommendFeedKey(userID))
}
