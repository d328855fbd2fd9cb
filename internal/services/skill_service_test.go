package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/cache"
	"github.com/skillswap/backend/internal/models"
	"github.com/skillswap/backend/internal/utils"
)

type fakeCatalogRepo struct {
	skills map[uint]*models.Skill
	nextID uint
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{skills: map[uint]*models.Skill{}, nextID: 1}
}

func (f *fakeCatalogRepo) Create(ctx context.Context, s *models.Skill) error {
	s.ID = f.nextID
	f.nextID++
	cp := *s
	f.skills[s.ID] = &cp
	return nil
}

func (f *fakeCatalogRepo) GetByID(ctx context.Context, id uint) (*models.Skill, error) {
	s, ok := f.skills[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return s, nil
}

func (f *fakeCatalogRepo) GetByTitle(ctx context.Context, title string) (*models.Skill, error) {
	for _, s := range f.skills {
		if strings.EqualFold(s.Title, title) {
			return s, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeCatalogRepo) List(ctx context.Context, offset, limit int) ([]models.Skill, error) {
	return f.ListSkills(ctx)
}

func (f *fakeCatalogRepo) ListSkills(ctx context.Context) ([]models.Skill, error) {
	var out []models.Skill
	for _, s := range f.skills {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeCatalogRepo) MentorCounts(ctx context.Context) (map[uint]int64, error) {
	return map[uint]int64{}, nil
}

type fakeLinkRepo struct {
	links  map[uint]*models.UserSkill
	nextID uint
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: map[uint]*models.UserSkill{}, nextID: 1}
}

func (f *fakeLinkRepo) Create(ctx context.Context, link *models.UserSkill) error {
	link.ID = f.nextID
	f.nextID++
	cp := *link
	f.links[link.ID] = &cp
	return nil
}

func (f *fakeLinkRepo) Find(ctx context.Context, userID, skillID uint, role models.SkillRole) (*models.UserSkill, error) {
	want, _ := models.CanonicalRole(string(role))
	for _, l := range f.links {
		got, _ := l.Role()
		if l.UserID == userID && l.SkillID == skillID && got == want {
			return l, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeLinkRepo) ListUserSkills(ctx context.Context, userID uint, role models.SkillRole) ([]models.UserSkill, error) {
	want, _ := models.CanonicalRole(string(role))
	var out []models.UserSkill
	for _, l := range f.links {
		got, _ := l.Role()
		if l.UserID == userID && got == want {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) Delete(ctx context.Context, linkID, userID uint) error {
	l, ok := f.links[linkID]
	if !ok || l.UserID != userID {
		return utils.ErrNotFound
	}
	delete(f.links, linkID)
	return nil
}

// fakeCache records invalidations; reads always miss.
type fakeCache struct {
	deleted []string
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	return false, nil
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func newSkillFixture() (SkillService, *fakeCatalogRepo, *fakeLinkRepo, *fakeCache) {
	catalog := newFakeCatalogRepo()
	links := newFakeLinkRepo()
	c := &fakeCache{}
	return NewSkillService(catalog, links, c), catalog, links, c
}

func TestEnsureSkillCreatesOnce(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newSkillFixture()

	first, err := svc.EnsureSkill(ctx, "  Python Programming  ", "intro course", "Technology")
	require.NoError(t, err)
	assert.Equal(t, "Python Programming", first.Title)

	// case-insensitive dedupe
	second, err := svc.EnsureSkill(ctx, "python programming", "", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestEnsureSkillRequiresTitle(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newSkillFixture()

	_, err := svc.EnsureSkill(ctx, "   ", "", "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestAddUserSkillIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, links, _ := newSkillFixture()

	skill, err := svc.EnsureSkill(ctx, "Guitar", "", "Music")
	require.NoError(t, err)

	first, err := svc.AddUserSkill(ctx, 1, skill.ID, models.RoleTeach, "expert", []string{"acoustic"})
	require.NoError(t, err)
	assert.Equal(t, "teach", first.SkillType)

	// legacy alias resolves to the same link
	second, err := svc.AddUserSkill(ctx, 1, skill.ID, models.SkillRole("offer"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, links.links, 1)
}

func TestAddUserSkillValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newSkillFixture()

	_, err := svc.AddUserSkill(ctx, 0, 1, models.RoleTeach, "", nil)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.AddUserSkill(ctx, 1, 1, models.SkillRole("mentor"), "", nil)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.AddUserSkill(ctx, 1, 99, models.RoleTeach, "", nil)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestAddUserSkillInvalidatesFeed(t *testing.T) {
	ctx := context.Background()
	svc, _, _, c := newSkillFixture()

	skill, err := svc.EnsureSkill(ctx, "Guitar", "", "Music")
	require.NoError(t, err)

	_, err = svc.AddUserSkill(ctx, 7, skill.ID, models.RoleLearn, "", nil)
	require.NoError(t, err)
	assert.Contains(t, c.deleted, cache.RecommendFeedKey(7))
}

func TestRemoveUserSkill(t *testing.T) {
	ctx := context.Background()
	svc, _, _, c := newSkillFixture()

	skill, err := svc.EnsureSkill(ctx, "Guitar", "", "Music")
	require.NoError(t, err)
	link, err := svc.AddUserSkill(ctx, 1, skill.ID, models.RoleTeach, "", nil)
	require.NoError(t, err)

	// wrong owner
	err = svc.RemoveUserSkill(ctx, link.ID, 2)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	require.NoError(t, svc.RemoveUserSkill(ctx, link.ID, 1))
	assert.Contains(t, c.deleted, cache.RecommendFeedKey(1))

	err = svc.RemoveUserSkill(ctx, link.ID, 1)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestListUserSkillsAcceptsAliases(t *testing.T) {
	ctx := context.Background()
	svc, _, links, _ := newSkillFixture()

	skill, err := svc.EnsureSkill(ctx, "Guitar", "", "Music")
	require.NoError(t, err)

	// legacy row written directly, as migrated data would be
	require.NoError(t, links.Create(ctx, &models.UserSkill{
		UserID: 1, SkillID: skill.ID, SkillType: "need",
	}))

	rows, err := svc.ListUserSkills(ctx, 1, models.RoleLearn)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.ListUserSkills(ctx, 1, models.SkillRole("student"))
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}
