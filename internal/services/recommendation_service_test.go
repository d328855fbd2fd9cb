package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/cache"
	"github.com/skillswap/backend/internal/ml"
	"github.com/skillswap/backend/internal/models"
	"github.com/skillswap/backend/internal/utils"
)

type fakeCandidates struct {
	users []models.User
}

func (f *fakeCandidates) ListMentorCandidates(ctx context.Context, excludeUserID uint, skillID *uint) ([]models.User, error) {
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		if u.ID != excludeUserID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeRatings struct {
	ratings map[uint]*models.MentorRating
}

func (f *fakeRatings) GetMentorRating(ctx context.Context, mentorID uint) (*models.MentorRating, error) {
	return f.ratings[mentorID], nil
}

type fakeAuditRepo struct {
	saved []models.RecommendationRecord
}

func (f *fakeAuditRepo) SaveBatch(ctx context.Context, records []models.RecommendationRecord) error {
	f.saved = append(f.saved, records...)
	return nil
}

func (f *fakeAuditRepo) ListByLearner(ctx context.Context, learnerID uint, limit int) ([]models.RecommendationRecord, error) {
	return f.saved, nil
}

// cachedCache serves one canned feed and records writes.
type cannedCache struct {
	feed map[string][]models.Recommendation
	sets []string
}

func (c *cannedCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	feed, ok := c.feed[key]
	if !ok {
		return false, nil
	}
	*(dst.(*[]models.Recommendation)) = feed
	return true, nil
}

func (c *cannedCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	c.sets = append(c.sets, key)
	return nil
}

func (c *cannedCache) Del(ctx context.Context, keys ...string) error { return nil }

func newRecommendationFixture(t *testing.T) (RecommendationService, *fakeAuditRepo) {
	t.Helper()
	ctx := context.Background()

	catalog := newFakeCatalogRepo()
	links := newFakeLinkRepo()
	sessions := newFakeSessionRepo()

	python := &models.Skill{Title: "Python Programming", Description: "python programming and data science", Category: "Technology"}
	require.NoError(t, catalog.Create(ctx, python))
	guitar := &models.Skill{Title: "Guitar", Description: "acoustic guitar lessons", Category: "Music"}
	require.NoError(t, catalog.Create(ctx, guitar))

	addLink := func(userID, skillID uint, role string, skill *models.Skill) {
		require.NoError(t, links.Create(ctx, &models.UserSkill{
			UserID: userID, SkillID: skillID, SkillType: role, Skill: skill,
		}))
	}
	addLink(1, python.ID, "learn", python)
	addLink(2, python.ID, "teach", python)
	addLink(3, guitar.ID, "teach", guitar)

	providers := ml.Providers{
		Catalog: catalog,
		Links:   links,
		Candidates: &fakeCandidates{users: []models.User{
			{ID: 2, Name: "Ada", IsActive: true},
			{ID: 3, Name: "Brian", IsActive: true},
		}},
		Sessions: sessions,
		Ratings: &fakeRatings{ratings: map[uint]*models.MentorRating{
			2: {MentorID: 2, AverageRating: 4.5, TotalReviews: 12},
		}},
	}

	audit := &fakeAuditRepo{}
	return NewRecommendationService(providers, audit, nil), audit
}

func TestRecommendRanksAndAudits(t *testing.T) {
	ctx := context.Background()
	svc, audit := newRecommendationFixture(t)

	recs, err := svc.Recommend(ctx, 1, 5, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, uint(2), recs[0].MentorID)
	assert.Equal(t, 1, recs[0].Rank)
	assert.NotEmpty(t, recs[0].Explanation)
	assert.Contains(t, recs[0].Explanation, "Recommended because: ")

	require.Len(t, audit.saved, 2)
	assert.Equal(t, uint(1), audit.saved[0].LearnerID)
	assert.Equal(t, uint(2), audit.saved[0].MentorID)
	assert.Equal(t, 1, audit.saved[0].Rank)
	assert.Nil(t, audit.saved[0].SkillID)
}

func TestRecommendNoLearnerSkills(t *testing.T) {
	ctx := context.Background()
	svc, audit := newRecommendationFixture(t)

	recs, err := svc.Recommend(ctx, 42, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Empty(t, audit.saved)
}

func TestRecommendEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	svc := NewRecommendationService(ml.Providers{
		Catalog:    newFakeCatalogRepo(),
		Links:      newFakeLinkRepo(),
		Candidates: &fakeCandidates{},
		Sessions:   newFakeSessionRepo(),
		Ratings:    &fakeRatings{ratings: map[uint]*models.MentorRating{}},
	}, nil, nil)

	_, err := svc.Recommend(ctx, 1, 5, nil)
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.VocabularySize(ctx)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestRecommendServesCachedFeed(t *testing.T) {
	ctx := context.Background()

	c := &cannedCache{feed: map[string][]models.Recommendation{
		cache.RecommendFeedKey(1): {
			{MentorID: 9, Rank: 1},
			{MentorID: 8, Rank: 2},
			{MentorID: 7, Rank: 3},
		},
	}}
	// providers are never consulted on a cache hit
	svc := NewRecommendationService(ml.Providers{}, nil, c)

	recs, err := svc.Recommend(ctx, 1, 2, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, uint(9), recs[0].MentorID)
}

func TestRecommendPopulatesCache(t *testing.T) {
	ctx := context.Background()
	svcNoCache, _ := newRecommendationFixture(t)
	rs := svcNoCache.(*recommendationService)
	c := &cannedCache{feed: map[string][]models.Recommendation{}}
	rs.cache = c

	_, err := rs.Recommend(ctx, 1, 3, nil)
	require.NoError(t, err)
	assert.Contains(t, c.sets, cache.RecommendFeedKey(1))

	// skill-filtered feeds bypass the cache entirely
	skillID := uint(1)
	_, err = rs.Recommend(ctx, 1, 3, &skillID)
	require.NoError(t, err)
	assert.Len(t, c.sets, 1)
}

func TestUserSkillVectorService(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRecommendationFixture(t)

	vec, err := svc.UserSkillVector(ctx, 1, models.RoleLearn)
	require.NoError(t, err)
	assert.False(t, ml.IsZeroVector(vec))

	_, err = svc.UserSkillVector(ctx, 1, models.SkillRole("bogus"))
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}
