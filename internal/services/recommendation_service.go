package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/skillswap/backend/internal/cache"
	"github.com/skillswap/backend/internal/ml"
	"github.com/skillswap/backend/internal/models"
	pgrepo "github.com/skillswap/backend/internal/repositories/postgres"
	"github.com/skillswap/backend/internal/utils"
	"gorm.io/datatypes"
)

const (
	recommendationCacheTTL = 10 * time.Minute
	// The cache stores the full ranked list up to this size and serves
	// smaller top-N requests by slicing.
	recommendationCacheMax = 10
)

type RecommendationService interface {
	// Recommend returns the top-N ranked mentors for a learner,
	// optionally restricted to mentors teaching skillFilter.
	Recommend(ctx context.Context, learnerID uint, topN int, skillFilter *uint) ([]models.Recommendation, error)
	// Refresh drops the learner's cached feed so the next request
	// recomputes against the current catalog.
	Refresh(ctx context.Context, learnerID uint) error
	// VocabularySize trains a throwaway engine and reports the fitted
	// vocabulary size; used for readiness reporting.
	VocabularySize(ctx context.Context) (int, error)
	UserSkillVector(ctx context.Context, userID uint, role models.SkillRole) ([]float64, error)
}

type recommendationService struct {
	providers ml.Providers
	audit     pgrepo.RecommendationRepository
	cache     cache.Cache
}

// NewRecommendationService wires the engine's data providers. There is no
// long-lived trained engine: each logical request trains a fresh one, so
// catalog changes are picked up without hidden global state. audit and
// cache may be nil.
func NewRecommendationService(p ml.Providers, audit pgrepo.RecommendationRepository, c cache.Cache) RecommendationService {
	return &recommendationService{providers: p, audit: audit, cache: c}
}

func (s *recommendationService) Recommend(ctx context.Context, learnerID uint, topN int, skillFilter *uint) ([]models.Recommendation, error) {
	const op = "RecommendationService.Recommend"

	if learnerID == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "learner_id is required", nil)
	}
	if topN <= 0 {
		topN = 5
	}

	// Only the unfiltered feed is cached; filtered requests are rare and
	// always computed fresh.
	cacheable := skillFilter == nil && topN <= recommendationCacheMax && s.cache != nil
	if cacheable {
		var cached []models.Recommendation
		if hit, err := s.cache.GetJSON(ctx, cache.RecommendFeedKey(learnerID), &cached); err == nil && hit {
			if len(cached) > topN {
				cached = cached[:topN]
			}
			return cached, nil
		}
	}

	engine := ml.NewRecommendationEngine(s.providers)
	if err := engine.Train(ctx); err != nil {
		return nil, s.mapEngineError(op, err)
	}

	fetchN := topN
	if cacheable {
		fetchN = recommendationCacheMax
	}
	recs, err := engine.RecommendMentors(ctx, learnerID, fetchN, skillFilter)
	if err != nil {
		return nil, s.mapEngineError(op, err)
	}
	for i := range recs {
		recs[i].Explanation = ml.ExplainRecommendation(
			recs[i].SimilarityScore, recs[i].Rating, recs[i].ActivityScore, recs[i].CompatibilityScore)
	}

	if err := s.persistAudit(ctx, learnerID, skillFilter, recs); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record recommendations", err)
	}

	if cacheable {
		_ = s.cache.SetJSON(ctx, cache.RecommendFeedKey(learnerID), recs, recommendationCacheTTL)
	}
	if len(recs) > topN {
		recs = recs[:topN]
	}
	return recs, nil
}

func (s *recommendationService) Refresh(ctx context.Context, learnerID uint) error {
	const op = "RecommendationService.Refresh"

	if learnerID == 0 {
		return utils.E(utils.CodeInvalidArgument, op, "learner_id is required", nil)
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Del(ctx, cache.RecommendFeedKey(learnerID)); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to drop cached recommendations", err)
	}
	return nil
}

func (s *recommendationService) VocabularySize(ctx context.Context) (int, error) {
	const op = "RecommendationService.VocabularySize"

	engine := ml.NewRecommendationEngine(s.providers)
	if err := engine.Train(ctx); err != nil {
		return 0, s.mapEngineError(op, err)
	}
	return engine.VocabularySize(), nil
}

func (s *recommendationService) UserSkillVector(ctx context.Context, userID uint, role models.SkillRole) ([]float64, error) {
	const op = "RecommendationService.UserSkillVector"

	if !role.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "role must be teach or learn", nil)
	}
	engine := ml.NewRecommendationEngine(s.providers)
	if err := engine.Train(ctx); err != nil {
		return nil, s.mapEngineError(op, err)
	}
	vec, err := engine.UserSkillVector(ctx, userID, role)
	if err != nil {
		return nil, s.mapEngineError(op, err)
	}
	return vec, nil
}

func (s *recommendationService) persistAudit(ctx context.Context, learnerID uint, skillFilter *uint, recs []models.Recommendation) error {
	if s.audit == nil || len(recs) == 0 {
		return nil
	}
	records := make([]models.RecommendationRecord, len(recs))
	for i, rec := range recs {
		components, _ := json.Marshal(map[string]any{
			"similarity": rec.SimilarityScore,
			"rating":     rec.Rating,
			"activity":   rec.ActivityScore,
		})
		records[i] = models.RecommendationRecord{
			LearnerID:          learnerID,
			MentorID:           rec.MentorID,
			SkillID:            skillFilter,
			SimilarityScore:    rec.SimilarityScore,
			CompatibilityScore: rec.CompatibilityScore,
			Rank:               rec.Rank,
			Components:         datatypes.JSON(components),
			CreatedAt:          time.Now().UTC(),
		}
	}
	return s.audit.SaveBatch(ctx, records)
}

// mapEngineError translates engine failures: untrained use and an empty
// catalog are rejected requests, everything else is internal.
func (s *recommendationService) mapEngineError(op string, err error) error {
	if errors.Is(err, ml.ErrNotTrained) || errors.Is(err, ml.ErrEmptyCorpus) {
		return utils.E(utils.CodeInvalidArgument, op, err.Error(), err)
	}
	if errors.Is(err, ml.ErrEmptyCatalog) {
		return utils.E(utils.CodeInvalidArgument, op, "skill catalog is empty", err)
	}
	return utils.E(utils.CodeInternal, op, "recommendation engine failure", err)
}
