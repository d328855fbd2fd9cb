package ml

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/skillswap/backend/internal/models"
)

// Compatibility score policy. These defaults are a compatibility contract
// with existing clients; do not change them without versioning the API.
const (
	WeightSimilarity = 0.5
	WeightRating     = 0.3
	WeightActivity   = 0.2

	// DefaultRating is the neutral rating assumed for mentors with no
	// reviews yet, on the 0-5 scale.
	DefaultRating = 3.5

	// Activity saturates at this many completed sessions within the window.
	ActivityReferenceSessions = 10
	ActivityWindow            = 90 * 24 * time.Hour
)

var (
	ErrNotTrained   = errors.New("recommendation engine not trained; call Train first")
	ErrEmptyCatalog = errors.New("no skills in catalog for training")
)

// CatalogProvider returns the full skill catalog used for training.
type CatalogProvider interface {
	ListSkills(ctx context.Context) ([]models.Skill, error)
}

// LinkProvider returns a user's skill links for a role with the linked
// skill preloaded. Implementations accept legacy role aliases and collapse
// duplicate alias rows to one canonical row per (user, skill, role).
type LinkProvider interface {
	ListUserSkills(ctx context.Context, userID uint, role models.SkillRole) ([]models.UserSkill, error)
}

// CandidateProvider enumerates active users eligible as mentors,
// optionally restricted to those teaching a given skill.
type CandidateProvider interface {
	ListMentorCandidates(ctx context.Context, excludeUserID uint, skillID *uint) ([]models.User, error)
}

// ActivityProvider counts a mentor's completed sessions since a cutoff.
type ActivityProvider interface {
	CountCompletedByMentor(ctx context.Context, mentorID uint, since time.Time) (int64, error)
}

// RatingProvider returns a mentor's review rollup, (nil, nil) when the
// mentor has no reviews.
type RatingProvider interface {
	GetMentorRating(ctx context.Context, mentorID uint) (*models.MentorRating, error)
}

// Providers bundles the external collaborators the engine reads from.
type Providers struct {
	Catalog    CatalogProvider
	Links      LinkProvider
	Candidates CandidateProvider
	Sessions   ActivityProvider
	Ratings    RatingProvider
}

// RecommendationEngine ranks mentors for a learner by blending TF-IDF
// skill similarity with rating and activity signals. An engine is cheap
// and is expected to be built and trained per logical request; it holds
// no state beyond the fitted vocabulary.
type RecommendationEngine struct {
	vectorizer *SkillVectorizer
	providers  Providers
	now        func() time.Time
	trained    bool
}

func NewRecommendationEngine(p Providers) *RecommendationEngine {
	return &RecommendationEngine{
		vectorizer: NewSkillVectorizer(),
		providers:  p,
		now:        time.Now,
	}
}

// Train fits the vectorizer on the combined title/description/category
// text of every catalog entry. Callable repeatedly; each call replaces
// the vocabulary.
func (e *RecommendationEngine) Train(ctx context.Context) error {
	skills, err := e.providers.Catalog.ListSkills(ctx)
	if err != nil {
		return fmt.Errorf("load skill catalog: %w", err)
	}
	if len(skills) == 0 {
		return ErrEmptyCatalog
	}

	docs := make([]string, len(skills))
	for i, s := range skills {
		docs[i] = s.Document()
	}
	if err := e.vectorizer.Fit(docs); err != nil {
		return err
	}
	e.trained = true
	return nil
}

func (e *RecommendationEngine) Trained() bool { return e.trained }

// VocabularySize reports the fitted vocabulary size, 0 before training.
func (e *RecommendationEngine) VocabularySize() int {
	return e.vectorizer.VocabularySize()
}

// UserSkillVector returns the mean-aggregated vector of a user's skill
// links for the given role. A user with no links of that role gets the
// zero vector of vocabulary dimension.
func (e *RecommendationEngine) UserSkillVector(ctx context.Context, userID uint, role models.SkillRole) ([]float64, error) {
	if !e.trained {
		return nil, ErrNotTrained
	}

	links, err := e.providers.Links.ListUserSkills(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("load user skills: %w", err)
	}

	docs := make([]string, 0, len(links))
	for _, link := range links {
		if link.Skill == nil {
			continue
		}
		docs = append(docs, link.Skill.Document())
	}
	if len(docs) == 0 {
		return make([]float64, e.vectorizer.VocabularySize()), nil
	}

	vectors, err := e.vectorizer.Transform(docs)
	if err != nil {
		return nil, err
	}
	return AggregateVectors(vectors, AggregateMean)
}

// ActivityScore is the fraction of the activity reference count reached
// by the mentor's completed sessions within the trailing window, in [0,1].
func (e *RecommendationEngine) ActivityScore(ctx context.Context, mentorID uint) (float64, error) {
	since := e.now().Add(-ActivityWindow)
	count, err := e.providers.Sessions.CountCompletedByMentor(ctx, mentorID, since)
	if err != nil {
		return 0, fmt.Errorf("count completed sessions: %w", err)
	}
	score := float64(count) / ActivityReferenceSessions
	if score > 1 {
		score = 1
	}
	return score, nil
}

// RecommendMentors ranks the top-N mentors for a learner. A learner whose
// wants-to-learn vector is the zero vector gets an empty list without any
// candidate being contacted.
func (e *RecommendationEngine) RecommendMentors(ctx context.Context, learnerID uint, topN int, skillFilter *uint) ([]models.Recommendation, error) {
	if !e.trained {
		return nil, ErrNotTrained
	}
	if topN <= 0 {
		topN = 5
	}

	learnerVec, err := e.UserSkillVector(ctx, learnerID, models.RoleLearn)
	if err != nil {
		return nil, err
	}
	if IsZeroVector(learnerVec) {
		return []models.Recommendation{}, nil
	}

	candidates, err := e.providers.Candidates.ListMentorCandidates(ctx, learnerID, skillFilter)
	if err != nil {
		return nil, fmt.Errorf("list mentor candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []models.Recommendation{}, nil
	}

	recs := make([]models.Recommendation, 0, len(candidates))
	for _, mentor := range candidates {
		mentorVec, err := e.UserSkillVector(ctx, mentor.ID, models.RoleTeach)
		if err != nil {
			return nil, err
		}
		if IsZeroVector(mentorVec) {
			continue
		}

		sim := e.vectorizer.Similarity([][]float64{learnerVec}, [][]float64{mentorVec})[0][0]

		var rating *float64
		totalReviews := 0
		mr, err := e.providers.Ratings.GetMentorRating(ctx, mentor.ID)
		if err != nil {
			return nil, fmt.Errorf("load mentor rating: %w", err)
		}
		if mr != nil {
			r := mr.AverageRating
			rating = &r
			totalReviews = mr.TotalReviews
		}

		activity, err := e.ActivityScore(ctx, mentor.ID)
		if err != nil {
			return nil, err
		}

		recs = append(recs, models.Recommendation{
			MentorID:           mentor.ID,
			MentorName:         mentor.Name,
			MentorEmail:        mentor.Email,
			SimilarityScore:    sim,
			Rating:             rating,
			ActivityScore:      activity,
			CompatibilityScore: CompatibilityScore(sim, rating, activity),
			TotalReviews:       totalReviews,
		})
	}

	// Stable sort keeps enumeration order for equal scores.
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CompatibilityScore > recs[j].CompatibilityScore
	})
	if len(recs) > topN {
		recs = recs[:topN]
	}
	for i := range recs {
		recs[i].Rank = i + 1
	}
	return recs, nil
}

// CompatibilityScore blends similarity, rating, and activity into a
// single score in [0,1]. A nil rating falls back to the neutral default.
func CompatibilityScore(similarity float64, rating *float64, activity float64) float64 {
	r := DefaultRating
	if rating != nil {
		r = *rating
	}
	score := WeightSimilarity*similarity + WeightRating*(r/5.0) + WeightActivity*activity
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ExplainRecommendation renders a human-readable reason line from the
// score components. Pure; no lookups.
func ExplainRecommendation(similarity float64, rating *float64, activity, compatibility float64) string {
	var reasons []string
	switch {
	case similarity > 0.8:
		reasons = append(reasons, "excellent skill match")
	case similarity > 0.6:
		reasons = append(reasons, "good skill match")
	case similarity > 0.4:
		reasons = append(reasons, "decent skill match")
	}
	if rating != nil {
		switch {
		case *rating >= 4.5:
			reasons = append(reasons, "highly rated mentor")
		case *rating >= 4.0:
			reasons = append(reasons, "well-rated mentor")
		}
	}
	switch {
	case activity > 0.7:
		reasons = append(reasons, "very active")
	case activity > 0.4:
		reasons = append(reasons, "active")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "potential match")
	}
	return "Recommended because: " + strings.Join(reasons, ", ")
}
