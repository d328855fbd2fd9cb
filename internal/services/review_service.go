package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/skillswap/backend/internal/cache"
	"github.com/skillswap/backend/internal/models"
	mongorepo "github.com/skillswap/backend/internal/repositories/mongo"
	pgrepo "github.com/skillswap/backend/internal/repositories/postgres"
	"github.com/skillswap/backend/internal/utils"
	"github.com/skillswap/backend/internal/workers"
)

// ReviewService accepts session reviews and exposes mentor rating
// rollups. Submissions are published to a stream; the review worker pool
// folds them into the rollup asynchronously.
type ReviewService interface {
	SubmitReview(ctx context.Context, learnerID uint, sessionID string, rating float64, comment string) error
	MentorRating(ctx context.Context, mentorID uint) (*models.MentorRating, error)
}

type reviewService struct {
	sessions mongorepo.SessionRepository
	ratings  pgrepo.MentorRatingRepository
	rdb      *redis.Client
}

func NewReviewService(sessions mongorepo.SessionRepository, ratings pgrepo.MentorRatingRepository, rdb *redis.Client) ReviewService {
	return &reviewService{sessions: sessions, ratings: ratings, rdb: rdb}
}

func (s *reviewService) SubmitReview(ctx context.Context, learnerID uint, sessionID string, rating float64, comment string) error {
	const op = "ReviewService.SubmitReview"

	if sessionID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	if rating < 1 || rating > 5 {
		return utils.E(utils.CodeInvalidArgument, op, "rating must be between 1 and 5", nil)
	}

	sess, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	if sess.LearnerID != learnerID {
		return utils.E(utils.CodeForbidden, op, "only the learner can review a session", nil)
	}
	if sess.Status != models.SessionCompleted {
		return utils.E(utils.CodeConflict, op, "session is not completed", nil)
	}

	// one review per session, enforced before the event is published
	ok, err := s.rdb.SetNX(ctx, cache.ReviewSlotKey(sessionID), learnerID, 0).Result()
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to reserve review slot", err)
	}
	if !ok {
		return utils.E(utils.CodeConflict, op, "session already reviewed", nil)
	}

	err = s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: workers.ReviewStream,
		Values: map[string]any{
			"session_id": sessionID,
			"learner_id": strconv.FormatUint(uint64(learnerID), 10),
			"mentor_id":  strconv.FormatUint(uint64(sess.MentorID), 10),
			"rating":     strconv.FormatFloat(rating, 'f', -1, 64),
			"comment":    comment,
		},
	}).Err()
	if err != nil {
		// release the slot so the client can retry
		_ = s.rdb.Del(ctx, cache.ReviewSlotKey(sessionID)).Err()
		return utils.E(utils.CodeInternal, op, "failed to publish review", err)
	}
	return nil
}

func (s *reviewService) MentorRating(ctx context.Context, mentorID uint) (*models.MentorRating, error) {
	const op = "ReviewService.MentorRating"

	mr, err := s.ratings.GetMentorRating(ctx, mentorID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to get mentor rating", err)
	}
	if mr == nil {
		return &models.MentorRating{MentorID: mentorID}, nil
	}
	return mr, nil
}
