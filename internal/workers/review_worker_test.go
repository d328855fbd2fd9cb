package workers

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/models"
)

// fakeRatingRepo folds under a mutex, like the single-statement upsert
// the real repository issues.
type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[uint]*models.MentorRating
}

func (f *fakeRatingRepo) GetMentorRating(ctx context.Context, mentorID uint) (*models.MentorRating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ratings[mentorID], nil
}

func (f *fakeRatingRepo) FoldReview(ctx context.Context, mentorID uint, rating float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	mr := f.ratings[mentorID]
	if mr == nil {
		f.ratings[mentorID] = &models.MentorRating{MentorID: mentorID, AverageRating: rating, TotalReviews: 1}
		return nil
	}
	sum := mr.AverageRating*float64(mr.TotalReviews) + rating
	mr.TotalReviews++
	mr.AverageRating = sum / float64(mr.TotalReviews)
	return nil
}

func msg(values map[string]any) redis.XMessage {
	return redis.XMessage{ID: "1-0", Values: values}
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHandleMsgFirstReview(t *testing.T) {
	repo := &fakeRatingRepo{ratings: map[uint]*models.MentorRating{}}
	p := &ReviewWorkerPool{Ratings: repo, Logger: newTestLogger()}

	p.handleMsg(context.Background(), msg(map[string]any{
		"mentor_id": "7",
		"rating":    "4",
	}))

	mr := repo.ratings[7]
	require.NotNil(t, mr)
	assert.Equal(t, 1, mr.TotalReviews)
	assert.InDelta(t, 4.0, mr.AverageRating, 1e-12)
}

func TestHandleMsgRunningAverage(t *testing.T) {
	repo := &fakeRatingRepo{ratings: map[uint]*models.MentorRating{
		7: {MentorID: 7, AverageRating: 5.0, TotalReviews: 1},
	}}
	p := &ReviewWorkerPool{Ratings: repo, Logger: newTestLogger()}

	p.handleMsg(context.Background(), msg(map[string]any{
		"mentor_id": "7",
		"rating":    "3",
	}))

	mr := repo.ratings[7]
	require.NotNil(t, mr)
	assert.Equal(t, 2, mr.TotalReviews)
	assert.InDelta(t, 4.0, mr.AverageRating, 1e-12)
}

// Concurrent consumers folding reviews for the same mentor must not lose
// updates: each fold is one atomic repository call.
func TestHandleMsgConcurrentFolds(t *testing.T) {
	repo := &fakeRatingRepo{ratings: map[uint]*models.MentorRating{}}
	p := &ReviewWorkerPool{Ratings: repo, Logger: newTestLogger()}

	ratings := []string{"5", "3", "4", "4"}
	var wg sync.WaitGroup
	for _, r := range ratings {
		wg.Add(1)
		go func(rating string) {
			defer wg.Done()
			p.handleMsg(context.Background(), msg(map[string]any{
				"mentor_id": "7",
				"rating":    rating,
			}))
		}(r)
	}
	wg.Wait()

	mr := repo.ratings[7]
	require.NotNil(t, mr)
	assert.Equal(t, 4, mr.TotalReviews)
	assert.InDelta(t, 4.0, mr.AverageRating, 1e-12)
}

func TestHandleMsgRejectsBadPayloads(t *testing.T) {
	repo := &fakeRatingRepo{ratings: map[uint]*models.MentorRating{}}
	p := &ReviewWorkerPool{Ratings: repo, Logger: newTestLogger()}

	for _, values := range []map[string]any{
		{"rating": "4"},                     // no mentor
		{"mentor_id": "7"},                  // no rating
		{"mentor_id": "7", "rating": "0"},   // below range
		{"mentor_id": "7", "rating": "5.5"}, // above range
		{"mentor_id": "x", "rating": "4"},
	} {
		p.handleMsg(context.Background(), msg(values))
	}
	assert.Empty(t, repo.ratings)
}
