package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/skillswap/backend/internal/models"
	"github.com/skillswap/backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error)
	SetStatus(ctx context.Context, sessionID string, status models.SessionStatus, at time.Time) error
	SetCancelled(ctx context.Context, sessionID, reason string, at time.Time) error
	ListByLearner(ctx context.Context, learnerID uint, limit int) ([]models.Session, error)
	CountCompletedByMentor(ctx context.Context, mentorID uint, since time.Time) (int64, error)
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) SetStatus(ctx context.Context, sessionID string, status models.SessionStatus, at time.Time) error {
	set := bson.M{"status": status}
	if status == models.SessionCompleted {
		set["completed_at"] = at.UTC()
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) SetCancelled(ctx context.Context, sessionID, reason string, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{
			"status":        models.SessionCancelled,
			"cancelled_at":  at.UTC(),
			"cancel_reason": reason,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) ListByLearner(ctx context.Context, learnerID uint, limit int) ([]models.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"learner_id": learnerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Session
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountCompletedByMentor feeds the recommendation activity signal.
func (r *sessionRepo) CountCompletedByMentor(ctx context.Context, mentorID uint, since time.Time) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"mentor_id":  mentorID,
		"status":     models.SessionCompleted,
		"created_at": bson.M{"$gte": since.UTC()},
	})
}
