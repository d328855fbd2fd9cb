package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/models"
	mongorepo "github.com/skillswap/backend/internal/repositories/mongo"
	pgrepo "github.com/skillswap/backend/internal/repositories/postgres"
	"github.com/skillswap/backend/internal/utils"
)

// SessionRequest is the payload for booking a new learning session.
type SessionRequest struct {
	LearnerID   uint       `json:"learner_id"`
	MentorID    uint       `json:"mentor_id"`
	SkillID     uint       `json:"skill_id"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// SessionService drives the session lifecycle and keeps the token ledger
// in step with it: confirming a session charges the learner, completing
// it pays the mentor, cancelling a confirmed session refunds the learner.
type SessionService interface {
	Request(ctx context.Context, req SessionRequest) (*models.Session, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Confirm(ctx context.Context, sessionID string, actorID uint) (*models.Session, error)
	Complete(ctx context.Context, sessionID string, actorID uint) (*models.Session, error)
	Cancel(ctx context.Context, sessionID string, actorID uint, reason string) (*models.Session, error)
	ListByLearner(ctx context.Context, learnerID uint, limit int) ([]models.Session, error)
}

type sessionService struct {
	sessions mongorepo.SessionRepository
	users    pgrepo.UserRepository
	skills   pgrepo.SkillRepository
	tokens   TokenService
	now      func() time.Time
}

func NewSessionService(
	sessions mongorepo.SessionRepository,
	users pgrepo.UserRepository,
	skills pgrepo.SkillRepository,
	tokens TokenService,
) SessionService {
	return &sessionService{
		sessions: sessions,
		users:    users,
		skills:   skills,
		tokens:   tokens,
		now:      time.Now,
	}
}

func (s *sessionService) Request(ctx context.Context, req SessionRequest) (*models.Session, error) {
	const op = "SessionService.Request"

	if req.LearnerID == req.MentorID {
		return nil, utils.E(utils.CodeInvalidArgument, op, "learner and mentor must be different users", nil)
	}

	mentor, err := s.users.GetByID(ctx, req.MentorID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "mentor not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load mentor", err)
	}
	if !mentor.IsActive {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mentor account is inactive", nil)
	}
	if _, err := s.skills.GetByID(ctx, req.SkillID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "skill not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load skill", err)
	}

	// Booking only needs eligibility here; tokens are deducted at confirm.
	eligibility, err := s.tokens.CanBook(ctx, req.LearnerID)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanBook {
		return nil, utils.E(utils.CodeInvalidArgument, op,
			fmt.Sprintf("insufficient tokens to book: balance %d, required %d",
				eligibility.CurrentBalance, eligibility.RequiredBalance), nil)
	}

	sess := &models.Session{
		SessionID:   uuid.NewString(),
		LearnerID:   req.LearnerID,
		MentorID:    req.MentorID,
		SkillID:     req.SkillID,
		Status:      models.SessionPending,
		ScheduledAt: req.ScheduledAt,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return sess, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	const op = "SessionService.Get"

	sess, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	return sess, nil
}

// Confirm moves a pending session to confirmed and deducts the session
// cost from the learner's wallet. A retried confirm that already paid
// (the ledger reports a duplicate deduction) still advances the status.
func (s *sessionService) Confirm(ctx context.Context, sessionID string, actorID uint) (*models.Session, error) {
	const op = "SessionService.Confirm"

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if actorID != sess.MentorID {
		return nil, utils.E(utils.CodeForbidden, op, "only the mentor can confirm a session", nil)
	}
	if sess.Status != models.SessionPending {
		return nil, utils.E(utils.CodeConflict, op,
			fmt.Sprintf("session is %s, expected %s", sess.Status, models.SessionPending), nil)
	}

	if _, err := s.tokens.Spend(ctx, sess.LearnerID, sessionID, 0); err != nil {
		if !utils.IsCode(err, utils.CodeConflict) {
			return nil, err
		}
	}

	if err := s.sessions.SetStatus(ctx, sessionID, models.SessionConfirmed, s.now()); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update session status", err)
	}
	sess.Status = models.SessionConfirmed
	return sess, nil
}

// Complete moves a confirmed session to completed and credits the
// mentor's wallet. Like Confirm, a duplicate award on retry is treated
// as already-paid.
func (s *sessionService) Complete(ctx context.Context, sessionID string, actorID uint) (*models.Session, error) {
	const op = "SessionService.Complete"

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if actorID != sess.LearnerID && actorID != sess.MentorID {
		return nil, utils.E(utils.CodeForbidden, op, "only a session participant can complete it", nil)
	}
	if sess.Status != models.SessionConfirmed {
		return nil, utils.E(utils.CodeConflict, op,
			fmt.Sprintf("session is %s, expected %s", sess.Status, models.SessionConfirmed), nil)
	}

	if _, err := s.tokens.Earn(ctx, sess.MentorID, sessionID, 0); err != nil {
		if !utils.IsCode(err, utils.CodeConflict) {
			return nil, err
		}
	}

	completedAt := s.now()
	if err := s.sessions.SetStatus(ctx, sessionID, models.SessionCompleted, completedAt); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update session status", err)
	}
	sess.Status = models.SessionCompleted
	at := completedAt.UTC()
	sess.CompletedAt = &at
	return sess, nil
}

// Cancel aborts a pending or confirmed session. A confirmed session was
// already paid for, so the learner is refunded the original deduction.
func (s *sessionService) Cancel(ctx context.Context, sessionID string, actorID uint, reason string) (*models.Session, error) {
	const op = "SessionService.Cancel"

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if actorID != sess.LearnerID && actorID != sess.MentorID {
		return nil, utils.E(utils.CodeForbidden, op, "only a session participant can cancel it", nil)
	}
	switch sess.Status {
	case models.SessionPending:
		// no tokens moved yet, nothing to refund
	case models.SessionConfirmed:
		if reason == "" {
			reason = "session cancelled"
		}
		if _, err := s.tokens.RefundForUser(ctx, sess.LearnerID, sessionID, reason); err != nil {
			if !utils.IsCode(err, utils.CodeConflict) {
				return nil, err
			}
		}
	default:
		return nil, utils.E(utils.CodeConflict, op,
			fmt.Sprintf("session is %s and can no longer be cancelled", sess.Status), nil)
	}

	cancelledAt := s.now()
	if err := s.sessions.SetCancelled(ctx, sessionID, reason, cancelledAt); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to cancel session", err)
	}
	sess.Status = models.SessionCancelled
	at := cancelledAt.UTC()
	sess.CancelledAt = &at
	sess.CancelReason = reason
	return sess, nil
}

func (s *sessionService) ListByLearner(ctx context.Context, learnerID uint, limit int) ([]models.Session, error) {
	const op = "SessionService.ListByLearner"

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	sessions, err := s.sessions.ListByLearner(ctx, learnerID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return sessions, nil
}
