package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/models"
	"github.com/skillswap/backend/internal/utils"
)

type fakeSessionRepo struct {
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.Session{}}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *models.Session) error {
	cp := *s
	f.sessions[s.SessionID] = &cp
	return nil
}

func (f *fakeSessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) SetStatus(ctx context.Context, sessionID string, status models.SessionStatus, at time.Time) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Status = status
	if status == models.SessionCompleted {
		t := at.UTC()
		s.CompletedAt = &t
	}
	return nil
}

func (f *fakeSessionRepo) SetCancelled(ctx context.Context, sessionID, reason string, at time.Time) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	t := at.UTC()
	s.Status = models.SessionCancelled
	s.CancelledAt = &t
	s.CancelReason = reason
	return nil
}

func (f *fakeSessionRepo) ListByLearner(ctx context.Context, learnerID uint, limit int) ([]models.Session, error) {
	var out []models.Session
	for _, s := range f.sessions {
		if s.LearnerID == learnerID {
			out = append(out, *s)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) CountCompletedByMentor(ctx context.Context, mentorID uint, since time.Time) (int64, error) {
	var n int64
	for _, s := range f.sessions {
		if s.MentorID == mentorID && s.Status == models.SessionCompleted {
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) ListMentorCandidates(ctx context.Context, excludeUserID uint, skillID *uint) ([]models.User, error) {
	return nil, nil
}

type fakeSkillRepo struct {
	skills map[uint]*models.Skill
}

func (f *fakeSkillRepo) Create(ctx context.Context, s *models.Skill) error { return nil }

func (f *fakeSkillRepo) GetByID(ctx context.Context, id uint) (*models.Skill, error) {
	s, ok := f.skills[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return s, nil
}

func (f *fakeSkillRepo) GetByTitle(ctx context.Context, title string) (*models.Skill, error) {
	return nil, utils.ErrNotFound
}

func (f *fakeSkillRepo) List(ctx context.Context, offset, limit int) ([]models.Skill, error) {
	return nil, nil
}

func (f *fakeSkillRepo) ListSkills(ctx context.Context) ([]models.Skill, error) { return nil, nil }

func (f *fakeSkillRepo) MentorCounts(ctx context.Context) (map[uint]int64, error) {
	return map[uint]int64{}, nil
}

func newSessionFixture(t *testing.T) (SessionService, TokenService, *fakeSessionRepo) {
	t.Helper()
	ctx := context.Background()

	_, tokens := newTokenFixture()
	_, err := tokens.InitializeWallet(ctx, 1) // learner
	require.NoError(t, err)
	_, err = tokens.InitializeWallet(ctx, 2) // mentor
	require.NoError(t, err)

	sessions := newFakeSessionRepo()
	users := &fakeUserRepo{users: map[uint]*models.User{
		1: {ID: 1, Name: "Lea", IsActive: true},
		2: {ID: 2, Name: "Max", IsActive: true},
		3: {ID: 3, Name: "Ida", IsActive: false},
	}}
	skills := &fakeSkillRepo{skills: map[uint]*models.Skill{
		10: {ID: 10, Title: "Python Programming"},
	}}

	return NewSessionService(sessions, users, skills, tokens), tokens, sessions
}

func TestRequestSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture(t)

	sess, err := svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 2, SkillID: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.SessionID)
	assert.Equal(t, models.SessionPending, sess.Status)
	assert.Equal(t, uint(1), sess.LearnerID)
	assert.Equal(t, uint(2), sess.MentorID)
}

func TestRequestSessionValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture(t)

	_, err := svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 1, SkillID: 10})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 99, SkillID: 10})
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 3, SkillID: 10})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 2, SkillID: 99})
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestRequestSessionInsufficientTokens(t *testing.T) {
	ctx := context.Background()
	svc, tokens, _ := newSessionFixture(t)

	// drain the learner below the booking minimum
	_, err := tokens.Spend(ctx, 1, "drain", 15)
	require.NoError(t, err)

	_, err = svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 2, SkillID: 10})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.ErrorContains(t, err, "insufficient tokens")
}

func TestConfirmSessionChargesLearner(t *testing.T) {
	ctx := context.Background()
	svc, tokens, _ := newSessionFixture(t)

	sess, err := svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 2, SkillID: 10})
	require.NoError(t, err)

	// only the mentor may confirm
	_, err = svc.Confirm(ctx, sess.SessionID, 1)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	confirmed, err := svc.Confirm(ctx, sess.SessionID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.SessionConfirmed, confirmed.Status)

	balance, err := tokens.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	// a second confirm hits the status guard, not a second charge
	_, err = svc.Confirm(ctx, sess.SessionID, 2)
	assert.True(t, utils.IsCode(err, utils.CodeConflict))

	balance, err = tokens.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
}

func TestCompleteSessionRewardsMentor(t *testing.T) {
	ctx := context.Background()
	svc, tokens, _ := newSessionFixture(t)

	sess, err := svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 2, SkillID: 10})
	require.NoError(t, err)

	// pending sessions cannot be completed
	_, err = svc.Complete(ctx, sess.SessionID, 1)
	assert.True(t, utils.IsCode(err, utils.CodeConflict))

	_, err = svc.Confirm(ctx, sess.SessionID, 2)
	require.NoError(t, err)

	done, err := svc.Complete(ctx, sess.SessionID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	balance, err := tokens.GetBalance(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 30, balance)
}

func TestCancelPendingSessionNoRefund(t *testing.T) {
	ctx := context.Background()
	svc, tokens, _ := newSessionFixture(t)

	sess, err := svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 2, SkillID: 10})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, sess.SessionID, 1, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, cancelled.Status)
	assert.Equal(t, "changed my mind", cancelled.CancelReason)

	balance, err := tokens.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)
}

func TestCancelConfirmedSessionRefundsLearner(t *testing.T) {
	ctx := context.Background()
	svc, tokens, _ := newSessionFixture(t)

	sess, err := svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 2, SkillID: 10})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, sess.SessionID, 2)
	require.NoError(t, err)

	balance, err := tokens.GetBalance(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 10, balance)

	cancelled, err := svc.Cancel(ctx, sess.SessionID, 2, "")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, cancelled.Status)

	balance, err = tokens.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)
}

func TestCancelCompletedSessionRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture(t)

	sess, err := svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 2, SkillID: 10})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, sess.SessionID, 2)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, sess.SessionID, 2)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, sess.SessionID, 1, "too late")
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
}

func TestSessionAccessControl(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture(t)

	sess, err := svc.Request(ctx, SessionRequest{LearnerID: 1, MentorID: 2, SkillID: 10})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, sess.SessionID, 2)
	require.NoError(t, err)

	// user 3 is not a participant
	_, err = svc.Complete(ctx, sess.SessionID, 3)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
	_, err = svc.Cancel(ctx, sess.SessionID, 3, "nope")
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
}
