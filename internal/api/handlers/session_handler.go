package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skillswap/backend/internal/services"
	"github.com/skillswap/backend/internal/utils"
)

type SessionHandler struct {
	svc services.SessionService
}

func NewSessionHandler(svc services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type BookSessionRequest struct {
	MentorID    uint       `json:"mentor_id" binding:"required"`
	SkillID     uint       `json:"skill_id" binding:"required"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func (h *SessionHandler) Book(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req BookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Book", "invalid request body", err))
		return
	}

	sess, err := h.svc.Request(c.Request.Context(), services.SessionRequest{
		LearnerID:   userID,
		MentorID:    req.MentorID,
		SkillID:     req.SkillID,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sess)
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	sess, err := h.svc.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	if sess.LearnerID != userID && sess.MentorID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "SessionHandler.Get", "forbidden", nil))
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) Confirm(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.svc.Confirm(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) Complete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.svc.Complete(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

type CancelSessionRequest struct {
	Reason string `json:"reason"`
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CancelSessionRequest
	// body optional; reason defaults server-side
	_ = c.ShouldBindJSON(&req)

	sess, err := h.svc.Cancel(c.Request.Context(), c.Param("session_id"), userID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) ListMine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit := intQuery(c, "limit", 50)
	sessions, err := h.svc.ListByLearner(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}
