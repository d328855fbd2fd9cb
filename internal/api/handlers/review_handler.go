package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillswap/backend/internal/services"
	"github.com/skillswap/backend/internal/utils"
)

type ReviewHandler struct {
	svc services.ReviewService
}

func NewReviewHandler(svc services.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

type SubmitReviewRequest struct {
	SessionID string  `json:"session_id" binding:"required"`
	Rating    float64 `json:"rating" binding:"required"`
	Comment   string  `json:"comment"`
}

func (h *ReviewHandler) Submit(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ReviewHandler.Submit", "invalid request body", err))
		return
	}

	if err := h.svc.SubmitReview(c.Request.Context(), userID, req.SessionID, req.Rating, req.Comment); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

func (h *ReviewHandler) MentorRating(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	mentorID, ok := uintParam(c, "mentor_id")
	if !ok {
		return
	}

	mr, err := h.svc.MentorRating(c.Request.Context(), mentorID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, mr)
}
