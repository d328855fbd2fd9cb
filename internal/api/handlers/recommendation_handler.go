package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillswap/backend/internal/services"
)

type RecommendationHandler struct {
	svc services.RecommendationService
}

func NewRecommendationHandler(svc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// Ping reports liveness plus the current fitted vocabulary size; a zero
// size means the skill catalog is still empty.
func (h *RecommendationHandler) Ping(c *gin.Context) {
	size, err := h.svc.VocabularySize(c.Request.Context())
	if err != nil {
		size = 0
	}
	c.JSON(http.StatusOK, gin.H{"message": "pong", "vocabulary_size": size})
}

// Recommend returns the learner's ranked mentor feed.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	topN := intQuery(c, "top_n", 5)

	recs, err := h.svc.Recommend(c.Request.Context(), userID, topN, nil)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recs,
		"count":           len(recs),
	})
}

// RecommendBySkill restricts the feed to mentors teaching one skill.
func (h *RecommendationHandler) RecommendBySkill(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	skillID, ok := uintParam(c, "skill_id")
	if !ok {
		return
	}

	topN := intQuery(c, "top_n", 5)

	recs, err := h.svc.Recommend(c.Request.Context(), userID, topN, &skillID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recs,
		"count":           len(recs),
		"skill_id":        skillID,
	})
}

// Refresh invalidates the learner's cached feed.
func (h *RecommendationHandler) Refresh(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Refresh(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"refreshed": true})
}
