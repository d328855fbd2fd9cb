package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillswap/backend/internal/models"
	"github.com/skillswap/backend/internal/services"
	"github.com/skillswap/backend/internal/utils"
)

type SkillHandler struct {
	svc services.SkillService
}

func NewSkillHandler(svc services.SkillService) *SkillHandler {
	return &SkillHandler{svc: svc}
}

type CreateSkillRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (h *SkillHandler) Create(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req CreateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SkillHandler.Create", "invalid request body", err))
		return
	}

	skill, err := h.svc.EnsureSkill(c.Request.Context(), req.Title, req.Description, req.Category)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, skill)
}

func (h *SkillHandler) List(c *gin.Context) {
	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", 50)

	if c.Query("with_mentor_count") == "true" {
		skills, err := h.svc.ListSkillsWithMentorCount(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"skills": skills, "count": len(skills)})
		return
	}

	skills, err := h.svc.ListSkills(c.Request.Context(), offset, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"skills": skills, "count": len(skills)})
}

func (h *SkillHandler) Get(c *gin.Context) {
	skillID, ok := uintParam(c, "skill_id")
	if !ok {
		return
	}

	skill, err := h.svc.GetSkill(c.Request.Context(), skillID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, skill)
}

type AddUserSkillRequest struct {
	SkillID     uint     `json:"skill_id" binding:"required"`
	Role        string   `json:"role" binding:"required"` // teach|learn
	Proficiency string   `json:"proficiency"`
	Tags        []string `json:"tags"`
}

func (h *SkillHandler) AddUserSkill(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddUserSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SkillHandler.AddUserSkill", "invalid request body", err))
		return
	}

	link, err := h.svc.AddUserSkill(c.Request.Context(), userID, req.SkillID,
		models.SkillRole(req.Role), req.Proficiency, req.Tags)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

func (h *SkillHandler) RemoveUserSkill(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	linkID, ok := uintParam(c, "link_id")
	if !ok {
		return
	}

	if err := h.svc.RemoveUserSkill(c.Request.Context(), linkID, userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *SkillHandler) ListUserSkills(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	role := models.SkillRole(c.DefaultQuery("role", string(models.RoleTeach)))
	links, err := h.svc.ListUserSkills(c.Request.Context(), userID, role)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"skills": links, "count": len(links)})
}
