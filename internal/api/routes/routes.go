package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/skillswap/backend/internal/api/handlers"
	"github.com/skillswap/backend/internal/api/middleware"
)

type Deps struct {
	Token          *handlers.TokenHandler
	Recommendation *handlers.RecommendationHandler
	Skill          *handlers.SkillHandler
	Session        *handlers.SessionHandler
	Review         *handlers.ReviewHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", d.Recommendation.Ping)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/tokens/wallet", d.Token.InitWallet)
	auth.GET("/tokens/wallet", d.Token.Balance)
	auth.GET("/tokens/transactions", d.Token.Transactions)
	auth.GET("/tokens/eligibility", d.Token.Eligibility)
	auth.GET("/tokens/statistics", d.Token.Statistics)
	auth.GET("/tokens/circulation", middleware.RequireAdmin(), d.Token.Circulation)

	auth.GET("/recommend", d.Recommendation.Recommend)
	auth.GET("/recommend/by-skill/:skill_id", d.Recommendation.RecommendBySkill)
	auth.POST("/recommend/refresh", d.Recommendation.Refresh)

	auth.POST("/skills", d.Skill.Create)
	auth.GET("/skills", d.Skill.List)
	auth.GET("/skills/:skill_id", d.Skill.Get)
	auth.POST("/skills/mine", d.Skill.AddUserSkill)
	auth.GET("/skills/mine", d.Skill.ListUserSkills)
	auth.DELETE("/skills/mine/:link_id", d.Skill.RemoveUserSkill)

	auth.POST("/sessions", d.Session.Book)
	auth.GET("/sessions", d.Session.ListMine)
	auth.GET("/sessions/:session_id", d.Session.Get)
	auth.POST("/sessions/:session_id/confirm", d.Session.Confirm)
	auth.POST("/sessions/:session_id/complete", d.Session.Complete)
	auth.POST("/sessions/:session_id/cancel", d.Session.Cancel)

	auth.POST("/reviews", d.Review.Submit)
	auth.GET("/mentors/:mentor_id/rating", d.Review.MentorRating)
}
