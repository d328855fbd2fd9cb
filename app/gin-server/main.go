package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/skillswap/backend/config"
	"github.com/skillswap/backend/internal/api/handlers"
	"github.com/skillswap/backend/internal/api/middleware"
	"github.com/skillswap/backend/internal/api/routes"
	"github.com/skillswap/backend/internal/cache"
	"github.com/skillswap/backend/internal/logger"
	"github.com/skillswap/backend/internal/ml"
	mongorepo "github.com/skillswap/backend/internal/repositories/mongo"
	pgrepo "github.com/skillswap/backend/internal/repositories/postgres"
	"github.com/skillswap/backend/internal/services"
	"github.com/skillswap/backend/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	// Init PostgreSQL
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.MigratePostgres(); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	log.Info("PostgreSQL connected")

	// Init MongoDB
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	log.Info("MongoDB connected")

	// Init Redis
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	log.Info("Redis connected")

	// Repositories
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)
	skillRepo := pgrepo.NewSkillRepo(config.PostgresDB)
	linkRepo := pgrepo.NewUserSkillRepo(config.PostgresDB)
	ratingRepo := pgrepo.NewMentorRatingRepo(config.PostgresDB)
	recRepo := pgrepo.NewRecommendationRepo(config.PostgresDB)
	ledger := pgrepo.NewLedgerStore(config.PostgresDB)
	sessionRepo := mongorepo.NewSessionRepo(config.MongoDatabase())

	redisCache := cache.NewRedisCache(config.RedisClient)

	// Services
	tokenSvc := services.NewTokenService(ledger, config.LoadTokenPolicy())
	skillSvc := services.NewSkillService(skillRepo, linkRepo, redisCache)
	recSvc := services.NewRecommendationService(ml.Providers{
		Catalog:    skillRepo,
		Links:      linkRepo,
		Candidates: userRepo,
		Sessions:   sessionRepo,
		Ratings:    ratingRepo,
	}, recRepo, redisCache)
	sessionSvc := services.NewSessionService(sessionRepo, userRepo, skillRepo, tokenSvc)
	reviewSvc := services.NewReviewService(sessionRepo, ratingRepo, config.RedisClient)

	// Review ingestion workers fold submitted ratings into the rollups
	// the recommendation engine scores with.
	reviewWorkers := &workers.ReviewWorkerPool{
		Redis:   config.RedisClient,
		Ratings: ratingRepo,
		Logger:  log,
	}
	if err := reviewWorkers.Start(context.Background()); err != nil {
		log.Fatalf("review workers error: %v", err)
	}

	// HTTP
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Token:          handlers.NewTokenHandler(tokenSvc),
		Recommendation: handlers.NewRecommendationHandler(recSvc),
		Skill:          handlers.NewSkillHandler(skillSvc),
		Session:        handlers.NewSessionHandler(sessionSvc),
		Review:         handlers.NewReviewHandler(reviewSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
