package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/classbridge/qbank-backend/internal/config"
	"github.com/classbridge/qbank-backend/internal/handler"
	"github.com/classbridge/qbank-backend/internal/middleware"
	"github.com/classbridge/qbank-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Question *handler.QuestionHandler
	Import   *handler.ImportHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Bulk imports are heavy; keep them behind a modest per-IP limit.
	importLimiter := middleware.NewRateLimiter(cfg.ImportRateLimit, time.Minute)

	// ─── Staff Group (JWT) ─────────────────────────────────────────────
	staffAPI := router.Group("/api/v1/staff")
	staffAPI.Use(middleware.RequireStaffJWT(cfg.JWTSecret))
	{
		// Question bank management
		staffAPI.GET("/banks", handlers.Question.ListBanks)
		staffAPI.POST("/banks", handlers.Question.CreateBank)
		staffAPI.GET("/banks/:id", handlers.Question.GetBank)
		staffAPI.PUT("/banks/:id", handlers.Question.UpdateBank)
		staffAPI.DELETE("/banks/:id", handlers.Question.DeleteBank)
		staffAPI.GET("/banks/:id/questions", handlers.Question.ListQuestions)

		// Question management
		staffAPI.POST("/questions", handlers.Question.CreateQuestion)
		staffAPI.GET("/questions/:id", handlers.Question.GetQuestion)
		staffAPI.PATCH("/questions/:id", handlers.Question.UpdateQuestion)
		staffAPI.DELETE("/questions/:id", handlers.Question.DeleteQuestion)

		// Bulk import. Lives under /imports so the question routes keep
		// their :id parameter free of conflicts.
		importGroup := staffAPI.Group("/imports")
		importGroup.Use(importLimiter.Middleware())
		{
			importGroup.POST("", handlers.Import.Import)
			importGroup.POST("/async", handlers.Import.ImportAsync)
			importGroup.GET("/jobs/:id", handlers.Import.GetImportJob)
		}
	}

	return router
}
