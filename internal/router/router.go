package router

import (
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/config"
	"github.com/VanAubrey/aws-cert-review/internal/handler"
	"github.com/VanAubrey/aws-cert-review/internal/metrics"
	"github.com/VanAubrey/aws-cert-review/internal/middleware"
	"github.com/VanAubrey/aws-cert-review/internal/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam    *handler.ExamHandler
	Session *handler.SessionHandler
	Result  *handler.ResultHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// limiter guards the endpoints that create sessions and attempts.
func SetupRouter(handlers *Handlers, limiter *middleware.RateLimiter, cfg *config.Config) *gin.Engine {
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(metrics.MetricsMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", metrics.PrometheusHandler())

	api := router.Group("/api/v1")

	// ─── Exams ─────────────────────────────────────────────────────────
	exams := api.Group("/exams")
	{
		exams.GET("", middleware.CacheControl(60), handlers.Exam.ListExams)
		exams.GET("/:exam_id", middleware.CacheControl(60), handlers.Exam.GetExam)
		exams.POST("/:exam_id/start", limiter.Middleware(), handlers.Exam.StartExam)
		exams.POST("/:exam_id/submit", limiter.Middleware(), handlers.Exam.SubmitExam)
		exams.GET("/:exam_id/attempts", middleware.NoStore(), handlers.Exam.ListAttempts)
	}

	api.GET("/results/:attempt_id", handlers.Result.GetResults)

	// ─── Sessions ──────────────────────────────────────────────────────
	sessions := api.Group("/sessions/:session_id", middleware.NoStore())
	{
		sessions.GET("", handlers.Session.GetSession)
		sessions.DELETE("", handlers.Session.Discard)
		sessions.PUT("/current", handlers.Session.SetCurrent)
		sessions.POST("/next", handlers.Session.Next)
		sessions.POST("/previous", handlers.Session.Previous)
		sessions.PUT("/answers/:question_id", handlers.Session.Answer)
		sessions.DELETE("/answers/:question_id", handlers.Session.ClearAnswer)
		sessions.POST("/flags/:question_id/toggle", handlers.Session.ToggleFlag)
		sessions.DELETE("/flags/:question_id", handlers.Session.ClearFlag)
		sessions.POST("/submit", limiter.Middleware(), handlers.Session.Submit)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	router.GET("/ws/v1/sessions/:session_id/stream", handlers.WS.SessionStream)

	return router
}
