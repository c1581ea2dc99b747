package router

import (
	"net/http"
	"time"

	"github.com/Tuyetzz/QuizWeb/internal/config"
	"github.com/Tuyetzz/QuizWeb/internal/handler"
	"github.com/Tuyetzz/QuizWeb/internal/middleware"
	"github.com/Tuyetzz/QuizWeb/internal/response"
	"github.com/Tuyetzz/QuizWeb/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Subject  *handler.SubjectHandler
	Chapter  *handler.ChapterHandler
	Question *handler.QuestionHandler
	Attempt  *handler.AttemptHandler
	Answer   *handler.AnswerHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
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

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Catalog (Authenticated reads, teacher writes) ──────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		api.GET("/subjects", handlers.Subject.List)
		api.GET("/subjects/:id", handlers.Subject.Get)
		api.GET("/subjects/:id/chapters", handlers.Subject.ListChapters)
		api.GET("/chapters/:id", handlers.Chapter.Get)
		api.GET("/questions", handlers.Question.List)
		api.GET("/questions/:id", handlers.Question.Get)
	}

	teacherAPI := router.Group("/api/v1")
	teacherAPI.Use(middleware.RequireAuth(authService), middleware.RequireTeacher())
	{
		teacherAPI.POST("/subjects", handlers.Subject.Create)
		teacherAPI.DELETE("/subjects/:id", handlers.Subject.Delete)
		teacherAPI.POST("/chapters", handlers.Chapter.Create)
		teacherAPI.DELETE("/chapters/:id", handlers.Chapter.Delete)
		teacherAPI.POST("/questions", handlers.Question.Create)
		teacherAPI.POST("/questions/batch", handlers.Question.BatchCreate)
		teacherAPI.PUT("/questions/:id", handlers.Question.Update)
		teacherAPI.DELETE("/questions/:id", handlers.Question.Delete)
	}

	// ─── 3. Attempts (Authenticated, ownership scoped) ─────────────────
	attempts := router.Group("/api/v1/attempts")
	attempts.Use(middleware.RequireAuth(authService))
	{
		attempts.POST("", handlers.Attempt.Create)
		attempts.POST("/exam", handlers.Attempt.StartExam)
		attempts.POST("/practice", handlers.Attempt.StartPractice)
		attempts.GET("", handlers.Attempt.List)
		attempts.GET("/:id", handlers.Attempt.Get)
		attempts.GET("/:id/questions", handlers.Attempt.GetQuestions)
		attempts.DELETE("/:id", handlers.Attempt.Delete)
		attempts.GET("/:id/result", handlers.Attempt.GetResult)
		attempts.POST("/:id/grade", handlers.Attempt.Grade)

		attempts.GET("/:id/answers", handlers.Answer.List)
		attempts.POST("/:id/answers", handlers.Answer.SubmitAll)
		attempts.PUT("/:id/answers/:question_id", handlers.Answer.Upsert)

		// Administrative paths.
		attempts.PATCH("/:id", middleware.RequireTeacher(), handlers.Attempt.Update)
		attempts.POST("/:id/regrade", middleware.RequireTeacher(), handlers.Attempt.Regrade)
	}

	// ─── 4. WebSocket Group (WS Auth via query token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/attempts/:id/clock", handlers.WS.AttemptClockStream)
	}

	return router
}
