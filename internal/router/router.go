package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/classcast/classcast-backend/internal/config"
	"github.com/classcast/classcast-backend/internal/handler"
	"github.com/classcast/classcast-backend/internal/middleware"
	"github.com/classcast/classcast-backend/internal/response"
	"github.com/classcast/classcast-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Subject      *handler.SubjectHandler
	Session      *handler.SessionHandler
	Activity     *handler.ActivityHandler
	Student      *handler.StudentHandler
	Presentation *handler.PresentationHandler
	WS           *handler.WSHandler
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
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Viewer Group (Public, address code) ────────────────────────
	present := router.Group("/api/v1/present")
	{
		present.GET("/:code", handlers.Presentation.ViewerState)
		present.GET("/:code/status", handlers.Presentation.Marker)
	}

	// ─── 3. Teacher Group (JWT, teacher role) ──────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		// Subjects and roster
		teacherAPI.POST("/subjects", handlers.Subject.Create)
		teacherAPI.GET("/subjects", handlers.Subject.List)
		teacherAPI.POST("/subjects/:id/enrollments", handlers.Subject.Enroll)
		teacherAPI.GET("/subjects/:id/enrollments", handlers.Subject.Roster)
		teacherAPI.GET("/subjects/:id/sessions", handlers.Session.ListBySubject)

		// Session lifecycle
		teacherAPI.POST("/sessions", handlers.Session.Open)
		teacherAPI.GET("/sessions/:id", handlers.Session.Get)
		teacherAPI.POST("/sessions/:id/pause", handlers.Session.Pause)
		teacherAPI.POST("/sessions/:id/resume", handlers.Session.Resume)
		teacherAPI.POST("/sessions/:id/end", handlers.Session.End)
		teacherAPI.PUT("/sessions/:id/transcript", handlers.Session.UpdateTranscript)
		teacherAPI.GET("/sessions/:id/checkpoints", handlers.Session.ListCheckpoints)

		// Activities
		teacherAPI.POST("/sessions/:id/activities", handlers.Activity.Create)
		teacherAPI.GET("/sessions/:id/activities", handlers.Activity.ListBySession)
		teacherAPI.POST("/sessions/:id/activities/generate-quiz", handlers.Activity.GenerateQuiz)
		teacherAPI.POST("/sessions/:id/activities/generate-summary", handlers.Activity.GenerateSummary)
		teacherAPI.GET("/activities/:id", handlers.Activity.Get)
		teacherAPI.POST("/activities/:id/broadcast", handlers.Activity.Broadcast)
		teacherAPI.POST("/activities/:id/share", handlers.Activity.Share)
		teacherAPI.POST("/activities/:id/end", handlers.Activity.End)
		teacherAPI.GET("/activities/:id/ranking", handlers.Activity.Ranking)
		teacherAPI.GET("/activities/:id/stats", handlers.Activity.Stats)

		// Presentations
		teacherAPI.POST("/presentations", handlers.Presentation.Start)
		teacherAPI.POST("/presentations/send", handlers.Presentation.Send)
		teacherAPI.POST("/presentations/clear", handlers.Presentation.Clear)
		teacherAPI.POST("/presentations/end", handlers.Presentation.End)
	}

	// ─── 4. Student Group (JWT, student role) ──────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/subjects", handlers.Subject.ListEnrolled)
		studentAPI.GET("/subjects/:id/active", handlers.Student.Active)
		studentAPI.POST("/activities/:id/responses", handlers.Student.Submit)
		studentAPI.GET("/activities/:id/responses/me", handlers.Student.MyResponse)
	}

	// ─── 5. WebSocket Group (WS token auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/subjects/:id/stream", handlers.WS.SubjectStream)
	}

	return router
}
