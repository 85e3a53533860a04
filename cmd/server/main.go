package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/classcast/classcast-backend/internal/config"
	"github.com/classcast/classcast-backend/internal/database"
	"github.com/classcast/classcast-backend/internal/events"
	"github.com/classcast/classcast-backend/internal/handler"
	"github.com/classcast/classcast-backend/internal/logger"
	"github.com/classcast/classcast-backend/internal/repository"
	"github.com/classcast/classcast-backend/internal/router"
	"github.com/classcast/classcast-backend/internal/scoring"
	"github.com/classcast/classcast-backend/internal/service"
	"github.com/classcast/classcast-backend/internal/validator"
	"github.com/classcast/classcast-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ClassCast Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	checkpointRepo := repository.NewCheckpointRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	publisher := events.NewRedisPublisher(rdb, log)
	scorers := scoring.NewRegistry()
	generator := service.StaticGenerator{}

	authService := service.NewAuthService(cfg, userRepo)
	subjectService := service.NewSubjectService(subjectRepo, userRepo, log)
	sessionService := service.NewSessionService(sessionRepo, subjectRepo, activityRepo, checkpointRepo, publisher, log, nil)
	activityService := service.NewActivityService(activityRepo, sessionRepo, checkpointRepo, generator, publisher, log, nil)
	responseService := service.NewResponseService(responseRepo, sessionRepo, activityService, subjectService, scorers, publisher, log, nil)
	rankingService := service.NewRankingService(responseRepo, subjectRepo, sessionRepo, activityService, rdb, publisher, log, nil)
	syncService := service.NewSyncService(activityService, responseRepo, subjectService, log, nil)
	presentationService := service.NewPresentationService(sessionService, activityRepo, rdb, log, nil)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, userRepo),
		Subject:      handler.NewSubjectHandler(subjectService),
		Session:      handler.NewSessionHandler(sessionService),
		Activity:     handler.NewActivityHandler(activityService, rankingService),
		Student:      handler.NewStudentHandler(syncService, responseService),
		Presentation: handler.NewPresentationHandler(presentationService),
		WS:           handler.NewWSHandler(rdb, subjectService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	sweeper := worker.NewSweeper(activityService, cfg.SweepInterval, log, nil)
	go sweeper.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the sweeper.
	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
