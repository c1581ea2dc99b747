package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tuyetzz/QuizWeb/internal/config"
	"github.com/Tuyetzz/QuizWeb/internal/database"
	"github.com/Tuyetzz/QuizWeb/internal/handler"
	"github.com/Tuyetzz/QuizWeb/internal/logger"
	"github.com/Tuyetzz/QuizWeb/internal/repository"
	"github.com/Tuyetzz/QuizWeb/internal/router"
	"github.com/Tuyetzz/QuizWeb/internal/service"
	"github.com/Tuyetzz/QuizWeb/internal/validator"
	"github.com/Tuyetzz/QuizWeb/internal/worker"
	"github.com/rs/zerolog"
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
		Msg("Starting QuizWeb Backend")

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
	chapterRepo := repository.NewChapterRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	optionRepo := repository.NewOptionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	aqRepo := repository.NewAttemptQuestionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	summaryRepo := repository.NewResultSummaryRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, rdb, log)
	userService := service.NewUserService(userRepo)
	subjectService := service.NewSubjectService(subjectRepo, log)
	chapterService := service.NewChapterService(chapterRepo, subjectRepo, log)
	questionService := service.NewQuestionService(pool, questionRepo, optionRepo, chapterRepo, rdb, log)
	attemptService := service.NewAttemptService(pool, attemptRepo, aqRepo, answerRepo,
		questionRepo, optionRepo, chapterRepo, summaryRepo, rdb, cfg.ShuffleSeed, log)
	answerService := service.NewAnswerService(answerRepo, attemptRepo, aqRepo, log)
	gradingService := service.NewGradingService(pool, attemptRepo, aqRepo, answerRepo,
		questionRepo, optionRepo, summaryRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userService),
		Subject:  handler.NewSubjectHandler(subjectService, chapterService),
		Chapter:  handler.NewChapterHandler(chapterService),
		Question: handler.NewQuestionHandler(questionService),
		Attempt:  handler.NewAttemptHandler(attemptService, gradingService),
		Answer:   handler.NewAnswerHandler(answerService),
		WS:       handler.NewWSHandler(rdb, attemptService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	regradeWorker := worker.NewRegradeWorker(gradingService, rdb, log)
	go regradeWorker.Start(workerCtx)

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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
