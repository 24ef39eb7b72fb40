package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/cache"
	"github.com/stemsi/faculty-backend/internal/config"
	"github.com/stemsi/faculty-backend/internal/database"
	"github.com/stemsi/faculty-backend/internal/handler"
	"github.com/stemsi/faculty-backend/internal/logger"
	"github.com/stemsi/faculty-backend/internal/middleware"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/repository"
	"github.com/stemsi/faculty-backend/internal/router"
	"github.com/stemsi/faculty-backend/internal/seed"
	"github.com/stemsi/faculty-backend/internal/service"
	"github.com/stemsi/faculty-backend/internal/storage"
	"github.com/stemsi/faculty-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("db_driver", cfg.DBDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Faculty Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Migrate & Connect to the Store ────────────────────────────────
	if cfg.AutoMigrate {
		if err := database.Migrate(cfg, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare upload directory")
	}

	catalog, err := seed.Load(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Str("seed_file", cfg.SeedFile).Msg("Failed to load seed catalog")
	}

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}
	statsCache := cache.NewStatsCache(rdb, cfg.StatsTTL, log)

	// ─── Initialize Repositories ───────────────────────────────────────
	attendanceRepo := repository.NewAttendanceRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	syllabusRepo := repository.NewSyllabusRepository(db)
	eventRepo := repository.NewEventRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	// ─── Initialize Services ──────────────────────────────────────────
	eventService := service.NewEventService(eventRepo, statsCache, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, studentRepo, statsCache, log)
	assignmentService := service.NewDocumentService(model.KindAssignment, assignmentRepo, files, statsCache, cfg.MaxUploadBytes, log)
	noteService := service.NewDocumentService(model.KindNote, noteRepo, files, statsCache, cfg.MaxUploadBytes, log)
	syllabusService := service.NewSyllabusService(syllabusRepo, catalog.Syllabus, statsCache, log)
	studentService := service.NewStudentService(studentRepo, statsCache, log)
	statsService := service.NewStatsService(attendanceRepo, assignmentRepo, syllabusRepo, eventRepo, studentRepo, statsCache, log)
	seedService := service.NewSeedService(eventRepo, studentRepo, catalog, statsCache, log)

	// ─── First-run Seed ────────────────────────────────────────────────
	if _, err := seedService.SeedIfEmpty(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed empty tables")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Stats:       handler.NewStatsHandler(statsService),
		Event:       handler.NewEventHandler(eventService),
		Attendance:  handler.NewAttendanceHandler(attendanceService),
		Assignments: handler.NewDocumentHandler(assignmentService),
		Notes:       handler.NewDocumentHandler(noteService),
		Syllabus:    handler.NewSyllabusHandler(syllabusService, statsService),
		Student:     handler.NewStudentHandler(studentService),
		Download:    handler.NewDownloadHandler(files, log),
		Health:      handler.NewHealthHandler(db, rdb, log),
	}

	// Upload POSTs share one bucket per client IP.
	uploadLimiter := middleware.NewRateLimiter(cfg.UploadRate, time.Minute)
	defer uploadLimiter.Stop()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, uploadLimiter, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
