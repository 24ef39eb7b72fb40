package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/stemsi/faculty-backend/internal/cache"
	"github.com/stemsi/faculty-backend/internal/config"
	"github.com/stemsi/faculty-backend/internal/database"
	"github.com/stemsi/faculty-backend/internal/logger"
	"github.com/stemsi/faculty-backend/internal/repository"
	"github.com/stemsi/faculty-backend/internal/seed"
	"github.com/stemsi/faculty-backend/internal/service"
)

func main() {
	var (
		catalogPath string
		syllabus    bool
	)
	flag.StringVar(&catalogPath, "catalog", "", "YAML seed catalog (defaults to SEED_FILE, then the embedded catalog)")
	flag.BoolVar(&syllabus, "syllabus", false, "Also replace every syllabus topic with the catalog")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if catalogPath == "" {
		catalogPath = cfg.SeedFile
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.Migrate(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	catalog, err := seed.Load(catalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load seed catalog")
	}

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, cached aggregations may be stale until they expire")
	}
	if rdb != nil {
		defer rdb.Close()
	}
	statsCache := cache.NewStatsCache(rdb, cfg.StatsTTL, log)

	eventRepo := repository.NewEventRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	fmt.Println("=== Seeding empty tables ===")
	res, err := service.NewSeedService(eventRepo, studentRepo, catalog, statsCache, log).SeedIfEmpty(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}
	fmt.Printf("Events inserted:   %d\n", res.Events)
	fmt.Printf("Students inserted: %d\n", res.Students)

	if syllabus {
		syllabusService := service.NewSyllabusService(repository.NewSyllabusRepository(db), catalog.Syllabus, statsCache, log)
		n, err := syllabusService.Reseed(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Syllabus reseed failed")
		}
		fmt.Printf("Syllabus topics:   %d\n", n)
	} else {
		fmt.Printf("Catalog topics:    %d (not loaded, pass -syllabus)\n", catalog.TopicCount())
	}

	fmt.Println("=== Done ===")
}
