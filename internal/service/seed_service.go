package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/cache"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/repository"
	"github.com/stemsi/faculty-backend/internal/seed"
)

// SeedResult reports what SeedIfEmpty inserted.
type SeedResult struct {
	Events   int `json:"events"`
	Students int `json:"students"`
}

// SeedService fills empty tables with the first-run catalog.
type SeedService struct {
	eventRepo   *repository.EventRepository
	studentRepo *repository.StudentRepository
	catalog     *seed.Catalog
	stats       *cache.StatsCache
	now         func() time.Time
	log         zerolog.Logger
}

// NewSeedService creates a new SeedService.
func NewSeedService(
	eventRepo *repository.EventRepository,
	studentRepo *repository.StudentRepository,
	catalog *seed.Catalog,
	stats *cache.StatsCache,
	log zerolog.Logger,
) *SeedService {
	return &SeedService{
		eventRepo:   eventRepo,
		studentRepo: studentRepo,
		catalog:     catalog,
		stats:       stats,
		now:         time.Now,
		log:         log.With().Str("component", "seed_service").Logger(),
	}
}

// SeedIfEmpty inserts the catalog events, dated today, when there are no
// events, and the catalog students when there are no students. Tables that
// already hold rows are left alone.
func (s *SeedService) SeedIfEmpty(ctx context.Context) (*SeedResult, error) {
	res := &SeedResult{}

	n, err := s.eventRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	if n == 0 {
		today := s.now().Format(dateLayout)
		for _, e := range s.catalog.Events {
			ev := &model.Event{
				Title:       e.Title,
				Date:        today,
				Time:        e.Time,
				Type:        e.Type,
				Description: e.Description,
			}
			if err := s.eventRepo.Create(ctx, ev); err != nil {
				return nil, fmt.Errorf("seed event %q: %w", e.Title, err)
			}
			res.Events++
		}
	}

	n, err = s.studentRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	if n == 0 {
		for _, cohort := range s.catalog.Students {
			for _, st := range cohort.Students {
				student := &model.Student{
					Name:       st.Name,
					RollNumber: st.Roll,
					Year:       cohort.Year,
					Email:      st.Email,
					Phone:      st.Phone,
				}
				if err := s.studentRepo.Create(ctx, student); err != nil {
					return nil, fmt.Errorf("seed student %s: %w", st.Roll, err)
				}
				res.Students++
			}
		}
	}

	if res.Events > 0 || res.Students > 0 {
		s.stats.Invalidate(ctx)
	}
	s.log.Info().
		Int("events", res.Events).
		Int("students", res.Students).
		Msg("First-run seed checked")
	return res, nil
}
