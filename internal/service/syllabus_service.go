package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/cache"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/repository"
)

// SyllabusService handles syllabus topics and their completion.
type SyllabusService struct {
	syllabusRepo *repository.SyllabusRepository
	catalog      []model.CohortSyllabus
	stats        *cache.StatsCache
	now          func() time.Time
	log          zerolog.Logger
}

// NewSyllabusService creates a SyllabusService. catalog is the topic set
// Reseed installs.
func NewSyllabusService(
	syllabusRepo *repository.SyllabusRepository,
	catalog []model.CohortSyllabus,
	stats *cache.StatsCache,
	log zerolog.Logger,
) *SyllabusService {
	return &SyllabusService{
		syllabusRepo: syllabusRepo,
		catalog:      catalog,
		stats:        stats,
		now:          time.Now,
		log:          log.With().Str("component", "syllabus_service").Logger(),
	}
}

// List returns every topic, in insertion order unless q says otherwise.
func (s *SyllabusService) List(ctx context.Context, q model.ListQuery) ([]model.SyllabusTopic, error) {
	topics, err := s.syllabusRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []model.SyllabusTopic{}
	}
	return topics, nil
}

// Reseed replaces every topic with the catalog, all not completed. Running
// it twice leaves the same rows. It returns the number of topics created.
func (s *SyllabusService) Reseed(ctx context.Context) (int, error) {
	var topics []*model.SyllabusTopic
	for _, cohort := range s.catalog {
		for _, sub := range cohort.Subjects {
			for _, topic := range sub.Topics {
				topics = append(topics, &model.SyllabusTopic{
					Year:    cohort.Year,
					Subject: sub.Subject,
					Topic:   topic,
				})
			}
		}
	}

	if err := s.syllabusRepo.Replace(ctx, topics); err != nil {
		return 0, err
	}
	s.stats.Invalidate(ctx)

	s.log.Info().Int("topics", len(topics)).Msg("Syllabus reseeded")
	return len(topics), nil
}

// SetCompleted marks a topic done, stamping today's date, or clears it.
func (s *SyllabusService) SetCompleted(ctx context.Context, id int, completed bool) (*model.SyllabusTopic, error) {
	var completionDate *string
	if completed {
		today := s.now().Format(dateLayout)
		completionDate = &today
	}

	if err := s.syllabusRepo.SetCompleted(ctx, id, completed, completionDate); err != nil {
		return nil, translate(err)
	}
	s.stats.Invalidate(ctx)

	t, err := s.syllabusRepo.GetByID(ctx, id)
	return t, translate(err)
}

// AddTopic appends a single, not yet completed topic.
func (s *SyllabusService) AddTopic(ctx context.Context, req model.AddSyllabusTopicRequest) (*model.SyllabusTopic, error) {
	if err := requireFields("year", req.Year, "subject", req.Subject, "topic", req.Topic); err != nil {
		return nil, err
	}

	t := &model.SyllabusTopic{Year: req.Year, Subject: req.Subject, Topic: req.Topic}
	if err := s.syllabusRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx)
	return t, nil
}

// Delete removes a topic.
func (s *SyllabusService) Delete(ctx context.Context, id int) error {
	if err := s.syllabusRepo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.stats.Invalidate(ctx)
	return nil
}

// GroupProgress groups topics by "year - subject" in order of first
// appearance and counts total and completed topics per group.
func GroupProgress(topics []model.SyllabusTopic) []model.ProgressGroup {
	groups := []model.ProgressGroup{}
	index := make(map[string]int)
	for _, t := range topics {
		key := t.Year + " - " + t.Subject
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.ProgressGroup{Key: key, Year: t.Year, Subject: t.Subject})
		}
		groups[i].Total++
		if t.Completed {
			groups[i].Completed++
		}
	}
	for i := range groups {
		groups[i].Percentage = percentage(groups[i].Completed, groups[i].Total)
	}
	return groups
}
