package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/cache"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/repository"
)

// EventService handles calendar business logic.
type EventService struct {
	eventRepo *repository.EventRepository
	stats     *cache.StatsCache
	log       zerolog.Logger
}

// NewEventService creates a new EventService.
func NewEventService(eventRepo *repository.EventRepository, stats *cache.StatsCache, log zerolog.Logger) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		stats:     stats,
		log:       log.With().Str("component", "event_service").Logger(),
	}
}

// List returns every event, by date and time unless q says otherwise.
func (s *EventService) List(ctx context.Context, q model.ListQuery) ([]model.Event, error) {
	events, err := s.eventRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// Get retrieves an event by ID.
func (s *EventService) Get(ctx context.Context, id int) (*model.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	return e, translate(err)
}

// Create adds an event.
func (s *EventService) Create(ctx context.Context, req model.EventRequest) (*model.Event, error) {
	if err := validateEvent(req); err != nil {
		return nil, err
	}

	e := &model.Event{
		Title:       req.Title,
		Date:        req.Date,
		Time:        req.Time,
		Type:        req.Type,
		Description: req.Description,
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx)

	s.log.Debug().Int("event_id", e.ID).Str("date", e.Date).Msg("Event created")
	return e, nil
}

// Update overwrites the editable fields of an event.
func (s *EventService) Update(ctx context.Context, id int, req model.EventRequest) (*model.Event, error) {
	if err := validateEvent(req); err != nil {
		return nil, err
	}

	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	e.Title = req.Title
	e.Date = req.Date
	e.Time = req.Time
	e.Type = req.Type
	e.Description = req.Description

	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, translate(err)
	}
	s.stats.Invalidate(ctx)
	return e, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id int) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.stats.Invalidate(ctx)
	return nil
}

func validateEvent(req model.EventRequest) error {
	return requireFields(
		"title", req.Title,
		"date", req.Date,
		"time", req.Time,
		"type", req.Type,
	)
}
