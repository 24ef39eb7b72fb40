package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/cache"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/repository"
)

const upcomingEventsLimit = 5

// Placeholder values shown while the underlying tables are empty.
const (
	defaultTodayLectures = 2
	defaultChartPresent  = 8
	defaultChartAbsent   = 2
)

// StatsService computes the read-only aggregation views.
type StatsService struct {
	attendanceRepo *repository.AttendanceRepository
	assignmentRepo *repository.DocumentRepository
	syllabusRepo   *repository.SyllabusRepository
	eventRepo      *repository.EventRepository
	studentRepo    *repository.StudentRepository
	cache          *cache.StatsCache
	now            func() time.Time
	log            zerolog.Logger
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	attendanceRepo *repository.AttendanceRepository,
	assignmentRepo *repository.DocumentRepository,
	syllabusRepo *repository.SyllabusRepository,
	eventRepo *repository.EventRepository,
	studentRepo *repository.StudentRepository,
	statsCache *cache.StatsCache,
	log zerolog.Logger,
) *StatsService {
	return &StatsService{
		attendanceRepo: attendanceRepo,
		assignmentRepo: assignmentRepo,
		syllabusRepo:   syllabusRepo,
		eventRepo:      eventRepo,
		studentRepo:    studentRepo,
		cache:          statsCache,
		now:            time.Now,
		log:            log.With().Str("component", "stats_service").Logger(),
	}
}

// Dashboard gathers the landing page figures for today.
func (s *StatsService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	today := s.now().Format(dateLayout)

	d, err := cache.Load(ctx, s.cache, cache.Key.Dashboard(today), func() (model.Dashboard, error) {
		return s.dashboard(ctx, today)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *StatsService) dashboard(ctx context.Context, today string) (model.Dashboard, error) {
	lectures, err := s.eventRepo.CountOn(ctx, today, model.EventTypeLecture)
	if err != nil {
		return model.Dashboard{}, err
	}
	if lectures == 0 {
		lectures = defaultTodayLectures
	}

	present, _, total, err := s.attendanceRepo.StatusCounts(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}
	assignments, err := s.assignmentRepo.Count(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}
	completed, topics, err := s.syllabusRepo.Counts(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}
	students, err := s.studentRepo.Count(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}
	upcoming, err := s.eventRepo.ListUpcoming(ctx, today, upcomingEventsLimit)
	if err != nil {
		return model.Dashboard{}, err
	}
	if upcoming == nil {
		upcoming = []model.Event{}
	}

	return model.Dashboard{
		TodayLectures:        lectures,
		AttendancePercentage: percentage(present, total),
		AssignmentsCount:     assignments,
		SyllabusPercentage:   percentage(completed, topics),
		TotalStudents:        students,
		UpcomingEvents:       upcoming,
	}, nil
}

// AttendanceChart returns the present/absent split. A zero count is
// reported as the chart placeholder instead.
func (s *StatsService) AttendanceChart(ctx context.Context) (*model.AttendanceChart, error) {
	chart, err := cache.Load(ctx, s.cache, cache.Key.AttendanceChart(), func() (model.AttendanceChart, error) {
		present, absent, _, err := s.attendanceRepo.StatusCounts(ctx)
		if err != nil {
			return model.AttendanceChart{}, err
		}
		if present == 0 {
			present = defaultChartPresent
		}
		if absent == 0 {
			absent = defaultChartAbsent
		}
		return model.AttendanceChart{Present: present, Absent: absent}, nil
	})
	if err != nil {
		return nil, err
	}
	return &chart, nil
}

// SyllabusProgress returns overall syllabus completion. An empty syllabus
// reports a total of 1, the same denominator the percentage uses.
func (s *StatsService) SyllabusProgress(ctx context.Context) (*model.SyllabusProgress, error) {
	p, err := cache.Load(ctx, s.cache, cache.Key.SyllabusProgress(), func() (model.SyllabusProgress, error) {
		completed, total, err := s.syllabusRepo.Counts(ctx)
		if err != nil {
			return model.SyllabusProgress{}, err
		}
		if total < 1 {
			total = 1
		}
		return model.SyllabusProgress{
			Completed:  completed,
			Total:      total,
			Percentage: percentage(completed, total),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SyllabusGroups returns completion per "year - subject" group.
func (s *StatsService) SyllabusGroups(ctx context.Context) ([]model.ProgressGroup, error) {
	return cache.Load(ctx, s.cache, cache.Key.SyllabusGroups(), func() ([]model.ProgressGroup, error) {
		topics, err := s.syllabusRepo.List(ctx, model.ListQuery{})
		if err != nil {
			return nil, err
		}
		return GroupProgress(topics), nil
	})
}

// AttendanceGroups returns the attendance rate per "year - subject" group.
func (s *StatsService) AttendanceGroups(ctx context.Context) ([]model.AttendanceGroup, error) {
	return cache.Load(ctx, s.cache, cache.Key.AttendanceGroups(), func() ([]model.AttendanceGroup, error) {
		groups, err := s.attendanceRepo.GroupCounts(ctx)
		if err != nil {
			return nil, err
		}
		if groups == nil {
			groups = []model.AttendanceGroup{}
		}
		for i := range groups {
			groups[i].Key = groups[i].Year + " - " + groups[i].Subject
			groups[i].Percentage = percentage(groups[i].Present, groups[i].Total)
		}
		return groups, nil
	})
}

// percentage returns part/total*100 rounded to one decimal, ties to even.
// The denominator is at least 1, so an empty set reports 0.
func percentage(part, total int) float64 {
	if total < 1 {
		total = 1
	}
	x := float64(part) / float64(total) * 100
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return v
}
