package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/cache"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/repository"
)

// StudentService handles the roster and student marks.
type StudentService struct {
	studentRepo *repository.StudentRepository
	stats       *cache.StatsCache
	log         zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, stats *cache.StatsCache, log zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		stats:       stats,
		log:         log.With().Str("component", "student_service").Logger(),
	}
}

// List returns every student with marks, by ID unless q says otherwise.
func (s *StudentService) List(ctx context.Context, q model.ListQuery) ([]model.Student, error) {
	students, err := s.studentRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

// Get retrieves a student with marks.
func (s *StudentService) Get(ctx context.Context, id int) (*model.Student, error) {
	st, err := s.studentRepo.GetByID(ctx, id)
	return st, translate(err)
}

// Create adds a student with no marks. A roll number already in use fails
// with ErrConflict and creates nothing.
func (s *StudentService) Create(ctx context.Context, req model.StudentRequest) (*model.Student, error) {
	if err := validateStudent(req); err != nil {
		return nil, err
	}
	if err := s.checkRollNumber(ctx, req.RollNumber, 0); err != nil {
		return nil, err
	}

	st := &model.Student{
		Name:       req.Name,
		RollNumber: req.RollNumber,
		Year:       req.Year,
		Email:      req.Email,
		Phone:      req.Phone,
		Marks:      map[string]string{},
	}
	// The unique index still catches a concurrent insert that slipped past
	// the pre-check.
	if err := s.studentRepo.Create(ctx, st); err != nil {
		return nil, translate(err)
	}
	s.stats.Invalidate(ctx)

	s.log.Debug().Int("student_id", st.ID).Str("roll_number", st.RollNumber).Msg("Student created")
	return st, nil
}

// Update overwrites a student's roster fields.
func (s *StudentService) Update(ctx context.Context, id int, req model.StudentRequest) (*model.Student, error) {
	if err := validateStudent(req); err != nil {
		return nil, err
	}

	st, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.checkRollNumber(ctx, req.RollNumber, id); err != nil {
		return nil, err
	}

	st.Name = req.Name
	st.RollNumber = req.RollNumber
	st.Year = req.Year
	st.Email = req.Email
	st.Phone = req.Phone

	if err := s.studentRepo.Update(ctx, st); err != nil {
		return nil, translate(err)
	}
	return st, nil
}

// Delete removes a student and their marks.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.stats.Invalidate(ctx)
	return nil
}

// UpdateMarks sets the score of one subject and returns the student with
// all marks. Scores are free text.
func (s *StudentService) UpdateMarks(ctx context.Context, id int, req model.UpdateMarksRequest) (*model.Student, error) {
	if err := requireFields("subject", req.Subject, "marks", req.Marks); err != nil {
		return nil, err
	}

	if _, err := s.studentRepo.GetByID(ctx, id); err != nil {
		return nil, translate(err)
	}
	if err := s.studentRepo.UpsertMark(ctx, id, req.Subject, req.Marks); err != nil {
		return nil, err
	}

	st, err := s.studentRepo.GetByID(ctx, id)
	return st, translate(err)
}

// checkRollNumber fails with ErrConflict when roll belongs to a student other
// than selfID.
func (s *StudentService) checkRollNumber(ctx context.Context, roll string, selfID int) error {
	existing, err := s.studentRepo.GetByRollNumber(ctx, roll)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return translate(repository.ErrDuplicateRollNumber)
	}
	return nil
}

func validateStudent(req model.StudentRequest) error {
	return requireFields(
		"name", req.Name,
		"roll_number", req.RollNumber,
		"year", req.Year,
	)
}
