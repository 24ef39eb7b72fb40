package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/cache"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/repository"
	"github.com/xuri/excelize/v2"
)

// AttendanceService handles attendance sheets and records.
type AttendanceService struct {
	attendanceRepo *repository.AttendanceRepository
	studentRepo    *repository.StudentRepository
	stats          *cache.StatsCache
	log            zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(
	attendanceRepo *repository.AttendanceRepository,
	studentRepo *repository.StudentRepository,
	stats *cache.StatsCache,
	log zerolog.Logger,
) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		studentRepo:    studentRepo,
		stats:          stats,
		log:            log.With().Str("component", "attendance_service").Logger(),
	}
}

// Rosters returns the students of every cohort, cohorts and students in
// roster order.
func (s *AttendanceService) Rosters(ctx context.Context) ([]model.Roster, error) {
	students, err := s.studentRepo.List(ctx, model.ListQuery{Sort: "year", Order: "asc"})
	if err != nil {
		return nil, err
	}

	rosters := []model.Roster{}
	index := make(map[string]int)
	for _, st := range students {
		i, ok := index[st.Year]
		if !ok {
			i = len(rosters)
			index[st.Year] = i
			rosters = append(rosters, model.Roster{Year: st.Year})
		}
		rosters[i].Students = append(rosters[i].Students, st)
	}
	return rosters, nil
}

// RecordSheet stores one lecture's attendance for the whole cohort named by
// req.Year. Students without a status are recorded Absent. The sheet is
// written atomically.
func (s *AttendanceService) RecordSheet(ctx context.Context, req model.AttendanceSheetRequest) ([]*model.Attendance, error) {
	if err := requireFields("date", req.Date, "year", req.Year, "subject", req.Subject); err != nil {
		return nil, err
	}

	roster, err := s.studentRepo.ListByYear(ctx, req.Year)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, fieldError("year", fmt.Sprintf("no students enrolled in %s", req.Year))
	}

	records := make([]*model.Attendance, 0, len(roster))
	invalid := make(map[string]string)
	for _, st := range roster {
		status := req.Statuses[st.Name]
		switch status {
		case "":
			status = model.StatusAbsent
		case model.StatusPresent, model.StatusAbsent:
		default:
			invalid["status_"+st.Name] = "status must be one of [Present Absent]"
			continue
		}
		records = append(records, &model.Attendance{
			Date:        req.Date,
			Year:        req.Year,
			Subject:     req.Subject,
			StudentName: st.Name,
			Status:      status,
		})
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	if err := s.attendanceRepo.CreateBatch(ctx, records); err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx)

	s.log.Info().
		Str("date", req.Date).
		Str("year", req.Year).
		Str("subject", req.Subject).
		Int("rows", len(records)).
		Msg("Attendance sheet recorded")
	return records, nil
}

// List returns attendance rows, newest date first unless q says otherwise.
func (s *AttendanceService) List(ctx context.Context, q model.ListQuery) ([]model.Attendance, error) {
	records, err := s.attendanceRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.Attendance{}
	}
	return records, nil
}

// Get retrieves one attendance row.
func (s *AttendanceService) Get(ctx context.Context, id int) (*model.Attendance, error) {
	a, err := s.attendanceRepo.GetByID(ctx, id)
	return a, translate(err)
}

// Update overwrites one attendance row.
func (s *AttendanceService) Update(ctx context.Context, id int, req model.UpdateAttendanceRequest) (*model.Attendance, error) {
	if err := requireFields(
		"date", req.Date,
		"year", req.Year,
		"subject", req.Subject,
		"student_name", req.StudentName,
		"status", req.Status,
	); err != nil {
		return nil, err
	}
	if req.Status != model.StatusPresent && req.Status != model.StatusAbsent {
		return nil, fieldError("status", "status must be one of [Present Absent]")
	}

	a := &model.Attendance{
		ID:          id,
		Date:        req.Date,
		Year:        req.Year,
		Subject:     req.Subject,
		StudentName: req.StudentName,
		Status:      req.Status,
	}
	if err := s.attendanceRepo.Update(ctx, a); err != nil {
		return nil, translate(err)
	}
	s.stats.Invalidate(ctx)
	return a, nil
}

// Delete removes one attendance row.
func (s *AttendanceService) Delete(ctx context.Context, id int) error {
	if err := s.attendanceRepo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.stats.Invalidate(ctx)
	return nil
}

var exportHeader = []interface{}{"ID", "Date", "Year", "Subject", "Student", "Status"}

// Export builds a workbook with one row per attendance record, ordered as
// List orders them. The caller must Close the workbook.
func (s *AttendanceService) Export(ctx context.Context, q model.ListQuery) (*excelize.File, error) {
	records, err := s.attendanceRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Attendance"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := sw.SetRow("A1", exportHeader); err != nil {
		f.Close()
		return nil, err
	}
	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{r.ID, r.Date, r.Year, r.Subject, r.StudentName, r.Status}
		if err := sw.SetRow(cell, row); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		f.Close()
		return nil, err
	}

	s.log.Debug().Int("rows", len(records)).Msg("Attendance exported")
	return f, nil
}
