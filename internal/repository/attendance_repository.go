package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/stemsi/faculty-backend/internal/database"
	"github.com/stemsi/faculty-backend/internal/model"
)

const attendanceColumns = `id, date, year, subject, student_name, status`

var attendanceSort = sortSpec{
	columns: map[string][]string{
		"date":         {"date"},
		"year":         {"year"},
		"subject":      {"subject"},
		"student_name": {"student_name"},
		"status":       {"status"},
		"id":           {"id"},
	},
	defaultKey: "date",
	defaultDsc: true,
}

// AttendanceRepository handles attendance data access.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// CreateBatch inserts a whole attendance sheet in one transaction.
func (r *AttendanceRepository) CreateBatch(ctx context.Context, records []*model.Attendance) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`INSERT INTO attendance (date, year, subject, student_name, status)
			VALUES (?, ?, ?, ?, ?) RETURNING id`)
		for _, a := range records {
			if err := tx.QueryRowxContext(ctx, query,
				a.Date, a.Year, a.Subject, a.StudentName, a.Status,
			).Scan(&a.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves one attendance row.
func (r *AttendanceRepository) GetByID(ctx context.Context, id int) (*model.Attendance, error) {
	a := &model.Attendance{}
	err := getOne(ctx, r.db, a, r.db.Rebind(`SELECT `+attendanceColumns+` FROM attendance WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns all attendance rows in the requested order.
func (r *AttendanceRepository) List(ctx context.Context, q model.ListQuery) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.SelectContext(ctx, &records, `SELECT `+attendanceColumns+` FROM attendance`+attendanceSort.orderBy(q))
	return records, err
}

// Update overwrites every field of an attendance row.
func (r *AttendanceRepository) Update(ctx context.Context, a *model.Attendance) error {
	return mustAffect(r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE attendance SET date = ?, year = ?, subject = ?, student_name = ?, status = ? WHERE id = ?`),
		a.Date, a.Year, a.Subject, a.StudentName, a.Status, a.ID,
	))
}

// Delete removes an attendance row by ID.
func (r *AttendanceRepository) Delete(ctx context.Context, id int) error {
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM attendance WHERE id = ?`), id))
}

// StatusCounts returns the number of Present and Absent rows and the overall total.
func (r *AttendanceRepository) StatusCounts(ctx context.Context) (present, absent, total int, err error) {
	row := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`SELECT
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COUNT(*)
		 FROM attendance`),
		model.StatusPresent, model.StatusAbsent,
	)
	err = row.Scan(&present, &absent, &total)
	return
}

// GroupCounts returns present/total counts per (year, subject) in order of
// first appearance.
func (r *AttendanceRepository) GroupCounts(ctx context.Context) ([]model.AttendanceGroup, error) {
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(
		`SELECT year, subject,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COUNT(*)
		 FROM attendance
		 GROUP BY year, subject
		 ORDER BY MIN(id)`),
		model.StatusPresent,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.AttendanceGroup
	for rows.Next() {
		var g model.AttendanceGroup
		if err := rows.Scan(&g.Year, &g.Subject, &g.Present, &g.Total); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
