package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/stemsi/faculty-backend/internal/database"
	"github.com/stemsi/faculty-backend/internal/model"
)

const studentColumns = `id, name, roll_number, year, email, phone`

var studentSort = sortSpec{
	columns: map[string][]string{
		"id":          {"id"},
		"name":        {"name"},
		"roll_number": {"roll_number"},
		"year":        {"year", "roll_number"},
	},
	defaultKey: "id",
}

// StudentRepository handles student and student mark data access.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// GetByID retrieves a student by ID, including marks.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := getOne(ctx, r.db, s, r.db.Rebind(`SELECT `+studentColumns+` FROM students WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	if s.Marks, err = r.Marks(ctx, id); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByRollNumber retrieves a student by their unique roll number. Marks are not loaded.
func (r *StudentRepository) GetByRollNumber(ctx context.Context, rollNumber string) (*model.Student, error) {
	s := &model.Student{}
	err := getOne(ctx, r.db, s, r.db.Rebind(`SELECT `+studentColumns+` FROM students WHERE roll_number = ?`), rollNumber)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns all students in the requested order with their marks.
func (r *StudentRepository) List(ctx context.Context, q model.ListQuery) ([]model.Student, error) {
	var students []model.Student
	if err := r.db.SelectContext(ctx, &students, `SELECT `+studentColumns+` FROM students`+studentSort.orderBy(q)); err != nil {
		return nil, err
	}

	var marks []model.Mark
	if err := r.db.SelectContext(ctx, &marks, `SELECT student_id, subject, score FROM student_marks`); err != nil {
		return nil, err
	}

	byStudent := make(map[int]map[string]string, len(students))
	for _, m := range marks {
		if byStudent[m.StudentID] == nil {
			byStudent[m.StudentID] = make(map[string]string)
		}
		byStudent[m.StudentID][m.Subject] = m.Score
	}
	for i := range students {
		students[i].Marks = byStudent[students[i].ID]
		if students[i].Marks == nil {
			students[i].Marks = map[string]string{}
		}
	}
	return students, nil
}

// ListByYear returns the roster of one cohort in insertion order.
func (r *StudentRepository) ListByYear(ctx context.Context, year string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.SelectContext(ctx, &students,
		r.db.Rebind(`SELECT `+studentColumns+` FROM students WHERE year = ? ORDER BY id ASC`), year)
	return students, err
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.db.QueryRowxContext(ctx,
		r.db.Rebind(`INSERT INTO students (name, roll_number, year, email, phone)
			VALUES (?, ?, ?, ?, ?) RETURNING id`),
		s.Name, s.RollNumber, s.Year, s.Email, s.Phone,
	).Scan(&s.ID)
	if database.IsUniqueViolation(err) {
		return ErrDuplicateRollNumber
	}
	return err
}

// Update modifies a student's roster fields. Marks are untouched.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	err := mustAffect(r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE students SET name = ?, roll_number = ?, year = ?, email = ?, phone = ? WHERE id = ?`),
		s.Name, s.RollNumber, s.Year, s.Email, s.Phone, s.ID,
	))
	if database.IsUniqueViolation(err) {
		return ErrDuplicateRollNumber
	}
	return err
}

// Delete removes a student and their marks in one transaction.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM student_marks WHERE student_id = ?`), id); err != nil {
			return err
		}
		return mustAffect(tx.ExecContext(ctx, tx.Rebind(`DELETE FROM students WHERE id = ?`), id))
	})
}

// Count returns the number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM students`)
}

// Marks returns a student's subject scores.
func (r *StudentRepository) Marks(ctx context.Context, studentID int) (map[string]string, error) {
	var rows []model.Mark
	err := r.db.SelectContext(ctx, &rows,
		r.db.Rebind(`SELECT student_id, subject, score FROM student_marks WHERE student_id = ? ORDER BY subject`), studentID)
	if err != nil {
		return nil, err
	}
	marks := make(map[string]string, len(rows))
	for _, m := range rows {
		marks[m.Subject] = m.Score
	}
	return marks, nil
}

// UpsertMark sets one subject score. Concurrent upserts for different
// subjects never overwrite each other.
func (r *StudentRepository) UpsertMark(ctx context.Context, studentID int, subject, score string) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO student_marks (student_id, subject, score) VALUES (?, ?, ?)
			ON CONFLICT (student_id, subject) DO UPDATE SET score = excluded.score`),
		studentID, subject, score,
	)
	return err
}
