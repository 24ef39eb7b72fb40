package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/stemsi/faculty-backend/internal/database"
	"github.com/stemsi/faculty-backend/internal/model"
)

const syllabusColumns = `id, year, subject, topic, completed, completion_date`

var syllabusSort = sortSpec{
	columns: map[string][]string{
		"id":              {"id"},
		"year":            {"year", "subject"},
		"subject":         {"subject"},
		"topic":           {"topic"},
		"completed":       {"completed"},
		"completion_date": {"completion_date"},
	},
	defaultKey: "id",
}

// SyllabusRepository handles syllabus topic data access.
type SyllabusRepository struct {
	db *sqlx.DB
}

// NewSyllabusRepository creates a new SyllabusRepository.
func NewSyllabusRepository(db *sqlx.DB) *SyllabusRepository {
	return &SyllabusRepository{db: db}
}

func insertTopic(ctx context.Context, q sqlx.QueryerContext, query string, t *model.SyllabusTopic) error {
	return q.QueryRowxContext(ctx, query,
		t.Year, t.Subject, t.Topic, t.Completed, t.CompletionDate,
	).Scan(&t.ID)
}

const insertTopicSQL = `INSERT INTO syllabus (year, subject, topic, completed, completion_date)
	VALUES (?, ?, ?, ?, ?) RETURNING id`

// Create inserts a single topic.
func (r *SyllabusRepository) Create(ctx context.Context, t *model.SyllabusTopic) error {
	return insertTopic(ctx, r.db, r.db.Rebind(insertTopicSQL), t)
}

// Replace deletes every topic and inserts topics in order, atomically.
func (r *SyllabusRepository) Replace(ctx context.Context, topics []*model.SyllabusTopic) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM syllabus`); err != nil {
			return err
		}
		query := tx.Rebind(insertTopicSQL)
		for _, t := range topics {
			if err := insertTopic(ctx, tx, query, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a topic by ID.
func (r *SyllabusRepository) GetByID(ctx context.Context, id int) (*model.SyllabusTopic, error) {
	t := &model.SyllabusTopic{}
	err := getOne(ctx, r.db, t, r.db.Rebind(`SELECT `+syllabusColumns+` FROM syllabus WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns all topics in the requested order.
func (r *SyllabusRepository) List(ctx context.Context, q model.ListQuery) ([]model.SyllabusTopic, error) {
	var topics []model.SyllabusTopic
	err := r.db.SelectContext(ctx, &topics, `SELECT `+syllabusColumns+` FROM syllabus`+syllabusSort.orderBy(q))
	return topics, err
}

// SetCompleted updates the completion flag and date of a topic.
func (r *SyllabusRepository) SetCompleted(ctx context.Context, id int, completed bool, completionDate *string) error {
	return mustAffect(r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE syllabus SET completed = ?, completion_date = ? WHERE id = ?`),
		completed, completionDate, id,
	))
}

// Delete removes a topic by ID.
func (r *SyllabusRepository) Delete(ctx context.Context, id int) error {
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM syllabus WHERE id = ?`), id))
}

// Counts returns the number of completed topics and the overall total.
func (r *SyllabusRepository) Counts(ctx context.Context) (completed, total int, err error) {
	row := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`SELECT COALESCE(SUM(CASE WHEN completed = ? THEN 1 ELSE 0 END), 0), COUNT(*) FROM syllabus`),
		true,
	)
	err = row.Scan(&completed, &total)
	return
}
