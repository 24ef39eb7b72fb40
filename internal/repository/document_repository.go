package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stemsi/faculty-backend/internal/model"
)

const documentColumns = `id, title, year, subject, filename, upload_date, description`

var documentSort = sortSpec{
	columns: map[string][]string{
		"upload_date": {"upload_date"},
		"title":       {"title"},
		"year":        {"year"},
		"subject":     {"subject"},
		"id":          {"id"},
	},
	defaultKey: "upload_date",
	defaultDsc: true,
}

// DocumentRepository handles one upload-bearing table (assignments or notes).
type DocumentRepository struct {
	db    *sqlx.DB
	table string
}

// NewAssignmentRepository returns a DocumentRepository over the assignments table.
func NewAssignmentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db, table: "assignments"}
}

// NewNoteRepository returns a DocumentRepository over the notes table.
func NewNoteRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db, table: "notes"}
}

// Create inserts a document and assigns its ID.
func (r *DocumentRepository) Create(ctx context.Context, d *model.Document) error {
	query := fmt.Sprintf(`INSERT INTO %s (title, year, subject, filename, upload_date, description)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`, r.table)
	return r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		d.Title, d.Year, d.Subject, d.Filename, d.UploadDate, d.Description,
	).Scan(&d.ID)
}

// GetByID retrieves a document by ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id int) (*model.Document, error) {
	d := &model.Document{}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, documentColumns, r.table)
	if err := getOne(ctx, r.db, d, r.db.Rebind(query), id); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns all documents in the requested order.
func (r *DocumentRepository) List(ctx context.Context, q model.ListQuery) ([]model.Document, error) {
	var docs []model.Document
	query := fmt.Sprintf(`SELECT %s FROM %s`, documentColumns, r.table) + documentSort.orderBy(q)
	err := r.db.SelectContext(ctx, &docs, query)
	return docs, err
}

// Update overwrites a document's metadata. The file reference is left unchanged.
func (r *DocumentRepository) Update(ctx context.Context, d *model.Document) error {
	query := fmt.Sprintf(`UPDATE %s SET title = ?, year = ?, subject = ?, description = ? WHERE id = ?`, r.table)
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(query),
		d.Title, d.Year, d.Subject, d.Description, d.ID,
	))
}

// Delete removes a document row by ID.
func (r *DocumentRepository) Delete(ctx context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.table)
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(query), id))
}

// Count returns the number of documents in the table.
func (r *DocumentRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table))
}
