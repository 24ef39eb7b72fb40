package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/stemsi/faculty-backend/internal/model"
)

// Sentinel errors shared by all repositories.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateRollNumber = errors.New("student with this roll number already exists")
)

// sortSpec maps public sort keys to column lists for one table.
type sortSpec struct {
	columns    map[string][]string
	defaultKey string
	defaultDsc bool
}

// orderBy renders an ORDER BY clause. Unknown keys fall back to the default;
// id is always appended as a tie-breaker in the same direction.
func (s sortSpec) orderBy(q model.ListQuery) string {
	cols, ok := s.columns[q.Sort]
	if !ok {
		cols = s.columns[s.defaultKey]
	}

	desc := s.defaultDsc
	switch q.Order {
	case "asc":
		desc = false
	case "desc":
		desc = true
	}

	dir := " ASC"
	if desc {
		dir = " DESC"
	}

	parts := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		parts = append(parts, c+dir)
	}
	if cols[len(cols)-1] != "id" {
		parts = append(parts, "id"+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func getOne(ctx context.Context, q sqlx.QueryerContext, dst interface{}, query string, args ...interface{}) error {
	err := sqlx.GetContext(ctx, q, dst, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// mustAffect turns a zero-row UPDATE/DELETE into ErrNotFound.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func count(ctx context.Context, db *sqlx.DB, query string, args ...interface{}) (int, error) {
	var n int
	err := db.GetContext(ctx, &n, db.Rebind(query), args...)
	return n, err
}
