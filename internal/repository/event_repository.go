package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/stemsi/faculty-backend/internal/model"
)

const eventColumns = `id, title, date, time, type, description, notified`

var eventSort = sortSpec{
	columns: map[string][]string{
		"date":  {"date", "time"},
		"title": {"title"},
		"type":  {"type"},
		"id":    {"id"},
	},
	defaultKey: "date",
}

// EventRepository handles calendar event data access.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts an event and assigns its ID.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	return r.db.QueryRowxContext(ctx,
		r.db.Rebind(`INSERT INTO events (title, date, time, type, description, notified)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		e.Title, e.Date, e.Time, e.Type, e.Description, e.Notified,
	).Scan(&e.ID)
}

// GetByID retrieves an event by ID.
func (r *EventRepository) GetByID(ctx context.Context, id int) (*model.Event, error) {
	e := &model.Event{}
	err := getOne(ctx, r.db, e, r.db.Rebind(`SELECT `+eventColumns+` FROM events WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List returns all events in the requested order.
func (r *EventRepository) List(ctx context.Context, q model.ListQuery) ([]model.Event, error) {
	var events []model.Event
	err := r.db.SelectContext(ctx, &events, `SELECT `+eventColumns+` FROM events`+eventSort.orderBy(q))
	return events, err
}

// ListUpcoming returns up to limit events dated on or after from, soonest first.
// Dates are compared as YYYY-MM-DD strings.
func (r *EventRepository) ListUpcoming(ctx context.Context, from string, limit int) ([]model.Event, error) {
	var events []model.Event
	err := r.db.SelectContext(ctx, &events, r.db.Rebind(
		`SELECT `+eventColumns+` FROM events
		 WHERE date >= ?
		 ORDER BY date ASC, time ASC, id ASC
		 LIMIT ?`), from, limit)
	return events, err
}

// Update overwrites the editable fields of an event.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	return mustAffect(r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE events SET title = ?, date = ?, time = ?, type = ?, description = ? WHERE id = ?`),
		e.Title, e.Date, e.Time, e.Type, e.Description, e.ID,
	))
}

// Delete removes an event by ID.
func (r *EventRepository) Delete(ctx context.Context, id int) error {
	return mustAffect(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM events WHERE id = ?`), id))
}

// CountOn returns the number of events of the given type on a date.
func (r *EventRepository) CountOn(ctx context.Context, date, eventType string) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM events WHERE date = ? AND type = ?`, date, eventType)
}

// Count returns the number of events.
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM events`)
}
