package model

// Well-known event types. The set is open.
const (
	EventTypeLecture = "lecture"
	EventTypeMeeting = "meeting"
)

// Event is a calendar entry.
type Event struct {
	ID          int    `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Date        string `db:"date" json:"date"`
	Time        string `db:"time" json:"time"`
	Type        string `db:"type" json:"type"`
	Description string `db:"description" json:"description"`
	// Notified is stored and returned but no operation sets it.
	Notified bool `db:"notified" json:"notified"`
}

// EventRequest is the payload for creating or editing an event.
type EventRequest struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Date        string `form:"date" json:"date" binding:"required"`
	Time        string `form:"time" json:"time" binding:"required"`
	Type        string `form:"type" json:"type" binding:"required"`
	Description string `form:"description" json:"description"`
}
