package model

// DocumentKind distinguishes the two upload-bearing tables.
type DocumentKind string

const (
	KindAssignment DocumentKind = "assignment"
	KindNote       DocumentKind = "note"
)

// Document is an uploaded file with its course metadata. Assignments and
// notes share this shape but live in independent tables.
type Document struct {
	ID          int    `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Year        string `db:"year" json:"year"`
	Subject     string `db:"subject" json:"subject"`
	Filename    string `db:"filename" json:"filename"`
	UploadDate  string `db:"upload_date" json:"upload_date"`
	Description string `db:"description" json:"description"`
}

// DocumentRequest carries the form fields sent alongside an upload, and the
// fields accepted when editing a document's metadata.
type DocumentRequest struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Year        string `form:"year" json:"year" binding:"required"`
	Subject     string `form:"subject" json:"subject" binding:"required"`
	Description string `form:"description" json:"description"`
}
