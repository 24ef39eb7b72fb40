package model

// Attendance status values.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// Attendance is one student's presence for one (date, subject) lecture.
type Attendance struct {
	ID          int    `db:"id" json:"id"`
	Date        string `db:"date" json:"date"`
	Year        string `db:"year" json:"year"`
	Subject     string `db:"subject" json:"subject"`
	StudentName string `db:"student_name" json:"student_name"`
	Status      string `db:"status" json:"status"`
}

// AttendanceSheetRequest records one lecture for a whole cohort.
// Form submissions carry statuses as status_<student name> fields.
type AttendanceSheetRequest struct {
	Date     string            `form:"date" json:"date" binding:"required"`
	Year     string            `form:"year" json:"year" binding:"required"`
	Subject  string            `form:"subject" json:"subject" binding:"required"`
	Statuses map[string]string `form:"-" json:"statuses"`
}

// UpdateAttendanceRequest is the payload for editing a single attendance row.
type UpdateAttendanceRequest struct {
	Date        string `form:"date" json:"date" binding:"required"`
	Year        string `form:"year" json:"year" binding:"required"`
	Subject     string `form:"subject" json:"subject" binding:"required"`
	StudentName string `form:"student_name" json:"student_name" binding:"required"`
	Status      string `form:"status" json:"status" binding:"required,oneof=Present Absent"`
}

// Roster is the students of one cohort, the rows of an attendance sheet.
type Roster struct {
	Year     string    `json:"year"`
	Students []Student `json:"students"`
}
