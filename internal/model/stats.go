package model

// ListQuery selects the ordering of a list endpoint.
type ListQuery struct {
	Sort  string `form:"sort"`
	Order string `form:"order" binding:"omitempty,oneof=asc desc"`
}

// Dashboard is the landing page aggregate.
type Dashboard struct {
	TodayLectures        int     `json:"today_lectures"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	AssignmentsCount     int     `json:"assignments_count"`
	SyllabusPercentage   float64 `json:"syllabus_percentage"`
	TotalStudents        int     `json:"total_students"`
	UpcomingEvents       []Event `json:"upcoming_events"`
}

// AttendanceChart is the present/absent split used by the dashboard chart.
type AttendanceChart struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

// SyllabusProgress is the overall completion of the syllabus.
type SyllabusProgress struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ProgressGroup is the syllabus completion of one "year - subject" group.
type ProgressGroup struct {
	Key        string  `json:"key"`
	Year       string  `json:"year"`
	Subject    string  `json:"subject"`
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

// AttendanceGroup is the attendance rate of one "year - subject" group.
type AttendanceGroup struct {
	Key        string  `json:"key"`
	Year       string  `json:"year"`
	Subject    string  `json:"subject"`
	Present    int     `json:"present"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}
