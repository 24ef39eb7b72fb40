package model

// Student is a roster entry. Marks maps subject name to a free-text score.
type Student struct {
	ID         int               `db:"id" json:"id"`
	Name       string            `db:"name" json:"name"`
	RollNumber string            `db:"roll_number" json:"roll_number"`
	Year       string            `db:"year" json:"year"`
	Email      string            `db:"email" json:"email"`
	Phone      string            `db:"phone" json:"phone"`
	Marks      map[string]string `db:"-" json:"marks"`
}

// Mark is one row of a student's marks.
type Mark struct {
	StudentID int    `db:"student_id" json:"student_id"`
	Subject   string `db:"subject" json:"subject"`
	Score     string `db:"score" json:"score"`
}

// StudentRequest is the payload for creating or editing a student.
type StudentRequest struct {
	Name       string `form:"name" json:"name" binding:"required"`
	RollNumber string `form:"roll_number" json:"roll_number" binding:"required"`
	Year       string `form:"year" json:"year" binding:"required"`
	Email      string `form:"email" json:"email"`
	Phone      string `form:"phone" json:"phone"`
}

// UpdateMarksRequest upserts one subject score.
type UpdateMarksRequest struct {
	Subject string `form:"subject" json:"subject" binding:"required"`
	Marks   string `form:"marks" json:"marks" binding:"required"`
}

// CohortRoster is a seed cohort of students.
type CohortRoster struct {
	Year     string        `yaml:"year"`
	Students []SeedStudent `yaml:"students"`
}

// SeedStudent is a student entry in the seed catalog.
type SeedStudent struct {
	Name  string `yaml:"name"`
	Roll  string `yaml:"roll"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
}
