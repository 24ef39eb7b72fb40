package model

import (
	"bytes"
	"encoding/json"
)

// SyllabusTopic is one topic of a cohort's subject.
type SyllabusTopic struct {
	ID        int    `db:"id" json:"id"`
	Year      string `db:"year" json:"year"`
	Subject   string `db:"subject" json:"subject"`
	Topic     string `db:"topic" json:"topic"`
	Completed bool   `db:"completed" json:"completed"`
	// CompletionDate is set only while Completed is true.
	CompletionDate *string `db:"completion_date" json:"completion_date"`
}

// UpdateSyllabusRequest toggles a topic. Completed set to "true" marks the
// topic done; any other value clears it.
type UpdateSyllabusRequest struct {
	TopicID   int      `form:"topic_id" json:"topic_id" binding:"required"`
	Completed TrueFlag `form:"completed" json:"completed"`
}

// TrueFlag is a form value that is on only when it reads "true". In JSON it
// also accepts a boolean.
type TrueFlag string

// IsTrue reports whether the flag is on.
func (f TrueFlag) IsTrue() bool {
	return f == "true"
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *TrueFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", "false":
		*f = TrueFlag(data)
		return nil
	case "null":
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = TrueFlag(s)
	return nil
}

// AddSyllabusTopicRequest is the payload for adding a single topic.
type AddSyllabusTopicRequest struct {
	Year    string `form:"year" json:"year" binding:"required"`
	Subject string `form:"subject" json:"subject" binding:"required"`
	Topic   string `form:"topic" json:"topic" binding:"required"`
}

// SubjectTopics lists a subject's topics in teaching order.
type SubjectTopics struct {
	Subject string   `yaml:"subject" json:"subject"`
	Topics  []string `yaml:"topics" json:"topics"`
}

// CohortSyllabus is the syllabus catalog of one cohort.
type CohortSyllabus struct {
	Year     string          `yaml:"year" json:"year"`
	Subjects []SubjectTopics `yaml:"subjects" json:"subjects"`
}
