package cache

import "fmt"

const (
	keyPrefix = "faculty:stats:"

	// generationKey holds the counter Invalidate bumps.
	generationKey = keyPrefix + "generation"

	// entryPattern matches cached values of every generation.
	entryPattern = keyPrefix + "v*"
)

type keyStruct struct{}

// Key builds aggregation entry names. Load scopes them to the current
// generation.
var Key = keyStruct{}

// Dashboard returns the name for the dashboard of a given day. Today's date
// is part of it because today_lectures and upcoming events depend on it.
func (keyStruct) Dashboard(date string) string {
	return "dashboard:" + date
}

// AttendanceChart returns the name for the present/absent split.
func (keyStruct) AttendanceChart() string {
	return "attendance_chart"
}

// AttendanceGroups returns the name for per-cohort attendance rates.
func (keyStruct) AttendanceGroups() string {
	return "attendance_groups"
}

// SyllabusProgress returns the name for overall syllabus completion.
func (keyStruct) SyllabusProgress() string {
	return "syllabus_progress"
}

// SyllabusGroups returns the name for per-cohort syllabus completion.
func (keyStruct) SyllabusGroups() string {
	return "syllabus_groups"
}

func entryKey(gen int64, name string) string {
	return fmt.Sprintf("%sv%d:%s", keyPrefix, gen, name)
}
