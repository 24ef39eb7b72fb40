package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/cache"
	"github.com/stemsi/faculty-backend/internal/database/dbtest"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/repository"
	"github.com/stemsi/faculty-backend/internal/seed"
	"github.com/stemsi/faculty-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

const fixedToday = "2024-03-15"

type fixture struct {
	db          *sqlx.DB
	files       *storage.FileStore
	events      *EventService
	attendance  *AttendanceService
	assignments *DocumentService
	notes       *DocumentService
	syllabus    *SyllabusService
	students    *StudentService
	stats       *StatsService
}

func newFixture(t *testing.T, catalog []model.CohortSyllabus) *fixture {
	t.Helper()
	return newCachedFixture(t, catalog, nil)
}

func newCachedFixture(t *testing.T, catalog []model.CohortSyllabus, statsCache *cache.StatsCache) *fixture {
	t.Helper()
	cfg := dbtest.Config(t)
	db := dbtest.Open(t, cfg)
	log := zerolog.Nop()

	files, err := storage.NewFileStore(cfg.UploadDir)
	require.NoError(t, err)

	attendanceRepo := repository.NewAttendanceRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	syllabusRepo := repository.NewSyllabusRepository(db)
	eventRepo := repository.NewEventRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	f := &fixture{
		db:          db,
		files:       files,
		events:      NewEventService(eventRepo, statsCache, log),
		attendance:  NewAttendanceService(attendanceRepo, studentRepo, statsCache, log),
		assignments: NewDocumentService(model.KindAssignment, assignmentRepo, files, statsCache, cfg.MaxUploadBytes, log),
		notes:       NewDocumentService(model.KindNote, noteRepo, files, statsCache, cfg.MaxUploadBytes, log),
		syllabus:    NewSyllabusService(syllabusRepo, catalog, statsCache, log),
		students:    NewStudentService(studentRepo, statsCache, log),
		stats:       NewStatsService(attendanceRepo, assignmentRepo, syllabusRepo, eventRepo, studentRepo, statsCache, log),
	}
	f.assignments.now = fixedNow
	f.notes.now = fixedNow
	f.syllabus.now = fixedNow
	f.stats.now = fixedNow
	return f
}

func (f *fixture) addStudent(t *testing.T, name, roll, year string) *model.Student {
	t.Helper()
	st, err := f.students.Create(context.Background(), model.StudentRequest{Name: name, RollNumber: roll, Year: year})
	require.NoError(t, err)
	return st
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.ErrorIs(t, err, ErrValidation)
	return ve.Fields
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, percentage(0, 0))
	assert.Equal(t, 33.3, percentage(1, 3))
	assert.Equal(t, 66.7, percentage(2, 3))
	assert.Equal(t, 100.0, percentage(5, 5))
	assert.Equal(t, 12.5, percentage(1, 8))
	assert.Equal(t, 6.2, percentage(1, 16))
	assert.Equal(t, 31.2, percentage(5, 16))
}

func TestRequireFields(t *testing.T) {
	assert.NoError(t, requireFields("a", "x", "b", "y"))

	err := requireFields("a", "", "b", "  ", "c", "ok")
	fields := fieldsOf(t, err)
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, "a")
	assert.Contains(t, fields, "b")
	assert.Equal(t, "validation failed: a, b", err.Error())
}

func TestSyllabus_ReseedAndComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, []model.CohortSyllabus{{
		Year: "SE",
		Subjects: []model.SubjectTopics{
			{Subject: "Data Structures", Topics: []string{"Arrays", "Linked Lists", "Stacks"}},
		},
	}})

	n, err := f.syllabus.Reseed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	topics, err := f.syllabus.List(ctx, model.ListQuery{})
	require.NoError(t, err)
	require.Len(t, topics, 3)
	for _, topic := range topics {
		assert.False(t, topic.Completed)
		assert.Nil(t, topic.CompletionDate)
	}
	require.Equal(t, "Arrays", topics[0].Topic)

	done, err := f.syllabus.SetCompleted(ctx, topics[0].ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletionDate)
	assert.Equal(t, fixedToday, *done.CompletionDate)

	progress, err := f.stats.SyllabusProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SyllabusProgress{Completed: 1, Total: 3, Percentage: 33.3}, *progress)

	// Reseeding again resets completion and leaves the same topic set.
	n, err = f.syllabus.Reseed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	progress, err = f.stats.SyllabusProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.Completed)
	assert.Equal(t, 3, progress.Total)
}

func TestSyllabus_UncompleteClearsDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	topic, err := f.syllabus.AddTopic(ctx, model.AddSyllabusTopicRequest{Year: "TE", Subject: "DB", Topic: "SQL"})
	require.NoError(t, err)

	_, err = f.syllabus.SetCompleted(ctx, topic.ID, true)
	require.NoError(t, err)
	cleared, err := f.syllabus.SetCompleted(ctx, topic.ID, false)
	require.NoError(t, err)
	assert.False(t, cleared.Completed)
	assert.Nil(t, cleared.CompletionDate)

	_, err = f.syllabus.SetCompleted(ctx, 999, true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.syllabus.AddTopic(ctx, model.AddSyllabusTopicRequest{Year: "TE"})
	assert.Len(t, fieldsOf(t, err), 2)

	require.NoError(t, f.syllabus.Delete(ctx, topic.ID))
	assert.ErrorIs(t, f.syllabus.Delete(ctx, topic.ID), ErrNotFound)
}

func TestGroupProgress(t *testing.T) {
	topics := []model.SyllabusTopic{
		{Year: "SE", Subject: "DS", Completed: true},
		{Year: "TE", Subject: "DB"},
		{Year: "SE", Subject: "DS"},
		{Year: "SE", Subject: "SE", Completed: true},
		{Year: "TE", Subject: "DB", Completed: true},
		{Year: "SE", Subject: "DS"},
	}

	groups := GroupProgress(topics)
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"SE - DS", "TE - DB", "SE - SE"},
		[]string{groups[0].Key, groups[1].Key, groups[2].Key})
	assert.Equal(t, model.ProgressGroup{Key: "SE - DS", Year: "SE", Subject: "DS", Total: 3, Completed: 1, Percentage: 33.3}, groups[0])

	var total, completed int
	for _, g := range groups {
		total += g.Total
		completed += g.Completed
	}
	assert.Equal(t, len(topics), total)
	assert.Equal(t, 3, completed)

	assert.Empty(t, GroupProgress(nil))
}

func TestStudents_RollNumberConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	alice := f.addStudent(t, "Alice", "SE001", "SE")
	assert.NotNil(t, alice.Marks)

	_, err := f.students.Create(ctx, model.StudentRequest{Name: "Impostor", RollNumber: "SE001", Year: "SE"})
	assert.ErrorIs(t, err, ErrConflict)

	list, err := f.students.List(ctx, model.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	bob := f.addStudent(t, "Bob", "SE002", "SE")
	_, err = f.students.Update(ctx, bob.ID, model.StudentRequest{Name: "Bob", RollNumber: "SE001", Year: "SE"})
	assert.ErrorIs(t, err, ErrConflict)

	// Keeping one's own roll number is not a conflict.
	updated, err := f.students.Update(ctx, bob.ID, model.StudentRequest{Name: "Robert", RollNumber: "SE002", Year: "SE", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	assert.Equal(t, "555", updated.Phone)

	_, err = f.students.Update(ctx, 999, model.StudentRequest{Name: "X", RollNumber: "X1", Year: "SE"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.students.Create(ctx, model.StudentRequest{Name: "NoRoll", Year: "SE"})
	assert.Contains(t, fieldsOf(t, err), "roll_number")
}

func TestStudents_UpdateMarks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.addStudent(t, "Alice", "SE001", "SE")

	_, err := f.students.UpdateMarks(ctx, alice.ID, model.UpdateMarksRequest{Subject: "Data Structures", Marks: "85"})
	require.NoError(t, err)
	st, err := f.students.UpdateMarks(ctx, alice.ID, model.UpdateMarksRequest{Subject: "Networks", Marks: "A+"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Data Structures": "85", "Networks": "A+"}, st.Marks)

	st, err = f.students.UpdateMarks(ctx, alice.ID, model.UpdateMarksRequest{Subject: "Networks", Marks: "B"})
	require.NoError(t, err)
	assert.Equal(t, "B", st.Marks["Networks"])
	assert.Len(t, st.Marks, 2)

	_, err = f.students.UpdateMarks(ctx, 999, model.UpdateMarksRequest{Subject: "X", Marks: "1"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.students.UpdateMarks(ctx, alice.ID, model.UpdateMarksRequest{Subject: "X"})
	assert.Contains(t, fieldsOf(t, err), "marks")

	require.NoError(t, f.students.Delete(ctx, alice.ID))
	_, err = f.students.Get(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttendance_RecordSheet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.addStudent(t, "Alice Johnson", "SE001", "SE")
	f.addStudent(t, "Bob Smith", "SE002", "SE")
	f.addStudent(t, "Ivy Chen", "TE001", "TE")

	rows, err := f.attendance.RecordSheet(ctx, model.AttendanceSheetRequest{
		Date:     "2024-03-15",
		Year:     "SE",
		Subject:  "Data Structures",
		Statuses: map[string]string{"Alice Johnson": model.StatusPresent, "Ivy Chen": model.StatusPresent},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2, "only the SE cohort is recorded")
	assert.Equal(t, "Alice Johnson", rows[0].StudentName)
	assert.Equal(t, model.StatusPresent, rows[0].Status)
	assert.Equal(t, "Bob Smith", rows[1].StudentName)
	assert.Equal(t, model.StatusAbsent, rows[1].Status, "missing status defaults to Absent")

	_, err = f.attendance.RecordSheet(ctx, model.AttendanceSheetRequest{
		Date: "2024-03-16", Year: "SE", Subject: "DS",
		Statuses: map[string]string{"Bob Smith": "Late"},
	})
	assert.Contains(t, fieldsOf(t, err), "status_Bob Smith")

	_, err = f.attendance.RecordSheet(ctx, model.AttendanceSheetRequest{Date: "2024-03-16", Year: "BE", Subject: "DS"})
	assert.Contains(t, fieldsOf(t, err), "year")

	_, err = f.attendance.RecordSheet(ctx, model.AttendanceSheetRequest{Year: "SE"})
	assert.Len(t, fieldsOf(t, err), 2)

	list, err := f.attendance.List(ctx, model.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 2, "rejected sheets must not leave rows")

	rosters, err := f.attendance.Rosters(ctx)
	require.NoError(t, err)
	require.Len(t, rosters, 2)
	assert.Equal(t, "SE", rosters[0].Year)
	assert.Len(t, rosters[0].Students, 2)
	assert.Equal(t, "TE", rosters[1].Year)
}

func TestAttendance_EditDeleteExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.addStudent(t, "Alice", "SE001", "SE")

	rows, err := f.attendance.RecordSheet(ctx, model.AttendanceSheetRequest{Date: "2024-03-15", Year: "SE", Subject: "DS"})
	require.NoError(t, err)
	id := rows[0].ID

	updated, err := f.attendance.Update(ctx, id, model.UpdateAttendanceRequest{
		Date: "2024-03-15", Year: "SE", Subject: "DS", StudentName: "Alice", Status: model.StatusPresent,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPresent, updated.Status)

	_, err = f.attendance.Update(ctx, id, model.UpdateAttendanceRequest{
		Date: "2024-03-15", Year: "SE", Subject: "DS", StudentName: "Alice", Status: "present",
	})
	assert.Contains(t, fieldsOf(t, err), "status")

	_, err = f.attendance.Update(ctx, 999, model.UpdateAttendanceRequest{
		Date: "d", Year: "y", Subject: "s", StudentName: "n", Status: model.StatusAbsent,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	wb, err := f.attendance.Export(ctx, model.ListQuery{})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	require.NoError(t, wb.Close())

	parsed, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer parsed.Close()
	sheetRows, err := parsed.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, sheetRows, 2)
	assert.Equal(t, "Status", sheetRows[0][5])
	assert.Equal(t, []string{"2024-03-15", "SE", "DS", "Alice", "Present"}, sheetRows[1][1:])

	require.NoError(t, f.attendance.Delete(ctx, id))
	assert.ErrorIs(t, f.attendance.Delete(ctx, id), ErrNotFound)
}

func TestDocuments_Upload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	req := model.DocumentRequest{Title: "HW1", Year: "SE", Subject: "DS", Description: "arrays"}

	doc, err := f.assignments.Create(ctx, req, &Upload{Filename: "Home Work 1.PDF", Size: 5, Content: strings.NewReader("%PDF-")})
	require.NoError(t, err)
	assert.Equal(t, "Home_Work_1.PDF", doc.Filename)
	assert.Equal(t, fixedToday, doc.UploadDate)

	file, _, err := f.files.Open(doc.Filename)
	require.NoError(t, err)
	file.Close()

	tests := []struct {
		name string
		up   *Upload
		want error
	}{
		{"no file", nil, ErrFileRequired},
		{"empty name", &Upload{Content: strings.NewReader("")}, ErrFileRequired},
		{"bad extension", &Upload{Filename: "virus.exe", Size: 1, Content: strings.NewReader("x")}, ErrFileTypeNotAllowed},
		{"no extension", &Upload{Filename: "README", Size: 1, Content: strings.NewReader("x")}, ErrFileTypeNotAllowed},
		{"too large", &Upload{Filename: "big.pdf", Size: 17 << 20, Content: strings.NewReader("x")}, ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.assignments.Create(ctx, req, tt.up)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = f.assignments.Create(ctx, model.DocumentRequest{Title: "x"}, &Upload{Filename: "a.pdf"})
	assert.Len(t, fieldsOf(t, err), 2)

	list, err := f.assignments.List(ctx, model.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	notes, err := f.notes.List(ctx, model.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, notes, "assignments and notes are independent")
}

func TestDocuments_EditAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	doc, err := f.notes.Create(ctx,
		model.DocumentRequest{Title: "Lecture 1", Year: "TE", Subject: "DB"},
		&Upload{Filename: "l1.pptx", Size: 3, Content: strings.NewReader("ppt")})
	require.NoError(t, err)

	edited, err := f.notes.Update(ctx, doc.ID, model.DocumentRequest{Title: "Lecture 1 (rev)", Year: "TE", Subject: "DB"})
	require.NoError(t, err)
	assert.Equal(t, "Lecture 1 (rev)", edited.Title)
	assert.Equal(t, "l1.pptx", edited.Filename)

	require.NoError(t, f.notes.Delete(ctx, doc.ID))
	_, _, err = f.files.Open("l1.pptx")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, f.notes.Delete(ctx, doc.ID), ErrNotFound)
}

func TestDocuments_DeleteWithMissingFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	doc, err := f.assignments.Create(ctx,
		model.DocumentRequest{Title: "HW", Year: "SE", Subject: "DS"},
		&Upload{Filename: "hw.txt", Size: 2, Content: strings.NewReader("hi")})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(f.files.Root(), doc.Filename)))

	require.NoError(t, f.assignments.Delete(ctx, doc.ID))
	_, err = f.assignments.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvents_CRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	e, err := f.events.Create(ctx, model.EventRequest{Title: "Exam", Date: "2024-04-01", Time: "10:00", Type: "exam"})
	require.NoError(t, err)

	_, err = f.events.Create(ctx, model.EventRequest{Title: "Exam"})
	assert.Len(t, fieldsOf(t, err), 3)

	updated, err := f.events.Update(ctx, e.ID, model.EventRequest{Title: "Final exam", Date: "2024-04-02", Time: "09:00", Type: "exam", Description: "Hall A"})
	require.NoError(t, err)
	assert.Equal(t, "Hall A", updated.Description)

	_, err = f.events.Update(ctx, 999, model.EventRequest{Title: "x", Date: "d", Time: "t", Type: "y"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.events.Delete(ctx, e.ID))
	_, err = f.events.Get(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStats_EmptyStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	d, err := f.stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.TodayLectures)
	assert.Equal(t, 0.0, d.AttendancePercentage)
	assert.Equal(t, 0.0, d.SyllabusPercentage)
	assert.Zero(t, d.AssignmentsCount)
	assert.Zero(t, d.TotalStudents)
	assert.NotNil(t, d.UpcomingEvents)
	assert.Empty(t, d.UpcomingEvents)

	chart, err := f.stats.AttendanceChart(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.AttendanceChart{Present: 8, Absent: 2}, *chart)

	progress, err := f.stats.SyllabusProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SyllabusProgress{Completed: 0, Total: 1, Percentage: 0}, *progress)

	groups, err := f.stats.AttendanceGroups(ctx)
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestStats_Dashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.addStudent(t, "Alice", "SE001", "SE")
	f.addStudent(t, "Bob", "SE002", "SE")
	f.addStudent(t, "Carol", "SE003", "SE")

	for _, e := range []model.EventRequest{
		{Title: "Yesterday", Date: "2024-03-14", Time: "09:00", Type: model.EventTypeLecture},
		{Title: "Today lecture", Date: fixedToday, Time: "11:00", Type: model.EventTypeLecture},
		{Title: "Today meeting", Date: fixedToday, Time: "08:00", Type: model.EventTypeMeeting},
		{Title: "Later", Date: "2024-03-20", Time: "09:00", Type: model.EventTypeLecture},
	} {
		_, err := f.events.Create(ctx, e)
		require.NoError(t, err)
	}

	_, err := f.attendance.RecordSheet(ctx, model.AttendanceSheetRequest{
		Date: fixedToday, Year: "SE", Subject: "DS",
		Statuses: map[string]string{"Alice": model.StatusPresent},
	})
	require.NoError(t, err)

	d, err := f.stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.TodayLectures)
	assert.Equal(t, 33.3, d.AttendancePercentage)
	assert.Equal(t, 3, d.TotalStudents)
	require.Len(t, d.UpcomingEvents, 3)
	assert.Equal(t, "Today meeting", d.UpcomingEvents[0].Title)
	assert.Equal(t, "Later", d.UpcomingEvents[2].Title)

	chart, err := f.stats.AttendanceChart(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.AttendanceChart{Present: 1, Absent: 2}, *chart)

	groups, err := f.stats.AttendanceGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "SE - DS", groups[0].Key)
	assert.Equal(t, 33.3, groups[0].Percentage)
}

func TestSeed_SeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	catalog, err := seed.Default()
	require.NoError(t, err)

	svc := NewSeedService(
		repository.NewEventRepository(f.db),
		repository.NewStudentRepository(f.db),
		catalog, nil, zerolog.Nop(),
	)
	svc.now = fixedNow

	res, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Events: 3, Students: 10}, *res)

	events, err := f.events.List(ctx, model.ListQuery{})
	require.NoError(t, err)
	for _, e := range events {
		assert.Equal(t, fixedToday, e.Date)
	}

	d, err := f.stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.TodayLectures)
	assert.Equal(t, 10, d.TotalStudents)

	res, err = svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, *res, "second run must not insert anything")
}
