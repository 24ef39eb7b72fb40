package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/response"
	"github.com/stemsi/faculty-backend/internal/service"
)

const (
	statusFieldPrefix = "status_"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AttendanceHandler handles attendance sheets and records.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// Rosters godoc
// GET /attendance
// Returns the students of every cohort, the rows of an attendance sheet.
func (h *AttendanceHandler) Rosters(c *gin.Context) {
	rosters, err := h.attendanceService.Rosters(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rosters": rosters})
}

// RecordSheet godoc
// POST /attendance
// Accepts form fields status_<student name>=Present|Absent, or a JSON body
// with a statuses object.
func (h *AttendanceHandler) RecordSheet(c *gin.Context) {
	var req model.AttendanceSheetRequest
	if !bind(c, &req) {
		return
	}
	if req.Statuses == nil {
		req.Statuses = formStatuses(c)
	}

	records, err := h.attendanceService.RecordSheet(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"records": records})
}

// formStatuses collects status_<name> fields from a parsed form body.
func formStatuses(c *gin.Context) map[string]string {
	statuses := make(map[string]string)
	for key, values := range c.Request.PostForm {
		name, ok := strings.CutPrefix(key, statusFieldPrefix)
		if !ok || name == "" || len(values) == 0 {
			continue
		}
		statuses[name] = values[0]
	}
	return statuses
}

// Records godoc
// GET /attendance_records
func (h *AttendanceHandler) Records(c *gin.Context) {
	var q model.ListQuery
	if !bindQuery(c, &q) {
		return
	}

	records, err := h.attendanceService.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"records": records})
}

// Export godoc
// GET /attendance_records/export
// Streams the attendance records as an xlsx workbook.
func (h *AttendanceHandler) Export(c *gin.Context) {
	var q model.ListQuery
	if !bindQuery(c, &q) {
		return
	}

	f, err := h.attendanceService.Export(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="attendance_records.xlsx"`)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		// Headers are already sent; the client sees a truncated file.
		_ = c.Error(err)
	}
}

// GetRecord godoc
// GET /edit_attendance/:id
func (h *AttendanceHandler) GetRecord(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": record})
}

// EditRecord godoc
// POST /edit_attendance/:id
func (h *AttendanceHandler) EditRecord(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.UpdateAttendanceRequest
	if !bind(c, &req) {
		return
	}

	record, err := h.attendanceService.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": record})
}

// DeleteRecord godoc
// GET /delete_attendance/:id
func (h *AttendanceHandler) DeleteRecord(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.attendanceService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	response.Message(c, http.StatusOK, "attendance record deleted successfully")
}
