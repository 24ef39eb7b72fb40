package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/response"
	"github.com/stemsi/faculty-backend/internal/service"
)

// StudentHandler handles the student roster and marks.
type StudentHandler struct {
	studentService *service.StudentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// ListStudents godoc
// GET /students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var q model.ListQuery
	if !bindQuery(c, &q) {
		return
	}

	students, err := h.studentService.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// AddStudent godoc
// POST /add_student
// A duplicate roll number returns 409.
func (h *StudentHandler) AddStudent(c *gin.Context) {
	var req model.StudentRequest
	if !bind(c, &req) {
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// GetStudent godoc
// GET /edit_student/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	student, err := h.studentService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// EditStudent godoc
// POST /edit_student/:id
func (h *StudentHandler) EditStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.StudentRequest
	if !bind(c, &req) {
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// DeleteStudent godoc
// GET /delete_student/:id
// Removes the student together with their marks.
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	response.Message(c, http.StatusOK, "student deleted successfully")
}

// Marks godoc
// GET /student_marks/:id
func (h *StudentHandler) Marks(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	student, err := h.studentService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student, "marks": student.Marks})
}

// UpdateMarks godoc
// POST /update_marks/:id
// Sets one subject's score; other subjects are left untouched.
func (h *StudentHandler) UpdateMarks(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.UpdateMarksRequest
	if !bind(c, &req) {
		return
	}

	student, err := h.studentService.UpdateMarks(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student, "marks": student.Marks})
}
