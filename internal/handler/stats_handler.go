package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/faculty-backend/internal/response"
	"github.com/stemsi/faculty-backend/internal/service"
)

// StatsHandler serves the dashboard and the aggregation endpoints.
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Dashboard godoc
// GET /
// Returns today's lectures, attendance and syllabus percentages, the
// assignment and student counts, and the next upcoming events.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	data, err := h.statsService.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}

// AttendanceChart godoc
// GET /get_attendance_chart_data
// Bare {present, absent} body for the chart widget.
func (h *StatsHandler) AttendanceChart(c *gin.Context) {
	chart, err := h.statsService.AttendanceChart(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, chart)
}

// SyllabusProgress godoc
// GET /syllabus_progress
// Bare {completed, total, percentage} body.
func (h *StatsHandler) SyllabusProgress(c *gin.Context) {
	progress, err := h.statsService.SyllabusProgress(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// AttendanceStats godoc
// GET /attendance_stats
func (h *StatsHandler) AttendanceStats(c *gin.Context) {
	groups, err := h.statsService.AttendanceGroups(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"groups": groups})
}
