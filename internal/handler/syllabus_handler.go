package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/response"
	"github.com/stemsi/faculty-backend/internal/service"
)

// SyllabusHandler handles the syllabus tracker.
type SyllabusHandler struct {
	syllabusService *service.SyllabusService
	statsService    *service.StatsService
}

// NewSyllabusHandler creates a new SyllabusHandler.
func NewSyllabusHandler(syllabusService *service.SyllabusService, statsService *service.StatsService) *SyllabusHandler {
	return &SyllabusHandler{
		syllabusService: syllabusService,
		statsService:    statsService,
	}
}

// Tracker godoc
// GET /syllabus_tracker
// Returns every topic plus completion per "year - subject" group.
func (h *SyllabusHandler) Tracker(c *gin.Context) {
	var q model.ListQuery
	if !bindQuery(c, &q) {
		return
	}

	ctx := c.Request.Context()
	topics, err := h.syllabusService.List(ctx, q)
	if err != nil {
		fail(c, err)
		return
	}
	groups, err := h.statsService.SyllabusGroups(ctx)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"topics": topics, "groups": groups})
}

// UpdateTopic godoc
// POST /update_syllabus
// Replies with the bare {"status":"success"} body the tracker page expects.
func (h *SyllabusHandler) UpdateTopic(c *gin.Context) {
	var req model.UpdateSyllabusRequest
	if !bind(c, &req) {
		return
	}

	if _, err := h.syllabusService.SetCompleted(c.Request.Context(), req.TopicID, req.Completed.IsTrue()); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Init godoc
// GET /init_syllabus
// Replaces every topic with the catalog. Completion state is lost.
func (h *SyllabusHandler) Init(c *gin.Context) {
	n, err := h.syllabusService.Reseed(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "syllabus initialized", "topics": n})
}

// AddTopic godoc
// POST /add_syllabus_topic
func (h *SyllabusHandler) AddTopic(c *gin.Context) {
	var req model.AddSyllabusTopicRequest
	if !bind(c, &req) {
		return
	}

	topic, err := h.syllabusService.AddTopic(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"topic": topic})
}

// DeleteTopic godoc
// GET /delete_syllabus/:id
func (h *SyllabusHandler) DeleteTopic(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.syllabusService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	response.Message(c, http.StatusOK, "topic deleted successfully")
}
