package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/response"
	"github.com/stemsi/faculty-backend/internal/service"
)

// EventHandler handles the calendar.
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Calendar godoc
// GET /calendar
func (h *EventHandler) Calendar(c *gin.Context) {
	var q model.ListQuery
	if !bindQuery(c, &q) {
		return
	}

	events, err := h.eventService.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"events": events})
}

// AddEvent godoc
// POST /add_event
func (h *EventHandler) AddEvent(c *gin.Context) {
	var req model.EventRequest
	if !bind(c, &req) {
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"event": event})
}

// GetEvent godoc
// GET /edit_event/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	event, err := h.eventService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"event": event})
}

// EditEvent godoc
// POST /edit_event/:id
func (h *EventHandler) EditEvent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.EventRequest
	if !bind(c, &req) {
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"event": event})
}

// DeleteEvent godoc
// GET /delete_event/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	response.Message(c, http.StatusOK, "event deleted successfully")
}
