package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/faculty-backend/internal/model"
	"github.com/stemsi/faculty-backend/internal/response"
	"github.com/stemsi/faculty-backend/internal/service"
)

// DocumentHandler handles one kind of uploaded document: assignments or
// notes. The JSON keys follow the kind ("assignment", "assignments").
type DocumentHandler struct {
	documentService *service.DocumentService
	single          string
	plural          string
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	kind := string(documentService.Kind())
	return &DocumentHandler{
		documentService: documentService,
		single:          kind,
		plural:          kind + "s",
	}
}

// List godoc
// GET /assignments, GET /notes
func (h *DocumentHandler) List(c *gin.Context) {
	var q model.ListQuery
	if !bindQuery(c, &q) {
		return
	}

	docs, err := h.documentService.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{h.plural: docs})
}

// Upload godoc
// POST /assignments, POST /notes
// Multipart form: title, year, subject, description and the file part "file".
func (h *DocumentHandler) Upload(c *gin.Context) {
	var req model.DocumentRequest
	if !bind(c, &req) {
		return
	}

	var up *service.Upload
	file, header, err := c.Request.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		up = &service.Upload{Filename: header.Filename, Size: header.Size, Content: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// The service reports the missing file after the field checks.
	default:
		fail(c, err)
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), req, up)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{h.single: doc})
}

// Get godoc
// GET /edit_assignment/:id, GET /edit_note/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{h.single: doc})
}

// Edit godoc
// POST /edit_assignment/:id, POST /edit_note/:id
// Updates metadata only; the stored file is kept.
func (h *DocumentHandler) Edit(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.DocumentRequest
	if !bind(c, &req) {
		return
	}

	doc, err := h.documentService.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{h.single: doc})
}

// Delete godoc
// GET /delete_assignment/:id, GET /delete_note/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	response.Message(c, http.StatusOK, h.single+" deleted successfully")
}
