package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/response"
	"github.com/stemsi/faculty-backend/internal/storage"
)

// DownloadHandler streams stored files by name. There is no access control.
type DownloadHandler struct {
	files *storage.FileStore
	log   zerolog.Logger
}

// NewDownloadHandler creates a new DownloadHandler.
func NewDownloadHandler(files *storage.FileStore, log zerolog.Logger) *DownloadHandler {
	return &DownloadHandler{
		files: files,
		log:   log.With().Str("component", "download_handler").Logger(),
	}
}

// Download godoc
// GET /download/:filename
// Supports Range and conditional requests.
func (h *DownloadHandler) Download(c *gin.Context) {
	name := c.Param("filename")

	f, info, err := h.files.Open(name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			response.Fail(c, http.StatusNotFound, response.ErrFileNotFound)
			return
		}
		h.log.Error().Err(err).Str("filename", name).Msg("Failed to open stored file")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `inline; filename="`+info.Name()+`"`)
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
