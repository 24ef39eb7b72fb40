package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/faculty-backend/internal/response"
	"github.com/stemsi/faculty-backend/internal/service"
	"github.com/stemsi/faculty-backend/internal/validator"
)

// paramID parses the :id path parameter. On failure it writes the 400
// response and returns false.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// bind decodes the request body into dst and writes the error response
// when it cannot.
func bind(c *gin.Context, dst interface{}) bool {
	if err := validator.Bind(c, dst); err != nil {
		fail(c, err)
		return false
	}
	return true
}

// bindQuery decodes list parameters such as ?sort=&order=.
func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := validator.BindQuery(c, dst); err != nil {
		fail(c, err)
		return false
	}
	return true
}

// fail maps a service or binding error onto the response envelope.
func fail(c *gin.Context, err error) {
	var vErr *service.ValidationError
	var fErr validator.FieldErrors

	switch {
	case errors.As(err, &vErr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, vErr.Fields)
	case errors.As(err, &fErr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fErr)
	case errors.Is(err, validator.ErrBodyTooLarge), errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, service.ErrFileRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
	case errors.Is(err, service.ErrFileTypeNotAllowed):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrConflict):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
