package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stemsi/faculty-backend/internal/repository"
)

// Sentinel errors returned by every service. Handlers map them to HTTP
// statuses with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrFileRequired       = errors.New("no file selected")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
)

// ValidationError lists the offending fields. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// fieldError returns a single-field ValidationError.
func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// requireFields takes name/value pairs and reports every blank value.
func requireFields(pairs ...string) error {
	var fields map[string]string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			if fields == nil {
				fields = make(map[string]string)
			}
			fields[pairs[i]] = pairs[i] + " is a required field"
		}
	}
	if fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// translate maps repository sentinels onto the service taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repository.ErrDuplicateRollNumber):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
