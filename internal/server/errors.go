package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/interchange"
	"github.com/jonathan/resume-builder/internal/layouts"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/store"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation    *ErrValidation
		invalidDraft  *store.ValidationError
		importErr     *interchange.ImportError
		schemaErr     *schemas.ValidationError
		unknownLayout *layouts.UnknownLayoutError
		unknownTheme  *layouts.UnknownThemeError
		tooLarge      *http.MaxBytesError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validation),
		errors.As(err, &invalidDraft),
		errors.As(err, &importErr),
		errors.As(err, &schemaErr),
		errors.As(err, &unknownLayout),
		errors.As(err, &unknownTheme):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
